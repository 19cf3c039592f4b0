package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/repository"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/validator"
)

// CartEvents publishes cart domain events.
type CartEvents interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
	PublishCartCleared(ctx context.Context, id string) error
}

// CartService implements the business logic for cart operations. It does not
// check that referenced products exist or have stock.
type CartService struct {
	repo   repository.CartRepository
	events CartEvents
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, events CartEvents, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

// CartItemsInput is a full list of line items for a cart.
type CartItemsInput struct {
	Products []domain.LineItem `json:"products" validate:"dive"`
}

// AddProductInput adds quantity units of a product to a cart. A zero quantity
// means one unit.
type AddProductInput struct {
	Product  string `json:"product" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// AddCart creates a cart holding items, merging duplicate products.
func (s *CartService) AddCart(ctx context.Context, items []domain.LineItem) (*domain.Cart, error) {
	if err := validator.Validate(&CartItemsInput{Products: items}); err != nil {
		return nil, err
	}

	now := domain.Now()
	cart := &domain.Cart{
		ID:        uuid.New().String(),
		Products:  domain.MergeLineItems(items),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart created",
		slog.String("cart_id", cart.ID),
		slog.Int("line_items", len(cart.Products)),
	)

	return cart, nil
}

// GetCart retrieves a cart by its ID.
func (s *CartService) GetCart(ctx context.Context, id string) (*domain.Cart, error) {
	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart by id: %w", err)
	}
	return cart, nil
}

// UpdateCart replaces every line item of a cart.
func (s *CartService) UpdateCart(ctx context.Context, id string, items []domain.LineItem) (*domain.Cart, error) {
	if err := validator.Validate(&CartItemsInput{Products: items}); err != nil {
		return nil, err
	}

	merged := domain.MergeLineItems(items)
	return s.update(ctx, id, "cart updated", func(c *domain.Cart) error {
		c.Products = append(make([]domain.LineItem, 0, len(merged)), merged...)
		return nil
	})
}

// AddProductToCart adds units of a product, merging with an existing line
// item for the same product.
func (s *CartService) AddProductToCart(ctx context.Context, cartID string, input AddProductInput) (*domain.Cart, error) {
	if err := validator.Validate(&input); err != nil {
		return nil, err
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return s.update(ctx, cartID, "product added to cart", func(c *domain.Cart) error {
		c.AddItem(input.Product, quantity)
		return nil
	})
}

// SetProductQuantity replaces the quantity of an existing line item.
func (s *CartService) SetProductQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.InvalidInput("quantity must be greater than or equal to 1")
	}

	return s.update(ctx, cartID, "product quantity updated", func(c *domain.Cart) error {
		i := c.FindItemIndex(productID)
		if i < 0 {
			return apperrors.NotFound("product in cart", productID)
		}
		c.Products[i].Quantity = quantity
		return nil
	})
}

// RemoveProductsFromCart empties a cart. Clearing an empty cart succeeds.
func (s *CartService) RemoveProductsFromCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.Update(ctx, cartID, func(c *domain.Cart) error {
		c.Products = []domain.LineItem{}
		c.UpdatedAt = domain.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := s.events.PublishCartCleared(ctx, cart.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("cart_id", cart.ID))

	return cart, nil
}

// update applies mutate to the stored cart, stamps it and emits cart.updated.
func (s *CartService) update(ctx context.Context, id, action string, mutate func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.repo.Update(ctx, id, func(c *domain.Cart) error {
		if err := mutate(c); err != nil {
			return err
		}
		c.UpdatedAt = domain.Now()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update cart: %w", err)
	}

	if err := s.events.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("cart_id", cart.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, action,
		slog.String("cart_id", cart.ID),
		slog.Int("items", cart.ItemCount()),
	)

	return cart, nil
}
