package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/validator"
)

func newCartService() (*CartService, *mockCartRepository, *mockCartEvents) {
	repo := new(mockCartRepository)
	events := new(mockCartEvents)
	events.On("PublishCartUpdated", mock.Anything, mock.Anything).Return(nil).Maybe()
	events.On("PublishCartCleared", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewCartService(repo, events, newTestLogger()), repo, events
}

func storedCart(items ...domain.LineItem) *domain.Cart {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if items == nil {
		items = []domain.LineItem{}
	}
	return &domain.Cart{ID: "c1", Products: items, CreatedAt: created, UpdatedAt: created}
}

func TestAddCart_MergesDuplicates(t *testing.T) {
	svc, repo, _ := newCartService()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Cart")).Return(nil)

	cart, err := svc.AddCart(context.Background(), []domain.LineItem{
		{Product: "p1", Quantity: 1},
		{Product: "p2", Quantity: 2},
		{Product: "p1", Quantity: 3},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, cart.ID)
	assert.Equal(t, []domain.LineItem{{Product: "p1", Quantity: 4}, {Product: "p2", Quantity: 2}}, cart.Products)
}

func TestAddCart_Empty(t *testing.T) {
	svc, repo, _ := newCartService()
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	cart, err := svc.AddCart(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, cart.Products)
	assert.Empty(t, cart.Products)
}

func TestAddCart_InvalidItem(t *testing.T) {
	svc, repo, _ := newCartService()

	_, err := svc.AddCart(context.Background(), []domain.LineItem{{Product: "p1", Quantity: 0}})

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "quantity")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetCart_NotFound(t *testing.T) {
	svc, repo, _ := newCartService()
	repo.On("GetByID", mock.Anything, "nope").Return(nil, apperrors.NotFound("cart", "nope"))

	_, err := svc.GetCart(context.Background(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateCart_ReplacesItems(t *testing.T) {
	svc, repo, events := newCartService()
	repo.On("Update", mock.Anything, "c1").Return(storedCart(domain.LineItem{Product: "old", Quantity: 9}), nil)

	cart, err := svc.UpdateCart(context.Background(), "c1", []domain.LineItem{
		{Product: "p1", Quantity: 1},
		{Product: "p1", Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.LineItem{{Product: "p1", Quantity: 2}}, cart.Products)
	assert.True(t, cart.UpdatedAt.After(cart.CreatedAt))
	events.AssertCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
}

func TestAddProductToCart(t *testing.T) {
	tests := []struct {
		name     string
		existing []domain.LineItem
		input    AddProductInput
		want     []domain.LineItem
	}{
		{
			name:  "defaults to one unit",
			input: AddProductInput{Product: "p1"},
			want:  []domain.LineItem{{Product: "p1", Quantity: 1}},
		},
		{
			name:     "merges with existing line",
			existing: []domain.LineItem{{Product: "p1", Quantity: 2}},
			input:    AddProductInput{Product: "p1", Quantity: 3},
			want:     []domain.LineItem{{Product: "p1", Quantity: 5}},
		},
		{
			name:     "appends new product",
			existing: []domain.LineItem{{Product: "p1", Quantity: 2}},
			input:    AddProductInput{Product: "p2", Quantity: 1},
			want:     []domain.LineItem{{Product: "p1", Quantity: 2}, {Product: "p2", Quantity: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newCartService()
			repo.On("Update", mock.Anything, "c1").Return(storedCart(tt.existing...), nil)

			cart, err := svc.AddProductToCart(context.Background(), "c1", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cart.Products)
		})
	}
}

func TestAddProductToCart_CartMissing(t *testing.T) {
	svc, repo, _ := newCartService()
	repo.On("Update", mock.Anything, "nope").Return(nil, apperrors.NotFound("cart", "nope"))

	_, err := svc.AddProductToCart(context.Background(), "nope", AddProductInput{Product: "p1"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetProductQuantity(t *testing.T) {
	t.Run("replaces quantity", func(t *testing.T) {
		svc, repo, _ := newCartService()
		repo.On("Update", mock.Anything, "c1").Return(storedCart(domain.LineItem{Product: "p1", Quantity: 2}), nil)

		cart, err := svc.SetProductQuantity(context.Background(), "c1", "p1", 7)
		require.NoError(t, err)
		assert.Equal(t, []domain.LineItem{{Product: "p1", Quantity: 7}}, cart.Products)
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		svc, repo, _ := newCartService()

		_, err := svc.SetProductQuantity(context.Background(), "c1", "p1", 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("line item missing", func(t *testing.T) {
		svc, repo, events := newCartService()
		repo.On("Update", mock.Anything, "c1").Return(storedCart(domain.LineItem{Product: "p1", Quantity: 2}), nil)

		_, err := svc.SetProductQuantity(context.Background(), "c1", "p2", 3)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		events.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything)
	})
}

func TestRemoveProductsFromCart_Idempotent(t *testing.T) {
	svc, repo, events := newCartService()
	repo.On("Update", mock.Anything, "c1").Return(storedCart(domain.LineItem{Product: "p1", Quantity: 2}), nil).Once()
	repo.On("Update", mock.Anything, "c1").Return(storedCart(), nil).Once()

	first, err := svc.RemoveProductsFromCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, first.Products)
	assert.NotNil(t, first.Products)

	second, err := svc.RemoveProductsFromCart(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, second.Products)

	events.AssertNumberOfCalls(t, "PublishCartCleared", 2)
}

func TestRemoveProductsFromCart_EventFailureIgnored(t *testing.T) {
	repo := new(mockCartRepository)
	events := new(mockCartEvents)
	events.On("PublishCartCleared", mock.Anything, "c1").Return(errors.New("broker down"))
	svc := NewCartService(repo, events, newTestLogger())
	repo.On("Update", mock.Anything, "c1").Return(storedCart(), nil)

	_, err := svc.RemoveProductsFromCart(context.Background(), "c1")
	assert.NoError(t, err)
}

func TestUpdateCart_EmptyListKeepsNonNilProducts(t *testing.T) {
	svc, repo, _ := newCartService()
	repo.On("Update", mock.Anything, "c1").Return(storedCart(domain.LineItem{Product: "p1", Quantity: 2}), nil)

	cart, err := svc.UpdateCart(context.Background(), "c1", nil)

	require.NoError(t, err)
	assert.NotNil(t, cart.Products)
	assert.Empty(t, cart.Products)
}
