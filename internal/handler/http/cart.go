package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/httputil"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// QuantityRequest is the body of the add and set-quantity endpoints.
type QuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// CreateCart handles POST /api/carts. The body is optional.
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	var req service.CartItemsInput
	if !decodeBody(w, r, &req, true) {
		return
	}

	cart, err := h.service.AddCart(r.Context(), req.Products)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Message: "cart created", Data: cart})
}

// GetCart handles GET /api/carts/{cid}.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), chi.URLParam(r, "cid"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// UpdateCart handles PUT /api/carts/{cid}, replacing every line item.
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req service.CartItemsInput
	if !decodeBody(w, r, &req, false) {
		return
	}

	cart, err := h.service.UpdateCart(r.Context(), chi.URLParam(r, "cid"), req.Products)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Message: "cart updated", Data: cart})
}

// AddProduct handles POST /api/carts/{cid}/product/{pid}. Without a quantity
// one unit is added.
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	input := service.AddProductInput{Product: chi.URLParam(r, "pid")}
	if req.Quantity != nil {
		input.Quantity = *req.Quantity
	}

	cart, err := h.service.AddProductToCart(r.Context(), chi.URLParam(r, "cid"), input)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Message: "product added to cart", Data: cart})
}

// SetProductQuantity handles PUT /api/carts/{cid}/product/{pid}.
func (h *CartHandler) SetProductQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	if req.Quantity == nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "request validation failed",
				Fields:  map[string]string{"quantity": "is required"},
			},
		})
		return
	}

	cart, err := h.service.SetProductQuantity(r.Context(), chi.URLParam(r, "cid"), chi.URLParam(r, "pid"), *req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Message: "product quantity updated", Data: cart})
}

// ClearCart handles DELETE /api/carts/{cid}.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RemoveProductsFromCart(r.Context(), chi.URLParam(r, "cid")); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
