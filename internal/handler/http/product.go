package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/query"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/httputil"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/logger"
)

// EventProducts is the realtime event carrying the first catalog page.
const EventProducts = "products"

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service     *service.ProductService
	broadcaster service.Broadcaster
	logger      *slog.Logger
}

// NewProductHandler creates a new product HTTP handler. After every
// successful mutation the default first page is pushed to broadcaster.
func NewProductHandler(svc *service.ProductService, broadcaster service.Broadcaster, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:     svc,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// ListProducts handles GET /api/products. Query parameters never fail the
// request: invalid values fall back to defaults.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := query.Parse(r.URL.Query(), r.URL.Path)

	page, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: page})
}

// GetProduct handles GET /api/products/{pid}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "pid"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductInput
	if !decodeBody(w, r, &req, false) {
		return
	}

	product, err := h.service.AddProduct(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.broadcastCatalog(r.Context())
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Message: "product created", Data: product})
}

// UpdateProduct handles PUT /api/products/{pid}. Omitted fields keep their
// stored values.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProductInput
	if !decodeBody(w, r, &req, false) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "pid"), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.broadcastCatalog(r.Context())
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Message: "product updated", Data: product})
}

// DeleteProduct handles DELETE /api/products/{pid}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "pid")); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	h.broadcastCatalog(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// CatalogSnapshot returns the default first page of products.
func (h *ProductHandler) CatalogSnapshot(ctx context.Context) (*domain.ProductPage, error) {
	return h.service.ListProducts(ctx, domain.DefaultProductQuery())
}

func (h *ProductHandler) broadcastCatalog(ctx context.Context) {
	l := logger.FromContext(ctx, h.logger)

	page, err := h.CatalogSnapshot(ctx)
	if err != nil {
		l.ErrorContext(ctx, "failed to load catalog for broadcast", slog.String("error", err.Error()))
		return
	}
	if err := h.broadcaster.Publish(ctx, EventProducts, page); err != nil {
		l.ErrorContext(ctx, "failed to broadcast catalog", slog.String("error", err.Error()))
	}
}
