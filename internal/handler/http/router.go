package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/realtime"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/health"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/middleware"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	ServiceName string

	Products *service.ProductService
	Carts    *service.CartService
	Chat     *service.ChatService
	Hub      *realtime.Hub
	Health   *health.Handler

	CORS middleware.CORSConfig
	// PprofAllowedCIDRs enables /debug/pprof for the listed networks.
	PprofAllowedCIDRs []string

	Logger *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered and
// wires the realtime hub to the product and chat handlers.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check and metrics endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if len(cfg.PprofAllowedCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	productHandler := NewProductHandler(cfg.Products, cfg.Hub, logger)
	cartHandler := NewCartHandler(cfg.Carts, logger)
	chatHandler := NewChatHandler(cfg.Chat, logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", productHandler.ListProducts)
		r.Post("/", productHandler.CreateProduct)
		r.Get("/{pid}", productHandler.GetProduct)
		r.Put("/{pid}", productHandler.UpdateProduct)
		r.Delete("/{pid}", productHandler.DeleteProduct)
	})

	r.Route("/api/carts", func(r chi.Router) {
		r.Post("/", cartHandler.CreateCart)
		r.Get("/{cid}", cartHandler.GetCart)
		r.Put("/{cid}", cartHandler.UpdateCart)
		r.Delete("/{cid}", cartHandler.ClearCart)
		r.Post("/{cid}/product/{pid}", cartHandler.AddProduct)
		r.Put("/{cid}/product/{pid}", cartHandler.SetProductQuantity)
	})

	r.Post("/api/chat/usercheck", chatHandler.CheckUser)

	// Realtime channel: new clients get the catalog and the chat log.
	cfg.Hub.OnConnect(func(ctx context.Context, c *realtime.Client) error {
		page, err := productHandler.CatalogSnapshot(ctx)
		if err != nil {
			return err
		}
		return c.Send(EventProducts, page)
	})
	cfg.Hub.OnConnect(chatHandler.SendLog)
	cfg.Hub.Handle(EventMessage, chatHandler.HandleMessage)
	r.Get("/ws", cfg.Hub.ServeHTTP)

	return r
}
