// Command seed fills the configured backend with a demo product catalog.
//
// It reads the same environment as the server (PERSIST_MODE, DATA_DIR,
// MONGODB_URI, ...). Run: go run ./cmd/seed -count 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/app"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/config"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/event"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/seed"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/logger"
)

func main() {
	count := flag.Int("count", seed.DefaultCount, "number of products to create")
	seedValue := flag.Uint64("seed", 42, "random seed; the same seed yields the same catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	if err := run(cfg, log, *count, *seedValue); err != nil {
		log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger, count int, seedValue uint64) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Error("backend close error", slog.String("error", err.Error()))
		}
	}()

	// Seeding never emits domain events.
	svc := service.NewProductService(backend.Products, event.NewProducer(nil, log), log)
	inputs := seed.Generate(count, rand.New(rand.NewPCG(seedValue, 0)))

	created, err := seed.Run(ctx, svc, inputs, log)
	if err != nil {
		return fmt.Errorf("after %d products: %w", created, err)
	}
	log.Info("seeding complete",
		slog.Int("created", created),
		slog.String("persist_mode", backend.Name),
	)
	return nil
}
