// Package seed generates a demo catalog and loads it through the product
// service, so every backend receives the same validated data.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
)

// DefaultCount is the number of products seeded when none is given.
const DefaultCount = 50

type category struct {
	Name  string
	Types []string
}

var categories = []category{
	{"books", []string{"Novel", "Cookbook", "Atlas", "Biography", "Comic"}},
	{"home", []string{"Lamp", "Cushion", "Mug", "Vase", "Blanket"}},
	{"games", []string{"Board Game", "Puzzle", "Card Deck", "Dice Set"}},
	{"clothing", []string{"T-Shirt", "Hoodie", "Scarf", "Cap", "Jacket"}},
	{"electronics", []string{"Headphones", "Charger", "Speaker", "Keyboard"}},
}

var prefixes = []string{"Classic", "Essential", "Premium", "Everyday", "Vintage", "Compact", "Deluxe"}

var colors = []string{"Black", "White", "Red", "Navy", "Olive", "Sand", "Grey"}

var descriptionTemplates = []string{
	"A %s made to last, picked for the demo catalog.",
	"Our best selling %s, now in more colors.",
	"A simple %s that fits any style.",
}

// ProductCreator is the part of the product service the seeder needs.
type ProductCreator interface {
	AddProduct(ctx context.Context, input *service.CreateProductInput) (*domain.Product, error)
}

// Generate returns n product inputs drawn from rng. The same seed always
// yields the same catalog. Roughly one product in eight is out of stock so
// availability filters have something to exclude.
func Generate(n int, rng *rand.Rand) []service.CreateProductInput {
	inputs := make([]service.CreateProductInput, 0, n)
	for i := range n {
		cat := categories[i%len(categories)]
		productType := cat.Types[rng.IntN(len(cat.Types))]
		name := fmt.Sprintf("%s %s - %s",
			prefixes[rng.IntN(len(prefixes))], productType, colors[rng.IntN(len(colors))])

		// 4.99 to 499.99, two decimals.
		price := math.Round((4.99+rng.Float64()*495)*100) / 100
		stock := 0
		if rng.IntN(8) != 0 {
			stock = 1 + rng.IntN(100)
		}

		inputs = append(inputs, service.CreateProductInput{
			Name:        name,
			Description: fmt.Sprintf(descriptionTemplates[rng.IntN(len(descriptionTemplates))], productType),
			Price:       &price,
			Stock:       &stock,
			Category:    cat.Name,
			Thumbnails:  []string{fmt.Sprintf("https://picsum.photos/seed/storefront-%d/400/400", i)},
		})
	}
	return inputs
}

// Run creates every input through svc and returns how many were stored. It
// stops at the first failure.
func Run(ctx context.Context, svc ProductCreator, inputs []service.CreateProductInput, logger *slog.Logger) (int, error) {
	for i := range inputs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := svc.AddProduct(ctx, &inputs[i]); err != nil {
			return i, fmt.Errorf("seed product %d (%s): %w", i, inputs[i].Name, err)
		}
		if (i+1)%25 == 0 {
			logger.InfoContext(ctx, "seeding products", slog.Int("created", i+1), slog.Int("total", len(inputs)))
		}
	}
	return len(inputs), nil
}
