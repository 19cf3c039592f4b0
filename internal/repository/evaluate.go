package repository

import (
	"sort"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/pagination"
)

// EvaluateProducts applies q to an in-memory product set: filter, then a
// stable price sort, then pagination over the filtered set. It returns the
// requested window and the filtered total. Backends without server-side
// querying share it.
func EvaluateProducts(all []domain.Product, q domain.ProductQuery) ([]domain.Product, int) {
	matched := make([]domain.Product, 0, len(all))
	for i := range all {
		if q.Filter.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}

	SortProducts(matched, q.Sort)
	return pagination.Window(matched, q.Params), len(matched)
}

// SortProducts orders products by price in place. Equal prices keep their
// stored order.
func SortProducts(products []domain.Product, order domain.SortOrder) {
	switch order {
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	}
}
