// Package query turns raw listing parameters into a domain.ProductQuery.
// Invalid input never fails: anything unrecognised falls back to a default.
package query

import (
	"net/url"
	"strings"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/pagination"
)

// Parse reads limit, page, sort and query from values. basePath is used for
// navigation links and defaults to the products route when empty.
func Parse(values url.Values, basePath string) domain.ProductQuery {
	if basePath == "" {
		basePath = domain.DefaultProductsPath
	}

	term := strings.TrimSpace(values.Get("query"))
	return domain.ProductQuery{
		Filter:   ParseFilter(term),
		Sort:     ParseSort(values.Get("sort")),
		Params:   pagination.FromValues(values),
		Term:     term,
		BasePath: basePath,
	}
}

// ParseSort maps asc/desc (or their price- forms) to a sort order.
func ParseSort(raw string) domain.SortOrder {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "price-asc":
		return domain.SortPriceAsc
	case "desc", "price-desc":
		return domain.SortPriceDesc
	default:
		return domain.SortNone
	}
}

// ParseFilter interprets the query literal: availability keywords select by
// stock, any other non-empty value is a category.
func ParseFilter(term string) domain.ProductFilter {
	switch strings.ToLower(term) {
	case "":
		return domain.ProductFilter{}
	case "available", "true":
		return domain.ProductFilter{Availability: domain.AvailabilityInStock}
	case "unavailable", "false":
		return domain.ProductFilter{Availability: domain.AvailabilityOutOfStock}
	default:
		return domain.ProductFilter{Category: term}
	}
}
