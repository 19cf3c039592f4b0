package domain

import (
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/pagination"
)

// DefaultProductsPath is the listing route navigation links point at.
const DefaultProductsPath = "/api/products"

// ProductQuery is the normalised form of a listing request.
type ProductQuery struct {
	Filter ProductFilter
	Sort   SortOrder
	pagination.Params

	// Term is the raw "query" parameter, echoed back into navigation links.
	Term string
	// BasePath is the path navigation links are built on.
	BasePath string
}

// DefaultProductQuery is the first page of the unfiltered catalog.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{
		Params:   pagination.NewParams(pagination.DefaultPage, pagination.DefaultLimit),
		BasePath: DefaultProductsPath,
	}
}

// ProductPage is one page of a product listing plus navigation metadata.
type ProductPage struct {
	Payload []Product `json:"payload"`
	pagination.Meta
	PrevLink *string `json:"prev_link"`
	NextLink *string `json:"next_link"`
}

// NewProductPage assembles a page for items out of total matches and fills
// the prev/next links for q.
func NewProductPage(items []Product, total int, q ProductQuery) *ProductPage {
	if items == nil {
		items = []Product{}
	}
	page := &ProductPage{
		Payload: items,
		Meta:    pagination.NewMeta(total, q.Params),
	}

	extra := []pagination.QueryParam{
		{Key: "sort", Value: string(q.Sort)},
		{Key: "query", Value: q.Term},
	}
	if page.PrevPage != nil {
		link := pagination.Link(q.BasePath, *page.PrevPage, q.Limit, extra...)
		page.PrevLink = &link
	}
	if page.NextPage != nil {
		link := pagination.Link(q.BasePath, *page.NextPage, q.Limit, extra...)
		page.NextLink = &link
	}
	return page
}
