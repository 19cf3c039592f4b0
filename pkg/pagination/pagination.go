package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params holds normalised page/limit values. Both are always >= 1.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewParams clamps non-positive values to the defaults instead of rejecting them.
func NewParams(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Params{Page: page, Limit: limit}
}

// FromValues reads "page" and "limit" from query values. Missing, malformed
// and non-positive values fall back to the defaults.
func FromValues(v url.Values) Params {
	return NewParams(PositiveInt(v.Get("page"), DefaultPage), PositiveInt(v.Get("limit"), DefaultLimit))
}

// PositiveInt parses raw as an integer >= 1, returning def otherwise.
func PositiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Offset is the number of records preceding the requested page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	TotalDocs   int  `json:"total_docs"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"total_pages"`
	Page        int  `json:"page"`
	HasPrevPage bool `json:"has_prev_page"`
	HasNextPage bool `json:"has_next_page"`
	PrevPage    *int `json:"prev_page"`
	NextPage    *int `json:"next_page"`
}

// NewMeta computes page metadata for total matching records. An empty set
// still has one (empty) page.
func NewMeta(total int, p Params) Meta {
	totalPages := total / p.Limit
	if total%p.Limit > 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	m := Meta{
		TotalDocs:   total,
		Limit:       p.Limit,
		TotalPages:  totalPages,
		Page:        p.Page,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < totalPages,
	}
	if m.HasPrevPage {
		prev := p.Page - 1
		m.PrevPage = &prev
	}
	if m.HasNextPage {
		next := p.Page + 1
		m.NextPage = &next
	}
	return m
}

// Window returns the slice of items that falls on the requested page.
func Window[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// QueryParam is an extra key/value appended to a navigation link.
type QueryParam struct {
	Key   string
	Value string
}

// Link builds "<basePath>?page=N&limit=L" followed by every non-empty extra
// parameter in the order given.
func Link(basePath string, page, limit int, extra ...QueryParam) string {
	var b strings.Builder
	b.WriteString(basePath)
	b.WriteString("?page=")
	b.WriteString(strconv.Itoa(page))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(limit))
	for _, qp := range extra {
		if qp.Value == "" {
			continue
		}
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(qp.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(qp.Value))
	}
	return b.String()
}
