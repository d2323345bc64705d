package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is a client request for a slice of a listing.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// Normalize clamps the page to valid values.
func (p *Page) Normalize() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageFromQuery parses page and page_size from URL query values.
func PageFromQuery(values url.Values) Page {
	n, _ := strconv.Atoi(values.Get("page"))
	s, _ := strconv.Atoi(values.Get("page_size"))
	p := Page{Number: n, Size: s}
	p.Normalize()
	return p
}

// Result is one page of a listing together with the total match count.
type Result[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewResult builds a Result for items selected with page.
func NewResult[T any](items []T, page Page, total int) Result[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if page.Size > 0 {
		pages = (total + page.Size - 1) / page.Size
	}
	return Result[T]{Items: items, Page: page.Number, PageSize: page.Size, Total: total, TotalPages: pages}
}

// Paginate slices items in memory.
func Paginate[T any](items []T, page Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Where accumulates SQL predicates with positional placeholders.
type Where struct {
	clauses []string
	args    []any
}

// Add appends a predicate; each "?" in clause becomes the next $n placeholder.
func (w *Where) Add(clause string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

// AddSearch adds an ILIKE match of term across columns.
func (w *Where) AddSearch(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	w.args = append(w.args, "%"+term+"%")
	ph := fmt.Sprintf("$%d", len(w.args))
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE " + ph
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

// SQL returns the WHERE clause (or "") and its arguments.
func (w *Where) SQL() (string, []any) {
	if len(w.clauses) == 0 {
		return "", w.args
	}
	return " WHERE " + strings.Join(w.clauses, " AND "), w.args
}

// Limit appends LIMIT/OFFSET placeholders for page to args.
func (w *Where) Limit(page Page) (string, []any) {
	args := append([]any{}, w.args...)
	args = append(args, page.Size, page.Offset())
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

// ContainsFold reports whether any of fields contains term, ignoring case.
// Memory repositories use it to mirror the ILIKE search.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
