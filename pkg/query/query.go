package query

import (
	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// Query is an immutable description of a filter, sort and page request.
// Builder methods return modified copies.
type Query struct {
	predicates []Predicate
	sort       SortStrategy
	page       domain.PageOptions
}

// New returns a query matching everything in collection order with default paging
func New() Query {
	return Query{sort: SortNone, page: domain.DefaultPageOptions()}
}

// Where adds predicates, combined with AND
func (q Query) Where(predicates ...Predicate) Query {
	next := make([]Predicate, 0, len(q.predicates)+len(predicates))
	next = append(next, q.predicates...)
	q.predicates = append(next, predicates...)
	return q
}

// SortBy sets the sort strategy
func (q Query) SortBy(strategy SortStrategy) Query {
	q.sort = strategy
	return q
}

// Paginate sets the page number and page size
func (q Query) Paginate(page, pageSize int) Query {
	q.page = domain.PageOptions{Page: page, PageSize: pageSize}
	return q
}

// Predicates returns a copy of the query's predicates
func (q Query) Predicates() []Predicate {
	return append([]Predicate(nil), q.predicates...)
}

func (q Query) Sort() SortStrategy {
	return q.sort
}

// PageOptions returns the normalized paging of the query
func (q Query) PageOptions() domain.PageOptions {
	return q.page.Normalize()
}

// Validate checks every predicate and the sort strategy
func (q Query) Validate() error {
	for _, p := range q.predicates {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if q.sort != "" {
		if _, err := ParseSort(string(q.sort)); err != nil {
			return err
		}
	}
	return nil
}

// ResultSet is one page of query results
type ResultSet struct {
	Records  []domain.Record `json:"records"`
	Total    int             `json:"total"`
	HasMore  bool            `json:"has_more"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`

	matched []domain.Record
}

// Matched returns every record that matched, in sorted order, across all pages
func (rs ResultSet) Matched() []domain.Record {
	return rs.matched
}

// Execute filters, sorts and paginates records. The input slice is not modified.
func Execute(records []domain.Record, q Query) ResultSet {
	matched := Filter(records, q.predicates)
	Sort(matched, q.sort)

	opts := q.page.Normalize()
	page, hasMore := Paginate(matched, opts)
	return ResultSet{
		Records:  page,
		Total:    len(matched),
		HasMore:  hasMore,
		Page:     opts.Page,
		PageSize: opts.PageSize,
		matched:  matched,
	}
}

// Filter returns the records satisfying every predicate, preserving order
func Filter(records []domain.Record, predicates []Predicate) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if matchesAll(rec, predicates) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(rec domain.Record, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p.Match(rec) {
			return false
		}
	}
	return true
}

// Paginate returns the requested page of records and whether more follow it
func Paginate(records []domain.Record, opts domain.PageOptions) ([]domain.Record, bool) {
	start, end := opts.Bounds(len(records))
	page := make([]domain.Record, end-start)
	copy(page, records[start:end])
	return page, end < len(records)
}
