// Package pagination carries the offset/limit/sort/order query model that
// every list endpoint shares, plus the WHERE-clause builder the postgres
// repos use to AND filter predicates together.
package pagination

import (
	"fmt"
	"strings"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultLimit = 25
	MaxLimit     = 100
	DefaultSort  = "created_at"
)

// Query is bound from the URL query string. Zero values mean "absent" and
// are filled with defaults by Normalize; out-of-range values are rejected,
// never clamped.
type Query struct {
	Offset int    `form:"offset"`
	Limit  int    `form:"limit"`
	Sort   string `form:"sort"`
	Order  string `form:"order"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// Normalize applies defaults and validates against the resource's allowed
// sort fields. Order is case-insensitive on input and normalized to lower
// case.
func (q *Query) Normalize(allowedSorts ...string) error {
	if q.Offset < 0 {
		return &ValidationError{Field: "offset", Reason: "must be >= 0"}
	}

	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}

	if q.Limit < 1 || q.Limit > MaxLimit {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}

	if q.Sort == "" {
		q.Sort = DefaultSort
	} else {
		ok := false
		for _, s := range allowedSorts {
			if q.Sort == s {
				ok = true
				break
			}
		}
		if !ok {
			return &ValidationError{Field: "sort", Reason: "must be one of " + strings.Join(allowedSorts, ", ")}
		}
	}

	switch strings.ToLower(q.Order) {
	case "":
		q.Order = OrderAsc
	case OrderAsc, OrderDesc:
		q.Order = strings.ToLower(q.Order)
	default:
		return &ValidationError{Field: "order", Reason: "must be asc or desc"}
	}

	return nil
}

// SortClause renders the ORDER BY / LIMIT / OFFSET tail of a query. The
// sort field has already been checked against the allow-list, so direct
// interpolation is safe; id breaks ties for a stable page order. The limit
// and offset become the next two positional args after argsLen.
func (q Query) SortClause(argsLen int) (string, []interface{}) {
	dir := "ASC"
	if q.Order == OrderDesc {
		dir = "DESC"
	}

	clause := fmt.Sprintf(" ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d", q.Sort, dir, argsLen+1, argsLen+2)

	return clause, []interface{}{q.Limit, q.Offset}
}

// Envelope is the wrapper every list operation returns. Total counts every
// record matching the filter, not the page size.
type Envelope[T any] struct {
	Results []T `json:"results"`
	Total   int `json:"total"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
}

// WrapResults builds the list envelope for this query's page.
func WrapResults[T any](q Query, items []T, total int) Envelope[T] {
	if items == nil {
		items = make([]T, 0)
	}

	return Envelope[T]{
		Results: items,
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
	}
}

// Filter accumulates predicates and renders them as a single AND-joined
// WHERE clause with positional args. Absent fields simply never get added.
type Filter struct {
	preds []predicate
}

type predicate struct {
	column   string
	contains bool
	value    interface{}
}

// Equal adds an exact-match predicate (identifiers, enums).
func (f *Filter) Equal(column string, value interface{}) *Filter {
	f.preds = append(f.preds, predicate{column: column, value: value})
	return f
}

// Contains adds a case-insensitive substring predicate (free text).
func (f *Filter) Contains(column string, value string) *Filter {
	f.preds = append(f.preds, predicate{column: column, contains: true, value: value})
	return f
}

// Where renders the clause. Returns "" and no args when no predicate was
// added.
func (f *Filter) Where() (string, []interface{}) {
	if len(f.preds) == 0 {
		return "", nil
	}

	conds := make([]string, 0, len(f.preds))
	args := make([]interface{}, 0, len(f.preds))

	for i, p := range f.preds {
		pos := i + 1
		if p.contains {
			conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", p.column, pos))
		} else {
			conds = append(conds, fmt.Sprintf("%s = $%d", p.column, pos))
		}
		args = append(args, p.value)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}
