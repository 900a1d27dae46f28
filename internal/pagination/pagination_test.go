package pagination_test

import (
	"errors"
	"testing"

	"github.com/eduraio/qanda-api/internal/pagination"
)

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name      string
		query     pagination.Query
		wantErr   string // field name of the expected validation error, "" for ok
		wantLimit int
		wantSort  string
		wantOrder string
	}{
		{
			name:      "defaults_applied",
			query:     pagination.Query{},
			wantLimit: 25,
			wantSort:  "created_at",
			wantOrder: "asc",
		},
		{
			name:      "explicit_values_kept",
			query:     pagination.Query{Offset: 50, Limit: 100, Sort: "created_at", Order: "desc"},
			wantLimit: 100,
			wantSort:  "created_at",
			wantOrder: "desc",
		},
		{
			name:      "order_case_insensitive",
			query:     pagination.Query{Order: "DESC"},
			wantLimit: 25,
			wantSort:  "created_at",
			wantOrder: "desc",
		},
		{
			name:    "negative_offset_rejected",
			query:   pagination.Query{Offset: -1},
			wantErr: "offset",
		},
		{
			name:    "zero_limit_not_clamped_but_defaulted",
			query:   pagination.Query{Limit: 101},
			wantErr: "limit",
		},
		{
			name:    "negative_limit_rejected",
			query:   pagination.Query{Limit: -5},
			wantErr: "limit",
		},
		{
			name:    "unknown_sort_rejected",
			query:   pagination.Query{Sort: "email"},
			wantErr: "sort",
		},
		{
			name:    "unknown_order_rejected",
			query:   pagination.Query{Order: "sideways"},
			wantErr: "order",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			q := tt.query
			err := q.Normalize("created_at")

			if tt.wantErr != "" {
				var verr *pagination.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				if verr.Field != tt.wantErr {
					t.Fatalf("got field %q, want %q", verr.Field, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Limit != tt.wantLimit {
				t.Fatalf("limit: got %d, want %d", q.Limit, tt.wantLimit)
			}
			if q.Sort != tt.wantSort {
				t.Fatalf("sort: got %q, want %q", q.Sort, tt.wantSort)
			}
			if q.Order != tt.wantOrder {
				t.Fatalf("order: got %q, want %q", q.Order, tt.wantOrder)
			}
		})
	}
}

func TestSortClause(t *testing.T) {
	q := pagination.Query{Offset: 10, Limit: 20, Sort: "created_at", Order: "desc"}
	if err := q.Normalize("created_at"); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	clause, args := q.SortClause(3)

	want := " ORDER BY created_at DESC, id ASC LIMIT $4 OFFSET $5"
	if clause != want {
		t.Fatalf("got %q, want %q", clause, want)
	}
	if len(args) != 2 || args[0] != 20 || args[1] != 10 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestFilterWhere(t *testing.T) {
	t.Run("empty_filter_imposes_no_constraint", func(t *testing.T) {
		var f pagination.Filter
		clause, args := f.Where()
		if clause != "" || args != nil {
			t.Fatalf("expected empty clause, got %q %v", clause, args)
		}
	})

	t.Run("predicates_join_with_and", func(t *testing.T) {
		var f pagination.Filter
		f.Equal("role", "PARTICIPANT").Contains("name", "ali").Equal("email", "a@b.c")

		clause, args := f.Where()

		want := " WHERE role = $1 AND name ILIKE '%' || $2 || '%' AND email = $3"
		if clause != want {
			t.Fatalf("got %q, want %q", clause, want)
		}
		if len(args) != 3 {
			t.Fatalf("expected 3 args, got %v", args)
		}
	})
}

func TestWrapResults(t *testing.T) {
	q := pagination.Query{}
	if err := q.Normalize("created_at"); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	env := pagination.WrapResults(q, []string{"a", "b"}, 42)

	if env.Total != 42 {
		t.Fatalf("total must reflect the pre-pagination count, got %d", env.Total)
	}
	if env.Limit != 25 || env.Offset != 0 {
		t.Fatalf("unexpected limit/offset: %d/%d", env.Limit, env.Offset)
	}
	if len(env.Results) != 2 {
		t.Fatalf("unexpected results: %v", env.Results)
	}

	empty := pagination.WrapResults[string](q, nil, 0)
	if empty.Results == nil {
		t.Fatalf("results must serialize as [], not null")
	}
}
