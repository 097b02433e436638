package query

import (
	"reflect"
	"testing"
)

func TestResolveOrdering(t *testing.T) {
	tests := []struct {
		name      string
		sortBy    string
		sortOrder string
		want      OrderSpec
	}{
		{
			name:   "default is score desc with id tie-break",
			sortBy: "",
			want: OrderSpec{Keys: []OrderKey{
				{Field: "score", Descending: true},
				{Field: "original_id"},
			}},
		},
		{
			name:      "score asc keeps ascending tie-break",
			sortBy:    "score",
			sortOrder: "asc",
			want: OrderSpec{Keys: []OrderKey{
				{Field: "score"},
				{Field: "original_id"},
			}},
		},
		{
			name:      "score desc",
			sortBy:    "score",
			sortOrder: "desc",
			want: OrderSpec{Keys: []OrderKey{
				{Field: "score", Descending: true},
				{Field: "original_id"},
			}},
		},
		{
			name:      "age sort has no tie-break",
			sortBy:    "age",
			sortOrder: "asc",
			want: OrderSpec{Keys: []OrderKey{
				{Field: "age"},
			}},
		},
		{
			name:   "unknown sort field falls back to default",
			sortBy: "name",
			want: OrderSpec{Keys: []OrderKey{
				{Field: "score", Descending: true},
				{Field: "original_id"},
			}},
		},
		{
			name:      "garbage sort order means descending",
			sortBy:    "score",
			sortOrder: "sideways",
			want: OrderSpec{Keys: []OrderKey{
				{Field: "score", Descending: true},
				{Field: "original_id"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOrdering(tt.sortBy, tt.sortOrder)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveOrdering(%q, %q) = %#v, want %#v", tt.sortBy, tt.sortOrder, got, tt.want)
			}
		})
	}
}

func TestResolvePage(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		maxLimit int
		want     Page
	}{
		{"normal window", 2, 20, 100, Page{Number: 2, Limit: 20, Offset: 20}},
		{"zero page floors to one", 0, 20, 100, Page{Number: 1, Limit: 20, Offset: 0}},
		{"negative page floors to one", -5, 20, 100, Page{Number: 1, Limit: 20, Offset: 0}},
		{"zero limit takes max", 1, 0, 100, Page{Number: 1, Limit: 100, Offset: 0}},
		{"oversized limit clamps to max", 1, 5000, 100, Page{Number: 1, Limit: 100, Offset: 0}},
		{"negative limit takes max", 3, -1, 50, Page{Number: 3, Limit: 50, Offset: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePage(tt.page, tt.limit, tt.maxLimit)
			if got != tt.want {
				t.Errorf("ResolvePage(%d, %d, %d) = %+v, want %+v", tt.page, tt.limit, tt.maxLimit, got, tt.want)
			}
		})
	}
}

func TestResolvePageMeta(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		total int64
		want  PageMeta
	}{
		{
			name:  "middle page",
			page:  Page{Number: 2, Limit: 10, Offset: 10},
			total: 35,
			want:  PageMeta{Page: 2, Limit: 10, TotalCount: 35, TotalPages: 4, HasNext: true, HasPrev: true},
		},
		{
			name:  "first of one page",
			page:  Page{Number: 1, Limit: 10},
			total: 7,
			want:  PageMeta{Page: 1, Limit: 10, TotalCount: 7, TotalPages: 1},
		},
		{
			name:  "empty result",
			page:  Page{Number: 1, Limit: 10},
			total: 0,
			want:  PageMeta{Page: 1, Limit: 10},
		},
		{
			name:  "exact multiple has no trailing page",
			page:  Page{Number: 3, Limit: 10, Offset: 20},
			total: 30,
			want:  PageMeta{Page: 3, Limit: 10, TotalCount: 30, TotalPages: 3, HasPrev: true},
		},
		{
			name:  "page past the end has prev but no next",
			page:  Page{Number: 9, Limit: 10, Offset: 80},
			total: 30,
			want:  PageMeta{Page: 9, Limit: 10, TotalCount: 30, TotalPages: 3, HasPrev: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePageMeta(tt.page, tt.total)
			if got != tt.want {
				t.Errorf("ResolvePageMeta() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
