package shared

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 50, 0},
		{"?limit=10&offset=30", 10, 30},
		{"?limit=1000", 200, 0},
		{"?limit=0&offset=-4", 50, 0},
		{"?limit=abc", 50, 0},
		{"?limit=20&page=3", 20, 40},
		{"?page=2&offset=7", 50, 50},
		{"?page=0&offset=7", 50, 7},
	}
	for _, tc := range cases {
		got := ParsePagination(httptest.NewRequest("GET", "/orders"+tc.query, nil), 50, 200)
		if got.Limit != tc.limit || got.Offset != tc.offset {
			t.Fatalf("%q: expected %d/%d, got %d/%d", tc.query, tc.limit, tc.offset, got.Limit, got.Offset)
		}
	}
}

func TestSetTotal(t *testing.T) {
	rec := httptest.NewRecorder()
	SetTotal(rec, 42)
	if rec.Header().Get(TotalCountHeader) != "42" {
		t.Fatalf("expected 42, got %q", rec.Header().Get(TotalCountHeader))
	}
}
