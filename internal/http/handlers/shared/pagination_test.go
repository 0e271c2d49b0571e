package shared

import (
	"math"
	"testing"
)

func TestPageBounds(t *testing.T) {
	cases := []struct {
		name                   string
		total, page, pageSize  int
		start, end             int
		wantPage, wantPageSize int
		totalPage              int64
	}{
		{"first page", 45, 1, 20, 0, 20, 1, 20, 3},
		{"last partial page", 45, 3, 20, 40, 45, 3, 20, 3},
		{"beyond range", 45, 9, 20, 45, 45, 9, 20, 3},
		{"defaults", 5, 0, 0, 0, 5, 1, 20, 1},
		{"size capped", 250, 2, 500, 100, 200, 2, 100, 3},
		{"empty", 0, 1, 10, 0, 0, 1, 10, 0},
		{"huge page", 3, 2305843009213693952, 8, 3, 3, 2305843009213693952, 8, 1},
		{"max int page", 45, math.MaxInt, 20, 45, 45, math.MaxInt, 20, 3},
	}
	for _, tc := range cases {
		start, end, pagination := PageBounds(tc.total, tc.page, tc.pageSize)
		if start != tc.start || end != tc.end {
			t.Fatalf("%s: bounds want [%d,%d) got [%d,%d)", tc.name, tc.start, tc.end, start, end)
		}
		if pagination.Page != tc.wantPage || pagination.PageSize != tc.wantPageSize {
			t.Fatalf("%s: page want %d/%d got %d/%d", tc.name, tc.wantPage, tc.wantPageSize, pagination.Page, pagination.PageSize)
		}
		if pagination.TotalPage != tc.totalPage || pagination.Total != int64(tc.total) {
			t.Fatalf("%s: totals mismatch %+v", tc.name, pagination)
		}
	}
}
