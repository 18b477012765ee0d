package domain

import "testing"

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		in         PageRequest
		wantOffset int
		wantLimit  int
		wantPage   int
	}{
		{"defaults", PageRequest{}, 0, DefaultPageLimit, 1},
		{"negative limit", PageRequest{Limit: -5}, 0, DefaultPageLimit, 1},
		{"capped limit", PageRequest{Limit: 5000}, 0, MaxPageLimit, 1},
		{"page one", PageRequest{Limit: 2, Page: 1}, 0, 2, 1},
		{"page two", PageRequest{Limit: 2, Page: 2}, 2, 2, 2},
		{"page wins over offset", PageRequest{Limit: 10, Page: 3, Offset: 5}, 20, 10, 3},
		{"offset only", PageRequest{Limit: 10, Offset: 25}, 25, 10, 3},
		{"negative offset", PageRequest{Limit: 10, Offset: -3}, 0, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Offset != tt.wantOffset || got.Limit != tt.wantLimit || got.Page != tt.wantPage {
				t.Errorf("Normalize() = offset %d limit %d page %d, want %d %d %d",
					got.Offset, got.Limit, got.Page, tt.wantOffset, tt.wantLimit, tt.wantPage)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	rows := make([]int, 20)
	p := NewPage(rows, 20, PageRequest{})
	if p.TotalRows != 20 || p.TotalPages != 1 || len(p.Rows) != 20 || p.Limit != DefaultPageLimit {
		t.Errorf("default page = %+v", p)
	}

	p = NewPage([]int{3, 4}, 5, PageRequest{Limit: 2, Page: 2})
	if p.Offset != 2 || p.Page != 2 || p.TotalPages != 3 {
		t.Errorf("second page = %+v", p)
	}

	empty := NewPage[int](nil, 0, PageRequest{})
	if empty.Rows == nil || empty.TotalPages != 0 {
		t.Errorf("empty page = %+v", empty)
	}
}

func TestParseSortDirection(t *testing.T) {
	if d, err := ParseSortDirection("", SortDesc); err != nil || d != SortDesc {
		t.Errorf("default = %q, %v", d, err)
	}
	if d, err := ParseSortDirection("asc", SortDesc); err != nil || d != SortAsc {
		t.Errorf("asc = %q, %v", d, err)
	}
	if _, err := ParseSortDirection("sideways", SortDesc); err == nil {
		t.Error("expected error")
	}
}
