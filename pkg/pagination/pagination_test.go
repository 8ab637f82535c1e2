package pagination

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name                 string
		start, total, length int
		expected             Descriptor
	}{
		{
			name:  "no results",
			start: 1, total: 0, length: 10,
			expected: Descriptor{
				Start: 1, PageLength: 10, Total: 0,
				LastIndexOnPage: 10, EndIndex: 0, NextStart: 0, PreviousStart: 0,
				CurrentPage: 0, TotalPages: 0, WindowStart: 1, WindowEnd: 0,
			},
		},
		{
			name:  "first page of three",
			start: 1, total: 25, length: 10,
			expected: Descriptor{
				Start: 1, PageLength: 10, Total: 25,
				LastIndexOnPage: 10, EndIndex: 10, NextStart: 11, PreviousStart: 0,
				CurrentPage: 1, TotalPages: 3, WindowStart: 1, WindowEnd: 3,
			},
		},
		{
			name:  "middle page",
			start: 11, total: 25, length: 10,
			expected: Descriptor{
				Start: 11, PageLength: 10, Total: 25,
				LastIndexOnPage: 20, EndIndex: 20, NextStart: 21, PreviousStart: 1,
				CurrentPage: 2, TotalPages: 3, WindowStart: 1, WindowEnd: 3,
			},
		},
		{
			name:  "partial last page",
			start: 21, total: 25, length: 10,
			expected: Descriptor{
				Start: 21, PageLength: 10, Total: 25,
				LastIndexOnPage: 30, EndIndex: 25, NextStart: 0, PreviousStart: 11,
				CurrentPage: 3, TotalPages: 3, WindowStart: 1, WindowEnd: 3,
			},
		},
		{
			name:  "exactly one full page",
			start: 1, total: 10, length: 10,
			expected: Descriptor{
				Start: 1, PageLength: 10, Total: 10,
				LastIndexOnPage: 10, EndIndex: 10, NextStart: 0, PreviousStart: 0,
				CurrentPage: 1, TotalPages: 1, WindowStart: 1, WindowEnd: 1,
			},
		},
		{
			name:  "window slides after page four",
			start: 61, total: 200, length: 10,
			expected: Descriptor{
				Start: 61, PageLength: 10, Total: 200,
				LastIndexOnPage: 70, EndIndex: 70, NextStart: 71, PreviousStart: 51,
				CurrentPage: 7, TotalPages: 20, WindowStart: 3, WindowEnd: 7,
			},
		},
		{
			name:  "window at page five",
			start: 41, total: 200, length: 10,
			expected: Descriptor{
				Start: 41, PageLength: 10, Total: 200,
				LastIndexOnPage: 50, EndIndex: 50, NextStart: 51, PreviousStart: 31,
				CurrentPage: 5, TotalPages: 20, WindowStart: 1, WindowEnd: 5,
			},
		},
		{
			name:  "window clipped by total pages",
			start: 91, total: 95, length: 10,
			expected: Descriptor{
				Start: 91, PageLength: 10, Total: 95,
				LastIndexOnPage: 100, EndIndex: 95, NextStart: 0, PreviousStart: 81,
				CurrentPage: 10, TotalPages: 10, WindowStart: 6, WindowEnd: 10,
			},
		},
		{
			name:  "start beyond total",
			start: 51, total: 25, length: 10,
			expected: Descriptor{
				Start: 51, PageLength: 10, Total: 25,
				LastIndexOnPage: 60, EndIndex: 25, NextStart: 0, PreviousStart: 41,
				CurrentPage: 6, TotalPages: 3, WindowStart: 2, WindowEnd: 3,
			},
		},
		{
			name:  "unaligned start has no previous page",
			start: 5, total: 25, length: 10,
			expected: Descriptor{
				Start: 5, PageLength: 10, Total: 25,
				LastIndexOnPage: 14, EndIndex: 14, NextStart: 15, PreviousStart: 0,
				CurrentPage: 1, TotalPages: 3, WindowStart: 1, WindowEnd: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.start, tt.total, tt.length)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected\n  %s\ngot\n  %s", tt.expected, got)
			}
		})
	}
}

func TestComputeStartNearMaxInt(t *testing.T) {
	for _, start := range []int{math.MaxInt, math.MaxInt - 9, math.MaxInt - 10} {
		d, err := Compute(start, 25, 10)
		if err != nil {
			t.Fatalf("start %d: unexpected error %v", start, err)
		}
		fields := []int{d.LastIndexOnPage, d.EndIndex, d.NextStart, d.PreviousStart,
			d.CurrentPage, d.TotalPages, d.WindowStart, d.WindowEnd}
		for i, v := range fields {
			if v < 0 {
				t.Errorf("start %d: field %d is negative: %s", start, i, d)
			}
		}
		if d.HasNext() {
			t.Errorf("start %d: past the end must not link a next page: %s", start, d)
		}
		if d.EndIndex != 25 || d.TotalPages != 3 {
			t.Errorf("start %d: unexpected end/pages: %s", start, d)
		}
		if pages := d.Pages(); len(pages) != 0 {
			t.Errorf("start %d: expected no page links, got %v", start, pages)
		}
	}
}

func TestComputeInvalidPageLength(t *testing.T) {
	for _, length := range []int{0, -10} {
		if _, err := Compute(1, 25, length); !errors.Is(err, ErrInvalidPageLength) {
			t.Errorf("length %d: expected ErrInvalidPageLength, got %v", length, err)
		}
	}
}

func TestComputeIsStateless(t *testing.T) {
	first, _ := Compute(11, 25, 10)
	if _, err := Compute(1, 1000, 50); err != nil {
		t.Fatal(err)
	}
	again, _ := Compute(11, 25, 10)
	if first != again {
		t.Errorf("results differ between calls: %s vs %s", first, again)
	}
}

func TestPages(t *testing.T) {
	d, err := Compute(61, 200, 10)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Pages(); !reflect.DeepEqual(got, []int{3, 4, 5, 6, 7}) {
		t.Errorf("unexpected window %v", got)
	}
	if d.StartOf(3) != 21 {
		t.Errorf("StartOf(3) = %d, want 21", d.StartOf(3))
	}
	if !d.HasNext() || !d.HasPrevious() {
		t.Error("expected both neighbours")
	}

	empty, _ := Compute(1, 0, 10)
	if len(empty.Pages()) != 0 {
		t.Errorf("expected no pages, got %v", empty.Pages())
	}
}
