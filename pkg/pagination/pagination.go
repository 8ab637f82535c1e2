// Package pagination computes the page summary shown under search results.
//
// Offsets are 1-based: the first result of the first page has start 1, the
// first result of the second page with a page length of 10 has start 11.
package pagination

import (
	"errors"
	"fmt"
	"math"
)

// WindowSize is the number of page links shown at once.
const WindowSize = 5

// ErrInvalidPageLength is returned for a page length that is zero or negative.
var ErrInvalidPageLength = errors.New("page length must be positive")

// Descriptor summarises one page of results. A NextStart or PreviousStart of
// 0 means there is no such page.
type Descriptor struct {
	Start           int `json:"start"`
	PageLength      int `json:"page_length"`
	Total           int `json:"total"`
	LastIndexOnPage int `json:"last_index_on_page"`
	EndIndex        int `json:"end_index"`
	NextStart       int `json:"next_start"`
	PreviousStart   int `json:"previous_start"`
	CurrentPage     int `json:"current_page"`
	TotalPages      int `json:"total_pages"`
	WindowStart     int `json:"window_start"`
	WindowEnd       int `json:"window_end"`
}

// Compute builds the descriptor for the page starting at start.
func Compute(start, total, pageLength int) (Descriptor, error) {
	if pageLength <= 0 {
		return Descriptor{}, fmt.Errorf("%w: got %d", ErrInvalidPageLength, pageLength)
	}

	d := Descriptor{
		Start:      start,
		PageLength: pageLength,
		Total:      total,
	}

	// Saturate instead of wrapping for starts near math.MaxInt.
	if start > math.MaxInt-pageLength+1 {
		d.LastIndexOnPage = math.MaxInt
	} else {
		d.LastIndexOnPage = start + pageLength - 1
	}
	d.EndIndex = min(d.LastIndexOnPage, total)

	if total > d.LastIndexOnPage {
		d.NextStart = d.LastIndexOnPage + 1
	}
	if start > 1 && start-pageLength > 0 {
		d.PreviousStart = max(start-pageLength, 1)
	}

	d.TotalPages = ceilDiv(total, pageLength)
	if total > 0 {
		d.CurrentPage = ceilDiv(start, pageLength)
	}

	if d.CurrentPage > 0 && d.CurrentPage < WindowSize {
		d.WindowStart = 1
	} else {
		d.WindowStart = d.CurrentPage - (WindowSize - 1)
	}
	d.WindowStart = max(d.WindowStart, 1)
	d.WindowEnd = min(d.TotalPages, d.WindowStart+WindowSize-1)

	return d, nil
}

// HasNext reports whether a following page exists.
func (d Descriptor) HasNext() bool { return d.NextStart > 0 }

// HasPrevious reports whether a preceding page exists.
func (d Descriptor) HasPrevious() bool { return d.PreviousStart > 0 }

// StartOf returns the start offset of a 1-based page number.
func (d Descriptor) StartOf(page int) int {
	return (page-1)*d.PageLength + 1
}

// Pages lists the page numbers inside the visible window.
func (d Descriptor) Pages() []int {
	if d.WindowEnd < d.WindowStart {
		return nil
	}
	pages := make([]int, 0, d.WindowEnd-d.WindowStart+1)
	for p := d.WindowStart; p <= d.WindowEnd; p++ {
		pages = append(pages, p)
	}
	return pages
}

func (d Descriptor) String() string {
	return fmt.Sprintf("start=%d length=%d total=%d end=%d next=%d previous=%d page=%d/%d window=%d-%d",
		d.Start, d.PageLength, d.Total, d.EndIndex, d.NextStart, d.PreviousStart,
		d.CurrentPage, d.TotalPages, d.WindowStart, d.WindowEnd)
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d > 0 {
		q++
	}
	return q
}
