package services

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultPageLimit is how many leading pages are processed when no specifier is given
const DefaultPageLimit = 6

// PageSet is the set of 1-based page numbers selected by a page specifier.
// It carries no order: callers walk the document from page 1 and test membership.
type PageSet map[int]struct{}

// Contains reports whether page n was selected
func (s PageSet) Contains(n int) bool {
	_, ok := s[n]
	return ok
}

// Len returns the number of selected pages, including any outside the document
func (s PageSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order
func (s PageSet) Sorted() []int {
	pages := make([]int, 0, len(s))
	for n := range s {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

func pageSpan(start, end int) PageSet {
	set := PageSet{}
	for n := start; n <= end; n++ {
		set[n] = struct{}{}
	}
	return set
}

// ResolvePages turns a page specifier into the set of pages to process.
//
// Accepted shapes:
//
//	""       first min(6, total) pages
//	"all"    every page
//	"N-M"    N through min(M, total); N is not clamped
//	"N"      first min(N, total) pages
//	"2,5,9"  listed pages inside [1, total]; other tokens are dropped
func ResolvePages(spec string, totalPages int) (PageSet, error) {
	return resolvePages(spec, totalPages, DefaultPageLimit)
}

func resolvePages(spec string, totalPages, defaultLimit int) (PageSet, error) {
	if totalPages < 0 {
		totalPages = 0
	}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return pageSpan(1, min(defaultLimit, totalPages)), nil
	}

	if strings.ToLower(spec) == "all" {
		return pageSpan(1, totalPages), nil
	}

	if strings.Contains(spec, "-") {
		start, end, err := parseBounds(spec)
		if err != nil {
			return nil, err
		}
		// start stays unclamped: "0-5" selects page 0, "9-3" selects nothing
		return pageSpan(start, min(end, totalPages)), nil
	}

	if isDigits(spec) {
		n, err := atoiPage(spec)
		if err != nil {
			return nil, &MalformedRangeError{Spec: spec, Err: err}
		}
		return pageSpan(1, min(n, totalPages)), nil
	}

	set := PageSet{}
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if !isDigits(token) {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil || n < 1 || n > totalPages {
			continue
		}
		set[n] = struct{}{}
	}
	return set, nil
}

func parseBounds(spec string) (int, int, error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return 0, 0, &MalformedRangeError{Spec: spec}
	}

	start, err := atoiPage(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, &MalformedRangeError{Spec: spec, Err: err}
	}
	end, err := atoiPage(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, &MalformedRangeError{Spec: spec, Err: err}
	}
	return start, end, nil
}

// atoiPage parses a page number. A digits-only value too large for int
// saturates at math.MaxInt, so it is clamped to the page count like any other.
func atoiPage(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) && isDigits(s) {
		return math.MaxInt, nil
	}
	return n, err
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
