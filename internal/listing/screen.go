// Package listing holds the state of a paginated list screen and makes sure
// only the response to the latest request is allowed to update it.
package listing

import (
	"errors"
	"sync"

	"meganote_dashboard/internal/query"
)

// ErrStale is returned when a response arrives for a request that is no
// longer the screen's current one; the response is discarded.
var ErrStale = errors.New("stale list response discarded")

// State is what the list screen renders
type State[T any] struct {
	IsLoading  bool         `json:"isLoading"`
	Error      string       `json:"error,omitempty"`
	Items      []T          `json:"items"`
	Count      int          `json:"count"`
	TotalPages int          `json:"totalPages"`
	Filter     query.Filter `json:"filter"`
}

// Request tags one fetch with the filter it was issued for
type Request struct {
	Filter query.Filter
	seq    uint64
}

type event[T any] interface {
	apply(State[T]) State[T]
}

type started[T any] struct{}

func (started[T]) apply(s State[T]) State[T] {
	s.IsLoading = true
	return s
}

type loaded[T any] struct {
	items      []T
	count      int
	totalPages int
}

func (e loaded[T]) apply(s State[T]) State[T] {
	s.IsLoading = false
	s.Error = ""
	s.Items = e.items
	s.Count = e.count
	s.TotalPages = e.totalPages
	return s
}

type failed[T any] struct {
	message string
}

// Prior items stay in place so the screen never goes blank on error.
func (e failed[T]) apply(s State[T]) State[T] {
	s.IsLoading = false
	s.Error = e.message
	return s
}

// Screen is the list state of one screen (notes or users)
type Screen[T any] struct {
	mu     sync.Mutex
	filter query.Filter
	state  State[T]
	seq    uint64
}

// NewScreen starts on page 1 with the given page size
func NewScreen[T any](limit int) *Screen[T] {
	f := query.Filter{Page: 1, Limit: limit}.Normalized()
	return &Screen[T]{
		filter: f,
		state:  State[T]{Items: []T{}, TotalPages: 1, Filter: f},
	}
}

func (s *Screen[T]) dispatch(e event[T]) {
	s.state = e.apply(s.state)
}

// Filter returns the current filter
func (s *Screen[T]) Filter() query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *Screen[T]) setFilter(f query.Filter) query.Filter {
	s.filter = f.Normalized()
	s.state.Filter = s.filter
	return s.filter
}

// SetSearch changes the search text and returns to the first page.
func (s *Screen[T]) SetSearch(text string) query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filter
	f.Search = text
	f.Page = 1
	return s.setFilter(f)
}

// SetToggle changes the boolean filter and returns to the first page.
func (s *Screen[T]) SetToggle(on bool) query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filter
	f.Toggle = on
	f.Page = 1
	return s.setFilter(f)
}

func (s *Screen[T]) SetPage(page int) query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filter
	f.Page = page
	return s.setFilter(f)
}

// SetLimit changes the page size and returns to the first page.
func (s *Screen[T]) SetLimit(limit int) query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.filter
	f.Limit = limit
	f.Page = 1
	return s.setFilter(f)
}

// Apply replaces the filter wholesale. A change of search text, toggle or
// page size resets the page unless the caller moved the page too.
func (s *Screen[T]) Apply(f query.Filter) query.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.filter
	f = f.Normalized()
	changed := f.Search != prev.Search || f.Toggle != prev.Toggle || f.Limit != prev.Limit
	if changed && f.Page == prev.Page {
		f.Page = 1
	}
	return s.setFilter(f)
}

// Begin marks a fetch for the current filter as in flight
func (s *Screen[T]) Begin() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.dispatch(started[T]{})
	return Request{Filter: s.filter, seq: s.seq}
}

func (s *Screen[T]) current(req Request) bool {
	return req.seq == s.seq && req.Filter.Signature() == s.filter.Signature()
}

// Complete applies a successful response if req is still current
func (s *Screen[T]) Complete(req Request, items []T, count, totalPages int) (State[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(req) {
		return s.snapshot(), ErrStale
	}
	if items == nil {
		items = []T{}
	}
	s.dispatch(loaded[T]{items: items, count: count, totalPages: totalPages})
	return s.snapshot(), nil
}

// Fail records a failed fetch if req is still current
func (s *Screen[T]) Fail(req Request, message string) (State[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(req) {
		return s.snapshot(), ErrStale
	}
	s.dispatch(failed[T]{message: message})
	return s.snapshot(), nil
}

// Snapshot returns a copy of the current state
func (s *Screen[T]) Snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Screen[T]) snapshot() State[T] {
	out := s.state
	out.Items = append([]T(nil), s.state.Items...)
	if out.Items == nil {
		out.Items = []T{}
	}
	return out
}
