package crawler

import (
	"sync"
	"sync/atomic"
)

// DedupStore tracks the normalized URLs dispatched and the canonical titles
// accepted during one run. Claims are atomic: the first caller wins.
type DedupStore struct {
	urls     sync.Map
	titles   sync.Map
	urlCount atomic.Int64
}

// NewDedupStore returns an empty store.
func NewDedupStore() *DedupStore {
	return &DedupStore{}
}

// TryClaimURL stores the normalized URL if it has not been claimed before and
// returns true. Every later caller gets false and must not fetch.
func (s *DedupStore) TryClaimURL(normalized string) bool {
	if normalized == "" {
		return false
	}
	_, loaded := s.urls.LoadOrStore(normalized, struct{}{})
	if !loaded {
		s.urlCount.Add(1)
	}
	return !loaded
}

// SeenURL reports whether the normalized URL was already claimed.
func (s *DedupStore) SeenURL(normalized string) bool {
	_, ok := s.urls.Load(normalized)
	return ok
}

// TryClaimTitle claims a canonical title with the same semantics as TryClaimURL.
func (s *DedupStore) TryClaimTitle(title string) bool {
	if title == "" {
		return false
	}
	_, loaded := s.titles.LoadOrStore(title, struct{}{})
	return !loaded
}

// URLCount returns the number of claimed URLs.
func (s *DedupStore) URLCount() int64 {
	return s.urlCount.Load()
}
