package services

import (
	"fmt"
	"sync"

	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// Session holds the lifetime-scoped state of one interactive run: the
// current search result and the current manual selection. Both are
// single-writer-wins: a new search or selection replaces the previous value
// atomically; concurrent writes are not merged, the later call wins.
type Session struct {
	mu           sync.RWMutex
	searchResult models.SearchResult
	selection    []string
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// SetSearchResult replaces the current search result.
func (s *Session) SetSearchResult(result models.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResult = models.SearchResult{IDs: append([]string(nil), result.IDs...)}
}

// SearchResult returns a copy of the current search result.
func (s *Session) SearchResult() models.SearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SearchResult{IDs: append([]string(nil), s.searchResult.IDs...)}
}

// SetSelection replaces the current manual selection.
func (s *Session) SetSelection(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = append([]string(nil), ids...)
}

// Selection returns a copy of the current manual selection.
func (s *Session) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// Source returns the photo set the given mutation source declares. The
// caller decides whether an empty set is an error; an unknown source name
// is ErrUnknownFilterValue.
func (s *Session) Source(src models.MutationSource) ([]string, error) {
	switch src {
	case models.SourceSearch:
		return s.SearchResult().IDs, nil
	case models.SourceSelection:
		return s.Selection(), nil
	default:
		return nil, fmt.Errorf("source %q: %w", src, models.ErrUnknownFilterValue)
	}
}
