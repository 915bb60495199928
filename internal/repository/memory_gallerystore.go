package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// MemoryGalleryStore is an in-memory GalleryStore. It backs the demo mode
// and the service tests; a single session does not need durability.
type MemoryGalleryStore struct {
	mu              sync.RWMutex
	photos          map[string]models.PhotoRecord
	persons         map[string]models.PersonRecord
	personPhotos    map[string]map[string]struct{}
	requiresConsent bool
}

// NewMemoryGalleryStore creates an empty in-memory store. requiresConsent
// controls whether mutations go through the consent flow or execute
// immediately, mirroring platforms without a bulk-consent capability.
func NewMemoryGalleryStore(requiresConsent bool) *MemoryGalleryStore {
	return &MemoryGalleryStore{
		photos:          make(map[string]models.PhotoRecord),
		persons:         make(map[string]models.PersonRecord),
		personPhotos:    make(map[string]map[string]struct{}),
		requiresConsent: requiresConsent,
	}
}

// Ping always succeeds for the in-memory store.
func (s *MemoryGalleryStore) Ping(ctx context.Context) error { return nil }

// GetAll returns every indexed photo record in a stable order.
func (s *MemoryGalleryStore) GetAll(ctx context.Context) ([]models.PhotoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]models.PhotoRecord, 0, len(s.photos))
	for _, rec := range s.photos {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// FindByName resolves a person display name case-insensitively.
func (s *MemoryGalleryStore) FindByName(ctx context.Context, name string) (*models.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, person := range s.persons {
		if strings.EqualFold(person.DisplayName, name) {
			p := person
			return &p, nil
		}
	}
	return nil, nil
}

// PhotosForPersons returns the photo IDs linked to any of the given persons.
func (s *MemoryGalleryStore) PhotosForPersons(ctx context.Context, personIDs []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{})
	for _, personID := range personIDs {
		for photoID := range s.personPhotos[personID] {
			ids[photoID] = struct{}{}
		}
	}
	return ids, nil
}

// Delete removes the given photos and their person links.
func (s *MemoryGalleryStore) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.photos[id]; !ok {
			return fmt.Errorf("photo %s not in library", id)
		}
	}
	for _, id := range ids {
		delete(s.photos, id)
		for _, links := range s.personPhotos {
			delete(links, id)
		}
	}
	return nil
}

// Move reassigns the given photos to the named album.
func (s *MemoryGalleryStore) Move(ctx context.Context, ids []string, album string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		rec, ok := s.photos[id]
		if !ok {
			return fmt.Errorf("photo %s not in library", id)
		}
		rec.Album = album
		s.photos[id] = rec
	}
	return nil
}

// Insert adds a new photo record to the library.
func (s *MemoryGalleryStore) Insert(ctx context.Context, rec *models.PhotoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.photos[rec.ID]; ok {
		return fmt.Errorf("photo %s already in library", rec.ID)
	}
	s.photos[rec.ID] = *rec
	return nil
}

// AddPerson inserts a person record.
func (s *MemoryGalleryStore) AddPerson(ctx context.Context, person *models.PersonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persons[person.ID] = *person
	return nil
}

// LinkPersonPhoto records that a person appears in a photo.
func (s *MemoryGalleryStore) LinkPersonPhoto(ctx context.Context, personID, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.personPhotos[personID] == nil {
		s.personPhotos[personID] = make(map[string]struct{})
	}
	s.personPhotos[personID][photoID] = struct{}{}
	return nil
}

// RequiresConsent reports whether mutations must be approved out-of-band.
func (s *MemoryGalleryStore) RequiresConsent() bool { return s.requiresConsent }
