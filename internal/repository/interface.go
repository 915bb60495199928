package repository

import (
	"context"

	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// EmbeddingStore exposes the photo index: every indexed photo with its
// embedding and filterable metadata.
type EmbeddingStore interface {
	// GetAll returns every indexed photo record.
	GetAll(ctx context.Context) ([]models.PhotoRecord, error)
}

// PersonStore resolves people and their photo links.
type PersonStore interface {
	// FindByName resolves a display name case-insensitively. Returns
	// (nil, nil) when no person matches.
	FindByName(ctx context.Context, name string) (*models.PersonRecord, error)
	// PhotosForPersons returns the set of photo IDs linked to any of the
	// given person IDs.
	PhotosForPersons(ctx context.Context, personIDs []string) (map[string]struct{}, error)
}

// PhotoLibrary is the mutating surface of the underlying photo store.
type PhotoLibrary interface {
	// Delete removes the given photos from the library.
	Delete(ctx context.Context, ids []string) error
	// Move reassigns the given photos to the named album.
	Move(ctx context.Context, ids []string, album string) error
	// Insert adds a new photo record to the library.
	Insert(ctx context.Context, rec *models.PhotoRecord) error
	// RequiresConsent reports whether mutations on this library must be
	// approved out-of-band before they execute.
	RequiresConsent() bool
}

// GalleryStore bundles the read and write surfaces of one photo library.
type GalleryStore interface {
	EmbeddingStore
	PersonStore
	PhotoLibrary
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
