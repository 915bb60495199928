package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// PostgresGalleryStore is a PostgreSQL implementation of the GalleryStore
// interface, with photo embeddings held in a pgvector column.
type PostgresGalleryStore struct {
	db *pgxpool.Pool
}

// NewPostgresGalleryStore creates a new PostgresGalleryStore.
func NewPostgresGalleryStore(db *pgxpool.Pool) *PostgresGalleryStore {
	return &PostgresGalleryStore{db: db}
}

// Ping verifies the database connection.
func (s *PostgresGalleryStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetAll returns every indexed photo record.
func (s *PostgresGalleryStore) GetAll(ctx context.Context) ([]models.PhotoRecord, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, embedding, location, captured_at, album FROM photos")
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	var records []models.PhotoRecord
	for rows.Next() {
		var row models.PhotoRow
		if err := rows.Scan(&row.ID, &row.Embedding, &row.Location, &row.CapturedAt, &row.Album); err != nil {
			return nil, fmt.Errorf("failed to scan photo row: %w", err)
		}
		records = append(records, row.Record())
	}

	return records, rows.Err()
}

// FindByName resolves a person display name case-insensitively. Returns
// (nil, nil) when no person matches.
func (s *PostgresGalleryStore) FindByName(ctx context.Context, name string) (*models.PersonRecord, error) {
	var person models.PersonRecord
	err := s.db.QueryRow(ctx,
		"SELECT id, display_name FROM persons WHERE LOWER(display_name) = LOWER($1)",
		name,
	).Scan(&person.ID, &person.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find person: %w", err)
	}
	return &person, nil
}

// PhotosForPersons returns the photo IDs linked to any of the given persons.
func (s *PostgresGalleryStore) PhotosForPersons(ctx context.Context, personIDs []string) (map[string]struct{}, error) {
	rows, err := s.db.Query(ctx,
		"SELECT DISTINCT photo_id FROM person_photos WHERE person_id = ANY($1)",
		personIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query person photos: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan photo id: %w", err)
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}

// Delete removes the given photos and their person links.
func (s *PostgresGalleryStore) Delete(ctx context.Context, ids []string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM person_photos WHERE photo_id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete person links: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM photos WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("failed to delete photos: %w", err)
	}

	return tx.Commit(ctx)
}

// Move reassigns the given photos to the named album.
func (s *PostgresGalleryStore) Move(ctx context.Context, ids []string, album string) error {
	_, err := s.db.Exec(ctx, "UPDATE photos SET album = $1 WHERE id = ANY($2)", album, ids)
	if err != nil {
		return fmt.Errorf("failed to move photos: %w", err)
	}
	return nil
}

// Insert adds a new photo record to the library.
func (s *PostgresGalleryStore) Insert(ctx context.Context, rec *models.PhotoRecord) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO photos (id, embedding, location, captured_at, album) VALUES ($1, $2, $3, $4, $5)",
		rec.ID, pgvector.NewVector(rec.Embedding), nullable(rec.Location), rec.CapturedAt, nullable(rec.Album))
	if err != nil {
		return fmt.Errorf("failed to insert photo: %w", err)
	}
	return nil
}

// AddPerson inserts a person record.
func (s *PostgresGalleryStore) AddPerson(ctx context.Context, person *models.PersonRecord) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO persons (id, display_name) VALUES ($1, $2)",
		person.ID, person.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to insert person: %w", err)
	}
	return nil
}

// LinkPersonPhoto records that a person appears in a photo.
func (s *PostgresGalleryStore) LinkPersonPhoto(ctx context.Context, personID, photoID string) error {
	_, err := s.db.Exec(ctx,
		"INSERT INTO person_photos (person_id, photo_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		personID, photoID)
	if err != nil {
		return fmt.Errorf("failed to link person to photo: %w", err)
	}
	return nil
}

// RequiresConsent reports whether mutations must be approved out-of-band.
// The shared Postgres library is always consent-gated.
func (s *PostgresGalleryStore) RequiresConsent() bool { return true }

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
