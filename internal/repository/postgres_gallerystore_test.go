package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

func TestPostgresGalleryStore(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	store := NewPostgresGalleryStore(pool)

	_, err = pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector;
	CREATE TABLE photos (
		id TEXT PRIMARY KEY,
		embedding VECTOR(3),
		location TEXT,
		captured_at TIMESTAMPTZ NOT NULL,
		album TEXT
	);
	CREATE TABLE persons (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL
	);
	CREATE TABLE person_photos (
		person_id TEXT NOT NULL REFERENCES persons(id),
		photo_id TEXT NOT NULL REFERENCES photos(id),
		PRIMARY KEY (person_id, photo_id)
	);`)
	if err != nil {
		t.Fatal(err)
	}

	capturedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Insert and GetAll", func(t *testing.T) {
		rec := &models.PhotoRecord{
			ID:         "content://media/" + uuid.New().String(),
			Embedding:  []float32{0.1, 0.2, 0.3},
			Location:   "Paris",
			CapturedAt: capturedAt,
		}

		err := store.Insert(ctx, rec)
		assert.NoError(t, err)

		records, err := store.GetAll(ctx)
		assert.NoError(t, err)
		assert.Len(t, records, 1)
		assert.Equal(t, rec.ID, records[0].ID)
		assert.Equal(t, rec.Location, records[0].Location)
		assert.Equal(t, rec.Embedding, records[0].Embedding)
		assert.True(t, capturedAt.Equal(records[0].CapturedAt))
	})

	t.Run("FindByName is case-insensitive", func(t *testing.T) {
		person := &models.PersonRecord{ID: "person:1", DisplayName: "Alice"}
		assert.NoError(t, store.AddPerson(ctx, person))

		found, err := store.FindByName(ctx, "alice")
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, "person:1", found.ID)

		missing, err := store.FindByName(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("PhotosForPersons returns linked photos", func(t *testing.T) {
		records, err := store.GetAll(ctx)
		assert.NoError(t, err)
		photoID := records[0].ID

		assert.NoError(t, store.LinkPersonPhoto(ctx, "person:1", photoID))

		ids, err := store.PhotosForPersons(ctx, []string{"person:1"})
		assert.NoError(t, err)
		assert.Contains(t, ids, photoID)
	})

	t.Run("Move updates album", func(t *testing.T) {
		records, err := store.GetAll(ctx)
		assert.NoError(t, err)
		photoID := records[0].ID

		assert.NoError(t, store.Move(ctx, []string{photoID}, "Trips"))

		records, err = store.GetAll(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "Trips", records[0].Album)
	})

	t.Run("Delete removes photos and links", func(t *testing.T) {
		records, err := store.GetAll(ctx)
		assert.NoError(t, err)
		photoID := records[0].ID

		assert.NoError(t, store.Delete(ctx, []string{photoID}))

		records, err = store.GetAll(ctx)
		assert.NoError(t, err)
		assert.Empty(t, records)

		ids, err := store.PhotosForPersons(ctx, []string{"person:1"})
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})
}
