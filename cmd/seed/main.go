package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/config"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

const embeddingDim = 512

func main() {
	ctx := context.Background()
	logger := logging.NewLogger()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to DB
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	store := repository.NewPostgresGalleryStore(pool)

	// 1. Ensure schema exists
	if err := ensureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	// 2. Check for existing photos to prevent duplicates
	existing, err := store.GetAll(ctx)
	if err != nil {
		log.Fatalf("Failed to list existing photos: %v", err)
	}
	if len(existing) > 0 {
		logger.Info("Library already seeded (%d photos), nothing to do", len(existing))
		return
	}

	// 3. Seed persons
	persons := []models.PersonRecord{
		{ID: models.SelfPersonID, DisplayName: "Me"},
		{ID: "person:" + uuid.New().String(), DisplayName: "Alice"},
		{ID: "person:" + uuid.New().String(), DisplayName: "Bob"},
	}
	for i := range persons {
		if err := store.AddPerson(ctx, &persons[i]); err != nil {
			log.Fatalf("Failed to seed person %s: %v", persons[i].DisplayName, err)
		}
		logger.Info("Seeded person: %s", persons[i].DisplayName)
	}

	// 4. Seed photos with random embeddings
	rng := rand.New(rand.NewSource(42))
	locations := []string{"Paris, France", "London, UK", "Tokyo, Japan", ""}
	for i := 0; i < 40; i++ {
		rec := models.PhotoRecord{
			ID:         fmt.Sprintf("content://media/photos/%s", uuid.New().String()),
			Embedding:  randomEmbedding(rng),
			Location:   locations[i%len(locations)],
			CapturedAt: time.Now().AddDate(0, 0, -i*7),
			Album:      "Camera",
		}
		if err := store.Insert(ctx, &rec); err != nil {
			log.Printf("Failed to seed photo %d: %v", i, err)
			continue
		}
		// Link every third photo to a person
		person := persons[i%len(persons)]
		if i%3 == 0 {
			if err := store.LinkPersonPhoto(ctx, person.ID, rec.ID); err != nil {
				log.Printf("Failed to link photo %d: %v", i, err)
			}
		}
	}

	logger.Info("Seeding complete!")
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;
	CREATE TABLE IF NOT EXISTS photos (
		id TEXT PRIMARY KEY,
		embedding VECTOR(%d),
		location TEXT,
		captured_at TIMESTAMPTZ NOT NULL,
		album TEXT
	);
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS person_photos (
		person_id TEXT NOT NULL REFERENCES persons(id),
		photo_id TEXT NOT NULL REFERENCES photos(id),
		PRIMARY KEY (person_id, photo_id)
	);`, embeddingDim))
	return err
}

func randomEmbedding(rng *rand.Rand) []float32 {
	vec := make([]float32, embeddingDim)
	for i := range vec {
		vec[i] = rng.Float32()*2 - 1
	}
	return vec
}
