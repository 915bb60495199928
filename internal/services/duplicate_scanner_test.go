package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

func insertPhotos(t *testing.T, store *repository.MemoryGalleryStore, embeddings map[string][]float32) {
	t.Helper()
	ctx := context.Background()
	for id, vec := range embeddings {
		require.NoError(t, store.Insert(ctx, &models.PhotoRecord{
			ID:         id,
			Embedding:  vec,
			CapturedAt: time.Unix(1, 0),
		}))
	}
}

func TestScan_GroupsOnlyNearDuplicates(t *testing.T) {
	store := repository.NewMemoryGalleryStore(true)
	insertPhotos(t, store, map[string][]float32{
		"photo:1": {1, 0, 0},
		"photo:2": {0.999, 0.01, 0},
		"photo:3": {0, 1, 0},
		"photo:4": {0, 0, 1},
	})

	scanner := NewDuplicateScanner(store, 0.95)
	groups, err := scanner.Scan(context.Background())
	assert.NoError(t, err)

	// Only photo:1/photo:2 exceed the threshold; singletons are excluded.
	assert.Len(t, groups, 1)
	assert.Equal(t, "photo:1", groups[0].RepresentativeID)
	assert.Equal(t, []string{"photo:1", "photo:2"}, groups[0].MemberIDs)
}

func TestScan_TransitiveClosure(t *testing.T) {
	// A~B and B~C above threshold, but A and C alone are not: all three
	// must still land in one group.
	store := repository.NewMemoryGalleryStore(true)
	insertPhotos(t, store, map[string][]float32{
		"photo:a": {1, 0.00, 0},
		"photo:b": {1, 0.20, 0},
		"photo:c": {1, 0.40, 0},
	})

	scanner := NewDuplicateScanner(store, 0.97)

	assert.GreaterOrEqual(t, CosineSimilarity([]float32{1, 0, 0}, []float32{1, 0.20, 0}), 0.97)
	assert.GreaterOrEqual(t, CosineSimilarity([]float32{1, 0.20, 0}, []float32{1, 0.40, 0}), 0.97)
	assert.Less(t, CosineSimilarity([]float32{1, 0, 0}, []float32{1, 0.40, 0}), 0.97)

	groups, err := scanner.Scan(context.Background())
	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, []string{"photo:a", "photo:b", "photo:c"}, groups[0].MemberIDs)
}

func TestScan_NoPhotoInTwoGroups(t *testing.T) {
	store := repository.NewMemoryGalleryStore(true)
	insertPhotos(t, store, map[string][]float32{
		"photo:1": {1, 0, 0},
		"photo:2": {1, 0.01, 0},
		"photo:3": {0, 1, 0},
		"photo:4": {0, 1, 0.01},
	})

	scanner := NewDuplicateScanner(store, 0.95)
	groups, err := scanner.Scan(context.Background())
	assert.NoError(t, err)
	assert.Len(t, groups, 2)

	seen := make(map[string]int)
	for _, group := range groups {
		for _, id := range group.MemberIDs {
			seen[id]++
		}
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "photo %s appears in %d groups", id, count)
	}
}

func TestScan_EmptyIndex(t *testing.T) {
	store := repository.NewMemoryGalleryStore(true)
	scanner := NewDuplicateScanner(store, 0.95)

	groups, err := scanner.Scan(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, groups)
}
