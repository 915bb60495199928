package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// DuplicateScanner partitions the photo universe into near-duplicate groups:
// the transitive closure of the pairwise "similarity >= threshold" relation.
// Each photo lands in at most one group; singleton groups are excluded.
//
// The scan is O(n^2) over the index, acceptable while the universe is
// bounded by device storage. A larger corpus needs an approximate
// nearest-neighbor index with the same grouping semantics.
type DuplicateScanner struct {
	index     repository.EmbeddingStore
	threshold float64
}

// NewDuplicateScanner creates a new DuplicateScanner.
func NewDuplicateScanner(index repository.EmbeddingStore, threshold float64) *DuplicateScanner {
	return &DuplicateScanner{index: index, threshold: threshold}
}

// Scan recomputes duplicate groups from scratch. Output is deterministic:
// members sorted by ID, groups sorted by representative ID.
func (d *DuplicateScanner) Scan(ctx context.Context) ([]models.DuplicateGroup, error) {
	records, err := d.index.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo index: %w", err)
	}

	parent := make([]int, len(records))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[rb] = ra
		}
	}

	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if CosineSimilarity(records[i].Embedding, records[j].Embedding) >= d.threshold {
				union(i, j)
			}
		}
	}

	members := make(map[int][]string)
	for i, rec := range records {
		root := find(i)
		members[root] = append(members[root], rec.ID)
	}

	var groups []models.DuplicateGroup
	for _, ids := range members {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		groups = append(groups, models.DuplicateGroup{
			RepresentativeID: ids[0],
			MemberIDs:        ids,
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].RepresentativeID < groups[j].RepresentativeID
	})

	return groups, nil
}
