package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// DateLayout is the wire format for date filter arguments.
const DateLayout = "2006-01-02"

// selfNames map to the reserved self-identity person record.
var selfNames = map[string]struct{}{
	"me":     {},
	"my":     {},
	"myself": {},
}

// SearchService resolves a SearchFilters value object into one ordered
// candidate set: hard filters intersect, then an optional text query ranks
// the remainder by embedding similarity.
type SearchService struct {
	index     repository.EmbeddingStore
	persons   repository.PersonStore
	encoder   TextEncoder
	logger    *logging.Logger
	pageSize  int
	threshold float64
}

// NewSearchService creates a new SearchService. pageSize bounds unranked
// results; threshold is the hard similarity cutoff for ranked ones.
func NewSearchService(index repository.EmbeddingStore, persons repository.PersonStore, encoder TextEncoder, logger *logging.Logger, pageSize int, threshold float64) *SearchService {
	return &SearchService{
		index:     index,
		persons:   persons,
		encoder:   encoder,
		logger:    logger,
		pageSize:  pageSize,
		threshold: threshold,
	}
}

// Resolve runs the filter/ranking pipeline. An empty final set is a valid
// result, not an error.
func (s *SearchService) Resolve(ctx context.Context, filters models.SearchFilters) (models.SearchResult, error) {
	records, err := s.index.GetAll(ctx)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("failed to load photo index: %w", err)
	}

	// Person filter first: any unresolved name fails the whole call.
	// Resolving some names and dropping others would silently broaden the
	// search.
	var personPhotos map[string]struct{}
	if len(filters.PersonNames) > 0 {
		personIDs := make([]string, 0, len(filters.PersonNames))
		for _, name := range filters.PersonNames {
			if _, ok := selfNames[strings.ToLower(name)]; ok {
				personIDs = append(personIDs, models.SelfPersonID)
				continue
			}
			person, err := s.persons.FindByName(ctx, name)
			if err != nil {
				return models.SearchResult{}, fmt.Errorf("failed to resolve person %q: %w", name, err)
			}
			if person == nil {
				return models.SearchResult{}, fmt.Errorf("%q: %w", name, models.ErrPersonNotFound)
			}
			personIDs = append(personIDs, person.ID)
		}

		personPhotos, err = s.persons.PhotosForPersons(ctx, personIDs)
		if err != nil {
			return models.SearchResult{}, fmt.Errorf("failed to load person photos: %w", err)
		}
	}

	candidates := make([]models.PhotoRecord, 0, len(records))
	for _, rec := range records {
		if personPhotos != nil {
			if _, ok := personPhotos[rec.ID]; !ok {
				continue
			}
		}
		if filters.DateStart != nil && rec.CapturedAt.Before(*filters.DateStart) {
			continue
		}
		if filters.DateEnd != nil && rec.CapturedAt.After(*filters.DateEnd) {
			continue
		}
		if filters.Location != "" {
			// An empty stored location never matches a location filter.
			if rec.Location == "" || !strings.Contains(strings.ToLower(rec.Location), strings.ToLower(filters.Location)) {
				continue
			}
		}
		candidates = append(candidates, rec)
	}

	s.logger.Debug("filter pipeline: universe=%d candidates=%d", len(records), len(candidates))

	if strings.TrimSpace(filters.TextQuery) != "" {
		return s.rank(ctx, filters.TextQuery, candidates)
	}

	// Default order: most-recent capture first, page-bounded. Ties broken
	// by ID for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].CapturedAt.Equal(candidates[j].CapturedAt) {
			return candidates[i].CapturedAt.After(candidates[j].CapturedAt)
		}
		return candidates[i].ID < candidates[j].ID
	})
	if s.pageSize > 0 && len(candidates) > s.pageSize {
		candidates = candidates[:s.pageSize]
	}

	ids := make([]string, 0, len(candidates))
	for _, rec := range candidates {
		ids = append(ids, rec.ID)
	}
	return models.SearchResult{IDs: ids}, nil
}

// rank orders candidates by similarity to the encoded query, keeping only
// those strictly above the threshold.
func (s *SearchService) rank(ctx context.Context, query string, candidates []models.PhotoRecord) (models.SearchResult, error) {
	queryVec, err := s.encoder.Encode(ctx, query)
	if err != nil {
		return models.SearchResult{}, fmt.Errorf("failed to encode query: %w", err)
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, rec := range candidates {
		score := CosineSimilarity(queryVec, rec.Embedding)
		if score > s.threshold {
			ranked = append(ranked, scored{id: rec.ID, score: score})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.id)
	}
	return models.SearchResult{IDs: ids}, nil
}

// GetPhoto returns the indexed record for one photo ID, or (nil, nil) when
// the ID is not in the index.
func (s *SearchService) GetPhoto(ctx context.Context, id string) (*models.PhotoRecord, error) {
	records, err := s.index.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo index: %w", err)
	}
	for _, rec := range records {
		if rec.ID == id {
			r := rec
			return &r, nil
		}
	}
	return nil, nil
}

// ParseDateRange parses the wire-format date filter arguments into a closed
// interval. The end date extends to the end of its day so the interval is
// inclusive. A parse failure wraps ErrInvalidDateRange; callers skip the
// date filter and log rather than failing the search.
func ParseDateRange(start, end string) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if start != "" {
		t, err := time.Parse(DateLayout, start)
		if err != nil {
			return nil, nil, fmt.Errorf("start date %q: %w", start, models.ErrInvalidDateRange)
		}
		from = &t
	}
	if end != "" {
		t, err := time.Parse(DateLayout, end)
		if err != nil {
			return nil, nil, fmt.Errorf("end date %q: %w", end, models.ErrInvalidDateRange)
		}
		eod := t.Add(24*time.Hour - time.Nanosecond)
		to = &eod
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("start after end: %w", models.ErrInvalidDateRange)
	}
	return from, to, nil
}
