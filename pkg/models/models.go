// Package models defines the domain models for the gallery agent service
package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// MutationKind represents the kind of a consent-gated mutation
type MutationKind string

const (
	MutationDelete MutationKind = "delete"
	MutationMove   MutationKind = "move"
)

// MutationSource selects which photo set a mutating tool operates on
type MutationSource string

const (
	SourceSearch    MutationSource = "search"
	SourceSelection MutationSource = "selection"
)

// SelfPersonID is the reserved identity that the names "me", "my" and
// "myself" resolve to in person filters.
const SelfPersonID = "person:self"

// PhotoRecord is one indexed photo: its identifier, semantic embedding and
// the metadata the filter pipeline matches against. Records are immutable
// once indexed; a change in the underlying library produces a re-index.
type PhotoRecord struct {
	ID         string    `json:"id" db:"id"`
	Embedding  []float32 `json:"-" db:"embedding"`
	Location   string    `json:"location,omitempty" db:"location"`
	CapturedAt time.Time `json:"captured_at" db:"captured_at"`
	Album      string    `json:"album,omitempty" db:"album"`
}

// PersonRecord is a named person that photos link to via the person store.
type PersonRecord struct {
	ID          string `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`
}

// SearchFilters is the per-request value object describing one search.
// Zero values mean "filter not present"; filters always intersect.
type SearchFilters struct {
	TextQuery   string
	DateStart   *time.Time
	DateEnd     *time.Time
	Location    string
	PersonNames []string
}

// SearchResult is an ordered sequence of photo IDs: similarity-descending
// when the search carried a text query, otherwise most-recent-first. A
// session holds exactly one current result; each search replaces it.
type SearchResult struct {
	IDs []string `json:"ids"`
}

// Count returns the number of photos in the result.
func (r SearchResult) Count() int { return len(r.IDs) }

// PendingMutation is a mutation whose execution is deferred until an
// external consent resolution arrives. The full argument set is stored so
// the deferred execution replays verbatim. Consumed exactly once; tokens
// are never reused.
type PendingMutation struct {
	Token          string            `json:"token"`
	Kind           MutationKind      `json:"kind"`
	TargetPhotoIDs []string          `json:"target_photo_ids"`
	ExtraParams    map[string]string `json:"extra_params,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

// DestinationAlbumParam is the ExtraParams key carrying the target album of
// a move mutation.
const DestinationAlbumParam = "destination_album"

// DuplicateGroup is one transitively-closed cluster of near-duplicate
// photos. Recomputed fresh on every scan, never persisted.
type DuplicateGroup struct {
	RepresentativeID string   `json:"representative_id"`
	MemberIDs        []string `json:"member_ids"`
}

// ResultEnvelope is the uniform outcome of every tool invocation. The
// payload shape depends on the tool; ErrorMessage is set only when Ok is
// false.
type ResultEnvelope struct {
	Ok           bool        `json:"ok"`
	Payload      interface{} `json:"payload,omitempty"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// SearchPayload is the envelope payload of a completed search.
type SearchPayload struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// PendingPayload is the envelope payload of a mutation awaiting consent.
type PendingPayload struct {
	RequiresPermission bool   `json:"requiresPermission"`
	Token              string `json:"token"`
	Count              int    `json:"count"`
}

// CompletePayload is the envelope payload of an executed mutation.
type CompletePayload struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// PhotoRow is the Postgres row shape of a PhotoRecord, with the embedding
// held as a pgvector column.
type PhotoRow struct {
	ID         string          `db:"id"`
	Embedding  pgvector.Vector `db:"embedding"`
	Location   *string         `db:"location"`
	CapturedAt time.Time       `db:"captured_at"`
	Album      *string         `db:"album"`
}

// Record converts a stored row back into the domain record.
func (r PhotoRow) Record() PhotoRecord {
	rec := PhotoRecord{
		ID:         r.ID,
		Embedding:  r.Embedding.Slice(),
		CapturedAt: r.CapturedAt,
	}
	if r.Location != nil {
		rec.Location = *r.Location
	}
	if r.Album != nil {
		rec.Album = *r.Album
	}
	return rec
}

// HealthStatus represents service health
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
