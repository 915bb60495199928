package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// MutationOutcome is the synchronous result of requesting a mutation:
// either the mutation already executed, or it is pending external consent
// under Token.
type MutationOutcome struct {
	Executed           bool
	RequiresPermission bool
	Token              string
	Count              int
}

// ConsentCoordinator sequences consent-gated mutations. A request either
// executes immediately (the library needs no consent) or parks a
// PendingMutation keyed by a fresh token and returns; a later resolution
// event completes or discards it. Each token resolves at most once and the
// requesting call never blocks waiting for consent.
type ConsentCoordinator struct {
	library  repository.PhotoLibrary
	notifier Notifier
	logger   *logging.Logger
	ttl      time.Duration

	mu      sync.Mutex
	pending map[string]models.PendingMutation
}

// NewConsentCoordinator creates a new ConsentCoordinator. ttl is the
// maximum lifetime of an unresolved pending mutation; zero disables expiry.
func NewConsentCoordinator(library repository.PhotoLibrary, notifier Notifier, logger *logging.Logger, ttl time.Duration) *ConsentCoordinator {
	return &ConsentCoordinator{
		library:  library,
		notifier: notifier,
		logger:   logger,
		ttl:      ttl,
		pending:  make(map[string]models.PendingMutation),
	}
}

// Request asks for a mutation on the given target set. An empty target set
// always fails with ErrNoSourceAvailable and never creates a pending entry.
func (c *ConsentCoordinator) Request(ctx context.Context, kind models.MutationKind, targetIDs []string, extra map[string]string, reason string) (MutationOutcome, error) {
	if len(targetIDs) == 0 {
		return MutationOutcome{}, models.ErrNoSourceAvailable
	}
	if kind == models.MutationMove && extra[models.DestinationAlbumParam] == "" {
		return MutationOutcome{}, fmt.Errorf("move requires a destination album")
	}

	mutation := models.PendingMutation{
		Kind:           kind,
		TargetPhotoIDs: append([]string(nil), targetIDs...),
		ExtraParams:    extra,
		CreatedAt:      time.Now(),
	}

	if !c.library.RequiresConsent() {
		// Older platform path: no bulk consent capability, execute now.
		if err := c.execute(ctx, mutation); err != nil {
			return MutationOutcome{}, err
		}
		return MutationOutcome{Executed: true, Count: len(targetIDs)}, nil
	}

	mutation.Token = uuid.New().String()

	c.mu.Lock()
	c.pending[mutation.Token] = mutation
	c.mu.Unlock()

	c.notifier.Notify(ConsentRequested{
		Token:    mutation.Token,
		Reason:   reason,
		Mutation: mutation,
	})
	c.logger.Info("consent requested: token=%s kind=%s count=%d", mutation.Token, kind, len(targetIDs))

	return MutationOutcome{
		RequiresPermission: true,
		Token:              mutation.Token,
		Count:              len(targetIDs),
	}, nil
}

// Resolve consumes the pending mutation for token. Granted resolutions
// replay the stored mutation verbatim and emit a gallery-changed
// notification; denied ones discard it silently. A token that is unknown,
// already consumed or expired returns ErrUnknownToken, so a duplicate
// resolution event is a no-op rather than a re-execution.
func (c *ConsentCoordinator) Resolve(ctx context.Context, token string, granted bool) error {
	c.mu.Lock()
	mutation, ok := c.pending[token]
	if ok {
		delete(c.pending, token)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("token %q: %w", token, models.ErrUnknownToken)
	}

	if !granted {
		c.logger.Info("consent denied: token=%s kind=%s", token, mutation.Kind)
		return nil
	}

	if err := c.execute(ctx, mutation); err != nil {
		return fmt.Errorf("deferred %s failed: %w", mutation.Kind, err)
	}
	return nil
}

// execute applies a mutation against the photo library and announces it.
func (c *ConsentCoordinator) execute(ctx context.Context, mutation models.PendingMutation) error {
	var err error
	switch mutation.Kind {
	case models.MutationDelete:
		err = c.library.Delete(ctx, mutation.TargetPhotoIDs)
	case models.MutationMove:
		err = c.library.Move(ctx, mutation.TargetPhotoIDs, mutation.ExtraParams[models.DestinationAlbumParam])
	default:
		err = fmt.Errorf("unknown mutation kind %q", mutation.Kind)
	}
	if err != nil {
		return err
	}

	c.notifier.Notify(GalleryChanged{Kind: mutation.Kind, Count: len(mutation.TargetPhotoIDs)})
	return nil
}

// PendingCount returns the number of outstanding pending mutations.
func (c *ConsentCoordinator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// SweepExpired purges unresolved pending mutations older than the TTL,
// treating them as denied. Returns the number purged.
func (c *ConsentCoordinator) SweepExpired(now time.Time) int {
	if c.ttl <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for token, mutation := range c.pending {
		if now.Sub(mutation.CreatedAt) > c.ttl {
			delete(c.pending, token)
			purged++
			c.logger.Info("consent expired: token=%s kind=%s", token, mutation.Kind)
		}
	}
	return purged
}

// StartExpirySweep runs SweepExpired on a ticker until ctx is cancelled.
func (c *ConsentCoordinator) StartExpirySweep(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.SweepExpired(now)
			}
		}
	}()
}
