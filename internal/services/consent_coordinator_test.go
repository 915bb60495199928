package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek0104/LamForGallery-sub001/internal/logging"
	"github.com/Abhishek0104/LamForGallery-sub001/internal/repository"
	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

// recordingNotifier captures every notification for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Notification
}

func (r *recordingNotifier) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
}

func (r *recordingNotifier) ofType(match func(Notification) bool) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, e := range r.events {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

func seedLibrary(t *testing.T, requiresConsent bool, ids ...string) *repository.MemoryGalleryStore {
	t.Helper()
	store := repository.NewMemoryGalleryStore(requiresConsent)
	for _, id := range ids {
		require.NoError(t, store.Insert(context.Background(), &models.PhotoRecord{
			ID:         id,
			Embedding:  []float32{1, 0},
			CapturedAt: time.Unix(1, 0),
		}))
	}
	return store
}

func TestRequest_EmptyTargetSet(t *testing.T) {
	store := seedLibrary(t, true)
	notifier := &recordingNotifier{}
	coordinator := NewConsentCoordinator(store, notifier, logging.NewLogger(), time.Minute)

	_, err := coordinator.Request(context.Background(), models.MutationDelete, nil, nil, "cleanup")
	assert.ErrorIs(t, err, models.ErrNoSourceAvailable)
	assert.Zero(t, coordinator.PendingCount())
	assert.Empty(t, notifier.events)
}

func TestRequest_ParksPendingMutationAndNotifies(t *testing.T) {
	store := seedLibrary(t, true, "photo:1", "photo:2", "photo:3")
	notifier := &recordingNotifier{}
	coordinator := NewConsentCoordinator(store, notifier, logging.NewLogger(), time.Minute)

	outcome, err := coordinator.Request(context.Background(), models.MutationDelete,
		[]string{"photo:1", "photo:2", "photo:3"}, nil, "delete blurry shots")
	require.NoError(t, err)

	assert.True(t, outcome.RequiresPermission)
	assert.False(t, outcome.Executed)
	assert.NotEmpty(t, outcome.Token)
	assert.Equal(t, 3, outcome.Count)
	assert.Equal(t, 1, coordinator.PendingCount())

	// Nothing executed yet.
	records, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)

	requests := notifier.ofType(func(n Notification) bool {
		_, ok := n.(ConsentRequested)
		return ok
	})
	require.Len(t, requests, 1)
	req := requests[0].(ConsentRequested)
	assert.Equal(t, outcome.Token, req.Token)
	assert.Equal(t, "delete blurry shots", req.Reason)
	assert.Equal(t, []string{"photo:1", "photo:2", "photo:3"}, req.Mutation.TargetPhotoIDs)
}

func TestResolve_GrantedExecutesExactlyOnce(t *testing.T) {
	store := seedLibrary(t, true, "photo:1", "photo:2", "photo:3")
	notifier := &recordingNotifier{}
	coordinator := NewConsentCoordinator(store, notifier, logging.NewLogger(), time.Minute)

	outcome, err := coordinator.Request(context.Background(), models.MutationDelete,
		[]string{"photo:1", "photo:2", "photo:3"}, nil, "")
	require.NoError(t, err)

	require.NoError(t, coordinator.Resolve(context.Background(), outcome.Token, true))

	records, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, coordinator.PendingCount())

	changed := notifier.ofType(func(n Notification) bool {
		_, ok := n.(GalleryChanged)
		return ok
	})
	require.Len(t, changed, 1)
	assert.Equal(t, 3, changed[0].(GalleryChanged).Count)

	// A second grant for the same token is a no-op, not a re-execution.
	err = coordinator.Resolve(context.Background(), outcome.Token, true)
	assert.ErrorIs(t, err, models.ErrUnknownToken)
	assert.Len(t, notifier.ofType(func(n Notification) bool {
		_, ok := n.(GalleryChanged)
		return ok
	}), 1)
}

func TestResolve_DeniedDiscardsWithoutExecuting(t *testing.T) {
	store := seedLibrary(t, true, "photo:1")
	notifier := &recordingNotifier{}
	coordinator := NewConsentCoordinator(store, notifier, logging.NewLogger(), time.Minute)

	outcome, err := coordinator.Request(context.Background(), models.MutationDelete, []string{"photo:1"}, nil, "")
	require.NoError(t, err)

	require.NoError(t, coordinator.Resolve(context.Background(), outcome.Token, false))
	assert.Zero(t, coordinator.PendingCount())

	records, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	assert.Empty(t, notifier.ofType(func(n Notification) bool {
		_, ok := n.(GalleryChanged)
		return ok
	}))
}

func TestRequest_ExecutesImmediatelyWithoutConsentCapability(t *testing.T) {
	store := seedLibrary(t, false, "photo:1", "photo:2")
	notifier := &recordingNotifier{}
	coordinator := NewConsentCoordinator(store, notifier, logging.NewLogger(), time.Minute)

	outcome, err := coordinator.Request(context.Background(), models.MutationMove,
		[]string{"photo:1", "photo:2"},
		map[string]string{models.DestinationAlbumParam: "Trips"}, "")
	require.NoError(t, err)

	assert.True(t, outcome.Executed)
	assert.False(t, outcome.RequiresPermission)
	assert.Zero(t, coordinator.PendingCount())

	records, err := store.GetAll(context.Background())
	require.NoError(t, err)
	for _, rec := range records {
		assert.Equal(t, "Trips", rec.Album)
	}
}

func TestRequest_MoveNeedsDestination(t *testing.T) {
	store := seedLibrary(t, true, "photo:1")
	coordinator := NewConsentCoordinator(store, NopNotifier, logging.NewLogger(), time.Minute)

	_, err := coordinator.Request(context.Background(), models.MutationMove, []string{"photo:1"}, nil, "")
	assert.Error(t, err)
	assert.Zero(t, coordinator.PendingCount())
}

func TestResolve_MoveReplaysStoredArguments(t *testing.T) {
	store := seedLibrary(t, true, "photo:1", "photo:2")
	coordinator := NewConsentCoordinator(store, NopNotifier, logging.NewLogger(), time.Minute)

	outcome, err := coordinator.Request(context.Background(), models.MutationMove,
		[]string{"photo:2"},
		map[string]string{models.DestinationAlbumParam: "Archive"}, "")
	require.NoError(t, err)

	require.NoError(t, coordinator.Resolve(context.Background(), outcome.Token, true))

	records, err := store.GetAll(context.Background())
	require.NoError(t, err)
	albums := make(map[string]string)
	for _, rec := range records {
		albums[rec.ID] = rec.Album
	}
	assert.Equal(t, "Archive", albums["photo:2"])
	assert.Empty(t, albums["photo:1"])
}

func TestSweepExpired(t *testing.T) {
	store := seedLibrary(t, true, "photo:1")
	coordinator := NewConsentCoordinator(store, NopNotifier, logging.NewLogger(), time.Minute)

	outcome, err := coordinator.Request(context.Background(), models.MutationDelete, []string{"photo:1"}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 1, coordinator.PendingCount())

	// Not expired yet.
	assert.Zero(t, coordinator.SweepExpired(time.Now()))

	purged := coordinator.SweepExpired(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 1, purged)
	assert.Zero(t, coordinator.PendingCount())

	// The expired token behaves like a consumed one.
	err = coordinator.Resolve(context.Background(), outcome.Token, true)
	assert.ErrorIs(t, err, models.ErrUnknownToken)

	records, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestConcurrentRequests_IndependentTokens(t *testing.T) {
	store := seedLibrary(t, true, "photo:1", "photo:2")
	coordinator := NewConsentCoordinator(store, NopNotifier, logging.NewLogger(), time.Minute)

	first, err := coordinator.Request(context.Background(), models.MutationDelete, []string{"photo:1"}, nil, "")
	require.NoError(t, err)
	second, err := coordinator.Request(context.Background(), models.MutationMove,
		[]string{"photo:2"},
		map[string]string{models.DestinationAlbumParam: "Trips"}, "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 2, coordinator.PendingCount())

	// Resolving one leaves the other pending.
	require.NoError(t, coordinator.Resolve(context.Background(), second.Token, true))
	assert.Equal(t, 1, coordinator.PendingCount())
}
