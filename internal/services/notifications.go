package services

import "github.com/Abhishek0104/LamForGallery-sub001/pkg/models"

// Notification is a side effect emitted by a tool handler or by the consent
// coordinator. Each variant is a distinct message type; callers register a
// Notifier once per session and receive every notification synchronously
// within the call that produced it.
type Notification interface {
	notification()
}

// SearchResultsUpdated announces that a new search result replaced the
// session's current one.
type SearchResultsUpdated struct {
	Result models.SearchResult
}

// UserMessage carries a human-readable message for the user.
type UserMessage struct {
	Text string
}

// ConsentRequested asks the consent broker to obtain user approval for a
// deferred mutation. It carries the full argument set so the deferred
// execution can be replayed verbatim.
type ConsentRequested struct {
	Token    string
	Reason   string
	Mutation models.PendingMutation
}

// GalleryChanged announces a completed mutation.
type GalleryChanged struct {
	Kind  models.MutationKind
	Count int
}

// DuplicatesFound carries the groups produced by a duplicate scan.
type DuplicatesFound struct {
	Groups []models.DuplicateGroup
}

func (SearchResultsUpdated) notification() {}
func (UserMessage) notification()          {}
func (ConsentRequested) notification()     {}
func (GalleryChanged) notification()       {}
func (DuplicatesFound) notification()      {}

// Notifier receives notifications. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// NopNotifier discards all notifications.
var NopNotifier Notifier = NotifierFunc(func(Notification) {})
