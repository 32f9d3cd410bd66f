// Package notifier defines the outbound collaborator interfaces the
// allocator and the mutation services publish through. Both are
// fire-and-forget: a delivery failure never aborts the ledger mutation that
// triggered it.
package notifier

import (
	"context"

	"github.com/google/uuid"
	"github.com/hoangnk/clubslots/internal/domain"
)

// Kinds of user-facing notifications emitted by capacity changes.
const (
	KindConfirmWaitingSlot = "confirm_waiting_slot"
	KindRemoveConfirmVote  = "remove_confirm_vote"
)

// Event is one user-facing notification payload.
type Event struct {
	Kind        string `json:"kind"`
	Amount      int    `json:"amount"`
	Subject     string `json:"subject"`
	ActorName   string `json:"actor_name,omitempty"`
	ActorAvatar string `json:"actor_avatar,omitempty"`
}

// Notifier fans one notification out to a set of profiles.
type Notifier interface {
	Publish(ctx context.Context, profileIDs []uuid.UUID, ev Event) error
}

// CountPublisher broadcasts an absolute pool total for an event. Consumers
// treat each message as "set to latest value".
type CountPublisher interface {
	PublishCount(ctx context.Context, eventID uuid.UUID, pool domain.Pool, total int) error
}

// Noop discards notifications. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, []uuid.UUID, Event) error { return nil }
