// Package allocator reconciles the waiting pool of an event against freed
// confirmed capacity. It assumes its caller already validated authorization
// and window preconditions; the only errors it raises are storage errors.
package allocator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/notifier"
)

// ledger is the subset of repository.Ledger the allocator mutates.
type ledger interface {
	ListWaitingFIFO(ctx context.Context, eventID uuid.UUID) ([]domain.Reservation, error)
	ListMemberPool(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool, newestFirst bool) ([]domain.Reservation, error)
	Promote(ctx context.Context, id uuid.UUID) error
	Split(ctx context.Context, id uuid.UUID, take int) (*domain.Reservation, error)
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error)
}

// members resolves a reservation owner to the profile that receives the
// promotion notification.
type members interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Member, error)
}

// Allocator promotes waiting reservations into freed capacity and shrinks
// confirmed ones when capacity is taken away.
type Allocator struct {
	ledger   ledger
	members  members
	notifier notifier.Notifier
	counts   notifier.CountPublisher
	log      *slog.Logger
}

func New(l ledger, m members, n notifier.Notifier, c notifier.CountPublisher, log *slog.Logger) *Allocator {
	return &Allocator{
		ledger:   l,
		members:  m,
		notifier: n,
		counts:   c,
		log:      log,
	}
}

// Reconcile walks the event's waiting pool oldest-first and promotes
// reservations into available slots. A reservation larger than the remaining
// capacity is split: the taken amount becomes a new confirmed row, the
// remainder stays waiting, and the walk stops. Earlier reservations are
// always served in full before later ones are touched, even when a later,
// smaller one would fit more tightly.
//
// Each promotion commits independently, so a failure mid-walk only affects
// the reservations not yet processed.
func (a *Allocator) Reconcile(ctx context.Context, event *domain.Event, available int) error {
	const op = "allocator.Allocator.Reconcile"

	if available <= 0 {
		return nil
	}

	waiting, err := a.ledger.ListWaitingFIFO(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range waiting {
		if available <= 0 {
			break
		}

		if r.Quantity <= available {
			if err := a.ledger.Promote(ctx, r.ID); err != nil {
				return fmt.Errorf("%s: promote %s: %w", op, r.ID, err)
			}
			available -= r.Quantity
			a.notifyPromoted(ctx, event, r.MemberID, r.Quantity)
			continue
		}

		// r does not fit. Take what is left and stop.
		take := available
		if _, err := a.ledger.Split(ctx, r.ID, take); err != nil {
			return fmt.Errorf("%s: split %s: %w", op, r.ID, err)
		}
		available = 0
		a.notifyPromoted(ctx, event, r.MemberID, take)
	}

	a.Broadcast(ctx, event.ID)
	return nil
}

// ReduceSlots removes amount units from one member's reservations in a pool,
// walking newest-first so the member's oldest commitment is disturbed last.
// A reservation shrunk to zero is deleted, never left empty.
func (a *Allocator) ReduceSlots(ctx context.Context, event *domain.Event, memberID uuid.UUID, pool domain.Pool, amount int) error {
	const op = "allocator.Allocator.ReduceSlots"

	if amount <= 0 {
		return nil
	}

	rows, err := a.ledger.ListMemberPool(ctx, event.ID, memberID, pool, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, r := range rows {
		if amount <= 0 {
			break
		}

		if r.Quantity <= amount {
			if err := a.ledger.Delete(ctx, r.ID); err != nil {
				return fmt.Errorf("%s: delete %s: %w", op, r.ID, err)
			}
			amount -= r.Quantity
			continue
		}

		if err := a.ledger.SetQuantity(ctx, r.ID, r.Quantity-amount); err != nil {
			return fmt.Errorf("%s: shrink %s: %w", op, r.ID, err)
		}
		amount = 0
	}

	a.Broadcast(ctx, event.ID)
	return nil
}

// Broadcast publishes the current total of both pools. Delivery failures are
// logged and swallowed; counts are "set to latest value" messages, so a
// missed one is corrected by the next mutation.
func (a *Allocator) Broadcast(ctx context.Context, eventID uuid.UUID) {
	for _, pool := range []domain.Pool{domain.PoolConfirmed, domain.PoolWaiting} {
		total, err := a.ledger.SumQuantity(ctx, eventID, pool)
		if err != nil {
			a.log.Warn("count sum failed", "event_id", eventID, "pool", pool, "error", err)
			continue
		}
		if err := a.counts.PublishCount(ctx, eventID, pool, total); err != nil {
			a.log.Warn("count broadcast failed", "event_id", eventID, "pool", pool, "error", err)
		}
	}
}

func (a *Allocator) notifyPromoted(ctx context.Context, event *domain.Event, memberID uuid.UUID, amount int) {
	m, err := a.members.Get(ctx, memberID)
	if err != nil {
		a.log.Warn("promotion notify skipped, member lookup failed",
			"member_id", memberID, "error", err)
		return
	}

	err = a.notifier.Publish(ctx, []uuid.UUID{m.ProfileID}, notifier.Event{
		Kind:    notifier.KindConfirmWaitingSlot,
		Amount:  amount,
		Subject: event.Title,
	})
	if err != nil {
		a.log.Warn("promotion notify failed", "member_id", memberID, "error", err)
	}
}
