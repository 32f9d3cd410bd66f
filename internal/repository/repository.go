package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hoangnk/clubslots/internal/domain"
)

// Ledger is the durable record of slot commitments. Mutations are atomic
// per call and visible to subsequent sums (read-your-writes). Creation
// methods re-read the authoritative sums inside a serializable transaction,
// so a passed check cannot be raced into over-booking.
type Ledger interface {
	// CreateConfirmed inserts r into the confirmed pool after re-checking,
	// in one serializable transaction, that neither the event capacity nor
	// the member cap would be exceeded. Returns ErrCapacityExceeded or
	// ErrMemberCapExceeded.
	CreateConfirmed(ctx context.Context, r *domain.Reservation, slot, maxVote int) error

	// CreateWaiting inserts r into the waiting pool, enforcing only the
	// member cap. Returns ErrMemberCapExceeded.
	CreateWaiting(ctx context.Context, r *domain.Reservation, maxVote int) error

	Get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)

	// SetQuantity updates a reservation quantity in place; a result of
	// zero or less deletes the row instead.
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error

	SetNote(ctx context.Context, id uuid.UUID, note string) error
	SetPaymentTag(ctx context.Context, id uuid.UUID, tag string) error

	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByMemberPool(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool) error

	// Promote flips a waiting reservation to confirmed in place: same row,
	// same id.
	Promote(ctx context.Context, id uuid.UUID) error

	// Split moves take units out of a waiting reservation into a brand new
	// confirmed row for the same member and event, atomically.
	Split(ctx context.Context, id uuid.UUID, take int) (*domain.Reservation, error)

	SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error)
	SumMemberQuantity(ctx context.Context, eventID, memberID uuid.UUID) (int, error)
	SumMemberPoolQuantity(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool) (int, error)

	// ListWaitingFIFO returns the event's waiting pool ordered oldest-first.
	ListWaitingFIFO(ctx context.Context, eventID uuid.UUID) ([]domain.Reservation, error)

	// ListMemberPool returns one member's reservations in a pool, newest
	// first when newestFirst is set (the reduceSlots walk order).
	ListMemberPool(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool, newestFirst bool) ([]domain.Reservation, error)

	ListByMember(ctx context.Context, eventID, memberID uuid.UUID) ([]domain.Reservation, error)
	ListByPool(ctx context.Context, eventID uuid.UUID, pool domain.Pool, limit, offset int) ([]domain.Reservation, int, error)
}

// Events is the event store consumed by the mutation services.
type Events interface {
	Create(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// Update rewrites the mutable event fields. When the slot shrinks below
	// the current confirmed total the update is rejected with
	// ErrSlotBelowConfirmed; the sum is re-read inside the same
	// serializable transaction as the write.
	Update(ctx context.Context, e *domain.Event) error
}

// Members resolves club membership for authorization checks and
// notification addressing.
type Members interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetByProfile(ctx context.Context, clubID, profileID uuid.UUID) (*domain.Member, error)
	ListAdmins(ctx context.Context, clubID uuid.UUID) ([]domain.Member, error)
}
