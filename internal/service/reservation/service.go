// Package reservation implements the member-facing slot mutations: reserve,
// cancel, change quantity, self-service slot adjustment, note and payment
// tagging. Every operation gates the ledger write behind window, membership
// and capacity checks, then hands freed capacity to the allocator.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/notifier"
	"github.com/hoangnk/clubslots/internal/repository"
)

// capacity is the allocator surface the mutations drive.
type capacity interface {
	Reconcile(ctx context.Context, event *domain.Event, available int) error
	ReduceSlots(ctx context.Context, event *domain.Event, memberID uuid.UUID, pool domain.Pool, amount int) error
	Broadcast(ctx context.Context, eventID uuid.UUID)
}

// invalidator drops cached event views after a mutation.
type invalidator interface {
	InvalidateEvent(ctx context.Context, eventID uuid.UUID) error
}

type Service struct {
	events  repository.Events
	ledger  repository.Ledger
	members repository.Members
	alloc   capacity
	notif   notifier.Notifier
	cache   invalidator
	log     *slog.Logger
	now     func() time.Time
}

func New(
	events repository.Events,
	ledger repository.Ledger,
	members repository.Members,
	alloc capacity,
	notif notifier.Notifier,
	cache invalidator,
	log *slog.Logger,
) *Service {
	return &Service{
		events:  events,
		ledger:  ledger,
		members: members,
		alloc:   alloc,
		notif:   notif,
		cache:   cache,
		log:     log,
		now:     time.Now,
	}
}

// Reserve creates a member's first reservation for an event. When pool is
// empty the reservation lands in the confirmed pool if it fits and spills
// into the waiting pool otherwise; an explicit pool is binding and a full
// confirmed pool is an error.
//
// Parameters:
//   - ctx: request-scoped context.
//   - profileID: identity of the caller.
//   - eventID: event to reserve slots in.
//   - quantity: number of slots, must be positive.
//   - pool: requested pool, or empty for automatic placement.
//   - note: optional free-form note.
//
// Returns:
//   - *domain.Reservation: the created reservation.
//   - error: reservation.ErrEventNotFound, ErrVotingNotStarted,
//     ErrVotingClosed, ErrNotClubMember, ErrAlreadyReserved, ErrBadQuantity,
//     ErrMemberCapExceeded or ErrSlotFull.
func (s *Service) Reserve(
	ctx context.Context,
	profileID, eventID uuid.UUID,
	quantity int,
	pool domain.Pool,
	note string,
) (*domain.Reservation, error) {
	const op = "service.reservation.Reserve"

	if quantity <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrBadQuantity)
	}

	ev, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := checkWindow(ev, s.now()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	member, err := s.activeMember(ctx, ev.ClubID, profileID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	held, err := s.ledger.SumMemberQuantity(ctx, eventID, member.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if held > 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrAlreadyReserved)
	}

	res := &domain.Reservation{
		ID:       uuid.New(),
		EventID:  eventID,
		MemberID: member.ID,
		Quantity: quantity,
		Note:     note,
	}

	if err := s.place(ctx, res, ev, pool); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.finish(ctx, eventID)
	return res, nil
}

// place routes the reservation into its pool, translating ledger sentinels.
func (s *Service) place(ctx context.Context, res *domain.Reservation, ev *domain.Event, pool domain.Pool) error {
	switch pool {
	case domain.PoolConfirmed:
		res.Pool = domain.PoolConfirmed
		err := s.ledger.CreateConfirmed(ctx, res, ev.Slot, ev.MaxVote)
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return ErrSlotFull
		}
		return translateCap(err)

	case domain.PoolWaiting:
		res.Pool = domain.PoolWaiting
		return translateCap(s.ledger.CreateWaiting(ctx, res, ev.MaxVote))

	default:
		res.Pool = domain.PoolConfirmed
		err := s.ledger.CreateConfirmed(ctx, res, ev.Slot, ev.MaxVote)
		if errors.Is(err, repository.ErrCapacityExceeded) {
			res.Pool = domain.PoolWaiting
			err = s.ledger.CreateWaiting(ctx, res, ev.MaxVote)
		}
		return translateCap(err)
	}
}

// Cancel deletes a reservation. Members cancel their own reservations inside
// the voting window; admins cancel anyone's at any time. Cancelling a
// confirmed reservation frees capacity: club admins are notified when a
// member gives the capacity up voluntarily, and the waiting pool is
// reconciled against it.
//
// Returns:
//   - *domain.Event: the affected event.
//   - error: reservation.ErrReservationNotFound, ErrEventNotFound,
//     ErrNotClubMember, ErrNotClubAdmin, ErrVotingNotStarted or
//     ErrVotingClosed.
func (s *Service) Cancel(ctx context.Context, profileID, reservationID uuid.UUID) (*domain.Event, error) {
	const op = "service.reservation.Cancel"

	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ev, err := s.getEvent(ctx, res.EventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	caller, err := s.activeMember(ctx, ev.ClubID, profileID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	self := caller.ID == res.MemberID
	if !self && !caller.Admin() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotClubAdmin)
	}
	if self && !caller.Admin() {
		if err := checkWindow(ev, s.now()); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.ledger.Delete(ctx, res.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrReservationNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res.Pool == domain.PoolConfirmed {
		if self {
			s.notifyAdmins(ctx, ev, res.Quantity)
		}
		if err := s.alloc.Reconcile(ctx, ev, res.Quantity); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		s.alloc.Broadcast(ctx, ev.ID)
	}

	s.invalidate(ctx, ev.ID)
	return ev, nil
}

// ChangeQuantity lowers a reservation's quantity. Increases are rejected;
// top-ups go through ChangeSlots. A new quantity of zero or less deletes the
// row. A confirmed decrease hands the freed capacity to the waiting pool.
//
// Returns:
//   - *domain.Reservation: the updated reservation, nil when deleted.
//   - error: reservation.ErrReservationNotFound, ErrEventNotFound,
//     ErrNotClubMember, ErrNotClubAdmin or ErrOnlyDecrease.
func (s *Service) ChangeQuantity(
	ctx context.Context,
	profileID, reservationID uuid.UUID,
	newQuantity int,
) (*domain.Reservation, error) {
	const op = "service.reservation.ChangeQuantity"

	res, ev, err := s.ownedReservation(ctx, profileID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if newQuantity >= res.Quantity {
		return nil, fmt.Errorf("%s: %w", op, ErrOnlyDecrease)
	}

	if newQuantity < 0 {
		newQuantity = 0
	}
	freed := res.Quantity - newQuantity

	if err := s.ledger.SetQuantity(ctx, res.ID, newQuantity); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if res.Pool == domain.PoolConfirmed {
		if err := s.alloc.Reconcile(ctx, ev, freed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		s.alloc.Broadcast(ctx, ev.ID)
	}

	s.invalidate(ctx, ev.ID)

	if newQuantity == 0 {
		return nil, nil
	}
	res.Quantity = newQuantity
	return res, nil
}

// ChangeSlots adjusts the caller's total quantity in one pool to newTotal.
// Increases pass the same window, cap and capacity checks as Reserve and add
// a new row; decreases shrink the caller's newest rows first. A confirmed
// decrease notifies club admins and hands the freed capacity to the waiting
// pool.
//
// Returns:
//   - error: reservation.ErrEventNotFound, ErrVotingNotStarted,
//     ErrVotingClosed, ErrNotClubMember, ErrBadQuantity,
//     ErrMemberCapExceeded or ErrSlotFull.
func (s *Service) ChangeSlots(
	ctx context.Context,
	profileID, eventID uuid.UUID,
	pool domain.Pool,
	newTotal int,
) error {
	const op = "service.reservation.ChangeSlots"

	if newTotal < 0 || !pool.Valid() {
		return fmt.Errorf("%s: %w", op, ErrBadQuantity)
	}

	ev, err := s.getEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := checkWindow(ev, s.now()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	member, err := s.activeMember(ctx, ev.ClubID, profileID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current, err := s.ledger.SumMemberPoolQuantity(ctx, eventID, member.ID, pool)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	delta := newTotal - current
	switch {
	case delta == 0:
		return nil

	case delta > 0:
		res := &domain.Reservation{
			ID:       uuid.New(),
			EventID:  eventID,
			MemberID: member.ID,
			Quantity: delta,
		}
		if err := s.place(ctx, res, ev, pool); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

	default:
		if err := s.alloc.ReduceSlots(ctx, ev, member.ID, pool, -delta); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if pool == domain.PoolConfirmed {
			s.notifyAdmins(ctx, ev, -delta)
			if err := s.alloc.Reconcile(ctx, ev, -delta); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	s.finish(ctx, eventID)
	return nil
}

// Annotate replaces the free-form note on the caller's own reservation.
func (s *Service) Annotate(ctx context.Context, profileID, reservationID uuid.UUID, note string) (*domain.Reservation, error) {
	const op = "service.reservation.Annotate"

	res, _, err := s.ownedReservation(ctx, profileID, reservationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.ledger.SetNote(ctx, res.ID, note); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res.Note = note
	return res, nil
}

// SetPaymentTag marks a reservation's payment state. Admin only.
func (s *Service) SetPaymentTag(ctx context.Context, profileID, reservationID uuid.UUID, tag string) (*domain.Reservation, error) {
	const op = "service.reservation.SetPaymentTag"

	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ev, err := s.getEvent(ctx, res.EventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	caller, err := s.activeMember(ctx, ev.ClubID, profileID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !caller.Admin() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotClubAdmin)
	}

	if err := s.ledger.SetPaymentTag(ctx, res.ID, tag); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res.PaymentTag = tag
	return res, nil
}

// ownedReservation loads a reservation and authorizes the caller as its
// owner or a club admin.
func (s *Service) ownedReservation(ctx context.Context, profileID, reservationID uuid.UUID) (*domain.Reservation, *domain.Event, error) {
	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, nil, err
	}

	ev, err := s.getEvent(ctx, res.EventID)
	if err != nil {
		return nil, nil, err
	}

	caller, err := s.activeMember(ctx, ev.ClubID, profileID)
	if err != nil {
		return nil, nil, err
	}
	if caller.ID != res.MemberID && !caller.Admin() {
		return nil, nil, ErrNotClubAdmin
	}

	return res, ev, nil
}

func (s *Service) getEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ev, err := s.events.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return ev, nil
}

func (s *Service) getReservation(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	res, err := s.ledger.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) activeMember(ctx context.Context, clubID, profileID uuid.UUID) (*domain.Member, error) {
	m, err := s.members.GetByProfile(ctx, clubID, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotClubMember
		}
		return nil, err
	}
	if !m.Active() {
		return nil, ErrNotClubMember
	}
	return m, nil
}

// notifyAdmins tells club admins that confirmed capacity was given up.
// Fire-and-forget.
func (s *Service) notifyAdmins(ctx context.Context, ev *domain.Event, amount int) {
	admins, err := s.members.ListAdmins(ctx, ev.ClubID)
	if err != nil {
		s.log.Warn("admin notify skipped, lookup failed", "club_id", ev.ClubID, "error", err)
		return
	}
	if len(admins) == 0 {
		return
	}

	profiles := make([]uuid.UUID, 0, len(admins))
	for _, a := range admins {
		profiles = append(profiles, a.ProfileID)
	}

	err = s.notif.Publish(ctx, profiles, notifier.Event{
		Kind:    notifier.KindRemoveConfirmVote,
		Amount:  amount,
		Subject: ev.Title,
	})
	if err != nil {
		s.log.Warn("admin notify failed", "club_id", ev.ClubID, "error", err)
	}
}

// finish broadcasts fresh counts and drops cached views after a mutation.
func (s *Service) finish(ctx context.Context, eventID uuid.UUID) {
	s.alloc.Broadcast(ctx, eventID)
	s.invalidate(ctx, eventID)
}

func (s *Service) invalidate(ctx context.Context, eventID uuid.UUID) {
	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		s.log.Warn("cache invalidation failed", "event_id", eventID, "error", err)
	}
}

func translateCap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrMemberCapExceeded):
		return ErrMemberCapExceeded
	case errors.Is(err, repository.ErrCapacityExceeded):
		return ErrSlotFull
	default:
		return err
	}
}

// checkWindow rejects mutations outside the event's [Start, End) voting
// window or its open status.
func checkWindow(ev *domain.Event, now time.Time) error {
	if ev.Status == domain.EventDraft || now.Before(ev.Start) {
		return ErrVotingNotStarted
	}
	if ev.Status == domain.EventClosed || !now.Before(ev.End) {
		return ErrVotingClosed
	}
	return nil
}
