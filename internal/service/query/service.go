// Package query implements the read-side views over the ledger: event
// summaries, aggregate counts, the caller's own stats and reservation
// listings. Hot views are cached in redis behind singleflight.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/repository"
	redisrepo "github.com/hoangnk/clubslots/internal/repository/redis"
)

const (
	summaryTTL = 30 * time.Second
	countsTTL  = 5 * time.Second

	defaultPageSize = 50
	maxPageSize     = 200
)

// ledgerReads is the slice of the ledger the read side consumes.
type ledgerReads interface {
	SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error)
	SumMemberPoolQuantity(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool) (int, error)
	ListByPool(ctx context.Context, eventID uuid.UUID, pool domain.Pool, limit, offset int) ([]domain.Reservation, int, error)
	ListByMember(ctx context.Context, eventID, memberID uuid.UUID) ([]domain.Reservation, error)
}

type Service struct {
	events  repository.Events
	ledger  ledgerReads
	members repository.Members
	cache   *redisrepo.Cache
}

// New creates the read service. cache may be nil; views are then always
// computed from the ledger.
func New(events repository.Events, ledger ledgerReads, members repository.Members, cache *redisrepo.Cache) *Service {
	return &Service{
		events:  events,
		ledger:  ledger,
		members: members,
		cache:   cache,
	}
}

// GetEvent returns one event, served from cache when possible.
//
// Returns:
//   - error: query.ErrEventNotFound if the event does not exist.
func (s *Service) GetEvent(ctx context.Context, eventID uuid.UUID) (*domain.Event, error) {
	const op = "service.query.GetEvent"

	load := func(ctx context.Context) (domain.Event, error) {
		ev, err := s.events.Get(ctx, eventID)
		if err != nil {
			return domain.Event{}, err
		}
		return *ev, nil
	}

	var ev domain.Event
	var err error
	if s.cache != nil {
		ev, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyEventSummary(eventID), summaryTTL, load)
	} else {
		ev, err = load(ctx)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ev, nil
}

// Counts returns the confirmed and waiting totals for an event. The counts
// are cached briefly; the live count channel carries the fresh values.
//
// Returns:
//   - error: query.ErrEventNotFound if the event does not exist.
func (s *Service) Counts(ctx context.Context, eventID uuid.UUID) (*domain.ReservationCounts, error) {
	const op = "service.query.Counts"

	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	load := func(ctx context.Context) (domain.ReservationCounts, error) {
		return s.sumCounts(ctx, eventID)
	}

	var counts domain.ReservationCounts
	var err error
	if s.cache != nil {
		counts, err = redisrepo.GetOrSetJSON(ctx, s.cache, redisrepo.KeyEventCounts(eventID), countsTTL, load)
	} else {
		counts, err = load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &counts, nil
}

// MemberStats returns the caller's own confirmed/waiting/total quantities
// for an event. Never cached; the caller expects read-your-writes here.
//
// Returns:
//   - error: query.ErrEventNotFound or ErrNotClubMember.
func (s *Service) MemberStats(ctx context.Context, profileID, eventID uuid.UUID) (*domain.ReservationCounts, error) {
	const op = "service.query.MemberStats"

	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	member, err := s.members.GetByProfile(ctx, ev.ClubID, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotClubMember)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	confirmed, err := s.ledger.SumMemberPoolQuantity(ctx, eventID, member.ID, domain.PoolConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	waiting, err := s.ledger.SumMemberPoolQuantity(ctx, eventID, member.ID, domain.PoolWaiting)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.ReservationCounts{
		Confirmed: confirmed,
		Waiting:   waiting,
		Total:     confirmed + waiting,
	}, nil
}

// ListReservations returns one FIFO-ordered page of an event's pool.
//
// Returns:
//   - error: query.ErrEventNotFound or ErrBadPool.
func (s *Service) ListReservations(
	ctx context.Context,
	eventID uuid.UUID,
	pool domain.Pool,
	limit, offset int,
) (*domain.ReservationPage, error) {
	const op = "service.query.ListReservations"

	if !pool.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrBadPool)
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, total, err := s.ledger.ListByPool(ctx, eventID, pool, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &domain.ReservationPage{
		TotalCount: total,
		HasMore:    offset+len(rows) < total,
		Results:    rows,
	}, nil
}

// ListMemberReservations returns all of the caller's reservations for an
// event, both pools.
//
// Returns:
//   - error: query.ErrEventNotFound or ErrNotClubMember.
func (s *Service) ListMemberReservations(ctx context.Context, profileID, eventID uuid.UUID) ([]domain.Reservation, error) {
	const op = "service.query.ListMemberReservations"

	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	member, err := s.members.GetByProfile(ctx, ev.ClubID, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotClubMember)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.ledger.ListByMember(ctx, eventID, member.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rows, nil
}

func (s *Service) sumCounts(ctx context.Context, eventID uuid.UUID) (domain.ReservationCounts, error) {
	confirmed, err := s.ledger.SumQuantity(ctx, eventID, domain.PoolConfirmed)
	if err != nil {
		return domain.ReservationCounts{}, err
	}
	waiting, err := s.ledger.SumQuantity(ctx, eventID, domain.PoolWaiting)
	if err != nil {
		return domain.ReservationCounts{}, err
	}
	return domain.ReservationCounts{
		Confirmed: confirmed,
		Waiting:   waiting,
		Total:     confirmed + waiting,
	}, nil
}
