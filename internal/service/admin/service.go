// Package admin implements the admin-only event mutations: creating events
// and editing their fields, including capacity resizes that feed freed slots
// back to the waiting pool.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/repository"
)

// counts is the ledger read the resize path needs.
type counts interface {
	SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error)
}

type capacity interface {
	Reconcile(ctx context.Context, event *domain.Event, available int) error
	Broadcast(ctx context.Context, eventID uuid.UUID)
}

type invalidator interface {
	InvalidateEvent(ctx context.Context, eventID uuid.UUID) error
}

// EventInput is the full editable field set of an event.
type EventInput struct {
	ClubID      uuid.UUID
	Title       string
	Description string
	Slot        int
	MaxVote     int
	Start       time.Time
	End         time.Time
	Status      domain.EventStatus
}

type Service struct {
	events  repository.Events
	ledger  counts
	members repository.Members
	alloc   capacity
	cache   invalidator
	log     *slog.Logger
}

func New(
	events repository.Events,
	ledger counts,
	members repository.Members,
	alloc capacity,
	cache invalidator,
	log *slog.Logger,
) *Service {
	return &Service{
		events:  events,
		ledger:  ledger,
		members: members,
		alloc:   alloc,
		cache:   cache,
		log:     log,
	}
}

// CreateEvent creates a new capacity-limited event in the caller's club.
//
// Returns:
//   - *domain.Event: the created event.
//   - error: admin.ErrNotClubMember, ErrNotClubAdmin or ErrInvalidEvent.
func (s *Service) CreateEvent(ctx context.Context, profileID uuid.UUID, in EventInput) (*domain.Event, error) {
	const op = "service.admin.CreateEvent"

	if _, err := s.requireAdmin(ctx, in.ClubID, profileID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := in.Status
	if status == "" {
		status = domain.EventOpen
	}

	ev := &domain.Event{
		ID:          uuid.New(),
		ClubID:      in.ClubID,
		Title:       in.Title,
		Description: in.Description,
		Slot:        in.Slot,
		MaxVote:     in.MaxVote,
		Start:       in.Start,
		End:         in.End,
		Status:      status,
	}

	if err := s.events.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ev, nil
}

// UpdateEvent rewrites an event's editable fields. Shrinking the slot below
// the current confirmed total is rejected without mutating anything; growing
// it reconciles the whole waiting pool against the new capacity.
//
// Returns:
//   - *domain.Event: the updated event.
//   - error: admin.ErrEventNotFound, ErrNotClubMember, ErrNotClubAdmin,
//     ErrInvalidEvent or ErrSlotBelowConfirmed.
func (s *Service) UpdateEvent(ctx context.Context, profileID, eventID uuid.UUID, in EventInput) (*domain.Event, error) {
	const op = "service.admin.UpdateEvent"

	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.requireAdmin(ctx, ev.ClubID, profileID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validate(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ev.Title = in.Title
	ev.Description = in.Description
	ev.Slot = in.Slot
	ev.MaxVote = in.MaxVote
	ev.Start = in.Start
	ev.End = in.End
	if in.Status != "" {
		ev.Status = in.Status
	}

	if err := s.events.Update(ctx, ev); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotBelowConfirmed):
			return nil, fmt.Errorf("%s: %w", op, ErrSlotBelowConfirmed)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrEventNotFound)
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	// A grown slot may now fit waiting reservations.
	confirmed, err := s.ledger.SumQuantity(ctx, eventID, domain.PoolConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if available := ev.Slot - confirmed; available > 0 {
		if err := s.alloc.Reconcile(ctx, ev, available); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		s.alloc.Broadcast(ctx, eventID)
	}

	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		s.log.Warn("cache invalidation failed", "event_id", eventID, "error", err)
	}

	return ev, nil
}

func (s *Service) requireAdmin(ctx context.Context, clubID, profileID uuid.UUID) (*domain.Member, error) {
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
	if !m.Admin() {
		return nil, ErrNotClubAdmin
	}
	return m, nil
}

func validate(in EventInput) error {
	if in.Title == "" || in.Slot <= 0 || !in.End.After(in.Start) {
		return ErrInvalidEvent
	}
	if in.Status != "" {
		switch in.Status {
		case domain.EventDraft, domain.EventOpen, domain.EventClosed:
		default:
			return ErrInvalidEvent
		}
	}
	return nil
}
