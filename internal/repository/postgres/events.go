package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/repository"
)

type EventRepo struct {
	store *Store
	db    DB
}

func (r *EventRepo) With(db DB) *EventRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *EventRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.store.pool
}

const eventColumns = `id, club_id, title, description, slot, max_vote, start_at, end_at, status, created_by, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }, e *domain.Event) error {
	return row.Scan(
		&e.ID,
		&e.ClubID,
		&e.Title,
		&e.Description,
		&e.Slot,
		&e.MaxVote,
		&e.Start,
		&e.End,
		&e.Status,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (r *EventRepo) Create(ctx context.Context, e *domain.Event) error {
	const op = "postgres.EventRepo.Create"

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = domain.EventOpen
	}

	err := r.handle().QueryRow(ctx,
		`INSERT INTO club_events(id, club_id, title, description, slot, max_vote, start_at, end_at, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		e.ID, e.ClubID, e.Title, e.Description, e.Slot, e.MaxVote, e.Start, e.End, e.Status, e.CreatedBy,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

// Get retrieves an event by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the event does not exist.
func (r *EventRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	const op = "postgres.EventRepo.Get"

	var e domain.Event
	row := r.handle().QueryRow(ctx,
		`SELECT `+eventColumns+`
		 FROM club_events WHERE id = $1`,
		id,
	)
	if err := scanEvent(row, &e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return &e, nil
}

// Update rewrites the mutable event fields. The confirmed-pool sum is
// re-read in the same serializable transaction as the write, so the slot
// can never drop below quantity already committed.
//
// Returns:
//   - error: repository.ErrSlotBelowConfirmed when the new slot is lower
//     than the confirmed total.
//   - error: repository.ErrNotFound if the event does not exist.
func (r *EventRepo) Update(ctx context.Context, e *domain.Event) error {
	const op = "postgres.EventRepo.Update"

	run := func(ctx context.Context, db DB) error {
		confirmed, err := sumQuantity(ctx, db, e.ID, domain.PoolConfirmed)
		if err != nil {
			return err
		}

		if e.Slot < confirmed {
			return repository.ErrSlotBelowConfirmed
		}

		tag, err := db.Exec(ctx,
			`UPDATE club_events
			 SET title = $2, description = $3, slot = $4, max_vote = $5,
			     start_at = $6, end_at = $7, status = $8, updated_at = now()
			 WHERE id = $1`,
			e.ID, e.Title, e.Description, e.Slot, e.MaxVote, e.Start, e.End, e.Status,
		)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return repository.ErrNotFound
		}

		return nil
	}

	var err error
	if r.db != nil {
		err = run(ctx, r.db)
	} else {
		err = r.store.RunSerializable(ctx, run)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}
