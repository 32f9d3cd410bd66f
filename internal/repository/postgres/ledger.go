package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/repository"
)

// LedgerRepo persists reservations. Composite operations (checked creation,
// split) own their serializable transaction unless bound to an enclosing one
// with With.
type LedgerRepo struct {
	store *Store
	db    DB
}

func (r *LedgerRepo) With(db DB) *LedgerRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *LedgerRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.store.pool
}

const reservationColumns = `id, event_id, member_id, quantity, pool, COALESCE(note, ''), COALESCE(payment_tag, ''), created_at, updated_at`

func scanReservation(row interface{ Scan(dest ...any) error }, res *domain.Reservation) error {
	return row.Scan(
		&res.ID,
		&res.EventID,
		&res.MemberID,
		&res.Quantity,
		&res.Pool,
		&res.Note,
		&res.PaymentTag,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
}

// CreateConfirmed inserts a confirmed reservation. The confirmed-pool sum
// and the member's combined sum are re-read inside the same serializable
// transaction as the insert, so two racing calls cannot both pass the
// capacity check.
//
// Returns:
//   - error: repository.ErrCapacityExceeded when the confirmed pool is full.
//   - error: repository.ErrMemberCapExceeded when the member cap is hit.
func (r *LedgerRepo) CreateConfirmed(
	ctx context.Context,
	res *domain.Reservation,
	slot, maxVote int,
) error {
	const op = "postgres.LedgerRepo.CreateConfirmed"

	if r.db != nil {
		if err := r.createConfirmedCore(ctx, r.db, res, slot, maxVote); err != nil {
			return fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		return nil
	}

	err := r.store.RunSerializable(ctx, func(ctx context.Context, tx DB) error {
		return r.createConfirmedCore(ctx, tx, res, slot, maxVote)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

// CreateWaiting inserts a waiting reservation, enforcing only the member cap.
//
// Returns:
//   - error: repository.ErrMemberCapExceeded when the member cap is hit.
func (r *LedgerRepo) CreateWaiting(
	ctx context.Context,
	res *domain.Reservation,
	maxVote int,
) error {
	const op = "postgres.LedgerRepo.CreateWaiting"

	if r.db != nil {
		if err := r.createWaitingCore(ctx, r.db, res, maxVote); err != nil {
			return fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		return nil
	}

	err := r.store.RunSerializable(ctx, func(ctx context.Context, tx DB) error {
		return r.createWaitingCore(ctx, tx, res, maxVote)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

func (r *LedgerRepo) createConfirmedCore(
	ctx context.Context,
	db DB,
	res *domain.Reservation,
	slot, maxVote int,
) error {
	confirmed, err := sumQuantity(ctx, db, res.EventID, domain.PoolConfirmed)
	if err != nil {
		return err
	}

	if confirmed+res.Quantity > slot {
		return repository.ErrCapacityExceeded
	}

	if err := checkMemberCap(ctx, db, res, maxVote); err != nil {
		return err
	}

	res.Pool = domain.PoolConfirmed

	return insertReservation(ctx, db, res)
}

func (r *LedgerRepo) createWaitingCore(
	ctx context.Context,
	db DB,
	res *domain.Reservation,
	maxVote int,
) error {
	if err := checkMemberCap(ctx, db, res, maxVote); err != nil {
		return err
	}

	res.Pool = domain.PoolWaiting

	return insertReservation(ctx, db, res)
}

func checkMemberCap(ctx context.Context, db DB, res *domain.Reservation, maxVote int) error {
	if maxVote <= 0 {
		return nil
	}

	var memberTotal int
	err := db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM reservations
		 WHERE event_id = $1 AND member_id = $2`,
		res.EventID, res.MemberID,
	).Scan(&memberTotal)
	if err != nil {
		return err
	}

	if memberTotal+res.Quantity > maxVote {
		return repository.ErrMemberCapExceeded
	}

	return nil
}

func insertReservation(ctx context.Context, db DB, res *domain.Reservation) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}

	row := db.QueryRow(ctx,
		`INSERT INTO reservations(id, event_id, member_id, quantity, pool, note, payment_tag)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		 RETURNING created_at, updated_at`,
		res.ID, res.EventID, res.MemberID, res.Quantity, res.Pool, res.Note, res.PaymentTag,
	)

	return row.Scan(&res.CreatedAt, &res.UpdatedAt)
}

// Get retrieves one reservation.
//
// Returns:
//   - error: repository.ErrNotFound if no such reservation exists.
func (r *LedgerRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	const op = "postgres.LedgerRepo.Get"

	db := r.handle()

	var res domain.Reservation
	row := db.QueryRow(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations WHERE id = $1`,
		id,
	)
	if err := scanReservation(row, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return &res, nil
}

// SetQuantity updates a reservation quantity in place. A quantity of zero or
// less deletes the row; zero-quantity reservations never persist.
func (r *LedgerRepo) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	const op = "postgres.LedgerRepo.SetQuantity"

	if quantity <= 0 {
		if err := r.Delete(ctx, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE reservations SET quantity = $2, updated_at = now() WHERE id = $1`,
		id, quantity,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *LedgerRepo) SetNote(ctx context.Context, id uuid.UUID, note string) error {
	const op = "postgres.LedgerRepo.SetNote"

	tag, err := r.handle().Exec(ctx,
		`UPDATE reservations SET note = NULLIF($2, ''), updated_at = now() WHERE id = $1`,
		id, note,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *LedgerRepo) SetPaymentTag(ctx context.Context, id uuid.UUID, paymentTag string) error {
	const op = "postgres.LedgerRepo.SetPaymentTag"

	tag, err := r.handle().Exec(ctx,
		`UPDATE reservations SET payment_tag = NULLIF($2, ''), updated_at = now() WHERE id = $1`,
		id, paymentTag,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// Delete removes one reservation.
//
// Returns:
//   - error: repository.ErrNotFound if no row was deleted.
func (r *LedgerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.LedgerRepo.Delete"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// DeleteByMemberPool removes all of a member's reservations in one pool.
func (r *LedgerRepo) DeleteByMemberPool(
	ctx context.Context,
	eventID, memberID uuid.UUID,
	pool domain.Pool,
) error {
	const op = "postgres.LedgerRepo.DeleteByMemberPool"

	_, err := r.handle().Exec(ctx,
		`DELETE FROM reservations
		 WHERE event_id = $1 AND member_id = $2 AND pool = $3`,
		eventID, memberID, pool,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return nil
}

// Promote flips a waiting reservation to confirmed in place: same row, same
// id, same created_at.
//
// Returns:
//   - error: repository.ErrNotFound if the reservation is missing or no
//     longer waiting.
func (r *LedgerRepo) Promote(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.LedgerRepo.Promote"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE reservations
		 SET pool = $2, updated_at = now()
		 WHERE id = $1 AND pool = $3`,
		id, domain.PoolConfirmed, domain.PoolWaiting,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}

	return nil
}

// Split takes take units out of a waiting reservation and creates a new
// confirmed row for the same member and event, in one transaction. The
// waiting row keeps the remainder.
func (r *LedgerRepo) Split(ctx context.Context, id uuid.UUID, take int) (*domain.Reservation, error) {
	const op = "postgres.LedgerRepo.Split"

	var confirmed *domain.Reservation

	run := func(ctx context.Context, db DB) error {
		var eventID, memberID uuid.UUID

		err := db.QueryRow(ctx,
			`UPDATE reservations
			 SET quantity = quantity - $2, updated_at = now()
			 WHERE id = $1 AND pool = $3 AND quantity > $2
			 RETURNING event_id, member_id`,
			id, take, domain.PoolWaiting,
		).Scan(&eventID, &memberID)
		if err != nil {
			return err
		}

		res := &domain.Reservation{
			ID:       uuid.New(),
			EventID:  eventID,
			MemberID: memberID,
			Quantity: take,
			Pool:     domain.PoolConfirmed,
		}
		if err := insertReservation(ctx, db, res); err != nil {
			return err
		}

		confirmed = res
		return nil
	}

	var err error
	if r.db != nil {
		err = run(ctx, r.db)
	} else {
		err = r.store.RunSerializable(ctx, run)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return confirmed, nil
}

// SumQuantity totals the quantities of one pool for an event.
func (r *LedgerRepo) SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error) {
	const op = "postgres.LedgerRepo.SumQuantity"

	total, err := sumQuantity(ctx, r.handle(), eventID, pool)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return total, nil
}

func sumQuantity(ctx context.Context, db DB, eventID uuid.UUID, pool domain.Pool) (int, error) {
	var total int
	err := db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM reservations
		 WHERE event_id = $1 AND pool = $2`,
		eventID, pool,
	).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// SumMemberQuantity totals one member's quantities across both pools.
func (r *LedgerRepo) SumMemberQuantity(ctx context.Context, eventID, memberID uuid.UUID) (int, error) {
	const op = "postgres.LedgerRepo.SumMemberQuantity"

	var total int
	err := r.handle().QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM reservations
		 WHERE event_id = $1 AND member_id = $2`,
		eventID, memberID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return total, nil
}

// SumMemberPoolQuantity totals one member's quantities in a single pool.
func (r *LedgerRepo) SumMemberPoolQuantity(
	ctx context.Context,
	eventID, memberID uuid.UUID,
	pool domain.Pool,
) (int, error) {
	const op = "postgres.LedgerRepo.SumMemberPoolQuantity"

	var total int
	err := r.handle().QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)
		 FROM reservations
		 WHERE event_id = $1 AND member_id = $2 AND pool = $3`,
		eventID, memberID, pool,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return total, nil
}

// ListWaitingFIFO returns the waiting pool ordered oldest-first, the
// promotion order.
func (r *LedgerRepo) ListWaitingFIFO(ctx context.Context, eventID uuid.UUID) ([]domain.Reservation, error) {
	const op = "postgres.LedgerRepo.ListWaitingFIFO"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE event_id = $1 AND pool = $2
		 ORDER BY created_at ASC`,
		eventID, domain.PoolWaiting,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListMemberPool returns one member's reservations in a pool; newestFirst
// selects the reduce walk order.
func (r *LedgerRepo) ListMemberPool(
	ctx context.Context,
	eventID, memberID uuid.UUID,
	pool domain.Pool,
	newestFirst bool,
) ([]domain.Reservation, error) {
	const op = "postgres.LedgerRepo.ListMemberPool"

	order := "ASC"
	if newestFirst {
		order = "DESC"
	}

	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE event_id = $1 AND member_id = $2 AND pool = $3
		 ORDER BY created_at `+order,
		eventID, memberID, pool,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListByMember returns all of a member's reservations for an event, newest
// first.
func (r *LedgerRepo) ListByMember(ctx context.Context, eventID, memberID uuid.UUID) ([]domain.Reservation, error) {
	const op = "postgres.LedgerRepo.ListByMember"

	rows, err := r.handle().Query(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE event_id = $1 AND member_id = $2
		 ORDER BY created_at DESC`,
		eventID, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListByPool returns a FIFO page of an event's reservations in one pool plus
// the pool's total row count.
func (r *LedgerRepo) ListByPool(
	ctx context.Context,
	eventID uuid.UUID,
	pool domain.Pool,
	limit, offset int,
) ([]domain.Reservation, int, error) {
	const op = "postgres.LedgerRepo.ListByPool"

	db := r.handle()

	var total int
	err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reservations WHERE event_id = $1 AND pool = $2`,
		eventID, pool,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	rows, err := db.Query(ctx,
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE event_id = $1 AND pool = $2
		 ORDER BY created_at ASC
		 LIMIT $3 OFFSET $4`,
		eventID, pool, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return out, total, nil
}
