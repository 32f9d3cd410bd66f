package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/hoangnk/clubslots/internal/domain"
)

// MemberRepo resolves club membership rows. Read-only here; account and
// profile management are external collaborators.
type MemberRepo struct {
	pool *pgxpool.Pool
}

// Get fetches one membership row by id.
//
// Returns:
//   - error: repository.ErrNotFound if no such member exists.
func (r *MemberRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	const op = "postgres.MemberRepo.Get"

	var m domain.Member
	err := r.pool.QueryRow(ctx,
		`SELECT id, club_id, profile_id, status, role
		 FROM club_members
		 WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.ClubID, &m.ProfileID, &m.Status, &m.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return &m, nil
}

// GetByProfile looks up one profile's membership in a club.
//
// Returns:
//   - error: repository.ErrNotFound if the profile is not a member.
func (r *MemberRepo) GetByProfile(ctx context.Context, clubID, profileID uuid.UUID) (*domain.Member, error) {
	const op = "postgres.MemberRepo.GetByProfile"

	var m domain.Member
	err := r.pool.QueryRow(ctx,
		`SELECT id, club_id, profile_id, status, role
		 FROM club_members
		 WHERE club_id = $1 AND profile_id = $2`,
		clubID, profileID,
	).Scan(&m.ID, &m.ClubID, &m.ProfileID, &m.Status, &m.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	return &m, nil
}

// ListAdmins returns the club's admin members, the audience for
// capacity-release notifications.
func (r *MemberRepo) ListAdmins(ctx context.Context, clubID uuid.UUID) ([]domain.Member, error) {
	const op = "postgres.MemberRepo.ListAdmins"

	rows, err := r.pool.Query(ctx,
		`SELECT id, club_id, profile_id, status, role
		 FROM club_members
		 WHERE club_id = $1 AND role = $2`,
		clubID, domain.RoleAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.ClubID, &m.ProfileID, &m.Status, &m.Role); err != nil {
			return nil, fmt.Errorf("%s: %w", op, translateDBErr(err))
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}
