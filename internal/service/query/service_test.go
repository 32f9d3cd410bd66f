package query

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/repository"
)

type mockEvents struct {
	getFn func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
}

func (m *mockEvents) Create(context.Context, *domain.Event) error { return nil }
func (m *mockEvents) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEvents) Update(context.Context, *domain.Event) error { return nil }

type mockLedger struct {
	sumFn           func(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error)
	sumMemberPoolFn func(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool) (int, error)
	listByPoolFn    func(ctx context.Context, eventID uuid.UUID, pool domain.Pool, limit, offset int) ([]domain.Reservation, int, error)
	listByMemberFn  func(ctx context.Context, eventID, memberID uuid.UUID) ([]domain.Reservation, error)
}

func (m *mockLedger) SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error) {
	return m.sumFn(ctx, eventID, pool)
}
func (m *mockLedger) SumMemberPoolQuantity(ctx context.Context, eventID, memberID uuid.UUID, pool domain.Pool) (int, error) {
	return m.sumMemberPoolFn(ctx, eventID, memberID, pool)
}
func (m *mockLedger) ListByPool(ctx context.Context, eventID uuid.UUID, pool domain.Pool, limit, offset int) ([]domain.Reservation, int, error) {
	return m.listByPoolFn(ctx, eventID, pool, limit, offset)
}
func (m *mockLedger) ListByMember(ctx context.Context, eventID, memberID uuid.UUID) ([]domain.Reservation, error) {
	return m.listByMemberFn(ctx, eventID, memberID)
}

type mockMembers struct {
	byProfileFn func(ctx context.Context, clubID, profileID uuid.UUID) (*domain.Member, error)
}

func (m *mockMembers) Get(context.Context, uuid.UUID) (*domain.Member, error) {
	return nil, repository.ErrNotFound
}
func (m *mockMembers) GetByProfile(ctx context.Context, clubID, profileID uuid.UUID) (*domain.Member, error) {
	return m.byProfileFn(ctx, clubID, profileID)
}
func (m *mockMembers) ListAdmins(context.Context, uuid.UUID) ([]domain.Member, error) {
	return nil, nil
}

func eventGetter(ev *domain.Event) *mockEvents {
	return &mockEvents{
		getFn: func(_ context.Context, id uuid.UUID) (*domain.Event, error) {
			if ev != nil && id == ev.ID {
				cp := *ev
				return &cp, nil
			}
			return nil, repository.ErrNotFound
		},
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	svc := New(eventGetter(nil), &mockLedger{}, &mockMembers{}, nil)

	_, err := svc.GetEvent(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCounts(t *testing.T) {
	ev := &domain.Event{ID: uuid.New(), Slot: 20}
	ledger := &mockLedger{
		sumFn: func(_ context.Context, _ uuid.UUID, pool domain.Pool) (int, error) {
			if pool == domain.PoolConfirmed {
				return 12, nil
			}
			return 5, nil
		},
	}
	svc := New(eventGetter(ev), ledger, &mockMembers{}, nil)

	counts, err := svc.Counts(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, counts.Confirmed)
	assert.Equal(t, 5, counts.Waiting)
	assert.Equal(t, 17, counts.Total)
}

func TestMemberStats(t *testing.T) {
	clubID := uuid.New()
	ev := &domain.Event{ID: uuid.New(), ClubID: clubID}
	member := domain.Member{ID: uuid.New(), ClubID: clubID, ProfileID: uuid.New(), Status: domain.MemberActive}

	ledger := &mockLedger{
		sumMemberPoolFn: func(_ context.Context, _, memberID uuid.UUID, pool domain.Pool) (int, error) {
			require.Equal(t, member.ID, memberID)
			if pool == domain.PoolConfirmed {
				return 3, nil
			}
			return 1, nil
		},
	}
	members := &mockMembers{
		byProfileFn: func(_ context.Context, _, profileID uuid.UUID) (*domain.Member, error) {
			if profileID == member.ProfileID {
				cp := member
				return &cp, nil
			}
			return nil, repository.ErrNotFound
		},
	}
	svc := New(eventGetter(ev), ledger, members, nil)

	stats, err := svc.MemberStats(context.Background(), member.ProfileID, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Confirmed)
	assert.Equal(t, 1, stats.Waiting)
	assert.Equal(t, 4, stats.Total)

	_, err = svc.MemberStats(context.Background(), uuid.New(), ev.ID)
	assert.ErrorIs(t, err, ErrNotClubMember)
}

func TestListReservations_Paging(t *testing.T) {
	ev := &domain.Event{ID: uuid.New()}
	rows := []domain.Reservation{
		{ID: uuid.New(), EventID: ev.ID, Quantity: 2, Pool: domain.PoolWaiting, CreatedAt: time.Now()},
		{ID: uuid.New(), EventID: ev.ID, Quantity: 1, Pool: domain.PoolWaiting, CreatedAt: time.Now()},
	}
	ledger := &mockLedger{
		listByPoolFn: func(_ context.Context, _ uuid.UUID, pool domain.Pool, limit, offset int) ([]domain.Reservation, int, error) {
			assert.Equal(t, domain.PoolWaiting, pool)
			assert.Equal(t, 2, limit)
			assert.Equal(t, 0, offset)
			return rows, 7, nil
		},
	}
	svc := New(eventGetter(ev), ledger, &mockMembers{}, nil)

	page, err := svc.ListReservations(context.Background(), ev.ID, domain.PoolWaiting, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalCount)
	assert.True(t, page.HasMore)
	assert.Len(t, page.Results, 2)

	_, err = svc.ListReservations(context.Background(), ev.ID, "standby", 2, 0)
	assert.ErrorIs(t, err, ErrBadPool)
}
