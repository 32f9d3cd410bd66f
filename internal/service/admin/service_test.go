package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/repository"
)

// --- Mocks ---

type mockEvents struct {
	createFn func(ctx context.Context, e *domain.Event) error
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	updateFn func(ctx context.Context, e *domain.Event) error
}

func (m *mockEvents) Create(ctx context.Context, e *domain.Event) error { return m.createFn(ctx, e) }
func (m *mockEvents) Get(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEvents) Update(ctx context.Context, e *domain.Event) error { return m.updateFn(ctx, e) }

type mockCounts struct {
	sumFn func(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error)
}

func (m *mockCounts) SumQuantity(ctx context.Context, eventID uuid.UUID, pool domain.Pool) (int, error) {
	return m.sumFn(ctx, eventID, pool)
}

type mockMembers struct {
	byProfile map[uuid.UUID]domain.Member
}

func (m *mockMembers) Get(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	return nil, repository.ErrNotFound
}
func (m *mockMembers) GetByProfile(_ context.Context, clubID, profileID uuid.UUID) (*domain.Member, error) {
	mem, ok := m.byProfile[profileID]
	if !ok || mem.ClubID != clubID {
		return nil, repository.ErrNotFound
	}
	return &mem, nil
}
func (m *mockMembers) ListAdmins(context.Context, uuid.UUID) ([]domain.Member, error) {
	return nil, nil
}

type mockAlloc struct {
	reconciled  []int
	broadcasted int
}

func (m *mockAlloc) Reconcile(_ context.Context, _ *domain.Event, available int) error {
	m.reconciled = append(m.reconciled, available)
	return nil
}
func (m *mockAlloc) Broadcast(context.Context, uuid.UUID) { m.broadcasted++ }

type noopCache struct{}

func (noopCache) InvalidateEvent(context.Context, uuid.UUID) error { return nil }

// --- Tests ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func member(clubID uuid.UUID, role domain.MemberRole, status domain.MemberStatus) domain.Member {
	return domain.Member{
		ID:        uuid.New(),
		ClubID:    clubID,
		ProfileID: uuid.New(),
		Status:    status,
		Role:      role,
	}
}

func sampleInput(clubID uuid.UUID) EventInput {
	return EventInput{
		ClubID:      clubID,
		Title:       "summer tournament",
		Description: "annual doubles bracket",
		Slot:        16,
		MaxVote:     2,
		Start:       time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
		End:         time.Date(2026, 9, 10, 22, 0, 0, 0, time.UTC),
	}
}

func TestCreateEvent_Success(t *testing.T) {
	clubID := uuid.New()
	adm := member(clubID, domain.RoleAdmin, domain.MemberActive)

	events := &mockEvents{
		createFn: func(_ context.Context, e *domain.Event) error { return nil },
	}
	svc := New(events, &mockCounts{}, &mockMembers{byProfile: map[uuid.UUID]domain.Member{adm.ProfileID: adm}},
		&mockAlloc{}, noopCache{}, testLogger())

	ev, err := svc.CreateEvent(context.Background(), adm.ProfileID, sampleInput(clubID))
	require.NoError(t, err)
	assert.Equal(t, "summer tournament", ev.Title)
	assert.Equal(t, domain.EventOpen, ev.Status)
	assert.NotEqual(t, uuid.Nil, ev.ID)
}

func TestCreateEvent_RequiresAdmin(t *testing.T) {
	clubID := uuid.New()
	mem := member(clubID, domain.RoleMember, domain.MemberActive)

	svc := New(&mockEvents{}, &mockCounts{}, &mockMembers{byProfile: map[uuid.UUID]domain.Member{mem.ProfileID: mem}},
		&mockAlloc{}, noopCache{}, testLogger())

	_, err := svc.CreateEvent(context.Background(), mem.ProfileID, sampleInput(clubID))
	assert.ErrorIs(t, err, ErrNotClubAdmin)

	_, err = svc.CreateEvent(context.Background(), uuid.New(), sampleInput(clubID))
	assert.ErrorIs(t, err, ErrNotClubMember)
}

func TestCreateEvent_Validation(t *testing.T) {
	clubID := uuid.New()
	adm := member(clubID, domain.RoleAdmin, domain.MemberActive)
	svc := New(&mockEvents{}, &mockCounts{}, &mockMembers{byProfile: map[uuid.UUID]domain.Member{adm.ProfileID: adm}},
		&mockAlloc{}, noopCache{}, testLogger())

	in := sampleInput(clubID)
	in.Title = ""
	_, err := svc.CreateEvent(context.Background(), adm.ProfileID, in)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	in = sampleInput(clubID)
	in.Slot = 0
	_, err = svc.CreateEvent(context.Background(), adm.ProfileID, in)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	in = sampleInput(clubID)
	in.End = in.Start
	_, err = svc.CreateEvent(context.Background(), adm.ProfileID, in)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestUpdateEvent_GrowReconcilesWaiting(t *testing.T) {
	clubID := uuid.New()
	adm := member(clubID, domain.RoleAdmin, domain.MemberActive)
	eventID := uuid.New()

	stored := domain.Event{ID: eventID, ClubID: clubID, Title: "old", Slot: 10, Status: domain.EventOpen}
	events := &mockEvents{
		getFn: func(_ context.Context, id uuid.UUID) (*domain.Event, error) {
			cp := stored
			return &cp, nil
		},
		updateFn: func(_ context.Context, e *domain.Event) error {
			stored = *e
			return nil
		},
	}
	counts := &mockCounts{
		sumFn: func(_ context.Context, _ uuid.UUID, pool domain.Pool) (int, error) { return 10, nil },
	}
	alloc := &mockAlloc{}
	svc := New(events, counts, &mockMembers{byProfile: map[uuid.UUID]domain.Member{adm.ProfileID: adm}},
		alloc, noopCache{}, testLogger())

	in := sampleInput(clubID)
	in.Slot = 16
	ev, err := svc.UpdateEvent(context.Background(), adm.ProfileID, eventID, in)
	require.NoError(t, err)
	assert.Equal(t, 16, ev.Slot)

	// 16 slots, 10 confirmed: 6 handed to the waiting pool.
	require.Len(t, alloc.reconciled, 1)
	assert.Equal(t, 6, alloc.reconciled[0])
}

func TestUpdateEvent_ShrinkBelowConfirmedRejected(t *testing.T) {
	clubID := uuid.New()
	adm := member(clubID, domain.RoleAdmin, domain.MemberActive)
	eventID := uuid.New()

	events := &mockEvents{
		getFn: func(_ context.Context, id uuid.UUID) (*domain.Event, error) {
			return &domain.Event{ID: eventID, ClubID: clubID, Title: "old", Slot: 10, Status: domain.EventOpen}, nil
		},
		updateFn: func(_ context.Context, e *domain.Event) error {
			return repository.ErrSlotBelowConfirmed
		},
	}
	alloc := &mockAlloc{}
	svc := New(events, &mockCounts{}, &mockMembers{byProfile: map[uuid.UUID]domain.Member{adm.ProfileID: adm}},
		alloc, noopCache{}, testLogger())

	in := sampleInput(clubID)
	in.Slot = 3
	_, err := svc.UpdateEvent(context.Background(), adm.ProfileID, eventID, in)
	assert.ErrorIs(t, err, ErrSlotBelowConfirmed)
	assert.Empty(t, alloc.reconciled)
}

func TestUpdateEvent_NotFound(t *testing.T) {
	clubID := uuid.New()
	adm := member(clubID, domain.RoleAdmin, domain.MemberActive)

	events := &mockEvents{
		getFn: func(context.Context, uuid.UUID) (*domain.Event, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc := New(events, &mockCounts{}, &mockMembers{byProfile: map[uuid.UUID]domain.Member{adm.ProfileID: adm}},
		&mockAlloc{}, noopCache{}, testLogger())

	_, err := svc.UpdateEvent(context.Background(), adm.ProfileID, uuid.New(), sampleInput(clubID))
	assert.ErrorIs(t, err, ErrEventNotFound)
}
