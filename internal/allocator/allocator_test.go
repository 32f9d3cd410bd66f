package allocator

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoangnk/clubslots/internal/domain"
	"github.com/hoangnk/clubslots/internal/notifier"
)

type fakeLedger struct {
	reservations []domain.Reservation
}

func (f *fakeLedger) ListWaitingFIFO(_ context.Context, eventID uuid.UUID) ([]domain.Reservation, error) {
	out := f.filter(eventID, domain.PoolWaiting)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLedger) ListMemberPool(_ context.Context, eventID, memberID uuid.UUID, pool domain.Pool, newestFirst bool) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, r := range f.filter(eventID, pool) {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeLedger) Promote(_ context.Context, id uuid.UUID) error {
	r := f.find(id)
	r.Pool = domain.PoolConfirmed
	return nil
}

func (f *fakeLedger) Split(_ context.Context, id uuid.UUID, take int) (*domain.Reservation, error) {
	r := f.find(id)
	r.Quantity -= take
	created := domain.Reservation{
		ID:        uuid.New(),
		EventID:   r.EventID,
		MemberID:  r.MemberID,
		Quantity:  take,
		Pool:      domain.PoolConfirmed,
		CreatedAt: time.Now(),
	}
	f.reservations = append(f.reservations, created)
	return &created, nil
}

func (f *fakeLedger) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return f.Delete(ctx, id)
	}
	f.find(id).Quantity = quantity
	return nil
}

func (f *fakeLedger) Delete(_ context.Context, id uuid.UUID) error {
	for i, r := range f.reservations {
		if r.ID == id {
			f.reservations = append(f.reservations[:i], f.reservations[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeLedger) SumQuantity(_ context.Context, eventID uuid.UUID, pool domain.Pool) (int, error) {
	total := 0
	for _, r := range f.filter(eventID, pool) {
		total += r.Quantity
	}
	return total, nil
}

func (f *fakeLedger) filter(eventID uuid.UUID, pool domain.Pool) []domain.Reservation {
	var out []domain.Reservation
	for _, r := range f.reservations {
		if r.EventID == eventID && r.Pool == pool {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeLedger) find(id uuid.UUID) *domain.Reservation {
	for i := range f.reservations {
		if f.reservations[i].ID == id {
			return &f.reservations[i]
		}
	}
	return nil
}

type fakeMembers struct{}

func (fakeMembers) Get(_ context.Context, id uuid.UUID) (*domain.Member, error) {
	return &domain.Member{ID: id, ProfileID: id, Status: domain.MemberActive}, nil
}

type sentEvent struct {
	profiles []uuid.UUID
	event    notifier.Event
}

type fakeNotifier struct {
	sent []sentEvent
}

func (f *fakeNotifier) Publish(_ context.Context, profileIDs []uuid.UUID, ev notifier.Event) error {
	f.sent = append(f.sent, sentEvent{profiles: profileIDs, event: ev})
	return nil
}

type fakeCounts struct {
	latest map[domain.Pool]int
}

func (f *fakeCounts) PublishCount(_ context.Context, _ uuid.UUID, pool domain.Pool, total int) error {
	if f.latest == nil {
		f.latest = map[domain.Pool]int{}
	}
	f.latest[pool] = total
	return nil
}

func newTestAllocator(l *fakeLedger) (*Allocator, *fakeNotifier, *fakeCounts) {
	n := &fakeNotifier{}
	c := &fakeCounts{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(l, fakeMembers{}, n, c, log), n, c
}

func waitingRes(eventID, memberID uuid.UUID, qty int, createdAt time.Time) domain.Reservation {
	return domain.Reservation{
		ID:        uuid.New(),
		EventID:   eventID,
		MemberID:  memberID,
		Quantity:  qty,
		Pool:      domain.PoolWaiting,
		CreatedAt: createdAt,
	}
}

func TestReconcile_FIFOFairness(t *testing.T) {
	eventID := uuid.New()
	memberA := uuid.New()
	memberB := uuid.New()
	base := time.Now()

	a := waitingRes(eventID, memberA, 3, base)
	b := waitingRes(eventID, memberB, 2, base.Add(time.Minute))

	ledger := &fakeLedger{reservations: []domain.Reservation{a, b}}
	alloc, notif, counts := newTestAllocator(ledger)

	err := alloc.Reconcile(context.Background(), &domain.Event{ID: eventID, Title: "spring mixer"}, 4)
	require.NoError(t, err)

	// A is promoted in full, in place, before B is touched.
	promoted := ledger.find(a.ID)
	require.NotNil(t, promoted)
	assert.Equal(t, domain.PoolConfirmed, promoted.Pool)
	assert.Equal(t, 3, promoted.Quantity)

	// B gave up one unit to a new confirmed row and keeps the rest waiting.
	remainder := ledger.find(b.ID)
	require.NotNil(t, remainder)
	assert.Equal(t, domain.PoolWaiting, remainder.Pool)
	assert.Equal(t, 1, remainder.Quantity)

	confirmed, err := ledger.SumQuantity(context.Background(), eventID, domain.PoolConfirmed)
	require.NoError(t, err)
	assert.Equal(t, 4, confirmed)

	require.Len(t, notif.sent, 2)
	assert.Equal(t, []uuid.UUID{memberA}, notif.sent[0].profiles)
	assert.Equal(t, 3, notif.sent[0].event.Amount)
	assert.Equal(t, notifier.KindConfirmWaitingSlot, notif.sent[0].event.Kind)
	assert.Equal(t, []uuid.UUID{memberB}, notif.sent[1].profiles)
	assert.Equal(t, 1, notif.sent[1].event.Amount)

	assert.Equal(t, 4, counts.latest[domain.PoolConfirmed])
	assert.Equal(t, 1, counts.latest[domain.PoolWaiting])
}

func TestReconcile_SplitKeepsRemainderWaiting(t *testing.T) {
	eventID := uuid.New()
	memberC := uuid.New()

	c := waitingRes(eventID, memberC, 8, time.Now())
	ledger := &fakeLedger{reservations: []domain.Reservation{c}}
	alloc, notif, _ := newTestAllocator(ledger)

	err := alloc.Reconcile(context.Background(), &domain.Event{ID: eventID}, 5)
	require.NoError(t, err)

	remainder := ledger.find(c.ID)
	require.NotNil(t, remainder)
	assert.Equal(t, domain.PoolWaiting, remainder.Pool)
	assert.Equal(t, 3, remainder.Quantity)

	confirmed := ledger.filter(eventID, domain.PoolConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, 5, confirmed[0].Quantity)
	assert.Equal(t, memberC, confirmed[0].MemberID)
	assert.NotEqual(t, c.ID, confirmed[0].ID)

	require.Len(t, notif.sent, 1)
	assert.Equal(t, 5, notif.sent[0].event.Amount)
}

func TestReconcile_NoCapacityIsNoop(t *testing.T) {
	eventID := uuid.New()
	w := waitingRes(eventID, uuid.New(), 3, time.Now())
	ledger := &fakeLedger{reservations: []domain.Reservation{w}}
	alloc, notif, counts := newTestAllocator(ledger)

	require.NoError(t, alloc.Reconcile(context.Background(), &domain.Event{ID: eventID}, 0))
	require.NoError(t, alloc.Reconcile(context.Background(), &domain.Event{ID: eventID}, -2))

	got := ledger.find(w.ID)
	require.NotNil(t, got)
	assert.Equal(t, domain.PoolWaiting, got.Pool)
	assert.Equal(t, 3, got.Quantity)
	assert.Empty(t, notif.sent)
	assert.Empty(t, counts.latest)
}

func TestReduceSlots_NewestFirst(t *testing.T) {
	eventID := uuid.New()
	memberID := uuid.New()
	base := time.Now()

	x := domain.Reservation{
		ID: uuid.New(), EventID: eventID, MemberID: memberID,
		Quantity: 2, Pool: domain.PoolConfirmed, CreatedAt: base,
	}
	y := domain.Reservation{
		ID: uuid.New(), EventID: eventID, MemberID: memberID,
		Quantity: 5, Pool: domain.PoolConfirmed, CreatedAt: base.Add(time.Hour),
	}
	ledger := &fakeLedger{reservations: []domain.Reservation{x, y}}
	alloc, _, counts := newTestAllocator(ledger)

	err := alloc.ReduceSlots(context.Background(), &domain.Event{ID: eventID}, memberID, domain.PoolConfirmed, 4)
	require.NoError(t, err)

	// The newer reservation absorbs the whole reduction.
	gotY := ledger.find(y.ID)
	require.NotNil(t, gotY)
	assert.Equal(t, 1, gotY.Quantity)

	gotX := ledger.find(x.ID)
	require.NotNil(t, gotX)
	assert.Equal(t, 2, gotX.Quantity)

	assert.Equal(t, 3, counts.latest[domain.PoolConfirmed])
}

func TestReduceSlots_DeletesZeroedRows(t *testing.T) {
	eventID := uuid.New()
	memberID := uuid.New()
	base := time.Now()

	x := domain.Reservation{
		ID: uuid.New(), EventID: eventID, MemberID: memberID,
		Quantity: 2, Pool: domain.PoolConfirmed, CreatedAt: base,
	}
	y := domain.Reservation{
		ID: uuid.New(), EventID: eventID, MemberID: memberID,
		Quantity: 5, Pool: domain.PoolConfirmed, CreatedAt: base.Add(time.Hour),
	}
	ledger := &fakeLedger{reservations: []domain.Reservation{x, y}}
	alloc, _, _ := newTestAllocator(ledger)

	err := alloc.ReduceSlots(context.Background(), &domain.Event{ID: eventID}, memberID, domain.PoolConfirmed, 6)
	require.NoError(t, err)

	assert.Nil(t, ledger.find(y.ID))

	gotX := ledger.find(x.ID)
	require.NotNil(t, gotX)
	assert.Equal(t, 1, gotX.Quantity)
}
