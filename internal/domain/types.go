package domain

import (
	"time"

	"github.com/google/uuid"
)

// Pool identifies which reservation pool a ledger entry belongs to.
type Pool string

const (
	PoolConfirmed Pool = "confirmed"
	PoolWaiting   Pool = "waiting"
)

func (p Pool) Valid() bool {
	return p == PoolConfirmed || p == PoolWaiting
}

type EventStatus string

const (
	EventDraft  EventStatus = "draft"
	EventOpen   EventStatus = "open"
	EventClosed EventStatus = "closed"
)

type MemberStatus int

const (
	MemberPending MemberStatus = 1
	MemberActive  MemberStatus = 2
)

type MemberRole int

const (
	RoleMember MemberRole = 1
	RoleAdmin  MemberRole = 2
)

// Event is a capacity-limited club occasion. Slot is the confirmed-pool
// capacity; MaxVote caps one member's total quantity across both pools
// (<= 0 means uncapped). Reservations are accepted while now is inside
// [Start, End).
type Event struct {
	ID          uuid.UUID   `json:"id"`
	ClubID      uuid.UUID   `json:"club_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Slot        int         `json:"slot"`
	MaxVote     int         `json:"max_vote"`
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Status      EventStatus `json:"status"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Open reports whether the voting window contains t.
func (e *Event) Open(t time.Time) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

// Reservation is one ledger entry: a member's slot commitment against an
// event in one pool. CreatedAt is the FIFO tie-break for promotion. A
// quantity never persists at or below zero.
type Reservation struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	MemberID   uuid.UUID `json:"member_id"`
	Quantity   int       `json:"quantity"`
	Pool       Pool      `json:"pool"`
	Note       string    `json:"note,omitempty"`
	PaymentTag string    `json:"payment_tag,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Member is a club-scoped participant identity.
type Member struct {
	ID        uuid.UUID    `json:"id"`
	ClubID    uuid.UUID    `json:"club_id"`
	ProfileID uuid.UUID    `json:"profile_id"`
	Status    MemberStatus `json:"status"`
	Role      MemberRole   `json:"role"`
}

func (m *Member) Active() bool { return m.Status == MemberActive }
func (m *Member) Admin() bool  { return m.Role == RoleAdmin }

// ReservationCounts is the derived read-side view over the ledger.
type ReservationCounts struct {
	Confirmed int `json:"confirmed"`
	Waiting   int `json:"waiting"`
	Total     int `json:"total"`
}

// ReservationPage is a FIFO-ordered page of ledger entries.
type ReservationPage struct {
	TotalCount int           `json:"total_count"`
	HasMore    bool          `json:"has_more"`
	Results    []Reservation `json:"results"`
}
