package httpgin

import (
	"time"

	"github.com/hoangnk/clubslots/internal/domain"
)

// MutationResponse is the envelope every write operation returns.
type MutationResponse struct {
	Success     bool                `json:"success"`
	Code        int                 `json:"code"`
	Message     string              `json:"message"`
	Event       *domain.Event       `json:"event,omitempty"`
	Reservation *domain.Reservation `json:"reservation,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateReservationRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Pool     string `json:"pool" binding:"omitempty,oneof=confirmed waiting"`
	Note     string `json:"note"`
}

type ChangeQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type NoteRequest struct {
	Note string `json:"note"`
}

type PaymentRequest struct {
	PaymentTag string `json:"payment_tag" binding:"required"`
}

type ChangeSlotsRequest struct {
	Pool  string `json:"pool" binding:"required,oneof=confirmed waiting"`
	Total *int   `json:"total" binding:"required,gte=0"`
}

type EventRequest struct {
	ClubID      string `json:"club_id"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Slot        int    `json:"slot" binding:"required,gt=0"`
	MaxVote     int    `json:"max_vote" binding:"gte=0"`
	StartsAt    string `json:"starts_at" binding:"required"`
	EndsAt      string `json:"ends_at" binding:"required"`
	Status      string `json:"status" binding:"omitempty,oneof=draft open closed"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
