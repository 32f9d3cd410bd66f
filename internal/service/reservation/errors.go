package reservation

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrVotingNotStarted    = errors.New("voting has not started")
	ErrVotingClosed        = errors.New("voting is closed")
	ErrNotClubMember       = errors.New("not an active club member")
	ErrNotClubAdmin        = errors.New("not a club admin")
	ErrAlreadyReserved     = errors.New("member already holds a reservation for this event")
	ErrBadQuantity         = errors.New("quantity must be positive")
	ErrOnlyDecrease        = errors.New("quantity can only be decreased")
	ErrMemberCapExceeded   = errors.New("member reservation cap exceeded")
	ErrSlotFull            = errors.New("no confirmed slots available")
)
