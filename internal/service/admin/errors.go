package admin

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrNotClubMember      = errors.New("not an active club member")
	ErrNotClubAdmin       = errors.New("not a club admin")
	ErrInvalidEvent       = errors.New("invalid event fields")
	ErrSlotBelowConfirmed = errors.New("slot cannot shrink below confirmed total")
)
