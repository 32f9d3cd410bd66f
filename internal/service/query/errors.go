package query

import "errors"

var (
	ErrEventNotFound = errors.New("event not found")
	ErrNotClubMember = errors.New("not an active club member")
	ErrBadPool       = errors.New("unknown pool")
)
