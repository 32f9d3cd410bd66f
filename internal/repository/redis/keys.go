package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "clubslots:v1"

func KeyEventSummary(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s:summary", ns, eventID)
}

func KeyEventCounts(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s:counts", ns, eventID)
}

func KeyIdemReserve(eventID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:reserve:%s:%s", ns, eventID, idemKey)
}

func ChannelCountChanged() string {
	return ns + ":counts:changed"
}
