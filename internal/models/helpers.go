package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateID generates a short unique ID with the given prefix
func GenerateID(prefix string) string {
	id := uuid.New().String()

	return fmt.Sprintf("%s-%s", prefix, id[:8])
}

// GenerateOrderID generates the human-readable order reference. The
// timestamp component keeps references sortable; the uuid suffix breaks
// same-millisecond collisions.
func GenerateOrderID() string {
	suffix := strings.ToUpper(uuid.New().String()[:6])

	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

// GetCurrentTime returns the current time in UTC
func GetCurrentTime() time.Time {
	return time.Now().UTC()
}
