package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// NewLeadID generates a date-stamped business identifier with a random
// suffix, e.g. "LD-20260827-4821". Uniqueness is enforced by the store;
// callers retry with a fresh identifier on collision.
func NewLeadID(now time.Time) string {
	return fmt.Sprintf("LD-%s-%04d", now.Format("20060102"), rand.IntN(10000))
}
