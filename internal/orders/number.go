package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Unambiguous alphabet: no 0/O, 1/I/L.
const orderNumberAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// NewOrderNumber builds a human-readable unique order number such as
// ORD-20260301-K7M2QX. Uniqueness is enforced by the column's unique index;
// the random suffix makes collisions within a day vanishingly rare.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand never fails on supported platforms; fall back to time.
		nano := now.UnixNano()
		for i := range suffix {
			suffix[i] = byte(nano >> (i * 8))
		}
	}
	for i, b := range suffix {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}
