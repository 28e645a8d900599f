package words

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SeedIndex returns a deterministic index for a date using
// HMAC(seed, YYYY-MM-DD) % n.
func SeedIndex(seed string, date time.Time, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(seed))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Seeded returns the word of the day for seed: every server started with
// the same seed and dictionary on the same UTC date opens on the same word.
func (d *Dictionary) Seeded(seed string, now time.Time) string {
	return d.list[SeedIndex(seed, now, len(d.list))]
}
