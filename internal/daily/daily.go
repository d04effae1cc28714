// Package daily picks the shared source word for the daily challenge.
//
// The day's word is chosen deterministically from the date and a server
// salt, so every player gets the same source word without any stored state.
// Forced resets during a daily round walk forward through the source list
// from that starting point.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/robalobadob/wordimize/internal/game"
)

// Sources is the subset of words.Lists the daily picker needs.
type Sources interface {
	SourceAt(i int) string
	Stats() (sourceCount int, dictCount int)
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateKey validates a YYYY-MM-DD key.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("daily: bad date %q: %w", s, err)
	}
	return t, nil
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Picker returns a game.Picker for the given date. Round 1 gets the day's
// word; each later round takes the next word in the list.
func Picker(src Sources, date time.Time, salt string) game.Picker {
	n, _ := src.Stats()
	base := WordIndex(date, salt, n)
	return game.PickerFunc(func(round int) string {
		return src.SourceAt(base + round - 1)
	})
}
