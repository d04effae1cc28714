package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordimize/internal/words"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2026-10-19 05:00 at UTC+10 is still the 18th in UTC.
	assert.Equal(t, "2026-10-18", DateKey(time.Date(2026, 10, 19, 5, 0, 0, 0, loc)))
}

func TestParseDateKey(t *testing.T) {
	d, err := ParseDateKey("2026-10-18")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", DateKey(d))

	_, err = ParseDateKey("18/10/2026")
	assert.Error(t, err)
}

func TestWordIndex_DeterministicAndInRange(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	a := WordIndex(day, "salt", 30)
	b := WordIndex(day.Add(20*time.Hour), "salt", 30)
	assert.Equal(t, a, b, "same UTC day gives the same index")
	assert.GreaterOrEqual(t, a, 0)
	assert.Less(t, a, 30)

	assert.Equal(t, 0, WordIndex(day, "salt", 0))
}

func TestWordIndex_SaltMatters(t *testing.T) {
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	differs := false
	for _, salt := range []string{"a", "b", "c", "d", "e", "f"} {
		if WordIndex(day, salt, 1000) != WordIndex(day, "base", 1000) {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestPicker_WalksForwardFromDailyWord(t *testing.T) {
	l, err := words.New([]string{"alpha", "bravo", "charlie", "delta"}, nil)
	require.NoError(t, err)
	day := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	base := WordIndex(day, "salt", 4)

	p := Picker(l, day, "salt")
	assert.Equal(t, l.SourceAt(base), p.Pick(1))
	assert.Equal(t, l.SourceAt(base+1), p.Pick(2))
	assert.Equal(t, l.SourceAt(base+4), p.Pick(5), "wraps around the list")
}
