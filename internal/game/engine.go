// internal/game/engine.go
//
// Round engine for the word game.
// Responsibilities:
//   - Create rounds around a source word.
//   - Validate submissions (length, letters available, unique, real word).
//   - Count mistakes and force a new source word once the limit is passed.
//
// Notes:
//   - The dictionary and the source word supply come in through interfaces,
//     so the same engine runs behind the HTTP API, the websocket channel and
//     the terminal client.
//   - Round is not safe for concurrent use; callers serialize access
//     (see store.Store.Update).
package game

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/robalobadob/wordimize/internal/words"
)

// Picker chooses the source word for a given round number (1-based).
type Picker interface {
	Pick(round int) string
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(round int) string

// Pick calls f(round).
func (f PickerFunc) Pick(round int) string { return f(round) }

// RandomPicker draws a uniformly random source word regardless of round number.
func RandomPicker(p words.Picker) Picker {
	return PickerFunc(func(int) string { return p.RandomSource() })
}

// Option configures a new Round.
type Option func(*Round)

// WithID sets a fixed round id (tests, restored rounds).
func WithID(id string) Option { return func(r *Round) { r.ID = id } }

// WithMode marks the round as free play or daily.
func WithMode(m Mode) Option { return func(r *Round) { r.Mode = m } }

// WithOwner records the signed-in user playing the round.
func WithOwner(userID string) Option { return func(r *Round) { r.Owner = userID } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(r *Round) { r.clock = now } }

// WithMaxMistakes sets how many rejections are tolerated before a reset.
func WithMaxMistakes(n int) Option {
	return func(r *Round) {
		if n > 0 {
			r.MaxMistakes = n
		}
	}
}

// WithMinLength sets the shortest accepted word.
func WithMinLength(n int) Option {
	return func(r *Round) {
		if n > 0 {
			r.MinLength = n
		}
	}
}

// New constructs a round around source.
func New(source string, opts ...Option) (*Round, error) {
	source = normalize(source)
	if source == "" {
		return nil, ErrEmptySource
	}
	r := &Round{
		ID:          uuid.NewString(),
		Mode:        ModeFree,
		Source:      source,
		Words:       []string{},
		Number:      1,
		MaxMistakes: DefaultMaxMistakes,
		MinLength:   DefaultMinLength,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	now := r.now()
	r.StartedAt, r.UpdatedAt = now, now
	return r, nil
}

// Submit validates word against the round and applies the result.
//
// Checks run in order: length, letters available in the source word,
// not already accepted, recognized by checker. The first failing check
// decides the verdict. Every rejection counts as a mistake; when mistakes
// exceed MaxMistakes the round restarts with picker's next source word.
func (r *Round) Submit(word string, checker words.Checker, picker Picker) Outcome {
	w := normalize(word)
	verdict := r.check(w, checker)
	r.UpdatedAt = r.now()

	if verdict == VerdictAccepted {
		r.Words = append([]string{w}, r.Words...)
		return r.outcome(verdict, w)
	}

	r.Mistakes++
	if r.Mistakes <= r.MaxMistakes {
		return r.outcome(verdict, w)
	}

	// Too many mistakes: the player gets a new word.
	r.Resets++
	r.reset(picker)
	out := r.outcome(verdict, w)
	out.Reset = true
	out.NewSource = r.Source
	out.Title = "Woops!"
	out.Message = "The word was a bit too difficult for you, we will give you a new word!"
	return out
}

// Restart begins a new round with picker's next source word.
func (r *Round) Restart(picker Picker) {
	r.reset(picker)
}

// Snapshot returns a copy of the round that shares no slices with r.
func (r *Round) Snapshot() Round {
	cp := *r
	cp.Words = append([]string{}, r.Words...)
	return cp
}

// Found reports how many words were accepted in the current round.
func (r *Round) Found() int { return len(r.Words) }

func (r *Round) reset(picker Picker) {
	r.Number++
	if next := normalize(picker.Pick(r.Number)); next != "" {
		r.Source = next
	}
	r.Words = []string{}
	r.Mistakes = 0
	r.UpdatedAt = r.now()
}

func (r *Round) check(w string, checker words.Checker) Verdict {
	switch {
	case !IsLongEnough(w, r.MinLength):
		return VerdictTooShort
	case !IsPossible(w, r.Source):
		return VerdictNotPossible
	case !IsUnique(w, r.Words):
		return VerdictAlreadyUsed
	case !checker.IsWord(w):
		return VerdictNotRecognized
	}
	return VerdictAccepted
}

func (r *Round) outcome(v Verdict, w string) Outcome {
	title, msg := r.describe(v)
	return Outcome{
		Verdict:  v,
		Word:     w,
		Title:    title,
		Message:  msg,
		Mistakes: r.Mistakes,
	}
}

// describe returns the alert title and message shown for a verdict.
func (r *Round) describe(v Verdict) (string, string) {
	switch v {
	case VerdictAccepted:
		return "Nice!", "Word added to your list."
	case VerdictTooShort:
		return "Word is too short", fmt.Sprintf("Word must be longer than %d letters!", r.MinLength-1)
	case VerdictNotPossible:
		return "Word not possible!", "You can't spell that from " + r.Source
	case VerdictAlreadyUsed:
		return "Word already used!", "You can't use the same word twice, be more original!"
	default:
		return "Word not recognized!", "You can't make up your own words, you know!"
	}
}

func (r *Round) now() time.Time {
	if r.clock == nil {
		return time.Now()
	}
	return r.clock()
}

// IsLongEnough reports whether word has at least min letters.
func IsLongEnough(word string, min int) bool {
	return utf8.RuneCountInString(word) >= min
}

// IsPossible reports whether every letter of word, counted with
// multiplicity, is available in source. Comparison is case-insensitive.
func IsPossible(word, source string) bool {
	avail := make(map[rune]int, len(source))
	for _, c := range strings.ToLower(source) {
		avail[c]++
	}
	for _, c := range strings.ToLower(word) {
		if avail[c] == 0 {
			return false
		}
		avail[c]--
	}
	return true
}

// IsUnique reports whether word is absent from used.
func IsUnique(word string, used []string) bool {
	for _, u := range used {
		if u == word {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
