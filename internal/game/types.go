// internal/game/types.go
//
// Core type definitions for the round engine.
// Defines:
//   - Verdict: result of checking a single submission.
//   - Mode:    free play or the daily challenge.
//   - Round:   state of one player's current round.
//   - Outcome: what a submission did, ready to show to the player.

package game

import (
	"errors"
	"time"
)

// Verdict is the evaluation result of one submission.
type Verdict string

const (
	VerdictAccepted      Verdict = "accepted"
	VerdictTooShort      Verdict = "too_short"
	VerdictNotPossible   Verdict = "not_possible"
	VerdictAlreadyUsed   Verdict = "already_used"
	VerdictNotRecognized Verdict = "not_recognized"
)

// Mode selects how source words are chosen.
type Mode string

const (
	ModeFree  Mode = "free"
	ModeDaily Mode = "daily"
)

const (
	// DefaultMaxMistakes is the number of rejections tolerated per round.
	// The next rejection forces a new source word.
	DefaultMaxMistakes = 5
	// DefaultMinLength is the shortest accepted submission, in letters.
	DefaultMinLength = 3
)

// ErrEmptySource is returned when a round would start without a source word.
var ErrEmptySource = errors.New("game: empty source word")

// Round holds the state of a single player's round.
type Round struct {
	ID          string    `json:"id"`
	Mode        Mode      `json:"mode"`
	Source      string    `json:"source"`   // lowercase source word (the screen title)
	Words       []string  `json:"words"`    // accepted words, newest first
	Mistakes    int       `json:"mistakes"` // rejections since the round began
	Number      int       `json:"round"`    // 1 for the first round, bumped on every reset/restart
	Resets      int       `json:"resets"`   // forced resets caused by too many mistakes
	MaxMistakes int       `json:"maxMistakes"`
	MinLength   int       `json:"minLength"`
	Owner       string    `json:"owner,omitempty"` // user id when signed in
	StartedAt   time.Time `json:"startedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	clock func() time.Time
}

// Outcome describes what one submission did to a round.
type Outcome struct {
	Verdict   Verdict `json:"verdict"`
	Word      string  `json:"word"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Mistakes  int     `json:"mistakes"`
	Reset     bool    `json:"reset"`
	NewSource string  `json:"newSource,omitempty"`
}

// Accepted reports whether the submission was added to the word list.
func (o Outcome) Accepted() bool { return o.Verdict == VerdictAccepted }
