// internal/words/words.go
//
// Word list management for the round engine.
//
// Responsibilities:
//   - Load the source word list and the dictionary from files or fall back to
//     the embedded defaults in the assets package.
//   - Keep a set for dictionary lookups (the stand-in for a spell checker).
//   - Supply RandomSource, SourceAt, IsWord and Stats.
//
// Load behavior:
//  1. A non-empty source path replaces the embedded source list.
//  2. A non-empty dictionary path replaces the embedded dictionary.
//  3. Anything not overridden comes from the embedded lists.
//
// Every source word is also treated as a dictionary word, so the source word
// itself is always a valid submission.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordimize/assets"
)

// ErrNoSources is returned when the source list ends up empty.
var ErrNoSources = errors.New("words: source list is empty")

// Checker decides whether a word is a real word.
type Checker interface {
	IsWord(w string) bool
}

// Picker hands out source words for new rounds.
type Picker interface {
	RandomSource() string
}

// Lists holds one loaded source list and dictionary.
// It is read-only after construction and safe for concurrent use.
type Lists struct {
	sources []string
	dict    map[string]struct{}
}

// New builds Lists from in-memory slices. Entries are trimmed and lowercased.
func New(sources, dictionary []string) (*Lists, error) {
	src := normalize(sources)
	if len(src) == 0 {
		return nil, ErrNoSources
	}
	dict := make(map[string]struct{}, len(dictionary)+len(src))
	for _, w := range normalize(dictionary) {
		dict[w] = struct{}{}
	}
	for _, w := range src {
		dict[w] = struct{}{}
	}
	return &Lists{sources: src, dict: dict}, nil
}

// Load reads word lists from the given paths. An empty path selects the
// embedded list for that role.
func Load(sourcePath, dictPath string) (*Lists, error) {
	var (
		src, dict []string
		err       error
	)
	if sourcePath != "" {
		src, err = readWordFile(sourcePath)
	} else {
		src, err = assets.SourceList()
	}
	if err != nil {
		return nil, fmt.Errorf("load source words: %w", err)
	}

	if dictPath != "" {
		dict, err = readWordFile(dictPath)
	} else {
		dict, err = assets.DictionaryList()
	}
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	return New(src, dict)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}

// normalize lowercases, trims and drops empty entries.
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, w := range in {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

// RandomSource returns a uniformly random source word.
func (l *Lists) RandomSource() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(l.sources))))
	return l.sources[n.Int64()]
}

// SourceAt returns the source word at index i, wrapping around the list.
func (l *Lists) SourceAt(i int) string {
	n := len(l.sources)
	return l.sources[((i%n)+n)%n]
}

// Sources returns a copy of the source list.
func (l *Lists) Sources() []string {
	return append([]string(nil), l.sources...)
}

// IsWord reports whether w is in the dictionary (case-insensitive).
func (l *Lists) IsWord(w string) bool {
	_, ok := l.dict[strings.ToLower(strings.TrimSpace(w))]
	return ok
}

// Stats returns counts of loaded words: (sources, dictionary).
func (l *Lists) Stats() (sourceCount int, dictCount int) {
	return len(l.sources), len(l.dict)
}
