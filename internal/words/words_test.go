package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalizesAndMergesSources(t *testing.T) {
	l, err := New([]string{"  Silkworm ", ""}, []string{"SILK", "worm", "  "})
	require.NoError(t, err)

	assert.True(t, l.IsWord("silk"))
	assert.True(t, l.IsWord("Worm"))
	// Source words count as dictionary words.
	assert.True(t, l.IsWord("silkworm"))
	assert.False(t, l.IsWord("milks"))

	src, dict := l.Stats()
	assert.Equal(t, 1, src)
	assert.Equal(t, 3, dict)
}

func TestNew_EmptySources(t *testing.T) {
	_, err := New([]string{" ", ""}, []string{"word"})
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	l, err := Load("", "")
	require.NoError(t, err)

	src, dict := l.Stats()
	assert.Greater(t, src, 10)
	assert.Greater(t, dict, src)
	assert.True(t, l.IsWord("silkworm"))
	assert.True(t, l.IsWord("silk"))
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.txt")
	dictPath := filepath.Join(dir, "dict.txt")
	require.NoError(t, os.WriteFile(srcPath, []byte("# comment\nElephant\n\n"), 0o644))
	require.NoError(t, os.WriteFile(dictPath, []byte("ant\nplane\n"), 0o644))

	l, err := Load(srcPath, dictPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"elephant"}, l.Sources())
	assert.Equal(t, "elephant", l.RandomSource())
	assert.True(t, l.IsWord("plane"))
	assert.False(t, l.IsWord("silk"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"), "")
	assert.Error(t, err)
}

func TestSourceAt_Wraps(t *testing.T) {
	l, err := New([]string{"alpha", "bravo", "charlie"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "alpha", l.SourceAt(0))
	assert.Equal(t, "charlie", l.SourceAt(2))
	assert.Equal(t, "alpha", l.SourceAt(3))
	assert.Equal(t, "charlie", l.SourceAt(-1))
}

func TestRandomSource_AlwaysFromList(t *testing.T) {
	l, err := New([]string{"alpha", "bravo"}, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		assert.Contains(t, []string{"alpha", "bravo"}, l.RandomSource())
	}
}

// Everyday words spelled from each bundled source word must pass the
// dictionary check, or players collect mistakes for real words.
func TestLoad_EmbeddedDictionaryKnowsCommonSubWords(t *testing.T) {
	l, err := Load("", "")
	require.NoError(t, err)

	subWords := map[string][]string{
		"silkworm":  {"silk", "worm", "milk", "work", "slim"},
		"elephant":  {"peel", "pelt", "plant", "heap", "leap"},
		"triangle":  {"tangle", "grain", "alert", "eating", "train"},
		"painters":  {"paint", "pants", "strip", "rain", "pain"},
		"strangle":  {"angle", "large", "slant", "range", "tangle"},
		"dominate":  {"mind", "meat", "dine", "team", "tame"},
		"reaction":  {"actor", "ration", "coat", "crate", "cat", "act"},
		"creation":  {"react", "ration", "nectar", "coin", "tone"},
		"notebook":  {"book", "boot", "note", "token", "bone"},
		"sandwich":  {"wind", "hand", "sand", "dash", "chin"},
		"question":  {"quiet", "quote", "suit", "stone", "tune"},
		"gardener":  {"garden", "green", "range", "danger", "read"},
		"mountain":  {"mount", "main", "unit", "into", "nation"},
		"stranger":  {"strange", "range", "great", "grant", "stage"},
		"teaching":  {"cheat", "niche", "giant", "thing", "each"},
		"moonbeam":  {"moon", "beam", "boom", "moan", "name"},
		"carpenter": {"carpet", "parent", "trace", "enter", "crane"},
		"treasure":  {"east", "seat", "tar", "true", "tease"},
		"daughter":  {"hated", "guard", "thug", "hard", "heard"},
		"hospital":  {"pistol", "spoil", "plot", "ship", "tail"},
		"magnetic":  {"magic", "cage", "game", "time", "giant"},
		"republic":  {"public", "pure", "rule", "club", "blue"},
		"sunlight":  {"sunlit", "light", "sight", "sting", "lung"},
		"kangaroo":  {"organ", "groan", "oak", "argon"},
		"darkness":  {"dark", "desk", "snake", "drake", "dress"},
		"firework":  {"fire", "work", "wire", "fork", "rework"},
		"hamsters":  {"master", "stream", "smash", "steam", "harm"},
		"snowball":  {"snow", "ball", "bowl", "allow", "slab"},
		"upstairs":  {"stairs", "parts", "trip", "suit", "sprat"},
		"bathroom":  {"bath", "room", "moth", "boat", "broom"},
	}

	for _, src := range l.Sources() {
		t.Run(src, func(t *testing.T) {
			ws, ok := subWords[src]
			require.True(t, ok, "add common sub-words for new source word %q", src)
			for _, w := range ws {
				assert.True(t, l.IsWord(w), "%q (from %q) should be a word", w, src)
			}
		})
	}

	assert.False(t, l.IsWord("artic"), "misspellings stay out")
}
