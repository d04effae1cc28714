// assets/embed.go
//
// Bundled word lists shipped inside the binary.
//   - source.txt:     candidate source words, one is drawn per round.
//   - dictionary.txt: words accepted as "real" when a submission is checked.
//
// Both files are newline-delimited; blank lines and lines starting with '#'
// are ignored and every entry is lowercased.

package assets

import (
	"bufio"
	"embed"
	"io"
	"strings"
)

//go:embed source.txt dictionary.txt
var FS embed.FS

// ReadLines parses a newline-delimited word list.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

func readEmbedded(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLines(f)
}

// SourceList returns the embedded source words.
func SourceList() ([]string, error) {
	return readEmbedded("source.txt")
}

// DictionaryList returns the embedded dictionary words.
func DictionaryList() ([]string, error) {
	return readEmbedded("dictionary.txt")
}
