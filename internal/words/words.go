// internal/words/words.go
//
// Dictionary management for the word chain.
//
// Responsibilities:
//   - Load the dictionary from a file, or fall back to the embedded default.
//   - Keep an immutable set for membership checks plus the ordered list for
//     random choice.
//   - Supply the initial word: uniformly random, or seeded (see seed.go).
//
// Loading rules:
//   • One word per line; surrounding whitespace is trimmed.
//   • Blank lines and lines starting with '#' are skipped.
//   • Words shorter than MinLength runes are dropped.
//   • Entries with inner whitespace are dropped; "guess <word>" cannot carry them.
//   • Duplicates are collapsed; first occurrence wins the list position.
//
// An empty result is ErrEmpty; the server treats that as fatal.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/robalobadob/wordchain/assets"
)

// MinLength is the minimum word length (in runes) kept by the loader.
const MinLength = 3

// ErrEmpty is returned when no word survives filtering.
var ErrEmpty = errors.New("words: no words with length >= 3 found")

// Dictionary is an immutable word set.
type Dictionary struct {
	list []string
	set  map[string]struct{}
}

// New builds a dictionary from an in-memory list, applying the same
// filtering rules as Load.
func New(list []string) (*Dictionary, error) {
	d := &Dictionary{set: make(map[string]struct{}, len(list))}
	for _, raw := range list {
		w := strings.TrimSpace(raw)
		if w == "" || strings.HasPrefix(w, "#") || utf8.RuneCountInString(w) < MinLength ||
			strings.ContainsAny(w, " \t") {
			continue
		}
		if _, dup := d.set[w]; dup {
			continue
		}
		d.set[w] = struct{}{}
		d.list = append(d.list, w)
	}
	if len(d.list) == 0 {
		return nil, ErrEmpty
	}
	return d, nil
}

// Load reads a dictionary file.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Default loads the embedded dictionary.
func Default() (*Dictionary, error) {
	f, err := assets.OpenDefaultWords()
	if err != nil {
		return nil, fmt.Errorf("open embedded dictionary: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read loads a dictionary from r, one word per line.
func Read(r io.Reader) (*Dictionary, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return New(lines)
}

// Contains reports whether w is in the dictionary.
func (d *Dictionary) Contains(w string) bool {
	_, ok := d.set[w]
	return ok
}

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.list) }

// Words returns a copy of the word list in load order.
func (d *Dictionary) Words() []string {
	return append([]string(nil), d.list...)
}

// entropy is the randomness source for Random.
var entropy io.Reader = rand.Reader

// Random returns a uniformly random word using crypto/rand.
func (d *Dictionary) Random() (string, error) {
	n, err := rand.Int(entropy, big.NewInt(int64(len(d.list))))
	if err != nil {
		return "", fmt.Errorf("random word: %w", err)
	}
	return d.list[n.Int64()], nil
}
