package words

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersShortWordsAndComments(t *testing.T) {
	d, err := New([]string{"cat", "  tiger ", "ox", "", "# comment", "rat", "cat", "né", "été", "ice cream", "hot\tdog"})
	require.NoError(t, err)

	assert.Equal(t, []string{"cat", "tiger", "rat", "été"}, d.Words())
	assert.Equal(t, 4, d.Len())
	assert.True(t, d.Contains("tiger"))
	assert.False(t, d.Contains("ox"))
	assert.False(t, d.Contains("né"))
	assert.False(t, d.Contains("# comment"))
	assert.False(t, d.Contains("ice cream"))
	assert.False(t, d.Contains("hot\tdog"))
}

func TestNewEmpty(t *testing.T) {
	_, err := New([]string{"a", "ab", "", "#xyz"})
	require.ErrorIs(t, err, ErrEmpty)

	_, err = New(nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(path, []byte("cat\r\ntap\nno\n\ntac\n"), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "tap", "tac"}, d.Words())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nbe\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestDefault(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)
	assert.Greater(t, d.Len(), 100)
	for _, w := range d.Words() {
		assert.GreaterOrEqual(t, len([]rune(w)), MinLength, w)
	}
}

func TestRandomIsMember(t *testing.T) {
	d, err := New([]string{"cat", "tap", "tac"})
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		w, err := d.Random()
		require.NoError(t, err)
		assert.True(t, d.Contains(w))
	}
}

func TestRandomReportsEntropyFailure(t *testing.T) {
	d, err := New([]string{"cat", "tap", "tac"})
	require.NoError(t, err)

	saved := entropy
	entropy = iotest.ErrReader(errors.New("no entropy"))
	t.Cleanup(func() { entropy = saved })

	_, err = d.Random()
	assert.ErrorContains(t, err, "no entropy")
}

func TestSeededIsDeterministic(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)
	assert.Equal(t, d.Seeded("salt", day), d.Seeded("salt", later))
	assert.True(t, d.Contains(d.Seeded("salt", day)))

	assert.Equal(t, "2026-03-14", DateKey(day))
	assert.Equal(t, 0, SeedIndex("salt", day, 0))
	idx := SeedIndex("salt", day, 7)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, 7)
}
