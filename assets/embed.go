// Package assets embeds the default dictionary shipped with the server.
package assets

import (
	"embed"
	"io"
)

//go:embed words.txt
var FS embed.FS

// DefaultWordsName is the embedded dictionary file name.
const DefaultWordsName = "words.txt"

// OpenDefaultWords opens the embedded dictionary for reading.
func OpenDefaultWords() (io.ReadCloser, error) {
	return FS.Open(DefaultWordsName)
}
