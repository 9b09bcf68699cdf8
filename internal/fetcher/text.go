package fetcher

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
)

// DefaultMaxTextBytes caps how much of a text document is read. Pattern
// search cost is linear in input size, so runtime is bounded here, before
// extraction ever sees the text.
const DefaultMaxTextBytes = 2 << 20

// ReadText reads a plain-text document, truncated at maxBytes (0 uses
// DefaultMaxTextBytes). Truncation is silent: a cut-off tail can only lose
// matches, never corrupt them.
func ReadText(path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxTextBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: open text file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return "", eris.Wrap(err, "fetcher: read text file")
	}
	return string(data), nil
}
