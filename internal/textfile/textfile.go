// Package textfile reads small line-oriented text files such as name lists.
package textfile

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// ErrNotFound is returned when the file does not exist.
var ErrNotFound = errors.New("textfile: file not found")

// maxLineBytes bounds a single line; longer lines fail the read.
const maxLineBytes = 1 << 20

// ReadLines returns the lines of the file at path in order, without line
// terminators. A trailing newline does not produce an empty final line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn("failed to read file", "path", path, "error", err)

		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("textfile: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("textfile: read %s: %w", path, err)
	}

	slog.Debug("read text file", "path", path, "lines", len(lines))

	return lines, nil
}
