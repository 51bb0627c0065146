// Package file opens local inputs for the CLI: regular files, or standard
// input when the path is "-".
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Local opens a path on the local disk, or standard input for Stdin.
type Local struct {
	path  string
	stdin io.Reader
}

// NewLocal returns a source bound to path.
func NewLocal(path string) *Local { return &Local{path: path, stdin: os.Stdin} }

// Open returns a reader for the path. A canceled context fails before the
// filesystem is touched. Closing a stdin reader does not close os.Stdin.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.path == Stdin {
		return io.NopCloser(l.stdin), nil
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
