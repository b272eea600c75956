// Package file implements a local filesystem data source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"healthetl/internal/etlerr"
)

// Local opens a file from the local disk.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open returns the file for reading. A pre-canceled context short-circuits
// without touching the filesystem; a missing file is etlerr.ErrNotFound.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, etlerr.NotFound("source", l.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

func (l *Local) String() string { return l.path }
