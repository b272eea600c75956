// Package datasource abstracts where the input CSV bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a fresh stream over the input. A source that does not
// exist yields an error wrapping etlerr.ErrNotFound.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// String names the source in logs.
	String() string
}
