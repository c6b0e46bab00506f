// Package evidence persists uploaded supporting files for reports and
// returns the public URL path a stored file is served under.
package evidence

import (
	"context"
	"io"
)

// Store saves an uploaded evidence file and returns its serving path.
// Implementations must not partially expose a file: on error the upload
// is discarded and no path is returned.
type Store interface {
	Save(ctx context.Context, r io.Reader, originalFilename string) (string, error)
}
