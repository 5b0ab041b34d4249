package port

import "context"

// FileStore accepts an uploaded blob and returns a stable reference the
// domain stores in place of the file. The application never inspects file
// contents; uploads happen before the entity that references them is
// written (two-phase flow).
type FileStore interface {
	// Save stores the blob and returns its reference.
	Save(ctx context.Context, filename string, content []byte) (string, error)

	// Open returns the stored content for a reference.
	Open(ctx context.Context, ref string) ([]byte, error)
}
