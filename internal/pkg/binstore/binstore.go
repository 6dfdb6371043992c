package binstore

import (
	"context"
	"io"
)

// UploadResult is what a provider returns for a stored binary.
type UploadResult struct {
	// URL is the externally resolvable retrieval URL, immutable once issued.
	URL string
	// DeleteToken is an opaque credential permitting later removal of this
	// binary. Empty when the provider does not issue one.
	DeleteToken string
}

// Store is the binary hosting boundary. Uploads are attempted exactly once;
// DeleteByToken is idempotent and tolerant of unknown or expired tokens, and
// callers treat every delete outcome as best effort.
type Store interface {
	Upload(ctx context.Context, fileName, contentType string, r io.Reader, size int64) (*UploadResult, error)
	DeleteByToken(ctx context.Context, token string) error
}
