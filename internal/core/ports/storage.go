package ports

import "context"

// DocumentStorage defines the object-storage contract for uploaded
// driver documents.
type DocumentStorage interface {
	// Upload stores the bytes under a key derived from keyHint and
	// returns a publicly retrievable URL.
	Upload(ctx context.Context, data []byte, keyHint string, contentType string) (string, error)

	// Delete removes the object a previous Upload returned; best effort.
	Delete(ctx context.Context, url string) error
}
