// Package media abstracts the external binary image store. Uploads return a
// stable reference; deletes are idempotent so cleanup paths can be retried.
package media

import "context"

// Reference identifies a stored image.
type Reference struct {
	Key string
	URL string
}

// Store is the external image store consumed by the engine.
type Store interface {
	// Upload persists data under folder and returns its reference.
	Upload(ctx context.Context, data []byte, folder, originalName string) (Reference, error)
	// Delete removes a stored object. Deleting an already-absent key is not
	// an error.
	Delete(ctx context.Context, key string) error
}
