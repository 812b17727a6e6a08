// Package media abstracts the remote object store holding image bytes.
package media

import "context"

// Store is the contract the services need from the media host: put bytes
// under a key, remove them, and produce a URL a browser can fetch.
type Store interface {
	// Upload stores data under key and returns a stable public URL.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Destroy removes the object under key. Removing a missing object is not
	// an error.
	Destroy(ctx context.Context, key string) error
	// SignedURL returns a short-lived GET URL for the object under key.
	SignedURL(ctx context.Context, key string) (string, error)
	// URL returns the stable public URL for the object under key without
	// touching the store.
	URL(key string) string
}
