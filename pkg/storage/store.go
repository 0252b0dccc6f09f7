// Package storage provides whole-collection snapshot persistence. A
// collection is loaded and saved as one unit; there are no partial
// updates and no transactions spanning collections.
package storage

import "context"

// Store is the persistence gateway. Implementations must guarantee that
// a failed Save leaves the previously stored snapshot intact, so callers
// can treat a save failure as the mutation not having happened.
type Store interface {
	// Load decodes the named collection into v. An absent collection
	// loads as the empty value, not an error.
	Load(ctx context.Context, collection string, v any) error
	// Save replaces the named collection with v atomically.
	Save(ctx context.Context, collection string, v any) error
}
