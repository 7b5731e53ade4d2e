/*
registry.go - Registry interface for loaded converters

PURPOSE:
  Defines the interface between the management surface and whatever holds
  loaded converter configurations. Converters are created and edited only
  by administrative workflows; the conversion hot path reads a snapshot
  that was built when the configuration was loaded.

IMPLEMENTATIONS:
  - scale/store/memory.go: In-memory registry for tests and dev
  - The API handler keeps its own cache backed by the SQLite store

SEE ALSO:
  - store/sqlite: Persistent converter records
*/
package scale

import "context"

// Registry holds loaded converters keyed by their unique name.
type Registry interface {
	// Save stores a converter. Creating a second converter with an existing
	// name fails with ErrDuplicateName; saving the same name with Replace
	// semantics is left to implementations that support updates.
	Save(ctx context.Context, c *Converter) error

	// Get returns the converter with the given name, or ErrConverterNotFound.
	Get(ctx context.Context, name string) (*Converter, error)

	// List returns all converters, ordered by name.
	List(ctx context.Context) ([]*Converter, error)

	// Delete removes a converter and, with it, its scale lines.
	// Deleting an unknown name fails with ErrConverterNotFound.
	Delete(ctx context.Context, name string) error
}
