package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Update when the session does not exist.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned by Create when the id is already taken.
	ErrExists = errors.New("session already exists")
	// ErrVersionConflict is returned by Update when the aggregate's version
	// does not match the stored one.
	ErrVersionConflict = errors.New("session version conflict")
)

// Repository stores session aggregates. Drivers live under
// session/drivers; the engine picks one at wiring time.
type Repository interface {
	// Create stores a new aggregate with Version set to 1.
	Create(ctx context.Context, agg *Aggregate) error

	// Get retrieves an aggregate by id. A missing session returns
	// (nil, nil), not an error.
	Get(ctx context.Context, id string) (*Aggregate, error)

	// Update persists an aggregate with optimistic locking: the stored
	// version must match, and is incremented on success.
	Update(ctx context.Context, agg *Aggregate) error

	// Delete removes a session by id. Deleting a missing session is a no-op.
	Delete(ctx context.Context, id string) error

	// List returns every stored aggregate, in no particular order.
	List(ctx context.Context) ([]*Aggregate, error)

	// Close releases the driver's resources.
	Close() error
}
