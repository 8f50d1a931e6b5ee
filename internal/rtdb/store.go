package rtdb

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrEmptyPath is returned for operations addressed at the tree root.
var ErrEmptyPath = errors.New("rtdb: empty path")

// Snapshot is the JSON value at a path at some point in time. A nil
// Snapshot means the path does not exist; consumers treat that as a valid
// empty state, not an error.
type Snapshot []byte

func (s Snapshot) Exists() bool {
	return s != nil
}

// Decode unmarshals the snapshot into v. Decoding a nil snapshot is an
// error; check Exists first.
func (s Snapshot) Decode(v any) error {
	if s == nil {
		return errors.New("rtdb: decode of absent snapshot")
	}
	return json.Unmarshal(s, v)
}

// Store is a path-addressed JSON tree with change notification. Paths use
// "/" separators ("slots/A-101"). Writes are last-write-wins per path and
// individually atomic; nothing spans multiple operations.
type Store interface {
	// Get returns the current snapshot at path, nil if absent.
	Get(ctx context.Context, path string) (Snapshot, error)

	// Set overwrites the value at path, creating parents as needed.
	Set(ctx context.Context, path string, value any) error

	// Update merges fields into the object at path, leaving other
	// children untouched. A missing node is created.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Push stores value under a new unique key below path and returns
	// the key.
	Push(ctx context.Context, path string, value any) (string, error)

	// Subscribe delivers the snapshot at path immediately and again
	// after every write touching it. Deliveries coalesce: a slow
	// consumer observes the latest state, not every intermediate one.
	// The returned func cancels the subscription.
	Subscribe(ctx context.Context, path string) (<-chan Snapshot, func(), error)
}
