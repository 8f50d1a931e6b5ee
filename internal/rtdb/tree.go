package rtdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tree helpers shared by the in-memory and Postgres stores. Nodes are the
// generic JSON shapes produced by encoding/json: map[string]any, []any and
// scalars.

func splitPath(path string) ([]string, error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, ErrEmptyPath
	}
	return strings.Split(trimmed, "/"), nil
}

// normalize round-trips value through JSON so the tree only ever holds
// generic shapes, regardless of what callers pass in.
func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("rtdb: marshaling value: %w", err)
	}
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("rtdb: normalizing value: %w", err)
	}
	return node, nil
}

func lookup(node any, segs []string) (any, bool) {
	for _, seg := range segs {
		obj, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// setAt replaces the subtree at segs, creating intermediate objects. A
// non-object encountered on the way is replaced by an object.
func setAt(root map[string]any, segs []string, value any) {
	for _, seg := range segs[:len(segs)-1] {
		child, ok := root[seg].(map[string]any)
		if !ok {
			child = map[string]any{}
			root[seg] = child
		}
		root = child
	}
	root[seg(segs)] = value
}

// mergeAt merges fields into the object at segs, creating it if missing.
func mergeAt(root map[string]any, segs []string, fields map[string]any) {
	for _, s := range segs {
		child, ok := root[s].(map[string]any)
		if !ok {
			child = map[string]any{}
			root[s] = child
		}
		root = child
	}
	for k, v := range fields {
		root[k] = v
	}
}

func seg(segs []string) string {
	return segs[len(segs)-1]
}

// touches reports whether a write at writeSegs changes the value visible
// at subSegs: true when either path is a prefix of the other.
func touches(writeSegs, subSegs []string) bool {
	n := len(writeSegs)
	if len(subSegs) < n {
		n = len(subSegs)
	}
	for i := 0; i < n; i++ {
		if writeSegs[i] != subSegs[i] {
			return false
		}
	}
	return true
}

func marshalAt(root map[string]any, segs []string) (Snapshot, error) {
	node, ok := lookup(root, segs)
	if !ok || node == nil {
		return nil, nil
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("rtdb: marshaling snapshot: %w", err)
	}
	return Snapshot(raw), nil
}
