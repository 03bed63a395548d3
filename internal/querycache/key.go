package querycache

import (
	"encoding/json"
	"fmt"
)

// Key identifies a logical query, e.g. Key{"teacher-recs", userID}. Keys are
// compared structurally: two keys with equal segments share one cache entry.
type Key []any

// String is the canonical form used for lookups. Map segments are encoded
// with sorted keys, so structurally equal keys always produce equal strings.
func (k Key) String() string {
	b, err := json.Marshal([]any(k))
	if err != nil {
		return fmt.Sprintf("%#v", []any(k))
	}
	return string(b)
}

// Name is the first segment, used as a low-cardinality metrics label.
func (k Key) Name() string {
	if len(k) == 0 {
		return ""
	}
	if s, ok := k[0].(string); ok {
		return s
	}
	return fmt.Sprint(k[0])
}
