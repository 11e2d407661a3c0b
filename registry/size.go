// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"

	"github.com/absmach/registry/things"
)

// Limits bounds the serialized size of a thing. The projected post-mutation
// length is an approximation: existing length minus the removed sub-resource
// plus the new one plus a constant per-field overhead. The arithmetic is
// deterministic, so repeated identical commands yield identical decisions.
type Limits struct {
	// MaxSize is the maximal serialized thing size in bytes. Zero disables
	// the check.
	MaxSize int `env:"MAX_THING_SIZE" envDefault:"102400"`
	// FieldOverhead accounts for the field name and separators added
	// around a sub-resource value.
	FieldOverhead int `env:"FIELD_OVERHEAD" envDefault:"16"`
}

// EnsureValidSize fails fast when the supplied projected length exceeds the
// budget. The supplier is only invoked when a budget is configured.
func (l Limits) EnsureValidSize(length func() int) error {
	if l.MaxSize <= 0 {
		return nil
	}
	if length() > l.MaxSize {
		return ErrSizeLimitExceeded
	}

	return nil
}

// projectedSize computes the post-mutation serialized length for replacing
// a sub-resource of the given current size with a new value.
func (l Limits) projectedSize(th *things.Thing, version things.SchemaVersion, removed, added any) func() int {
	return func() int {
		existing := 0
		if th != nil {
			existing = th.JSONLength(version)
		}

		return existing - jsonLength(removed) + jsonLength(added) + l.FieldOverhead
	}
}

// jsonLength returns the serialized length of a JSON-shaped value, zero for
// nil.
func jsonLength(value any) int {
	if value == nil {
		return 0
	}
	b, err := json.Marshal(value)
	if err != nil {
		return 0
	}

	return len(b)
}
