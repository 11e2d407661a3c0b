// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// AnyTag is the wildcard condition that matches every existing entity tag.
const AnyTag = "*"

// EntityTag is an opaque fingerprint of a sub-resource's serialized value.
// Semantically equal values always produce equal tags, which makes the tag
// usable for If-Match / If-None-Match style optimistic concurrency.
type EntityTag string

// TagOf computes the entity tag of an arbitrary JSON-shaped value. The
// value is serialized canonically (object keys sorted) before hashing.
func TagOf(value any) (EntityTag, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	return EntityTag(fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(b)))), nil
}

// Empty reports whether the tag is absent.
func (t EntityTag) Empty() bool {
	return t == ""
}

// String implements fmt.Stringer.
func (t EntityTag) String() string {
	return string(t)
}

// MatchedBy evaluates an If-Match / If-None-Match condition list against the
// tag. The wildcard matches any existing tag. An absent tag matches nothing.
func (t EntityTag) MatchedBy(conditions []string) bool {
	if t.Empty() {
		return false
	}
	for _, condition := range conditions {
		if condition == AnyTag || condition == string(t) {
			return true
		}
	}

	return false
}
