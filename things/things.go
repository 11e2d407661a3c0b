// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

import (
	"time"
)

// Lifecycle denotes whether a thing is live or logically deleted. A deleted
// thing keeps its revision line and may be recreated later.
type Lifecycle string

const (
	// Active marks a live thing.
	Active Lifecycle = "ACTIVE"
	// Deleted marks a logically deleted thing.
	Deleted Lifecycle = "DELETED"
)

// SchemaVersion distinguishes the legacy ACL-based model from the current
// policy-based one.
type SchemaVersion int

const (
	// V1 is the deprecated ACL-bearing schema.
	V1 SchemaVersion = 1
	// V2 is the policy-bearing schema.
	V2 SchemaVersion = 2
)

// Valid reports whether v is a known schema version.
func (v SchemaVersion) Valid() bool {
	return v == V1 || v == V2
}

// Feature is a named sub-component of a thing. It has no lifecycle of its
// own and is owned exclusively by its thing.
type Feature struct {
	Definition        []string       `json:"definition,omitempty"`
	Properties        map[string]any `json:"properties,omitempty"`
	DesiredProperties map[string]any `json:"desiredProperties,omitempty"`
}

// Thing is the digital-twin aggregate root.
type Thing struct {
	ID            string
	PolicyID      string
	ACL           ACL
	Attributes    map[string]any
	Features      map[string]Feature
	Definition    string
	SchemaVersion SchemaVersion
	Lifecycle     Lifecycle
	Revision      uint64
	Created       time.Time
	Modified      time.Time
}

// IsActive reports whether the thing is live.
func (t Thing) IsActive() bool {
	return t.Lifecycle == Active
}

// WithRevision returns a copy of the thing at the given revision.
func (t Thing) WithRevision(revision uint64) Thing {
	t.Revision = revision
	return t
}

// WithModified returns a copy of the thing with the given modification time.
func (t Thing) WithModified(ts time.Time) Thing {
	t.Modified = ts
	return t
}

// WithLifecycle returns a copy of the thing in the given lifecycle.
func (t Thing) WithLifecycle(lc Lifecycle) Thing {
	t.Lifecycle = lc
	return t
}

// WithPolicyID returns a copy of the thing referencing the given policy.
func (t Thing) WithPolicyID(policyID string) Thing {
	t.PolicyID = policyID
	return t
}

// WithACL returns a copy of the thing carrying the given ACL.
func (t Thing) WithACL(acl ACL) Thing {
	t.ACL = acl.Copy()
	return t
}

// WithDefinition returns a copy of the thing with the given top-level
// definition reference.
func (t Thing) WithDefinition(definition string) Thing {
	t.Definition = definition
	return t
}

// WithoutDefinition returns a copy of the thing with no definition.
func (t Thing) WithoutDefinition() Thing {
	t.Definition = ""
	return t
}

// WithAttributes returns a copy of the thing with attributes fully replaced.
func (t Thing) WithAttributes(attrs map[string]any) Thing {
	t.Attributes = copyValueMap(attrs)
	return t
}

// WithoutAttributes returns a copy of the thing with no attributes.
func (t Thing) WithoutAttributes() Thing {
	t.Attributes = nil
	return t
}

// WithAttribute returns a copy of the thing with the attribute at the given
// pointer set to value. Missing intermediate objects are created.
func (t Thing) WithAttribute(pointer string, value any) (Thing, error) {
	attrs, err := setAtPointer(t.Attributes, pointer, value)
	if err != nil {
		return Thing{}, err
	}
	t.Attributes = attrs

	return t, nil
}

// WithoutAttribute returns a copy of the thing with the attribute at the
// given pointer removed.
func (t Thing) WithoutAttribute(pointer string) (Thing, error) {
	attrs, err := deleteAtPointer(t.Attributes, pointer)
	if err != nil {
		return Thing{}, err
	}
	t.Attributes = attrs

	return t, nil
}

// WithFeatures returns a copy of the thing with features fully replaced.
func (t Thing) WithFeatures(features map[string]Feature) Thing {
	if features == nil {
		t.Features = nil
		return t
	}
	fs := make(map[string]Feature, len(features))
	for id, f := range features {
		fs[id] = f.Copy()
	}
	t.Features = fs

	return t
}

// WithoutFeatures returns a copy of the thing with no features.
func (t Thing) WithoutFeatures() Thing {
	t.Features = nil
	return t
}

// WithFeature returns a copy of the thing with the given feature set.
func (t Thing) WithFeature(id string, feature Feature) Thing {
	fs := make(map[string]Feature, len(t.Features)+1)
	for fid, f := range t.Features {
		fs[fid] = f
	}
	fs[id] = feature.Copy()
	t.Features = fs

	return t
}

// WithoutFeature returns a copy of the thing with the given feature removed.
func (t Thing) WithoutFeature(id string) Thing {
	fs := make(map[string]Feature, len(t.Features))
	for fid, f := range t.Features {
		if fid != id {
			fs[fid] = f
		}
	}
	t.Features = fs

	return t
}

// Copy returns a deep copy of the feature.
func (f Feature) Copy() Feature {
	cp := Feature{
		Properties:        copyValueMap(f.Properties),
		DesiredProperties: copyValueMap(f.DesiredProperties),
	}
	if f.Definition != nil {
		cp.Definition = append([]string(nil), f.Definition...)
	}

	return cp
}

// WithDefinition returns a copy of the feature with the given definition.
func (f Feature) WithDefinition(definition []string) Feature {
	cp := f.Copy()
	cp.Definition = append([]string(nil), definition...)
	return cp
}

// WithoutDefinition returns a copy of the feature with no definition.
func (f Feature) WithoutDefinition() Feature {
	cp := f.Copy()
	cp.Definition = nil
	return cp
}

// WithProperties returns a copy of the feature with properties replaced.
func (f Feature) WithProperties(props map[string]any) Feature {
	cp := f.Copy()
	cp.Properties = copyValueMap(props)
	return cp
}

// WithoutProperties returns a copy of the feature with no properties.
func (f Feature) WithoutProperties() Feature {
	cp := f.Copy()
	cp.Properties = nil
	return cp
}

// WithProperty returns a copy of the feature with the property at the given
// pointer set to value.
func (f Feature) WithProperty(pointer string, value any) (Feature, error) {
	cp := f.Copy()
	props, err := setAtPointer(cp.Properties, pointer, value)
	if err != nil {
		return Feature{}, err
	}
	cp.Properties = props

	return cp, nil
}

// WithoutProperty returns a copy of the feature with the property at the
// given pointer removed.
func (f Feature) WithoutProperty(pointer string) (Feature, error) {
	cp := f.Copy()
	props, err := deleteAtPointer(cp.Properties, pointer)
	if err != nil {
		return Feature{}, err
	}
	cp.Properties = props

	return cp, nil
}

// WithDesiredProperties returns a copy of the feature with desired
// properties replaced.
func (f Feature) WithDesiredProperties(props map[string]any) Feature {
	cp := f.Copy()
	cp.DesiredProperties = copyValueMap(props)
	return cp
}

// WithoutDesiredProperties returns a copy of the feature with no desired
// properties.
func (f Feature) WithoutDesiredProperties() Feature {
	cp := f.Copy()
	cp.DesiredProperties = nil
	return cp
}

// WithDesiredProperty returns a copy of the feature with the desired
// property at the given pointer set to value.
func (f Feature) WithDesiredProperty(pointer string, value any) (Feature, error) {
	cp := f.Copy()
	props, err := setAtPointer(cp.DesiredProperties, pointer, value)
	if err != nil {
		return Feature{}, err
	}
	cp.DesiredProperties = props

	return cp, nil
}

// WithoutDesiredProperty returns a copy of the feature with the desired
// property at the given pointer removed.
func (f Feature) WithoutDesiredProperty(pointer string) (Feature, error) {
	cp := f.Copy()
	props, err := deleteAtPointer(cp.DesiredProperties, pointer)
	if err != nil {
		return Feature{}, err
	}
	cp.DesiredProperties = props

	return cp, nil
}

// copyValueMap deep-copies a JSON-shaped map.
func copyValueMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}

	return dst
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyValueMap(val)
	case []any:
		cp := make([]any, len(val))
		for i, e := range val {
			cp[i] = copyValue(e)
		}
		return cp
	default:
		return v
	}
}
