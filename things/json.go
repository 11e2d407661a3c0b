// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things

import (
	"encoding/json"

	"github.com/absmach/registry/pkg/errors"
)

// JSON field names of the thing document.
const (
	FieldThingID    = "thingId"
	FieldPolicyID   = "policyId"
	FieldACL        = "acl"
	FieldAttributes = "attributes"
	FieldFeatures   = "features"
	FieldDefinition = "definition"
)

// thingDocument is the wire shape of a thing.
type thingDocument struct {
	ID         string             `json:"thingId,omitempty"`
	PolicyID   string             `json:"policyId,omitempty"`
	ACL        ACL                `json:"acl,omitempty"`
	Attributes map[string]any     `json:"attributes,omitempty"`
	Features   map[string]Feature `json:"features,omitempty"`
	Definition string             `json:"definition,omitempty"`
}

// ToMap projects the thing into its JSON document form for the given schema
// version. The v1 projection carries the ACL and omits the policy id, v2 the
// reverse. When fields are given, only the named first-level fields are kept.
func (t Thing) ToMap(version SchemaVersion, fields ...string) map[string]any {
	doc := map[string]any{}
	if t.ID != "" {
		doc[FieldThingID] = t.ID
	}
	switch version {
	case V1:
		if len(t.ACL) > 0 {
			doc[FieldACL] = t.ACL
		}
	default:
		if t.PolicyID != "" {
			doc[FieldPolicyID] = t.PolicyID
		}
	}
	if t.Attributes != nil {
		doc[FieldAttributes] = t.Attributes
	}
	if t.Features != nil {
		doc[FieldFeatures] = t.Features
	}
	if t.Definition != "" {
		doc[FieldDefinition] = t.Definition
	}

	if len(fields) == 0 {
		return doc
	}

	selected := map[string]any{}
	for _, field := range fields {
		if val, ok := doc[field]; ok {
			selected[field] = val
		}
	}

	return selected
}

// ToJSON serializes the thing document for the given schema version with
// optional first-level field selection.
func (t Thing) ToJSON(version SchemaVersion, fields ...string) ([]byte, error) {
	return json.Marshal(t.ToMap(version, fields...))
}

// JSONLength returns the serialized document length used by the size
// validator. The length is deterministic for a given thing and version.
func (t Thing) JSONLength(version SchemaVersion) int {
	b, err := t.ToJSON(version)
	if err != nil {
		return 0
	}

	return len(b)
}

// FromJSON decodes a thing document. Revision, lifecycle and timestamps are
// not part of the document and are left at their zero values.
func FromJSON(b []byte) (Thing, error) {
	var doc thingDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return Thing{}, errors.Wrap(errors.ErrMalformedEntity, err)
	}

	t := Thing{
		ID:         doc.ID,
		PolicyID:   doc.PolicyID,
		ACL:        doc.ACL,
		Attributes: doc.Attributes,
		Features:   doc.Features,
		Definition: doc.Definition,
	}
	if len(doc.ACL) > 0 && doc.PolicyID == "" {
		t.SchemaVersion = V1
	} else {
		t.SchemaVersion = V2
	}

	return t, nil
}
