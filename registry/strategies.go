// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"strings"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

// Sub-resource path construction. Event paths follow the thing document
// structure so that downstream consumers and replay share one addressing
// scheme.
const (
	attributesPath = "/attributes"
	featuresPath   = "/features"
	definitionPath = "/definition"
	policyIDPath   = "/policyId"
	aclPath        = "/acl"
)

func attributePath(pointer string) string {
	return attributesPath + pointer
}

func featurePath(id string) string {
	return featuresPath + "/" + id
}

func propertiesPath(id string) string {
	return featurePath(id) + "/properties"
}

func propertyPath(id, pointer string) string {
	return propertiesPath(id) + pointer
}

func desiredPropertiesPath(id string) string {
	return featurePath(id) + "/desiredProperties"
}

func desiredPropertyPath(id, pointer string) string {
	return desiredPropertiesPath(id) + pointer
}

func featureDefinitionPath(id string) string {
	return featurePath(id) + "/definition"
}

func aclEntryPath(subject string) string {
	return aclPath + "/" + subject
}

// validFeatureID rejects ids that cannot serve as a path segment. A slash in
// the id would make the feature unaddressable.
func validFeatureID(id string) error {
	if id == "" || strings.Contains(id, "/") {
		return errors.Wrap(ErrInvalid, errors.New("feature id must be non-empty and must not contain slashes"))
	}

	return nil
}

func validFeatureIDs(features map[string]things.Feature) error {
	for id := range features {
		if err := validFeatureID(id); err != nil {
			return err
		}
	}

	return nil
}

// upsert yields the Mutation of a create-or-replace strategy: a created
// event and response when the sub-resource did not exist, a modified pair
// when it did. Both branches carry the complete new value.
func (r *Registry) upsert(cmd Command, nextRevision uint64, exists bool, createdKind, modifiedKind EventKind, path string, value any) Mutation {
	kind, status := createdKind, StatusCreated
	if exists {
		kind, status = modifiedKind, StatusModified
	}

	return Mutation{
		Event: r.newEvent(kind, cmd, nextRevision, path, value, nil),
		Response: Response{
			Status:        status,
			Value:         value,
			CorrelationID: cmd.Headers().CorrelationID,
		},
	}
}

// deletion yields the Mutation of a delete strategy.
func (r *Registry) deletion(cmd Command, nextRevision uint64, kind EventKind, path string) Mutation {
	return Mutation{
		Event: r.newEvent(kind, cmd, nextRevision, path, nil, nil),
		Response: Response{
			Status:        StatusDeleted,
			CorrelationID: cmd.Headers().CorrelationID,
		},
	}
}

// queryResult yields the Query result of a retrieve strategy.
func queryResult(cmd Command, value any) Query {
	return Query{
		Response: Response{
			Status:        StatusOK,
			Value:         value,
			CorrelationID: cmd.Headers().CorrelationID,
		},
	}
}

// decodeJSON round-trips an event value into its typed form. Values applied
// in-process keep their concrete type; values decoded from a store arrive
// as generic maps.
func decodeJSON(value, target any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, target)
}

func asFeature(value any) (things.Feature, error) {
	if f, ok := value.(things.Feature); ok {
		return f, nil
	}
	var f things.Feature
	err := decodeJSON(value, &f)

	return f, err
}

func asFeatures(value any) (map[string]things.Feature, error) {
	if fs, ok := value.(map[string]things.Feature); ok {
		return fs, nil
	}
	var fs map[string]things.Feature
	err := decodeJSON(value, &fs)

	return fs, err
}

func asValueMap(value any) (map[string]any, error) {
	if m, ok := value.(map[string]any); ok {
		return m, nil
	}
	var m map[string]any
	err := decodeJSON(value, &m)

	return m, err
}

func asACL(value any) (things.ACL, error) {
	if a, ok := value.(things.ACL); ok {
		return a, nil
	}
	var a things.ACL
	err := decodeJSON(value, &a)

	return a, err
}

func asPermissions(value any) (things.Permissions, error) {
	if p, ok := value.(things.Permissions); ok {
		return p, nil
	}
	var p things.Permissions
	err := decodeJSON(value, &p)

	return p, err
}

func asStringSlice(value any) ([]string, error) {
	if s, ok := value.([]string); ok {
		return s, nil
	}
	var s []string
	err := decodeJSON(value, &s)

	return s, err
}

func asString(value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	var s string
	err := decodeJSON(value, &s)

	return s, err
}
