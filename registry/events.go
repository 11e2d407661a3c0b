// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"time"

	"github.com/absmach/registry/things"
)

// EventKind identifies the durable effect of a successful mutation.
type EventKind string

const (
	ThingCreated  EventKind = "thing.created"
	ThingModified EventKind = "thing.modified"
	ThingMerged   EventKind = "thing.merged"
	ThingDeleted  EventKind = "thing.deleted"

	AttributesCreated  EventKind = "attributes.created"
	AttributesModified EventKind = "attributes.modified"
	AttributesDeleted  EventKind = "attributes.deleted"
	AttributeCreated   EventKind = "attribute.created"
	AttributeModified  EventKind = "attribute.modified"
	AttributeDeleted   EventKind = "attribute.deleted"

	FeaturesCreated  EventKind = "features.created"
	FeaturesModified EventKind = "features.modified"
	FeaturesDeleted  EventKind = "features.deleted"
	FeatureCreated   EventKind = "feature.created"
	FeatureModified  EventKind = "feature.modified"
	FeatureDeleted   EventKind = "feature.deleted"

	PropertiesCreated  EventKind = "properties.created"
	PropertiesModified EventKind = "properties.modified"
	PropertiesDeleted  EventKind = "properties.deleted"
	PropertyCreated    EventKind = "property.created"
	PropertyModified   EventKind = "property.modified"
	PropertyDeleted    EventKind = "property.deleted"

	DesiredPropertiesCreated  EventKind = "desiredProperties.created"
	DesiredPropertiesModified EventKind = "desiredProperties.modified"
	DesiredPropertiesDeleted  EventKind = "desiredProperties.deleted"
	DesiredPropertyCreated    EventKind = "desiredProperty.created"
	DesiredPropertyModified   EventKind = "desiredProperty.modified"
	DesiredPropertyDeleted    EventKind = "desiredProperty.deleted"

	FeatureDefinitionCreated  EventKind = "featureDefinition.created"
	FeatureDefinitionModified EventKind = "featureDefinition.modified"
	FeatureDefinitionDeleted  EventKind = "featureDefinition.deleted"

	DefinitionCreated  EventKind = "definition.created"
	DefinitionModified EventKind = "definition.modified"
	DefinitionDeleted  EventKind = "definition.deleted"

	PolicyIDCreated  EventKind = "policyId.created"
	PolicyIDModified EventKind = "policyId.modified"

	ACLModified      EventKind = "acl.modified"
	ACLEntryCreated  EventKind = "aclEntry.created"
	ACLEntryModified EventKind = "aclEntry.modified"
	ACLEntryDeleted  EventKind = "aclEntry.deleted"
)

// Event is the durable, replayable effect of a successful mutation. It
// carries enough data to reconstruct the resulting thing state without
// re-reading the store: thing-level events carry the complete entity,
// sub-resource events carry the addressed path and the complete new value
// (never a diff).
type Event struct {
	ID            string
	Kind          EventKind
	ThingID       string
	Revision      uint64
	Timestamp     time.Time
	CorrelationID string
	// Path addresses the touched sub-resource (JSON pointer, feature id or
	// ACL subject). Empty for thing-level events.
	Path string
	// Value is the complete new value of the sub-resource. Nil for
	// deletions.
	Value any
	// Thing is the complete resulting entity, set for thing-level events.
	Thing *things.Thing
}

// Encode encodes the event to a flat map for stream publishing.
func (e Event) Encode() (map[string]any, error) {
	val := map[string]any{
		"id":        e.ID,
		"operation": string(e.Kind),
		"thing_id":  e.ThingID,
		"revision":  e.Revision,
		"timestamp": e.Timestamp.UnixNano(),
	}
	if e.CorrelationID != "" {
		val["correlation_id"] = e.CorrelationID
	}
	if e.Path != "" {
		val["path"] = e.Path
	}
	if e.Value != nil {
		b, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		val["value"] = string(b)
	}
	if e.Thing != nil {
		b, err := e.Thing.ToJSON(e.Thing.SchemaVersion)
		if err != nil {
			return nil, err
		}
		val["thing"] = string(b)
	}

	return val, nil
}
