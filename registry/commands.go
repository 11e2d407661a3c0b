// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"github.com/absmach/registry/things"
)

// Kind identifies a command type. Dispatch is a one-to-one lookup by kind,
// there is no fallback chain across strategies.
type Kind string

const (
	KindCreateThing   Kind = "thing.create"
	KindModifyThing   Kind = "thing.modify"
	KindMergeThing    Kind = "thing.merge"
	KindDeleteThing   Kind = "thing.delete"
	KindRetrieveThing Kind = "thing.retrieve"

	KindModifyAttributes   Kind = "attributes.modify"
	KindDeleteAttributes   Kind = "attributes.delete"
	KindRetrieveAttributes Kind = "attributes.retrieve"
	KindModifyAttribute    Kind = "attribute.modify"
	KindDeleteAttribute    Kind = "attribute.delete"
	KindRetrieveAttribute  Kind = "attribute.retrieve"

	KindModifyFeatures   Kind = "features.modify"
	KindDeleteFeatures   Kind = "features.delete"
	KindRetrieveFeatures Kind = "features.retrieve"
	KindModifyFeature    Kind = "feature.modify"
	KindDeleteFeature    Kind = "feature.delete"
	KindRetrieveFeature  Kind = "feature.retrieve"

	KindModifyProperties   Kind = "properties.modify"
	KindDeleteProperties   Kind = "properties.delete"
	KindRetrieveProperties Kind = "properties.retrieve"
	KindModifyProperty     Kind = "property.modify"
	KindDeleteProperty     Kind = "property.delete"
	KindRetrieveProperty   Kind = "property.retrieve"

	KindModifyDesiredProperties   Kind = "desiredProperties.modify"
	KindDeleteDesiredProperties   Kind = "desiredProperties.delete"
	KindRetrieveDesiredProperties Kind = "desiredProperties.retrieve"
	KindModifyDesiredProperty     Kind = "desiredProperty.modify"
	KindDeleteDesiredProperty     Kind = "desiredProperty.delete"
	KindRetrieveDesiredProperty   Kind = "desiredProperty.retrieve"

	KindModifyFeatureDefinition   Kind = "featureDefinition.modify"
	KindDeleteFeatureDefinition   Kind = "featureDefinition.delete"
	KindRetrieveFeatureDefinition Kind = "featureDefinition.retrieve"

	KindModifyDefinition   Kind = "definition.modify"
	KindDeleteDefinition   Kind = "definition.delete"
	KindRetrieveDefinition Kind = "definition.retrieve"

	KindModifyPolicyID   Kind = "policyId.modify"
	KindRetrievePolicyID Kind = "policyId.retrieve"

	KindModifyACL        Kind = "acl.modify"
	KindRetrieveACL      Kind = "acl.retrieve"
	KindModifyACLEntry   Kind = "aclEntry.modify"
	KindDeleteACLEntry   Kind = "aclEntry.delete"
	KindRetrieveACLEntry Kind = "aclEntry.retrieve"
)

// Category classifies a command by its effect on the thing.
type Category int

const (
	// CategoryQuery marks read-only commands.
	CategoryQuery Category = iota
	// CategoryModify marks create-or-replace commands.
	CategoryModify
	// CategoryDelete marks removal commands.
	CategoryDelete
)

// Headers is the command's header bag: optional precondition headers,
// correlation data and representation options.
type Headers struct {
	// IfMatch lists entity tags the current sub-resource must match.
	IfMatch []string
	// IfNoneMatch lists entity tags the current sub-resource must not match.
	IfNoneMatch []string
	// CorrelationID correlates the command with its response and events.
	CorrelationID string
	// Fields selects first-level fields of the retrieved representation.
	Fields []string
	// Version is the schema version the command is issued against. Zero
	// means the current version.
	Version things.SchemaVersion
	// AuthSubjects are the caller's authorization subjects, in order.
	AuthSubjects []string
}

// SchemaVersion returns the effective schema version of the command.
func (h Headers) SchemaVersion() things.SchemaVersion {
	if !h.Version.Valid() {
		return things.V2
	}
	return h.Version
}

// Command is an immutable request value. Commands are inputs only and are
// never persisted.
type Command interface {
	// Kind returns the command's type for strategy lookup.
	Kind() Kind
	// Category classifies the command.
	Category() Category
	// Target returns the addressed thing id.
	Target() string
	// Headers returns the command's header bag.
	Headers() Headers
}

// Base carries the fields every command shares.
type Base struct {
	ThingID string
	Head    Headers
}

func (b Base) Target() string   { return b.ThingID }
func (b Base) Headers() Headers { return b.Head }

// NewBase builds the shared command fields.
func NewBase(thingID string, headers Headers) Base {
	return Base{ThingID: thingID, Head: headers}
}

// CreateThing requests creation of a thing that does not exist yet.
type CreateThing struct {
	Base
	Thing things.Thing
}

func (CreateThing) Kind() Kind         { return KindCreateThing }
func (CreateThing) Category() Category { return CategoryModify }

// ModifyThing requests a full first-level-field overwrite of a live thing.
type ModifyThing struct {
	Base
	Thing things.Thing
}

func (ModifyThing) Kind() Kind         { return KindModifyThing }
func (ModifyThing) Category() Category { return CategoryModify }

// MergeThing applies an RFC-7396 merge patch at the given pointer.
type MergeThing struct {
	Base
	Pointer string
	Patch   []byte
}

func (MergeThing) Kind() Kind         { return KindMergeThing }
func (MergeThing) Category() Category { return CategoryModify }

// DeleteThing logically deletes a live thing.
type DeleteThing struct {
	Base
}

func (DeleteThing) Kind() Kind         { return KindDeleteThing }
func (DeleteThing) Category() Category { return CategoryDelete }

// RetrieveThing reads the thing representation with optional field selection.
type RetrieveThing struct {
	Base
}

func (RetrieveThing) Kind() Kind         { return KindRetrieveThing }
func (RetrieveThing) Category() Category { return CategoryQuery }

// ModifyAttributes replaces all attributes.
type ModifyAttributes struct {
	Base
	Attributes map[string]any
}

func (ModifyAttributes) Kind() Kind         { return KindModifyAttributes }
func (ModifyAttributes) Category() Category { return CategoryModify }

// DeleteAttributes removes all attributes.
type DeleteAttributes struct {
	Base
}

func (DeleteAttributes) Kind() Kind         { return KindDeleteAttributes }
func (DeleteAttributes) Category() Category { return CategoryDelete }

// RetrieveAttributes reads all attributes.
type RetrieveAttributes struct {
	Base
}

func (RetrieveAttributes) Kind() Kind         { return KindRetrieveAttributes }
func (RetrieveAttributes) Category() Category { return CategoryQuery }

// ModifyAttribute sets a single attribute addressed by a JSON pointer.
type ModifyAttribute struct {
	Base
	Pointer string
	Value   any
}

func (ModifyAttribute) Kind() Kind         { return KindModifyAttribute }
func (ModifyAttribute) Category() Category { return CategoryModify }

// DeleteAttribute removes a single attribute addressed by a JSON pointer.
type DeleteAttribute struct {
	Base
	Pointer string
}

func (DeleteAttribute) Kind() Kind         { return KindDeleteAttribute }
func (DeleteAttribute) Category() Category { return CategoryDelete }

// RetrieveAttribute reads a single attribute addressed by a JSON pointer.
type RetrieveAttribute struct {
	Base
	Pointer string
}

func (RetrieveAttribute) Kind() Kind         { return KindRetrieveAttribute }
func (RetrieveAttribute) Category() Category { return CategoryQuery }

// ModifyFeatures replaces all features.
type ModifyFeatures struct {
	Base
	Features map[string]things.Feature
}

func (ModifyFeatures) Kind() Kind         { return KindModifyFeatures }
func (ModifyFeatures) Category() Category { return CategoryModify }

// DeleteFeatures removes all features.
type DeleteFeatures struct {
	Base
}

func (DeleteFeatures) Kind() Kind         { return KindDeleteFeatures }
func (DeleteFeatures) Category() Category { return CategoryDelete }

// RetrieveFeatures reads all features.
type RetrieveFeatures struct {
	Base
}

func (RetrieveFeatures) Kind() Kind         { return KindRetrieveFeatures }
func (RetrieveFeatures) Category() Category { return CategoryQuery }

// ModifyFeature creates or replaces a single feature.
type ModifyFeature struct {
	Base
	FeatureID string
	Feature   things.Feature
}

func (ModifyFeature) Kind() Kind         { return KindModifyFeature }
func (ModifyFeature) Category() Category { return CategoryModify }

// DeleteFeature removes a single feature.
type DeleteFeature struct {
	Base
	FeatureID string
}

func (DeleteFeature) Kind() Kind         { return KindDeleteFeature }
func (DeleteFeature) Category() Category { return CategoryDelete }

// RetrieveFeature reads a single feature.
type RetrieveFeature struct {
	Base
	FeatureID string
}

func (RetrieveFeature) Kind() Kind         { return KindRetrieveFeature }
func (RetrieveFeature) Category() Category { return CategoryQuery }

// ModifyProperties replaces all properties of a feature.
type ModifyProperties struct {
	Base
	FeatureID  string
	Properties map[string]any
}

func (ModifyProperties) Kind() Kind         { return KindModifyProperties }
func (ModifyProperties) Category() Category { return CategoryModify }

// DeleteProperties removes all properties of a feature.
type DeleteProperties struct {
	Base
	FeatureID string
}

func (DeleteProperties) Kind() Kind         { return KindDeleteProperties }
func (DeleteProperties) Category() Category { return CategoryDelete }

// RetrieveProperties reads all properties of a feature.
type RetrieveProperties struct {
	Base
	FeatureID string
}

func (RetrieveProperties) Kind() Kind         { return KindRetrieveProperties }
func (RetrieveProperties) Category() Category { return CategoryQuery }

// ModifyProperty sets a single feature property addressed by a JSON pointer.
type ModifyProperty struct {
	Base
	FeatureID string
	Pointer   string
	Value     any
}

func (ModifyProperty) Kind() Kind         { return KindModifyProperty }
func (ModifyProperty) Category() Category { return CategoryModify }

// DeleteProperty removes a single feature property.
type DeleteProperty struct {
	Base
	FeatureID string
	Pointer   string
}

func (DeleteProperty) Kind() Kind         { return KindDeleteProperty }
func (DeleteProperty) Category() Category { return CategoryDelete }

// RetrieveProperty reads a single feature property.
type RetrieveProperty struct {
	Base
	FeatureID string
	Pointer   string
}

func (RetrieveProperty) Kind() Kind         { return KindRetrieveProperty }
func (RetrieveProperty) Category() Category { return CategoryQuery }

// ModifyDesiredProperties replaces all desired properties of a feature.
type ModifyDesiredProperties struct {
	Base
	FeatureID  string
	Properties map[string]any
}

func (ModifyDesiredProperties) Kind() Kind         { return KindModifyDesiredProperties }
func (ModifyDesiredProperties) Category() Category { return CategoryModify }

// DeleteDesiredProperties removes all desired properties of a feature.
type DeleteDesiredProperties struct {
	Base
	FeatureID string
}

func (DeleteDesiredProperties) Kind() Kind         { return KindDeleteDesiredProperties }
func (DeleteDesiredProperties) Category() Category { return CategoryDelete }

// RetrieveDesiredProperties reads all desired properties of a feature.
type RetrieveDesiredProperties struct {
	Base
	FeatureID string
}

func (RetrieveDesiredProperties) Kind() Kind         { return KindRetrieveDesiredProperties }
func (RetrieveDesiredProperties) Category() Category { return CategoryQuery }

// ModifyDesiredProperty sets a single desired property.
type ModifyDesiredProperty struct {
	Base
	FeatureID string
	Pointer   string
	Value     any
}

func (ModifyDesiredProperty) Kind() Kind         { return KindModifyDesiredProperty }
func (ModifyDesiredProperty) Category() Category { return CategoryModify }

// DeleteDesiredProperty removes a single desired property.
type DeleteDesiredProperty struct {
	Base
	FeatureID string
	Pointer   string
}

func (DeleteDesiredProperty) Kind() Kind         { return KindDeleteDesiredProperty }
func (DeleteDesiredProperty) Category() Category { return CategoryDelete }

// RetrieveDesiredProperty reads a single desired property.
type RetrieveDesiredProperty struct {
	Base
	FeatureID string
	Pointer   string
}

func (RetrieveDesiredProperty) Kind() Kind         { return KindRetrieveDesiredProperty }
func (RetrieveDesiredProperty) Category() Category { return CategoryQuery }

// ModifyFeatureDefinition creates or replaces a feature's definition.
type ModifyFeatureDefinition struct {
	Base
	FeatureID  string
	Definition []string
}

func (ModifyFeatureDefinition) Kind() Kind         { return KindModifyFeatureDefinition }
func (ModifyFeatureDefinition) Category() Category { return CategoryModify }

// DeleteFeatureDefinition removes a feature's definition.
type DeleteFeatureDefinition struct {
	Base
	FeatureID string
}

func (DeleteFeatureDefinition) Kind() Kind         { return KindDeleteFeatureDefinition }
func (DeleteFeatureDefinition) Category() Category { return CategoryDelete }

// RetrieveFeatureDefinition reads a feature's definition.
type RetrieveFeatureDefinition struct {
	Base
	FeatureID string
}

func (RetrieveFeatureDefinition) Kind() Kind         { return KindRetrieveFeatureDefinition }
func (RetrieveFeatureDefinition) Category() Category { return CategoryQuery }

// ModifyDefinition creates or replaces the thing's definition reference.
type ModifyDefinition struct {
	Base
	Definition string
}

func (ModifyDefinition) Kind() Kind         { return KindModifyDefinition }
func (ModifyDefinition) Category() Category { return CategoryModify }

// DeleteDefinition removes the thing's definition reference.
type DeleteDefinition struct {
	Base
}

func (DeleteDefinition) Kind() Kind         { return KindDeleteDefinition }
func (DeleteDefinition) Category() Category { return CategoryDelete }

// RetrieveDefinition reads the thing's definition reference.
type RetrieveDefinition struct {
	Base
}

func (RetrieveDefinition) Kind() Kind         { return KindRetrieveDefinition }
func (RetrieveDefinition) Category() Category { return CategoryQuery }

// ModifyPolicyID creates or replaces the thing's policy reference.
type ModifyPolicyID struct {
	Base
	PolicyID string
}

func (ModifyPolicyID) Kind() Kind         { return KindModifyPolicyID }
func (ModifyPolicyID) Category() Category { return CategoryModify }

// RetrievePolicyID reads the thing's policy reference.
type RetrievePolicyID struct {
	Base
}

func (RetrievePolicyID) Kind() Kind         { return KindRetrievePolicyID }
func (RetrievePolicyID) Category() Category { return CategoryQuery }

// ModifyACL replaces the whole ACL of a v1 thing.
type ModifyACL struct {
	Base
	ACL things.ACL
}

func (ModifyACL) Kind() Kind         { return KindModifyACL }
func (ModifyACL) Category() Category { return CategoryModify }

// RetrieveACL reads the whole ACL of a v1 thing.
type RetrieveACL struct {
	Base
}

func (RetrieveACL) Kind() Kind         { return KindRetrieveACL }
func (RetrieveACL) Category() Category { return CategoryQuery }

// ModifyACLEntry creates or replaces a single ACL entry.
type ModifyACLEntry struct {
	Base
	Subject     string
	Permissions things.Permissions
}

func (ModifyACLEntry) Kind() Kind         { return KindModifyACLEntry }
func (ModifyACLEntry) Category() Category { return CategoryModify }

// DeleteACLEntry removes a single ACL entry.
type DeleteACLEntry struct {
	Base
	Subject string
}

func (DeleteACLEntry) Kind() Kind         { return KindDeleteACLEntry }
func (DeleteACLEntry) Category() Category { return CategoryDelete }

// RetrieveACLEntry reads a single ACL entry.
type RetrieveACLEntry struct {
	Base
	Subject string
}

func (RetrieveACLEntry) Kind() Kind         { return KindRetrieveACLEntry }
func (RetrieveACLEntry) Category() Category { return CategoryQuery }
