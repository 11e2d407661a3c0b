// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"strings"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

// ErrReplay indicates an event that cannot be applied to the given snapshot.
var ErrReplay = errors.New("failed to apply event")

// ReplayEvent applies a persisted event to a thing snapshot and returns the
// resulting state. Thing-level events carry the complete entity; sub-resource
// events are applied through the same builders the strategies validate
// against. A nil snapshot is only valid for creation events.
func ReplayEvent(th *things.Thing, event Event) (*things.Thing, error) {
	switch event.Kind {
	case ThingCreated, ThingModified, ThingMerged:
		if event.Thing == nil {
			return nil, errors.Wrap(ErrReplay, errors.New("thing-level event carries no entity"))
		}
		next := *event.Thing
		next.Revision = event.Revision

		return &next, nil
	case ThingDeleted:
		if th == nil {
			return nil, errors.Wrap(ErrReplay, errors.New("no snapshot to delete"))
		}
		next := th.WithLifecycle(things.Deleted).WithRevision(event.Revision).WithModified(event.Timestamp)

		return &next, nil
	}

	if th == nil {
		return nil, errors.Wrap(ErrReplay, errors.New("no snapshot to modify"))
	}

	next, err := replaySubResource(*th, event)
	if err != nil {
		return nil, errors.Wrap(ErrReplay, err)
	}
	next = next.WithRevision(event.Revision).WithModified(event.Timestamp)

	return &next, nil
}

func replaySubResource(th things.Thing, event Event) (things.Thing, error) {
	switch event.Kind {
	case AttributesCreated, AttributesModified:
		attrs, err := asValueMap(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithAttributes(attrs), nil
	case AttributesDeleted:
		return th.WithoutAttributes(), nil
	case AttributeCreated, AttributeModified:
		return th.WithAttribute(attributePointer(event.Path), event.Value)
	case AttributeDeleted:
		return th.WithoutAttribute(attributePointer(event.Path))

	case FeaturesCreated, FeaturesModified:
		fs, err := asFeatures(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithFeatures(fs), nil
	case FeaturesDeleted:
		return th.WithoutFeatures(), nil
	case FeatureCreated, FeatureModified:
		f, err := asFeature(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithFeature(eventFeatureID(event.Path), f), nil
	case FeatureDeleted:
		return th.WithoutFeature(eventFeatureID(event.Path)), nil

	case PropertiesCreated, PropertiesModified:
		props, err := asValueMap(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithProperties(props), nil
		})
	case PropertiesDeleted:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithoutProperties(), nil
		})
	case PropertyCreated, PropertyModified:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithProperty(propertyPointer(event.Path), event.Value)
		})
	case PropertyDeleted:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithoutProperty(propertyPointer(event.Path))
		})

	case DesiredPropertiesCreated, DesiredPropertiesModified:
		props, err := asValueMap(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithDesiredProperties(props), nil
		})
	case DesiredPropertiesDeleted:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithoutDesiredProperties(), nil
		})
	case DesiredPropertyCreated, DesiredPropertyModified:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithDesiredProperty(desiredPropertyPointer(event.Path), event.Value)
		})
	case DesiredPropertyDeleted:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithoutDesiredProperty(desiredPropertyPointer(event.Path))
		})

	case FeatureDefinitionCreated, FeatureDefinitionModified:
		def, err := asStringSlice(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithDefinition(def), nil
		})
	case FeatureDefinitionDeleted:
		return replayFeature(th, event.Path, func(f things.Feature) (things.Feature, error) {
			return f.WithoutDefinition(), nil
		})

	case DefinitionCreated, DefinitionModified:
		def, err := asString(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithDefinition(def), nil
	case DefinitionDeleted:
		return th.WithoutDefinition(), nil

	case PolicyIDCreated, PolicyIDModified:
		policyID, err := asString(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithPolicyID(policyID), nil

	case ACLModified:
		acl, err := asACL(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithACL(acl), nil
	case ACLEntryCreated, ACLEntryModified:
		perms, err := asPermissions(event.Value)
		if err != nil {
			return things.Thing{}, err
		}
		return th.WithACL(th.ACL.WithEntry(aclSubject(event.Path), perms)), nil
	case ACLEntryDeleted:
		return th.WithACL(th.ACL.WithoutEntry(aclSubject(event.Path))), nil

	default:
		return things.Thing{}, errors.New("unknown event kind " + string(event.Kind))
	}
}

// replayFeature applies a feature-scoped change to the feature named by the
// event path.
func replayFeature(th things.Thing, path string, change func(things.Feature) (things.Feature, error)) (things.Thing, error) {
	id := eventFeatureID(path)
	f, ok := th.Feature(id)
	if !ok {
		return things.Thing{}, errors.New("feature " + id + " not found")
	}
	next, err := change(f)
	if err != nil {
		return things.Thing{}, err
	}

	return th.WithFeature(id, next), nil
}

// attributePointer strips the attributes prefix from an event path.
func attributePointer(path string) string {
	return strings.TrimPrefix(path, attributesPath)
}

// eventFeatureID extracts the feature id from a feature-scoped event path.
// Feature ids never contain slashes.
func eventFeatureID(path string) string {
	rest := strings.TrimPrefix(path, featuresPath+"/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}

	return rest
}

func propertyPointer(path string) string {
	return strings.TrimPrefix(path, propertiesPath(eventFeatureID(path)))
}

func desiredPropertyPointer(path string) string {
	return strings.TrimPrefix(path, desiredPropertiesPath(eventFeatureID(path)))
}

func aclSubject(path string) string {
	return strings.TrimPrefix(path, aclPath+"/")
}
