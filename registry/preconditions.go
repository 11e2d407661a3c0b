// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/things"
)

// withPreconditions decorates a strategy core with If-Match / If-None-Match
// evaluation against the entity tag of the addressed sub-resource. The same
// decorator wraps every precondition-aware strategy, it is never duplicated
// per strategy.
func (r *Registry) withPreconditions(next ApplyFunc) ApplyFunc {
	return func(ctx context.Context, dctx Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
		h := cmd.Headers()
		if len(h.IfMatch) == 0 && len(h.IfNoneMatch) == 0 {
			return next(ctx, dctx, th, nextRevision, cmd)
		}

		tag := currentTag(th, cmd)

		// An absent resource has no tag to compare against; reads and
		// deletes report not-found through the regular strategy logic.
		if tag.Empty() && (cmd.Category() == CategoryQuery || cmd.Category() == CategoryDelete) {
			return next(ctx, dctx, th, nextRevision, cmd)
		}

		if len(h.IfMatch) > 0 && !tag.MatchedBy(h.IfMatch) {
			return Failure{Err: ErrPreconditionFailed, ETag: tag}
		}
		if len(h.IfNoneMatch) > 0 && tag.MatchedBy(h.IfNoneMatch) {
			if cmd.Category() == CategoryQuery {
				return Failure{Err: ErrPreconditionNotModified, ETag: tag}
			}
			return Failure{Err: ErrPreconditionFailed, ETag: tag}
		}

		return next(ctx, dctx, th, nextRevision, cmd)
	}
}

// withETagAppender decorates a strategy core so that successful results
// carry the new entity tag of the affected sub-resource. The tag is derived
// from the response-shaping data, never from a second entity read.
func (r *Registry) withETagAppender(next ApplyFunc) ApplyFunc {
	return func(ctx context.Context, dctx Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
		res := next(ctx, dctx, th, nextRevision, cmd)

		switch typed := res.(type) {
		case Mutation:
			if !typed.Response.ETag.Empty() {
				return typed
			}
			if tag, ok := mutationTag(typed.Event); ok {
				typed.Response.ETag = tag
			}
			return typed
		case Query:
			if typed.Response.ETag.Empty() {
				typed.Response.ETag = currentTag(th, cmd)
			}
			return typed
		default:
			return res
		}
	}
}

// mutationTag derives the new sub-resource tag from the event payload.
// Deletions carry no tag.
func mutationTag(event Event) (things.EntityTag, bool) {
	switch {
	case event.Thing != nil:
		tag, err := things.TagOf(taggableThing(*event.Thing))
		return tag, err == nil
	case event.Value != nil:
		tag, err := things.TagOf(event.Value)
		return tag, err == nil
	default:
		return "", false
	}
}

// currentTag resolves the sub-resource the command addresses and computes
// its entity tag. An absent resource yields the empty tag.
func currentTag(th *things.Thing, cmd Command) things.EntityTag {
	value, ok := resolveResource(th, cmd)
	if !ok {
		return ""
	}
	tag, err := things.TagOf(value)
	if err != nil {
		return ""
	}

	return tag
}

// taggableThing is the thing-level tag input: the document plus the
// revision, so that every applied mutation changes the thing-level tag.
func taggableThing(th things.Thing) map[string]any {
	doc := th.ToMap(th.SchemaVersion)
	doc["_revision"] = th.Revision

	return doc
}

// resolveResource extracts the sub-value the command addresses from the
// current thing, reporting whether it exists.
func resolveResource(th *things.Thing, cmd Command) (any, bool) {
	if !liveTarget(th, cmd) {
		return nil, false
	}

	switch c := cmd.(type) {
	case CreateThing, ModifyThing, MergeThing, DeleteThing, RetrieveThing:
		return taggableThing(*th), true

	case ModifyAttributes, DeleteAttributes, RetrieveAttributes:
		if th.Attributes == nil {
			return nil, false
		}
		return th.Attributes, true
	case ModifyAttribute:
		return resolved(th.Attribute(c.Pointer))
	case DeleteAttribute:
		return resolved(th.Attribute(c.Pointer))
	case RetrieveAttribute:
		return resolved(th.Attribute(c.Pointer))

	case ModifyFeatures, DeleteFeatures, RetrieveFeatures:
		if th.Features == nil {
			return nil, false
		}
		return th.Features, true
	case ModifyFeature:
		return resolvedFeature(th, c.FeatureID)
	case DeleteFeature:
		return resolvedFeature(th, c.FeatureID)
	case RetrieveFeature:
		return resolvedFeature(th, c.FeatureID)

	case ModifyProperties:
		return resolvedProperties(th, c.FeatureID)
	case DeleteProperties:
		return resolvedProperties(th, c.FeatureID)
	case RetrieveProperties:
		return resolvedProperties(th, c.FeatureID)
	case ModifyProperty:
		return resolvedProperty(th, c.FeatureID, c.Pointer)
	case DeleteProperty:
		return resolvedProperty(th, c.FeatureID, c.Pointer)
	case RetrieveProperty:
		return resolvedProperty(th, c.FeatureID, c.Pointer)

	case ModifyDesiredProperties:
		return resolvedDesiredProperties(th, c.FeatureID)
	case DeleteDesiredProperties:
		return resolvedDesiredProperties(th, c.FeatureID)
	case RetrieveDesiredProperties:
		return resolvedDesiredProperties(th, c.FeatureID)
	case ModifyDesiredProperty:
		return resolvedDesiredProperty(th, c.FeatureID, c.Pointer)
	case DeleteDesiredProperty:
		return resolvedDesiredProperty(th, c.FeatureID, c.Pointer)
	case RetrieveDesiredProperty:
		return resolvedDesiredProperty(th, c.FeatureID, c.Pointer)

	case ModifyFeatureDefinition:
		return resolvedFeatureDefinition(th, c.FeatureID)
	case DeleteFeatureDefinition:
		return resolvedFeatureDefinition(th, c.FeatureID)
	case RetrieveFeatureDefinition:
		return resolvedFeatureDefinition(th, c.FeatureID)

	case ModifyDefinition, DeleteDefinition, RetrieveDefinition:
		if th.Definition == "" {
			return nil, false
		}
		return th.Definition, true

	case ModifyPolicyID, RetrievePolicyID:
		if th.PolicyID == "" {
			return nil, false
		}
		return th.PolicyID, true

	case ModifyACL, RetrieveACL:
		if th.ACL == nil {
			return nil, false
		}
		return th.ACL, true
	case ModifyACLEntry:
		return resolvedACLEntry(th, c.Subject)
	case DeleteACLEntry:
		return resolvedACLEntry(th, c.Subject)
	case RetrieveACLEntry:
		return resolvedACLEntry(th, c.Subject)

	default:
		return nil, false
	}
}

func resolved(value any, err error) (any, bool) {
	if err != nil {
		return nil, false
	}
	return value, true
}

func resolvedFeature(th *things.Thing, id string) (any, bool) {
	f, ok := th.Feature(id)
	if !ok {
		return nil, false
	}
	return f, true
}

func resolvedProperties(th *things.Thing, id string) (any, bool) {
	f, ok := th.Feature(id)
	if !ok || f.Properties == nil {
		return nil, false
	}
	return f.Properties, true
}

func resolvedProperty(th *things.Thing, id, pointer string) (any, bool) {
	f, ok := th.Feature(id)
	if !ok {
		return nil, false
	}
	return resolved(f.Property(pointer))
}

func resolvedDesiredProperties(th *things.Thing, id string) (any, bool) {
	f, ok := th.Feature(id)
	if !ok || f.DesiredProperties == nil {
		return nil, false
	}
	return f.DesiredProperties, true
}

func resolvedDesiredProperty(th *things.Thing, id, pointer string) (any, bool) {
	f, ok := th.Feature(id)
	if !ok {
		return nil, false
	}
	return resolved(f.DesiredProperty(pointer))
}

func resolvedFeatureDefinition(th *things.Thing, id string) (any, bool) {
	f, ok := th.Feature(id)
	if !ok || f.Definition == nil {
		return nil, false
	}
	return f.Definition, true
}

func resolvedACLEntry(th *things.Thing, subject string) (any, bool) {
	perms, ok := th.AclEntry(subject)
	if !ok {
		return nil, false
	}
	return perms, true
}
