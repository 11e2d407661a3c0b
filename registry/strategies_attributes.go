// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

func (r *Registry) registerAttributeStrategies() {
	r.register(KindModifyAttributes, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyAttributes,
	})
	r.register(KindDeleteAttributes, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteAttributes,
	})
	r.register(KindRetrieveAttributes, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveAttributes,
	})

	r.register(KindModifyAttribute, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyAttribute,
	})
	r.register(KindDeleteAttribute, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteAttribute,
	})
	r.register(KindRetrieveAttribute, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveAttribute,
	})
}

func (r *Registry) modifyAttributes(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyAttributes)

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, th.Attributes, c.Attributes)); err != nil {
		return Failure{Err: err}
	}

	exists := th.Attributes != nil

	return r.upsert(cmd, nextRevision, exists, AttributesCreated, AttributesModified, attributesPath, c.Attributes)
}

func (r *Registry) deleteAttributes(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	if th.Attributes == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, AttributesDeleted, attributesPath)
}

func retrieveAttributes(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	if th.Attributes == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, th.Attributes)
}

func (r *Registry) modifyAttribute(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyAttribute)

	current, err := th.Attribute(c.Pointer)
	exists := err == nil
	if !exists {
		current = nil
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, current, c.Value)); err != nil {
		return Failure{Err: err}
	}

	// Probe the pointer so malformed addresses fail the command instead of
	// the later event application.
	if _, err := th.WithAttribute(c.Pointer, c.Value); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	return r.upsert(cmd, nextRevision, exists, AttributeCreated, AttributeModified, attributePath(c.Pointer), c.Value)
}

func (r *Registry) deleteAttribute(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteAttribute)

	if _, err := th.Attribute(c.Pointer); err != nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, AttributeDeleted, attributePath(c.Pointer))
}

func retrieveAttribute(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveAttribute)

	value, err := th.Attribute(c.Pointer)
	if err != nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, value)
}
