// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

func (r *Registry) registerPropertyStrategies() {
	r.register(KindModifyProperties, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyProperties,
	})
	r.register(KindDeleteProperties, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteProperties,
	})
	r.register(KindRetrieveProperties, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveProperties,
	})
	r.register(KindModifyProperty, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyProperty,
	})
	r.register(KindDeleteProperty, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteProperty,
	})
	r.register(KindRetrieveProperty, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveProperty,
	})

	r.register(KindModifyDesiredProperties, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyDesiredProperties,
	})
	r.register(KindDeleteDesiredProperties, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteDesiredProperties,
	})
	r.register(KindRetrieveDesiredProperties, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveDesiredProperties,
	})
	r.register(KindModifyDesiredProperty, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyDesiredProperty,
	})
	r.register(KindDeleteDesiredProperty, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteDesiredProperty,
	})
	r.register(KindRetrieveDesiredProperty, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveDesiredProperty,
	})
}

func (r *Registry) modifyProperties(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyProperties)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, f.Properties, c.Properties)); err != nil {
		return Failure{Err: err}
	}

	exists := f.Properties != nil

	return r.upsert(cmd, nextRevision, exists, PropertiesCreated, PropertiesModified, propertiesPath(c.FeatureID), c.Properties)
}

func (r *Registry) deleteProperties(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteProperties)

	f, ok := th.Feature(c.FeatureID)
	if !ok || f.Properties == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, PropertiesDeleted, propertiesPath(c.FeatureID))
}

func retrieveProperties(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveProperties)

	f, ok := th.Feature(c.FeatureID)
	if !ok || f.Properties == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, f.Properties)
}

func (r *Registry) modifyProperty(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyProperty)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	current, err := f.Property(c.Pointer)
	exists := err == nil
	if !exists {
		current = nil
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, current, c.Value)); err != nil {
		return Failure{Err: err}
	}

	if _, err := f.WithProperty(c.Pointer, c.Value); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	return r.upsert(cmd, nextRevision, exists, PropertyCreated, PropertyModified, propertyPath(c.FeatureID, c.Pointer), c.Value)
}

func (r *Registry) deleteProperty(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteProperty)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}
	if _, err := f.Property(c.Pointer); err != nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, PropertyDeleted, propertyPath(c.FeatureID, c.Pointer))
}

func retrieveProperty(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveProperty)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}
	value, err := f.Property(c.Pointer)
	if err != nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, value)
}

func (r *Registry) modifyDesiredProperties(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyDesiredProperties)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, f.DesiredProperties, c.Properties)); err != nil {
		return Failure{Err: err}
	}

	exists := f.DesiredProperties != nil

	return r.upsert(cmd, nextRevision, exists, DesiredPropertiesCreated, DesiredPropertiesModified, desiredPropertiesPath(c.FeatureID), c.Properties)
}

func (r *Registry) deleteDesiredProperties(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteDesiredProperties)

	f, ok := th.Feature(c.FeatureID)
	if !ok || f.DesiredProperties == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, DesiredPropertiesDeleted, desiredPropertiesPath(c.FeatureID))
}

func retrieveDesiredProperties(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveDesiredProperties)

	f, ok := th.Feature(c.FeatureID)
	if !ok || f.DesiredProperties == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, f.DesiredProperties)
}

func (r *Registry) modifyDesiredProperty(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyDesiredProperty)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	current, err := f.DesiredProperty(c.Pointer)
	exists := err == nil
	if !exists {
		current = nil
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, current, c.Value)); err != nil {
		return Failure{Err: err}
	}

	if _, err := f.WithDesiredProperty(c.Pointer, c.Value); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	return r.upsert(cmd, nextRevision, exists, DesiredPropertyCreated, DesiredPropertyModified, desiredPropertyPath(c.FeatureID, c.Pointer), c.Value)
}

func (r *Registry) deleteDesiredProperty(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteDesiredProperty)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}
	if _, err := f.DesiredProperty(c.Pointer); err != nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, DesiredPropertyDeleted, desiredPropertyPath(c.FeatureID, c.Pointer))
}

func retrieveDesiredProperty(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveDesiredProperty)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}
	value, err := f.DesiredProperty(c.Pointer)
	if err != nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, value)
}
