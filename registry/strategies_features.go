// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/things"
)

func (r *Registry) registerFeatureStrategies() {
	r.register(KindModifyFeatures, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyFeatures,
	})
	r.register(KindDeleteFeatures, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteFeatures,
	})
	r.register(KindRetrieveFeatures, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveFeatures,
	})

	r.register(KindModifyFeature, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyFeature,
	})
	r.register(KindDeleteFeature, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteFeature,
	})
	r.register(KindRetrieveFeature, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveFeature,
	})

	r.register(KindModifyFeatureDefinition, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyFeatureDefinition,
	})
	r.register(KindDeleteFeatureDefinition, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteFeatureDefinition,
	})
	r.register(KindRetrieveFeatureDefinition, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveFeatureDefinition,
	})
}

func (r *Registry) modifyFeatures(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyFeatures)

	if err := validFeatureIDs(c.Features); err != nil {
		return Failure{Err: err}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, th.Features, c.Features)); err != nil {
		return Failure{Err: err}
	}

	exists := th.Features != nil

	return r.upsert(cmd, nextRevision, exists, FeaturesCreated, FeaturesModified, featuresPath, c.Features)
}

func (r *Registry) deleteFeatures(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	if th.Features == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, FeaturesDeleted, featuresPath)
}

func retrieveFeatures(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	if th.Features == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, th.Features)
}

func (r *Registry) modifyFeature(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyFeature)

	if err := validFeatureID(c.FeatureID); err != nil {
		return Failure{Err: err}
	}

	current, exists := th.Feature(c.FeatureID)
	var removed any
	if exists {
		removed = current
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, removed, c.Feature)); err != nil {
		return Failure{Err: err}
	}

	return r.upsert(cmd, nextRevision, exists, FeatureCreated, FeatureModified, featurePath(c.FeatureID), c.Feature)
}

func (r *Registry) deleteFeature(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteFeature)

	if _, ok := th.Feature(c.FeatureID); !ok {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, FeatureDeleted, featurePath(c.FeatureID))
}

func retrieveFeature(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveFeature)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, f)
}

func (r *Registry) modifyFeatureDefinition(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyFeatureDefinition)

	f, ok := th.Feature(c.FeatureID)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, f.Definition, c.Definition)); err != nil {
		return Failure{Err: err}
	}

	exists := f.Definition != nil

	return r.upsert(cmd, nextRevision, exists, FeatureDefinitionCreated, FeatureDefinitionModified, featureDefinitionPath(c.FeatureID), c.Definition)
}

func (r *Registry) deleteFeatureDefinition(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteFeatureDefinition)

	f, ok := th.Feature(c.FeatureID)
	if !ok || f.Definition == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, FeatureDefinitionDeleted, featureDefinitionPath(c.FeatureID))
}

func retrieveFeatureDefinition(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveFeatureDefinition)

	f, ok := th.Feature(c.FeatureID)
	if !ok || f.Definition == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, f.Definition)
}
