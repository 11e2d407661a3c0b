// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/things"
)

func (r *Registry) registerDefinitionStrategies() {
	r.register(KindModifyDefinition, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyDefinition,
	})
	r.register(KindDeleteDefinition, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteDefinition,
	})
	r.register(KindRetrieveDefinition, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveDefinition,
	})
}

func (r *Registry) modifyDefinition(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyDefinition)

	var removed any
	if th.Definition != "" {
		removed = th.Definition
	}
	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, removed, c.Definition)); err != nil {
		return Failure{Err: err}
	}

	exists := th.Definition != ""

	return r.upsert(cmd, nextRevision, exists, DefinitionCreated, DefinitionModified, definitionPath, c.Definition)
}

func (r *Registry) deleteDefinition(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	if th.Definition == "" {
		return Failure{Err: ErrNotAccessible}
	}

	return r.deletion(cmd, nextRevision, DefinitionDeleted, definitionPath)
}

func retrieveDefinition(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	if th.Definition == "" {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, th.Definition)
}
