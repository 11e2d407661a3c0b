// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/things"
)

func (r *Registry) registerPolicyStrategies() {
	r.register(KindModifyPolicyID, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyPolicyID,
	})
	r.register(KindRetrievePolicyID, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrievePolicyID,
	})
}

// modifyPolicyID replaces the thing's policy reference. Policy references
// exist in the current schema only.
func (r *Registry) modifyPolicyID(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyPolicyID)

	if th.SchemaVersion == things.V1 || c.Head.SchemaVersion() == things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}

	exists := th.PolicyID != ""
	var removed any
	if exists {
		removed = th.PolicyID
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, removed, c.PolicyID)); err != nil {
		return Failure{Err: err}
	}

	return r.upsert(cmd, nextRevision, exists, PolicyIDCreated, PolicyIDModified, policyIDPath, c.PolicyID)
}

func retrievePolicyID(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	if th.SchemaVersion == things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}
	if th.PolicyID == "" {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, th.PolicyID)
}
