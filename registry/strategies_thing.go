// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"encoding/json"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

func (r *Registry) registerThingStrategies() {
	r.register(KindCreateThing, Strategy{
		Applicable: func(th *things.Thing, cmd Command) bool {
			return th == nil || !th.IsActive()
		},
		Unhandled: func(_ context.Context, _ Context, _ *things.Thing, _ uint64, _ Command) Result {
			return Failure{Err: ErrConflict}
		},
		Apply: r.createThing,
	})

	r.register(KindModifyThing, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyThing,
	})

	r.register(KindMergeThing, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.mergeThing,
	})

	r.register(KindDeleteThing, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteThing,
	})

	r.register(KindRetrieveThing, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveThing,
	})
}

// createThing builds the initial entity. A recreation after deletion keeps
// counting revisions on the same line, which is why the next revision comes
// from the host rather than starting at one here.
func (r *Registry) createThing(_ context.Context, _ Context, _ *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(CreateThing)
	version := c.Head.SchemaVersion()

	th := c.Thing
	th.ID = c.Target()
	th.SchemaVersion = version

	if err := validFeatureIDs(th.Features); err != nil {
		return Failure{Err: err}
	}

	switch version {
	case things.V1:
		if th.PolicyID != "" {
			return Failure{Err: errors.Wrap(ErrInvalid, errors.New("policy id is not allowed in the deprecated schema"))}
		}
		acl, err := initialACL(th.ACL, c.Head.AuthSubjects)
		if err != nil {
			return Failure{Err: err}
		}
		th.ACL = acl
	default:
		// Inline ACLs belong to the deprecated schema only; the current
		// schema delegates authorization to a referenced policy.
		if th.ACL != nil {
			return Failure{Err: ErrACLNotAllowed}
		}
		if th.PolicyID == "" {
			th.PolicyID = th.ID
		}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(nil, version, nil, th.ToMap(version))); err != nil {
		return Failure{Err: err}
	}

	now := r.now()
	th.Lifecycle = things.Active
	th.Revision = nextRevision
	th.Created = now
	th.Modified = now

	return Mutation{
		Event: r.newEvent(ThingCreated, cmd, nextRevision, "", nil, &th),
		Response: Response{
			Status:        StatusCreated,
			Value:         th.ToMap(version),
			CorrelationID: c.Head.CorrelationID,
		},
		BecomeCreated: true,
	}
}

// initialACL resolves the ACL of a newly created v1 thing. A completely
// absent ACL falls back to granting the caller's first authorization subject
// the minimum required permission set; a present but invalid ACL is rejected,
// never repaired.
func initialACL(acl things.ACL, authSubjects []string) (things.ACL, error) {
	if len(acl) == 0 {
		if len(authSubjects) == 0 {
			return nil, errors.Wrap(ErrInvalid, things.ErrInvalidACL)
		}
		return things.ACL{authSubjects[0]: things.MinRequiredPermissions}, nil
	}
	if err := acl.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalid, err)
	}

	return acl.Copy(), nil
}

// modifyThing overwrites the first-level fields present in the command
// payload, reconciling the existing schema version with the one the command
// is issued against.
func (r *Registry) modifyThing(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyThing)
	cmdVersion := c.Head.SchemaVersion()
	payload := c.Thing

	if err := validFeatureIDs(payload.Features); err != nil {
		return Failure{Err: err}
	}

	merged := *th
	switch {
	case th.SchemaVersion == things.V1 && cmdVersion == things.V1:
		if len(payload.ACL) > 0 {
			if err := payload.ACL.Validate(); err != nil {
				return Failure{Err: errors.Wrap(ErrInvalid, err)}
			}
			merged = merged.WithACL(payload.ACL)
		}
	case th.SchemaVersion == things.V1 && cmdVersion == things.V2:
		// Migration to the policy-based schema drops the ACL; without a
		// policy reference the thing would end up with no authorization
		// anchor at all.
		if payload.PolicyID == "" {
			return Failure{Err: ErrPolicyIDMissing}
		}
		merged.ACL = nil
		merged.SchemaVersion = things.V2
		merged = merged.WithPolicyID(payload.PolicyID)
	case th.SchemaVersion == things.V2 && cmdVersion == things.V1:
		// A deprecated-schema command cannot carry authorization data for a
		// policy-based thing: the inline ACL is discarded and the existing
		// policy reference is kept.
	default:
		if payload.PolicyID != "" {
			merged = merged.WithPolicyID(payload.PolicyID)
		}
	}

	if payload.Attributes != nil {
		merged = merged.WithAttributes(payload.Attributes)
	}
	if payload.Features != nil {
		merged = merged.WithFeatures(payload.Features)
	}
	if payload.Definition != "" {
		merged = merged.WithDefinition(payload.Definition)
	}

	// Fields absent from the payload survive the merge, so only the length
	// of the complete merged document is a sound budget input.
	if err := r.limits.EnsureValidSize(r.limits.projectedSize(nil, merged.SchemaVersion, nil, merged.ToMap(merged.SchemaVersion))); err != nil {
		return Failure{Err: err}
	}

	merged = merged.WithRevision(nextRevision).WithModified(r.now())

	return Mutation{
		Event: r.newEvent(ThingModified, cmd, nextRevision, "", nil, &merged),
		Response: Response{
			Status:        StatusModified,
			Value:         merged.ToMap(merged.SchemaVersion),
			CorrelationID: c.Head.CorrelationID,
		},
	}
}

// mergeThing applies an RFC-7396 merge patch anchored at the command's
// pointer. The deprecated schema has no merge semantics.
func (r *Registry) mergeThing(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(MergeThing)

	if c.Head.SchemaVersion() == things.V1 || th.SchemaVersion == things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, nil, json.RawMessage(c.Patch))); err != nil {
		return Failure{Err: err}
	}

	merged, err := th.MergePatch(c.Pointer, c.Patch)
	if err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}
	if err := validFeatureIDs(merged.Features); err != nil {
		return Failure{Err: err}
	}
	merged = merged.WithRevision(nextRevision).WithModified(r.now())

	var patch any
	if err := json.Unmarshal(c.Patch, &patch); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	return Mutation{
		Event: r.newEvent(ThingMerged, cmd, nextRevision, c.Pointer, patch, &merged),
		Response: Response{
			Status:        StatusModified,
			Value:         merged.ToMap(merged.SchemaVersion),
			CorrelationID: c.Head.CorrelationID,
		},
	}
}

// deleteThing ends the entity's live span. The revision line survives the
// deletion so a later recreation continues it.
func (r *Registry) deleteThing(_ context.Context, _ Context, _ *things.Thing, nextRevision uint64, cmd Command) Result {
	m := r.deletion(cmd, nextRevision, ThingDeleted, "")
	m.BecomeDeleted = true

	return m
}

func retrieveThing(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveThing)

	return queryResult(cmd, th.ToMap(c.Head.SchemaVersion(), c.Head.Fields...))
}
