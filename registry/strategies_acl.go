// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

func (r *Registry) registerACLStrategies() {
	r.register(KindModifyACL, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyACL,
	})
	r.register(KindRetrieveACL, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveACL,
	})
	r.register(KindModifyACLEntry, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.modifyACLEntry,
	})
	r.register(KindDeleteACLEntry, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      r.deleteACLEntry,
	})
	r.register(KindRetrieveACLEntry, Strategy{
		Applicable: liveTarget,
		Unhandled:  notAccessible,
		Apply:      retrieveACLEntry,
	})
}

// modifyACL replaces the whole ACL. Inline ACLs exist in the deprecated
// schema only, and every replacement must leave at least one subject holding
// the minimum required permission set.
func (r *Registry) modifyACL(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyACL)

	if th.SchemaVersion != things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}
	if err := c.ACL.Validate(); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, th.ACL, c.ACL)); err != nil {
		return Failure{Err: err}
	}

	m := r.upsert(cmd, nextRevision, true, ACLModified, ACLModified, aclPath, c.ACL)
	if th.ACL == nil {
		m.Response.Status = StatusCreated
	}

	return m
}

func retrieveACL(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	if th.SchemaVersion != things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}
	if th.ACL == nil {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, th.ACL)
}

// modifyACLEntry sets a single subject's permissions. The resulting ACL as a
// whole must still satisfy the minimum-permission invariant, so downgrading
// the last fully privileged subject is rejected.
func (r *Registry) modifyACLEntry(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(ModifyACLEntry)

	if th.SchemaVersion != things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}

	candidate := th.ACL.WithEntry(c.Subject, c.Permissions)
	if err := candidate.Validate(); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	current, exists := th.AclEntry(c.Subject)
	var removed any
	if exists {
		removed = current
	}
	if err := r.limits.EnsureValidSize(r.limits.projectedSize(th, th.SchemaVersion, removed, c.Permissions)); err != nil {
		return Failure{Err: err}
	}

	return r.upsert(cmd, nextRevision, exists, ACLEntryCreated, ACLEntryModified, aclEntryPath(c.Subject), c.Permissions)
}

// deleteACLEntry removes a subject. Removing the last subject that holds the
// minimum required permission set is rejected.
func (r *Registry) deleteACLEntry(_ context.Context, _ Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	c := cmd.(DeleteACLEntry)

	if th.SchemaVersion != things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}
	if _, ok := th.AclEntry(c.Subject); !ok {
		return Failure{Err: ErrNotAccessible}
	}

	candidate := th.ACL.WithoutEntry(c.Subject)
	if err := candidate.Validate(); err != nil {
		return Failure{Err: errors.Wrap(ErrInvalid, err)}
	}

	return r.deletion(cmd, nextRevision, ACLEntryDeleted, aclEntryPath(c.Subject))
}

func retrieveACLEntry(_ context.Context, _ Context, th *things.Thing, _ uint64, cmd Command) Result {
	c := cmd.(RetrieveACLEntry)

	if th.SchemaVersion != things.V1 {
		return Failure{Err: ErrSchemaNotSupported}
	}
	perms, ok := th.AclEntry(c.Subject)
	if !ok {
		return Failure{Err: ErrNotAccessible}
	}

	return queryResult(cmd, perms)
}
