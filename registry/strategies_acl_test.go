// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"testing"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/registry"
	"github.com/absmach/registry/things"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v1Base() registry.Base {
	return registry.NewBase(thingID, registry.Headers{Version: things.V1})
}

func TestModifyACL(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	th, m := mutate(t, r, th, 2, registry.ModifyACL{
		Base: v1Base(),
		ACL: things.ACL{
			"user:bob":   things.MinRequiredPermissions,
			"user:carol": {things.Read},
		},
	})
	assert.Equal(t, registry.ACLModified, m.Event.Kind)
	_, ok := th.AclEntry("user:alice")
	assert.False(t, ok, "replacement is complete, not a merge")
	_, ok = th.AclEntry("user:carol")
	assert.True(t, ok)
}

func TestModifyACLWithoutFullyPrivilegedSubject(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	f := failure(t, dispatch(r, th, 2, registry.ModifyACL{
		Base: v1Base(),
		ACL:  things.ACL{"user:bob": {things.Read, things.Write}},
	}))

	assert.True(t, errors.Contains(f.Err, registry.ErrInvalid))
}

func TestACLCommandsOnV2NotSupported(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	base := registry.NewBase(thingID, registry.Headers{})
	cases := []struct {
		desc string
		cmd  registry.Command
	}{
		{"modify acl", registry.ModifyACL{Base: base, ACL: things.ACL{"user:alice": things.MinRequiredPermissions}}},
		{"retrieve acl", registry.RetrieveACL{Base: base}},
		{"modify entry", registry.ModifyACLEntry{Base: base, Subject: "user:alice", Permissions: things.MinRequiredPermissions}},
		{"delete entry", registry.DeleteACLEntry{Base: base, Subject: "user:alice"}},
		{"retrieve entry", registry.RetrieveACLEntry{Base: base, Subject: "user:alice"}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			f := failure(t, dispatch(r, th, 2, tc.cmd))
			assert.True(t, errors.Contains(f.Err, registry.ErrSchemaNotSupported))
		})
	}
}

func TestACLEntryLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	th, m := mutate(t, r, th, 2, registry.ModifyACLEntry{
		Base:        v1Base(),
		Subject:     "user:bob",
		Permissions: things.Permissions{things.Read},
	})
	assert.Equal(t, registry.ACLEntryCreated, m.Event.Kind)
	assert.Equal(t, "/acl/user:bob", m.Event.Path)

	q := query(t, dispatch(r, th, 3, registry.RetrieveACLEntry{Base: v1Base(), Subject: "user:bob"}))
	perms, ok := q.Response.Value.(things.Permissions)
	require.True(t, ok)
	assert.True(t, perms.Contains(things.Read))

	th, m = mutate(t, r, th, 3, registry.DeleteACLEntry{Base: v1Base(), Subject: "user:bob"})
	assert.Equal(t, registry.ACLEntryDeleted, m.Event.Kind)
	_, ok = th.AclEntry("user:bob")
	assert.False(t, ok)
}

func TestDowngradingLastPrivilegedSubject(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	f := failure(t, dispatch(r, th, 2, registry.ModifyACLEntry{
		Base:        v1Base(),
		Subject:     "user:alice",
		Permissions: things.Permissions{things.Read},
	}))

	assert.True(t, errors.Contains(f.Err, registry.ErrInvalid))
}

func TestDeletingLastPrivilegedSubject(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{
		"user:alice": things.MinRequiredPermissions,
		"user:bob":   {things.Read},
	})

	f := failure(t, dispatch(r, th, 2, registry.DeleteACLEntry{Base: v1Base(), Subject: "user:alice"}))
	assert.True(t, errors.Contains(f.Err, registry.ErrInvalid))

	// Deleting a non-privileged subject is fine while alice stays.
	_, m := mutate(t, r, th, 2, registry.DeleteACLEntry{Base: v1Base(), Subject: "user:bob"})
	assert.Equal(t, registry.ACLEntryDeleted, m.Event.Kind)
}

func TestDeleteMissingACLEntry(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	f := failure(t, dispatch(r, th, 2, registry.DeleteACLEntry{Base: v1Base(), Subject: "user:ghost"}))
	assert.True(t, errors.Contains(f.Err, registry.ErrNotAccessible))
}
