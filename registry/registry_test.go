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

// bogusCommand has no registered strategy.
type bogusCommand struct {
	registry.Base
}

func (bogusCommand) Kind() registry.Kind         { return registry.Kind("bogus") }
func (bogusCommand) Category() registry.Category { return registry.CategoryModify }

func TestDispatchUnknownKind(t *testing.T) {
	r := newRegistry()

	res := dispatch(r, nil, 1, bogusCommand{Base: registry.NewBase(thingID, registry.Headers{})})

	_, ok := res.(registry.Empty)
	assert.True(t, ok, "unknown command kind must be silently ignored, got %T", res)
}

func TestCreateThing(t *testing.T) {
	r := newRegistry()

	cmd := registry.CreateThing{
		Base:  registry.NewBase(thingID, registry.Headers{CorrelationID: "corr-1"}),
		Thing: things.Thing{}.WithAttributes(map[string]any{"serial": "42"}),
	}
	res := dispatch(r, nil, 1, cmd)

	m, ok := res.(registry.Mutation)
	require.True(t, ok, "expected mutation, got %T", res)
	assert.True(t, m.BecomeCreated)
	assert.Equal(t, registry.ThingCreated, m.Event.Kind)
	assert.Equal(t, uint64(1), m.Event.Revision)
	assert.Equal(t, "corr-1", m.Event.CorrelationID)
	assert.Equal(t, registry.StatusCreated, m.Response.Status)
	assert.False(t, m.Response.ETag.Empty(), "create must yield an entity tag")

	require.NotNil(t, m.Event.Thing)
	assert.Equal(t, thingID, m.Event.Thing.ID)
	assert.Equal(t, things.Active, m.Event.Thing.Lifecycle)
	assert.Equal(t, things.V2, m.Event.Thing.SchemaVersion)
	assert.Equal(t, thingID, m.Event.Thing.PolicyID, "policy id defaults to the thing id")
	assert.Equal(t, fixedTime, m.Event.Thing.Created)
}

func TestCreateThingConflict(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	res := dispatch(r, th, 2, registry.CreateThing{Base: registry.NewBase(thingID, registry.Headers{})})

	f := failure(t, res)
	assert.True(t, errors.Contains(f.Err, registry.ErrConflict))
}

func TestCreateThingV2RejectsInlineACL(t *testing.T) {
	r := newRegistry()

	cmd := registry.CreateThing{
		Base:  registry.NewBase(thingID, registry.Headers{}),
		Thing: things.Thing{ACL: things.ACL{"user:alice": things.MinRequiredPermissions}},
	}
	res := dispatch(r, nil, 1, cmd)

	f := failure(t, res)
	assert.True(t, errors.Contains(f.Err, registry.ErrACLNotAllowed))
}

func TestCreateThingV1ACLFallback(t *testing.T) {
	cases := []struct {
		desc         string
		acl          things.ACL
		authSubjects []string
		err          error
		granted      string
	}{
		{
			desc:         "absent acl falls back to the first auth subject",
			acl:          nil,
			authSubjects: []string{"user:alice", "user:bob"},
			granted:      "user:alice",
		},
		{
			desc: "absent acl without auth subjects is rejected",
			acl:  nil,
			err:  registry.ErrInvalid,
		},
		{
			desc:         "invalid acl is never repaired",
			acl:          things.ACL{"user:alice": {things.Read}},
			authSubjects: []string{"user:alice"},
			err:          registry.ErrInvalid,
		},
		{
			desc: "valid acl is kept verbatim",
			acl:  things.ACL{"user:bob": things.MinRequiredPermissions},
			authSubjects: []string{
				"user:alice",
			},
			granted: "user:bob",
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			r := newRegistry()
			cmd := registry.CreateThing{
				Base:  registry.NewBase(thingID, registry.Headers{Version: things.V1, AuthSubjects: tc.authSubjects}),
				Thing: things.Thing{ACL: tc.acl},
			}
			res := dispatch(r, nil, 1, cmd)

			if tc.err != nil {
				f := failure(t, res)
				assert.True(t, errors.Contains(f.Err, tc.err), "expected %v, got %v", tc.err, f.Err)
				return
			}

			m, ok := res.(registry.Mutation)
			require.True(t, ok, "expected mutation, got %T", res)
			perms, ok := m.Event.Thing.AclEntry(tc.granted)
			require.True(t, ok)
			assert.True(t, perms.ContainsAll(things.MinRequiredPermissions))
		})
	}
}

func TestDeleteThing(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	res := dispatch(r, th, 2, registry.DeleteThing{Base: registry.NewBase(thingID, registry.Headers{})})

	m, ok := res.(registry.Mutation)
	require.True(t, ok, "expected mutation, got %T", res)
	assert.True(t, m.BecomeDeleted)
	assert.Equal(t, registry.ThingDeleted, m.Event.Kind)
	assert.Equal(t, registry.StatusDeleted, m.Response.Status)
	assert.True(t, m.Response.ETag.Empty(), "deletions carry no entity tag")
}

func TestDeleteThenRecreateContinuesRevisions(t *testing.T) {
	r := newRegistry()

	th := liveThing(t, r)
	assert.Equal(t, uint64(1), th.Revision)

	th, _ = mutate(t, r, th, 2, registry.DeleteThing{Base: registry.NewBase(thingID, registry.Headers{})})
	assert.Equal(t, things.Deleted, th.Lifecycle)

	th, m := mutate(t, r, th, 3, registry.CreateThing{Base: registry.NewBase(thingID, registry.Headers{})})
	assert.Equal(t, uint64(3), th.Revision, "recreation continues the revision line")
	assert.Equal(t, registry.ThingCreated, m.Event.Kind)
	assert.Equal(t, things.Active, th.Lifecycle)
}

func TestCommandsOnDeletedThing(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	th, _ = mutate(t, r, th, 2, registry.DeleteThing{Base: registry.NewBase(thingID, registry.Headers{})})

	base := registry.NewBase(thingID, registry.Headers{})
	cases := []struct {
		desc string
		cmd  registry.Command
	}{
		{"retrieve", registry.RetrieveThing{Base: base}},
		{"modify", registry.ModifyThing{Base: base}},
		{"delete", registry.DeleteThing{Base: base}},
		{"modify attributes", registry.ModifyAttributes{Base: base, Attributes: map[string]any{"a": 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			f := failure(t, dispatch(r, th, 3, tc.cmd))
			assert.True(t, errors.Contains(f.Err, registry.ErrNotAccessible))
		})
	}
}

func TestModifyThingMergesFirstLevel(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	cmd := registry.ModifyThing{
		Base:  registry.NewBase(thingID, registry.Headers{}),
		Thing: things.Thing{Definition: "org.example:lamp:1"},
	}
	th, m := mutate(t, r, th, 2, cmd)

	assert.Equal(t, registry.ThingModified, m.Event.Kind)
	assert.Equal(t, "org.example:lamp:1", th.Definition)
	val, err := th.Attribute("/serial")
	require.NoError(t, err)
	assert.Equal(t, "42", val, "fields absent from the payload keep their value")
	assert.Equal(t, uint64(2), th.Revision)
}

func TestModifyThingSchemaReconciliation(t *testing.T) {
	t.Run("v1 to v2 requires policy id", func(t *testing.T) {
		r := newRegistry()
		th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

		res := dispatch(r, th, 2, registry.ModifyThing{Base: registry.NewBase(thingID, registry.Headers{})})

		f := failure(t, res)
		assert.True(t, errors.Contains(f.Err, registry.ErrPolicyIDMissing))
	})

	t.Run("v1 to v2 migration drops the acl", func(t *testing.T) {
		r := newRegistry()
		th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

		cmd := registry.ModifyThing{
			Base:  registry.NewBase(thingID, registry.Headers{}),
			Thing: things.Thing{PolicyID: "policy:1"},
		}
		th, _ = mutate(t, r, th, 2, cmd)

		assert.Equal(t, things.V2, th.SchemaVersion)
		assert.Equal(t, "policy:1", th.PolicyID)
		assert.Nil(t, th.ACL)
	})

	t.Run("v1 command against v2 thing keeps the policy", func(t *testing.T) {
		r := newRegistry()
		th := liveThing(t, r)

		cmd := registry.ModifyThing{
			Base:  registry.NewBase(thingID, registry.Headers{Version: things.V1}),
			Thing: things.Thing{ACL: things.ACL{"user:alice": things.MinRequiredPermissions}},
		}
		th, _ = mutate(t, r, th, 2, cmd)

		assert.Equal(t, things.V2, th.SchemaVersion)
		assert.Equal(t, thingID, th.PolicyID)
		assert.Nil(t, th.ACL, "inline acl from a v1 command is discarded")
	})

	t.Run("v1 to v1 keeps the existing acl when none is sent", func(t *testing.T) {
		r := newRegistry()
		acl := things.ACL{"user:alice": things.MinRequiredPermissions}
		th := liveV1Thing(t, r, acl)

		cmd := registry.ModifyThing{
			Base:  registry.NewBase(thingID, registry.Headers{Version: things.V1}),
			Thing: things.Thing{Definition: "org.example:lamp:1"},
		}
		th, _ = mutate(t, r, th, 2, cmd)

		assert.Equal(t, things.V1, th.SchemaVersion)
		_, ok := th.AclEntry("user:alice")
		assert.True(t, ok)
	})
}

func TestMergeThing(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	cmd := registry.MergeThing{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "",
		Patch:   []byte(`{"attributes":{"serial":null,"batch":"b7"}}`),
	}
	th, m := mutate(t, r, th, 2, cmd)

	assert.Equal(t, registry.ThingMerged, m.Event.Kind)
	_, err := th.Attribute("/serial")
	assert.True(t, errors.Contains(err, errors.ErrNotFound))
	val, err := th.Attribute("/batch")
	require.NoError(t, err)
	assert.Equal(t, "b7", val)
}

func TestMergeThingV1NotSupported(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	res := dispatch(r, th, 2, registry.MergeThing{
		Base:  registry.NewBase(thingID, registry.Headers{Version: things.V1}),
		Patch: []byte(`{}`),
	})

	f := failure(t, res)
	assert.True(t, errors.Contains(f.Err, registry.ErrSchemaNotSupported))
}

func TestMergeThingMalformedPatch(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	res := dispatch(r, th, 2, registry.MergeThing{
		Base:  registry.NewBase(thingID, registry.Headers{}),
		Patch: []byte(`{"attributes":`),
	})

	f := failure(t, res)
	assert.True(t, errors.Contains(f.Err, registry.ErrInvalid))
}

func TestRetrieveThing(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	res := dispatch(r, th, 2, registry.RetrieveThing{Base: registry.NewBase(thingID, registry.Headers{})})

	q := query(t, res)
	assert.Equal(t, registry.StatusOK, q.Response.Status)
	assert.False(t, q.Response.ETag.Empty())

	doc, ok := q.Response.Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, thingID, doc[things.FieldThingID])
}

func TestRetrieveThingFieldSelection(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	res := dispatch(r, th, 2, registry.RetrieveThing{
		Base: registry.NewBase(thingID, registry.Headers{Fields: []string{things.FieldAttributes}}),
	})

	doc, ok := query(t, res).Response.Value.(map[string]any)
	require.True(t, ok)
	assert.Len(t, doc, 1)
}

func TestRevisionMonotonicity(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	var last uint64 = 1
	commands := []registry.Command{
		registry.ModifyAttribute{Base: registry.NewBase(thingID, registry.Headers{}), Pointer: "/serial", Value: "43"},
		registry.ModifyDefinition{Base: registry.NewBase(thingID, registry.Headers{}), Definition: "org.example:lamp:1"},
		registry.DeleteAttribute{Base: registry.NewBase(thingID, registry.Headers{}), Pointer: "/serial"},
	}
	for _, cmd := range commands {
		var m registry.Mutation
		th, m = mutate(t, r, th, last+1, cmd)
		assert.Equal(t, last+1, m.Event.Revision)
		assert.Equal(t, last+1, th.Revision)
		last++
	}
}
