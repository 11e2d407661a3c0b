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

// currentThingTag reads the thing-level entity tag through a retrieve.
func currentThingTag(t *testing.T, r *registry.Registry, th *things.Thing) things.EntityTag {
	t.Helper()

	q := query(t, dispatch(r, th, th.Revision+1, registry.RetrieveThing{Base: registry.NewBase(thingID, registry.Headers{})}))
	require.False(t, q.Response.ETag.Empty())

	return q.Response.ETag
}

func TestIfMatch(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	tag := currentThingTag(t, r, th)

	t.Run("matching tag proceeds", func(t *testing.T) {
		cmd := registry.ModifyDefinition{
			Base:       registry.NewBase(thingID, registry.Headers{IfMatch: []string{tag.String()}}),
			Definition: "org.example:lamp:1",
		}
		_, ok := dispatch(r, th, 2, cmd).(registry.Mutation)
		assert.True(t, ok)
	})

	t.Run("wildcard proceeds", func(t *testing.T) {
		cmd := registry.ModifyDefinition{
			Base:       registry.NewBase(thingID, registry.Headers{IfMatch: []string{things.AnyTag}}),
			Definition: "org.example:lamp:1",
		}
		_, ok := dispatch(r, th, 2, cmd).(registry.Mutation)
		assert.True(t, ok)
	})

	t.Run("stale tag fails and echoes the current tag", func(t *testing.T) {
		cmd := registry.ModifyDefinition{
			Base:       registry.NewBase(thingID, registry.Headers{IfMatch: []string{`"deadbeef"`}}),
			Definition: "org.example:lamp:1",
		}
		f := failure(t, dispatch(r, th, 2, cmd))
		assert.True(t, errors.Contains(f.Err, registry.ErrPreconditionFailed))
		assert.Equal(t, tag, f.ETag)
	})
}

func TestIfNoneMatch(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	tag := currentThingTag(t, r, th)

	t.Run("matching tag on a query yields not modified", func(t *testing.T) {
		cmd := registry.RetrieveThing{
			Base: registry.NewBase(thingID, registry.Headers{IfNoneMatch: []string{tag.String()}}),
		}
		f := failure(t, dispatch(r, th, 2, cmd))
		assert.True(t, errors.Contains(f.Err, registry.ErrPreconditionNotModified))
	})

	t.Run("matching tag on a mutation fails the precondition", func(t *testing.T) {
		cmd := registry.ModifyDefinition{
			Base:       registry.NewBase(thingID, registry.Headers{IfNoneMatch: []string{tag.String()}}),
			Definition: "org.example:lamp:1",
		}
		f := failure(t, dispatch(r, th, 2, cmd))
		assert.True(t, errors.Contains(f.Err, registry.ErrPreconditionFailed))
	})

	t.Run("non-matching tag proceeds", func(t *testing.T) {
		cmd := registry.RetrieveThing{
			Base: registry.NewBase(thingID, registry.Headers{IfNoneMatch: []string{`"deadbeef"`}}),
		}
		_, ok := dispatch(r, th, 2, cmd).(registry.Query)
		assert.True(t, ok)
	})
}

func TestPreconditionsOnAbsentSubResource(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	t.Run("conditional retrieve of a missing resource reports not found", func(t *testing.T) {
		cmd := registry.RetrieveDefinition{
			Base: registry.NewBase(thingID, registry.Headers{IfMatch: []string{things.AnyTag}}),
		}
		f := failure(t, dispatch(r, th, 2, cmd))
		assert.True(t, errors.Contains(f.Err, registry.ErrNotAccessible), "missing resource wins over the precondition")
	})

	t.Run("conditional delete of a missing resource reports not found", func(t *testing.T) {
		cmd := registry.DeleteDefinition{
			Base: registry.NewBase(thingID, registry.Headers{IfMatch: []string{things.AnyTag}}),
		}
		f := failure(t, dispatch(r, th, 2, cmd))
		assert.True(t, errors.Contains(f.Err, registry.ErrNotAccessible))
	})

	t.Run("if-none-match wildcard create of a missing resource proceeds", func(t *testing.T) {
		cmd := registry.ModifyDefinition{
			Base:       registry.NewBase(thingID, registry.Headers{IfNoneMatch: []string{things.AnyTag}}),
			Definition: "org.example:lamp:1",
		}
		m, ok := dispatch(r, th, 2, cmd).(registry.Mutation)
		require.True(t, ok)
		assert.Equal(t, registry.StatusCreated, m.Response.Status)
	})

	t.Run("if-match wildcard modify of a missing resource fails", func(t *testing.T) {
		cmd := registry.ModifyDefinition{
			Base:       registry.NewBase(thingID, registry.Headers{IfMatch: []string{things.AnyTag}}),
			Definition: "org.example:lamp:1",
		}
		f := failure(t, dispatch(r, th, 2, cmd))
		assert.True(t, errors.Contains(f.Err, registry.ErrPreconditionFailed))
	})
}

func TestSubResourceTagScope(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	attrQ := query(t, dispatch(r, th, 2, registry.RetrieveAttributes{Base: registry.NewBase(thingID, registry.Headers{})}))
	thingTag := currentThingTag(t, r, th)

	assert.NotEqual(t, thingTag, attrQ.Response.ETag, "sub-resource tags are scoped to the sub-resource")

	attrTag, err := things.TagOf(th.Attributes)
	require.NoError(t, err)
	assert.Equal(t, attrTag, attrQ.Response.ETag)
}

func TestEveryMutationChangesThingTag(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	before := currentThingTag(t, r, th)

	th, m := mutate(t, r, th, 2, registry.ModifyAttribute{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "/serial",
		Value:   "43",
	})
	assert.False(t, m.Response.ETag.Empty())

	after := currentThingTag(t, r, th)
	assert.NotEqual(t, before, after)
}
