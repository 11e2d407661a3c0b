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

func TestModifyAttributesCreateOrReplace(t *testing.T) {
	r := newRegistry()

	// The fixture thing already has attributes, so the first modify reports
	// a replacement.
	th := liveThing(t, r)
	th, m := mutate(t, r, th, 2, registry.ModifyAttributes{
		Base:       registry.NewBase(thingID, registry.Headers{}),
		Attributes: map[string]any{"serial": "43"},
	})
	assert.Equal(t, registry.AttributesModified, m.Event.Kind)
	assert.Equal(t, registry.StatusModified, m.Response.Status)

	th, _ = mutate(t, r, th, 3, registry.DeleteAttributes{Base: registry.NewBase(thingID, registry.Headers{})})
	assert.Nil(t, th.Attributes)

	_, m = mutate(t, r, th, 4, registry.ModifyAttributes{
		Base:       registry.NewBase(thingID, registry.Headers{}),
		Attributes: map[string]any{"serial": "44"},
	})
	assert.Equal(t, registry.AttributesCreated, m.Event.Kind)
	assert.Equal(t, registry.StatusCreated, m.Response.Status)
}

func TestAttributePointerLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	th, m := mutate(t, r, th, 2, registry.ModifyAttribute{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "/location/latitude",
		Value:   44.8,
	})
	assert.Equal(t, registry.AttributeCreated, m.Event.Kind)
	assert.Equal(t, "/attributes/location/latitude", m.Event.Path)

	val, err := th.Attribute("/location/latitude")
	require.NoError(t, err)
	assert.Equal(t, 44.8, val)

	th, m = mutate(t, r, th, 3, registry.ModifyAttribute{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "/location/latitude",
		Value:   45.0,
	})
	assert.Equal(t, registry.AttributeModified, m.Event.Kind)

	q := query(t, dispatch(r, th, 4, registry.RetrieveAttribute{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "/location/latitude",
	}))
	assert.Equal(t, 45.0, q.Response.Value)

	th, _ = mutate(t, r, th, 4, registry.DeleteAttribute{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "/location/latitude",
	})
	_, err = th.Attribute("/location/latitude")
	assert.True(t, errors.Contains(err, errors.ErrNotFound))
}

func TestDeleteMissingAttribute(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	f := failure(t, dispatch(r, th, 2, registry.DeleteAttribute{
		Base:    registry.NewBase(thingID, registry.Headers{}),
		Pointer: "/missing",
	}))

	assert.True(t, errors.Contains(f.Err, registry.ErrNotAccessible))
}

func TestFeatureLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	th = withFeature(t, r, th, "lamp")
	f, ok := th.Feature("lamp")
	require.True(t, ok)
	assert.Equal(t, true, f.Properties["on"])

	q := query(t, dispatch(r, th, 3, registry.RetrieveFeature{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: "lamp",
	}))
	assert.NotNil(t, q.Response.Value)

	th, m := mutate(t, r, th, 3, registry.DeleteFeature{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: "lamp",
	})
	assert.Equal(t, registry.FeatureDeleted, m.Event.Kind)
	_, ok = th.Feature("lamp")
	assert.False(t, ok)
}

func TestFeatureIDMustBeAddressable(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	// A slash in a feature id would collide with the event path layout and
	// replay against the wrong feature.
	base := registry.NewBase(thingID, registry.Headers{})
	cases := []struct {
		desc string
		cmd  registry.Command
	}{
		{"modify feature with slash id", registry.ModifyFeature{Base: base, FeatureID: "lamp/shade", Feature: things.Feature{Properties: map[string]any{"on": true}}}},
		{"modify feature with empty id", registry.ModifyFeature{Base: base, FeatureID: "", Feature: things.Feature{Properties: map[string]any{"on": true}}}},
		{"modify features with slash id", registry.ModifyFeatures{Base: base, Features: map[string]things.Feature{"lamp/shade": {}}}},
		{"modify thing with slash id", registry.ModifyThing{Base: base, Thing: things.Thing{Features: map[string]things.Feature{"lamp/shade": {}}}}},
		{"merge thing introducing slash id", registry.MergeThing{Base: base, Patch: []byte(`{"features":{"lamp/shade":{"properties":{"on":true}}}}`)}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			f := failure(t, dispatch(r, th, 2, tc.cmd))
			assert.True(t, errors.Contains(f.Err, registry.ErrInvalid))
		})
	}
}

func TestCreateThingWithSlashFeatureID(t *testing.T) {
	r := newRegistry()

	f := failure(t, dispatch(r, nil, 1, registry.CreateThing{
		Base:  registry.NewBase(thingID, registry.Headers{}),
		Thing: things.Thing{Features: map[string]things.Feature{"lamp/shade": {}}},
	}))

	assert.True(t, errors.Contains(f.Err, registry.ErrInvalid))
}

func TestPropertyCommandsRequireFeature(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	base := registry.NewBase(thingID, registry.Headers{})
	cases := []struct {
		desc string
		cmd  registry.Command
	}{
		{"modify properties", registry.ModifyProperties{Base: base, FeatureID: "missing", Properties: map[string]any{"on": true}}},
		{"modify property", registry.ModifyProperty{Base: base, FeatureID: "missing", Pointer: "/on", Value: true}},
		{"retrieve properties", registry.RetrieveProperties{Base: base, FeatureID: "missing"}},
		{"delete desired properties", registry.DeleteDesiredProperties{Base: base, FeatureID: "missing"}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			f := failure(t, dispatch(r, th, 2, tc.cmd))
			assert.True(t, errors.Contains(f.Err, registry.ErrNotAccessible))
		})
	}
}

func TestPropertyPointerLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	th = withFeature(t, r, th, "lamp")

	th, m := mutate(t, r, th, 3, registry.ModifyProperty{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: "lamp",
		Pointer:   "/color/g",
		Value:     float64(128),
	})
	assert.Equal(t, registry.PropertyCreated, m.Event.Kind)
	assert.Equal(t, "/features/lamp/properties/color/g", m.Event.Path)

	f, ok := th.Feature("lamp")
	require.True(t, ok)
	val, err := f.Property("/color/g")
	require.NoError(t, err)
	assert.Equal(t, float64(128), val)

	th, m = mutate(t, r, th, 4, registry.DeleteProperty{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: "lamp",
		Pointer:   "/color/g",
	})
	assert.Equal(t, registry.PropertyDeleted, m.Event.Kind)
	f, _ = th.Feature("lamp")
	_, err = f.Property("/color/g")
	assert.True(t, errors.Contains(err, errors.ErrNotFound))
}

func TestDesiredPropertiesLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	th = withFeature(t, r, th, "lamp")

	th, m := mutate(t, r, th, 3, registry.ModifyDesiredProperties{
		Base:       registry.NewBase(thingID, registry.Headers{}),
		FeatureID:  "lamp",
		Properties: map[string]any{"on": false},
	})
	assert.Equal(t, registry.DesiredPropertiesCreated, m.Event.Kind)

	q := query(t, dispatch(r, th, 4, registry.RetrieveDesiredProperty{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: "lamp",
		Pointer:   "/on",
	}))
	assert.Equal(t, false, q.Response.Value)
}

func TestFeatureDefinitionLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)
	th = withFeature(t, r, th, "lamp")

	th, m := mutate(t, r, th, 3, registry.ModifyFeatureDefinition{
		Base:       registry.NewBase(thingID, registry.Headers{}),
		FeatureID:  "lamp",
		Definition: []string{"org.example:lamp:2"},
	})
	assert.Equal(t, registry.FeatureDefinitionModified, m.Event.Kind, "the fixture feature already carries a definition")

	th, _ = mutate(t, r, th, 4, registry.DeleteFeatureDefinition{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: "lamp",
	})
	f, _ := th.Feature("lamp")
	assert.Nil(t, f.Definition)
}

func TestThingDefinitionLifecycle(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	th, m := mutate(t, r, th, 2, registry.ModifyDefinition{
		Base:       registry.NewBase(thingID, registry.Headers{}),
		Definition: "org.example:lamp:1",
	})
	assert.Equal(t, registry.DefinitionCreated, m.Event.Kind)

	q := query(t, dispatch(r, th, 3, registry.RetrieveDefinition{Base: registry.NewBase(thingID, registry.Headers{})}))
	assert.Equal(t, "org.example:lamp:1", q.Response.Value)

	th, _ = mutate(t, r, th, 3, registry.DeleteDefinition{Base: registry.NewBase(thingID, registry.Headers{})})
	assert.Empty(t, th.Definition)
}

func TestPolicyIDCommands(t *testing.T) {
	r := newRegistry()
	th := liveThing(t, r)

	th, m := mutate(t, r, th, 2, registry.ModifyPolicyID{
		Base:     registry.NewBase(thingID, registry.Headers{}),
		PolicyID: "policy:2",
	})
	assert.Equal(t, registry.PolicyIDModified, m.Event.Kind, "creation defaults a policy id, so this is a replacement")
	assert.Equal(t, "policy:2", th.PolicyID)

	q := query(t, dispatch(r, th, 3, registry.RetrievePolicyID{Base: registry.NewBase(thingID, registry.Headers{})}))
	assert.Equal(t, "policy:2", q.Response.Value)
}

func TestPolicyIDOnV1NotSupported(t *testing.T) {
	r := newRegistry()
	th := liveV1Thing(t, r, things.ACL{"user:alice": things.MinRequiredPermissions})

	f := failure(t, dispatch(r, th, 2, registry.ModifyPolicyID{
		Base:     registry.NewBase(thingID, registry.Headers{Version: things.V1}),
		PolicyID: "policy:1",
	}))

	assert.True(t, errors.Contains(f.Err, registry.ErrSchemaNotSupported))
}
