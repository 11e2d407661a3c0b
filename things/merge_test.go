// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package things_test

import (
	"testing"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeFixture() things.Thing {
	return things.Thing{
		ID:            "thing:1",
		PolicyID:      "policy:1",
		SchemaVersion: things.V2,
		Lifecycle:     things.Active,
		Revision:      7,
	}.WithAttributes(map[string]any{
		"manufacturer": "acme",
		"serial":       "42",
	})
}

func TestMergePatchNullRemoves(t *testing.T) {
	th := mergeFixture()

	merged, err := th.MergePatch("", []byte(`{"attributes":{"serial":null,"batch":"b7"}}`))
	require.NoError(t, err)

	_, err = merged.Attribute("/serial")
	assert.True(t, errors.Contains(err, errors.ErrNotFound), "null must remove the path")
	val, err := merged.Attribute("/batch")
	require.NoError(t, err)
	assert.Equal(t, "b7", val)
	val, err = merged.Attribute("/manufacturer")
	require.NoError(t, err)
	assert.Equal(t, "acme", val, "untouched siblings must survive")
}

func TestMergePatchAnchoredPointer(t *testing.T) {
	th := mergeFixture()

	merged, err := th.MergePatch("/attributes", []byte(`{"batch":"b7"}`))
	require.NoError(t, err)

	val, err := merged.Attribute("/batch")
	require.NoError(t, err)
	assert.Equal(t, "b7", val)
	val, err = merged.Attribute("/manufacturer")
	require.NoError(t, err)
	assert.Equal(t, "acme", val)
}

func TestMergePatchIdempotent(t *testing.T) {
	th := mergeFixture()
	patch := []byte(`{"attributes":{"serial":null,"batch":"b7"}}`)

	once, err := th.MergePatch("", patch)
	require.NoError(t, err)
	twice, err := once.MergePatch("", patch)
	require.NoError(t, err)

	assert.Equal(t, once.ToMap(things.V2), twice.ToMap(things.V2))
}

func TestMergePatchPreservesIdentity(t *testing.T) {
	th := mergeFixture()

	merged, err := th.MergePatch("", []byte(`{"thingId":"thing:other","attributes":{"batch":"b7"}}`))
	require.NoError(t, err)

	assert.Equal(t, "thing:1", merged.ID, "identity is not patchable")
	assert.Equal(t, uint64(7), merged.Revision)
	assert.Equal(t, things.Active, merged.Lifecycle)
	assert.Equal(t, things.V2, merged.SchemaVersion)
}

func TestMergePatchKeepsPolicyWhenPatchedOut(t *testing.T) {
	th := mergeFixture()

	merged, err := th.MergePatch("", []byte(`{"policyId":null}`))
	require.NoError(t, err)

	assert.Equal(t, "policy:1", merged.PolicyID)
}

func TestMergePatchInvalidJSON(t *testing.T) {
	th := mergeFixture()

	_, err := th.MergePatch("", []byte(`{"attributes":`))
	assert.True(t, errors.Contains(err, things.ErrMerge))
}
