// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/absmach/registry/pkg/uuid"
	"github.com/absmach/registry/registry"
	"github.com/absmach/registry/things"
	"github.com/stretchr/testify/require"
)

const thingID = "thing:1"

var (
	discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	fixedTime     = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
)

func newRegistry() *registry.Registry {
	return registry.New(testLimits(), uuid.NewMock(), registry.WithClock(func() time.Time { return fixedTime }))
}

func testLimits() registry.Limits {
	return registry.Limits{MaxSize: 100 * 1024, FieldOverhead: 16}
}

func dispatch(r *registry.Registry, th *things.Thing, nextRevision uint64, cmd registry.Command) registry.Result {
	return r.Dispatch(context.Background(), registry.Context{ThingID: cmd.Target(), Logger: discardLogger}, th, nextRevision, cmd)
}

// mutate dispatches the command, requires a Mutation result and returns the
// state after applying its event.
func mutate(t *testing.T, r *registry.Registry, th *things.Thing, nextRevision uint64, cmd registry.Command) (*things.Thing, registry.Mutation) {
	t.Helper()

	res := dispatch(r, th, nextRevision, cmd)
	m, ok := res.(registry.Mutation)
	require.True(t, ok, "expected mutation, got %T: %+v", res, res)

	next, err := registry.ReplayEvent(th, m.Event)
	require.NoError(t, err)

	return next, m
}

// liveThing creates a fresh v2 thing through the registry and returns its
// state at revision 1.
func liveThing(t *testing.T, r *registry.Registry) *things.Thing {
	t.Helper()

	cmd := registry.CreateThing{
		Base: registry.NewBase(thingID, registry.Headers{}),
		Thing: things.Thing{}.WithAttributes(map[string]any{
			"manufacturer": "acme",
			"serial":       "42",
		}),
	}
	th, _ := mutate(t, r, nil, 1, cmd)

	return th
}

// liveV1Thing creates a fresh v1 thing with the given ACL.
func liveV1Thing(t *testing.T, r *registry.Registry, acl things.ACL) *things.Thing {
	t.Helper()

	cmd := registry.CreateThing{
		Base:  registry.NewBase(thingID, registry.Headers{Version: things.V1}),
		Thing: things.Thing{ACL: acl},
	}
	th, _ := mutate(t, r, nil, 1, cmd)

	return th
}

// withFeature extends the thing with a lamp feature through the registry.
func withFeature(t *testing.T, r *registry.Registry, th *things.Thing, id string) *things.Thing {
	t.Helper()

	cmd := registry.ModifyFeature{
		Base:      registry.NewBase(thingID, registry.Headers{}),
		FeatureID: id,
		Feature: things.Feature{
			Definition: []string{"org.example:lamp:1"},
			Properties: map[string]any{"on": true, "color": map[string]any{"r": float64(255)}},
		},
	}
	next, _ := mutate(t, r, th, th.Revision+1, cmd)

	return next
}

func failure(t *testing.T, res registry.Result) registry.Failure {
	t.Helper()

	f, ok := res.(registry.Failure)
	require.True(t, ok, "expected failure, got %T: %+v", res, res)

	return f
}

func query(t *testing.T, res registry.Result) registry.Query {
	t.Helper()

	q, ok := res.(registry.Query)
	require.True(t, ok, "expected query, got %T: %+v", res, res)

	return q
}
