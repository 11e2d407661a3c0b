// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"

	"github.com/absmach/registry/registry"
	"github.com/absmach/registry/things"
)

// EventRepository is the append-only event log. Events of one thing form a
// strictly ordered revision line.
type EventRepository interface {
	// Save appends the event to the log.
	Save(ctx context.Context, event registry.Event) error

	// RetrieveSince returns the thing's events with a revision greater than
	// fromRevision, in ascending revision order.
	RetrieveSince(ctx context.Context, thingID string, fromRevision uint64) ([]registry.Event, error)

	// Count returns the highest persisted revision of the thing, zero when
	// the thing has no events.
	Count(ctx context.Context, thingID string) (uint64, error)
}

// SnapshotRepository stores point-in-time thing states so entity recovery
// replays only the tail of the event log.
type SnapshotRepository interface {
	// Save upserts the snapshot of the thing.
	Save(ctx context.Context, th things.Thing) error

	// RetrieveByID returns the latest snapshot of the thing.
	RetrieveByID(ctx context.Context, thingID string) (things.Thing, error)
}
