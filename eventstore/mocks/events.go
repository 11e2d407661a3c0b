// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/absmach/registry/eventstore"
	"github.com/absmach/registry/registry"
)

type eventRepositoryMock struct {
	mu     sync.Mutex
	events map[string][]registry.Event
	// failNext makes the next Save fail with the given error.
	failNext error
}

var _ eventstore.EventRepository = (*eventRepositoryMock)(nil)

// NewEventRepository creates an in-memory event log mock.
func NewEventRepository() eventstore.EventRepository {
	return &eventRepositoryMock{
		events: make(map[string][]registry.Event),
	}
}

// NewFailingEventRepository creates an in-memory event log mock whose first
// Save fails with the given error.
func NewFailingEventRepository(err error) eventstore.EventRepository {
	return &eventRepositoryMock{
		events:   make(map[string][]registry.Event),
		failNext: err,
	}
}

func (erm *eventRepositoryMock) Save(_ context.Context, event registry.Event) error {
	erm.mu.Lock()
	defer erm.mu.Unlock()

	if erm.failNext != nil {
		err := erm.failNext
		erm.failNext = nil
		return err
	}

	erm.events[event.ThingID] = append(erm.events[event.ThingID], event)

	return nil
}

func (erm *eventRepositoryMock) RetrieveSince(_ context.Context, thingID string, fromRevision uint64) ([]registry.Event, error) {
	erm.mu.Lock()
	defer erm.mu.Unlock()

	var events []registry.Event
	for _, event := range erm.events[thingID] {
		if event.Revision > fromRevision {
			events = append(events, event)
		}
	}

	return events, nil
}

func (erm *eventRepositoryMock) Count(_ context.Context, thingID string) (uint64, error) {
	erm.mu.Lock()
	defer erm.mu.Unlock()

	log := erm.events[thingID]
	if len(log) == 0 {
		return 0, nil
	}

	return log[len(log)-1].Revision, nil
}
