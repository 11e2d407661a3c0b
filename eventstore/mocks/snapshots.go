// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/absmach/registry/eventstore"
	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

type snapshotRepositoryMock struct {
	mu        sync.Mutex
	snapshots map[string]things.Thing
}

var _ eventstore.SnapshotRepository = (*snapshotRepositoryMock)(nil)

// NewSnapshotRepository creates an in-memory snapshot store mock.
func NewSnapshotRepository() eventstore.SnapshotRepository {
	return &snapshotRepositoryMock{
		snapshots: make(map[string]things.Thing),
	}
}

func (srm *snapshotRepositoryMock) Save(_ context.Context, th things.Thing) error {
	srm.mu.Lock()
	defer srm.mu.Unlock()

	srm.snapshots[th.ID] = th

	return nil
}

func (srm *snapshotRepositoryMock) RetrieveByID(_ context.Context, thingID string) (things.Thing, error) {
	srm.mu.Lock()
	defer srm.mu.Unlock()

	th, ok := srm.snapshots[thingID]
	if !ok {
		return things.Thing{}, errors.ErrNotFound
	}

	return th, nil
}
