// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"context"
	"sync"

	"github.com/absmach/registry/events"
)

type publisherMock struct {
	mu        sync.Mutex
	published []map[string]interface{}
}

var _ events.Publisher = (*publisherMock)(nil)

// Publisher records published events for inspection in tests.
type Publisher interface {
	events.Publisher

	// Published returns the encoded events in publish order.
	Published() []map[string]interface{}
}

// NewPublisher creates an in-memory publisher mock.
func NewPublisher() Publisher {
	return &publisherMock{}
}

func (pm *publisherMock) Publish(_ context.Context, event events.Event) error {
	values, err := event.Encode()
	if err != nil {
		return err
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.published = append(pm.published, values)

	return nil
}

func (pm *publisherMock) Close() error {
	return nil
}

func (pm *publisherMock) Published() []map[string]interface{} {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return append([]map[string]interface{}(nil), pm.published...)
}
