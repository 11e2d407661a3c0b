// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package events specifies the stream-publishing API for registry events.
package events

import "context"

// MaxEventStreamLen bounds the length of the published stream.
const MaxEventStreamLen int64 = 1e6

// Event represents an event.
type Event interface {
	// Encode encodes event to map.
	Encode() (map[string]interface{}, error)
}

// Publisher specifies events publishing API.
type Publisher interface {
	// Publish publishes event to stream.
	Publish(ctx context.Context, event Event) error

	// Close gracefully closes event publisher's connection.
	Close() error
}

// Read reads value from event map.
// If value is not of type T, returns default value.
func Read[T any](event map[string]interface{}, key string, def T) T {
	val, ok := event[key].(T)
	if !ok {
		return def
	}

	return val
}
