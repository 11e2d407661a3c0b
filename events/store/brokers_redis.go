// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build !nats
// +build !nats

package store

import (
	"github.com/absmach/registry/events"
	"github.com/absmach/registry/events/redis"
)

// NewPublisher instantiates the broker the binary was built for.
func NewPublisher(url, stream string) (events.Publisher, error) {
	return redis.NewPublisher(url, stream)
}
