// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

//go:build nats
// +build nats

package nats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/absmach/registry/events"
	"github.com/nats-io/nats.go"
)

type pubEventStore struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher instantiates a NATS publisher.
func NewPublisher(url, subject string) (events.Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	return &pubEventStore{
		conn:    conn,
		subject: subject,
	}, nil
}

func (es *pubEventStore) Publish(_ context.Context, event events.Event) error {
	values, err := event.Encode()
	if err != nil {
		return err
	}
	values["occurred_at"] = time.Now().UnixNano()

	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	return es.conn.Publish(es.subject, data)
}

func (es *pubEventStore) Close() error {
	es.conn.Close()

	return nil
}
