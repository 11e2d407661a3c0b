// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"log/slog"
	"sync"

	"github.com/absmach/registry/events"
	"github.com/absmach/registry/eventstore"
	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/registry"
)

// Config holds the entity runtime settings.
type Config struct {
	// MailboxSize bounds the number of commands queued per entity.
	MailboxSize int `env:"MAILBOX_SIZE" envDefault:"32"`
}

// Service is the command-facing API of the registry runtime.
type Service interface {
	// Handle routes the command to its entity and waits for the outcome.
	Handle(ctx context.Context, cmd registry.Command) (registry.Response, error)
}

// Host multiplexes commands over per-thing entities. An entity is started on
// the first command addressed to its thing and keeps all its state inside
// one goroutine.
type Host struct {
	cfg        Config
	dispatcher registry.Dispatcher
	events     eventstore.EventRepository
	snapshots  eventstore.SnapshotRepository
	publisher  events.Publisher
	logger     *slog.Logger

	mu       sync.Mutex
	entities map[string]*entity
	done     chan struct{}
	closed   bool
}

var _ Service = (*Host)(nil)

// New instantiates the entity host.
func New(cfg Config, dispatcher registry.Dispatcher, evs eventstore.EventRepository, snaps eventstore.SnapshotRepository, publisher events.Publisher, logger *slog.Logger) *Host {
	return &Host{
		cfg:        cfg,
		dispatcher: dispatcher,
		events:     evs,
		snapshots:  snaps,
		publisher:  publisher,
		logger:     logger,
		entities:   make(map[string]*entity),
		done:       make(chan struct{}),
	}
}

// Handle implements Service. Commands addressed to the same thing are
// processed strictly in arrival order.
func (h *Host) Handle(ctx context.Context, cmd registry.Command) (registry.Response, error) {
	e, err := h.entity(cmd.Target())
	if err != nil {
		return registry.Response{}, err
	}

	env := envelope{ctx: ctx, cmd: cmd, resp: make(chan outcome, 1)}

	select {
	case e.mailbox <- env:
	case <-ctx.Done():
		return registry.Response{}, ctx.Err()
	case <-h.done:
		return registry.Response{}, errors.ErrClosed
	}

	select {
	case out := <-env.resp:
		return out.response, out.err
	case <-ctx.Done():
		return registry.Response{}, ctx.Err()
	}
}

// Close stops all entity loops. In-flight commands may be abandoned.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	close(h.done)

	return nil
}

func (h *Host) entity(id string) (*entity, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, errors.ErrClosed
	}

	e, ok := h.entities[id]
	if !ok {
		e = newEntity(id, h.cfg.MailboxSize, h.dispatcher, h.events, h.snapshots, h.publisher, h.logger)
		h.entities[id] = e
		go e.run(h.done)
	}

	return e, nil
}
