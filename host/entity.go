// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"log/slog"

	"github.com/absmach/registry/events"
	"github.com/absmach/registry/eventstore"
	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/registry"
	"github.com/absmach/registry/things"
)

type outcome struct {
	response registry.Response
	err      error
}

type envelope struct {
	ctx  context.Context
	cmd  registry.Command
	resp chan outcome
}

// entity is the single-writer loop of one thing. All state access happens
// inside run, so no locking is needed.
type entity struct {
	id         string
	mailbox    chan envelope
	dispatcher registry.Dispatcher
	events     eventstore.EventRepository
	snapshots  eventstore.SnapshotRepository
	publisher  events.Publisher
	logger     *slog.Logger

	th        *things.Thing
	revision  uint64
	recovered bool
}

func newEntity(id string, mailboxSize int, dispatcher registry.Dispatcher, evs eventstore.EventRepository, snaps eventstore.SnapshotRepository, publisher events.Publisher, logger *slog.Logger) *entity {
	return &entity{
		id:         id,
		mailbox:    make(chan envelope, mailboxSize),
		dispatcher: dispatcher,
		events:     evs,
		snapshots:  snaps,
		publisher:  publisher,
		logger:     logger.With(slog.String("thing_id", id)),
	}
}

func (e *entity) run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case env := <-e.mailbox:
			e.process(env)
		}
	}
}

func (e *entity) process(env envelope) {
	if !e.recovered {
		if err := e.recover(env.ctx); err != nil {
			env.resp <- outcome{err: err}
			return
		}
		e.recovered = true
	}

	applier := &entityApplier{entity: e, env: env}
	result := e.dispatcher.Dispatch(env.ctx, registry.Context{ThingID: e.id, Logger: e.logger}, e.th, e.revision+1, env.cmd)
	result.Apply(env.ctx, applier)

	// A silently inapplicable command still closes the caller's wait. The
	// drop is legitimate, so it is not reported as a contract violation.
	if !applier.delivered {
		env.resp <- outcome{err: registry.ErrNotApplicable}
	}
}

// recover rebuilds the in-memory state from the latest snapshot and the
// event log tail after it.
func (e *entity) recover(ctx context.Context) error {
	var th *things.Thing
	snapshot, err := e.snapshots.RetrieveByID(ctx, e.id)
	switch {
	case err == nil:
		th = &snapshot
	case errors.Contains(err, errors.ErrNotFound):
	default:
		return err
	}

	var fromRevision uint64
	if th != nil {
		fromRevision = th.Revision
	}

	tail, err := e.events.RetrieveSince(ctx, e.id, fromRevision)
	if err != nil {
		return err
	}
	for _, event := range tail {
		next, err := registry.ReplayEvent(th, event)
		if err != nil {
			return err
		}
		th = next
	}

	e.th = th
	if th != nil {
		e.revision = th.Revision
	}

	return nil
}

// entityApplier applies one result within the entity loop.
type entityApplier struct {
	entity    *entity
	env       envelope
	delivered bool
}

var _ registry.Applier = (*entityApplier)(nil)

func (a *entityApplier) Persist(ctx context.Context, event registry.Event, onSuccess func(registry.Event)) error {
	e := a.entity

	if err := e.events.Save(ctx, event); err != nil {
		return err
	}

	next, err := registry.ReplayEvent(e.th, event)
	if err != nil {
		// The event is durable, only the in-memory view is stale; force a
		// replay on the next command instead of serving from it.
		e.logger.Error("failed to apply persisted event", slog.Any("error", err))
		e.recovered = false
	} else {
		e.th = next
	}
	e.revision = event.Revision

	if e.th != nil {
		if err := e.snapshots.Save(ctx, *e.th); err != nil {
			e.logger.Warn("failed to save snapshot", slog.Any("error", err))
		}
	}

	if e.publisher != nil {
		if err := e.publisher.Publish(ctx, event); err != nil {
			e.logger.Warn("failed to publish event", slog.Any("error", errors.Wrap(errors.ErrPublishEvent, err)))
		}
	}

	onSuccess(event)

	return nil
}

func (a *entityApplier) Respond(response registry.Response) {
	a.deliver(outcome{response: response})
}

func (a *entityApplier) Fail(err error) {
	a.deliver(outcome{err: err})
}

func (a *entityApplier) BecomeCreated() {
	a.entity.logger.Debug("entity became live")
}

func (a *entityApplier) BecomeDeleted() {
	a.entity.logger.Debug("entity became deleted")
}

func (a *entityApplier) deliver(out outcome) {
	if a.delivered {
		return
	}
	a.delivered = true
	a.env.resp <- out
}
