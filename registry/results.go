// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"

	"github.com/absmach/registry/pkg/errors"
	"github.com/absmach/registry/things"
)

// Status describes the outcome carried by a response.
type Status string

const (
	StatusCreated  Status = "created"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
	StatusOK       Status = "ok"
)

// Response is the caller-visible outcome of a command.
type Response struct {
	Status        Status
	Value         any
	ETag          things.EntityTag
	CorrelationID string
}

// Applier is the set of host callbacks a Result needs to take effect. The
// host owns the authoritative snapshot and the revision counter; the
// callbacks are invoked sequentially within the entity's single-writer loop.
type Applier interface {
	// Persist durably records the event and invokes onSuccess only after
	// successful persistence.
	Persist(ctx context.Context, event Event, onSuccess func(Event)) error

	// Respond delivers the response to the caller.
	Respond(response Response)

	// Fail delivers the error to the caller.
	Fail(err error)

	// BecomeCreated transitions the entity lifecycle to active.
	BecomeCreated()

	// BecomeDeleted transitions the entity lifecycle to deleted.
	BecomeDeleted()
}

// Result describes the effect of a dispatched command: persist-then-respond,
// respond-only, fail, or nothing.
type Result interface {
	// Apply performs the result's side effects through the host callbacks.
	Apply(ctx context.Context, applier Applier)
}

// Mutation persists an event and responds only after successful persistence.
type Mutation struct {
	Event         Event
	Response      Response
	BecomeCreated bool
	BecomeDeleted bool
}

// Apply persists the event, then responds and performs the lifecycle
// transition. A persistence failure never triggers the response.
func (m Mutation) Apply(ctx context.Context, applier Applier) {
	err := applier.Persist(ctx, m.Event, func(Event) {
		applier.Respond(m.Response)
		if m.BecomeCreated {
			applier.BecomeCreated()
		}
		if m.BecomeDeleted {
			applier.BecomeDeleted()
		}
	})
	if err != nil {
		applier.Fail(errors.Wrap(errors.ErrPersistEvent, err))
	}
}

// Query responds directly without persistence.
type Query struct {
	Response Response
}

// Apply delivers the response.
func (q Query) Apply(_ context.Context, applier Applier) {
	applier.Respond(q.Response)
}

// Failure delivers an error to the caller. No persistence, no state change.
type Failure struct {
	Err error
	// ETag echoes the current entity tag on precondition failures.
	ETag things.EntityTag
}

// Apply delivers the error.
func (f Failure) Apply(_ context.Context, applier Applier) {
	applier.Fail(f.Err)
}

// Empty is produced when a command is silently not applicable: no response,
// no persistence.
type Empty struct{}

// Apply does nothing.
func (Empty) Apply(context.Context, Applier) {}

// Deferred represents a genuinely asynchronous sub-operation. The entity
// blocks on the future before handling further commands, preserving
// per-entity ordering.
type Deferred struct {
	Future <-chan Result
}

// Apply waits for the future and applies whatever it resolves to.
func (d Deferred) Apply(ctx context.Context, applier Applier) {
	select {
	case <-ctx.Done():
		applier.Fail(ctx.Err())
	case res, ok := <-d.Future:
		if !ok {
			applier.Fail(ErrUnhandled)
			return
		}
		res.Apply(ctx, applier)
	}
}
