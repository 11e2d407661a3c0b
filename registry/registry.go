// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/registry/pkg/uuid"
	"github.com/absmach/registry/things"
)

// Context carries the dispatch-scoped collaborators: the target entity id
// and a correlation-scoped logger.
type Context struct {
	ThingID string
	Logger  *slog.Logger
}

// ApplyFunc computes the outcome of a command against the current thing
// snapshot. All strategy cores and their decorators share this shape.
type ApplyFunc func(ctx context.Context, dctx Context, th *things.Thing, nextRevision uint64, cmd Command) Result

// Strategy is the per-command-kind unit: an applicability predicate, the
// behavior when the predicate does not hold, and the business rule itself.
type Strategy struct {
	// Applicable reports whether the strategy applies given the current
	// thing state.
	Applicable func(th *things.Thing, cmd Command) bool
	// Unhandled runs instead of Apply when Applicable is false. Nil means
	// the Empty result.
	Unhandled ApplyFunc
	// Apply executes the business rule and yields the Result.
	Apply ApplyFunc
}

// Dispatcher dispatches commands against thing snapshots.
type Dispatcher interface {
	// Dispatch resolves the strategy for the command's kind, runs the
	// applicability predicate, the conditional-header evaluation and the
	// strategy core, and returns the Result to apply.
	Dispatch(ctx context.Context, dctx Context, th *things.Thing, nextRevision uint64, cmd Command) Result
}

var _ Dispatcher = (*Registry)(nil)

// Registry maps each command kind to exactly one strategy. It is an
// explicitly constructed value with no global state.
type Registry struct {
	limits     Limits
	idp        uuid.IDProvider
	strategies map[Kind]Strategy
	now        func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock overrides the registry's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New instantiates a registry with all built-in strategies registered.
func New(limits Limits, idp uuid.IDProvider, opts ...Option) *Registry {
	r := &Registry{
		limits:     limits,
		idp:        idp,
		strategies: make(map[Kind]Strategy),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.registerThingStrategies()
	r.registerAttributeStrategies()
	r.registerFeatureStrategies()
	r.registerPropertyStrategies()
	r.registerDefinitionStrategies()
	r.registerPolicyStrategies()
	r.registerACLStrategies()

	return r
}

// register binds a command kind to its strategy. Registering a kind twice is
// a programming error.
func (r *Registry) register(kind Kind, s Strategy) {
	if _, ok := r.strategies[kind]; ok {
		panic("registry: duplicate strategy for kind " + string(kind))
	}
	r.strategies[kind] = s
}

// Dispatch implements Dispatcher. An unregistered command kind yields the
// Empty result: some commands are legitimately unhandled by this entity type
// and must not crash it.
func (r *Registry) Dispatch(ctx context.Context, dctx Context, th *things.Thing, nextRevision uint64, cmd Command) Result {
	s, ok := r.strategies[cmd.Kind()]
	if !ok {
		dctx.Logger.Info("no strategy registered for command", slog.String("kind", string(cmd.Kind())))
		return Empty{}
	}

	if !s.Applicable(th, cmd) {
		if s.Unhandled == nil {
			return Empty{}
		}
		return s.Unhandled(ctx, dctx, th, nextRevision, cmd)
	}

	apply := r.withETagAppender(r.withPreconditions(s.Apply))

	return apply(ctx, dctx, th, nextRevision, cmd)
}

// newEvent builds an event for the mutation being produced.
func (r *Registry) newEvent(kind EventKind, cmd Command, revision uint64, path string, value any, th *things.Thing) Event {
	id, err := r.idp.ID()
	if err != nil {
		id = ""
	}

	return Event{
		ID:            id,
		Kind:          kind,
		ThingID:       cmd.Target(),
		Revision:      revision,
		Timestamp:     r.now(),
		CorrelationID: cmd.Headers().CorrelationID,
		Path:          path,
		Value:         value,
		Thing:         th,
	}
}

// liveTarget is the default applicability predicate of update, delete and
// retrieve strategies: a live thing matching the command's target id.
func liveTarget(th *things.Thing, cmd Command) bool {
	return th != nil && th.IsActive() && th.ID == cmd.Target()
}

// notAccessible is the unhandled behavior of update strategies.
func notAccessible(_ context.Context, _ Context, _ *things.Thing, _ uint64, _ Command) Result {
	return Failure{Err: ErrNotAccessible}
}
