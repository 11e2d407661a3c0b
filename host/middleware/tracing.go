// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"

	"github.com/absmach/registry/host"
	"github.com/absmach/registry/registry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ host.Service = (*tracingMiddleware)(nil)

type tracingMiddleware struct {
	tracer trace.Tracer
	svc    host.Service
}

// Tracing adds a span per handled command.
func Tracing(tracer trace.Tracer, svc host.Service) host.Service {
	return &tracingMiddleware{tracer, svc}
}

func (tm *tracingMiddleware) Handle(ctx context.Context, cmd registry.Command) (registry.Response, error) {
	ctx, span := tm.tracer.Start(ctx, "handle_"+string(cmd.Kind()), trace.WithAttributes(
		attribute.String("thing_id", cmd.Target()),
		attribute.String("correlation_id", cmd.Headers().CorrelationID),
	))
	defer span.End()

	return tm.svc.Handle(ctx, cmd)
}
