// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/absmach/registry/host"
	"github.com/absmach/registry/registry"
)

var _ host.Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    host.Service
}

// Logging adds logging facilities to the service.
func Logging(logger *slog.Logger, svc host.Service) host.Service {
	return &loggingMiddleware{logger, svc}
}

func (lm *loggingMiddleware) Handle(ctx context.Context, cmd registry.Command) (response registry.Response, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.String("kind", string(cmd.Kind())),
			slog.String("thing_id", cmd.Target()),
		}
		if id := cmd.Headers().CorrelationID; id != "" {
			args = append(args, slog.String("correlation_id", id))
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Handle command failed", args...)
			return
		}
		lm.logger.Info("Handle command completed successfully", args...)
	}(time.Now())

	return lm.svc.Handle(ctx, cmd)
}
