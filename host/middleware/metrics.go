// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"time"

	"github.com/absmach/registry/host"
	"github.com/absmach/registry/registry"
	"github.com/go-kit/kit/metrics"
)

var _ host.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     host.Service
}

// Metrics instruments the service by tracking request count and latency.
func Metrics(counter metrics.Counter, latency metrics.Histogram, svc host.Service) host.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) Handle(ctx context.Context, cmd registry.Command) (registry.Response, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", string(cmd.Kind())).Add(1)
		mm.latency.With("method", string(cmd.Kind())).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Handle(ctx, cmd)
}
