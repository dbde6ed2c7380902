package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"csvload/internal/config"
	"csvload/internal/metrics"
	"csvload/internal/metrics/datadog"
)

// metricsBackend is the part of a concrete backend the CLI owns: shutting it
// down (which performs a final flush).
type metricsBackend interface {
	Close() error
}

// Seams for tests.
var (
	newDatadogBackend = func(ctx context.Context, opts datadog.Options) (metricsBackend, error) {
		b, err := datadog.NewBackend(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	setMetricsBackend = func(b any) {
		if b == nil {
			metrics.SetBackend(nil)
			return
		}
		if mb, ok := b.(metrics.Backend); ok {
			metrics.SetBackend(mb)
		}
	}

	logPrintf = log.Printf
)

const datadogFlushEvery = 60 * time.Second

// initMetrics installs the configured metrics backend. The returned cleanup is
// never nil and must be called once the run is over.
//
// "none" (or empty) leaves the no-op backend in place. An unknown name is
// logged and treated as "none".
func initMetrics(ctx context.Context, m config.MetricsConfig) (func(), error) {
	noop := func() {}

	switch name := strings.ToLower(strings.TrimSpace(m.Backend)); name {
	case "", "none":
		return noop, nil

	case "datadog", "dd":
		job := m.Job
		if job == "" {
			job = config.DefaultJob
		}
		tags := datadog.ParseTagsCSV(m.Tags)

		// The final flush in Close must still go out after SIGINT cancels ctx.
		b, err := newDatadogBackend(context.WithoutCancel(ctx), datadog.Options{
			JobName:    job,
			Tags:       tags,
			FlushEvery: datadogFlushEvery,
		})
		if err != nil {
			return noop, fmt.Errorf("datadog: %w", err)
		}
		setMetricsBackend(b)

		return func() {
			if err := b.Close(); err != nil {
				logPrintf("metrics: datadog close error: %v", err)
			}
			setMetricsBackend(nil)
		}, nil

	default:
		logPrintf("metrics: unknown backend %q; metrics disabled (want none|datadog)", m.Backend)
		return noop, nil
	}
}
