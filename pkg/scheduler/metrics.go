// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus instruments the scheduler exposes.
// Structure (a `sync.Once`-guarded init, one package-level instance,
// `MustRegister` called once) is grounded directly on the teacher's
// metricsIngestion (pkg/ingestion/metrics.go), retargeted from
// ingestion pipeline events to pipeline-step scheduling events.
type metrics struct {
	once sync.Once

	stepsRun     prometheus.Counter
	stepsSkipped prometheus.Counter
	stepsFailed  prometheus.Counter

	diffSuperficial prometheus.Counter
	diffThorough    prometheus.Counter

	stepDuration prometheus.Histogram
	runDuration  prometheus.Histogram
}

var schedMetrics metrics

func (m *metrics) init() {
	m.once.Do(func() {
		m.stepsRun = prometheus.NewCounter(prometheus.CounterOpts{Name: "xvc_scheduler_steps_run_total", Help: "Pipeline steps that executed their command."})
		m.stepsSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "xvc_scheduler_steps_skipped_total", Help: "Pipeline steps skipped because no dependency changed."})
		m.stepsFailed = prometheus.NewCounter(prometheus.CounterOpts{Name: "xvc_scheduler_steps_failed_total", Help: "Pipeline steps whose dependency check errored or whose command failed."})
		m.diffSuperficial = prometheus.NewCounter(prometheus.CounterOpts{Name: "xvc_scheduler_diff_superficial_total", Help: "Superficial dependency comparisons performed."})
		m.diffThorough = prometheus.NewCounter(prometheus.CounterOpts{Name: "xvc_scheduler_diff_thorough_total", Help: "Thorough dependency comparisons performed."})
		m.stepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "xvc_scheduler_step_duration_seconds", Help: "Wall time of an individual step's command."})
		m.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "xvc_scheduler_run_duration_seconds", Help: "Wall time of an entire pipeline run."})

		prometheus.MustRegister(
			m.stepsRun, m.stepsSkipped, m.stepsFailed,
			m.diffSuperficial, m.diffThorough,
			m.stepDuration, m.runDuration,
		)
	})
}
