// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/poiesic/searchflow/core"
	"github.com/poiesic/searchflow/orchestrator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrRegistryRequired is returned when no registry is supplied.
var ErrRegistryRequired = errors.New("prometheus registry is required")

const (
	modeOneShot = "oneshot"
	modeStream  = "stream"
)

// Monitor records orchestrator activity in Prometheus collectors.
type Monitor struct {
	gatherer prometheus.Gatherer

	dispatched    *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	applied       *prometheus.CounterVec
	took          *prometheus.HistogramVec
	hits          *prometheus.GaugeVec
	stale         *prometheus.CounterVec
	errors        *prometheus.CounterVec
	streamsActive *prometheus.GaugeVec
}

var _ orchestrator.Monitor = (*Monitor)(nil)

// NewMonitor registers the collectors with reg under namespace.
func NewMonitor(reg *prometheus.Registry, namespace string) (*Monitor, error) {
	if reg == nil {
		return nil, ErrRegistryRequired
	}
	factory := promauto.With(reg)

	return &Monitor{
		gatherer: reg,
		dispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_dispatched_total",
				Help:      "Total number of queries dispatched to the search backend",
			},
			[]string{"component", "mode"},
		),
		skipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_skipped_total",
				Help:      "Total number of query executions skipped before dispatch",
			},
			[]string{"component", "reason"},
		),
		applied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "responses_applied_total",
				Help:      "Total number of search responses applied to component state",
			},
			[]string{"component"},
		),
		took: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_took_seconds",
				Help:      "Backend-reported search duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"component"},
		),
		hits: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "response_total_hits",
				Help:      "Total hit count of the last applied response",
			},
			[]string{"component"},
		),
		stale: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_responses_total",
				Help:      "Total number of responses discarded because a newer one was applied",
			},
			[]string{"component"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_errors_total",
				Help:      "Total number of search transport failures",
			},
			[]string{"component"},
		),
		streamsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "streams_active",
				Help:      "Number of live streaming subscriptions",
			},
			[]string{"component"},
		),
	}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Monitor) QueryDispatched(component core.ComponentID, _ core.Body, streaming bool) {
	m.dispatched.WithLabelValues(string(component), modeOneShot).Inc()
	if streaming {
		m.dispatched.WithLabelValues(string(component), modeStream).Inc()
	}
}

func (m *Monitor) QuerySkipped(component core.ComponentID, reason orchestrator.SkipReason) {
	m.skipped.WithLabelValues(string(component), string(reason)).Inc()
}

func (m *Monitor) ResponseApplied(component core.ComponentID, resp *core.SearchResponse) {
	m.applied.WithLabelValues(string(component)).Inc()
	if resp == nil {
		return
	}
	m.hits.WithLabelValues(string(component)).Set(float64(resp.Total))
	if resp.Took > 0 {
		m.took.WithLabelValues(string(component)).Observe(resp.Took.Seconds())
	}
}

func (m *Monitor) StaleResponseDiscarded(component core.ComponentID, _ time.Time) {
	m.stale.WithLabelValues(string(component)).Inc()
}

func (m *Monitor) TransportError(component core.ComponentID, _ error) {
	m.errors.WithLabelValues(string(component)).Inc()
}

func (m *Monitor) StreamOpened(component core.ComponentID) {
	m.streamsActive.WithLabelValues(string(component)).Inc()
}

func (m *Monitor) StreamStopped(component core.ComponentID) {
	m.streamsActive.WithLabelValues(string(component)).Dec()
}
