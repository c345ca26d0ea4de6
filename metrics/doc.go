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


// Package metrics exports orchestrator activity as Prometheus metrics.
//
// Monitor implements orchestrator.Monitor. Every collector is labeled by
// component so a dashboard can tell which part of a search UI is busy,
// skipped or failing:
//
//	reg := prometheus.NewRegistry()
//	monitor, err := metrics.NewMonitor(reg, "searchflow")
//	engine, err := orchestrator.New(store, client, builder, orchestrator.WithMonitor(monitor))
//	http.Handle("/metrics", monitor.Handler())
package metrics
