/*
Copyright 2024 The Oriel Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelEngine       = "engine"
	labelEmissionType = "type"
)

// activeWindowCount is used to indicate the number of live window instances
var activeWindowCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Subsystem: "window_engine",
	Name:      "active_window_count",
	Help:      "Total number of live window instances",
}, []string{labelEngine})

// emissionsTotal counts emitted window results by emission type
var emissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "window_engine",
	Name:      "emissions_total",
	Help:      "Total number of window results emitted, by emission type",
}, []string{labelEngine, labelEmissionType})

// lateDroppedTotal counts late events dropped beyond allowed lateness
var lateDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "window_engine",
	Name:      "late_events_dropped_total",
	Help:      "Total number of late events dropped",
}, []string{labelEngine})

// resultChannelSize is used to indicate the len of the results channel
var resultChannelSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Subsystem: "window_engine",
	Name:      "result_channel_size",
	Help:      "Results channel size",
}, []string{labelEngine})
