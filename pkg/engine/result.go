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
	"time"

	"github.com/orielstream/oriel/pkg/event"
)

// StateMode governs what successive emissions of one window contain.
type StateMode int

const (
	// Discarding emits only the elements added since the previous emission
	// and clears the buffer afterwards.
	Discarding StateMode = iota
	// Accumulating emits all elements since the window opened and retains
	// the buffer.
	Accumulating
	// AccumulatingAndRetracting behaves like Accumulating but precedes every
	// re-emission with a Retraction of the previous emission's items.
	AccumulatingAndRetracting
)

func (m StateMode) String() string {
	switch m {
	case Discarding:
		return "Discarding"
	case Accumulating:
		return "Accumulating"
	case AccumulatingAndRetracting:
		return "AccumulatingAndRetracting"
	default:
		return "Unknown"
	}
}

// EmissionType classifies a Result.
type EmissionType int

const (
	// Early results are fired before the window end passed.
	Early EmissionType = iota
	// OnTime results are fired by the normal window-end closure.
	OnTime
	// Late results are fired by a reopened window within allowed lateness.
	Late
	// Retraction results undo the previous emission of the same window.
	Retraction
)

func (t EmissionType) String() string {
	switch t {
	case Early:
		return "Early"
	case OnTime:
		return "OnTime"
	case Late:
		return "Late"
	case Retraction:
		return "Retraction"
	default:
		return "Unknown"
	}
}

// Result is one emission of a window, handed to the downstream consumer.
// Results are immutable after creation. Sequence increases monotonically per
// window instance; a Retraction's items are identical to the most recent
// non-final, non-retraction emission of the same window.
type Result struct {
	Key   string
	Start time.Time
	End   time.Time
	Items []event.Event
	Type  EmissionType
	// IsFinal is true only for the emission produced by the normal
	// window-end closure, never for a later late reopening.
	IsFinal   bool
	EmittedAt time.Time
	Sequence  uint64
}
