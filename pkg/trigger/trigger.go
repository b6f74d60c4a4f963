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

// Package trigger defines the firing policy contract evaluated by the window
// engine on every element arrival and on every processing-time tick, plus
// the built-in policies and the Or/And composites.
package trigger

import (
	"time"

	"github.com/orielstream/oriel/pkg/event"
)

// Result is the outcome of a trigger evaluation.
type Result int

const (
	// Continue keeps buffering without emitting.
	Continue Result = iota
	// Fire emits the window's current contents and keeps the window open.
	Fire
	// FireAndPurge emits and closes the window.
	FireAndPurge
)

func (r Result) String() string {
	switch r {
	case Continue:
		return "Continue"
	case Fire:
		return "Fire"
	case FireAndPurge:
		return "FireAndPurge"
	default:
		return "Unknown"
	}
}

// Merge returns the stronger of the two results,
// FireAndPurge > Fire > Continue.
func Merge(a, b Result) Result {
	if b > a {
		return b
	}
	return a
}

// Trigger decides when a window emits its current contents. Implementations
// keep any scratch state in the Context so it survives restarts along with
// the window. Callback errors abort the operation for the owning window and
// are surfaced to the Ingest/Tick caller.
type Trigger interface {
	// OnElement is evaluated for every element routed into the window.
	OnElement(tc *Context, e event.Event, start, end time.Time) (Result, error)
	// OnProcessingTime is evaluated on every processing-time tick while the
	// window is open.
	OnProcessingTime(tc *Context, now time.Time, start, end time.Time) (Result, error)
}
