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

// Package window defines window identity, lifecycle and the assigner
// contract shared by the tumbling, sliding and session strategies.
package window

import (
	"fmt"
	"time"
)

// ID uniquely identifies a window instance for a key. Start is inclusive,
// End is exclusive.
type ID struct {
	Key   string    `json:"key"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (id ID) String() string {
	return fmt.Sprintf("%v-%v-%s", id.Start.UnixMilli(), id.End.UnixMilli(), id.Key)
}

// Contains returns true if the event time falls within the window range.
func (id ID) Contains(t time.Time) bool {
	return !t.Before(id.Start) && t.Before(id.End)
}

// Overlaps returns true if the two ranges overlap or touch. Touching counts
// because session candidates that share a boundary must merge.
func (id ID) Overlaps(other ID) bool {
	return !id.Start.After(other.End) && !other.Start.After(id.End)
}

// Union returns the smallest ID covering both windows.
func (id ID) Union(other ID) ID {
	u := id
	if other.Start.Before(u.Start) {
		u.Start = other.Start
	}
	if other.End.After(u.End) {
		u.End = other.End
	}
	return u
}

// Lifecycle is the state of a window instance.
type Lifecycle int

const (
	// Open windows accept elements and are eligible to fire.
	Open Lifecycle = iota
	// Closed windows have emitted their on-time result but are still within
	// allowed lateness.
	Closed
	// Purged windows have released all state; late arrivals are dropped.
	Purged
)

func (s Lifecycle) String() string {
	switch s {
	case Open:
		return "Open"
	case Closed:
		return "Closed"
	case Purged:
		return "Purged"
	default:
		return "Unknown"
	}
}

// Kind is the windowing strategy.
type Kind int

const (
	Tumbling Kind = iota
	Sliding
	Session
)

func (k Kind) String() string {
	switch k {
	case Tumbling:
		return "Tumbling"
	case Sliding:
		return "Sliding"
	case Session:
		return "Session"
	default:
		return "Unknown"
	}
}

// Op describes how an event lands in a window.
type Op int

const (
	// OpAssign routes the event into the window, creating it if needed.
	OpAssign Op = iota
	// OpExpand renames an existing window to a wider range before routing
	// the event into it. Sessions expand when a new event pushes the gap out.
	OpExpand
	// OpMerge folds the Absorbed windows into Window and routes the event
	// into the merged result.
	OpMerge
)

func (o Op) String() string {
	switch o {
	case OpAssign:
		return "Assign"
	case OpExpand:
		return "Expand"
	case OpMerge:
		return "Merge"
	default:
		return "Unknown"
	}
}

// Assignment is a single routing decision produced by an Assigner.
type Assignment struct {
	// Window is the target window after any expand or merge is applied.
	Window ID
	Op     Op
	// Previous is the identity Window had before an expand.
	Previous ID
	// Absorbed are the open windows folded into Window by a merge.
	Absorbed []ID
}

// Assigner maps (key, event time) to the windows the event belongs to.
// Tumbling assigners return exactly one assignment, sliding assigners one per
// overlapping pane, session assigners one assignment that may expand or merge
// existing sessions.
type Assigner interface {
	// Kind returns the windowing strategy.
	Kind() Kind
	// AssignWindows assigns the event time to candidate windows.
	AssignWindows(key string, eventTime time.Time) []Assignment
}

// StatefulAssigner is implemented by assigners that track open windows
// (sessions). The engine feeds lifecycle changes back so the assigner's view
// stays consistent across restarts and purges.
type StatefulAssigner interface {
	Assigner
	// InsertWindow re-registers a window recovered from the state store.
	InsertWindow(id ID)
	// RemoveWindow drops a window once the engine has purged it.
	RemoveWindow(id ID)
}
