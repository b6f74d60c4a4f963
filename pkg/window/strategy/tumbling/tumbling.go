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

// Package tumbling implements tumbling windows. Tumbling windows are defined
// by a static window size, e.g. minutely windows or hourly windows; they are
// aligned to the epoch and never overlap, so every event belongs to exactly
// one window.
package tumbling

import (
	"fmt"
	"time"

	"github.com/orielstream/oriel/pkg/window"
)

// Tumbling assigns each event to the single aligned window containing it.
type Tumbling struct {
	// Length is the temporal length of the window.
	Length time.Duration
}

var _ window.Assigner = (*Tumbling)(nil)

// NewTumbling returns a tumbling window assigner.
func NewTumbling(length time.Duration) (*Tumbling, error) {
	if length <= 0 {
		return nil, fmt.Errorf("tumbling window size must be positive, got %v", length)
	}
	return &Tumbling{Length: length}, nil
}

func (t *Tumbling) Kind() window.Kind {
	return window.Tumbling
}

// AssignWindows assigns a window for the given event time.
// Assignment follows a left inclusive and right exclusive principle. Since we
// use truncate here, any element on the boundary falls into the window to the
// right of the boundary.
func (t *Tumbling) AssignWindows(key string, eventTime time.Time) []window.Assignment {
	start := eventTime.Truncate(t.Length)
	return []window.Assignment{{
		Window: window.ID{Key: key, Start: start, End: start.Add(t.Length)},
		Op:     window.OpAssign,
	}}
}
