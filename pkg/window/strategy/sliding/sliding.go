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

// Package sliding implements sliding windows. Sliding windows are defined by
// a static window size and a fixed slide, the duration by which the window
// boundaries move. An event belongs to every window whose range contains it,
// ceil(size/slide) windows in the general case.
package sliding

import (
	"fmt"
	"time"

	"github.com/orielstream/oriel/pkg/window"
)

// Sliding assigns each event to all overlapping panes.
type Sliding struct {
	// Length is the duration of the window.
	Length time.Duration
	// Slide is the offset between successive windows.
	Slide time.Duration
}

var _ window.Assigner = (*Sliding)(nil)

// NewSliding returns a sliding window assigner. The slide must not exceed
// the window length, otherwise events between panes would be dropped.
func NewSliding(length time.Duration, slide time.Duration) (*Sliding, error) {
	if length <= 0 {
		return nil, fmt.Errorf("sliding window size must be positive, got %v", length)
	}
	if slide <= 0 {
		return nil, fmt.Errorf("slide interval must be positive, got %v", slide)
	}
	if slide > length {
		return nil, fmt.Errorf("slide interval %v must not exceed window size %v", slide, length)
	}
	return &Sliding{Length: length, Slide: slide}, nil
}

func (s *Sliding) Kind() window.Kind {
	return window.Sliding
}

// AssignWindows assigns all windows with start = n*slide such that
// start <= eventTime < start+size. Windows are returned in ascending start
// time order.
func (s *Sliding) AssignWindows(key string, eventTime time.Time) []window.Assignment {
	assignments := make([]window.Assignment, 0, int(s.Length/s.Slide)+1)

	// latest window containing the event; walk backwards from there until the
	// window no longer covers the event time.
	for start := eventTime.Truncate(s.Slide); start.After(eventTime.Add(-s.Length)); start = start.Add(-s.Slide) {
		assignments = append(assignments, window.Assignment{
			Window: window.ID{Key: key, Start: start, End: start.Add(s.Length)},
			Op:     window.OpAssign,
		})
	}

	// reverse to ascending start time
	for i, j := 0, len(assignments)-1; i < j; i, j = i+1, j-1 {
		assignments[i], assignments[j] = assignments[j], assignments[i]
	}
	return assignments
}
