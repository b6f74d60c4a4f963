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

package window

import (
	"sort"
	"sync"
)

// SortedList is a thread safe list of window IDs ordered by start time from
// lowest to highest. The head of the list always holds the earliest window.
type SortedList struct {
	windows []ID
	lock    *sync.RWMutex
}

// NewSortedList returns an empty SortedList.
func NewSortedList() *SortedList {
	return &SortedList{
		windows: make([]ID, 0),
		lock:    &sync.RWMutex{},
	}
}

// Insert inserts a window keeping the list ordered by start time. It is a
// no-op when a window with the same identity is already present.
func (s *SortedList) Insert(w ID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	index := sort.Search(len(s.windows), func(i int) bool {
		return !s.windows[i].Start.Before(w.Start)
	})
	for i := index; i < len(s.windows) && !s.windows[i].Start.After(w.Start); i++ {
		if s.windows[i].String() == w.String() {
			return false
		}
	}

	s.windows = append(s.windows, ID{})
	copy(s.windows[index+1:], s.windows[index:])
	s.windows[index] = w
	return true
}

// Remove deletes a window from the list.
func (s *SortedList) Remove(w ID) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	index := sort.Search(len(s.windows), func(i int) bool {
		return !s.windows[i].Start.Before(w.Start)
	})
	for i := index; i < len(s.windows); i++ {
		if s.windows[i].String() == w.String() {
			s.windows = append(s.windows[:i], s.windows[i+1:]...)
			return true
		}
		if s.windows[i].Start.After(w.Start) {
			break
		}
	}
	return false
}

// Overlapping returns the windows that overlap or touch the given window.
func (s *SortedList) Overlapping(w ID) []ID {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var out []ID
	for _, win := range s.windows {
		if win.Start.After(w.End) {
			break
		}
		if win.Overlaps(w) {
			out = append(out, win)
		}
	}
	return out
}

// Front returns the earliest window in the list.
func (s *SortedList) Front() (ID, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if len(s.windows) == 0 {
		return ID{}, false
	}
	return s.windows[0], true
}

// Items returns a copy of the windows in start time order.
func (s *SortedList) Items() []ID {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]ID, len(s.windows))
	copy(out, s.windows)
	return out
}

// Len returns the number of windows in the list.
func (s *SortedList) Len() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.windows)
}
