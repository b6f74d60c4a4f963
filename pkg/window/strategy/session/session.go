// Package session implements session windows. Sessions have no fixed grid:
// a session covers a burst of activity for a key and closes after the
// configured inactivity gap elapses without a new event. Sessions that come
// to overlap are merged into one window covering the union of their ranges.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/orielstream/oriel/pkg/window"
)

// Assigner tracks the open sessions per key and assigns incoming events to
// them, expanding and merging sessions as the gap rule dictates.
type Assigner struct {
	// Gap is the inactivity gap after the last event of a session.
	Gap time.Duration

	lock    sync.RWMutex
	entries map[string]*window.SortedList
}

var _ window.StatefulAssigner = (*Assigner)(nil)

// NewAssigner returns a session window assigner.
func NewAssigner(gap time.Duration) (*Assigner, error) {
	if gap <= 0 {
		return nil, fmt.Errorf("session inactivity gap must be positive, got %v", gap)
	}
	return &Assigner{
		Gap:     gap,
		entries: make(map[string]*window.SortedList),
	}, nil
}

func (a *Assigner) Kind() window.Kind {
	return window.Session
}

// AssignWindows assigns the event to a session for its key. The candidate
// range is [eventTime, eventTime+gap). When the candidate overlaps no open
// session a new one is opened; when it overlaps exactly one it either lands
// inside it or expands it; when it overlaps several, all of them are merged
// into one session covering the union. Merging is idempotent: assigning the
// same event twice yields the same session.
func (a *Assigner) AssignWindows(key string, eventTime time.Time) []window.Assignment {
	list := a.listFor(key)

	candidate := window.ID{Key: key, Start: eventTime, End: eventTime.Add(a.Gap)}
	overlapping := list.Overlapping(candidate)

	switch len(overlapping) {
	case 0:
		list.Insert(candidate)
		return []window.Assignment{{Window: candidate, Op: window.OpAssign}}
	case 1:
		existing := overlapping[0]
		union := existing.Union(candidate)
		if union == existing {
			// event falls inside the session without moving its boundaries
			return []window.Assignment{{Window: existing, Op: window.OpAssign}}
		}
		list.Remove(existing)
		list.Insert(union)
		return []window.Assignment{{Window: union, Op: window.OpExpand, Previous: existing}}
	default:
		union := candidate
		for _, o := range overlapping {
			union = union.Union(o)
			list.Remove(o)
		}
		list.Insert(union)
		return []window.Assignment{{Window: union, Op: window.OpMerge, Absorbed: overlapping}}
	}
}

// InsertWindow re-registers a session recovered from the state store.
func (a *Assigner) InsertWindow(id window.ID) {
	a.listFor(id.Key).Insert(id)
}

// RemoveWindow drops a session once the engine has purged it. A later event
// for the same key starts a brand-new, independent session.
func (a *Assigner) RemoveWindow(id window.ID) {
	a.lock.RLock()
	list, ok := a.entries[id.Key]
	a.lock.RUnlock()
	if ok {
		list.Remove(id)
	}
}

// OpenSessions returns the currently tracked sessions for a key in start
// time order.
func (a *Assigner) OpenSessions(key string) []window.ID {
	a.lock.RLock()
	list, ok := a.entries[key]
	a.lock.RUnlock()
	if !ok {
		return nil
	}
	return list.Items()
}

func (a *Assigner) listFor(key string) *window.SortedList {
	a.lock.RLock()
	list, ok := a.entries[key]
	a.lock.RUnlock()
	if ok {
		return list
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	if list, ok = a.entries[key]; !ok {
		list = window.NewSortedList()
		a.entries[key] = list
	}
	return list
}
