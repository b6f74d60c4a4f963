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
	"encoding/json"
	"sort"
	"time"

	"github.com/orielstream/oriel/pkg/event"
	"github.com/orielstream/oriel/pkg/trigger"
	"github.com/orielstream/oriel/pkg/window"
)

// instance is the engine-owned state of one (key, window) pair. It is only
// ever touched from its key's serialization point.
type instance struct {
	id        window.ID
	lifecycle window.Lifecycle
	// buffer holds the elements pending emission. In Discarding mode it is
	// cleared after every emission; in the accumulating modes it holds all
	// elements since the window opened.
	buffer []event.Event
	// sinceLast counts elements added since the previous emission.
	sinceLast int
	// seq is the monotonically increasing emission sequence.
	seq uint64
	// lastEmitted holds the items of the most recent non-final,
	// non-retraction emission, kept only in retracting mode.
	lastEmitted []event.Event
	trigCtx     *trigger.Context
	createdAt   time.Time
	closedAt    time.Time
}

func newInstance(id window.ID, now time.Time) *instance {
	return &instance{
		id:        id,
		lifecycle: window.Open,
		trigCtx:   trigger.NewContext(),
		createdAt: now,
	}
}

func (i *instance) append(e event.Event) {
	i.buffer = append(i.buffer, e)
	i.sinceLast++
}

func (i *instance) nextSeq() uint64 {
	i.seq++
	return i.seq
}

// emissionItems returns a copy of the item set the next emission carries.
func (i *instance) emissionItems() []event.Event {
	items := make([]event.Event, len(i.buffer))
	copy(items, i.buffer)
	return items
}

// afterEmission updates the buffered state once the emission has been handed
// off downstream.
func (i *instance) afterEmission(mode StateMode, items []event.Event, isFinal bool) {
	i.sinceLast = 0
	switch mode {
	case Discarding:
		i.buffer = nil
	case AccumulatingAndRetracting:
		if isFinal {
			i.lastEmitted = nil
		} else {
			i.lastEmitted = items
		}
	}
}

// close transitions the instance to Closed.
func (i *instance) close(now time.Time) {
	i.lifecycle = window.Closed
	i.closedAt = now
}

// absorb merges another instance's state into this one. The combined buffer
// is ordered by event time; the emission sequence continues from the larger
// of the two so downstream consumers never observe it going backwards. The
// trigger context of the instance that emitted last wins.
func (i *instance) absorb(other *instance) {
	i.buffer = append(i.buffer, other.buffer...)
	sort.SliceStable(i.buffer, func(a, b int) bool {
		return i.buffer[a].Timestamp.Before(i.buffer[b].Timestamp)
	})
	i.sinceLast += other.sinceLast
	if other.seq > i.seq {
		i.seq = other.seq
		i.lastEmitted = other.lastEmitted
		i.trigCtx = other.trigCtx
	}
	if other.lifecycle == window.Open {
		i.lifecycle = window.Open
	}
	if other.createdAt.Before(i.createdAt) && !other.createdAt.IsZero() {
		i.createdAt = other.createdAt
	}
}

// instanceSnapshot is the persisted form of an instance.
type instanceSnapshot struct {
	ID           window.ID        `json:"id"`
	Lifecycle    window.Lifecycle `json:"lifecycle"`
	Buffer       []event.Event    `json:"buffer,omitempty"`
	SinceLast    int              `json:"sinceLast"`
	Seq          uint64           `json:"seq"`
	LastEmitted  []event.Event    `json:"lastEmitted,omitempty"`
	TriggerState json.RawMessage  `json:"triggerState,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	ClosedAt     time.Time        `json:"closedAt,omitempty"`
}

func (i *instance) snapshot() ([]byte, error) {
	trigState, err := i.trigCtx.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(instanceSnapshot{
		ID:           i.id,
		Lifecycle:    i.lifecycle,
		Buffer:       i.buffer,
		SinceLast:    i.sinceLast,
		Seq:          i.seq,
		LastEmitted:  i.lastEmitted,
		TriggerState: trigState,
		CreatedAt:    i.createdAt,
		ClosedAt:     i.closedAt,
	})
}

func instanceFromSnapshot(data []byte) (*instance, error) {
	var snap instanceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	trigCtx := trigger.NewContext()
	if err := trigCtx.Restore(snap.TriggerState); err != nil {
		return nil, err
	}
	return &instance{
		id:          snap.ID,
		lifecycle:   snap.Lifecycle,
		buffer:      snap.Buffer,
		sinceLast:   snap.SinceLast,
		seq:         snap.Seq,
		lastEmitted: snap.LastEmitted,
		trigCtx:     trigCtx,
		createdAt:   snap.CreatedAt,
		closedAt:    snap.ClosedAt,
	}, nil
}
