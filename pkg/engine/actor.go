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
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/orielstream/oriel/pkg/event"
	"github.com/orielstream/oriel/pkg/trigger"
	"github.com/orielstream/oriel/pkg/window"
)

type opKind int

const (
	opIngest opKind = iota
	opTick
)

type op struct {
	kind  opKind
	ev    event.Event
	now   time.Time
	errCh chan error
}

// actor is the serialization point for one key. All state transitions for
// the key's window instances, whether driven by element arrival or by the
// clock, go through its mailbox in order. Distinct keys run in parallel.
type actor struct {
	key       string
	e         *Engine
	mailbox   chan *op
	instances map[string]*instance
	log       *zap.SugaredLogger
}

func (a *actor) run(ctx context.Context) {
	defer a.e.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case o := <-a.mailbox:
			var err error
			switch o.kind {
			case opIngest:
				err = a.handleIngest(ctx, o.ev)
			case opTick:
				err = a.handleTick(ctx, o.now)
			default:
				err = fmt.Errorf("unknown op kind %d", o.kind)
			}
			o.errCh <- err
		}
	}
}

// do submits an op and waits for the actor to process it, so store and
// trigger failures surface synchronously to the Ingest/Tick caller.
func (a *actor) do(ctx context.Context, o *op) error {
	select {
	case a.mailbox <- o:
	case <-ctx.Done():
		return ctx.Err()
	case <-a.e.runCtx.Done():
		return a.e.runCtx.Err()
	}
	select {
	case err := <-o.errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *actor) handleIngest(ctx context.Context, ev event.Event) error {
	eventTime := a.e.opts.timestampSelector(ev)
	now := a.e.opts.clock()

	for _, asgn := range a.e.assigner.AssignWindows(a.key, eventTime) {
		if err := a.handleAssignment(ctx, asgn, ev, now); err != nil {
			return err
		}
	}
	return nil
}

func (a *actor) handleAssignment(ctx context.Context, asgn window.Assignment, ev event.Event, now time.Time) error {
	switch asgn.Op {
	case window.OpExpand:
		if err := a.rename(asgn.Previous, asgn.Window); err != nil {
			return err
		}
	case window.OpMerge:
		if err := a.merge(asgn, now); err != nil {
			return err
		}
	}

	inst, ok := a.instances[asgn.Window.String()]
	if !ok {
		if a.lateBeyondRecovery(asgn.Window, now) {
			a.dropLate(ev, now)
			return nil
		}
		inst = newInstance(asgn.Window, now)
		a.instances[asgn.Window.String()] = inst
		activeWindowCount.With(a.e.labels()).Inc()
	}

	switch inst.lifecycle {
	case window.Open:
		inst.append(ev)
		res, err := a.e.opts.trigger.OnElement(inst.trigCtx, ev, inst.id.Start, inst.id.End)
		if err != nil {
			return &TriggerEvaluationError{Window: inst.id, Err: err}
		}
		return a.applyResult(ctx, inst, res, now)
	case window.Closed:
		if now.Sub(inst.id.End) > a.e.opts.allowedLateness {
			a.dropLate(ev, now)
			return nil
		}
		// reopen: the buffer is reactivated, the element goes through the
		// trigger's element path and a Late result is always produced
		inst.append(ev)
		if _, err := a.e.opts.trigger.OnElement(inst.trigCtx, ev, inst.id.Start, inst.id.End); err != nil {
			return &TriggerEvaluationError{Window: inst.id, Err: err}
		}
		if err := a.emit(ctx, inst, Late, false, now); err != nil {
			return err
		}
		return a.persist(inst)
	}
	return nil
}

func (a *actor) handleTick(ctx context.Context, now time.Time) error {
	for _, inst := range a.sortedInstances() {
		switch inst.lifecycle {
		case window.Open:
			res, err := a.e.opts.trigger.OnProcessingTime(inst.trigCtx, now, inst.id.Start, inst.id.End)
			if err != nil {
				return &TriggerEvaluationError{Window: inst.id, Err: err}
			}
			if err := a.applyResult(ctx, inst, res, now); err != nil {
				return err
			}
		case window.Closed:
			if now.Sub(inst.id.End) > a.e.opts.allowedLateness {
				if err := a.purge(inst); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// applyResult drives the lifecycle for a trigger evaluation on an open
// window: Fire emits and stays open, FireAndPurge emits the final on-time
// result and closes, skipping straight to purged when no lateness is
// allowed.
func (a *actor) applyResult(ctx context.Context, inst *instance, res trigger.Result, now time.Time) error {
	switch res {
	case trigger.Fire:
		if err := a.emit(ctx, inst, Early, false, now); err != nil {
			return err
		}
	case trigger.FireAndPurge:
		if err := a.emit(ctx, inst, OnTime, true, now); err != nil {
			return err
		}
		inst.close(now)
		if a.e.opts.allowedLateness == 0 {
			return a.purge(inst)
		}
	}
	return a.persist(inst)
}

// rename moves an instance to a wider identity after a session expand.
func (a *actor) rename(prev, next window.ID) error {
	inst, ok := a.instances[prev.String()]
	if !ok {
		return nil
	}
	delete(a.instances, prev.String())
	if err := a.e.opts.store.Remove(prev.String()); err != nil {
		return &StateStoreError{Op: "remove", Key: prev.String(), Err: err}
	}
	inst.id = next
	a.instances[next.String()] = inst
	return nil
}

// merge folds the absorbed session instances into one instance covering the
// union window. Merging is idempotent: the union holds the union of the
// event sets and the emission sequence continues from the largest absorbed
// sequence.
func (a *actor) merge(asgn window.Assignment, now time.Time) error {
	union := newInstance(asgn.Window, now)
	union.lifecycle = window.Closed
	merged := 0
	for _, id := range asgn.Absorbed {
		other, ok := a.instances[id.String()]
		if !ok {
			continue
		}
		delete(a.instances, id.String())
		if err := a.e.opts.store.Remove(id.String()); err != nil {
			return &StateStoreError{Op: "remove", Key: id.String(), Err: err}
		}
		union.absorb(other)
		merged++
	}
	if merged == 0 {
		union.lifecycle = window.Open
	}
	a.instances[asgn.Window.String()] = union
	activeWindowCount.With(a.e.labels()).Sub(float64(merged - 1))
	return nil
}

// lateBeyondRecovery reports whether an event for a window with no live
// instance must be dropped: either the window was already purged, or its
// end is past the lateness horizon.
func (a *actor) lateBeyondRecovery(id window.ID, now time.Time) bool {
	if _, ok := a.e.purged.Get(id.String()); ok {
		return true
	}
	return now.Sub(id.End) > a.e.opts.allowedLateness
}

func (a *actor) dropLate(ev event.Event, arrivedAt time.Time) {
	lateDroppedTotal.With(a.e.labels()).Inc()
	a.log.Debugw("Dropped late event",
		zap.Time("eventTime", ev.Timestamp), zap.Time("arrivedAt", arrivedAt))
	fn := a.e.opts.onLateEvent
	if fn == nil {
		return
	}
	// the callback must never crash the engine
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("Late event callback panicked", zap.Any("panic", r))
		}
	}()
	fn(ev, arrivedAt)
}

func (a *actor) purge(inst *instance) error {
	if err := a.e.opts.store.Remove(inst.id.String()); err != nil {
		return &StateStoreError{Op: "remove", Key: inst.id.String(), Err: err}
	}
	delete(a.instances, inst.id.String())
	inst.lifecycle = window.Purged
	inst.trigCtx.Reset()
	a.e.purged.Add(inst.id.String(), a.e.opts.clock())
	if sa, ok := a.e.assigner.(window.StatefulAssigner); ok {
		sa.RemoveWindow(inst.id)
	}
	activeWindowCount.With(a.e.labels()).Dec()
	return nil
}

func (a *actor) persist(inst *instance) error {
	snap, err := inst.snapshot()
	if err != nil {
		return fmt.Errorf("snapshot window %s: %w", inst.id, err)
	}
	if err := a.e.opts.store.Put(inst.id.String(), snap); err != nil {
		return &StateStoreError{Op: "put", Key: inst.id.String(), Err: err}
	}
	return nil
}

// sortedInstances returns the key's instances ordered by window end time so
// tick-driven closures happen oldest first.
func (a *actor) sortedInstances() []*instance {
	out := make([]*instance, 0, len(a.instances))
	for _, inst := range a.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].id.End.Equal(out[j].id.End) {
			return out[i].id.End.Before(out[j].id.End)
		}
		return out[i].id.Start.Before(out[j].id.Start)
	})
	return out
}
