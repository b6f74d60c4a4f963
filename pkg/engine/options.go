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
	"fmt"
	"time"

	"github.com/orielstream/oriel/pkg/event"
	"github.com/orielstream/oriel/pkg/state"
	"github.com/orielstream/oriel/pkg/trigger"
)

type options struct {
	name              string
	trigger           trigger.Trigger
	stateMode         StateMode
	allowedLateness   time.Duration
	onLateEvent       func(e event.Event, arrivedAt time.Time)
	store             state.Store
	keySelector       event.KeySelector
	timestampSelector event.TimestampSelector
	tickInterval      time.Duration
	resultBufferSize  int
	purgedCacheSize   int
	clock             func() time.Time
}

func defaultOptions() *options {
	return &options{
		trigger:           trigger.EventTime(),
		stateMode:         Discarding,
		allowedLateness:   0,
		keySelector:       event.DefaultKeySelector,
		timestampSelector: event.DefaultTimestampSelector,
		tickInterval:      100 * time.Millisecond,
		resultBufferSize:  64,
		purgedCacheSize:   1024,
		clock:             time.Now,
	}
}

// Option customizes the engine configuration. Options are applied once at
// construction; the resulting configuration is immutable.
type Option func(*options) error

// WithName sets the engine name used in logs and metric labels.
func WithName(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("engine name must not be empty")
		}
		o.name = name
		return nil
	}
}

// WithTrigger sets the firing policy. Defaults to trigger.EventTime().
func WithTrigger(t trigger.Trigger) Option {
	return func(o *options) error {
		if t == nil {
			return fmt.Errorf("trigger must not be nil")
		}
		o.trigger = t
		return nil
	}
}

// TriggerOnCount fires every n elements, closing the window at its end time.
func TriggerOnCount(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("count trigger threshold must be positive, got %d", n)
		}
		o.trigger = trigger.Count(n)
		return nil
	}
}

// TriggerOnProcessingTime fires every interval of wall-clock time.
func TriggerOnProcessingTime(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return fmt.Errorf("processing time trigger interval must be positive, got %v", interval)
		}
		o.trigger = trigger.ProcessingTime(interval)
		return nil
	}
}

// WithEarlyTrigger fires at each interval prior to the window end.
func WithEarlyTrigger(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return fmt.Errorf("early trigger interval must be positive, got %v", interval)
		}
		o.trigger = trigger.Early(interval)
		return nil
	}
}

// WithStateMode sets the emission semantics. Defaults to Discarding.
func WithStateMode(mode StateMode) Option {
	return func(o *options) error {
		switch mode {
		case Discarding, Accumulating, AccumulatingAndRetracting:
			o.stateMode = mode
			return nil
		default:
			return fmt.Errorf("unknown state mode %d", mode)
		}
	}
}

// WithAllowedLateness sets how long after a window closes late arrivals are
// still incorporated. Defaults to zero, closing windows purge immediately.
func WithAllowedLateness(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("allowed lateness must not be negative, got %v", d)
		}
		o.allowedLateness = d
		return nil
	}
}

// OnLateEvent registers a fire-and-forget callback invoked for every dropped
// late event. Panics inside the callback are recovered and logged, never
// propagated.
func OnLateEvent(fn func(e event.Event, arrivedAt time.Time)) Option {
	return func(o *options) error {
		o.onLateEvent = fn
		return nil
	}
}

// WithStore sets the durable state store. Defaults to the in-memory store.
func WithStore(s state.Store) Option {
	return func(o *options) error {
		if s == nil {
			return fmt.Errorf("state store must not be nil")
		}
		o.store = s
		return nil
	}
}

// WithKeySelector overrides how the partition key is extracted from events.
func WithKeySelector(sel event.KeySelector) Option {
	return func(o *options) error {
		if sel == nil {
			return fmt.Errorf("key selector must not be nil")
		}
		o.keySelector = sel
		return nil
	}
}

// WithTimestampSelector overrides how the event time is extracted from
// events.
func WithTimestampSelector(sel event.TimestampSelector) Option {
	return func(o *options) error {
		if sel == nil {
			return fmt.Errorf("timestamp selector must not be nil")
		}
		o.timestampSelector = sel
		return nil
	}
}

// WithTickInterval sets the processing-time tick granularity. Smaller
// intervals reduce trigger and closure latency at the cost of timer
// overhead. Defaults to 100ms.
func WithTickInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("tick interval must be positive, got %v", d)
		}
		o.tickInterval = d
		return nil
	}
}

// WithResultBuffer sets the capacity of the downstream results channel.
func WithResultBuffer(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("result buffer size must be positive, got %d", n)
		}
		o.resultBufferSize = n
		return nil
	}
}

// WithClock overrides the engine's wall-clock source. Used by tests to
// drive time deterministically.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		o.clock = now
		return nil
	}
}
