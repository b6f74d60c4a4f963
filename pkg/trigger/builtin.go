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

package trigger

import (
	"time"

	"github.com/orielstream/oriel/pkg/event"
)

const (
	countKey    = "count"
	lastFireKey = "lastFire"
)

// EventTime returns the default trigger: it buffers every element and fires
// exactly once, with a purge, when processing time passes the window end.
func EventTime() Trigger {
	return &eventTime{}
}

type eventTime struct{}

func (t *eventTime) OnElement(_ *Context, _ event.Event, _, _ time.Time) (Result, error) {
	return Continue, nil
}

func (t *eventTime) OnProcessingTime(_ *Context, now time.Time, _, end time.Time) (Result, error) {
	if !now.Before(end) {
		return FireAndPurge, nil
	}
	return Continue, nil
}

// Count returns a trigger that fires every n elements seen since the last
// fire. The window still closes at its end time, emitting any partial batch.
func Count(n int) Trigger {
	return &count{n: n}
}

type count struct {
	n int
}

func (t *count) OnElement(tc *Context, _ event.Event, _, _ time.Time) (Result, error) {
	var seen int
	if _, err := tc.GetState(countKey, &seen); err != nil {
		return Continue, err
	}
	seen++
	if seen >= t.n {
		tc.ClearState(countKey)
		return Fire, nil
	}
	if err := tc.SetState(countKey, seen); err != nil {
		return Continue, err
	}
	return Continue, nil
}

func (t *count) OnProcessingTime(_ *Context, now time.Time, _, end time.Time) (Result, error) {
	if !now.Before(end) {
		return FireAndPurge, nil
	}
	return Continue, nil
}

// ProcessingTime returns a trigger that fires every interval of wall-clock
// time while the window is open, and closes the window at its end time.
func ProcessingTime(interval time.Duration) Trigger {
	return &processingTime{interval: interval}
}

type processingTime struct {
	interval time.Duration
}

func (t *processingTime) OnElement(_ *Context, _ event.Event, _, _ time.Time) (Result, error) {
	return Continue, nil
}

func (t *processingTime) OnProcessingTime(tc *Context, now time.Time, _, end time.Time) (Result, error) {
	if !now.Before(end) {
		return FireAndPurge, nil
	}
	return fireEvery(tc, now, t.interval)
}

// Early returns a trigger that fires at each interval prior to the window
// end, then fires and purges at the window end.
func Early(interval time.Duration) Trigger {
	return &early{interval: interval}
}

type early struct {
	interval time.Duration
}

func (t *early) OnElement(_ *Context, _ event.Event, _, _ time.Time) (Result, error) {
	return Continue, nil
}

func (t *early) OnProcessingTime(tc *Context, now time.Time, _, end time.Time) (Result, error) {
	if !now.Before(end) {
		return FireAndPurge, nil
	}
	return fireEvery(tc, now, t.interval)
}

// fireEvery fires once interval has elapsed since the last fire. The first
// observation only establishes the baseline.
func fireEvery(tc *Context, now time.Time, interval time.Duration) (Result, error) {
	var last time.Time
	ok, err := tc.GetState(lastFireKey, &last)
	if err != nil {
		return Continue, err
	}
	if !ok {
		if err := tc.SetState(lastFireKey, now); err != nil {
			return Continue, err
		}
		return Continue, nil
	}
	if now.Sub(last) >= interval {
		if err := tc.SetState(lastFireKey, now); err != nil {
			return Continue, err
		}
		return Fire, nil
	}
	return Continue, nil
}

// Custom wraps user-supplied element and processing-time callbacks. A nil
// callback behaves as Continue. Errors returned by the callbacks are fatal
// for the owning window instance.
type Custom struct {
	ElementFn        func(tc *Context, e event.Event, start, end time.Time) (Result, error)
	ProcessingTimeFn func(tc *Context, now time.Time, start, end time.Time) (Result, error)
}

var _ Trigger = (*Custom)(nil)

func (t *Custom) OnElement(tc *Context, e event.Event, start, end time.Time) (Result, error) {
	if t.ElementFn == nil {
		return Continue, nil
	}
	return t.ElementFn(tc, e, start, end)
}

func (t *Custom) OnProcessingTime(tc *Context, now time.Time, start, end time.Time) (Result, error) {
	if t.ProcessingTimeFn == nil {
		return Continue, nil
	}
	return t.ProcessingTimeFn(tc, now, start, end)
}
