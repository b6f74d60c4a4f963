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
	leftFiredKey  = "leftFired"
	rightFiredKey = "rightFired"
)

// Or returns a trigger that fires whenever either sub-trigger fires. The
// stronger result wins, FireAndPurge > Fire > Continue.
func Or(left, right Trigger) Trigger {
	return &orTrigger{left: left, right: right}
}

type orTrigger struct {
	left  Trigger
	right Trigger
}

func (t *orTrigger) OnElement(tc *Context, e event.Event, start, end time.Time) (Result, error) {
	lr, err := t.left.OnElement(tc.Scoped("or.l"), e, start, end)
	if err != nil {
		return Continue, err
	}
	rr, err := t.right.OnElement(tc.Scoped("or.r"), e, start, end)
	if err != nil {
		return Continue, err
	}
	return Merge(lr, rr), nil
}

func (t *orTrigger) OnProcessingTime(tc *Context, now time.Time, start, end time.Time) (Result, error) {
	lr, err := t.left.OnProcessingTime(tc.Scoped("or.l"), now, start, end)
	if err != nil {
		return Continue, err
	}
	rr, err := t.right.OnProcessingTime(tc.Scoped("or.r"), now, start, end)
	if err != nil {
		return Continue, err
	}
	return Merge(lr, rr), nil
}

// And returns a trigger that fires only once both sub-triggers have
// independently signaled a fire since the last combined fire. Each child's
// "has fired" flag resets after the combined fire.
func And(left, right Trigger) Trigger {
	return &andTrigger{left: left, right: right}
}

type andTrigger struct {
	left  Trigger
	right Trigger
}

func (t *andTrigger) OnElement(tc *Context, e event.Event, start, end time.Time) (Result, error) {
	lr, err := t.left.OnElement(tc.Scoped("and.l"), e, start, end)
	if err != nil {
		return Continue, err
	}
	rr, err := t.right.OnElement(tc.Scoped("and.r"), e, start, end)
	if err != nil {
		return Continue, err
	}
	return t.combine(tc, lr, rr)
}

func (t *andTrigger) OnProcessingTime(tc *Context, now time.Time, start, end time.Time) (Result, error) {
	lr, err := t.left.OnProcessingTime(tc.Scoped("and.l"), now, start, end)
	if err != nil {
		return Continue, err
	}
	rr, err := t.right.OnProcessingTime(tc.Scoped("and.r"), now, start, end)
	if err != nil {
		return Continue, err
	}
	return t.combine(tc, lr, rr)
}

func (t *andTrigger) combine(tc *Context, lr, rr Result) (Result, error) {
	scoped := tc.Scoped("and")
	leftFired, err := firedFlag(scoped, leftFiredKey, lr)
	if err != nil {
		return Continue, err
	}
	rightFired, err := firedFlag(scoped, rightFiredKey, rr)
	if err != nil {
		return Continue, err
	}

	if !leftFired || !rightFired {
		return Continue, nil
	}

	scoped.ClearState(leftFiredKey)
	scoped.ClearState(rightFiredKey)
	// the combined fire is only as strong as the current evaluation; a purge
	// remembered from an earlier round must not close the window now
	if lr == FireAndPurge || rr == FireAndPurge {
		return FireAndPurge, nil
	}
	return Fire, nil
}

func firedFlag(tc *Context, key string, r Result) (bool, error) {
	if r >= Fire {
		if err := tc.SetState(key, true); err != nil {
			return false, err
		}
		return true, nil
	}
	var fired bool
	if _, err := tc.GetState(key, &fired); err != nil {
		return false, err
	}
	return fired, nil
}
