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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orielstream/oriel/pkg/event"
)

var (
	baseTime = time.Unix(1651129200, 0).UTC()
	winStart = baseTime
	winEnd   = baseTime.Add(time.Minute)
)

func testEvent(ts time.Time) event.Event {
	return event.Event{Key: "test", Timestamp: ts}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name string
		a    Result
		b    Result
		want Result
	}{
		{name: "continue_continue", a: Continue, b: Continue, want: Continue},
		{name: "continue_fire", a: Continue, b: Fire, want: Fire},
		{name: "fire_purge", a: Fire, b: FireAndPurge, want: FireAndPurge},
		{name: "purge_continue", a: FireAndPurge, b: Continue, want: FireAndPurge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(tt.a, tt.b))
		})
	}
}

func TestEventTime(t *testing.T) {
	tr := EventTime()
	tc := NewContext()

	res, err := tr.OnElement(tc, testEvent(baseTime), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnProcessingTime(tc, winEnd.Add(-time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnProcessingTime(tc, winEnd, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, FireAndPurge, res)
}

func TestCount(t *testing.T) {
	tr := Count(3)
	tc := NewContext()

	want := []Result{Continue, Continue, Fire, Continue, Continue, Fire}
	for i, w := range want {
		res, err := tr.OnElement(tc, testEvent(baseTime), winStart, winEnd)
		require.NoError(t, err)
		assert.Equal(t, w, res, "element %d", i)
	}

	// window end still closes the window regardless of the counter
	res, err := tr.OnProcessingTime(tc, winEnd, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, FireAndPurge, res)
}

func TestProcessingTime(t *testing.T) {
	tr := ProcessingTime(10 * time.Second)
	tc := NewContext()

	// first observation only establishes the baseline
	res, err := tr.OnProcessingTime(tc, baseTime, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnProcessingTime(tc, baseTime.Add(5*time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnProcessingTime(tc, baseTime.Add(10*time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Fire, res)

	res, err = tr.OnProcessingTime(tc, baseTime.Add(15*time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnProcessingTime(tc, winEnd, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, FireAndPurge, res)
}

func TestEarly(t *testing.T) {
	tr := Early(20 * time.Second)
	tc := NewContext()

	res, err := tr.OnProcessingTime(tc, baseTime, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnProcessingTime(tc, baseTime.Add(20*time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Fire, res)

	res, err = tr.OnProcessingTime(tc, winEnd.Add(time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, FireAndPurge, res)
}

func TestOr(t *testing.T) {
	tr := Or(Count(2), EventTime())
	tc := NewContext()

	res, err := tr.OnElement(tc, testEvent(baseTime), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)

	res, err = tr.OnElement(tc, testEvent(baseTime), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Fire, res)

	// the stronger result wins
	res, err = tr.OnProcessingTime(tc, winEnd, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, FireAndPurge, res)
}

func TestAnd(t *testing.T) {
	// left fires on every element, right on every second element
	tr := And(Count(1), Count(2))
	tc := NewContext()

	want := []Result{Continue, Fire, Continue, Fire}
	for i, w := range want {
		res, err := tr.OnElement(tc, testEvent(baseTime), winStart, winEnd)
		require.NoError(t, err)
		assert.Equal(t, w, res, "element %d", i)
	}
}

func TestAndResetsAfterCombinedFire(t *testing.T) {
	tr := And(Count(1), Count(1))
	tc := NewContext()

	res, err := tr.OnElement(tc, testEvent(baseTime), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Fire, res)

	// flags were reset, a tick alone must not fire again
	res, err = tr.OnProcessingTime(tc, baseTime.Add(time.Second), winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)
}

func TestCustomError(t *testing.T) {
	boom := errors.New("boom")
	tr := &Custom{
		ElementFn: func(*Context, event.Event, time.Time, time.Time) (Result, error) {
			return Continue, boom
		},
	}
	_, err := tr.OnElement(NewContext(), testEvent(baseTime), winStart, winEnd)
	assert.ErrorIs(t, err, boom)

	// nil callbacks behave as Continue
	res, err := (&Custom{}).OnProcessingTime(NewContext(), baseTime, winStart, winEnd)
	require.NoError(t, err)
	assert.Equal(t, Continue, res)
}

func TestCustomErrorInsideComposite(t *testing.T) {
	boom := errors.New("boom")
	tr := Or(EventTime(), &Custom{
		ElementFn: func(*Context, event.Event, time.Time, time.Time) (Result, error) {
			return Continue, boom
		},
	})
	_, err := tr.OnElement(NewContext(), testEvent(baseTime), winStart, winEnd)
	assert.ErrorIs(t, err, boom)
}

func TestContextSnapshotRestore(t *testing.T) {
	tc := NewContext()
	require.NoError(t, tc.SetState("count", 7))
	require.NoError(t, tc.Scoped("and.l").SetState("count", 3))

	snap, err := tc.Snapshot()
	require.NoError(t, err)

	restored := NewContext()
	require.NoError(t, restored.Restore(snap))

	var n int
	found, err := restored.GetState("count", &n)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, n)

	found, err = restored.Scoped("and.l").GetState("count", &n)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, n)
}

func TestContextScopedIsolation(t *testing.T) {
	tc := NewContext()
	require.NoError(t, tc.Scoped("or.l").SetState("count", 1))
	require.NoError(t, tc.Scoped("or.r").SetState("count", 2))

	var n int
	found, err := tc.Scoped("or.l").GetState("count", &n)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, n)

	found, err = tc.GetState("count", &n)
	require.NoError(t, err)
	assert.False(t, found)

	tc.Scoped("or.l").ClearState("count")
	found, err = tc.Scoped("or.l").GetState("count", &n)
	require.NoError(t, err)
	assert.False(t, found)

	// reset clears scoped state too
	tc.Reset()
	found, err = tc.Scoped("or.r").GetState("count", &n)
	require.NoError(t, err)
	assert.False(t, found)
}
