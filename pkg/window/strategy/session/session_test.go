package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orielstream/oriel/pkg/window"
)

var baseTime = time.Unix(1651129200, 0).UTC()

func TestNewAssigner_Validation(t *testing.T) {
	_, err := NewAssigner(0)
	assert.Error(t, err)
	_, err = NewAssigner(-time.Minute)
	assert.Error(t, err)
}

func TestAssignWindows_GapSplitsSessions(t *testing.T) {
	a, err := NewAssigner(30 * time.Minute)
	require.NoError(t, err)

	// first event opens [t, t+gap)
	got := a.AssignWindows("k", baseTime)
	require.Len(t, got, 1)
	assert.Equal(t, window.OpAssign, got[0].Op)
	assert.True(t, got[0].Window.Start.Equal(baseTime))
	assert.True(t, got[0].Window.End.Equal(baseTime.Add(30*time.Minute)))

	// 10 minutes later, inside the gap, the session extends
	got = a.AssignWindows("k", baseTime.Add(10*time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, window.OpExpand, got[0].Op)
	assert.True(t, got[0].Window.Start.Equal(baseTime))
	assert.True(t, got[0].Window.End.Equal(baseTime.Add(40*time.Minute)))
	assert.True(t, got[0].Previous.End.Equal(baseTime.Add(30*time.Minute)))

	// 45 minutes past the last event, beyond the gap, a new session opens
	got = a.AssignWindows("k", baseTime.Add(55*time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, window.OpAssign, got[0].Op)
	assert.True(t, got[0].Window.Start.Equal(baseTime.Add(55*time.Minute)))

	sessions := a.OpenSessions("k")
	require.Len(t, sessions, 2)
}

func TestAssignWindows_EventInsideSession(t *testing.T) {
	a, err := NewAssigner(30 * time.Minute)
	require.NoError(t, err)

	a.AssignWindows("k", baseTime)
	a.AssignWindows("k", baseTime.Add(20*time.Minute))

	// an event before the current last event does not move the boundaries
	got := a.AssignWindows("k", baseTime.Add(5*time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, window.OpAssign, got[0].Op)
	assert.True(t, got[0].Window.Start.Equal(baseTime))
	assert.True(t, got[0].Window.End.Equal(baseTime.Add(50*time.Minute)))
	assert.Len(t, a.OpenSessions("k"), 1)
}

func TestAssignWindows_BridgingEventMerges(t *testing.T) {
	a, err := NewAssigner(10 * time.Minute)
	require.NoError(t, err)

	a.AssignWindows("k", baseTime)                     // [0, 10m)
	a.AssignWindows("k", baseTime.Add(25*time.Minute)) // [25m, 35m)
	require.Len(t, a.OpenSessions("k"), 2)

	got := a.AssignWindows("k", baseTime.Add(8*time.Minute)) // extends the first to [0, 18m)
	require.Len(t, got, 1)
	assert.Equal(t, window.OpExpand, got[0].Op)

	// candidate [16m, 26m) now touches both sessions
	got = a.AssignWindows("k", baseTime.Add(16*time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, window.OpMerge, got[0].Op)
	assert.True(t, got[0].Window.Start.Equal(baseTime))
	assert.True(t, got[0].Window.End.Equal(baseTime.Add(35*time.Minute)))
	assert.Len(t, got[0].Absorbed, 2)
	assert.Len(t, a.OpenSessions("k"), 1)
}

func TestAssignWindows_Idempotent(t *testing.T) {
	a, err := NewAssigner(10 * time.Minute)
	require.NoError(t, err)

	first := a.AssignWindows("k", baseTime)
	second := a.AssignWindows("k", baseTime)
	require.Len(t, second, 1)
	assert.Equal(t, window.OpAssign, second[0].Op)
	assert.Equal(t, first[0].Window, second[0].Window)
	assert.Len(t, a.OpenSessions("k"), 1)
}

func TestAssignWindows_KeysAreIndependent(t *testing.T) {
	a, err := NewAssigner(10 * time.Minute)
	require.NoError(t, err)

	a.AssignWindows("a", baseTime)
	a.AssignWindows("b", baseTime.Add(5*time.Minute))

	require.Len(t, a.OpenSessions("a"), 1)
	require.Len(t, a.OpenSessions("b"), 1)
	assert.True(t, a.OpenSessions("a")[0].Start.Equal(baseTime))
	assert.True(t, a.OpenSessions("b")[0].Start.Equal(baseTime.Add(5*time.Minute)))
}

func TestInsertAndRemoveWindow(t *testing.T) {
	a, err := NewAssigner(10 * time.Minute)
	require.NoError(t, err)

	recovered := window.ID{Key: "k", Start: baseTime, End: baseTime.Add(10 * time.Minute)}
	a.InsertWindow(recovered)
	require.Len(t, a.OpenSessions("k"), 1)

	// a follow-up event extends the recovered session
	got := a.AssignWindows("k", baseTime.Add(5*time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, window.OpExpand, got[0].Op)

	a.RemoveWindow(got[0].Window)
	assert.Empty(t, a.OpenSessions("k"))

	// after removal the same key starts fresh
	got = a.AssignWindows("k", baseTime.Add(6*time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, window.OpAssign, got[0].Op)
}
