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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listBase = time.Unix(1651129200, 0).UTC()

func id(startOffset, endOffset time.Duration) ID {
	return ID{Key: "test", Start: listBase.Add(startOffset), End: listBase.Add(endOffset)}
}

func TestSortedListInsertOrdering(t *testing.T) {
	l := NewSortedList()

	assert.True(t, l.Insert(id(2*time.Minute, 3*time.Minute)))
	assert.True(t, l.Insert(id(0, time.Minute)))
	assert.True(t, l.Insert(id(time.Minute, 2*time.Minute)))
	// duplicate identity is rejected
	assert.False(t, l.Insert(id(0, time.Minute)))

	items := l.Items()
	require.Len(t, items, 3)
	assert.Equal(t, id(0, time.Minute), items[0])
	assert.Equal(t, id(time.Minute, 2*time.Minute), items[1])
	assert.Equal(t, id(2*time.Minute, 3*time.Minute), items[2])

	front, ok := l.Front()
	require.True(t, ok)
	assert.Equal(t, id(0, time.Minute), front)
}

func TestSortedListRemove(t *testing.T) {
	l := NewSortedList()
	l.Insert(id(0, time.Minute))
	l.Insert(id(time.Minute, 2*time.Minute))

	assert.True(t, l.Remove(id(0, time.Minute)))
	assert.False(t, l.Remove(id(0, time.Minute)))
	assert.Equal(t, 1, l.Len())
}

func TestSortedListOverlapping(t *testing.T) {
	l := NewSortedList()
	l.Insert(id(0, 10*time.Minute))
	l.Insert(id(20*time.Minute, 30*time.Minute))
	l.Insert(id(60*time.Minute, 70*time.Minute))

	tests := []struct {
		name  string
		probe ID
		want  int
	}{
		{name: "spans_two", probe: id(5*time.Minute, 25*time.Minute), want: 2},
		{name: "touching_counts", probe: id(10*time.Minute, 15*time.Minute), want: 1},
		{name: "gap", probe: id(40*time.Minute, 50*time.Minute), want: 0},
		{name: "all", probe: id(0, 70*time.Minute), want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, l.Overlapping(tt.probe), tt.want)
		})
	}
}
