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

package tumbling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orielstream/oriel/pkg/window"
)

func TestTumbling_AssignWindows(t *testing.T) {
	baseTime := time.Unix(1651129201, 0).UTC()

	tests := []struct {
		name      string
		length    time.Duration
		eventTime time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "minute",
			length:    time.Minute,
			eventTime: baseTime,
			wantStart: time.Unix(1651129200, 0).UTC(),
			wantEnd:   time.Unix(1651129260, 0).UTC(),
		},
		{
			name:      "hour",
			length:    time.Hour,
			eventTime: baseTime,
			wantStart: time.Unix(1651129200, 0).UTC(),
			wantEnd:   time.Unix(1651129200+3600, 0).UTC(),
		},
		{
			name:      "5_minute",
			length:    5 * time.Minute,
			eventTime: baseTime,
			wantStart: time.Unix(1651129200, 0).UTC(),
			wantEnd:   time.Unix(1651129200+300, 0).UTC(),
		},
		{
			name:      "boundary_goes_right",
			length:    time.Minute,
			eventTime: time.Unix(1651129200, 0).UTC(),
			wantStart: time.Unix(1651129200, 0).UTC(),
			wantEnd:   time.Unix(1651129260, 0).UTC(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewTumbling(tt.length)
			require.NoError(t, err)
			got := f.AssignWindows("key-1", tt.eventTime)
			require.Len(t, got, 1)
			assert.Equal(t, window.OpAssign, got[0].Op)
			assert.True(t, got[0].Window.Start.Equal(tt.wantStart), "start %v, want %v", got[0].Window.Start, tt.wantStart)
			assert.True(t, got[0].Window.End.Equal(tt.wantEnd), "end %v, want %v", got[0].Window.End, tt.wantEnd)
			assert.Equal(t, "key-1", got[0].Window.Key)
		})
	}
}

func TestNewTumbling_Validation(t *testing.T) {
	_, err := NewTumbling(0)
	assert.Error(t, err)
	_, err = NewTumbling(-time.Minute)
	assert.Error(t, err)
}
