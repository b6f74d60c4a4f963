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

// Package event holds the element type that flows through the window engine.
package event

import "time"

// Event is a single keyed element of the stream. Events are immutable once
// created; the engine never mutates an Event after ingesting it. Arrival
// order is preserved per key.
type Event struct {
	// Key is the partition key of the element.
	Key string `json:"key"`
	// Timestamp is the event time used for window assignment.
	Timestamp time.Time `json:"timestamp"`
	// Payload is the opaque element body.
	Payload []byte `json:"payload,omitempty"`
}

// KeySelector extracts the partition key from an event.
type KeySelector func(Event) string

// TimestampSelector extracts the event time from an event.
type TimestampSelector func(Event) time.Time

// DefaultKeySelector returns the event's own key.
func DefaultKeySelector(e Event) string {
	return e.Key
}

// DefaultTimestampSelector returns the event's own timestamp.
func DefaultTimestampSelector(e Event) time.Time {
	return e.Timestamp
}
