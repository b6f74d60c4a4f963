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

// Package state defines the durable key-value contract the window engine
// persists window instances through. Backends are pluggable; the engine
// treats the store as a durable map from window identity to serialized
// window snapshot and reconstructs in-flight windows from it on startup.
package state

import "errors"

// ErrClosed is returned for operations on a disposed store.
var ErrClosed = errors.New("state store is closed")

// Entry is one (key, value) pair streamed out of GetAll.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the durable state contract consumed by the engine. The engine
// never retries failed operations; retry and backoff policy belongs to the
// backend or the surrounding runtime.
type Store interface {
	// Get returns the value stored under the key, and whether it was found.
	Get(key string) ([]byte, bool, error)
	// Put stores the value under the key, replacing any previous value.
	Put(key string, value []byte) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
	// ContainsKey reports whether the key is present.
	ContainsKey(key string) (bool, error)
	// GetAll streams every entry in the store. The entry channel is closed
	// once all entries have been delivered; the error channel carries at
	// most one error.
	GetAll() (<-chan Entry, <-chan error)
	// GetKeys returns every key in the store.
	GetKeys() ([]string, error)
	// Dispose releases the store. The store must not be used afterwards.
	Dispose() error
}
