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

// Package memory provides an in-memory state store. It survives nothing,
// which makes it the default for tests and for pipelines that can afford to
// lose in-flight windows on restart.
package memory

import (
	"sync"

	"github.com/orielstream/oriel/pkg/state"
)

type memoryStore struct {
	mu      sync.RWMutex
	closed  bool
	entries map[string][]byte
}

var _ state.Store = (*memoryStore)(nil)

// NewStore returns an empty in-memory store.
func NewStore() state.Store {
	return &memoryStore{
		entries: make(map[string][]byte),
	}
}

func (m *memoryStore) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, state.ErrClosed
	}
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *memoryStore) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return state.ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.entries[key] = v
	return nil
}

func (m *memoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return state.ErrClosed
	}
	delete(m.entries, key)
	return nil
}

func (m *memoryStore) ContainsKey(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, state.ErrClosed
	}
	_, ok := m.entries[key]
	return ok, nil
}

func (m *memoryStore) GetAll() (<-chan state.Entry, <-chan error) {
	entryCh := make(chan state.Entry)
	errCh := make(chan error, 1)

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		errCh <- state.ErrClosed
		close(entryCh)
		close(errCh)
		return entryCh, errCh
	}
	snapshot := make([]state.Entry, 0, len(m.entries))
	for k, v := range m.entries {
		value := make([]byte, len(v))
		copy(value, v)
		snapshot = append(snapshot, state.Entry{Key: k, Value: value})
	}
	m.mu.RUnlock()

	go func() {
		for _, e := range snapshot {
			entryCh <- e
		}
		close(entryCh)
		close(errCh)
	}()
	return entryCh, errCh
}

func (m *memoryStore) GetKeys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, state.ErrClosed
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *memoryStore) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}
