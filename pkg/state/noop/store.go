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

// Package noop provides a state store that persists nothing. Recovery over
// a noop store yields no windows.
package noop

import "github.com/orielstream/oriel/pkg/state"

type noopStore struct{}

var _ state.Store = (*noopStore)(nil)

// NewStore returns a store that discards every write.
func NewStore() state.Store {
	return &noopStore{}
}

func (n *noopStore) Get(string) ([]byte, bool, error) { return nil, false, nil }

func (n *noopStore) Put(string, []byte) error { return nil }

func (n *noopStore) Remove(string) error { return nil }

func (n *noopStore) ContainsKey(string) (bool, error) { return false, nil }

func (n *noopStore) GetAll() (<-chan state.Entry, <-chan error) {
	entryCh := make(chan state.Entry)
	errCh := make(chan error, 1)
	close(entryCh)
	close(errCh)
	return entryCh, errCh
}

func (n *noopStore) GetKeys() ([]string, error) { return nil, nil }

func (n *noopStore) Dispose() error { return nil }
