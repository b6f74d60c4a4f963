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

package engine

import (
	"fmt"

	"github.com/orielstream/oriel/pkg/window"
)

// ConfigurationError reports an invalid engine configuration. It is returned
// from New and prevents the engine from being constructed.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "invalid window configuration: " + e.Reason
}

// TriggerEvaluationError wraps an error returned by a custom trigger
// callback. It is fatal for the owning window instance and is surfaced
// synchronously to the Ingest or Tick caller.
type TriggerEvaluationError struct {
	Window window.ID
	Err    error
}

func (e *TriggerEvaluationError) Error() string {
	return fmt.Sprintf("trigger evaluation failed for window %s: %v", e.Window, e.Err)
}

func (e *TriggerEvaluationError) Unwrap() error {
	return e.Err
}

// StateStoreError wraps a backend I/O failure. The engine never retries;
// retry policy belongs to the store implementation or the surrounding
// runtime.
type StateStoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StateStoreError) Error() string {
	return fmt.Sprintf("state store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StateStoreError) Unwrap() error {
	return e.Err
}
