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

import "encoding/json"

// Context is the scratch state a trigger may keep per window instance.
// Values are stored JSON-encoded so the whole context can be snapshotted
// into the state store and restored after a restart.
//
// A Context is owned by exactly one window instance and is only touched from
// that instance's serialization point, so it needs no internal locking.
type Context struct {
	prefix string
	values map[string]json.RawMessage
}

// NewContext returns an empty trigger context.
func NewContext() *Context {
	return &Context{values: make(map[string]json.RawMessage)}
}

// Scoped returns a view of the context whose keys are namespaced under the
// given prefix. Composite triggers use it to isolate their children's state.
func (c *Context) Scoped(prefix string) *Context {
	return &Context{
		prefix: c.prefix + prefix + "/",
		values: c.values,
	}
}

// SetState stores a value under the key.
func (c *Context) SetState(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.values[c.prefix+key] = raw
	return nil
}

// GetState loads the value stored under the key into out. It returns false
// when no value is stored.
func (c *Context) GetState(key string, out any) (bool, error) {
	raw, ok := c.values[c.prefix+key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// ClearState removes the value stored under the key.
func (c *Context) ClearState(key string) {
	delete(c.values, c.prefix+key)
}

// Reset drops all state in the context (and in every scoped view of it).
func (c *Context) Reset() {
	for k := range c.values {
		delete(c.values, k)
	}
}

// Snapshot serializes the full context for persistence.
func (c *Context) Snapshot() ([]byte, error) {
	return json.Marshal(c.values)
}

// Restore replaces the context contents with a previously taken snapshot.
func (c *Context) Restore(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	c.values = values
	return nil
}
