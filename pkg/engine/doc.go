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

// Package engine implements the window/trigger engine: it owns the
// per-(key, window) lifecycle from Open through Closed to Purged, evaluates
// the configured trigger on element arrival and on processing-time ticks,
// materializes emissions per the configured state mode, reconciles late
// data within allowed lateness, and persists every instance through the
// pluggable state store so in-flight windows survive restarts.
//
// Events enter through Ingest, are assigned to windows by the configured
// assigner and serialized per key through a mailbox; the internal clock
// drives time-based firings and the purge sweep. Emitted results leave the
// engine on the bounded Results channel, retractions strictly preceding the
// emissions that replace them.
package engine
