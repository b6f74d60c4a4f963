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
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// runClock drives the two periodic activities of the engine: evaluating
// processing-time triggers and window closures on every live instance, and
// sweeping closed windows into purged once allowed lateness elapses.
//
// The tick interval trades timer overhead against trigger and closure
// latency; it is configurable via WithTickInterval and defaults to 100ms.
func (e *Engine) runClock(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.opts.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Tick(ctx, e.opts.clock()); err != nil && !errors.Is(err, context.Canceled) {
				e.log.Errorw("Processing-time tick failed", zap.Error(err))
			}
		}
	}
}
