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
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/orielstream/oriel/pkg/event"
	"github.com/orielstream/oriel/pkg/shared/logging"
	"github.com/orielstream/oriel/pkg/state/memory"
	"github.com/orielstream/oriel/pkg/window"
)

// Engine groups a keyed, unbounded event stream into windows and decides,
// via the configured trigger and state mode, when and what to emit
// downstream. One Engine backs one window operator registration.
//
// All state is scoped to the Engine instance; per-key ordering is enforced
// through one mailbox per key while distinct keys run fully in parallel.
type Engine struct {
	name     string
	assigner window.Assigner
	opts     *options
	results  chan Result
	// purged remembers recently purged window identities so late arrivals
	// for them are classified as drops instead of opening fresh windows
	purged *lru.Cache[string, time.Time]

	mu      sync.Mutex
	started bool
	closed  bool

	amu    sync.RWMutex
	actors map[string]*actor

	runCtx      context.Context
	runCancel   context.CancelFunc
	clockCancel context.CancelFunc
	wg          sync.WaitGroup
	log         *zap.SugaredLogger
}

// New returns a configured engine. Invalid configuration is rejected here,
// before any stream is started.
func New(assigner window.Assigner, opts ...Option) (*Engine, error) {
	if assigner == nil {
		return nil, &ConfigurationError{Reason: "window assigner must not be nil"}
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			if err := opt(o); err != nil {
				return nil, &ConfigurationError{Reason: err.Error()}
			}
		}
	}
	if o.store == nil {
		o.store = memory.NewStore()
	}
	if o.name == "" {
		o.name = "window-engine-" + uuid.NewString()[:8]
	}
	purged, err := lru.New[string, time.Time](o.purgedCacheSize)
	if err != nil {
		return nil, &ConfigurationError{Reason: err.Error()}
	}
	return &Engine{
		name:     o.name,
		assigner: assigner,
		opts:     o,
		results:  make(chan Result, o.resultBufferSize),
		purged:   purged,
		actors:   make(map[string]*actor),
	}, nil
}

// Start reconstructs in-flight windows from the state store and starts the
// processing-time clock. It must be called once before Ingest.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return fmt.Errorf("engine %s already started", e.name)
	}

	e.log = logging.FromContext(ctx).With("engine", e.name)
	e.runCtx, e.runCancel = context.WithCancel(ctx)
	var clockCtx context.Context
	clockCtx, e.clockCancel = context.WithCancel(e.runCtx)

	if err := e.recover(); err != nil {
		e.runCancel()
		return err
	}

	e.wg.Add(1)
	go e.runClock(clockCtx)
	e.started = true
	return nil
}

// Ingest routes one event through window assignment, the owning instances'
// trigger evaluation and emission. Trigger and store failures for the
// event's key are returned synchronously.
func (e *Engine) Ingest(ctx context.Context, ev event.Event) error {
	if err := e.ready(); err != nil {
		return err
	}
	key := e.opts.keySelector(ev)
	return e.actorFor(key).do(ctx, &op{kind: opIngest, ev: ev, errCh: make(chan error, 1)})
}

// Tick evaluates processing-time triggers on every live instance and runs
// the purge sweep. The internal clock calls it periodically; tests may call
// it directly with a synthetic now.
func (e *Engine) Tick(ctx context.Context, now time.Time) error {
	if err := e.ready(); err != nil {
		return err
	}
	e.amu.RLock()
	actors := make([]*actor, 0, len(e.actors))
	for _, a := range e.actors {
		actors = append(actors, a)
	}
	e.amu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, a := range actors {
		a := a
		g.Go(func() error {
			return a.do(gctx, &op{kind: opTick, now: now, errCh: make(chan error, 1)})
		})
	}
	return g.Wait()
}

// Results returns the downstream channel of window results. The channel is
// closed by Close once all actors have drained.
func (e *Engine) Results() <-chan Result {
	return e.results
}

// Close stops the clock, cooperatively cancels in-flight work, and disposes
// the state store. No partial window state is written after Close returns.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if !e.started || e.closed {
		e.mu.Unlock()
		return nil
	}
	// stop scheduling new ticks before refusing new ingests
	e.clockCancel()
	e.closed = true
	e.mu.Unlock()

	e.runCancel()
	e.wg.Wait()
	close(e.results)

	// dispose may race with a slow backend flush, retry briefly
	var disposeBackoff = wait.Backoff{
		Steps:    5,
		Duration: 100 * time.Millisecond,
		Factor:   2,
		Jitter:   0.1,
	}
	var disposeErr error
	err := wait.ExponentialBackoff(disposeBackoff, func() (bool, error) {
		if disposeErr = e.opts.store.Dispose(); disposeErr != nil {
			e.log.Errorw("Failed to dispose state store, retrying", zap.Error(disposeErr))
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		if disposeErr != nil {
			return &StateStoreError{Op: "dispose", Key: "", Err: disposeErr}
		}
		return err
	}
	e.log.Infow("Window engine closed")
	return nil
}

func (e *Engine) ready() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return fmt.Errorf("engine %s not started", e.name)
	}
	if e.closed {
		return fmt.Errorf("engine %s is closed", e.name)
	}
	return nil
}

func (e *Engine) labels() map[string]string {
	return map[string]string{labelEngine: e.name}
}

func (e *Engine) actorFor(key string) *actor {
	e.amu.RLock()
	a, ok := e.actors[key]
	e.amu.RUnlock()
	if ok {
		return a
	}

	e.amu.Lock()
	defer e.amu.Unlock()
	if a, ok = e.actors[key]; ok {
		return a
	}
	a = &actor{
		key:       key,
		e:         e,
		mailbox:   make(chan *op),
		instances: make(map[string]*instance),
		log:       e.log.With("key", key),
	}
	e.actors[key] = a
	e.wg.Add(1)
	go a.run(e.runCtx)
	return a
}

// recover rebuilds in-flight window instances from the state store so the
// engine tolerates a process restart.
func (e *Engine) recover() error {
	entries, errCh := e.opts.store.GetAll()
	recovered := 0
	for entry := range entries {
		inst, err := instanceFromSnapshot(entry.Value)
		if err != nil {
			e.log.Errorw("Skipping unreadable window snapshot",
				zap.String("storeKey", entry.Key), zap.Error(err))
			continue
		}
		act := e.actorFor(inst.id.Key)
		act.instances[inst.id.String()] = inst
		if sa, ok := e.assigner.(window.StatefulAssigner); ok {
			sa.InsertWindow(inst.id)
		}
		activeWindowCount.With(e.labels()).Inc()
		recovered++
	}
	if err := <-errCh; err != nil {
		return &StateStoreError{Op: "getAll", Key: "", Err: err}
	}
	if recovered > 0 {
		e.log.Infow("Recovered in-flight windows from state store", zap.Int("count", recovered))
	}
	return nil
}
