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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// emit materializes the item set for one trigger firing per the configured
// state mode and hands the result(s) downstream. In retracting mode the
// retraction of the previous emission strictly precedes the new emission;
// the two are sequential handoffs, not an atomic batch.
//
// The actor hands off synchronously, so there is never more than one
// in-flight emission per window instance.
func (a *actor) emit(ctx context.Context, inst *instance, typ EmissionType, isFinal bool, now time.Time) error {
	// a fire with nothing new to say is a no-op; closure and late reopens
	// always emit
	if !isFinal && typ != Late && inst.sinceLast == 0 {
		return nil
	}

	if a.e.opts.stateMode == AccumulatingAndRetracting && len(inst.lastEmitted) > 0 {
		retraction := Result{
			Key:       inst.id.Key,
			Start:     inst.id.Start,
			End:       inst.id.End,
			Items:     inst.lastEmitted,
			Type:      Retraction,
			EmittedAt: now,
			Sequence:  inst.nextSeq(),
		}
		if err := a.send(ctx, retraction); err != nil {
			return err
		}
	}

	items := inst.emissionItems()
	r := Result{
		Key:       inst.id.Key,
		Start:     inst.id.Start,
		End:       inst.id.End,
		Items:     items,
		Type:      typ,
		IsFinal:   isFinal,
		EmittedAt: now,
		Sequence:  inst.nextSeq(),
	}
	if err := a.send(ctx, r); err != nil {
		return err
	}
	inst.afterEmission(a.e.opts.stateMode, items, isFinal)
	return nil
}

func (a *actor) send(ctx context.Context, r Result) error {
	select {
	case a.e.results <- r:
		emissionsTotal.With(prometheus.Labels{
			labelEngine:       a.e.name,
			labelEmissionType: r.Type.String(),
		}).Inc()
		resultChannelSize.With(a.e.labels()).Set(float64(len(a.e.results)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.e.runCtx.Done():
		return a.e.runCtx.Err()
	}
}
