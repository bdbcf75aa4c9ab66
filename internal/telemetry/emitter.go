// Package telemetry records combat events for the arena activity feed.
package telemetry

import (
	"context"
	"time"

	"github.com/louisbranch/ironarena/internal/services/arena/storage"
)

// Emitter records combat telemetry events.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// WithClock overrides the emitter clock. Tests use it to pin timestamps.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	if e == nil {
		return nil
	}
	e.clock = clock
	return e
}

// Emit records a combat event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, event storage.CombatEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		if e.clock == nil {
			event.OccurredAt = time.Now().UTC()
		} else {
			event.OccurredAt = e.clock().UTC()
		}
	}
	return e.store.AppendCombatEvent(ctx, event)
}
