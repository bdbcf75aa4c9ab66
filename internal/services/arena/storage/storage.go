// Package storage defines persistence contracts for arena service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
)

// CombatEvent stores one resolved combat outcome for the telemetry feed.
type CombatEvent struct {
	ID         int64
	Kind       string
	Attacker   string
	Victim     string
	Damage     uint16
	Hits       int
	Fatal      bool
	OccurredAt time.Time
}

// Combat event kinds.
const (
	EventKindAttack  = "attack"
	EventKindKill    = "kill"
	EventKindRespawn = "respawn"
)

// PlayerStore persists encoded player records keyed by identity.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, player record.Player) error
	GetPlayer(ctx context.Context, id record.Identity) (record.Player, error)
	UpdatePlayer(ctx context.Context, player record.Player) error

	// Raw variants operate on the stored byte image without decoding, so
	// legacy-layout records survive until they are explicitly migrated.
	GetPlayerRaw(ctx context.Context, id record.Identity) ([]byte, error)
	PutPlayerRaw(ctx context.Context, id record.Identity, data []byte) error
}

// ArenaStore persists the singleton arena record.
type ArenaStore interface {
	CreateArena(ctx context.Context, arena record.Arena) error
	GetArena(ctx context.Context) (record.Arena, error)
	UpdateArena(ctx context.Context, arena record.Arena) error
}

// TelemetryStore persists combat events.
type TelemetryStore interface {
	AppendCombatEvent(ctx context.Context, event CombatEvent) error
	ListCombatEvents(ctx context.Context, limit int) ([]CombatEvent, error)
}

// CombatWrite bundles the records mutated by one resolved attack.
type CombatWrite struct {
	Attacker record.Player
	Victim   record.Player
	Arena    record.Arena
	Event    CombatEvent
}

// Store is the full persistence surface the arena service depends on.
// ApplyCombat commits all records from one attack in a single transaction,
// so a failure leaves every participant untouched.
type Store interface {
	PlayerStore
	ArenaStore
	TelemetryStore
	ApplyCombat(ctx context.Context, write CombatWrite) error
	Close() error
}
