// Package record defines the versioned arena records, their wire codec, and
// the legacy-layout schema migrator.
package record

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/louisbranch/ironarena/internal/services/arena/domain/talent"
)

// Registration defaults.
const (
	BaseHealth uint16 = 100
	BaseAttack uint16 = 10
	BaseTier   uint8  = 1
)

// IdentityLen is the fixed byte length of a player identity.
const IdentityLen = 32

// Identity is the opaque unique key of a player record.
type Identity [IdentityLen]byte

// IdentityFromKey derives a stable identity from an external key string.
func IdentityFromKey(key string) Identity {
	return Identity(sha256.Sum256([]byte(key)))
}

// ParseIdentity decodes a hex-encoded identity.
func ParseIdentity(value string) (Identity, bool) {
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != IdentityLen {
		return Identity{}, false
	}
	var id Identity
	copy(id[:], raw)
	return id, true
}

// String returns the hex encoding of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// Player is the per-participant combat record. It is mutated in place by
// validated transitions and never deleted, only reset or schema-migrated.
type Player struct {
	Identity    Identity
	Health      uint16
	MaxHealth   uint16
	AttackPower uint16
	XP          uint64
	Kills       uint64
	Deaths      uint64
	HealthTier  uint8
	AttackTier  uint8
	Alive       bool
	RespawnAt   int64 // unix seconds; zero when alive
	Initialized bool
	Talents     talent.Ranks
	ManualBuild bool
}

// NewPlayer returns a registered record at registration defaults.
func NewPlayer(id Identity) Player {
	player := Player{Identity: id}
	player.ResetStats()
	player.Initialized = true
	return player
}

// ResetStats restores every stat, tier, and talent to registration defaults.
// Identity and Initialized are untouched.
func (p *Player) ResetStats() {
	p.Health = BaseHealth
	p.MaxHealth = BaseHealth
	p.AttackPower = BaseAttack
	p.XP = 0
	p.Kills = 0
	p.Deaths = 0
	p.HealthTier = BaseTier
	p.AttackTier = BaseTier
	p.Alive = true
	p.RespawnAt = 0
	p.Talents = talent.ResetRanks()
	p.ManualBuild = false
}

// Arena is the singleton per-arena counter record.
type Arena struct {
	Authority   Identity
	PlayerCount uint32
	TotalKills  uint64
	Active      bool
}

// NewArena returns an active arena owned by the given authority.
func NewArena(authority Identity) Arena {
	return Arena{Authority: authority, Active: true}
}
