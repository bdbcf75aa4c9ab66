// Package ws exposes the arena operations over a JSON WebSocket protocol.
// Every frame is an envelope with a type tag and a raw payload; replies reuse
// the request type, failures come back as "error" frames.
package ws

import (
	"encoding/json"

	"github.com/louisbranch/ironarena/internal/services/arena/domain/progression"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/storage"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Command types.
const (
	TypeRegister       = "register"
	TypeAttack         = "attack"
	TypeRespawn        = "respawn"
	TypeUpgrade        = "upgrade"
	TypeAllocateTalent = "allocate_talent"
	TypeResetTalents   = "reset_talents"
	TypeResetPlayer    = "reset_player"
	TypeState          = "state"
	TypeError          = "error"
)

// RegisterRequest creates a player record for a client key.
type RegisterRequest struct {
	Key string `json:"key"`
}

// RegisterResponse returns the new record and a session token.
type RegisterResponse struct {
	Player PlayerView `json:"player"`
	Token  string     `json:"token"`
}

// AttackRequest prices a volley of landed hits against a victim.
type AttackRequest struct {
	Token  string `json:"token"`
	Victim string `json:"victim"`
	Hits   int    `json:"hits"`
}

// AttackResponse reports the resolved volley.
type AttackResponse struct {
	Damage    uint16 `json:"damage"`
	Fatal     bool   `json:"fatal"`
	XPAwarded uint64 `json:"xp_awarded"`
}

// SessionRequest is the shared shape for single-player commands.
type SessionRequest struct {
	Token string `json:"token"`
}

// UpgradeRequest spends XP on one stat tier.
type UpgradeRequest struct {
	Token string `json:"token"`
	Stat  string `json:"stat"`
}

// AllocateTalentRequest spends one talent point.
type AllocateTalentRequest struct {
	Token string `json:"token"`
	Slot  int    `json:"slot"`
}

// PlayerResponse returns the record after a lifecycle command.
type PlayerResponse struct {
	Player PlayerView `json:"player"`
}

// StateResponse returns the caller's record, the arena, and the recent feed.
type StateResponse struct {
	Player PlayerView  `json:"player"`
	Arena  ArenaView   `json:"arena"`
	Events []EventView `json:"events"`
}

// ErrorResponse is the payload of an "error" frame.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// PlayerView is the wire shape of a player record.
type PlayerView struct {
	Identity     string  `json:"identity"`
	Health       uint16  `json:"health"`
	MaxHealth    uint16  `json:"max_health"`
	AttackPower  uint16  `json:"attack_power"`
	XP           uint64  `json:"xp"`
	Kills        uint64  `json:"kills"`
	Deaths       uint64  `json:"deaths"`
	HealthTier   uint8   `json:"health_tier"`
	AttackTier   uint8   `json:"attack_tier"`
	Alive        bool    `json:"alive"`
	RespawnAt    int64   `json:"respawn_at,omitempty"`
	Level        int     `json:"level"`
	TalentPoints int     `json:"talent_points"`
	Talents      []uint8 `json:"talents"`
	ManualBuild  bool    `json:"manual_build"`
}

// ArenaView is the wire shape of the arena record.
type ArenaView struct {
	Authority   string `json:"authority"`
	PlayerCount uint32 `json:"player_count"`
	TotalKills  uint64 `json:"total_kills"`
	Active      bool   `json:"active"`
}

// EventView is the wire shape of one combat feed entry.
type EventView struct {
	Kind       string `json:"kind"`
	Attacker   string `json:"attacker"`
	Victim     string `json:"victim,omitempty"`
	Damage     uint16 `json:"damage,omitempty"`
	Hits       int    `json:"hits,omitempty"`
	Fatal      bool   `json:"fatal,omitempty"`
	OccurredAt int64  `json:"occurred_at"`
}

func toPlayerView(p record.Player) PlayerView {
	level := progression.LevelForXP(p.XP)
	return PlayerView{
		Identity:     p.Identity.String(),
		Health:       p.Health,
		MaxHealth:    p.MaxHealth,
		AttackPower:  p.AttackPower,
		XP:           p.XP,
		Kills:        p.Kills,
		Deaths:       p.Deaths,
		HealthTier:   p.HealthTier,
		AttackTier:   p.AttackTier,
		Alive:        p.Alive,
		RespawnAt:    p.RespawnAt,
		Level:        level,
		TalentPoints: progression.TalentPointsForLevel(level),
		Talents:      p.Talents[:],
		ManualBuild:  p.ManualBuild,
	}
}

func toArenaView(a record.Arena) ArenaView {
	return ArenaView{
		Authority:   a.Authority.String(),
		PlayerCount: a.PlayerCount,
		TotalKills:  a.TotalKills,
		Active:      a.Active,
	}
}

func toEventViews(events []storage.CombatEvent) []EventView {
	views := make([]EventView, 0, len(events))
	for _, event := range events {
		views = append(views, EventView{
			Kind:       event.Kind,
			Attacker:   event.Attacker,
			Victim:     event.Victim,
			Damage:     event.Damage,
			Hits:       event.Hits,
			Fatal:      event.Fatal,
			OccurredAt: event.OccurredAt.Unix(),
		})
	}
	return views
}
