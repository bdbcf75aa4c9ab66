// Package app orchestrates arena state transitions over the storage layer.
// Every operation follows the same shape: load the records it touches, run
// the pure domain rules on copies, and persist only when every check passed.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/combat"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/progression"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/talent"
	"github.com/louisbranch/ironarena/internal/services/arena/storage"
	"github.com/louisbranch/ironarena/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// RespawnDelaySeconds is the mandatory wait after dying.
	RespawnDelaySeconds = 5

	upgradeBaseCost    = 100
	upgradeCostPerTier = 50
	healthPerTier      = 10
	attackPerTier      = 5
)

// StatKind selects which tier an upgrade targets.
type StatKind string

const (
	StatHealth StatKind = "health"
	StatAttack StatKind = "attack"
)

// AttackResult reports one resolved attack back to the caller.
type AttackResult struct {
	Damage    uint16
	Fatal     bool
	XPAwarded uint64
}

// Service exposes every arena operation. The clock is injected so respawn
// timing is testable without sleeping.
type Service struct {
	store   storage.Store
	emitter *telemetry.Emitter
	clock   func() time.Time
	tracer  trace.Tracer
}

// NewService creates an arena service over the given store.
func NewService(store storage.Store, emitter *telemetry.Emitter) *Service {
	return &Service{
		store:   store,
		emitter: emitter,
		clock:   time.Now,
		tracer:  otel.Tracer("github.com/louisbranch/ironarena/internal/services/arena/app"),
	}
}

// WithClock overrides the service clock. Tests use it to pin respawn timing.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if s == nil {
		return nil
	}
	s.clock = clock
	return s
}

func (s *Service) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock()
}

func (s *Service) span(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

// InitArena creates the singleton arena owned by the given authority.
func (s *Service) InitArena(ctx context.Context, authority record.Identity) (record.Arena, error) {
	ctx, span := s.span(ctx, "arena.init_arena")
	defer span.End()

	arena := record.NewArena(authority)
	if err := s.store.CreateArena(ctx, arena); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return record.Arena{}, apperrors.New(apperrors.CodeArenaExists, "arena is already initialized")
		}
		return record.Arena{}, apperrors.Wrap(apperrors.CodeUnknown, "create arena", err)
	}
	return arena, nil
}

// RegisterPlayer creates a player record at registration defaults and counts
// it into the arena.
func (s *Service) RegisterPlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.register_player")
	defer span.End()

	arena, err := s.loadArena(ctx)
	if err != nil {
		return record.Player{}, err
	}

	player := record.NewPlayer(id)
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return record.Player{}, apperrors.WithMetadata(
				apperrors.CodePlayerExists,
				fmt.Sprintf("player %s is already registered", id),
				map[string]string{"Identity": id.String()},
			)
		}
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "create player", err)
	}

	arena.PlayerCount++
	if err := s.store.UpdateArena(ctx, arena); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "count player into arena", err)
	}
	return player, nil
}

// GetPlayer returns one player record.
func (s *Service) GetPlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.get_player")
	defer span.End()
	return s.loadPlayer(ctx, id)
}

// GetArena returns the arena record.
func (s *Service) GetArena(ctx context.Context) (record.Arena, error) {
	ctx, span := s.span(ctx, "arena.get_arena")
	defer span.End()
	return s.loadArena(ctx)
}

// RecentEvents returns the newest combat events for the activity feed.
func (s *Service) RecentEvents(ctx context.Context, limit int) ([]storage.CombatEvent, error) {
	ctx, span := s.span(ctx, "arena.recent_events")
	defer span.End()
	return s.store.ListCombatEvents(ctx, limit)
}

// Attack resolves a volley of hits from attacker to victim and commits the
// outcome. On a kill the victim is downed with a respawn cooldown and the
// attacker collects the kill reward.
func (s *Service) Attack(ctx context.Context, attackerID, victimID record.Identity, hits int) (AttackResult, error) {
	ctx, span := s.span(ctx, "arena.attack")
	defer span.End()

	if attackerID == victimID {
		return AttackResult{}, apperrors.New(apperrors.CodeCombatSelfAttack, "a player cannot attack itself")
	}

	attacker, err := s.loadPlayer(ctx, attackerID)
	if err != nil {
		return AttackResult{}, err
	}
	victim, err := s.loadPlayer(ctx, victimID)
	if err != nil {
		return AttackResult{}, err
	}
	arena, err := s.loadArena(ctx)
	if err != nil {
		return AttackResult{}, err
	}

	if !attacker.Initialized || !victim.Initialized {
		return AttackResult{}, apperrors.New(apperrors.CodeCombatNotInitialized, "both combatants must be initialized")
	}
	if !attacker.Alive {
		return AttackResult{}, apperrors.New(apperrors.CodeCombatAttackerDead, "attacker is dead")
	}
	if !victim.Alive {
		return AttackResult{}, apperrors.New(apperrors.CodeCombatVictimDead, "victim is already dead")
	}
	if !arena.Active {
		return AttackResult{}, apperrors.New(apperrors.CodeCombatArenaInactive, "arena is not active")
	}

	total, err := combat.ResolveVolley(&attacker, &victim, hits)
	if err != nil {
		return AttackResult{}, err
	}

	result := AttackResult{Damage: total}
	event := storage.CombatEvent{
		Kind:       storage.EventKindAttack,
		Attacker:   attackerID.String(),
		Victim:     victimID.String(),
		Damage:     total,
		Hits:       hits,
		OccurredAt: s.now().UTC(),
	}

	if total >= victim.Health {
		result.Fatal = true
		event.Kind = storage.EventKindKill
		event.Fatal = true

		// Reward scaling reads the victim's level before the death award.
		victimLevel := combat.VictimLevel(&victim)

		victim.Health = 0
		victim.Alive = false
		victim.Deaths++
		victim.XP += combat.DeathXP
		victim.RespawnAt = s.now().Unix() + RespawnDelaySeconds

		reward := combat.KillReward(&attacker, victimLevel)
		attacker.Kills++
		attacker.XP += reward
		level := progression.LevelForXP(attacker.XP)
		attacker.HealthTier = uint8(level)
		attacker.AttackTier = uint8(level)
		result.XPAwarded = reward

		arena.TotalKills++
	} else {
		victim.Health -= total
	}

	write := storage.CombatWrite{
		Attacker: attacker,
		Victim:   victim,
		Arena:    arena,
		Event:    event,
	}
	if err := s.store.ApplyCombat(ctx, write); err != nil {
		return AttackResult{}, apperrors.Wrap(apperrors.CodeUnknown, "commit attack", err)
	}
	return result, nil
}

// Respawn revives a downed player once the cooldown has elapsed. The revived
// health bar bakes in the current max-health talent bonus.
func (s *Service) Respawn(ctx context.Context, id record.Identity) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.respawn")
	defer span.End()

	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return record.Player{}, err
	}
	if !player.Initialized {
		return record.Player{}, apperrors.New(apperrors.CodeCombatNotInitialized, "player is not initialized")
	}
	if player.Alive {
		return record.Player{}, apperrors.New(apperrors.CodeRespawnAlreadyAlive, "player is already alive")
	}
	now := s.now().Unix()
	if now < player.RespawnAt {
		return record.Player{}, apperrors.WithMetadata(
			apperrors.CodeRespawnCooldown,
			fmt.Sprintf("respawn available in %d seconds", player.RespawnAt-now),
			map[string]string{"Seconds": fmt.Sprintf("%d", player.RespawnAt-now)},
		)
	}

	effMax := combat.EffectiveMaxHealth(&player)
	player.MaxHealth = effMax
	player.Health = effMax
	player.Alive = true
	player.RespawnAt = 0

	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "persist respawn", err)
	}
	_ = s.emitter.Emit(ctx, storage.CombatEvent{
		Kind:       storage.EventKindRespawn,
		Attacker:   id.String(),
		OccurredAt: s.now().UTC(),
	})
	return player, nil
}

// UpgradeTier spends XP on one stat tier.
func (s *Service) UpgradeTier(ctx context.Context, id record.Identity, kind StatKind) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.upgrade_tier")
	defer span.End()

	if kind != StatHealth && kind != StatAttack {
		return record.Player{}, apperrors.WithMetadata(
			apperrors.CodeUpgradeInvalidStatType,
			fmt.Sprintf("unknown stat type %q", kind),
			map[string]string{"Stat": string(kind)},
		)
	}

	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return record.Player{}, err
	}
	if !player.Initialized {
		return record.Player{}, apperrors.New(apperrors.CodeCombatNotInitialized, "player is not initialized")
	}

	tier := player.HealthTier
	if kind == StatAttack {
		tier = player.AttackTier
	}
	if int(tier) >= progression.MaxLevel {
		return record.Player{}, apperrors.New(apperrors.CodeUpgradeMaxLevel, "stat tier is at the level cap")
	}
	cost := uint64(upgradeBaseCost + int(tier)*upgradeCostPerTier)
	if player.XP < cost {
		return record.Player{}, apperrors.WithMetadata(
			apperrors.CodeUpgradeInsufficientXP,
			fmt.Sprintf("upgrade costs %d xp, have %d", cost, player.XP),
			map[string]string{
				"Have": fmt.Sprintf("%d", player.XP),
				"Need": fmt.Sprintf("%d", cost),
			},
		)
	}

	player.XP -= cost
	switch kind {
	case StatHealth:
		player.HealthTier = tier + 1
		player.MaxHealth = satAdd16(player.MaxHealth, healthPerTier)
		if player.Alive {
			player.Health = satAdd16(player.Health, healthPerTier)
		}
	case StatAttack:
		player.AttackTier = tier + 1
		player.AttackPower = satAdd16(player.AttackPower, attackPerTier)
	}

	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "persist upgrade", err)
	}
	return player, nil
}

// AllocateTalent spends one talent point on a slot.
func (s *Service) AllocateTalent(ctx context.Context, id record.Identity, slot int) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.allocate_talent")
	defer span.End()

	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return record.Player{}, err
	}
	if !player.Initialized {
		return record.Player{}, apperrors.New(apperrors.CodeCombatNotInitialized, "player is not initialized")
	}

	budget := progression.TalentPointsForLevel(progression.LevelForXP(player.XP))
	ranks, err := talent.Allocate(player.Talents, slot, budget)
	if err != nil {
		return record.Player{}, err
	}
	player.Talents = ranks
	player.ManualBuild = true

	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "persist talent allocation", err)
	}
	return player, nil
}

// ResetTalents refunds every talent rank and marks the build as manual, so a
// later automatic allocation pass leaves it alone.
func (s *Service) ResetTalents(ctx context.Context, id record.Identity) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.reset_talents")
	defer span.End()

	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return record.Player{}, err
	}
	if !player.Initialized {
		return record.Player{}, apperrors.New(apperrors.CodeCombatNotInitialized, "player is not initialized")
	}

	player.Talents = talent.ResetRanks()
	player.ManualBuild = true

	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "persist talent reset", err)
	}
	return player, nil
}

// ResetPlayer restores the full registration defaults, manual-build flag
// included.
func (s *Service) ResetPlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.reset_player")
	defer span.End()

	player, err := s.loadPlayer(ctx, id)
	if err != nil {
		return record.Player{}, err
	}
	if !player.Initialized {
		return record.Player{}, apperrors.New(apperrors.CodeCombatNotInitialized, "player is not initialized")
	}

	player.ResetStats()

	if err := s.store.UpdatePlayer(ctx, player); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "persist player reset", err)
	}
	return player, nil
}

// MigratePlayer upgrades a stored record image to the current layout.
func (s *Service) MigratePlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	ctx, span := s.span(ctx, "arena.migrate_player")
	defer span.End()

	data, err := s.store.GetPlayerRaw(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return record.Player{}, notFound(id)
		}
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "load player record", err)
	}
	migrated, err := record.Migrate(data)
	if err != nil {
		return record.Player{}, err
	}
	if err := s.store.PutPlayerRaw(ctx, id, migrated); err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "persist migrated record", err)
	}
	player, err := record.Unmarshal(migrated)
	if err != nil {
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "decode migrated record", err)
	}
	return player, nil
}

func (s *Service) loadPlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	player, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return record.Player{}, notFound(id)
		}
		return record.Player{}, apperrors.Wrap(apperrors.CodeUnknown, "load player", err)
	}
	return player, nil
}

func (s *Service) loadArena(ctx context.Context) (record.Arena, error) {
	arena, err := s.store.GetArena(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return record.Arena{}, apperrors.New(apperrors.CodeNotFound, "arena is not initialized")
		}
		return record.Arena{}, apperrors.Wrap(apperrors.CodeUnknown, "load arena", err)
	}
	return arena, nil
}

func notFound(id record.Identity) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeNotFound,
		fmt.Sprintf("player %s not found", id),
		map[string]string{"Identity": id.String()},
	)
}

func satAdd16(value uint16, delta uint16) uint16 {
	if value > 0xFFFF-delta {
		return 0xFFFF
	}
	return value + delta
}
