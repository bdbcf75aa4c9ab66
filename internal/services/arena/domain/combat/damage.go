// Package combat resolves deterministic damage values and kill rewards from
// player stat and talent state. The engine reads no randomness: probabilistic
// effects are folded into precomputed expected-value tables, so resolving the
// same pre-state twice always yields the same result.
package combat

import (
	"fmt"
	"math"

	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/progression"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/talent"
)

const (
	bpsScale = 10000

	// MaxDamagePerHit caps the running total after the additive stage.
	// Crit, execute, and armor stages apply after the cap.
	MaxDamagePerHit = 1000

	// Volley bounds.
	MinHitCount = 1
	MaxHitCount = 500

	// Kill reward curve.
	killXPBase     = 10
	killXPPerLevel = 3
	bountyLevel    = 50

	// DeathXP is the flat consolation award on dying.
	DeathXP = 5
)

// ErrInvalidHitCount indicates a volley size outside [MinHitCount, MaxHitCount].
var ErrInvalidHitCount = apperrors.New(apperrors.CodeCombatInvalidHitCount, "hit count must be in range 1..500")

func sat16(v uint64) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

func scaleUp(value uint64, bps uint32) uint64 {
	return value * (bpsScale + uint64(bps)) / bpsScale
}

// EffectiveMaxHealth returns max health after the iron-skin bonus, saturating.
func EffectiveMaxHealth(p *record.Player) uint16 {
	bps := talent.EffectBps(talent.SlotIronSkin, p.Talents[talent.SlotIronSkin])
	return sat16(scaleUp(uint64(p.MaxHealth), bps))
}

// ResolveHit computes the damage one hit deals from attacker to victim.
// Stage order is fixed: bonus damage, execute-when-weak, scaling strike,
// hard cap, critical expected value, execute-low-target, armor, floor of 1.
func ResolveHit(attacker, victim *record.Player) uint16 {
	damage := uint64(attacker.AttackPower)

	damage = scaleUp(damage, talent.EffectBps(talent.SlotHeavyHitter, attacker.Talents[talent.SlotHeavyHitter]))

	attackerMax := uint64(EffectiveMaxHealth(attacker))
	if bps := talent.EffectBps(talent.SlotLastStand, attacker.Talents[talent.SlotLastStand]); bps > 0 {
		// Active below one third of effective max health.
		if uint64(attacker.Health)*3 <= attackerMax {
			damage = scaleUp(damage, bps)
		}
	}

	if bps := talent.EffectBps(talent.SlotMomentum, attacker.Talents[talent.SlotMomentum]); bps > 0 {
		damage += attackerMax * uint64(bps) / bpsScale
	}

	if damage > MaxDamagePerHit {
		damage = MaxDamagePerHit
	}

	damage = scaleUp(damage, talent.EffectBps(talent.SlotCriticalStrike, attacker.Talents[talent.SlotCriticalStrike]))

	if bps := talent.EffectBps(talent.SlotWeakspot, attacker.Talents[talent.SlotWeakspot]); bps > 0 {
		if uint64(victim.Health)*2 <= uint64(EffectiveMaxHealth(victim)) {
			damage = scaleUp(damage, bps)
		}
	}

	if reduction := talent.EffectBps(talent.SlotArmor, victim.Talents[talent.SlotArmor]); reduction > 0 {
		if reduction >= bpsScale {
			reduction = bpsScale - 1
		}
		damage = damage * (bpsScale - uint64(reduction)) / bpsScale
	}

	if damage < 1 {
		damage = 1
	}
	return sat16(damage)
}

// ResolveVolley prices hitCount already-landed hits as one aggregate damage
// instance, saturating at the u16 ceiling.
func ResolveVolley(attacker, victim *record.Player, hitCount int) (uint16, error) {
	if hitCount < MinHitCount || hitCount > MaxHitCount {
		return 0, apperrors.WithMetadata(
			apperrors.CodeCombatInvalidHitCount,
			fmt.Sprintf("hit count %d out of range", hitCount),
			map[string]string{"Hits": fmt.Sprintf("%d", hitCount)},
		)
	}
	perHit := ResolveHit(attacker, victim)
	return sat16(uint64(perHit) * uint64(hitCount)), nil
}

// KillReward returns the XP awarded to the attacker for downing a victim of
// the given level: a base scaled by victim level, doubled for high-level
// bounties, then boosted by the attacker's rampage talent.
func KillReward(attacker *record.Player, victimLevel int) uint64 {
	levelsAbove := 0
	if victimLevel > 1 {
		levelsAbove = victimLevel - 1
	}
	reward := uint64(killXPBase + killXPPerLevel*levelsAbove)
	if victimLevel >= bountyLevel {
		reward *= 2
	}
	return scaleUp(reward, talent.EffectBps(talent.SlotRampage, attacker.Talents[talent.SlotRampage]))
}

// VictimLevel resolves a record's level for reward purposes.
func VictimLevel(victim *record.Player) int {
	return progression.LevelForXP(victim.XP)
}
