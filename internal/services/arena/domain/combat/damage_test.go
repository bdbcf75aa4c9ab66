package combat

import (
	"math"
	"testing"

	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/talent"
)

func fighter(attack, health, maxHealth uint16) *record.Player {
	return &record.Player{
		Health:      health,
		MaxHealth:   maxHealth,
		AttackPower: attack,
		Alive:       true,
		Initialized: true,
	}
}

func TestEffectiveMaxHealth(t *testing.T) {
	tests := []struct {
		name      string
		maxHealth uint16
		ironSkin  uint8
		want      uint16
	}{
		{"no talent", 100, 0, 100},
		{"rank 1", 100, 1, 105},
		{"rank 5", 100, 5, 131},
		{"truncates", 10, 1, 10},
		{"saturates", math.MaxUint16, 5, math.MaxUint16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fighter(10, tt.maxHealth, tt.maxHealth)
			p.Talents[talent.SlotIronSkin] = tt.ironSkin
			if got := EffectiveMaxHealth(p); got != tt.want {
				t.Fatalf("EffectiveMaxHealth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveHitBaseline(t *testing.T) {
	attacker := fighter(10, 100, 100)
	victim := fighter(10, 100, 100)
	if got := ResolveHit(attacker, victim); got != 10 {
		t.Fatalf("ResolveHit() = %d, want 10", got)
	}
}

func TestResolveHitBonusDamage(t *testing.T) {
	tests := []struct {
		name   string
		attack uint16
		rank   uint8
		want   uint16
	}{
		{"rank 1 truncates at low attack", 10, 1, 10},
		{"rank 1", 100, 1, 104},
		{"rank 5", 100, 5, 126},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attacker := fighter(tt.attack, 100, 100)
			attacker.Talents[talent.SlotHeavyHitter] = tt.rank
			victim := fighter(10, 100, 100)
			if got := ResolveHit(attacker, victim); got != tt.want {
				t.Fatalf("ResolveHit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveHitExecuteWhenWeak(t *testing.T) {
	victim := fighter(10, 100, 100)

	attacker := fighter(100, 30, 100)
	attacker.Talents[talent.SlotLastStand] = 1
	if got := ResolveHit(attacker, victim); got != 115 {
		t.Fatalf("below threshold: ResolveHit() = %d, want 115", got)
	}

	attacker.Health = 34
	if got := ResolveHit(attacker, victim); got != 100 {
		t.Fatalf("above threshold: ResolveHit() = %d, want 100", got)
	}

	// Threshold uses effective max health, so iron skin widens the window.
	attacker.Talents[talent.SlotIronSkin] = 1
	if got := ResolveHit(attacker, victim); got != 115 {
		t.Fatalf("widened threshold: ResolveHit() = %d, want 115", got)
	}
}

func TestResolveHitScalingStrike(t *testing.T) {
	attacker := fighter(10, 100, 100)
	attacker.Talents[talent.SlotMomentum] = 1
	victim := fighter(10, 100, 100)
	if got := ResolveHit(attacker, victim); got != 12 {
		t.Fatalf("ResolveHit() = %d, want 12", got)
	}
}

func TestResolveHitCapBeforeCrit(t *testing.T) {
	attacker := fighter(2000, 100, 100)
	victim := fighter(10, 100, 100)
	if got := ResolveHit(attacker, victim); got != 1000 {
		t.Fatalf("capped: ResolveHit() = %d, want 1000", got)
	}

	// Crit multiplies the already-capped value, so the result exceeds the cap.
	attacker.Talents[talent.SlotCriticalStrike] = 1
	if got := ResolveHit(attacker, victim); got != 1045 {
		t.Fatalf("crit after cap: ResolveHit() = %d, want 1045", got)
	}
}

func TestResolveHitExecuteLowTarget(t *testing.T) {
	attacker := fighter(100, 100, 100)
	attacker.Talents[talent.SlotWeakspot] = 1

	victim := fighter(10, 50, 100)
	if got := ResolveHit(attacker, victim); got != 106 {
		t.Fatalf("victim at half: ResolveHit() = %d, want 106", got)
	}

	victim.Health = 51
	if got := ResolveHit(attacker, victim); got != 100 {
		t.Fatalf("victim above half: ResolveHit() = %d, want 100", got)
	}
}

func TestResolveHitArmor(t *testing.T) {
	attacker := fighter(100, 100, 100)
	victim := fighter(10, 100, 100)
	victim.Talents[talent.SlotArmor] = 1
	if got := ResolveHit(attacker, victim); got != 92 {
		t.Fatalf("rank 1: ResolveHit() = %d, want 92", got)
	}
	victim.Talents[talent.SlotArmor] = 3
	if got := ResolveHit(attacker, victim); got != 75 {
		t.Fatalf("rank 3: ResolveHit() = %d, want 75", got)
	}
}

func TestResolveHitFloorsAtOne(t *testing.T) {
	attacker := fighter(1, 100, 100)
	victim := fighter(10, 100, 100)
	victim.Talents[talent.SlotArmor] = 3
	if got := ResolveHit(attacker, victim); got != 1 {
		t.Fatalf("ResolveHit() = %d, want 1", got)
	}
}

func TestResolveVolley(t *testing.T) {
	attacker := fighter(10, 100, 100)
	victim := fighter(10, 100, 100)

	got, err := ResolveVolley(attacker, victim, 500)
	if err != nil {
		t.Fatalf("ResolveVolley() error: %v", err)
	}
	if got != 5000 {
		t.Fatalf("ResolveVolley() = %d, want 5000", got)
	}

	heavy := fighter(1000, 100, 100)
	got, err = ResolveVolley(heavy, victim, 500)
	if err != nil {
		t.Fatalf("ResolveVolley() error: %v", err)
	}
	if got != math.MaxUint16 {
		t.Fatalf("ResolveVolley() = %d, want saturated %d", got, math.MaxUint16)
	}
}

func TestResolveVolleyInvalidHitCount(t *testing.T) {
	attacker := fighter(10, 100, 100)
	victim := fighter(10, 100, 100)
	for _, hits := range []int{0, -1, 501} {
		if _, err := ResolveVolley(attacker, victim, hits); !apperrors.IsCode(err, apperrors.CodeCombatInvalidHitCount) {
			t.Fatalf("ResolveVolley(%d) error = %v, want %s", hits, err, apperrors.CodeCombatInvalidHitCount)
		}
	}
}

func TestKillReward(t *testing.T) {
	plain := fighter(10, 100, 100)
	tests := []struct {
		name        string
		attacker    *record.Player
		victimLevel int
		want        uint64
	}{
		{"level 1", plain, 1, 10},
		{"level 2", plain, 2, 13},
		{"level 49", plain, 49, 154},
		{"bounty at 50", plain, 50, 314},
		{"bounty at 100", plain, 100, 614},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KillReward(tt.attacker, tt.victimLevel); got != tt.want {
				t.Fatalf("KillReward() = %d, want %d", got, tt.want)
			}
		})
	}

	hunter := fighter(10, 100, 100)
	hunter.Talents[talent.SlotRampage] = 5
	if got := KillReward(hunter, 10); got != 49 {
		t.Fatalf("rampage KillReward() = %d, want 49", got)
	}
}
