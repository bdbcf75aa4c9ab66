// Package progression maps accumulated experience to levels and talent-point
// budgets. All math is integer-only so results are bit-exact across builds.
package progression

// Level bounds and curve constants.
const (
	MinLevel = 1
	MaxLevel = 100

	// MaxTalentPoints is the budget at MaxLevel: one point per odd level 1..99.
	MaxTalentPoints = 50

	bpsScale = 10000

	// Levels above surchargeLevel cost an extra 1% per level, compounding
	// through the integer scale factor below.
	surchargeLevel       = 50
	surchargePerLevelBps = 100
)

// xpThresholds[L] is the cumulative XP required to reach level L.
// xpThresholds[1] == 0: every player holds level 1 for free.
var xpThresholds = buildThresholds()

func buildThresholds() [MaxLevel + 1]uint64 {
	var thresholds [MaxLevel + 1]uint64
	var total uint64
	for level := 2; level <= MaxLevel; level++ {
		total += CostForLevel(level - 1)
		thresholds[level] = total
	}
	return thresholds
}

// CostForLevel returns the XP price of a single level on the curve.
// Base price is (2L-1)*10; levels past 50 carry a 1%-per-level surcharge.
func CostForLevel(level int) uint64 {
	if level < MinLevel || level > MaxLevel {
		return 0
	}
	base := uint64(2*level-1) * 10
	if level <= surchargeLevel {
		return base
	}
	scale := uint64(bpsScale + (level-surchargeLevel)*surchargePerLevelBps)
	return base * scale / bpsScale
}

// XPForLevel returns the cumulative XP required to reach the given level.
func XPForLevel(level int) uint64 {
	if level <= MinLevel {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return xpThresholds[level]
}

// LevelForXP returns the largest level whose cumulative cost fits in xp,
// bounded to [MinLevel, MaxLevel].
func LevelForXP(xp uint64) int {
	level := MinLevel
	for level < MaxLevel && xp >= xpThresholds[level+1] {
		level++
	}
	return level
}

// TalentPointsForLevel returns the talent-point budget at a level: one point
// is granted at level 1 and at every odd level through 99, capping at 50.
func TalentPointsForLevel(level int) int {
	if level < MinLevel {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	points := (level + 1) / 2
	if points > MaxTalentPoints {
		points = MaxTalentPoints
	}
	return points
}
