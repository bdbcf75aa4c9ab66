// Package talent describes the 25-slot talent grid and validates point
// allocation against rank caps, prerequisite chains, and the capstone limit.
package talent

// SlotCount is the fixed number of talent slots on a player record.
const SlotCount = 25

// Rank caps.
const (
	RankCapStandard = 5
	RankCapCapstone = 3
)

// MaxActiveCapstones is the global limit on simultaneously ranked capstones.
const MaxActiveCapstones = 2

// Tree identifies one of the five talent trees.
type Tree int

const (
	TreeStrength Tree = iota
	TreeSpeed
	TreePrecision
	TreeUtility
	TreeChaos
)

// Slot indices. Five trees of five slots each, in registration order.
const (
	// Strength
	SlotIronSkin = iota
	SlotHeavyHitter
	SlotRegeneration
	SlotLifesteal
	SlotArmor
	// Speed
	SlotSwift
	SlotRapidFire
	SlotEvasion
	SlotQuickRespawn
	SlotMomentum
	// Precision
	SlotWeakspot
	SlotCriticalStrike
	SlotFocusFire
	SlotMultiShot
	SlotDualCannon
	// Utility
	SlotDeflect
	SlotAbsorb
	SlotLastStand
	SlotCloak
	SlotDash
	// Chaos
	SlotRampage
	SlotHoming
	SlotRicochet
	SlotDeathbomb
	SlotFrenzy
)

// noPrereq marks a tree root with no predecessor.
const noPrereq = -1

// Spec describes one slot's static allocation rules.
type Spec struct {
	Name     string
	Tree     Tree
	RankCap  uint8
	Prereq   int // predecessor slot index, or noPrereq for tree roots
	Capstone bool
}

// specs is the authoritative slot table. Four trees chain in slot order;
// the Chaos tree chains rampage -> ricochet -> homing -> deathbomb -> frenzy.
var specs = [SlotCount]Spec{
	SlotIronSkin:     {Name: "iron_skin", Tree: TreeStrength, RankCap: RankCapStandard, Prereq: noPrereq},
	SlotHeavyHitter:  {Name: "heavy_hitter", Tree: TreeStrength, RankCap: RankCapStandard, Prereq: SlotIronSkin},
	SlotRegeneration: {Name: "regeneration", Tree: TreeStrength, RankCap: RankCapStandard, Prereq: SlotHeavyHitter},
	SlotLifesteal:    {Name: "lifesteal", Tree: TreeStrength, RankCap: RankCapStandard, Prereq: SlotRegeneration},
	SlotArmor:        {Name: "armor", Tree: TreeStrength, RankCap: RankCapCapstone, Prereq: SlotLifesteal, Capstone: true},

	SlotSwift:        {Name: "swift", Tree: TreeSpeed, RankCap: RankCapStandard, Prereq: noPrereq},
	SlotRapidFire:    {Name: "rapid_fire", Tree: TreeSpeed, RankCap: RankCapStandard, Prereq: SlotSwift},
	SlotEvasion:      {Name: "evasion", Tree: TreeSpeed, RankCap: RankCapStandard, Prereq: SlotRapidFire},
	SlotQuickRespawn: {Name: "quick_respawn", Tree: TreeSpeed, RankCap: RankCapStandard, Prereq: SlotEvasion},
	SlotMomentum:     {Name: "momentum", Tree: TreeSpeed, RankCap: RankCapCapstone, Prereq: SlotQuickRespawn, Capstone: true},

	SlotWeakspot:       {Name: "weakspot", Tree: TreePrecision, RankCap: RankCapStandard, Prereq: noPrereq},
	SlotCriticalStrike: {Name: "critical_strike", Tree: TreePrecision, RankCap: RankCapStandard, Prereq: SlotWeakspot},
	SlotFocusFire:      {Name: "focus_fire", Tree: TreePrecision, RankCap: RankCapStandard, Prereq: SlotCriticalStrike},
	SlotMultiShot:      {Name: "multi_shot", Tree: TreePrecision, RankCap: RankCapStandard, Prereq: SlotFocusFire},
	SlotDualCannon:     {Name: "dual_cannon", Tree: TreePrecision, RankCap: RankCapCapstone, Prereq: SlotMultiShot, Capstone: true},

	SlotDeflect:   {Name: "deflect", Tree: TreeUtility, RankCap: RankCapStandard, Prereq: noPrereq},
	SlotAbsorb:    {Name: "absorb", Tree: TreeUtility, RankCap: RankCapStandard, Prereq: SlotDeflect},
	SlotLastStand: {Name: "last_stand", Tree: TreeUtility, RankCap: RankCapStandard, Prereq: SlotAbsorb},
	SlotCloak:     {Name: "cloak", Tree: TreeUtility, RankCap: RankCapStandard, Prereq: SlotLastStand},
	SlotDash:      {Name: "dash", Tree: TreeUtility, RankCap: RankCapCapstone, Prereq: SlotCloak, Capstone: true},

	SlotRampage:   {Name: "rampage", Tree: TreeChaos, RankCap: RankCapStandard, Prereq: noPrereq},
	SlotHoming:    {Name: "homing", Tree: TreeChaos, RankCap: RankCapStandard, Prereq: SlotRicochet},
	SlotRicochet:  {Name: "ricochet", Tree: TreeChaos, RankCap: RankCapStandard, Prereq: SlotRampage},
	SlotDeathbomb: {Name: "deathbomb", Tree: TreeChaos, RankCap: RankCapStandard, Prereq: SlotHoming},
	SlotFrenzy:    {Name: "frenzy", Tree: TreeChaos, RankCap: RankCapCapstone, Prereq: SlotDeathbomb, Capstone: true},
}

// ValidSlot reports whether slot is a legal talent index.
func ValidSlot(slot int) bool {
	return slot >= 0 && slot < SlotCount
}

// Lookup returns the static spec for a slot.
func Lookup(slot int) Spec {
	if !ValidSlot(slot) {
		return Spec{Prereq: noPrereq}
	}
	return specs[slot]
}

// RankCap returns the maximum rank for a slot.
func RankCap(slot int) uint8 {
	return Lookup(slot).RankCap
}

// Prereq returns the predecessor slot and whether one exists.
func Prereq(slot int) (int, bool) {
	spec := Lookup(slot)
	if spec.Prereq == noPrereq {
		return 0, false
	}
	return spec.Prereq, true
}

// IsCapstone reports whether a slot is its tree's capstone.
func IsCapstone(slot int) bool {
	return Lookup(slot).Capstone
}
