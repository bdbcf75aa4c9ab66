package talent

// Effect magnitudes are basis points (parts per 10000), indexed by rank-1.
// Rank 0 has no effect. Values are hand-tuned and strictly ascending per slot;
// entries past a slot's rank cap are zero and unreachable.
//
// The resolver consumes iron_skin, heavy_hitter, armor, momentum, weakspot,
// critical_strike, last_stand, and rampage. The remaining magnitudes are
// advisory and interpreted client-side.
var effectBps = [SlotCount][RankCapStandard]uint32{
	SlotIronSkin:     {500, 1000, 1600, 2300, 3100},  // +max health %
	SlotHeavyHitter:  {400, 800, 1300, 1900, 2600},   // +damage %
	SlotRegeneration: {100, 220, 360, 520, 700},      // regen, % of max health per tick
	SlotLifesteal:    {300, 620, 980, 1400, 1900},    // heal, % of damage dealt
	SlotArmor:        {800, 1500, 2500},              // -incoming damage %

	SlotSwift:        {300, 650, 1050, 1500, 2000},   // +move speed %
	SlotRapidFire:    {200, 450, 750, 1100, 1500},    // +fire rate %
	SlotEvasion:      {250, 520, 840, 1220, 1650},    // dodge window %
	SlotQuickRespawn: {500, 1050, 1650, 2300, 3000},  // -respawn delay %
	SlotMomentum:     {200, 400, 700},                // flat damage, % of max health

	SlotWeakspot:       {600, 1100, 1700, 2400, 3200}, // vs targets below half health
	SlotCriticalStrike: {450, 950, 1500, 2100, 2750},  // expected value: chance x (multiplier - 1)
	SlotFocusFire:      {300, 640, 1020, 1450, 1950},  // +sustained fire %
	SlotMultiShot:      {250, 550, 900, 1300, 1750},   // extra projectile chance
	SlotDualCannon:     {1200, 2000, 3000},            // second barrel damage %

	SlotDeflect:   {200, 440, 720, 1050, 1450},  // reflect chance
	SlotAbsorb:    {350, 750, 1200, 1700, 2250}, // shield, % of damage absorbed
	SlotLastStand: {1500, 2600, 3800, 5100, 6500},
	SlotCloak:     {400, 850, 1350, 1900, 2500}, // detection radius cut
	SlotDash:      {900, 1700, 2600},            // dash distance %

	SlotRampage:   {500, 1100, 1800, 2600, 3500}, // +kill XP %
	SlotHoming:    {320, 700, 1120, 1580, 2080},  // tracking strength
	SlotRicochet:  {250, 550, 900, 1300, 1750},   // bounce damage retention
	SlotDeathbomb: {700, 1500, 2400, 3400, 4500}, // on-death blast, % of max health
	SlotFrenzy:    {1000, 1900, 2800},            // kill-streak stacking bonus
}

// EffectBps returns the basis-point magnitude for a slot at a rank.
// Out-of-range slots or ranks yield 0.
func EffectBps(slot int, rank uint8) uint32 {
	if !ValidSlot(slot) || rank == 0 || rank > RankCap(slot) {
		return 0
	}
	return effectBps[slot][rank-1]
}
