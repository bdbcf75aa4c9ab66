package talent

import (
	"fmt"

	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
)

var (
	// ErrInvalidSlot indicates a slot index outside [0, SlotCount).
	ErrInvalidSlot = apperrors.New(apperrors.CodeTalentInvalidID, "talent slot must be in range 0..24")
	// ErrNoPoints indicates the talent-point budget is exhausted.
	ErrNoPoints = apperrors.New(apperrors.CodeTalentNoPoints, "no talent points available")
	// ErrMaxed indicates the slot is already at its rank cap.
	ErrMaxed = apperrors.New(apperrors.CodeTalentMaxed, "talent is already at max rank")
	// ErrPrereqNotMet indicates the predecessor slot has no ranks.
	ErrPrereqNotMet = apperrors.New(apperrors.CodeTalentPrerequisiteNotMet, "talent prerequisite not met")
	// ErrMaxCapstones indicates two other capstones are already active.
	ErrMaxCapstones = apperrors.New(apperrors.CodeTalentMaxCapstones, "at most two capstones can be active")
)

// Ranks is a player's per-slot rank vector.
type Ranks = [SlotCount]uint8

// SpentPoints returns the total points invested across all slots.
func SpentPoints(ranks Ranks) int {
	total := 0
	for _, rank := range ranks {
		total += int(rank)
	}
	return total
}

// ActiveCapstones counts capstone slots with at least one rank.
func ActiveCapstones(ranks Ranks) int {
	count := 0
	for slot := 0; slot < SlotCount; slot++ {
		if IsCapstone(slot) && ranks[slot] > 0 {
			count++
		}
	}
	return count
}

// Allocate validates one point spend and returns the updated rank vector.
// The check order is fixed: slot validity, budget, rank cap, prerequisite,
// capstone limit. The capstone limit applies only on the 0->1 transition, so
// an already-active capstone can keep ranking while two others are active.
func Allocate(ranks Ranks, slot int, budget int) (Ranks, error) {
	if !ValidSlot(slot) {
		return ranks, apperrors.WithMetadata(
			apperrors.CodeTalentInvalidID,
			fmt.Sprintf("talent slot %d out of range", slot),
			map[string]string{"Slot": fmt.Sprintf("%d", slot)},
		)
	}
	if SpentPoints(ranks) >= budget {
		return ranks, ErrNoPoints
	}
	spec := specs[slot]
	if ranks[slot] >= spec.RankCap {
		return ranks, ErrMaxed
	}
	if spec.Prereq != noPrereq && ranks[spec.Prereq] < 1 {
		return ranks, apperrors.WithMetadata(
			apperrors.CodeTalentPrerequisiteNotMet,
			fmt.Sprintf("talent %s requires %s", spec.Name, specs[spec.Prereq].Name),
			map[string]string{"Slot": spec.Name, "Prereq": specs[spec.Prereq].Name},
		)
	}
	if IsCapstone(slot) && ranks[slot] == 0 && ActiveCapstones(ranks) >= MaxActiveCapstones {
		return ranks, ErrMaxCapstones
	}

	ranks[slot]++
	return ranks, nil
}

// ResetRanks returns the zeroed rank vector.
func ResetRanks() Ranks {
	return Ranks{}
}
