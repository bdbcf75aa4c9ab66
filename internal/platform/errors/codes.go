package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Combat errors
	CodeCombatNotInitialized  Code = "COMBAT_NOT_INITIALIZED"
	CodeCombatAttackerDead    Code = "COMBAT_ATTACKER_DEAD"
	CodeCombatVictimDead      Code = "COMBAT_VICTIM_DEAD"
	CodeCombatArenaInactive   Code = "COMBAT_ARENA_INACTIVE"
	CodeCombatSelfAttack      Code = "COMBAT_SELF_ATTACK"
	CodeCombatInvalidHitCount Code = "COMBAT_INVALID_HIT_COUNT"

	// Lifecycle errors
	CodeRespawnAlreadyAlive Code = "RESPAWN_ALREADY_ALIVE"
	CodeRespawnCooldown     Code = "RESPAWN_COOLDOWN"

	// Upgrade errors
	CodeUpgradeInsufficientXP  Code = "UPGRADE_INSUFFICIENT_XP"
	CodeUpgradeInvalidStatType Code = "UPGRADE_INVALID_STAT_TYPE"
	CodeUpgradeMaxLevel        Code = "UPGRADE_MAX_LEVEL"

	// Talent errors
	CodeTalentInvalidID          Code = "TALENT_INVALID_ID"
	CodeTalentNoPoints           Code = "TALENT_NO_POINTS"
	CodeTalentMaxed              Code = "TALENT_MAXED"
	CodeTalentPrerequisiteNotMet Code = "TALENT_PREREQUISITE_NOT_MET"
	CodeTalentMaxCapstones       Code = "TALENT_MAX_CAPSTONES"

	// Migration errors
	CodeMigrationInvalid Code = "MIGRATION_INVALID"

	// Storage errors
	CodeNotFound     Code = "NOT_FOUND"
	CodePlayerExists Code = "PLAYER_ALREADY_REGISTERED"
	CodeArenaExists  Code = "ARENA_ALREADY_INITIALIZED"

	// Transport errors
	CodeSessionInvalid   Code = "SESSION_INVALID"
	CodeRequestMalformed Code = "REQUEST_MALFORMED"
	CodeCommandUnknown   Code = "COMMAND_UNKNOWN"
)

// HTTPStatus maps domain codes to HTTP status codes for the JSON API.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeCombatInvalidHitCount,
		CodeCombatSelfAttack,
		CodeUpgradeInvalidStatType,
		CodeTalentInvalidID,
		CodeMigrationInvalid,
		CodeRequestMalformed,
		CodeCommandUnknown:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeCombatNotInitialized,
		CodeCombatAttackerDead,
		CodeCombatVictimDead,
		CodeCombatArenaInactive,
		CodeRespawnAlreadyAlive,
		CodeRespawnCooldown,
		CodeUpgradeInsufficientXP,
		CodeUpgradeMaxLevel,
		CodeTalentNoPoints,
		CodeTalentMaxed,
		CodeTalentPrerequisiteNotMet,
		CodeTalentMaxCapstones,
		CodePlayerExists,
		CodeArenaExists:
		return http.StatusConflict

	// Not found - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	case CodeSessionInvalid:
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}
