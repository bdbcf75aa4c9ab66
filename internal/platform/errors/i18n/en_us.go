package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeCombatNotInitialized  = "COMBAT_NOT_INITIALIZED"
	CodeCombatAttackerDead    = "COMBAT_ATTACKER_DEAD"
	CodeCombatVictimDead      = "COMBAT_VICTIM_DEAD"
	CodeCombatArenaInactive   = "COMBAT_ARENA_INACTIVE"
	CodeCombatSelfAttack      = "COMBAT_SELF_ATTACK"
	CodeCombatInvalidHitCount = "COMBAT_INVALID_HIT_COUNT"

	CodeRespawnAlreadyAlive = "RESPAWN_ALREADY_ALIVE"
	CodeRespawnCooldown     = "RESPAWN_COOLDOWN"

	CodeUpgradeInsufficientXP  = "UPGRADE_INSUFFICIENT_XP"
	CodeUpgradeInvalidStatType = "UPGRADE_INVALID_STAT_TYPE"
	CodeUpgradeMaxLevel        = "UPGRADE_MAX_LEVEL"

	CodeTalentInvalidID          = "TALENT_INVALID_ID"
	CodeTalentNoPoints           = "TALENT_NO_POINTS"
	CodeTalentMaxed              = "TALENT_MAXED"
	CodeTalentPrerequisiteNotMet = "TALENT_PREREQUISITE_NOT_MET"
	CodeTalentMaxCapstones       = "TALENT_MAX_CAPSTONES"

	CodeMigrationInvalid = "MIGRATION_INVALID"

	CodeNotFound     = "NOT_FOUND"
	CodePlayerExists = "PLAYER_ALREADY_REGISTERED"
	CodeArenaExists  = "ARENA_ALREADY_INITIALIZED"

	CodeSessionInvalid   = "SESSION_INVALID"
	CodeRequestMalformed = "REQUEST_MALFORMED"
	CodeCommandUnknown   = "COMMAND_UNKNOWN"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[string]string{
		// Combat errors
		CodeCombatNotInitialized:  "Player is not registered",
		CodeCombatAttackerDead:    "Attacker is dead",
		CodeCombatVictimDead:      "Victim is already dead",
		CodeCombatArenaInactive:   "Arena is not active",
		CodeCombatSelfAttack:      "A player cannot attack themselves",
		CodeCombatInvalidHitCount: "Hit count {{.Hits}} must be between 1 and 500",

		// Lifecycle errors
		CodeRespawnAlreadyAlive: "Player is already alive",
		CodeRespawnCooldown:     "Respawn cooldown has not elapsed",

		// Upgrade errors
		CodeUpgradeInsufficientXP:  "Not enough XP: have {{.Have}}, need {{.Need}}",
		CodeUpgradeInvalidStatType: "Invalid stat type (health or attack)",
		CodeUpgradeMaxLevel:        "Stat is already at max tier",

		// Talent errors
		CodeTalentInvalidID:          "Invalid talent slot (0-24)",
		CodeTalentNoPoints:           "No talent points available",
		CodeTalentMaxed:              "Talent is already at max rank",
		CodeTalentPrerequisiteNotMet: "Talent {{.Slot}} requires a point in its prerequisite first",
		CodeTalentMaxCapstones:       "At most two capstone talents can be active",

		// Migration errors
		CodeMigrationInvalid: "Record is not a valid legacy player record",

		// Storage errors
		CodeNotFound:     "The requested record was not found",
		CodePlayerExists: "Player is already registered",
		CodeArenaExists:  "Arena is already initialized",

		// Transport errors
		CodeSessionInvalid:   "Session token is missing or invalid",
		CodeRequestMalformed: "Request payload could not be parsed",
		CodeCommandUnknown:   "Unknown command {{.Type}}",
	},
}
