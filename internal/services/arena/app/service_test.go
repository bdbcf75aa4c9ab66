package app

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/louisbranch/ironarena/internal/platform/errors"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/talent"
	"github.com/louisbranch/ironarena/internal/services/arena/storage"
	"github.com/louisbranch/ironarena/internal/telemetry"
)

// fakeStore keeps encoded records in memory so service tests exercise the
// same byte images the SQLite store would.
type fakeStore struct {
	players map[record.Identity][]byte
	arena   []byte
	events  []storage.CombatEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{players: make(map[record.Identity][]byte)}
}

func (f *fakeStore) CreatePlayer(ctx context.Context, player record.Player) error {
	if _, ok := f.players[player.Identity]; ok {
		return storage.ErrAlreadyExists
	}
	f.players[player.Identity] = record.Marshal(player)
	return nil
}

func (f *fakeStore) GetPlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	data, ok := f.players[id]
	if !ok {
		return record.Player{}, storage.ErrNotFound
	}
	return record.Unmarshal(data)
}

func (f *fakeStore) UpdatePlayer(ctx context.Context, player record.Player) error {
	if _, ok := f.players[player.Identity]; !ok {
		return storage.ErrNotFound
	}
	f.players[player.Identity] = record.Marshal(player)
	return nil
}

func (f *fakeStore) GetPlayerRaw(ctx context.Context, id record.Identity) ([]byte, error) {
	data, ok := f.players[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeStore) PutPlayerRaw(ctx context.Context, id record.Identity, data []byte) error {
	if _, ok := f.players[id]; !ok {
		return storage.ErrNotFound
	}
	f.players[id] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStore) CreateArena(ctx context.Context, arena record.Arena) error {
	if f.arena != nil {
		return storage.ErrAlreadyExists
	}
	f.arena = record.MarshalArena(arena)
	return nil
}

func (f *fakeStore) GetArena(ctx context.Context) (record.Arena, error) {
	if f.arena == nil {
		return record.Arena{}, storage.ErrNotFound
	}
	return record.UnmarshalArena(f.arena)
}

func (f *fakeStore) UpdateArena(ctx context.Context, arena record.Arena) error {
	if f.arena == nil {
		return storage.ErrNotFound
	}
	f.arena = record.MarshalArena(arena)
	return nil
}

func (f *fakeStore) AppendCombatEvent(ctx context.Context, event storage.CombatEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStore) ListCombatEvents(ctx context.Context, limit int) ([]storage.CombatEvent, error) {
	if limit > len(f.events) {
		limit = len(f.events)
	}
	out := make([]storage.CombatEvent, 0, limit)
	for i := len(f.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.events[i])
	}
	return out, nil
}

func (f *fakeStore) ApplyCombat(ctx context.Context, write storage.CombatWrite) error {
	if _, ok := f.players[write.Attacker.Identity]; !ok {
		return storage.ErrNotFound
	}
	if _, ok := f.players[write.Victim.Identity]; !ok {
		return storage.ErrNotFound
	}
	if f.arena == nil {
		return storage.ErrNotFound
	}
	f.players[write.Attacker.Identity] = record.Marshal(write.Attacker)
	f.players[write.Victim.Identity] = record.Marshal(write.Victim)
	f.arena = record.MarshalArena(write.Arena)
	f.events = append(f.events, write.Event)
	return nil
}

func (f *fakeStore) Close() error { return nil }

var _ storage.Store = (*fakeStore)(nil)

var (
	authorityID = record.IdentityFromKey("authority")
	attackerID  = record.IdentityFromKey("attacker")
	victimID    = record.IdentityFromKey("victim")
)

func newTestService(t *testing.T) (*Service, *fakeStore, *time.Time) {
	t.Helper()

	store := newFakeStore()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	service := NewService(store, telemetry.NewEmitter(store)).WithClock(func() time.Time { return *clock })
	return service, store, clock
}

func registerArena(t *testing.T, service *Service, ids ...record.Identity) {
	t.Helper()

	if _, err := service.InitArena(context.Background(), authorityID); err != nil {
		t.Fatalf("init arena: %v", err)
	}
	for _, id := range ids {
		if _, err := service.RegisterPlayer(context.Background(), id); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
}

func TestInitArenaOnce(t *testing.T) {
	service, _, _ := newTestService(t)

	arena, err := service.InitArena(context.Background(), authorityID)
	if err != nil {
		t.Fatalf("init arena: %v", err)
	}
	if !arena.Active || arena.Authority != authorityID {
		t.Fatalf("arena = %+v, want active with authority", arena)
	}
	if _, err := service.InitArena(context.Background(), authorityID); !apperrors.IsCode(err, apperrors.CodeArenaExists) {
		t.Fatalf("second init error = %v, want %s", err, apperrors.CodeArenaExists)
	}
}

func TestRegisterPlayerCountsIntoArena(t *testing.T) {
	service, _, _ := newTestService(t)
	registerArena(t, service, attackerID, victimID)

	arena, err := service.GetArena(context.Background())
	if err != nil {
		t.Fatalf("get arena: %v", err)
	}
	if arena.PlayerCount != 2 {
		t.Fatalf("player count = %d, want 2", arena.PlayerCount)
	}
	if _, err := service.RegisterPlayer(context.Background(), attackerID); !apperrors.IsCode(err, apperrors.CodePlayerExists) {
		t.Fatalf("duplicate register error = %v, want %s", err, apperrors.CodePlayerExists)
	}
}

func TestRegisterPlayerRequiresArena(t *testing.T) {
	service, _, _ := newTestService(t)

	if _, err := service.RegisterPlayer(context.Background(), attackerID); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("register without arena error = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestAttackReducesVictimHealth(t *testing.T) {
	service, _, _ := newTestService(t)
	registerArena(t, service, attackerID, victimID)

	result, err := service.Attack(context.Background(), attackerID, victimID, 3)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if result.Damage != 30 || result.Fatal {
		t.Fatalf("result = %+v, want 30 non-fatal", result)
	}

	victim, err := service.GetPlayer(context.Background(), victimID)
	if err != nil {
		t.Fatalf("get victim: %v", err)
	}
	if victim.Health != 70 || !victim.Alive {
		t.Fatalf("victim = %+v, want health 70 alive", victim)
	}
}

func TestAttackKill(t *testing.T) {
	service, _, clock := newTestService(t)
	registerArena(t, service, attackerID, victimID)

	result, err := service.Attack(context.Background(), attackerID, victimID, 10)
	if err != nil {
		t.Fatalf("attack: %v", err)
	}
	if !result.Fatal || result.Damage != 100 || result.XPAwarded != 10 {
		t.Fatalf("result = %+v, want fatal 100 damage 10 xp", result)
	}

	victim, err := service.GetPlayer(context.Background(), victimID)
	if err != nil {
		t.Fatalf("get victim: %v", err)
	}
	if victim.Alive || victim.Health != 0 || victim.Deaths != 1 || victim.XP != 5 {
		t.Fatalf("victim = %+v, want dead with 1 death and 5 xp", victim)
	}
	if victim.RespawnAt != clock.Unix()+RespawnDelaySeconds {
		t.Fatalf("respawn at = %d, want %d", victim.RespawnAt, clock.Unix()+RespawnDelaySeconds)
	}

	attacker, err := service.GetPlayer(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("get attacker: %v", err)
	}
	if attacker.Kills != 1 || attacker.XP != 10 {
		t.Fatalf("attacker = %+v, want 1 kill 10 xp", attacker)
	}
	// 10 XP clears the level 1 cost, so both tiers follow the new level.
	if attacker.HealthTier != 2 || attacker.AttackTier != 2 {
		t.Fatalf("attacker tiers = %d/%d, want 2/2", attacker.HealthTier, attacker.AttackTier)
	}

	arena, err := service.GetArena(context.Background())
	if err != nil {
		t.Fatalf("get arena: %v", err)
	}
	if arena.TotalKills != 1 {
		t.Fatalf("total kills = %d, want 1", arena.TotalKills)
	}

	events, err := service.RecentEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(events) != 1 || events[0].Kind != storage.EventKindKill || !events[0].Fatal {
		t.Fatalf("events = %+v, want one kill event", events)
	}
}

func TestAttackGuards(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, service *Service, store *fakeStore)
		hits    int
		code    apperrors.Code
	}{
		{
			name:    "self attack",
			prepare: func(t *testing.T, service *Service, store *fakeStore) {},
			hits:    1,
			code:    apperrors.CodeCombatSelfAttack,
		},
		{
			name: "attacker dead",
			prepare: func(t *testing.T, service *Service, store *fakeStore) {
				downPlayer(t, store, attackerID)
			},
			hits: 1,
			code: apperrors.CodeCombatAttackerDead,
		},
		{
			name: "victim dead",
			prepare: func(t *testing.T, service *Service, store *fakeStore) {
				downPlayer(t, store, victimID)
			},
			hits: 1,
			code: apperrors.CodeCombatVictimDead,
		},
		{
			name: "arena inactive",
			prepare: func(t *testing.T, service *Service, store *fakeStore) {
				arena, err := store.GetArena(context.Background())
				if err != nil {
					t.Fatalf("get arena: %v", err)
				}
				arena.Active = false
				if err := store.UpdateArena(context.Background(), arena); err != nil {
					t.Fatalf("update arena: %v", err)
				}
			},
			hits: 1,
			code: apperrors.CodeCombatArenaInactive,
		},
		{
			name:    "zero hits",
			prepare: func(t *testing.T, service *Service, store *fakeStore) {},
			hits:    0,
			code:    apperrors.CodeCombatInvalidHitCount,
		},
		{
			name:    "oversized volley",
			prepare: func(t *testing.T, service *Service, store *fakeStore) {},
			hits:    501,
			code:    apperrors.CodeCombatInvalidHitCount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store, _ := newTestService(t)
			registerArena(t, service, attackerID, victimID)
			tt.prepare(t, service, store)

			target := victimID
			if tt.code == apperrors.CodeCombatSelfAttack {
				target = attackerID
			}
			_, err := service.Attack(context.Background(), attackerID, target, tt.hits)
			if !apperrors.IsCode(err, tt.code) {
				t.Fatalf("attack error = %v, want %s", err, tt.code)
			}

			// A rejected attack must leave the victim untouched.
			victim, err := store.GetPlayer(context.Background(), victimID)
			if err != nil {
				t.Fatalf("get victim: %v", err)
			}
			if victim.Health != 100 && victim.Health != 0 {
				t.Fatalf("victim health = %d, want pre-attack value", victim.Health)
			}
		})
	}
}

func downPlayer(t *testing.T, store *fakeStore, id record.Identity) {
	t.Helper()

	player, err := store.GetPlayer(context.Background(), id)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	player.Health = 0
	player.Alive = false
	if err := store.UpdatePlayer(context.Background(), player); err != nil {
		t.Fatalf("update player: %v", err)
	}
}

func TestRespawnEnforcesCooldown(t *testing.T) {
	service, _, clock := newTestService(t)
	registerArena(t, service, attackerID, victimID)

	if _, err := service.Respawn(context.Background(), victimID); !apperrors.IsCode(err, apperrors.CodeRespawnAlreadyAlive) {
		t.Fatalf("alive respawn error = %v, want %s", err, apperrors.CodeRespawnAlreadyAlive)
	}

	if _, err := service.Attack(context.Background(), attackerID, victimID, 10); err != nil {
		t.Fatalf("attack: %v", err)
	}

	*clock = clock.Add(4 * time.Second)
	if _, err := service.Respawn(context.Background(), victimID); !apperrors.IsCode(err, apperrors.CodeRespawnCooldown) {
		t.Fatalf("early respawn error = %v, want %s", err, apperrors.CodeRespawnCooldown)
	}

	*clock = clock.Add(time.Second)
	player, err := service.Respawn(context.Background(), victimID)
	if err != nil {
		t.Fatalf("respawn: %v", err)
	}
	if !player.Alive || player.Health != 100 || player.RespawnAt != 0 {
		t.Fatalf("respawned player = %+v, want alive at full health", player)
	}
}

func TestRespawnCompoundsMaxHealthBonus(t *testing.T) {
	service, store, clock := newTestService(t)
	registerArena(t, service, victimID)

	player, err := store.GetPlayer(context.Background(), victimID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	player.Talents[talent.SlotIronSkin] = 1
	player.Health = 0
	player.Alive = false
	player.RespawnAt = clock.Unix()
	if err := store.UpdatePlayer(context.Background(), player); err != nil {
		t.Fatalf("update player: %v", err)
	}

	player, err = service.Respawn(context.Background(), victimID)
	if err != nil {
		t.Fatalf("first respawn: %v", err)
	}
	if player.MaxHealth != 105 || player.Health != 105 {
		t.Fatalf("first respawn stats = %d/%d, want 105/105", player.Health, player.MaxHealth)
	}

	// The bonus is applied to the stored max, so each respawn compounds it.
	player.Health = 0
	player.Alive = false
	player.RespawnAt = clock.Unix()
	if err := store.UpdatePlayer(context.Background(), player); err != nil {
		t.Fatalf("update player: %v", err)
	}
	player, err = service.Respawn(context.Background(), victimID)
	if err != nil {
		t.Fatalf("second respawn: %v", err)
	}
	if player.MaxHealth != 110 {
		t.Fatalf("second respawn max health = %d, want 110", player.MaxHealth)
	}
}

func TestUpgradeTier(t *testing.T) {
	service, store, _ := newTestService(t)
	registerArena(t, service, attackerID)

	if _, err := service.UpgradeTier(context.Background(), attackerID, StatKind("speed")); !apperrors.IsCode(err, apperrors.CodeUpgradeInvalidStatType) {
		t.Fatalf("invalid stat error = %v, want %s", err, apperrors.CodeUpgradeInvalidStatType)
	}
	if _, err := service.UpgradeTier(context.Background(), attackerID, StatHealth); !apperrors.IsCode(err, apperrors.CodeUpgradeInsufficientXP) {
		t.Fatalf("broke upgrade error = %v, want %s", err, apperrors.CodeUpgradeInsufficientXP)
	}

	player, err := store.GetPlayer(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	player.XP = 300
	if err := store.UpdatePlayer(context.Background(), player); err != nil {
		t.Fatalf("update player: %v", err)
	}

	player, err = service.UpgradeTier(context.Background(), attackerID, StatHealth)
	if err != nil {
		t.Fatalf("health upgrade: %v", err)
	}
	if player.HealthTier != 2 || player.MaxHealth != 110 || player.Health != 110 || player.XP != 150 {
		t.Fatalf("after health upgrade = %+v, want tier 2 110/110 and 150 xp", player)
	}

	player, err = service.UpgradeTier(context.Background(), attackerID, StatAttack)
	if err != nil {
		t.Fatalf("attack upgrade: %v", err)
	}
	if player.AttackTier != 2 || player.AttackPower != 15 || player.XP != 0 {
		t.Fatalf("after attack upgrade = %+v, want tier 2 attack 15 and 0 xp", player)
	}
}

func TestUpgradeTierAtLevelCap(t *testing.T) {
	service, store, _ := newTestService(t)
	registerArena(t, service, attackerID)

	player, err := store.GetPlayer(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	player.AttackTier = 100
	player.XP = 1 << 40
	if err := store.UpdatePlayer(context.Background(), player); err != nil {
		t.Fatalf("update player: %v", err)
	}

	if _, err := service.UpgradeTier(context.Background(), attackerID, StatAttack); !apperrors.IsCode(err, apperrors.CodeUpgradeMaxLevel) {
		t.Fatalf("capped upgrade error = %v, want %s", err, apperrors.CodeUpgradeMaxLevel)
	}
}

func TestAllocateTalent(t *testing.T) {
	service, _, _ := newTestService(t)
	registerArena(t, service, attackerID)

	// Level 1 grants a single point.
	player, err := service.AllocateTalent(context.Background(), attackerID, talent.SlotIronSkin)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if player.Talents[talent.SlotIronSkin] != 1 || !player.ManualBuild {
		t.Fatalf("after allocate = %+v, want rank 1 manual build", player)
	}

	if _, err := service.AllocateTalent(context.Background(), attackerID, talent.SlotIronSkin); !apperrors.IsCode(err, apperrors.CodeTalentNoPoints) {
		t.Fatalf("exhausted allocate error = %v, want %s", err, apperrors.CodeTalentNoPoints)
	}
	if _, err := service.AllocateTalent(context.Background(), attackerID, 99); !apperrors.IsCode(err, apperrors.CodeTalentInvalidID) {
		t.Fatalf("bad slot error = %v, want %s", err, apperrors.CodeTalentInvalidID)
	}
}

func TestResetTalentsAndResetPlayer(t *testing.T) {
	service, store, _ := newTestService(t)
	registerArena(t, service, attackerID)

	if _, err := service.AllocateTalent(context.Background(), attackerID, talent.SlotIronSkin); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	player, err := service.ResetTalents(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("reset talents: %v", err)
	}
	if player.Talents != talent.ResetRanks() || !player.ManualBuild {
		t.Fatalf("after talent reset = %+v, want zero ranks manual build", player)
	}

	raw, err := store.GetPlayer(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	raw.XP = 999
	raw.Kills = 3
	if err := store.UpdatePlayer(context.Background(), raw); err != nil {
		t.Fatalf("update player: %v", err)
	}

	player, err = service.ResetPlayer(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("reset player: %v", err)
	}
	if player.XP != 0 || player.Kills != 0 || player.ManualBuild {
		t.Fatalf("after full reset = %+v, want registration defaults", player)
	}
	if player.Identity != attackerID || !player.Initialized {
		t.Fatalf("reset must keep identity and initialization: %+v", player)
	}
}

func TestMigratePlayer(t *testing.T) {
	service, store, _ := newTestService(t)
	registerArena(t, service, attackerID)

	raw, err := store.GetPlayerRaw(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("get raw: %v", err)
	}
	legacy := raw[:record.LegacyEncodedSize]
	if err := store.PutPlayerRaw(context.Background(), attackerID, legacy); err != nil {
		t.Fatalf("put raw: %v", err)
	}

	player, err := service.MigratePlayer(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if player.Talents != talent.ResetRanks() || player.ManualBuild {
		t.Fatalf("migrated player = %+v, want zeroed trailer fields", player)
	}

	migrated, err := store.GetPlayerRaw(context.Background(), attackerID)
	if err != nil {
		t.Fatalf("get raw: %v", err)
	}
	if len(migrated) != record.EncodedSize {
		t.Fatalf("migrated length = %d, want %d", len(migrated), record.EncodedSize)
	}
}

func TestOperationsRequireKnownPlayer(t *testing.T) {
	service, _, _ := newTestService(t)
	registerArena(t, service)

	ghost := record.IdentityFromKey("ghost")
	if _, err := service.Respawn(context.Background(), ghost); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("respawn error = %v, want %s", err, apperrors.CodeNotFound)
	}
	if _, err := service.UpgradeTier(context.Background(), ghost, StatHealth); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("upgrade error = %v, want %s", err, apperrors.CodeNotFound)
	}
	if _, err := service.MigratePlayer(context.Background(), ghost); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("migrate error = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestOperationsRequireInitializedRecord(t *testing.T) {
	service, store, _ := newTestService(t)
	registerArena(t, service, attackerID, victimID)

	ctx := context.Background()
	attacker, err := service.GetPlayer(ctx, attackerID)
	if err != nil {
		t.Fatalf("get attacker: %v", err)
	}
	attacker.Initialized = false
	if err := store.UpdatePlayer(ctx, attacker); err != nil {
		t.Fatalf("update attacker: %v", err)
	}

	checks := []struct {
		name string
		call func() error
	}{
		{"attack", func() error { _, err := service.Attack(ctx, attackerID, victimID, 1); return err }},
		{"attack as victim", func() error { _, err := service.Attack(ctx, victimID, attackerID, 1); return err }},
		{"respawn", func() error { _, err := service.Respawn(ctx, attackerID); return err }},
		{"upgrade", func() error { _, err := service.UpgradeTier(ctx, attackerID, StatHealth); return err }},
		{"allocate talent", func() error { _, err := service.AllocateTalent(ctx, attackerID, 0); return err }},
		{"reset talents", func() error { _, err := service.ResetTalents(ctx, attackerID); return err }},
		{"reset player", func() error { _, err := service.ResetPlayer(ctx, attackerID); return err }},
	}
	for _, check := range checks {
		if err := check.call(); !apperrors.IsCode(err, apperrors.CodeCombatNotInitialized) {
			t.Fatalf("%s error = %v, want %s", check.name, err, apperrors.CodeCombatNotInitialized)
		}
	}
}
