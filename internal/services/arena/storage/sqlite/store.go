// Package sqlite provides a SQLite-backed arena storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/ironarena/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/storage"
	"github.com/louisbranch/ironarena/internal/services/arena/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists arena state in SQLite. Player and arena rows hold the
// encoded record image, so the byte layout on disk matches the wire layout.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite arena store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreatePlayer inserts one encoded player record.
func (s *Store) CreatePlayer(ctx context.Context, player record.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	data := record.Marshal(player)
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO players (identity, record, updated_at) VALUES (?, ?, ?)`,
		player.Identity.String(),
		data,
		toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err, "players.identity") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create player: %w", err)
	}
	return nil
}

// GetPlayer returns one decoded player record by identity.
func (s *Store) GetPlayer(ctx context.Context, id record.Identity) (record.Player, error) {
	data, err := s.GetPlayerRaw(ctx, id)
	if err != nil {
		return record.Player{}, err
	}
	player, err := record.Unmarshal(data)
	if err != nil {
		return record.Player{}, fmt.Errorf("decode player: %w", err)
	}
	return player, nil
}

// UpdatePlayer overwrites one encoded player record.
func (s *Store) UpdatePlayer(ctx context.Context, player record.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.putRaw(ctx, s.sqlDB, player.Identity, record.Marshal(player))
}

// GetPlayerRaw returns the stored byte image for one player without decoding.
func (s *Store) GetPlayerRaw(ctx context.Context, id record.Identity) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT record FROM players WHERE identity = ?`,
		id.String(),
	)
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get player: %w", err)
	}
	return data, nil
}

// PutPlayerRaw stores a byte image for one player without decoding. The row
// must already exist.
func (s *Store) PutPlayerRaw(ctx context.Context, id record.Identity, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.putRaw(ctx, s.sqlDB, id, data)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) putRaw(ctx context.Context, db execer, id record.Identity, data []byte) error {
	result, err := db.ExecContext(
		ctx,
		`UPDATE players SET record = ?, updated_at = ? WHERE identity = ?`,
		data,
		toMillis(time.Now()),
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateArena inserts the singleton arena record.
func (s *Store) CreateArena(ctx context.Context, arena record.Arena) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	data := record.MarshalArena(arena)
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO arena (id, record, updated_at) VALUES (1, ?, ?)`,
		data,
		toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err, "arena.id") {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create arena: %w", err)
	}
	return nil
}

// GetArena returns the singleton arena record.
func (s *Store) GetArena(ctx context.Context) (record.Arena, error) {
	if err := ctx.Err(); err != nil {
		return record.Arena{}, err
	}
	if s == nil || s.sqlDB == nil {
		return record.Arena{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT record FROM arena WHERE id = 1`)
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Arena{}, storage.ErrNotFound
		}
		return record.Arena{}, fmt.Errorf("get arena: %w", err)
	}
	arena, err := record.UnmarshalArena(data)
	if err != nil {
		return record.Arena{}, fmt.Errorf("decode arena: %w", err)
	}
	return arena, nil
}

// UpdateArena overwrites the singleton arena record.
func (s *Store) UpdateArena(ctx context.Context, arena record.Arena) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.updateArena(ctx, s.sqlDB, arena)
}

func (s *Store) updateArena(ctx context.Context, db execer, arena record.Arena) error {
	data := record.MarshalArena(arena)
	result, err := db.ExecContext(
		ctx,
		`UPDATE arena SET record = ?, updated_at = ? WHERE id = 1`,
		data,
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("update arena: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update arena: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendCombatEvent records one combat event.
func (s *Store) AppendCombatEvent(ctx context.Context, event storage.CombatEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.appendEvent(ctx, s.sqlDB, event)
}

func (s *Store) appendEvent(ctx context.Context, db execer, event storage.CombatEvent) error {
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO combat_events (kind, attacker, victim, damage, hits, fatal, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Kind,
		event.Attacker,
		event.Victim,
		int64(event.Damage),
		int64(event.Hits),
		boolToInt(event.Fatal),
		toMillis(occurredAt),
	)
	if err != nil {
		return fmt.Errorf("append combat event: %w", err)
	}
	return nil
}

// ListCombatEvents returns the most recent combat events, newest first.
func (s *Store) ListCombatEvents(ctx context.Context, limit int) ([]storage.CombatEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, kind, attacker, victim, damage, hits, fatal, occurred_at
		   FROM combat_events
		  ORDER BY occurred_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list combat events: %w", err)
	}
	defer rows.Close()

	events := make([]storage.CombatEvent, 0, limit)
	for rows.Next() {
		var event storage.CombatEvent
		var damage int64
		var hits int64
		var fatal int64
		var occurredAt int64
		if err := rows.Scan(
			&event.ID,
			&event.Kind,
			&event.Attacker,
			&event.Victim,
			&damage,
			&hits,
			&fatal,
			&occurredAt,
		); err != nil {
			return nil, fmt.Errorf("list combat events: %w", err)
		}
		event.Damage = uint16(damage)
		event.Hits = int(hits)
		event.Fatal = fatal != 0
		event.OccurredAt = fromMillis(occurredAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list combat events: %w", err)
	}
	return events, nil
}

// ApplyCombat commits attacker, victim, arena, and the combat event in one
// transaction.
func (s *Store) ApplyCombat(ctx context.Context, write storage.CombatWrite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	attackerData := record.Marshal(write.Attacker)
	victimData := record.Marshal(write.Victim)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin combat tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.putRaw(ctx, tx, write.Attacker.Identity, attackerData); err != nil {
		return err
	}
	if err := s.putRaw(ctx, tx, write.Victim.Identity, victimData); err != nil {
		return err
	}
	if err := s.updateArena(ctx, tx, write.Arena); err != nil {
		return err
	}
	if err := s.appendEvent(ctx, tx, write.Event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit combat tx: %w", err)
	}
	return nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, constraint)
}

var _ storage.Store = (*Store)(nil)
