// Package arenactl implements the operator CLI that edits the arena ledger
// directly, without going through the WebSocket API.
package arenactl

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/ironarena/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/ironarena/internal/platform/grpc"
	"github.com/louisbranch/ironarena/internal/services/arena/app"
	"github.com/louisbranch/ironarena/internal/services/arena/domain/record"
	"github.com/louisbranch/ironarena/internal/services/arena/storage/sqlite"
	"github.com/louisbranch/ironarena/internal/telemetry"
	gogrpc "google.golang.org/grpc"
)

const eventFeedLimit = 20

// Config holds arenactl configuration shared by every subcommand.
type Config struct {
	DataDir string `env:"IRONARENA_DATA_DIR" envDefault:"data"`
	DBPath  string `env:"IRONARENA_DB_PATH"`
}

func usage() string {
	return strings.Join([]string{
		"usage: arenactl <command> [flags]",
		"",
		"commands:",
		"  init-arena  -authority <key>   create the arena",
		"  register    -key <key>         register a player",
		"  migrate     -key <key>         migrate a player record to the current layout",
		"  show        [-key <key>]       print a player, or the arena and recent events",
		"  health      [-addr <addr>]     wait for the server health probe to report SERVING",
	}, "\n")
}

// Run dispatches one arenactl subcommand.
func Run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage())
	}

	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return err
	}

	command, rest := args[0], args[1:]
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArenaCtl, func(ctx context.Context) error {
		switch command {
		case "init-arena":
			return runInitArena(ctx, cfg, rest, out)
		case "register":
			return runRegister(ctx, cfg, rest, out)
		case "migrate":
			return runMigrate(ctx, cfg, rest, out)
		case "show":
			return runShow(ctx, cfg, rest, out)
		case "health":
			return runHealth(ctx, rest, out)
		default:
			return fmt.Errorf("unknown command %q\n%s", command, usage())
		}
	})
}

func newFlagSet(name string, cfg *Config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the arena ledger database")
	return fs
}

func openService(cfg Config) (*app.Service, func(), error) {
	path := cfg.DBPath
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(cfg.DataDir, "arena.db")
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, err
	}
	service := app.NewService(store, telemetry.NewEmitter(store))
	return service, func() { _ = store.Close() }, nil
}

func printJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func runInitArena(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	fs := newFlagSet("init-arena", &cfg)
	authority := fs.String("authority", "", "Authority key for the new arena")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*authority) == "" {
		return fmt.Errorf("init-arena requires -authority")
	}

	service, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	arena, err := service.InitArena(ctx, record.IdentityFromKey(*authority))
	if err != nil {
		return err
	}
	return printJSON(out, arena)
}

func runRegister(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	fs := newFlagSet("register", &cfg)
	key := fs.String("key", "", "Player key to register")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}
	if strings.TrimSpace(*key) == "" {
		return fmt.Errorf("register requires -key")
	}

	service, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	player, err := service.RegisterPlayer(ctx, record.IdentityFromKey(*key))
	if err != nil {
		return err
	}
	return printJSON(out, player)
}

func runMigrate(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	fs := newFlagSet("migrate", &cfg)
	key := fs.String("key", "", "Player key to migrate")
	identity := fs.String("identity", "", "Hex identity to migrate (alternative to -key)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}

	id, err := resolveIdentity(*key, *identity)
	if err != nil {
		return err
	}

	service, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	player, err := service.MigratePlayer(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(out, player)
}

func runShow(ctx context.Context, cfg Config, args []string, out io.Writer) error {
	fs := newFlagSet("show", &cfg)
	key := fs.String("key", "", "Player key to show")
	identity := fs.String("identity", "", "Hex identity to show (alternative to -key)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}

	service, closeStore, err := openService(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if strings.TrimSpace(*key) == "" && strings.TrimSpace(*identity) == "" {
		arena, err := service.GetArena(ctx)
		if err != nil {
			return err
		}
		events, err := service.RecentEvents(ctx, eventFeedLimit)
		if err != nil {
			return err
		}
		return printJSON(out, struct {
			Arena  record.Arena
			Events any
		}{Arena: arena, Events: events})
	}

	id, err := resolveIdentity(*key, *identity)
	if err != nil {
		return err
	}
	player, err := service.GetPlayer(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(out, player)
}

func runHealth(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	addr := fs.String("addr", "localhost:8081", "gRPC health listener address")
	timeout := fs.Duration("timeout", 5*time.Second, "How long to wait for a SERVING report")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return err
	}

	conn, err := gogrpc.NewClient(*addr, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		return err
	}
	defer conn.Close()

	waitCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	if err := platformgrpc.WaitForHealth(waitCtx, conn, "", nil); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, "SERVING")
	return err
}

func resolveIdentity(key, identity string) (record.Identity, error) {
	key = strings.TrimSpace(key)
	identity = strings.TrimSpace(identity)
	switch {
	case key != "" && identity != "":
		return record.Identity{}, fmt.Errorf("-key and -identity are mutually exclusive")
	case key != "":
		return record.IdentityFromKey(key), nil
	case identity != "":
		id, ok := record.ParseIdentity(identity)
		if !ok {
			return record.Identity{}, fmt.Errorf("identity must be a 64-character hex string")
		}
		return id, nil
	default:
		return record.Identity{}, fmt.Errorf("a -key or -identity is required")
	}
}
