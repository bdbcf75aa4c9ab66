// Package server parses arena server flags and launches the service.
package server

import (
	"context"
	"flag"
	"net/http"

	entrypoint "github.com/louisbranch/ironarena/internal/platform/cmd"
	"github.com/louisbranch/ironarena/internal/services/arena/api/ws"
	"github.com/louisbranch/ironarena/internal/services/arena/app"
)

// Config holds arena server command configuration.
type Config struct {
	HTTPAddr   string `env:"IRONARENA_HTTP_ADDR" envDefault:":8080"`
	HealthAddr string `env:"IRONARENA_HEALTH_ADDR" envDefault:":8081"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The arena WebSocket listener address")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "The gRPC health probe listener address")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the arena service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArena, func(ctx context.Context) error {
		srv, err := app.NewServer(cfg.HTTPAddr, cfg.HealthAddr)
		if err != nil {
			return err
		}
		sessions, err := ws.LoadSessions(srv.DataDir())
		if err != nil {
			srv.Close()
			return err
		}
		mux := http.NewServeMux()
		ws.NewHandler(srv.Service(), sessions).Routes(mux)
		srv.SetHandler(mux)
		return srv.Serve(ctx)
	})
}
