package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/ironarena/internal/platform/config"
	platformgrpc "github.com/louisbranch/ironarena/internal/platform/grpc"
	"github.com/louisbranch/ironarena/internal/services/arena/storage/sqlite"
	"github.com/louisbranch/ironarena/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

type serverEnv struct {
	DataDir string `env:"IRONARENA_DATA_DIR"`
	DBPath  string `env:"IRONARENA_DB_PATH"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "data"
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "arena.db")
	}
	return cfg
}

// Server hosts the arena HTTP listener, the health probe listener, and the
// storage lifecycle.
type Server struct {
	httpListener   net.Listener
	healthListener net.Listener
	httpServer     *http.Server
	health         *platformgrpc.HealthServer
	store          *sqlite.Store
	service        *Service
	dataDir        string
}

// NewServer creates a configured arena server on the provided addresses.
// The handler is registered by the caller before Serve.
func NewServer(httpAddr, healthAddr string) (*Server, error) {
	httpListener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	healthListener, err := net.Listen("tcp", healthAddr)
	if err != nil {
		_ = httpListener.Close()
		return nil, fmt.Errorf("listen on %s: %w", healthAddr, err)
	}

	env := loadServerEnv()
	store, err := sqlite.Open(env.DBPath)
	if err != nil {
		_ = httpListener.Close()
		_ = healthListener.Close()
		return nil, err
	}

	service := NewService(store, telemetry.NewEmitter(store))
	return &Server{
		httpListener:   httpListener,
		healthListener: healthListener,
		httpServer:     &http.Server{},
		health:         platformgrpc.NewHealthServer(),
		store:          store,
		service:        service,
		dataDir:        env.DataDir,
	}, nil
}

// Service returns the arena service for handler wiring.
func (s *Server) Service() *Service {
	if s == nil {
		return nil
	}
	return s.service
}

// DataDir returns the directory holding server state files.
func (s *Server) DataDir() string {
	if s == nil {
		return ""
	}
	return s.dataDir
}

// SetHandler installs the HTTP handler served on the main listener.
func (s *Server) SetHandler(handler http.Handler) {
	if s == nil || s.httpServer == nil {
		return
	}
	s.httpServer.Handler = handler
}

// Addr returns the main listener address.
func (s *Server) Addr() string {
	if s == nil || s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// Serve runs both listeners until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("arena server listening at %v", s.httpListener.Addr())
	log.Printf("health probe listening at %v", s.healthListener.Addr())

	serveErr := make(chan error, 2)
	go func() {
		serveErr <- s.httpServer.Serve(s.httpListener)
	}()
	go func() {
		serveErr <- s.health.Serve(s.healthListener)
	}()
	s.health.SetServing(true)

	select {
	case <-ctx.Done():
		s.health.SetServing(false)
		s.health.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the listeners and the storage handle.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Stop()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}
}
