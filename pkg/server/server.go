package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/api"
	"github.com/adfharrison1/go-tripdb/pkg/booking"
	"github.com/adfharrison1/go-tripdb/pkg/chat"
	"github.com/adfharrison1/go-tripdb/pkg/config"
	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/metrics"
	"github.com/adfharrison1/go-tripdb/pkg/persistence"
	"github.com/adfharrison1/go-tripdb/pkg/remote"
	"github.com/adfharrison1/go-tripdb/pkg/storage"
	"github.com/adfharrison1/go-tripdb/pkg/store"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"
)

const (
	goroutineThreshold = 1000
	readinessTimeout   = 2 * time.Second
)

// Server holds references to storage, router, etc.
type Server struct {
	router   *mux.Router
	health   healthcheck.Handler
	adapter  *persistence.Adapter
	remote   *remote.Backend
	registry *store.Registry
	dataDir  string
}

// NewServer builds the persistence stack described by cfg, selects a backend,
// seeds empty collections and registers every route.
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	s := &Server{
		router: mux.NewRouter(),
		health: healthcheck.NewHandler(),
	}

	local, err := s.openLocal(cfg.Storage)
	if err != nil {
		return nil, err
	}

	options := []persistence.Option{
		persistence.WithProbeTimeout(cfg.Remote.ProbeTimeout),
		persistence.WithProbeCollection(cfg.Remote.ProbeCollection),
	}
	if cfg.Remote.DSN != "" {
		s.remote, err = remote.Connect(ctx, cfg.Remote.DSN,
			remote.WithTablePrefix(cfg.Remote.TablePrefix),
			remote.WithEnsureTables(cfg.Remote.EnsureTables),
		)
		if err != nil {
			zap.S().Warnf("Remote backend disabled: %v", err)
		} else {
			options = append(options, persistence.WithRemote(s.remote))
		}
	}

	s.adapter = persistence.New(local, options...)
	kind := s.adapter.DetectBackend(ctx)
	zap.S().Infof("Using %s persistence backend", kind)

	s.registry = store.NewRegistry(s.adapter)
	if cfg.Seed.Enabled {
		if err := s.seed(ctx, cfg.Seed.File); err != nil {
			s.Close()
			return nil, err
		}
	}

	hotels, err := s.registry.Get(ctx, store.CollectionHotels)
	if err != nil {
		s.Close()
		return nil, err
	}
	bookings, err := s.registry.Get(ctx, store.CollectionBookings)
	if err != nil {
		s.Close()
		return nil, err
	}

	assistant, err := loadChat(cfg.Chat.RulesFile)
	if err != nil {
		s.Close()
		return nil, err
	}

	handler := api.NewHandler(s.registry, booking.NewService(bookings, hotels), assistant, s.adapter)
	handler.RegisterRoutes(s.router)
	s.routes()

	// Use the logging middleware for all routes
	s.router.Use(requestLoggerMiddleware)

	// Customize NotFoundHandler to log 404s
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zap.S().Warnf("No route found for %s %s", r.Method, r.URL.Path)
		api.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	})

	return s, nil
}

func (s *Server) openLocal(cfg config.StorageConfig) (*storage.LocalBackend, error) {
	var kv storage.KVStore
	switch cfg.Mode {
	case config.StorageMemory:
		kv = storage.NewMemoryKV()
		zap.S().Warnf("Using in-memory storage; data is lost on exit")
	default:
		fileKV, err := storage.NewFileKV(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		s.dataDir = fileKV.Dir()
		kv = fileKV
		zap.S().Infof("Using data directory: %s", s.dataDir)
	}
	return storage.NewLocalBackend(kv, storage.WithKeyPrefix(cfg.KeyPrefix)), nil
}

func (s *Server) seed(ctx context.Context, file string) error {
	var (
		data store.SeedData
		err  error
	)
	if file != "" {
		data, err = store.LoadSeedFile(file)
	} else {
		data, err = store.DefaultSeed()
	}
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}
	return store.SeedAll(ctx, s.registry, data)
}

func loadChat(rulesFile string) (*chat.Table, error) {
	if rulesFile == "" {
		return chat.DefaultTable()
	}
	zap.S().Infof("Loading chat rules from %s", rulesFile)
	return chat.LoadFile(rulesFile)
}

// routes registers the operational endpoints next to the API
func (s *Server) routes() {
	s.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(goroutineThreshold))
	s.health.AddReadinessCheck("backend", healthcheck.Timeout(s.backendCheck(), readinessTimeout))

	s.router.HandleFunc("/live", s.health.LiveEndpoint).Methods("GET")
	s.router.HandleFunc("/ready", s.health.ReadyEndpoint).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
}

// backendCheck reports whether the selected backend can still serve requests
func (s *Server) backendCheck() healthcheck.Check {
	return func() error {
		switch s.adapter.Kind() {
		case domain.BackendUndetected:
			return fmt.Errorf("persistence backend not detected")
		case domain.BackendRemote:
			ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
			defer cancel()
			return s.remote.Ping(ctx)
		}
		if s.dataDir != "" {
			if _, err := os.Stat(s.dataDir); err != nil {
				return fmt.Errorf("data directory unavailable: %w", err)
			}
		}
		return nil
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLoggerMiddleware logs the method, URL path, and duration for each
// request and records it under its route template.
func requestLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		elapsed := time.Since(start)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		metrics.ObserveRequest(r.Method, route, strconv.Itoa(recorder.status), elapsed)
		zap.S().Infof("Request %s %s took %s", r.Method, r.URL.Path, elapsed)
	})
}

// Router exposes the internal mux.Router.
func (s *Server) Router() http.Handler {
	return s.router
}

// Backend reports the persistence backend selected at startup
func (s *Server) Backend() domain.BackendKind {
	return s.adapter.Kind()
}

// Close releases the remote connection pool, if any
func (s *Server) Close() {
	if s.remote != nil {
		s.remote.Close()
	}
}
