// Package app wires the engine components together and runs the HTTP
// server.
package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/abhisek/tutorcore/internal/api"
	"github.com/abhisek/tutorcore/internal/config"
	"github.com/abhisek/tutorcore/internal/difficulty"
	"github.com/abhisek/tutorcore/internal/logger"
	"github.com/abhisek/tutorcore/internal/mastery"
	"github.com/abhisek/tutorcore/internal/progression"
	"github.com/abhisek/tutorcore/internal/spacedrep"
	"github.com/abhisek/tutorcore/internal/store"
	"github.com/abhisek/tutorcore/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// Options holds optional collaborators.
type Options struct {
	Classifier tracker.DepthClassifier
	Now        func() time.Time
}

// App is the set of engine services over one store.
type App struct {
	Store       *store.Store
	Mastery     *mastery.Calculator
	Progression *progression.Service
	Reviews     *spacedrep.Queue
	Difficulty  *difficulty.Adjuster
	Tracker     *tracker.Tracker

	cfg *config.Config
	log *logger.Logger
}

// OpenStore opens the database named by cfg.DB, creating its directory for
// plain file paths.
func OpenStore(cfg *config.Config) (*store.Store, error) {
	if !strings.HasPrefix(cfg.DB, "file:") && cfg.DB != ":memory:" {
		if err := store.EnsureDir(cfg.DB); err != nil {
			return nil, errors.Wrap(err, "create database directory")
		}
	}
	return store.Open(cfg.DB)
}

// New builds all services over st.
func New(cfg *config.Config, st *store.Store, log *logger.Logger, opts Options) *App {
	log = logger.OrNop(log)

	calc := mastery.NewCalculator(st.Answers(), st.Curriculum(), log)
	queue := spacedrep.NewQueue(st.ReviewCards(), spacedrep.NewScheduler(cfg.Review.DesiredRetention), cfg.Review.SessionCap, log)
	prog := progression.NewService(st.Curriculum(), queue, log)
	adj := difficulty.NewAdjuster(st.Answers(), cfg.Difficulty.Window, cfg.Difficulty.RecentWindow, log)
	tr := tracker.New(st.Answers(), st.Curriculum(), calc, prog, queue, opts.Classifier, log)

	if opts.Now != nil {
		calc.Now = opts.Now
		queue.Now = opts.Now
		tr.Now = opts.Now
	}

	return &App{
		Store:       st,
		Mastery:     calc,
		Progression: prog,
		Reviews:     queue,
		Difficulty:  adj,
		Tracker:     tr,
		cfg:         cfg,
		log:         log,
	}
}

// Handler returns the HTTP handler for the API.
func (a *App) Handler() http.Handler {
	h := api.NewHandler(api.Services{
		Tracker:     a.Tracker,
		Mastery:     a.Mastery,
		Progression: a.Progression,
		Reviews:     a.Reviews,
		Difficulty:  a.Difficulty,
	}, a.log)
	h.Now = a.Reviews.Now
	return api.NewRouter(h, nil)
}

// Serve runs the HTTP server on cfg.Addr until ctx is cancelled, then
// shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	a.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return nil
}
