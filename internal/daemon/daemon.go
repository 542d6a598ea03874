package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ember-coach/ember/internal/api"
	"github.com/ember-coach/ember/internal/app/coach"
	"github.com/ember-coach/ember/internal/app/engagement"
	"github.com/ember-coach/ember/internal/app/insight"
	"github.com/ember-coach/ember/internal/health"
	"github.com/ember-coach/ember/internal/infra/llm"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

// Daemon is the long-running Ember process. It owns the database,
// the coaching engine, and the HTTP API server.
type Daemon struct {
	cfg     Config
	db      *sqlite.DB
	coach   *coach.Coach
	checker *health.Checker
	server  *http.Server
}

// New constructs a Daemon from config, wiring every component explicitly.
func New(cfg Config, version string) (*Daemon, error) {
	home := emberHome()
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sqlite.Open(home)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	var llmClient *llm.Client
	if cfg.Coaching.LLMEndpoint != "" {
		llmClient = llm.New(cfg.Coaching.LLMEndpoint, cfg.Coaching.LLMAPIKey, cfg.Coaching.LLMModel)
		log.Printf("[daemon] LLM coaching enabled (model %s)", cfg.Coaching.LLMModel)
	} else {
		log.Printf("[daemon] LLM coaching disabled, using canned replies")
	}

	engineCfg := coach.DefaultConfig()
	engineCfg.Streak = engagement.StreakConfig{
		ContinueThreshold: cfg.Engine.StreakThreshold,
		ProgressStepCap:   cfg.Engine.ProgressStepCap,
	}
	riskCfg := insight.DefaultConfig()
	riskCfg.HighRiskThreshold = cfg.Engine.HighRiskThreshold
	engineCfg.Risk = riskCfg
	if cfg.Engine.EventWindowDays > 0 {
		engineCfg.EventWindowDays = cfg.Engine.EventWindowDays
	}
	if cfg.Engine.HorizonDays > 0 {
		engineCfg.HorizonDays = cfg.Engine.HorizonDays
	}

	c := coach.New(db, llmClient, engineCfg)

	checker := health.NewChecker(db, home)

	srv := api.NewServer(c, version)
	srv.SetHealthChecker(checker)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Daemon{
		cfg:     cfg,
		db:      db,
		coach:   c,
		checker: checker,
		server:  httpServer,
	}, nil
}

// Coach returns the coaching engine, for in-process callers like the CLI.
func (d *Daemon) Coach() *coach.Coach {
	return d.coach
}

// Serve runs the HTTP server until ctx is cancelled or a signal arrives.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go d.checker.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[daemon] listening on http://%s", d.server.Addr)
		if err := d.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("[daemon] shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[daemon] WARNING: server shutdown: %v", err)
	}

	return d.Close()
}

// Close releases the daemon's resources.
func (d *Daemon) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
