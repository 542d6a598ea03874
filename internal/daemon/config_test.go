package daemon_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ember-coach/ember/internal/daemon"
)

func TestConfig_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("EMBER_HOME", t.TempDir())

	cfg, err := daemon.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 8490 {
		t.Errorf("expected default port 8490, got %d", cfg.API.Port)
	}
	if cfg.Engine.StreakThreshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %f", cfg.Engine.StreakThreshold)
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("expected prometheus on by default")
	}
}

func TestConfig_SaveAndReload(t *testing.T) {
	t.Setenv("EMBER_HOME", t.TempDir())

	cfg := daemon.DefaultConfig()
	cfg.API.Port = 9000
	cfg.Engine.HorizonDays = 21
	cfg.Coaching.LLMEndpoint = "http://localhost:11434"

	if err := daemon.SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := daemon.LoadConfig()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.API.Port != 9000 {
		t.Errorf("expected port 9000, got %d", loaded.API.Port)
	}
	if loaded.Engine.HorizonDays != 21 {
		t.Errorf("expected horizon 21, got %d", loaded.Engine.HorizonDays)
	}
	if loaded.Coaching.LLMEndpoint != "http://localhost:11434" {
		t.Errorf("endpoint not persisted: %q", loaded.Coaching.LLMEndpoint)
	}
}

func TestConfig_PartialFileKeepsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("EMBER_HOME", home)

	partial := "[api]\nport = 7777\n"
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(partial), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := daemon.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Port != 7777 {
		t.Errorf("expected overridden port, got %d", cfg.API.Port)
	}
	if cfg.Engine.ProgressStepCap != 5 {
		t.Errorf("unmentioned keys should keep defaults, got %f", cfg.Engine.ProgressStepCap)
	}
}
