package health

import (
	"context"
	"testing"
	"time"

	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestChecker_RunAllHealthy(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir())

	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_NoStatusesBeforeRun(t *testing.T) {
	db := newTestDB(t)
	c := NewChecker(db, t.TempDir())

	if len(c.Statuses()) != 0 {
		t.Error("expected no statuses before first run")
	}
	// Vacuously healthy until the first run reports otherwise.
	if !c.IsHealthy() {
		t.Error("expected healthy with no results yet")
	}
}

func TestChecker_SweepRemovesExpiredChallenges(t *testing.T) {
	db := newTestDB(t)

	expired := domain.Challenge{
		ID: "old", UserID: "u1", Type: domain.ChallengeCheckIns,
		Description: "old", Target: 5, RewardXP: 100,
		ExpiresAt: time.Now().AddDate(0, 0, -2),
	}
	if err := db.InsertChallenge(expired); err != nil {
		t.Fatalf("insert: %v", err)
	}

	c := NewChecker(db, t.TempDir())
	c.runAll(context.Background())

	n, err := db.DeleteExpiredChallenges(time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("health loop should have swept expired challenges, %d left", n)
	}
}
