package sqlite_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ember-coach/ember/internal/domain"
	"github.com/ember-coach/ember/internal/infra/sqlite"
)

func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleGoal() domain.Goal {
	return domain.Goal{
		ID:      "g1",
		OwnerID: "u1",
		Title:   "Learn the violin",
		Habits: []domain.Habit{
			{ID: "h1", GoalID: "g1", Text: "Practice scales"},
			{ID: "h2", GoalID: "g1", Text: "Play one piece"},
		},
		CreatedAt: time.Now(),
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Goal Repository Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestGoals_InsertAndGet(t *testing.T) {
	db := testDB(t)
	goal := sampleGoal()

	if err := db.InsertGoal(goal); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.GetGoal("g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != goal.Title || got.OwnerID != "u1" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Habits) != 2 || got.Habits[0].ID != "h1" {
		t.Errorf("habits not loaded in order: %+v", got.Habits)
	}
	if !got.LastCheckIn.IsZero() {
		t.Errorf("fresh goal should have zero LastCheckIn, got %v", got.LastCheckIn)
	}
}

func TestGoals_GetMissing(t *testing.T) {
	db := testDB(t)
	_, err := db.GetGoal("nope")
	if !errors.Is(err, domain.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestGoals_UpdateState(t *testing.T) {
	db := testDB(t)
	goal := sampleGoal()
	if err := db.InsertGoal(goal); err != nil {
		t.Fatalf("insert: %v", err)
	}

	goal.CurrentStreak = 3
	goal.BestStreak = 5
	goal.Progress = 15
	goal.LastCheckIn = time.Now()
	goal.Habits[0].Completed = true
	if err := db.UpdateGoalState(goal); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := db.GetGoal("g1")
	if got.CurrentStreak != 3 || got.BestStreak != 5 || got.Progress != 15 {
		t.Errorf("streak state not persisted: %+v", got)
	}
	if !got.Habits[0].Completed || got.Habits[1].Completed {
		t.Errorf("habit flags not persisted: %+v", got.Habits)
	}
	if got.LastCheckIn.IsZero() {
		t.Error("LastCheckIn not persisted")
	}

	missing := goal
	missing.ID = "nope"
	if err := db.UpdateGoalState(missing); !errors.Is(err, domain.ErrGoalNotFound) {
		t.Errorf("expected ErrGoalNotFound for missing goal, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Check-in Repository Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCheckIns_DuplicateDayRejected(t *testing.T) {
	db := testDB(t)
	if err := db.InsertGoal(sampleGoal()); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	day := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	first := domain.CheckIn{
		ID: "c1", UserID: "u1", GoalID: "g1", Date: day,
		CompletedHabitIDs: []string{"h1"}, CreatedAt: day,
	}
	if err := db.InsertCheckIn(first, false); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Same goal and day, different id and hour.
	dup := first
	dup.ID = "c2"
	dup.Date = day.Add(8 * time.Hour)
	err := db.InsertCheckIn(dup, false)
	if !errors.Is(err, domain.ErrDuplicateCheckIn) {
		t.Fatalf("expected ErrDuplicateCheckIn, got %v", err)
	}

	// Next day is fine.
	next := first
	next.ID = "c3"
	next.Date = day.AddDate(0, 0, 1)
	if err := db.InsertCheckIn(next, true); err != nil {
		t.Fatalf("next day insert: %v", err)
	}

	list, err := db.ListCheckInsByUser("u1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 stored check-ins, got %d", len(list))
	}
}

func TestCheckIns_ApplyAtomic(t *testing.T) {
	db := testDB(t)
	goal := sampleGoal()
	if err := db.InsertGoal(goal); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	day := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	checkIn := domain.CheckIn{
		ID: "c1", UserID: "u1", GoalID: "g1", Date: day,
		CompletedHabitIDs: []string{"h1"}, CreatedAt: day,
	}
	updated := goal
	updated.CurrentStreak = 1
	updated.BestStreak = 1
	updated.Progress = 5
	updated.LastCheckIn = day
	updated.Habits[0].Completed = true

	err := db.ApplyCheckIn(checkIn, false, updated, domain.UserXP{UserID: "u1", TotalXP: 70})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	has, err := db.HasCheckIn("g1", day)
	if err != nil || !has {
		t.Fatalf("check-in not recorded: has=%v err=%v", has, err)
	}
	got, _ := db.GetGoal("g1")
	if got.CurrentStreak != 1 || !got.Habits[0].Completed || got.LastCheckIn.IsZero() {
		t.Errorf("goal state not committed with check-in: %+v", got)
	}
	xp, found, _ := db.GetUserXP("u1")
	if !found || xp.TotalXP != 70 {
		t.Errorf("xp not committed with check-in: found=%v %+v", found, xp)
	}

	// A second apply for the same day is a complete no-op: the duplicate is
	// rejected and the XP write never lands.
	dup := checkIn
	dup.ID = "c2"
	err = db.ApplyCheckIn(dup, false, updated, domain.UserXP{UserID: "u1", TotalXP: 999})
	if !errors.Is(err, domain.ErrDuplicateCheckIn) {
		t.Fatalf("expected ErrDuplicateCheckIn, got %v", err)
	}
	xp, _, _ = db.GetUserXP("u1")
	if xp.TotalXP != 70 {
		t.Errorf("duplicate apply changed XP: %+v", xp)
	}
}

func TestCheckIns_ApplyRollsBackOnFailure(t *testing.T) {
	db := testDB(t)
	goal := sampleGoal()

	day := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	checkIn := domain.CheckIn{
		ID: "c1", UserID: "u1", GoalID: "g1", Date: day,
		CompletedHabitIDs: []string{"h1"}, CreatedAt: day,
	}

	// The goal row does not exist yet, so the whole apply must fail and
	// leave the (goal, day) slot open.
	err := db.ApplyCheckIn(checkIn, false, goal, domain.UserXP{UserID: "u1", TotalXP: 70})
	if !errors.Is(err, domain.ErrGoalNotFound) {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
	has, err := db.HasCheckIn("g1", day)
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if has {
		t.Fatal("failed apply left a check-in row behind")
	}
	if _, found, _ := db.GetUserXP("u1"); found {
		t.Fatal("failed apply left an XP row behind")
	}

	// Once the goal exists, retrying the same day succeeds.
	if err := db.InsertGoal(goal); err != nil {
		t.Fatalf("insert goal: %v", err)
	}
	if err := db.ApplyCheckIn(checkIn, false, goal, domain.UserXP{UserID: "u1", TotalXP: 70}); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	has, _ = db.HasCheckIn("g1", day)
	if !has {
		t.Error("retry did not record the check-in")
	}
}

func TestCheckIns_UserStats(t *testing.T) {
	db := testDB(t)
	goal := sampleGoal()
	goal.CurrentStreak = 4
	goal.BestStreak = 6
	goal.Progress = 100
	if err := db.InsertGoal(goal); err != nil {
		t.Fatalf("insert goal: %v", err)
	}

	day := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		c := domain.CheckIn{
			ID: "c" + string(rune('0'+i)), UserID: "u1", GoalID: "g1",
			Date: day.AddDate(0, 0, i), CreatedAt: day,
		}
		if err := db.InsertCheckIn(c, i == 0); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if err := db.SaveUserXP(domain.UserXP{UserID: "u1", TotalXP: 250}); err != nil {
		t.Fatalf("save xp: %v", err)
	}

	stats, err := db.UserStats("u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalCheckIns != 3 || stats.PerfectDays != 1 {
		t.Errorf("check-in counts wrong: %+v", stats)
	}
	if stats.GoalsCreated != 1 || stats.GoalsCompleted != 1 {
		t.Errorf("goal counts wrong: %+v", stats)
	}
	if stats.CurrentStreak != 4 || stats.BestStreak != 6 {
		t.Errorf("streak figures wrong: %+v", stats)
	}
	if stats.TotalXP != 250 {
		t.Errorf("expected 250 XP, got %d", stats.TotalXP)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Log Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestEvents_AppendAndList(t *testing.T) {
	db := testDB(t)
	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	// Insert out of order; list must come back sorted by timestamp.
	for i, offset := range []int{2, 0, 1} {
		err := db.AppendEvent(domain.UserEvent{
			ID: "e" + string(rune('0'+i)), UserID: "u1",
			Timestamp: base.AddDate(0, 0, offset), Action: domain.ActionCheckIn,
			SentimentScore: -1, SessionSeconds: -1,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := db.ListEventsByUser("u1", base.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp.Before(events[i-1].Timestamp) {
			t.Fatal("events not in timestamp order")
		}
	}

	// The since bound excludes older events.
	events, _ = db.ListEventsByUser("u1", base.AddDate(0, 0, 1))
	if len(events) != 2 {
		t.Errorf("expected 2 events within window, got %d", len(events))
	}
}

func TestEvents_MissingTimestampRejected(t *testing.T) {
	db := testDB(t)
	err := db.AppendEvent(domain.UserEvent{ID: "e1", UserID: "u1", Action: domain.ActionAppOpen})
	if !errors.Is(err, domain.ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// XP / Achievement Persistence Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestUserXP_GetOrDefault(t *testing.T) {
	db := testDB(t)

	_, found, err := db.GetUserXP("nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Error("expected not found for fresh user")
	}

	if err := db.SaveUserXP(domain.UserXP{UserID: "u1", TotalXP: 120}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// Upsert overwrites.
	if err := db.SaveUserXP(domain.UserXP{UserID: "u1", TotalXP: 180}); err != nil {
		t.Fatalf("resave: %v", err)
	}

	state, found, err := db.GetUserXP("u1")
	if err != nil || !found {
		t.Fatalf("get after save: found=%v err=%v", found, err)
	}
	if state.TotalXP != 180 {
		t.Errorf("expected 180 XP, got %d", state.TotalXP)
	}
}

func TestAchievements_UnlockIdempotent(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	isNew, err := db.UnlockAchievement("u1", "first_checkin", now)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if !isNew {
		t.Error("first unlock should be new")
	}

	isNew, err = db.UnlockAchievement("u1", "first_checkin", now)
	if err != nil {
		t.Fatalf("re-unlock: %v", err)
	}
	if isNew {
		t.Error("second unlock should be a no-op")
	}

	unlocked, err := db.IsAchievementUnlocked("u1", "first_checkin")
	if err != nil || !unlocked {
		t.Fatalf("expected unlocked, got %v err=%v", unlocked, err)
	}

	list, err := db.ListUnlockedAchievements("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 row, got %d", len(list))
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenge Persistence Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestChallenges_ExpiryCleanup(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	expired := domain.Challenge{
		ID: "old", UserID: "u1", Type: domain.ChallengeCheckIns,
		Description: "old", Target: 5, RewardXP: 100,
		ExpiresAt: now.AddDate(0, 0, -1),
	}
	active := domain.Challenge{
		ID: "new", UserID: "u1", Type: domain.ChallengeStreak,
		Description: "new", Target: 7, RewardXP: 200,
		ExpiresAt: now.AddDate(0, 0, 6),
	}
	for _, ch := range []domain.Challenge{expired, active} {
		if err := db.InsertChallenge(ch); err != nil {
			t.Fatalf("insert %s: %v", ch.ID, err)
		}
	}

	// Expired challenges never show as active.
	list, err := db.ListActiveChallenges("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "new" {
		t.Fatalf("expected only the active challenge, got %+v", list)
	}

	n, err := db.DeleteExpiredChallenges(now)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
}
