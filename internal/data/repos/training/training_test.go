package training

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentalgym-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentalgym-backend/internal/domain"
	"github.com/yungbote/mentalgym-backend/internal/domain/training"
	"github.com/yungbote/mentalgym-backend/internal/platform/dbctx"
)

func TestProgressUpdateCreatesAndLocksRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewUserModeProgressRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := testutil.SeedUser(t, tx, "free")
	mode := testutil.SeedPracticeMode(t, tx, "interview")

	for i := 0; i < 2; i++ {
		if _, err := repo.Update(dbc, u.ID, mode.ID, func(p *types.UserModeProgress) error {
			p.TotalSessions++
			p.TotalTimeSeconds += 90
			return nil
		}); err != nil {
			t.Fatalf("Update #%d: %v", i, err)
		}
	}
	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected a single progress row, got %d", len(rows))
	}
	if rows[0].TotalSessions != 2 || rows[0].TotalTimeSeconds != 180 || rows[0].CurrentLevel != 1 {
		t.Fatalf("unexpected progress: %+v", rows[0])
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewUserModeProgressRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	u := testutil.SeedUser(t, tx, "free")
	mode := testutil.SeedPracticeMode(t, tx, "negotiation")

	a, err := repo.Ensure(dbc, u.ID, mode.ID)
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	b, err := repo.Ensure(dbc, u.ID, mode.ID)
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if a.ID != b.ID || b.CurrentLevel != 1 {
		t.Fatalf("expected same row at level 1: %+v %+v", a, b)
	}
}

func TestSessionTransitionOnlyFromActive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTrainingSessionRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	u := testutil.SeedUser(t, tx, "free")
	mode := testutil.SeedPracticeMode(t, tx, "interview")
	s := testutil.SeedSession(t, tx, u.ID, mode.ID, types.SessionStatusActive, time.Now().UTC())

	ok, err := repo.Transition(dbc, s.ID, types.SessionStatusActive, map[string]any{"status": types.SessionStatusAbandoned})
	if err != nil || !ok {
		t.Fatalf("first transition: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Transition(dbc, s.ID, types.SessionStatusActive, map[string]any{"status": types.SessionStatusCompleted})
	if err != nil || ok {
		t.Fatalf("terminal session must not transition: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.IncrementExchangeCount(dbc, s.ID); ok {
		t.Fatalf("exchange count must not change on abandoned session")
	}
	if _, err := repo.GetByID(dbc, uuid.New()); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestExchangeUsageReserve(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewExchangeUsageRepo(tx, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	u := testutil.SeedUser(t, tx, "free")

	for i := 0; i < 3; i++ {
		ok, err := repo.Reserve(dbc, u.ID, "2026-10-18", 3)
		if err != nil || !ok {
			t.Fatalf("Reserve #%d: ok=%v err=%v", i, ok, err)
		}
	}
	if ok, err := repo.Reserve(dbc, u.ID, "2026-10-18", 3); err != nil || ok {
		t.Fatalf("reservation over the limit: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Reserve(dbc, u.ID, "2026-10-19", 3); err != nil || !ok {
		t.Fatalf("next day starts fresh: ok=%v err=%v", ok, err)
	}
	for i := 0; i < 5; i++ {
		if ok, err := repo.Reserve(dbc, u.ID, "2026-10-19", 0); err != nil || !ok {
			t.Fatalf("unlimited reserve: ok=%v err=%v", ok, err)
		}
	}

	for day, want := range map[string]int{"2026-10-18": 3, "2026-10-19": 6, "2026-10-20": 0} {
		got, err := repo.Count(dbc, u.ID, day)
		if err != nil || got != want {
			t.Fatalf("Count(%s) = %d err=%v, want %d", day, got, err, want)
		}
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	at := time.Date(2026, 10, 19, 2, 30, 0, 0, time.UTC)
	if got := training.DayKey(at, loc); got != "2026-10-18" {
		t.Fatalf("DayKey = %s", got)
	}
	if got := training.DayKey(at, nil); got != "2026-10-19" {
		t.Fatalf("DayKey UTC = %s", got)
	}
}

// Concurrent updates need a database with row locks; SQLite serializes
// writers at the file level and reports busy instead.
func postgresOnly(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_DSN") == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	return testutil.DB(t)
}

func TestProgressUpdateSerializesConcurrentWriters(t *testing.T) {
	db := postgresOnly(t)
	repo := NewUserModeProgressRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, db, "unlimited")
	mode := testutil.SeedPracticeMode(t, db, "interview")
	t.Cleanup(func() {
		db.Where("user_id = ?", u.ID).Delete(&types.UserModeProgress{})
		db.Where("id = ?", mode.ID).Delete(&types.PracticeMode{})
		db.Where("id = ?", u.ID).Delete(&types.User{})
	})

	const (
		writers   = 12
		threshold = 3
	)
	var (
		wg   sync.WaitGroup
		errs = make(chan error, writers)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(dbctx.Context{Ctx: context.Background()}, u.ID, mode.ID, func(p *types.UserModeProgress) error {
				p.TotalSessions++
				p.SessionsAtCurrentLevel++
				if p.SessionsAtCurrentLevel >= threshold && p.CurrentLevel < training.MaxLevel {
					p.CurrentLevel++
					p.SessionsAtCurrentLevel = 0
				}
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}

	rows, err := repo.ListByUser(dbctx.Context{Ctx: context.Background()}, u.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: rows=%d err=%v", len(rows), err)
	}
	p := rows[0]
	if p.TotalSessions != writers {
		t.Fatalf("TotalSessions = %d, want %d", p.TotalSessions, writers)
	}
	wantLevel := training.MinLevel + writers/threshold
	if wantLevel > training.MaxLevel {
		wantLevel = training.MaxLevel
	}
	if p.CurrentLevel != wantLevel || p.SessionsAtCurrentLevel != 0 {
		t.Fatalf("level=%d counter=%d, want level=%d counter=0", p.CurrentLevel, p.SessionsAtCurrentLevel, wantLevel)
	}
}
