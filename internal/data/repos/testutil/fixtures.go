package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentalgym-backend/internal/domain"
)

func SeedUser(tb testing.TB, tx *gorm.DB, plan string) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.com", id.String()[:8]),
		FirstName: "Ada",
		Plan:      plan,
	}
	if err := tx.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPracticeMode(tb testing.TB, tx *gorm.DB, key string) *types.PracticeMode {
	tb.Helper()
	m := &types.PracticeMode{
		Key:    fmt.Sprintf("%s-%s", key, uuid.NewString()[:6]),
		Name:   key,
		Active: true,
	}
	if err := tx.Create(m).Error; err != nil {
		tb.Fatalf("seed practice mode: %v", err)
	}
	return m
}

// SeedSession inserts a session in the given status. Completed and abandoned
// sessions end at endedAt.
func SeedSession(tb testing.TB, tx *gorm.DB, userID, modeID uuid.UUID, status string, endedAt time.Time) *types.TrainingSession {
	tb.Helper()
	s := &types.TrainingSession{
		UserID:         userID,
		PracticeModeID: modeID,
		Status:         status,
		LevelAtStart:   1,
		StartedAt:      endedAt.Add(-10 * time.Minute),
	}
	if status != types.SessionStatusActive {
		end := endedAt
		s.EndedAt = &end
		s.DurationSeconds = 600
	}
	if err := tx.Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedCompletedSessions(tb testing.TB, tx *gorm.DB, userID, modeID uuid.UUID, n int, lastEnded time.Time) {
	tb.Helper()
	for i := 0; i < n; i++ {
		SeedSession(tb, tx, userID, modeID, types.SessionStatusCompleted, lastEnded.Add(-time.Duration(n-1-i)*time.Hour))
	}
}

func SeedDimension(tb testing.TB, tx *gorm.DB, key, label, category string) *types.SkillDimension {
	tb.Helper()
	d := &types.SkillDimension{
		Key:       key,
		Label:     label,
		Category:  category,
		AnchorLow: "Rambles before answering",
		AnchorMid: "Answers first, then explains",
		Active:    true,
	}
	if err := tx.Create(d).Error; err != nil {
		tb.Fatalf("seed dimension: %v", err)
	}
	return d
}

// SeedScore inserts a drill score with one observation per entry of dims
// (dimension key -> score) and the given criterion outcomes.
func SeedScore(tb testing.TB, tx *gorm.DB, userID, sessionID, modeID uuid.UUID, drillType string, at time.Time, dims map[string]int, criteria map[string]bool) *types.DrillScore {
	tb.Helper()
	s := &types.DrillScore{
		UserID:         userID,
		SessionID:      sessionID,
		PracticeModeID: modeID,
		DrillType:      drillType,
		ResponseText:   "response",
		WordCount:      1,
		OverallScore:   5,
		CreatedAt:      at,
	}
	if err := tx.Create(s).Error; err != nil {
		tb.Fatalf("seed score: %v", err)
	}
	for key, score := range dims {
		b := &types.BlindSpot{UserID: userID, DrillScoreID: s.ID, DimensionKey: key, Score: score, CreatedAt: at}
		if err := tx.Create(b).Error; err != nil {
			tb.Fatalf("seed blind spot: %v", err)
		}
	}
	for key, passed := range criteria {
		c := &types.DrillCriterionResult{
			DrillScoreID: s.ID, UserID: userID, CriterionKey: key,
			DrillType: drillType, Passed: passed, CreatedAt: at,
		}
		if err := tx.Create(c).Error; err != nil {
			tb.Fatalf("seed criterion: %v", err)
		}
	}
	return s
}

func SeedEmail(tb testing.TB, tx *gorm.DB, userID uuid.UUID, emailType string, week, year int) *types.BlindSpotEmail {
	tb.Helper()
	e := &types.BlindSpotEmail{
		UserID:     userID,
		EmailType:  emailType,
		WeekNumber: week,
		Year:       year,
		SentAt:     time.Now().UTC(),
	}
	if err := tx.Create(e).Error; err != nil {
		tb.Fatalf("seed email: %v", err)
	}
	return e
}
