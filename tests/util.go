package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/shule/core/member"
	"github.com/trezcool/shule/core/session"
	dummydb "github.com/trezcool/shule/storage/database/dummy"
)

func OpenDB(t *testing.T) *dummydb.DB {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateLevel(t *testing.T, db *dummydb.DB, name string) member.Level {
	t.Helper()
	return db.AddLevel(member.Level{Name: name})
}

func CreateMember(t *testing.T, db *dummydb.DB, first, last, levelID string, isActive bool) member.Member {
	t.Helper()
	return db.AddMember(member.Member{
		FirstName: first,
		LastName:  last,
		Role:      "student",
		LevelID:   levelID,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	})
}

func CreateSessionDef(
	t *testing.T,
	repo session.Repository,
	name string,
	anchor time.Time,
	levelIDs []string,
	rec *session.Recurrence,
) session.Definition {
	t.Helper()
	now := time.Now().UTC()
	def := session.Definition{
		Name:       name,
		Category:   session.CategoryLesson,
		AnchorDate: anchor,
		StartTime:  "09:00",
		EndTime:    "10:00",
		LevelIDs:   levelIDs,
		Recurring:  rec != nil,
		Recurrence: rec,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	def, err := repo.CreateSession(context.Background(), def)
	if err != nil {
		t.Fatalf("CreateSessionDef() failed: %v", err)
	}
	return def
}
