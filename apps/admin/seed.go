package main

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/session"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// seed loads a demo dataset: three levels, a handful of members and a
// recurring weekly lesson per level. Re-running inserts new rows.
func (cli *commandLine) seed() error {
	ctx := context.Background()
	now := time.Now().UTC()

	levels := []string{"Grade 1", "Grade 2", "Grade 3"}
	levelIDs := make([]string, len(levels))
	for i, name := range levels {
		levelIDs[i] = uuid.New().String()
		query, args, err := psql.Insert("level").
			Columns("id", "name", "created_at").
			Values(levelIDs[i], name, now).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = cli.db.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "seeding levels")
		}
	}

	members := []struct {
		first, last, role, email string
		level                    int
	}{
		{"Amina", "Kabeya", "student", "amina@example.com", 0},
		{"Joseph", "Ilunga", "student", "joseph@example.com", 0},
		{"Grace", "Mwamba", "student", "grace@example.com", 1},
		{"Daniel", "Tshisekedi", "student", "daniel@example.com", 1},
		{"Esther", "Kalala", "student", "esther@example.com", 2},
	}
	for _, m := range members {
		query, args, err := psql.Insert("member").
			Columns("id", "first_name", "last_name", "role", "level_id", "email", "is_active", "created_at").
			Values(uuid.New().String(), m.first, m.last, m.role, levelIDs[m.level], m.email, true, now).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = cli.db.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "seeding members")
		}
	}

	instructorID := uuid.New().String()
	query, args, err := psql.Insert("member").
		Columns("id", "first_name", "last_name", "role", "level_id", "email", "is_active", "created_at").
		Values(instructorID, "Marie", "Tumba", "teacher", nil, "marie@example.com", true, now).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = cli.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "seeding instructor")
	}

	// recurring weekly lesson per level
	repo := sqlxrepos.NewSessionRepository(sqlx.NewDb(cli.db, cli.conf.Database.Engine))
	anchor := startOfWeek(now).AddDate(0, 0, 1) // Monday this week
	for i, levelID := range levelIDs {
		def := session.Definition{
			Name:         "Weekly Lesson - " + levels[i],
			Category:     session.CategoryLesson,
			AnchorDate:   anchor,
			StartTime:    "09:00",
			EndTime:      "10:30",
			InstructorID: instructorID,
			LevelIDs:     []string{levelID},
			Recurring:    true,
			Recurrence: &session.Recurrence{
				Rule: session.Weekly{Interval: 1, Weekdays: []time.Weekday{time.Monday}},
			},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := repo.CreateSession(ctx, def); err != nil {
			return errors.Wrap(err, "seeding sessions")
		}
	}

	logger.Printf("seeded %d levels, %d members and %d sessions", len(levels), len(members)+1, len(levels))
	return nil
}

func startOfWeek(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
