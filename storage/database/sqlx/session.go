package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
)

var sessionColumns = []string{
	"id", "name", "description", "category", "anchor_date", "start_time", "end_time",
	"location", "instructor_id", "level_ids", "recurring", "recurrence",
	"max_attendees", "is_active", "created_at", "updated_at",
}

type sessionRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	Category     string         `db:"category"`
	AnchorDate   time.Time      `db:"anchor_date"`
	StartTime    string         `db:"start_time"`
	EndTime      string         `db:"end_time"`
	Location     string         `db:"location"`
	InstructorID null.String    `db:"instructor_id"`
	LevelIDs     pq.StringArray `db:"level_ids"`
	Recurring    bool           `db:"recurring"`
	Recurrence   null.JSON      `db:"recurrence"`
	MaxAttendees int            `db:"max_attendees"`
	IsActive     bool           `db:"is_active"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// recurrenceDoc is the JSONB shape of a session.Recurrence; the Rule variant
// is flattened into frequency-tagged fields.
type recurrenceDoc struct {
	Frequency  string `json:"frequency"`
	Interval   int    `json:"interval"`
	Weekdays   []int  `json:"weekdays,omitempty"`
	DayOfMonth int    `json:"day_of_month,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	MaxCount   int    `json:"max_count,omitempty"`
}

func encodeRecurrence(rec *session.Recurrence) (null.JSON, error) {
	if rec == nil {
		return null.JSON{}, nil
	}
	doc := recurrenceDoc{
		Frequency: rec.Rule.Frequency(),
		Interval:  rec.Rule.Every(),
		MaxCount:  rec.MaxCount,
	}
	switch rule := rec.Rule.(type) {
	case session.Weekly:
		for _, wd := range rule.Weekdays {
			doc.Weekdays = append(doc.Weekdays, int(wd))
		}
	case session.Monthly:
		doc.DayOfMonth = rule.DayOfMonth
	}
	if !rec.EndDate.IsZero() {
		doc.EndDate = core.FormatDate(rec.EndDate)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return null.JSON{}, errors.Wrap(err, "encoding recurrence")
	}
	return null.JSONFrom(raw), nil
}

func decodeRecurrence(raw null.JSON) (*session.Recurrence, error) {
	if !raw.Valid {
		return nil, nil
	}
	var doc recurrenceDoc
	if err := json.Unmarshal(raw.JSON, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding recurrence")
	}

	var rule session.Rule
	switch doc.Frequency {
	case session.FreqWeekly:
		weekdays := make([]time.Weekday, len(doc.Weekdays))
		for i, wd := range doc.Weekdays {
			weekdays[i] = time.Weekday(wd)
		}
		rule = session.Weekly{Interval: doc.Interval, Weekdays: weekdays}
	case session.FreqMonthly:
		rule = session.Monthly{Interval: doc.Interval, DayOfMonth: doc.DayOfMonth}
	default:
		rule = session.Daily{Interval: doc.Interval}
	}

	rec := &session.Recurrence{Rule: rule, MaxCount: doc.MaxCount}
	if doc.EndDate != "" {
		end, err := core.ParseDate(doc.EndDate)
		if err != nil {
			return nil, errors.Wrap(err, "decoding recurrence end date")
		}
		rec.EndDate = end
	}
	return rec, nil
}

func newSessionRow(def session.Definition) (sessionRow, error) {
	rec, err := encodeRecurrence(def.Recurrence)
	if err != nil {
		return sessionRow{}, err
	}
	return sessionRow{
		ID:           def.ID,
		Name:         def.Name,
		Description:  def.Description,
		Category:     def.Category,
		AnchorDate:   core.DateOf(def.AnchorDate),
		StartTime:    def.StartTime,
		EndTime:      def.EndTime,
		Location:     def.Location,
		InstructorID: null.NewString(def.InstructorID, def.InstructorID != ""),
		LevelIDs:     pq.StringArray(def.LevelIDs),
		Recurring:    def.Recurring,
		Recurrence:   rec,
		MaxAttendees: def.MaxAttendees,
		IsActive:     def.IsActive,
		CreatedAt:    def.CreatedAt,
		UpdatedAt:    def.UpdatedAt,
	}, nil
}

func (row sessionRow) definition() (session.Definition, error) {
	rec, err := decodeRecurrence(row.Recurrence)
	if err != nil {
		return session.Definition{}, err
	}
	return session.Definition{
		ID:           row.ID,
		Name:         row.Name,
		Description:  row.Description,
		Category:     row.Category,
		AnchorDate:   core.DateOf(row.AnchorDate),
		StartTime:    row.StartTime,
		EndTime:      row.EndTime,
		Location:     row.Location,
		InstructorID: row.InstructorID.String,
		LevelIDs:     []string(row.LevelIDs),
		Recurring:    row.Recurring,
		Recurrence:   rec,
		MaxAttendees: row.MaxAttendees,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, def session.Definition) (session.Definition, error) {
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	row, err := newSessionRow(def)
	if err != nil {
		return session.Definition{}, err
	}

	query, args, err := psql.Insert("session").
		Columns(sessionColumns...).
		Values(
			row.ID, row.Name, row.Description, row.Category, row.AnchorDate, row.StartTime, row.EndTime,
			row.Location, row.InstructorID, row.LevelIDs, row.Recurring, row.Recurrence,
			row.MaxAttendees, row.IsActive, row.CreatedAt, row.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return session.Definition{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return session.Definition{}, errors.Wrap(err, "creating session")
	}
	return def, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Definition, error) {
	query, args, err := psql.Select(sessionColumns...).
		From("session").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return session.Definition{}, errors.Wrap(err, "building query")
	}

	var row sessionRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return session.Definition{}, session.ErrNotFound
		}
		return session.Definition{}, errors.Wrap(err, "getting session")
	}
	return row.definition()
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Definition, error) {
	qb := psql.Select(sessionColumns...).
		From("session").
		OrderBy("created_at", "id")

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		qb = qb.Where(sq.Or{sq.ILike{"name": search}, sq.ILike{"description": search}})
	}
	if filter.Category != "" {
		qb = qb.Where(sq.Eq{"category": filter.Category})
	}
	if filter.IsActive != nil {
		qb = qb.Where(sq.Eq{"is_active": *filter.IsActive})
	}
	if filter.ActiveOnly {
		qb = qb.Where(sq.Eq{"is_active": true})
	}
	if filter.LevelID != "" {
		qb = qb.Where(sq.Expr("level_ids @> ?", pq.StringArray{filter.LevelID}))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []sessionRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	defs := make([]session.Definition, len(rows))
	for i, row := range rows {
		if defs[i], err = row.definition(); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, def session.Definition) (session.Definition, error) {
	row, err := newSessionRow(def)
	if err != nil {
		return session.Definition{}, err
	}

	query, args, err := psql.Update("session").
		Set("name", row.Name).
		Set("description", row.Description).
		Set("category", row.Category).
		Set("anchor_date", row.AnchorDate).
		Set("start_time", row.StartTime).
		Set("end_time", row.EndTime).
		Set("location", row.Location).
		Set("instructor_id", row.InstructorID).
		Set("level_ids", row.LevelIDs).
		Set("recurring", row.Recurring).
		Set("recurrence", row.Recurrence).
		Set("max_attendees", row.MaxAttendees).
		Set("is_active", row.IsActive).
		Set("updated_at", row.UpdatedAt).
		Where(sq.Eq{"id": def.ID}).
		ToSql()
	if err != nil {
		return session.Definition{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return session.Definition{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.Definition{}, session.ErrNotFound
	}
	return def, nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	query, args, err := psql.Delete("session").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrNotFound
	}
	return nil
}
