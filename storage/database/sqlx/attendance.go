package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

var (
	occurrenceColumns = []string{
		"id", "session_id", "date", "status", "attendance_count", "total_expected",
		"taken_by", "created_at", "updated_at",
	}
	recordColumns = []string{
		"id", "session_id", "member_id", "date", "status", "arrival_time", "notes",
		"taken_by", "created_at", "updated_at",
	}
)

type occurrenceRow struct {
	ID              string    `db:"id"`
	SessionID       string    `db:"session_id"`
	Date            time.Time `db:"date"`
	Status          string    `db:"status"`
	AttendanceCount int       `db:"attendance_count"`
	TotalExpected   int       `db:"total_expected"`
	TakenBy         string    `db:"taken_by"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (row occurrenceRow) occurrence() attendance.Session {
	return attendance.Session{
		ID:              row.ID,
		SessionID:       row.SessionID,
		Date:            core.DateOf(row.Date),
		Status:          row.Status,
		AttendanceCount: row.AttendanceCount,
		TotalExpected:   row.TotalExpected,
		TakenBy:         row.TakenBy,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type recordRow struct {
	ID          string    `db:"id"`
	SessionID   string    `db:"session_id"`
	MemberID    string    `db:"member_id"`
	Date        time.Time `db:"date"`
	Status      string    `db:"status"`
	ArrivalTime string    `db:"arrival_time"`
	Notes       string    `db:"notes"`
	TakenBy     string    `db:"taken_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row recordRow) record() attendance.Record {
	return attendance.Record{
		ID:          row.ID,
		SessionID:   row.SessionID,
		MemberID:    row.MemberID,
		Date:        core.DateOf(row.Date),
		Status:      row.Status,
		ArrivalTime: row.ArrivalTime,
		Notes:       row.Notes,
		TakenBy:     row.TakenBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetOccurrence(ctx context.Context, sessionID string, date time.Time) (attendance.Session, error) {
	query, args, err := psql.Select(occurrenceColumns...).
		From("attendance_session").
		Where(sq.Eq{"session_id": sessionID, "date": core.DateOf(date)}).
		ToSql()
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "building query")
	}

	var row occurrenceRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return attendance.Session{}, attendance.ErrOccurrenceNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "getting occurrence")
	}
	return row.occurrence(), nil
}

func (repo *attendanceRepository) QueryOccurrences(ctx context.Context, from, to time.Time) ([]attendance.Session, error) {
	qb := psql.Select(occurrenceColumns...).
		From("attendance_session").
		OrderBy("date", "session_id")
	if !from.IsZero() {
		qb = qb.Where(sq.GtOrEq{"date": core.DateOf(from)})
	}
	if !to.IsZero() {
		qb = qb.Where(sq.LtOrEq{"date": core.DateOf(to)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []occurrenceRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying occurrences")
	}

	occs := make([]attendance.Session, len(rows))
	for i, row := range rows {
		occs[i] = row.occurrence()
	}
	return occs, nil
}

func (repo *attendanceRepository) QueryOccurrenceRecords(ctx context.Context, sessionID string, date time.Time) ([]attendance.Record, error) {
	query, args, err := psql.Select(recordColumns...).
		From("attendance_record").
		Where(sq.Eq{"session_id": sessionID, "date": core.DateOf(date)}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return repo.queryRecords(ctx, query, args)
}

func (repo *attendanceRepository) QueryMemberRecords(ctx context.Context, memberID string, from, to time.Time) ([]attendance.Record, error) {
	qb := psql.Select(recordColumns...).
		From("attendance_record").
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("date", "created_at")
	if !from.IsZero() {
		qb = qb.Where(sq.GtOrEq{"date": core.DateOf(from)})
	}
	if !to.IsZero() {
		qb = qb.Where(sq.LtOrEq{"date": core.DateOf(to)})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return repo.queryRecords(ctx, query, args)
}

func (repo *attendanceRepository) queryRecords(ctx context.Context, query string, args []interface{}) ([]attendance.Record, error) {
	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	records := make([]attendance.Record, len(rows))
	for i, row := range rows {
		records[i] = row.record()
	}
	return records, nil
}

func (repo *attendanceRepository) SessionHasRecords(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM attendance_record WHERE session_id = $1)", sessionID)
	if err != nil {
		return false, errors.Wrap(err, "checking attendance records")
	}
	return exists, nil
}

// SaveBatch runs in a single transaction; the occurrence row is locked
// (or inserted) first so concurrent saves for the same (session, date)
// serialize on it before touching records.
func (repo *attendanceRepository) SaveBatch(ctx context.Context, occ attendance.Session, inserts, updates []attendance.Record) (attendance.Session, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	occ.Date = core.DateOf(occ.Date)
	if occ, err = repo.saveOccurrence(ctx, tx, occ); err != nil {
		return attendance.Session{}, err
	}

	for _, rec := range inserts {
		rec.ID = uuid.New().String()
		query, args, err := psql.Insert("attendance_record").
			Columns(recordColumns...).
			Values(
				rec.ID, rec.SessionID, rec.MemberID, core.DateOf(rec.Date), rec.Status,
				rec.ArrivalTime, rec.Notes, rec.TakenBy, rec.CreatedAt, rec.UpdatedAt,
			).
			ToSql()
		if err != nil {
			return attendance.Session{}, errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return attendance.Session{}, errors.Wrap(err, "inserting attendance record")
		}
	}

	for _, rec := range updates {
		query, args, err := psql.Update("attendance_record").
			Set("status", rec.Status).
			Set("arrival_time", rec.ArrivalTime).
			Set("notes", rec.Notes).
			Set("taken_by", rec.TakenBy).
			Set("updated_at", rec.UpdatedAt).
			Where(sq.Eq{"id": rec.ID}).
			ToSql()
		if err != nil {
			return attendance.Session{}, errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return attendance.Session{}, errors.Wrap(err, "updating attendance record")
		}
	}

	if err = tx.Commit(); err != nil {
		return attendance.Session{}, errors.Wrap(err, "committing attendance batch")
	}
	return occ, nil
}

func (repo *attendanceRepository) saveOccurrence(ctx context.Context, tx *sqlx.Tx, occ attendance.Session) (attendance.Session, error) {
	var existing occurrenceRow
	err := tx.GetContext(ctx, &existing,
		"SELECT id, created_at FROM attendance_session WHERE session_id = $1 AND date = $2 FOR UPDATE",
		occ.SessionID, occ.Date)

	switch errors.Cause(err) {
	case nil:
		occ.ID = existing.ID
		occ.CreatedAt = existing.CreatedAt
		query, args, err := psql.Update("attendance_session").
			Set("status", occ.Status).
			Set("attendance_count", occ.AttendanceCount).
			Set("total_expected", occ.TotalExpected).
			Set("taken_by", occ.TakenBy).
			Set("updated_at", occ.UpdatedAt).
			Where(sq.Eq{"id": occ.ID}).
			ToSql()
		if err != nil {
			return attendance.Session{}, errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return attendance.Session{}, errors.Wrap(err, "updating occurrence")
		}

	case sql.ErrNoRows:
		occ.ID = uuid.New().String()
		query, args, err := psql.Insert("attendance_session").
			Columns(occurrenceColumns...).
			Values(
				occ.ID, occ.SessionID, occ.Date, occ.Status, occ.AttendanceCount,
				occ.TotalExpected, occ.TakenBy, occ.CreatedAt, occ.UpdatedAt,
			).
			ToSql()
		if err != nil {
			return attendance.Session{}, errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return attendance.Session{}, errors.Wrap(err, "inserting occurrence")
		}

	default:
		return attendance.Session{}, errors.Wrap(err, "locking occurrence")
	}
	return occ, nil
}
