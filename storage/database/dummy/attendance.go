package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func occKey(sessionID string, date time.Time) string {
	return sessionID + "|" + core.FormatDate(date)
}

func (repo *attendanceRepository) GetOccurrence(ctx context.Context, sessionID string, date time.Time) (attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if occ, ok := repo.db.occurrences[occKey(sessionID, date)]; ok {
		return *occ, nil
	}
	return attendance.Session{}, attendance.ErrOccurrenceNotFound
}

func (repo *attendanceRepository) QueryOccurrences(ctx context.Context, from, to time.Time) ([]attendance.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	occs := make([]attendance.Session, 0, len(repo.db.occurrences))
	for _, occ := range repo.db.occurrences {
		date := core.DateOf(occ.Date)
		if !from.IsZero() && date.Before(core.DateOf(from)) {
			continue
		}
		if !to.IsZero() && date.After(core.DateOf(to)) {
			continue
		}
		occs = append(occs, *occ)
	}
	return occs, nil
}

func (repo *attendanceRepository) QueryOccurrenceRecords(ctx context.Context, sessionID string, date time.Time) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, id := range repo.db.recordOrder {
		rec := repo.db.records[id]
		if rec.SessionID == sessionID && core.SameDate(rec.Date, date) {
			records = append(records, *rec)
		}
	}
	return records, nil
}

func (repo *attendanceRepository) QueryMemberRecords(ctx context.Context, memberID string, from, to time.Time) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]attendance.Record, 0)
	for _, id := range repo.db.recordOrder {
		rec := repo.db.records[id]
		if rec.MemberID != memberID {
			continue
		}
		date := core.DateOf(rec.Date)
		if !from.IsZero() && date.Before(core.DateOf(from)) {
			continue
		}
		if !to.IsZero() && date.After(core.DateOf(to)) {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (repo *attendanceRepository) SessionHasRecords(ctx context.Context, sessionID string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.records {
		if rec.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

// SaveBatch applies the occurrence row and record batch under the table
// write lock; the single lock serializes concurrent saves per occurrence
// (and then some, which is fine for an in-memory store).
func (repo *attendanceRepository) SaveBatch(ctx context.Context, occ attendance.Session, inserts, updates []attendance.Record) (attendance.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := occKey(occ.SessionID, occ.Date)
	if existing, ok := repo.db.occurrences[key]; ok {
		occ.ID = existing.ID
		occ.CreatedAt = existing.CreatedAt
	} else if occ.ID == "" {
		occ.ID = uuid.New().String()
	}
	repo.db.occurrences[key] = &occ

	for _, rec := range inserts {
		rec := rec
		rec.ID = uuid.New().String()
		repo.db.records[rec.ID] = &rec
		repo.db.recordOrder = append(repo.db.recordOrder, rec.ID)
	}
	for _, rec := range updates {
		rec := rec
		repo.db.records[rec.ID] = &rec
	}
	return occ, nil
}
