package attendance

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/member"
	"github.com/trezcool/shule/core/session"
)

var (
	// errors
	ErrOccurrenceNotFound  = errors.New("no attendance recorded for this occurrence")
	ErrOccurrenceCancelled = errors.New("attendance cannot be recorded for a cancelled occurrence")

	errCountOverflow = errors.New("attendance count exceeds total expected")
)

type (
	Repository interface {
		// GetOccurrence returns the persisted occurrence row for a
		// (session, date) pair; ErrOccurrenceNotFound when never acted upon.
		GetOccurrence(ctx context.Context, sessionID string, date time.Time) (Session, error)
		QueryOccurrences(ctx context.Context, from, to time.Time) ([]Session, error)
		QueryOccurrenceRecords(ctx context.Context, sessionID string, date time.Time) ([]Record, error)
		QueryMemberRecords(ctx context.Context, memberID string, from, to time.Time) ([]Record, error)
		SessionHasRecords(ctx context.Context, sessionID string) (bool, error)
		// SaveBatch persists the occurrence row (creating it if needed) and
		// applies the insert/update lists as a single atomic batch. Writes
		// are serialized per (session, date) key so concurrent bulk saves
		// cannot interleave against stale snapshots.
		SaveBatch(ctx context.Context, occ Session, inserts, updates []Record) (Session, error)
	}

	Service struct {
		repo     Repository
		sessions session.Repository
		dir      member.Directory
		mailSvc  core.EmailService
		logger   core.Logger
		conf     *core.Config
		nowFn    func() time.Time
	}
)

func NewService(
	repo Repository,
	sessions session.Repository,
	dir member.Directory,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		dir:      dir,
		mailSvc:  mailSvc,
		logger:   logger,
		conf:     conf,
		nowFn:    time.Now,
	}
}

// Roster builds the editable roster for one occurrence: eligible members
// defaulted to absent, overlaid with persisted records. The member snapshot
// is read-only for the duration of the call.
func (svc *Service) Roster(ctx context.Context, sessionID string, date time.Time) ([]RosterEntry, error) {
	def, err := svc.sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	members, err := svc.dir.QueryActiveMembers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	existing, err := svc.repo.QueryOccurrenceRecords(ctx, sessionID, core.DateOf(date))
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return BuildRoster(def, members, existing), nil
}

// TakeResult reports the outcome of a bulk save. Skipped edits (stale
// roster) make the save a partial success the caller can act on.
type TakeResult struct {
	Occurrence Session  `json:"occurrence"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Skipped    []string `json:"skipped,omitempty"`
	Stats      Stats    `json:"stats"`
}

// Take reconciles a batch of edited statuses against the persisted records
// of one occurrence and applies the result atomically, recomputing the
// occurrence counters from the post-reconcile record set.
func (svc *Service) Take(ctx context.Context, ba BulkAttendance, takenBy string) (TakeResult, error) {
	date, err := core.ParseDate(ba.Date)
	if err != nil {
		return TakeResult{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}

	def, err := svc.sessions.GetSessionByID(ctx, ba.SessionID)
	if err != nil {
		return TakeResult{}, err
	}
	members, err := svc.dir.QueryActiveMembers(ctx)
	if err != nil {
		return TakeResult{}, errors.Wrap(err, "querying members")
	}
	existing, err := svc.repo.QueryOccurrenceRecords(ctx, ba.SessionID, date)
	if err != nil {
		return TakeResult{}, errors.Wrap(err, "querying attendance records")
	}

	occ, err := svc.repo.GetOccurrence(ctx, ba.SessionID, date)
	switch errors.Cause(err) {
	case nil:
		if occ.Status == SessionCancelled {
			return TakeResult{}, core.NewValidationError(ErrOccurrenceCancelled)
		}
	case ErrOccurrenceNotFound:
		// lazily created on first recording; recording implies it started
		occ = Session{
			SessionID: ba.SessionID,
			Date:      date,
			Status:    SessionInProgress,
			CreatedAt: svc.nowFn().UTC(),
		}
	default:
		return TakeResult{}, errors.Wrap(err, "getting occurrence")
	}

	roster := BuildRoster(def, members, existing)
	res := Reconcile(ba.edits(), ba.SessionID, date, existing, roster, takenBy, svc.nowFn())
	merged := MergeRecords(existing, res)

	count, total := RecomputeCounts(merged, len(roster))
	if count > total {
		// a reconciliation bug, not valid data; report it loudly
		return TakeResult{}, errors.Wrapf(errCountOverflow, "occurrence %s %s: %d > %d",
			ba.SessionID, core.FormatDate(date), count, total)
	}

	if occ.Status == SessionScheduled {
		occ.Status = SessionInProgress
	}
	occ.AttendanceCount = count
	occ.TotalExpected = total
	occ.TakenBy = takenBy
	occ.UpdatedAt = svc.nowFn().UTC()

	occ, err = svc.repo.SaveBatch(ctx, occ, res.Inserts, res.Updates)
	if err != nil {
		return TakeResult{}, errors.Wrap(err, "saving attendance batch")
	}

	for _, memberID := range res.Skipped {
		svc.logger.Warn("skipped attendance edit for member outside roster",
			map[string]interface{}{"session": ba.SessionID, "date": ba.Date, "member": memberID})
	}

	stats := Aggregate(merged)
	if svc.conf.SendAttendanceSummary && def.InstructorID != "" {
		svc.sendSummaryMail(ctx, def, date, stats)
	}

	return TakeResult{
		Occurrence: occ,
		Inserted:   len(res.Inserts),
		Updated:    len(res.Updates),
		Skipped:    res.Skipped,
		Stats:      stats,
	}, nil
}

// Occurrences returns the persisted occurrences falling within the
// closed window [from, to]; occurrences never acted upon have no row
// and are not listed.
func (svc *Service) Occurrences(ctx context.Context, from, to time.Time) ([]Session, error) {
	occurrences, err := svc.repo.QueryOccurrences(ctx, core.DateOf(from), core.DateOf(to))
	if err != nil {
		return nil, errors.Wrap(err, "querying occurrences")
	}
	return occurrences, nil
}

// OccurrenceStats aggregates the persisted records of one occurrence.
func (svc *Service) OccurrenceStats(ctx context.Context, sessionID string, date time.Time) (Stats, error) {
	records, err := svc.repo.QueryOccurrenceRecords(ctx, sessionID, core.DateOf(date))
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying attendance records")
	}
	return Aggregate(records), nil
}

// MemberStats aggregates one member's history over an optional date window.
func (svc *Service) MemberStats(ctx context.Context, memberID string, from, to time.Time) (Stats, error) {
	if _, err := svc.dir.GetMemberByID(ctx, memberID); err != nil {
		return Stats{}, err
	}
	records, err := svc.repo.QueryMemberRecords(ctx, memberID, from, to)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying member records")
	}
	return AggregateByMember(memberID, records, from, to), nil
}

// Start moves an occurrence to in_progress, creating its row if needed.
func (svc *Service) Start(ctx context.Context, sessionID string, date time.Time, by string) (Session, error) {
	return svc.transition(ctx, sessionID, date, SessionInProgress, by)
}

// Complete marks an in-progress occurrence completed.
func (svc *Service) Complete(ctx context.Context, sessionID string, date time.Time, by string) (Session, error) {
	return svc.transition(ctx, sessionID, date, SessionCompleted, by)
}

// Cancel cancels an occurrence that was never started.
func (svc *Service) Cancel(ctx context.Context, sessionID string, date time.Time, by string) (Session, error) {
	return svc.transition(ctx, sessionID, date, SessionCancelled, by)
}

func (svc *Service) transition(ctx context.Context, sessionID string, date time.Time, to, by string) (Session, error) {
	date = core.DateOf(date)
	if _, err := svc.sessions.GetSessionByID(ctx, sessionID); err != nil {
		return Session{}, err
	}

	occ, err := svc.repo.GetOccurrence(ctx, sessionID, date)
	switch errors.Cause(err) {
	case nil:
	case ErrOccurrenceNotFound:
		occ = Session{
			SessionID: sessionID,
			Date:      date,
			Status:    SessionScheduled,
			CreatedAt: svc.nowFn().UTC(),
		}
	default:
		return Session{}, errors.Wrap(err, "getting occurrence")
	}

	if !CanTransition(occ.Status, to) {
		return Session{}, core.NewValidationError(
			errors.Errorf("occurrence cannot move from %s to %s", occ.Status, to),
			core.FieldError{Field: "status", Error: fmt.Sprintf("cannot move from %s to %s", occ.Status, to)},
		)
	}
	occ.Status = to
	occ.TakenBy = by
	occ.UpdatedAt = svc.nowFn().UTC()
	return svc.repo.SaveBatch(ctx, occ, nil, nil)
}

func (svc *Service) sendSummaryMail(ctx context.Context, def session.Definition, date time.Time, stats Stats) {
	instructor, err := svc.dir.GetMemberByID(ctx, def.InstructorID)
	if err != nil || instructor.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: instructor.FullName(), Address: instructor.Email}},
		Subject: fmt.Sprintf("Attendance summary - %s (%s)", def.Name, core.FormatDate(date)),
		TextContent: fmt.Sprintf(
			"Attendance for %s on %s:\n\nPresent: %d\nLate: %d\nExcused: %d\nAbsent: %d\n\nAttendance rate: %d%%\n",
			def.Name, core.FormatDate(date), stats.Present, stats.Late, stats.Excused, stats.Absent, stats.Rate),
	})
}
