package session

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	// errors
	ErrNotFound = errors.New("session not found")
)

type (
	Repository interface {
		CreateSession(ctx context.Context, def Definition) (Definition, error)
		GetSessionByID(ctx context.Context, id string) (Definition, error)
		// QuerySessions applies AND operation on available QueryFilter fields.
		QuerySessions(ctx context.Context, filter QueryFilter) ([]Definition, error)
		UpdateSession(ctx context.Context, def Definition) (Definition, error)
		DeleteSession(ctx context.Context, id string) error
	}

	// RecordChecker reports whether attendance was ever recorded against a
	// session; satisfied by the attendance repository.
	RecordChecker interface {
		SessionHasRecords(ctx context.Context, sessionID string) (bool, error)
	}

	Service struct {
		repo     Repository
		checker  RecordChecker
		validate *validator.Validate
		nowFn    func() time.Time
	}
)

func NewService(repo Repository, checker RecordChecker, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		checker:  checker,
		validate: validate,
		nowFn:    time.Now,
	}
}

func (svc *Service) Create(ctx context.Context, ns NewSession) (Definition, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Definition{}, err
	}
	now := svc.nowFn().UTC()
	def := ns.definition()
	def.CreatedAt = now
	def.UpdatedAt = now
	return svc.repo.CreateSession(ctx, def)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Definition, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Definition, error) {
	return svc.repo.QuerySessions(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateSession) (Definition, error) {
	orig, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Definition{}, err
	}
	if err = uu.Validate(svc.validate, orig); err != nil {
		return Definition{}, err
	}
	def := uu.apply(orig)
	def.UpdatedAt = svc.nowFn().UTC()
	return svc.repo.UpdateSession(ctx, def)
}

// Delete removes a session outright only while no attendance has been
// recorded against it; otherwise it deactivates the session to preserve
// history. It reports whether the session was deactivated instead of deleted.
func (svc *Service) Delete(ctx context.Context, id string) (deactivated bool, err error) {
	def, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return false, err
	}

	hasRecords, err := svc.checker.SessionHasRecords(ctx, id)
	if err != nil {
		return false, errors.Wrap(err, "checking recorded attendance")
	}
	if !hasRecords {
		return false, svc.repo.DeleteSession(ctx, id)
	}

	def.IsActive = false
	def.UpdatedAt = svc.nowFn().UTC()
	if _, err = svc.repo.UpdateSession(ctx, def); err != nil {
		return false, errors.Wrap(err, "deactivating session")
	}
	return true, nil
}

// Occurrences expands all active sessions over the closed range
// [from, to], sorted by date then name.
func (svc *Service) Occurrences(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	defs, err := svc.repo.QuerySessions(ctx, QueryFilter{ActiveOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	occurrences := make([]Occurrence, 0)
	for _, def := range defs {
		for _, date := range Expand(def, from, to) {
			occurrences = append(occurrences, def.occurrenceOn(date))
		}
	}
	sort.SliceStable(occurrences, func(i, j int) bool {
		if !occurrences[i].Date.Equal(occurrences[j].Date) {
			return occurrences[i].Date.Before(occurrences[j].Date)
		}
		if occurrences[i].StartTime != occurrences[j].StartTime {
			return occurrences[i].StartTime < occurrences[j].StartTime
		}
		return occurrences[i].Name < occurrences[j].Name
	})
	return occurrences, nil
}

// MonthGrid expands all active sessions over the 42-day grid span of the
// given month and lays them out as a 6x7 calendar.
func (svc *Service) MonthGrid(ctx context.Context, year int, month time.Month) ([]GridCell, error) {
	start := GridStart(year, month)
	end := start.AddDate(0, 0, GridCells-1)

	occurrences, err := svc.Occurrences(ctx, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]Occurrence)
	for _, occ := range occurrences {
		key := core.FormatDate(occ.Date)
		byDate[key] = append(byDate[key], occ)
	}
	return BuildMonthGrid(year, month, byDate, svc.nowFn()), nil
}
