package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/session"
)

type sessionRepository struct {
	db *sessionTable
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, def session.Definition) (session.Definition, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	def.ID = uuid.New().String()
	repo.db.table[def.ID] = &def
	repo.db.order = append(repo.db.order, def.ID)
	return def, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Definition, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if def, ok := repo.db.table[id]; ok {
		return *def, nil
	}
	return session.Definition{}, session.ErrNotFound
}

func (repo *sessionRepository) QuerySessions(ctx context.Context, filter session.QueryFilter) ([]session.Definition, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	defs := make([]session.Definition, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		def := *repo.db.table[id]
		if matchesFilter(def, filter) {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func matchesFilter(def session.Definition, filter session.QueryFilter) bool {
	if filter.ActiveOnly && !def.IsActive {
		return false
	}
	if filter.IsActive != nil && def.IsActive != *filter.IsActive {
		return false
	}
	if filter.Category != "" && def.Category != filter.Category {
		return false
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(def.Name), search) &&
			!strings.Contains(strings.ToLower(def.Description), search) {
			return false
		}
	}
	if filter.LevelID != "" {
		var found bool
		for _, id := range def.LevelIDs {
			if id == filter.LevelID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, def session.Definition) (session.Definition, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[def.ID]; !ok {
		return session.Definition{}, session.ErrNotFound
	}
	repo.db.table[def.ID] = &def
	return def, nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return session.ErrNotFound
	}
	delete(repo.db.table, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}
