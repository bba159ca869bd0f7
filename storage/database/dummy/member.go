package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/shule/core/member"
)

type memberRepository struct {
	db *memberTable
}

var _ member.Directory = (*memberRepository)(nil) // interface compliance check

func NewMemberDirectory(db *DB) member.Directory {
	return &memberRepository{db: db.member}
}

func (repo *memberRepository) QueryActiveMembers(ctx context.Context) ([]member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]member.Member, 0, len(repo.db.memberOrder))
	for _, id := range repo.db.memberOrder {
		if m := repo.db.members[id]; m.IsActive {
			members = append(members, *m)
		}
	}
	return members, nil
}

func (repo *memberRepository) GetMemberByID(ctx context.Context, id string) (member.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.members[id]; ok {
		return *m, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (repo *memberRepository) QueryLevels(ctx context.Context) ([]member.Level, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	levels := make([]member.Level, 0, len(repo.db.levelOrder))
	for _, id := range repo.db.levelOrder {
		levels = append(levels, *repo.db.levels[id])
	}
	return levels, nil
}

// Seeding helpers; membership data is owned elsewhere in the real system.

func (db *DB) AddMember(m member.Member) member.Member {
	db.member.Lock()
	defer db.member.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if _, exists := db.member.members[m.ID]; !exists {
		db.member.memberOrder = append(db.member.memberOrder, m.ID)
	}
	db.member.members[m.ID] = &m
	return m
}

func (db *DB) AddLevel(lvl member.Level) member.Level {
	db.member.Lock()
	defer db.member.Unlock()

	if lvl.ID == "" {
		lvl.ID = uuid.New().String()
	}
	if _, exists := db.member.levels[lvl.ID]; !exists {
		db.member.levelOrder = append(db.member.levelOrder, lvl.ID)
	}
	db.member.levels[lvl.ID] = &lvl
	return lvl
}
