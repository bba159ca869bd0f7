package member

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("member not found")
	ErrLevelNotFound = errors.New("level not found")
)

type (
	// Directory is a read-only view over the externally-owned member and
	// level data. Implementations must hand out consistent snapshots;
	// callers never mutate what they are given.
	Directory interface {
		QueryActiveMembers(ctx context.Context) ([]Member, error)
		GetMemberByID(ctx context.Context, id string) (Member, error)
		QueryLevels(ctx context.Context) ([]Level, error)
	}

	Service struct {
		dir Directory
	}
)

func NewService(dir Directory) *Service {
	return &Service{dir: dir}
}

func (svc *Service) QueryActive(ctx context.Context) ([]Member, error) {
	return svc.dir.QueryActiveMembers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Member, error) {
	return svc.dir.GetMemberByID(ctx, id)
}

func (svc *Service) QueryLevels(ctx context.Context) ([]Level, error) {
	return svc.dir.QueryLevels(ctx)
}
