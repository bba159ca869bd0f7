package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/member"
)

var memberColumns = []string{"id", "first_name", "last_name", "role", "level_id", "email", "is_active", "created_at"}

type memberRow struct {
	ID        string      `db:"id"`
	FirstName string      `db:"first_name"`
	LastName  string      `db:"last_name"`
	Role      string      `db:"role"`
	LevelID   null.String `db:"level_id"`
	Email     string      `db:"email"`
	IsActive  bool        `db:"is_active"`
	CreatedAt time.Time   `db:"created_at"`
}

func (row memberRow) member() member.Member {
	return member.Member{
		ID:        row.ID,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Role:      row.Role,
		LevelID:   row.LevelID.String,
		Email:     row.Email,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
}

type levelRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type memberRepository struct {
	db *sqlx.DB
}

var _ member.Directory = (*memberRepository)(nil) // interface compliance check

func NewMemberDirectory(db *sqlx.DB) member.Directory {
	return &memberRepository{db: db}
}

func (repo *memberRepository) QueryActiveMembers(ctx context.Context) ([]member.Member, error) {
	query, args, err := psql.Select(memberColumns...).
		From("member").
		Where(sq.Eq{"is_active": true}).
		OrderBy("last_name", "first_name").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []memberRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying members")
	}

	members := make([]member.Member, len(rows))
	for i, row := range rows {
		members[i] = row.member()
	}
	return members, nil
}

func (repo *memberRepository) GetMemberByID(ctx context.Context, id string) (member.Member, error) {
	query, args, err := psql.Select(memberColumns...).
		From("member").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return member.Member{}, errors.Wrap(err, "building query")
	}

	var row memberRow
	if err = repo.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return member.Member{}, member.ErrNotFound
		}
		return member.Member{}, errors.Wrap(err, "getting member")
	}
	return row.member(), nil
}

func (repo *memberRepository) QueryLevels(ctx context.Context) ([]member.Level, error) {
	query, args, err := psql.Select("id", "name").
		From("level").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []levelRow
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying levels")
	}

	levels := make([]member.Level, len(rows))
	for i, row := range rows {
		levels[i] = member.Level{ID: row.ID, Name: row.Name}
	}
	return levels, nil
}
