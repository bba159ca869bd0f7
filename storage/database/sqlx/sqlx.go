// Package sqlxrepos implements the core repositories on PostgreSQL
// via sqlx, with squirrel as the statement builder.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
