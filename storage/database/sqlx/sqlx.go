// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx,
// with squirrel building the SQL.
package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
