// Package sqlstore implements the identity gallery on top of database/sql.
// It is shared by the PostgreSQL and MySQL/MariaDB backends, which differ only in
// placeholder syntax and in how the generated ID is returned.
package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect describes the SQL differences between supported backends.
type Dialect struct {
	Name string
	// NumberedParams rewrites '?' placeholders to $1, $2, ... (PostgreSQL).
	NumberedParams bool
	// Returning uses INSERT ... RETURNING id instead of LastInsertId.
	Returning bool
}

var (
	// Postgres is the dialect for lib/pq connections.
	Postgres = Dialect{Name: "postgres", NumberedParams: true, Returning: true}
	// MySQL is the dialect for go-sql-driver/mysql connections.
	MySQL = Dialect{Name: "mysql"}
)

// Rebind converts a query written with '?' placeholders to the dialect's syntax.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if !d.NumberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
