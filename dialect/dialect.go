// Package dialect names the relational dialects that queries can be
// compiled for. A dialect value is carried by a relational schema binding
// and tells the backend compiler which SQL flavor to emit.
package dialect

// Dialect identifies a SQL flavor.
type Dialect string

// Supported dialects.
const (
	// Postgres is the PostgreSQL dialect.
	Postgres Dialect = "postgres"
	// MySQL is the MySQL/MariaDB dialect.
	MySQL Dialect = "mysql"
	// MSSQL is the Microsoft SQL Server dialect.
	MSSQL Dialect = "mssql"
	// SQLite is the SQLite dialect.
	SQLite Dialect = "sqlite"
)

// String returns the dialect name.
func (d Dialect) String() string { return string(d) }

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	switch d {
	case Postgres, MySQL, MSSQL, SQLite:
		return true
	}
	return false
}
