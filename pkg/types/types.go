package types

import "strings"

// Dialect selects the SQL grammar used to parse scripts.
type Dialect int32

const (
	Dialect_DIALECT_UNSPECIFIED Dialect = 0
	Dialect_ANSI                Dialect = 1
	Dialect_POSTGRES            Dialect = 2
	Dialect_SNOWFLAKE           Dialect = 3
	Dialect_MYSQL               Dialect = 4
	Dialect_MARIADB             Dialect = 5
	Dialect_TIDB                Dialect = 6
)

func (d Dialect) String() string {
	switch d {
	case Dialect_ANSI:
		return "ansi"
	case Dialect_POSTGRES:
		return "postgres"
	case Dialect_SNOWFLAKE:
		return "snowflake"
	case Dialect_MYSQL:
		return "mysql"
	case Dialect_MARIADB:
		return "mariadb"
	case Dialect_TIDB:
		return "tidb"
	default:
		return "DIALECT_UNSPECIFIED"
	}
}

// ParseDialect maps a user-supplied dialect name to a Dialect value.
// Returns Dialect_DIALECT_UNSPECIFIED and false for unknown names.
func ParseDialect(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ansi", "":
		return Dialect_ANSI, true
	case "postgres", "postgresql":
		return Dialect_POSTGRES, true
	case "snowflake":
		return Dialect_SNOWFLAKE, true
	case "mysql":
		return Dialect_MYSQL, true
	case "mariadb":
		return Dialect_MARIADB, true
	case "tidb":
		return Dialect_TIDB, true
	default:
		return Dialect_DIALECT_UNSPECIFIED, false
	}
}

// CaseSensitive reports whether the dialect treats unquoted identifiers
// as case sensitive by convention.
func (d Dialect) CaseSensitive() bool {
	switch d {
	case Dialect_MYSQL, Dialect_MARIADB, Dialect_TIDB:
		return false
	case Dialect_SNOWFLAKE, Dialect_ANSI:
		return false
	case Dialect_POSTGRES:
		return true
	default:
		return true
	}
}

// Position represents a position in the source code
type Position struct {
	Line   int32 `json:"line"`
	Column int32 `json:"column"`
}
