// Package extractor extracts table references from SQL text using a real
// SQL grammar for the configured dialect.
//
// The MySQL-family dialects (mysql, mariadb, tidb) parse with the ANTLR
// MySQL grammar; everything else (ansi, postgres, snowflake) parses with
// the ANTLR PostgreSQL grammar. References are collected from every
// position the grammar resolves as naming a relation: FROM and JOIN
// clauses, subqueries, DML targets and DDL targets. Names introduced by a
// WITH clause are not relations and are excluded from the result.
package extractor

import (
	"fmt"
	"strings"

	"github.com/refguard/refguard/pkg/types"
)

// ParseError reports that the grammar could not produce a syntax tree for
// the given dialect.
type ParseError struct {
	Dialect types.Dialect
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse SQL as %s: %v", e.Dialect, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractTables parses sql with the grammar for the given dialect and
// returns the set of referenced relation names. Qualified references are
// returned as schema.table; unqualified ones as the bare name. For
// case-insensitive dialects names are lower-folded.
//
// Extraction is deterministic: repeated calls with the same inputs return
// the same set.
func ExtractTables(sql string, dialect types.Dialect) (map[string]bool, error) {
	var (
		tables map[string]bool
		ctes   map[string]bool
		err    error
	)

	switch dialect {
	case types.Dialect_MYSQL, types.Dialect_MARIADB, types.Dialect_TIDB:
		tables, ctes, err = extractMySQL(sql)
	case types.Dialect_ANSI, types.Dialect_POSTGRES, types.Dialect_SNOWFLAKE:
		tables, ctes, err = extractPostgres(sql)
	default:
		return nil, &ParseError{
			Dialect: dialect,
			Err:     fmt.Errorf("unsupported dialect"),
		}
	}
	if err != nil {
		return nil, &ParseError{Dialect: dialect, Err: err}
	}

	result := make(map[string]bool, len(tables))
	for name := range tables {
		// A single-part reference matching a WITH-clause name is a CTE
		// alias, not a physical table.
		if !strings.Contains(name, ".") && ctes[strings.ToLower(name)] {
			continue
		}
		if !dialect.CaseSensitive() {
			name = strings.ToLower(name)
		}
		result[name] = true
	}
	return result, nil
}
