package extractor

import (
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/bytebase/parser/postgresql"
	"github.com/refguard/refguard/pkg/pgparser"
)

// extractPostgres collects relation references and WITH-clause names from
// a script parsed with the PostgreSQL grammar.
func extractPostgres(sql string) (map[string]bool, map[string]bool, error) {
	result, err := pgparser.Parse(sql)
	if err != nil {
		return nil, nil, err
	}

	listener := &pgTableListener{
		tables: make(map[string]bool),
		ctes:   make(map[string]bool),
	}
	antlr.ParseTreeWalkerDefault.Walk(listener, result.Tree)

	return listener.tables, listener.ctes, nil
}

type pgTableListener struct {
	*parser.BasePostgreSQLParserListener

	tables map[string]bool
	ctes   map[string]bool
}

// EnterRelation_expr collects plain relation references: FROM and JOIN
// items, UPDATE/DELETE targets, ALTER/DROP targets.
func (l *pgTableListener) EnterRelation_expr(ctx *parser.Relation_exprContext) {
	l.addQualifiedName(qualifiedNameChild(ctx))
}

// EnterInsert_target collects INSERT INTO targets.
func (l *pgTableListener) EnterInsert_target(ctx *parser.Insert_targetContext) {
	l.addQualifiedName(qualifiedNameChild(ctx))
}

// EnterCreatestmt collects the created table name so CREATE TABLE targets
// are subject to the same macro policy as query references.
func (l *pgTableListener) EnterCreatestmt(ctx *parser.CreatestmtContext) {
	l.addQualifiedName(qualifiedNameChild(ctx))
}

// EnterCommon_table_expr records WITH-clause names for exclusion.
func (l *pgTableListener) EnterCommon_table_expr(ctx *parser.Common_table_exprContext) {
	for _, child := range ctx.GetChildren() {
		if name, ok := child.(parser.INameContext); ok {
			if n := pgparser.NormalizeName(name); n != "" {
				l.ctes[strings.ToLower(n)] = true
			}
			return
		}
	}
}

func (l *pgTableListener) addQualifiedName(ctx parser.IQualified_nameContext) {
	if ctx == nil {
		return
	}

	var parts []string
	for _, part := range pgparser.NormalizeQualifiedName(ctx) {
		if part != "" && part != "*" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return
	}
	l.tables[strings.Join(parts, ".")] = true
}

// qualifiedNameChild returns the first qualified_name child of a rule
// context. Scanning children keeps the listener independent of the exact
// accessor shape the grammar generates for each rule.
func qualifiedNameChild(ctx antlr.ParserRuleContext) parser.IQualified_nameContext {
	for _, child := range ctx.GetChildren() {
		if qn, ok := child.(parser.IQualified_nameContext); ok {
			return qn
		}
	}
	return nil
}
