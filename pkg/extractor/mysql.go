package extractor

import (
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"
	"github.com/refguard/refguard/pkg/mysqlparser"
)

// extractMySQL collects relation references and WITH-clause names from a
// script parsed with the MySQL grammar.
func extractMySQL(sql string) (map[string]bool, map[string]bool, error) {
	result, err := mysqlparser.Parse(sql)
	if err != nil {
		return nil, nil, err
	}

	listener := &mysqlTableListener{
		tables: make(map[string]bool),
		ctes:   make(map[string]bool),
	}
	antlr.ParseTreeWalkerDefault.Walk(listener, result.Tree)

	return listener.tables, listener.ctes, nil
}

type mysqlTableListener struct {
	*parser.BaseMySQLParserListener

	tables map[string]bool
	ctes   map[string]bool
}

// EnterTableRef collects table references: FROM and JOIN items, DML
// targets, ALTER/DROP/TRUNCATE targets.
func (l *mysqlTableListener) EnterTableRef(ctx *parser.TableRefContext) {
	l.add(mysqlparser.NormalizeMySQLTableRef(ctx))
}

// EnterTableName collects CREATE TABLE targets and other definition-site
// names.
func (l *mysqlTableListener) EnterTableName(ctx *parser.TableNameContext) {
	l.add(mysqlparser.NormalizeMySQLTableName(ctx))
}

// EnterCommonTableExpression records WITH-clause names for exclusion.
func (l *mysqlTableListener) EnterCommonTableExpression(ctx *parser.CommonTableExpressionContext) {
	if name := mysqlparser.NormalizeMySQLIdentifier(ctx.Identifier()); name != "" {
		l.ctes[strings.ToLower(name)] = true
	}
}

func (l *mysqlTableListener) add(schema, table string) {
	if table == "" {
		return
	}
	if schema == "" {
		l.tables[table] = true
		return
	}
	l.tables[schema+"."+table] = true
}
