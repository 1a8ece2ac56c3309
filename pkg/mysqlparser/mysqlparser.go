// Package mysqlparser wraps the ANTLR MySQL grammar used for the
// MySQL-family dialects (MySQL, MariaDB, TiDB).
package mysqlparser

import (
	"github.com/antlr4-go/antlr/v4"
	parser "github.com/gedhean/mysql-parser"
)

// ParseResult is the result of parsing a MySQL script.
type ParseResult struct {
	Tree   antlr.Tree
	Tokens *antlr.CommonTokenStream
}

// Parse parses the given SQL script and returns the parse tree. The Script
// grammar rule accepts multiple semicolon-separated statements.
func Parse(statement string) (*ParseResult, error) {
	input := antlr.NewInputStream(statement)
	lexer := parser.NewMySQLLexer(input)

	lexerErrorListener := &ParseErrorListener{Statement: statement}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrorListener)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewMySQLParser(stream)
	p.BuildParseTrees = true

	parserErrorListener := &ParseErrorListener{Statement: statement}
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrorListener)

	tree := p.Script()

	if lexerErrorListener.Err != nil {
		return nil, lexerErrorListener.Err
	}
	if parserErrorListener.Err != nil {
		return nil, parserErrorListener.Err
	}

	return &ParseResult{
		Tree:   tree,
		Tokens: stream,
	}, nil
}

// NormalizeMySQLTableName normalizes a table name context, returning
// (schema, table).
func NormalizeMySQLTableName(ctx parser.ITableNameContext) (string, string) {
	if ctx == nil || ctx.QualifiedIdentifier() == nil {
		return "", ""
	}
	return NormalizeMySQLQualifiedIdentifier(ctx.QualifiedIdentifier())
}

// NormalizeMySQLTableRef normalizes a table reference context, returning
// (schema, table).
func NormalizeMySQLTableRef(ctx parser.ITableRefContext) (string, string) {
	if ctx == nil {
		return "", ""
	}
	if ctx.QualifiedIdentifier() != nil {
		return NormalizeMySQLQualifiedIdentifier(ctx.QualifiedIdentifier())
	}
	if ctx.DotIdentifier() != nil {
		return "", NormalizeMySQLIdentifier(ctx.DotIdentifier().Identifier())
	}
	return "", ""
}

// NormalizeMySQLQualifiedIdentifier normalizes a qualified identifier,
// returning (schema, object). The schema is empty for single-part names.
func NormalizeMySQLQualifiedIdentifier(ctx parser.IQualifiedIdentifierContext) (string, string) {
	if ctx == nil {
		return "", ""
	}

	object := NormalizeMySQLIdentifier(ctx.Identifier())
	if ctx.DotIdentifier() == nil {
		return "", object
	}
	return object, NormalizeMySQLIdentifier(ctx.DotIdentifier().Identifier())
}

// NormalizeMySQLIdentifier normalizes an identifier, stripping backtick
// quoting when present.
func NormalizeMySQLIdentifier(ctx parser.IIdentifierContext) string {
	if ctx == nil {
		return ""
	}
	if pure := ctx.PureIdentifier(); pure != nil {
		if pure.IDENTIFIER() != nil {
			return pure.IDENTIFIER().GetText()
		}
		if pure.BACK_TICK_QUOTED_ID() != nil {
			text := pure.BACK_TICK_QUOTED_ID().GetText()
			return text[1 : len(text)-1]
		}
	}
	return ctx.GetText()
}
