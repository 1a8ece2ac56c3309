// Package pgparser provides PostgreSQL SQL parsing functionality.
//
// This package wraps the Bytebase PostgreSQL parser to provide consistent
// parsing and identifier normalization for table reference extraction. The
// PostgreSQL grammar also backs the ANSI and Snowflake dialects, which have
// no dedicated grammar of their own.
package pgparser

import (
	"fmt"
	"strings"

	"github.com/antlr4-go/antlr/v4"
	parser "github.com/bytebase/parser/postgresql"
	"github.com/refguard/refguard/pkg/types"
)

// ParseResult contains the parsed SQL statement tree and tokens.
type ParseResult struct {
	Tree   antlr.Tree
	Tokens *antlr.CommonTokenStream
}

// SyntaxError represents a SQL syntax error with position information.
type SyntaxError struct {
	Message  string
	Position *types.Position
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("syntax error at line %d, column %d: %s",
			e.Position.Line, e.Position.Column, e.Message)
	}
	return fmt.Sprintf("syntax error: %s", e.Message)
}

// syntaxErrorListener collects syntax errors during parsing.
type syntaxErrorListener struct {
	*antlr.DefaultErrorListener
	err *SyntaxError
}

// SyntaxError is called when a syntax error is encountered.
func (l *syntaxErrorListener) SyntaxError(
	_ antlr.Recognizer,
	_ interface{},
	line, column int,
	msg string,
	_ antlr.RecognitionException,
) {
	if l.err == nil {
		l.err = &SyntaxError{
			Message: msg,
			Position: &types.Position{
				Line:   int32(line),
				Column: int32(column),
			},
		}
	}
}

// Parse parses a PostgreSQL SQL script and returns the parse tree.
func Parse(sql string) (*ParseResult, error) {
	inputStream := antlr.NewInputStream(sql)
	lexer := parser.NewPostgreSQLLexer(inputStream)

	lexerErrorListener := &syntaxErrorListener{}
	lexer.RemoveErrorListeners()
	lexer.AddErrorListener(lexerErrorListener)

	stream := antlr.NewCommonTokenStream(lexer, antlr.TokenDefaultChannel)

	p := parser.NewPostgreSQLParser(stream)
	p.BuildParseTrees = true

	parserErrorListener := &syntaxErrorListener{}
	p.RemoveErrorListeners()
	p.AddErrorListener(parserErrorListener)

	tree := p.Root()

	if lexerErrorListener.err != nil {
		return nil, lexerErrorListener.err
	}
	if parserErrorListener.err != nil {
		return nil, parserErrorListener.err
	}
	if tree == nil {
		return nil, &SyntaxError{Message: "failed to parse SQL statement"}
	}

	return &ParseResult{
		Tree:   tree,
		Tokens: stream,
	}, nil
}

// NormalizeQualifiedName normalizes a qualified name (schema.table).
// Returns a slice of name parts (e.g., ["schema", "table"]).
func NormalizeQualifiedName(ctx parser.IQualified_nameContext) []string {
	if ctx == nil {
		return nil
	}

	res := []string{NormalizeColid(ctx.Colid())}
	if ctx.Indirection() != nil {
		res = append(res, normalizeIndirection(ctx.Indirection())...)
	}
	return res
}

func normalizeIndirection(ctx parser.IIndirectionContext) []string {
	if ctx == nil {
		return nil
	}

	var res []string
	for _, child := range ctx.AllIndirection_el() {
		res = append(res, normalizeIndirectionEl(child))
	}
	return res
}

func normalizeIndirectionEl(ctx parser.IIndirection_elContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.DOT() != nil {
		if ctx.STAR() != nil {
			return "*"
		}
		return normalizeAttrName(ctx.Attr_name())
	}
	return ctx.GetText()
}

func normalizeAttrName(ctx parser.IAttr_nameContext) string {
	if ctx == nil {
		return ""
	}
	return normalizeCollabel(ctx.Collabel())
}

func normalizeCollabel(ctx parser.ICollabelContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.Identifier() != nil {
		return normalizeIdentifier(ctx.Identifier())
	}
	return strings.ToLower(ctx.GetText())
}

// NormalizeColid normalizes a column identifier.
func NormalizeColid(ctx parser.IColidContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.Identifier() != nil {
		return normalizeIdentifier(ctx.Identifier())
	}
	// Unquoted identifiers fold to lowercase in PostgreSQL.
	return strings.ToLower(ctx.GetText())
}

// normalizeIdentifier normalizes an identifier, handling quoted and
// unquoted forms according to PostgreSQL rules.
func normalizeIdentifier(ctx parser.IIdentifierContext) string {
	if ctx == nil {
		return ""
	}

	if ctx.QuotedIdentifier() != nil {
		return normalizeQuotedIdentifier(ctx.QuotedIdentifier().GetText())
	}
	if ctx.UnicodeQuotedIdentifier() != nil {
		return normalizeUnicodeQuotedIdentifier(ctx.UnicodeQuotedIdentifier().GetText())
	}
	return strings.ToLower(ctx.GetText())
}

// normalizeQuotedIdentifier removes quotes and unescapes doubled quotes.
func normalizeQuotedIdentifier(s string) string {
	if len(s) < 2 {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
}

// normalizeUnicodeQuotedIdentifier handles U&"..." identifiers.
func normalizeUnicodeQuotedIdentifier(s string) string {
	if len(s) > 3 && s[0] == 'U' && s[1] == '&' && s[2] == '"' {
		return normalizeQuotedIdentifier(s[2:])
	}
	return s
}

// NormalizeName normalizes a name context.
func NormalizeName(ctx parser.INameContext) string {
	if ctx == nil {
		return ""
	}
	if ctx.Colid() != nil {
		return NormalizeColid(ctx.Colid())
	}
	return ""
}
