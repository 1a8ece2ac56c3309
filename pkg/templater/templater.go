// Package templater renders dbt-style template constructs in SQL text so a
// plain SQL grammar can parse the result.
//
// Recognized indirection macro calls ({{ ref('model') }} and
// {{ source('name', 'table') }}) render to the relation name they resolve
// to; every other expression renders to a synthetic placeholder identifier
// and statement blocks render to nothing. The renderer records each
// relation name produced from a templated span so later stages can tell
// macro-produced references apart from literal ones.
package templater

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// MacroKind identifies which indirection macro produced a relation.
type MacroKind string

const (
	MacroRef    MacroKind = "ref"
	MacroSource MacroKind = "source"
)

// MacroCall is a single recognized indirection macro call.
type MacroCall struct {
	Kind     MacroKind
	Args     []string
	Relation string // relation name the call rendered to
}

// RenderResult is the output of rendering a templated script.
type RenderResult struct {
	// SQL is the rendered text, parseable by a plain SQL grammar.
	SQL string
	// Templated holds every relation name produced by a templated span,
	// lower-folded. References to these names are macro-produced, not
	// literal table references.
	Templated map[string]bool
	// Macros lists the recognized ref()/source() calls in source order.
	Macros []MacroCall
}

// Resolver resolves macro arguments to physical relation names, typically
// backed by the project manifest. Both methods report false when the
// target is unknown, in which case the renderer falls back to a
// deterministic name derived from the arguments.
type Resolver interface {
	ResolveRef(model string) (string, bool)
	ResolveSource(sourceName, table string) (string, bool)
}

// Render renders sql without manifest-backed resolution.
func Render(sql string) (*RenderResult, error) {
	return RenderWithResolver(sql, nil)
}

// RenderWithResolver renders sql, resolving ref()/source() targets through
// the given resolver when one is supplied. It fails when a template tag is
// left unclosed.
func RenderWithResolver(sql string, resolver Resolver) (*RenderResult, error) {
	result := &RenderResult{
		Templated: make(map[string]bool),
	}

	var b strings.Builder
	b.Grow(len(sql))

	placeholders := 0
	i := 0
	for i < len(sql) {
		switch {
		case strings.HasPrefix(sql[i:], "{{"):
			end := strings.Index(sql[i+2:], "}}")
			if end < 0 {
				return nil, errors.Errorf("unclosed expression tag at offset %d", i)
			}
			expr := sql[i+2 : i+2+end]
			b.WriteString(renderExpression(expr, resolver, &placeholders, result))
			i += 2 + end + 2

		case strings.HasPrefix(sql[i:], "{%"):
			end := strings.Index(sql[i+2:], "%}")
			if end < 0 {
				return nil, errors.Errorf("unclosed statement tag at offset %d", i)
			}
			b.WriteByte(' ')
			i += 2 + end + 2

		case strings.HasPrefix(sql[i:], "{#"):
			end := strings.Index(sql[i+2:], "#}")
			if end < 0 {
				return nil, errors.Errorf("unclosed comment tag at offset %d", i)
			}
			b.WriteByte(' ')
			i += 2 + end + 2

		default:
			b.WriteByte(sql[i])
			i++
		}
	}

	result.SQL = b.String()
	return result, nil
}

// renderExpression renders the content of a {{ ... }} span and returns the
// replacement text.
func renderExpression(expr string, resolver Resolver, placeholders *int, result *RenderResult) string {
	// config() produces no output; scripts commonly open with it at
	// statement level, where a placeholder identifier would not parse.
	if callName(expr) == "config" {
		return " "
	}

	name, args, ok := parseCall(expr)
	if ok {
		switch {
		case name == string(MacroRef) && len(args) >= 1:
			// dbt allows a two-argument form: ref('project', 'model').
			model := args[len(args)-1]
			relation := model
			if resolver != nil {
				if resolved, found := resolver.ResolveRef(model); found {
					relation = resolved
				}
			}
			record(result, MacroRef, args, relation)
			return relation

		case name == string(MacroSource) && len(args) == 2:
			relation := args[0] + "." + args[1]
			if resolver != nil {
				if resolved, found := resolver.ResolveSource(args[0], args[1]); found {
					relation = resolved
				}
			}
			record(result, MacroSource, args, relation)
			return relation
		}
	}

	// Anything else (vars, macros, config calls) renders to a placeholder
	// identifier; if it lands in relation position the reference is still
	// known to be templated and is never reported as bare.
	*placeholders++
	placeholder := fmt.Sprintf("jinja_expr_%d", *placeholders)
	result.Templated[placeholder] = true
	return placeholder
}

func record(result *RenderResult, kind MacroKind, args []string, relation string) {
	result.Templated[strings.ToLower(relation)] = true
	result.Macros = append(result.Macros, MacroCall{
		Kind:     kind,
		Args:     args,
		Relation: relation,
	})
}

// parseCall parses a simple call expression of the form
// name('arg' [, 'arg']...) with single- or double-quoted string literals.
// Reports false when the expression is not such a call or any argument is
// not a string literal.
func parseCall(expr string) (string, []string, bool) {
	s := strings.TrimSpace(expr)

	nameEnd := 0
	for nameEnd < len(s) && isIdentChar(s[nameEnd]) {
		nameEnd++
	}
	if nameEnd == 0 {
		return "", nil, false
	}
	name := s[:nameEnd]

	rest := strings.TrimSpace(s[nameEnd:])
	if !strings.HasPrefix(rest, "(") {
		return "", nil, false
	}
	rest = rest[1:]

	var args []string
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			return "", nil, false
		}
		if rest[0] == ')' {
			return name, args, true
		}
		if rest[0] != '\'' && rest[0] != '"' {
			return "", nil, false
		}
		quote := rest[0]
		close := strings.IndexByte(rest[1:], quote)
		if close < 0 {
			return "", nil, false
		}
		args = append(args, rest[1:1+close])
		rest = strings.TrimLeft(rest[1+close+1:], " \t\r\n")
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			continue
		}
		if strings.HasPrefix(rest, ")") {
			return name, args, true
		}
		return "", nil, false
	}
}

// callName returns the leading identifier of an expression, or "" when the
// expression does not start with one.
func callName(expr string) string {
	s := strings.TrimSpace(expr)
	end := 0
	for end < len(s) && isIdentChar(s[end]) {
		end++
	}
	return s[:end]
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
