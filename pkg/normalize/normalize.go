// Package normalize prepares raw templated SQL text for parsing.
//
// Templated scripts mix SQL comments, Jinja-style delimiters and structural
// punctuation that can confuse a SQL tokenizer when they touch adjacent
// identifiers. Normalize strips comments and pads structural tokens with
// whitespace so every downstream tokenizer sees them as separate tokens.
package normalize

import "strings"

// Normalize strips SQL and template comments and pads structural tokens.
//
// In a single pass it:
//   - removes block comments (/* ... */) and template comments ({# ... #}),
//     replacing each with a single space,
//   - removes line comments (-- to end of line), keeping the newline,
//   - pads parentheses and braces with surrounding spaces, treating the
//     template delimiters {{, }}, {% and %} as single units,
//   - leaves quoted strings and quoted identifiers untouched.
//
// Normalize is a pure function and is idempotent: applying it to its own
// output yields the same text.
func Normalize(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + len(sql)/8)

	i := 0
	for i < len(sql) {
		c := sql[i]

		switch {
		case c == '\'' || c == '"' || c == '`':
			i = copyQuoted(&b, sql, i)

		case strings.HasPrefix(sql[i:], "--"):
			i = skipLineComment(sql, i)

		case strings.HasPrefix(sql[i:], "/*"):
			i = skipBlockComment(sql, i, "*/")
			padGap(&b, sql, i)

		case strings.HasPrefix(sql[i:], "{#"):
			i = skipBlockComment(sql, i, "#}")
			padGap(&b, sql, i)

		case strings.HasPrefix(sql[i:], "{{"):
			writePadded(&b, sql, i+2, "{{")
			i += 2

		case strings.HasPrefix(sql[i:], "}}"):
			writePadded(&b, sql, i+2, "}}")
			i += 2

		case strings.HasPrefix(sql[i:], "{%"):
			writePadded(&b, sql, i+2, "{%")
			i += 2

		case strings.HasPrefix(sql[i:], "%}"):
			writePadded(&b, sql, i+2, "%}")
			i += 2

		case c == '(' || c == ')' || c == '{' || c == '}':
			writePadded(&b, sql, i+1, string(c))
			i++

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String()
}

// copyQuoted copies a quoted string or identifier verbatim, honoring the
// doubled-quote escape. Returns the index just past the closing quote.
func copyQuoted(b *strings.Builder, sql string, start int) int {
	quote := sql[start]
	b.WriteByte(quote)
	i := start + 1
	for i < len(sql) {
		b.WriteByte(sql[i])
		if sql[i] == quote {
			if i+1 < len(sql) && sql[i+1] == quote {
				b.WriteByte(quote)
				i += 2
				continue
			}
			return i + 1
		}
		i++
	}
	return i
}

// skipLineComment returns the index of the newline terminating the comment,
// or len(sql) when the comment runs to end of input.
func skipLineComment(sql string, start int) int {
	if idx := strings.IndexByte(sql[start:], '\n'); idx >= 0 {
		return start + idx
	}
	return len(sql)
}

// skipBlockComment returns the index just past the closing delimiter. An
// unterminated comment consumes the rest of the input.
func skipBlockComment(sql string, start int, closing string) int {
	if idx := strings.Index(sql[start+2:], closing); idx >= 0 {
		return start + 2 + idx + len(closing)
	}
	return len(sql)
}

// padGap writes a single space in place of a removed comment unless the
// surrounding text already separates the neighboring tokens.
func padGap(b *strings.Builder, sql string, next int) {
	if b.Len() == 0 || isSpace(lastByte(b)) {
		return
	}
	if next < len(sql) && !isSpace(sql[next]) {
		b.WriteByte(' ')
	}
}

// writePadded writes tok surrounded by single spaces, skipping a space on
// either side when the neighboring character is already whitespace. The
// next parameter is the input index of the first character after tok.
func writePadded(b *strings.Builder, sql string, next int, tok string) {
	if b.Len() > 0 && !isSpace(lastByte(b)) {
		b.WriteByte(' ')
	}
	b.WriteString(tok)
	if next < len(sql) && !isSpace(sql[next]) {
		b.WriteByte(' ')
	}
}

func lastByte(b *strings.Builder) byte {
	s := b.String()
	return s[len(s)-1]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
