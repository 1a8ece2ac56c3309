package pgparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{
			name:    "simple SELECT",
			sql:     "SELECT * FROM users WHERE id = 1;",
			wantErr: false,
		},
		{
			name:    "schema qualified reference",
			sql:     "SELECT id FROM raw.orders;",
			wantErr: false,
		},
		{
			name:    "CTE",
			sql:     "WITH a AS (SELECT 1) SELECT * FROM a;",
			wantErr: false,
		},
		{
			name:    "missing semicolon is ok",
			sql:     "SELECT 1",
			wantErr: false,
		},
		{
			name:    "unbalanced parenthesis",
			sql:     "SELECT * FROM (SELECT 1;",
			wantErr: true,
		},
		{
			name:    "invalid statement",
			sql:     "CREATE INVALID SYNTAX",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.NotNil(t, result.Tree)
				assert.NotNil(t, result.Tokens)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	sql := "SELECT * FROM raw.orders JOIN staging.customers USING (customer_id);"

	first, err := Parse(sql)
	require.NoError(t, err)
	second, err := Parse(sql)
	require.NoError(t, err)

	assert.Equal(t, first.Tree.(interface{ GetText() string }).GetText(),
		second.Tree.(interface{ GetText() string }).GetText())
}

func TestNormalizeQuotedIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain quoted", input: `"Orders"`, want: "Orders"},
		{name: "doubled quote escape", input: `"a""b"`, want: `a"b`},
		{name: "too short", input: `"`, want: `"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeQuotedIdentifier(tt.input))
		})
	}
}
