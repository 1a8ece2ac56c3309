package mysqlparser

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
			sql:     "SELECT * FROM orders;",
			wantErr: false,
		},
		{
			name:    "schema qualified reference",
			sql:     "SELECT id FROM raw.orders;",
			wantErr: false,
		},
		{
			name:    "multiple statements",
			sql:     "SELECT 1; SELECT * FROM t;",
			wantErr: false,
		},
		{
			name:    "backtick quoted identifier",
			sql:     "SELECT * FROM `raw`.`order table`;",
			wantErr: false,
		},
		{
			name:    "unbalanced parenthesis",
			sql:     "SELECT * FROM (SELECT 1;",
			wantErr: true,
		},
		{
			name:    "garbage input",
			sql:     "NOT REALLY SQL AT ALL (",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.sql)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.NotNil(t, result.Tree)
			}
		})
	}
}

func TestParseSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("SELECT * FROM (SELECT 1;")

	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.NotNil(t, syntaxErr.Position)
	assert.Contains(t, syntaxErr.Message, "Syntax error")
}
