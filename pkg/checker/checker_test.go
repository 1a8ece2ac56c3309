package checker

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/refguard/refguard/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckSQL(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		opts     []Option
		wantBare []string
	}{
		{
			name:     "source macro is clean",
			sql:      "SELECT * FROM {{ source('raw', 'orders') }}",
			wantBare: nil,
		},
		{
			name:     "ref macro is clean",
			sql:      "SELECT * FROM {{ ref('stg_orders') }}",
			wantBare: nil,
		},
		{
			name:     "bare qualified table is a violation",
			sql:      "SELECT * FROM raw.orders",
			wantBare: []string{"raw.orders"},
		},
		{
			name:     "comment only script is clean",
			sql:      "-- comment\nSELECT 1",
			wantBare: nil,
		},
		{
			name:     "cte alias is not a violation",
			sql:      "WITH a AS (SELECT * FROM {{ ref('stg_orders') }}) SELECT * FROM a",
			wantBare: nil,
		},
		{
			name:     "macro and literal mixed",
			sql:      "SELECT * FROM {{ ref('stg_orders') }} o JOIN raw.customers c ON o.id = c.id",
			wantBare: []string{"raw.customers"},
		},
		{
			name:     "comment does not hide violation",
			sql:      "/* uses source()? no */ SELECT * FROM raw.orders",
			wantBare: []string{"raw.orders"},
		},
		{
			name:     "bare dotless table reported by default",
			sql:      "SELECT * FROM orders",
			wantBare: []string{"orders"},
		},
		{
			name:     "dotless exempted with option",
			sql:      "SELECT * FROM orders JOIN raw.customers USING (id)",
			opts:     []Option{WithIgnoreDotlessTables()},
			wantBare: []string{"raw.customers"},
		},
		{
			name:     "templated config block ignored",
			sql:      "{{ config(materialized='table') }}\nSELECT * FROM {{ ref('stg_orders') }}",
			wantBare: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(types.Dialect_ANSI, tt.opts...)
			bare, err := c.CheckSQL(tt.sql)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBare, bare)
		})
	}
}

func TestCheckSQLParseError(t *testing.T) {
	c := New(types.Dialect_ANSI)
	_, err := c.CheckSQL("SELECT * FROM (SELECT 1")
	assert.Error(t, err)
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	clean := writeScript(t, dir, "clean.sql", "SELECT * FROM {{ source('raw', 'orders') }}")
	dirty := writeScript(t, dir, "dirty.sql", "SELECT * FROM raw.orders")

	c := New(types.Dialect_ANSI)
	run := c.CheckFiles(context.Background(), []string{clean, dirty})

	require.Len(t, run.Results, 2)
	assert.False(t, run.Results[0].Failed())
	assert.True(t, run.Results[1].Failed())
	assert.Equal(t, []string{"raw.orders"}, run.Results[1].BareTables)

	assert.Equal(t, 2, run.Summary.Files)
	assert.Equal(t, 1, run.Summary.Violations)
	assert.Equal(t, 0, run.Summary.ParseErrors)
	assert.Equal(t, 1, run.Status())
}

func TestCheckFilesAllClean(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeScript(t, dir, "a.sql", "SELECT * FROM {{ ref('stg_orders') }}"),
		writeScript(t, dir, "b.sql", "-- nothing here\nSELECT 1"),
	}

	c := New(types.Dialect_ANSI)
	run := c.CheckFiles(context.Background(), paths)

	assert.True(t, run.IsClean())
	assert.Equal(t, 0, run.Status())
}

func TestCheckFilesMalformedFileDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeScript(t, dir, "ok1.sql", "SELECT * FROM {{ ref('stg_orders') }}"),
		writeScript(t, dir, "broken.sql", "SELECT * FROM (SELECT 1"),
		writeScript(t, dir, "ok2.sql", "SELECT * FROM {{ source('raw', 'orders') }}"),
	}

	c := New(types.Dialect_ANSI)
	run := c.CheckFiles(context.Background(), paths)

	require.Len(t, run.Results, 3, "all files must be checked")
	assert.False(t, run.Results[0].Failed())
	assert.Error(t, run.Results[1].Err)
	assert.False(t, run.Results[2].Failed())

	assert.Equal(t, 1, run.Summary.ParseErrors)
	assert.Equal(t, 1, run.Status())
}

func TestCheckFilesMissingFile(t *testing.T) {
	c := New(types.Dialect_ANSI)
	run := c.CheckFiles(context.Background(), []string{filepath.Join(t.TempDir(), "absent.sql")})

	require.Len(t, run.Results, 1)
	assert.Error(t, run.Results[0].Err)
	assert.Equal(t, 1, run.Status())
}

func TestCheckFilesCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "a.sql", "SELECT 1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(types.Dialect_ANSI)
	run := c.CheckFiles(ctx, []string{path})
	assert.Empty(t, run.Results)
}

func TestCheckSQLMySQLDialect(t *testing.T) {
	c := New(types.Dialect_MYSQL)

	bare, err := c.CheckSQL("SELECT * FROM {{ source('raw', 'orders') }};")
	require.NoError(t, err)
	assert.Empty(t, bare)

	bare, err = c.CheckSQL("SELECT * FROM raw.orders;")
	require.NoError(t, err)
	assert.Equal(t, []string{"raw.orders"}, bare)
}
