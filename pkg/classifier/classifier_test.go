package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		tables    map[string]bool
		templated map[string]bool
		opts      Options
		want      []string
	}{
		{
			name:      "macro-produced reference is allowed",
			tables:    set("raw.orders"),
			templated: set("raw.orders"),
			want:      nil,
		},
		{
			name:   "literal reference is bare",
			tables: set("raw.orders"),
			want:   []string{"raw.orders"},
		},
		{
			name:      "mixed references",
			tables:    set("raw.orders", "staging.stg_orders", "analytics.revenue"),
			templated: set("staging.stg_orders"),
			want:      []string{"analytics.revenue", "raw.orders"},
		},
		{
			name:      "templated comparison is case-insensitive",
			tables:    set("RAW.Orders"),
			templated: set("raw.orders"),
			want:      nil,
		},
		{
			name:   "dotless reported by default",
			tables: set("orders"),
			want:   []string{"orders"},
		},
		{
			name:   "dotless exempted when requested",
			tables: set("orders", "raw.orders"),
			opts:   Options{IgnoreDotless: true},
			want:   []string{"raw.orders"},
		},
		{
			name:   "empty input",
			tables: set(),
			want:   nil,
		},
		{
			name:   "output sorted",
			tables: set("z.t", "a.t", "m.t"),
			want:   []string{"a.t", "m.t", "z.t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.tables, tt.templated, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}
