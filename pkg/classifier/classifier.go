// Package classifier partitions extracted table references into
// macro-produced and bare ones.
//
// A reference is "allowed" when the relation name was produced by a
// recognized indirection macro call ({{ ref(...) }} or {{ source(...) }})
// during template rendering; such names never surface as violations. A
// reference is "bare" when it is a literal identifier in the script.
package classifier

import (
	"sort"
	"strings"
)

// Options controls classification behavior.
type Options struct {
	// IgnoreDotless exempts single-part (schema-less) identifiers from
	// being reported. Such names are often parser-introduced aliases or
	// ambiguous CTE names rather than physical tables.
	IgnoreDotless bool
}

// Classify returns the sorted subset of tables judged bare: extracted
// references not produced by a templated span. Comparison against the
// templated set is case-insensitive.
func Classify(tables map[string]bool, templated map[string]bool, opts Options) []string {
	var bare []string
	for name := range tables {
		if templated[strings.ToLower(name)] {
			continue
		}
		if opts.IgnoreDotless && !strings.Contains(name, ".") {
			continue
		}
		bare = append(bare, name)
	}

	sort.Strings(bare)
	return bare
}
