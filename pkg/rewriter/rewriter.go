// Package rewriter replaces bare table references in SQL scripts with the
// ref() or source() macro call that resolves to the same relation,
// consulting the project manifest for candidates.
package rewriter

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/refguard/refguard/pkg/manifest"
)

// Replacement is a single planned substitution of a bare table reference.
type Replacement struct {
	// Table is the bare reference as it appears in the script.
	Table string
	// Macro is the replacement text, a ref() or source() call.
	Macro string
	// Guessed is set when the relation was not found in the manifest and
	// the source() call was derived from the name itself.
	Guessed bool
}

// Plan is the set of substitutions computed for one script.
type Plan struct {
	Replacements []Replacement
	// Unresolved lists bare references with no manifest match and no
	// schema qualifier to guess a source from. They are left untouched.
	Unresolved []string
}

// Rewriter plans and applies macro substitutions backed by a manifest.
type Rewriter struct {
	manifest *manifest.Manifest
}

func New(m *manifest.Manifest) *Rewriter {
	return &Rewriter{manifest: m}
}

// Plan maps each bare table to a replacement macro. Model aliases take
// precedence over declared sources; anything left gets a source() call
// guessed from the last two name segments, or is reported unresolved when
// the name has no qualifier.
func (r *Rewriter) Plan(tables []string) *Plan {
	plan := &Plan{}

	remaining := make(map[string]bool, len(tables))
	for _, t := range tables {
		remaining[t] = true
	}

	r.planRefs(remaining, plan)
	r.planSources(remaining, plan)
	planGuesses(remaining, plan)

	sort.Slice(plan.Replacements, func(i, j int) bool {
		return plan.Replacements[i].Table < plan.Replacements[j].Table
	})
	sort.Strings(plan.Unresolved)
	return plan
}

// planRefs matches the last segment of each bare name against model
// aliases. Model names are unique within a project, so the first match
// wins.
func (r *Rewriter) planRefs(remaining map[string]bool, plan *Plan) {
	byLastSegment := make(map[string]string, len(remaining))
	for table := range remaining {
		parts := strings.Split(table, ".")
		byLastSegment[strings.ToLower(parts[len(parts)-1])] = table
	}

	for _, key := range sortedNodeKeys(r.manifest.Nodes) {
		node := r.manifest.Nodes[key]
		if !refable(node.ResourceType) {
			continue
		}
		alias := node.Alias
		if alias == "" {
			alias = node.Name
		}
		table, ok := byLastSegment[strings.ToLower(alias)]
		if !ok || !remaining[table] {
			continue
		}
		delete(remaining, table)
		plan.Replacements = append(plan.Replacements, Replacement{
			Table: table,
			Macro: "{{ ref('" + alias + "') }}",
		})
	}
}

// planSources matches a bare name against declared sources: every segment
// of the name must appear among the source's database, schema and table
// name.
func (r *Rewriter) planSources(remaining map[string]bool, plan *Plan) {
	for _, key := range sortedSourceKeys(r.manifest.Sources) {
		src := r.manifest.Sources[key]
		relation := map[string]bool{
			strings.ToLower(src.Database): true,
			strings.ToLower(src.Schema):   true,
			strings.ToLower(src.Name):     true,
		}
		for _, table := range sortedKeys(remaining) {
			if !segmentsSubset(table, relation) {
				continue
			}
			delete(remaining, table)
			plan.Replacements = append(plan.Replacements, Replacement{
				Table: table,
				Macro: "{{ source('" + src.SourceName + "', '" + src.Name + "') }}",
			})
		}
	}
}

// planGuesses handles names with no manifest match. A qualified name still
// yields a source() call built from its last two segments; a bare
// single-part name cannot be mapped and is reported unresolved.
func planGuesses(remaining map[string]bool, plan *Plan) {
	for _, table := range sortedKeys(remaining) {
		parts := strings.Split(table, ".")
		if len(parts) < 2 {
			plan.Unresolved = append(plan.Unresolved, table)
			continue
		}
		sourceName := parts[len(parts)-2]
		tableName := parts[len(parts)-1]
		plan.Replacements = append(plan.Replacements, Replacement{
			Table:   table,
			Macro:   "{{ source('" + sourceName + "', '" + tableName + "') }}",
			Guessed: true,
		})
	}
}

// Apply performs the planned substitutions on sql. A reference is replaced
// only at whitespace boundaries (or script start/end) so column prefixes
// and partial matches stay untouched; matching is case-insensitive.
func Apply(sql string, plan *Plan) string {
	for _, rep := range plan.Replacements {
		pattern := regexp.MustCompile(`(?i)(^|[\s\\])` + regexp.QuoteMeta(rep.Table) + `($|[\s\\;,)])`)
		sql = pattern.ReplaceAllString(sql, "${1}"+rep.Macro+"${2}")
	}
	return sql
}

// RewriteFile applies plan to the script at path in place, preserving the
// file mode.
func RewriteFile(path string, plan *Plan) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "failed to stat SQL file: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read SQL file: %s", path)
	}

	rewritten := Apply(string(data), plan)
	if rewritten == string(data) {
		return nil
	}
	if err := os.WriteFile(path, []byte(rewritten), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "failed to write SQL file: %s", path)
	}
	return nil
}

func segmentsSubset(table string, relation map[string]bool) bool {
	for _, part := range strings.Split(table, ".") {
		if !relation[strings.ToLower(part)] {
			return false
		}
	}
	return true
}

func refable(resourceType string) bool {
	switch resourceType {
	case "model", "seed", "snapshot", "":
		return true
	default:
		return false
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedNodeKeys(nodes map[string]*manifest.Node) []string {
	keys := make([]string, 0, len(nodes))
	for k := range nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSourceKeys(sources map[string]*manifest.Source) []string {
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
