// Package manifest loads the dbt project manifest (target/manifest.json)
// and resolves ref()/source() targets to physical relation names.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadError reports a missing or malformed manifest file. It is fatal for
// a run: no file checks happen without a readable manifest.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("unable to load manifest file %s (%v)", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Metadata is the project-level metadata block of the manifest.
type Metadata struct {
	ProjectName string `json:"project_name"`
	DBTVersion  string `json:"dbt_version"`
	ProjectID   string `json:"project_id"`
}

// Node is a compiled project node (model, seed, snapshot, test, ...).
type Node struct {
	Name         string `json:"name"`
	Alias        string `json:"alias"`
	Schema       string `json:"schema"`
	Database     string `json:"database"`
	ResourceType string `json:"resource_type"`
}

// Source is a declared external source table.
type Source struct {
	SourceName string `json:"source_name"`
	Name       string `json:"name"`
	Schema     string `json:"schema"`
	Database   string `json:"database"`
}

// Manifest is the subset of the dbt manifest this tool consumes.
type Manifest struct {
	Metadata Metadata           `json:"metadata"`
	Nodes    map[string]*Node   `json:"nodes"`
	Sources  map[string]*Source `json:"sources"`
}

// Load reads and parses the manifest at path. Failures are returned as a
// *LoadError.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return &m, nil
}

// ResolveRef resolves a model name to its physical relation, schema.alias.
// Matches models, seeds and snapshots by name; reports false for unknown
// models.
func (m *Manifest) ResolveRef(model string) (string, bool) {
	for _, node := range m.Nodes {
		if !isRefable(node.ResourceType) {
			continue
		}
		if !strings.EqualFold(node.Name, model) {
			continue
		}
		alias := node.Alias
		if alias == "" {
			alias = node.Name
		}
		if node.Schema == "" {
			return alias, true
		}
		return node.Schema + "." + alias, true
	}
	return "", false
}

// ResolveSource resolves a source table to its physical relation,
// schema.table. Reports false when the source is not declared.
func (m *Manifest) ResolveSource(sourceName, table string) (string, bool) {
	for _, src := range m.Sources {
		if !strings.EqualFold(src.SourceName, sourceName) || !strings.EqualFold(src.Name, table) {
			continue
		}
		schema := src.Schema
		if schema == "" {
			schema = src.SourceName
		}
		return schema + "." + src.Name, true
	}
	return "", false
}

func isRefable(resourceType string) bool {
	switch resourceType {
	case "model", "seed", "snapshot", "":
		return true
	default:
		return false
	}
}
