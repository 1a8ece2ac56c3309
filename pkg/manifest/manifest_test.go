package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `{
  "metadata": {
    "project_name": "jaffle_shop",
    "dbt_version": "1.7.4"
  },
  "nodes": {
    "model.jaffle_shop.stg_orders": {
      "name": "stg_orders",
      "alias": "stg_orders",
      "schema": "staging",
      "database": "analytics",
      "resource_type": "model"
    },
    "model.jaffle_shop.customers": {
      "name": "customers",
      "alias": "dim_customers",
      "schema": "marts",
      "database": "analytics",
      "resource_type": "model"
    },
    "test.jaffle_shop.not_null_orders_id": {
      "name": "not_null_orders_id",
      "resource_type": "test"
    }
  },
  "sources": {
    "source.jaffle_shop.raw.orders": {
      "source_name": "raw",
      "name": "orders",
      "schema": "raw",
      "database": "raw_db"
    }
  }
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	m, err := Load(writeManifest(t, testManifest))
	require.NoError(t, err)

	assert.Equal(t, "jaffle_shop", m.Metadata.ProjectName)
	assert.Equal(t, "1.7.4", m.Metadata.DBTVersion)
	assert.Len(t, m.Nodes, 3)
	assert.Len(t, m.Sources, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Error(), "unable to load manifest file")
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeManifest(t, "{not json"))

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestResolveRef(t *testing.T) {
	m, err := Load(writeManifest(t, testManifest))
	require.NoError(t, err)

	rel, ok := m.ResolveRef("stg_orders")
	require.True(t, ok)
	assert.Equal(t, "staging.stg_orders", rel)

	rel, ok = m.ResolveRef("customers")
	require.True(t, ok)
	assert.Equal(t, "marts.dim_customers", rel, "alias wins over model name")

	_, ok = m.ResolveRef("not_null_orders_id")
	assert.False(t, ok, "tests are not refable")

	_, ok = m.ResolveRef("unknown_model")
	assert.False(t, ok)
}

func TestResolveSource(t *testing.T) {
	m, err := Load(writeManifest(t, testManifest))
	require.NoError(t, err)

	rel, ok := m.ResolveSource("raw", "orders")
	require.True(t, ok)
	assert.Equal(t, "raw.orders", rel)

	_, ok = m.ResolveSource("raw", "customers")
	assert.False(t, ok)
}
