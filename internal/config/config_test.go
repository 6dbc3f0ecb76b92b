package config

import (
	"os"
	"path/filepath"
	"testing"

	"spareparts/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10000, cfg.Assembler.CounterStart)
	assert.Equal(t, "KES", cfg.Assembler.Currency)
	assert.Equal(t, domain.DefaultMinimumOrderTiers(), cfg.Tiers.MinimumOrder)
	assert.Equal(t, domain.DefaultLeadTimeTiers(), cfg.Tiers.LeadTime)
	assert.Equal(t, "generators", cfg.Catalog.CategoryID)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"/generators/spare-parts", "/generator-parts"}, cfg.Storefront.Paths)
	assert.Equal(t, "/api/revalidate", cfg.Storefront.RevalidatePath)
	assert.Empty(t, cfg.PriceList.Proxies)
	assert.Equal(t, 2, cfg.PriceList.MaxRequestsPerSecond)
	assert.EqualValues(t, 10000, cfg.Redis.StreamMaxLen)
	assert.Equal(t, "history/", cfg.Storage.HistoryPrefix)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	body := `
catalog:
  path: ./data/catalog.json
assembler:
  counter_start: 20000
tiers:
  minimum_order:
    steps:
      - {above: 20000, value: 2}
      - {above: 5000, value: 4}
    default: 10
  lead_time:
    steps:
      - {above: 50, value: Same Day}
    default: 1 Week
redis:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./data/catalog.json", cfg.Catalog.Path)
	assert.Equal(t, 20000, cfg.Assembler.CounterStart)
	assert.Equal(t, 4, cfg.Tiers.MinimumOrder.Resolve(6000))
	assert.Equal(t, 10, cfg.Tiers.MinimumOrder.Resolve(900))
	assert.Equal(t, "1 Week", cfg.Tiers.LeadTime.Resolve(20))
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "Nairobi Warehouse", cfg.Assembler.Location)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_PATH", "/srv/catalog.json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/catalog.json", cfg.Catalog.Path)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
