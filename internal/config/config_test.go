package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func loadFromEnv(t *testing.T, env map[string]string) *Config {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
	viper.AutomaticEnv()
	return build()
}

func TestBuildDefaults(t *testing.T) {
	cfg := loadFromEnv(t, nil)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "drive", cfg.App.Source)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SnapshotTTL())
	assert.Equal(t, "MASTER_ITEM", cfg.Drive.MasterWorksheet)
	assert.Equal(t, []string{"FIX_COST", "FIXED_COST"}, cfg.Drive.FixedWorksheets)
	assert.Equal(t, "sevalla", cfg.Storage.Provider)
	assert.Equal(t, "always", cfg.Pipeline.PercentRule)
	assert.True(t, cfg.Pipeline.IncludeFixedCost)
	assert.Empty(t, cfg.Pipeline.ShippingAliases)
}

func TestBuildFromEnv(t *testing.T) {
	cfg := loadFromEnv(t, map[string]string{
		"DB_ENABLED":                  "true",
		"APP_SOURCE":                  "Storage",
		"CACHE_SNAPSHOT_TTL_SECONDS":  "30",
		"STORAGE_PROVIDER":            "MINIO",
		"PIPELINE_PERCENT_RULE":       "above_one",
		"PIPELINE_CATEGORY_TAGGING":   "true",
		"PIPELINE_SHIPPING_ALIASES":   "Ninja=Ninja Van; Best = BEST Express",
		"PIPELINE_TIMEZONE":           "UTC",
		"PIPELINE_INCLUDE_FIXED_COST": "false",
	})

	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "storage", cfg.App.Source)
	assert.Equal(t, 30*time.Second, cfg.Cache.SnapshotTTL())
	assert.Equal(t, "minio", cfg.Storage.Provider)
	assert.Equal(t, "above_one", cfg.Pipeline.PercentRule)
	assert.True(t, cfg.Pipeline.CategoryTagging)
	assert.False(t, cfg.Pipeline.IncludeFixedCost)
	assert.Equal(t, map[string]string{"Ninja": "Ninja Van", "Best": "BEST Express"}, cfg.Pipeline.ShippingAliases)
	assert.Equal(t, time.UTC, cfg.Pipeline.Location())
}

func TestPipelineLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, PipelineConfig{}.Location())
	assert.Equal(t, time.UTC, PipelineConfig{Timezone: "Not/AZone"}.Location())
}

func TestParseAliasesSkipsMalformedPairs(t *testing.T) {
	got := parseAliases("a=b;;novalue;=x;c = d ")
	assert.Equal(t, map[string]string{"a": "b", "c": "d"}, got)
}
