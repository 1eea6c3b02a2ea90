package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./input", cfg.InputDir)
	assert.Equal(t, "KB Series", cfg.ShopName)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, "Count", cfg.Source.IncludeMarker)
	assert.Equal(t, "Sale", cfg.Source.ExcludeMarker)
	assert.Equal(t, []string{".csv"}, cfg.Source.Extensions)
	assert.Equal(t, "shift_jis", cfg.Source.Encoding)
	assert.Equal(t, 1, cfg.Source.HeaderRows)
	assert.Equal(t, fieldmap.Default(), cfg.Fields.FieldMap())
	assert.True(t, cfg.Export.NegateReversal)
	assert.Equal(t, []string{"xlsx", "pdf"}, cfg.Export.Formats)
	assert.Equal(t, aggregator.RejectUnknownSign, cfg.AggregatorOptions().UnknownSign)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
input_dir: /data/pos
shop_name: Station Kiosk
max_concurrency: 2
source:
  include_marker: Tally
  exclude_marker: ""
  encoding: utf-8
  header_rows: 0
fields:
  quantity: 3
classification:
  unknown_sign: exclude
export:
  formats: [pdf]
  negate_reversal: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/pos", cfg.InputDir)
	assert.Equal(t, "Station Kiosk", cfg.ShopName)
	assert.Equal(t, 2, cfg.MaxConcurrency)
	assert.Equal(t, "Tally", cfg.Source.IncludeMarker)
	assert.Equal(t, "", cfg.Source.ExcludeMarker)
	assert.Equal(t, 0, cfg.Source.HeaderRows)
	assert.Equal(t, 3, cfg.Fields.Quantity)
	assert.Equal(t, 11, cfg.Fields.Amount, "unset fields keep their default")
	assert.Equal(t, aggregator.ExcludeUnknownSign, cfg.AggregatorOptions().UnknownSign)
	assert.Equal(t, []string{"pdf"}, cfg.Export.Formats)
	assert.False(t, cfg.Export.NegateReversal)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("SALESREPORT_SHOP_NAME", "Env Shop")
	t.Setenv("SALESREPORT_SOURCE_ENCODING", "euc-jp")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Env Shop", cfg.ShopName)
	assert.Equal(t, "euc-jp", cfg.Source.Encoding)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "input_dir: [", "failed to read config file"},
		{"concurrency", "max_concurrency: 0", "max_concurrency"},
		{"log level", "log_level: loud", "log_level"},
		{"log format", "log_format: xml", "log_format"},
		{"duplicate ordinal", "fields:\n  amount: 9", "share ordinal"},
		{"sign policy", "classification:\n  unknown_sign: ignore", "classification"},
		{"export format", "export:\n  formats: [csv]", "unsupported format"},
		{"include marker", "source:\n  include_marker: \"\"", "include_marker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
