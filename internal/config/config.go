// =============================================================================
// POS Sales Report - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. Everything that describes the terminal exports (file naming
// convention, encoding, column layout) lives here rather than in code, so a
// terminal firmware change is a config change.
//
// SOURCES (later wins):
//   1. Built-in defaults (setDefaults)
//   2. The YAML config file (--config, default config.yaml; optional)
//   3. Environment variables prefixed SALESREPORT_, e.g.
//      SALESREPORT_INPUT_DIR, SALESREPORT_SOURCE_ENCODING
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "SALESREPORT"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned (recursively) for terminal exports.
	// Default: "./input"
	InputDir string `mapstructure:"input_dir" yaml:"input_dir"`

	// OutputDir is where exported reports are written.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// ShopName is printed on every report and used in file names.
	// Default: "KB Series"
	ShopName string `mapstructure:"shop_name" yaml:"shop_name"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path of the log file. Empty logs to stderr.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// LogFormat selects the log line format: "text", "json" or "logfmt".
	// Default: "text"
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files decoded concurrently.
	// Set to 1 for sequential loading.
	// Default: 4
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`

	Source         SourceSettings         `mapstructure:"source" yaml:"source"`
	Fields         FieldSettings          `mapstructure:"fields" yaml:"fields"`
	Classification ClassificationSettings `mapstructure:"classification" yaml:"classification"`
	Export         ExportSettings         `mapstructure:"export" yaml:"export"`
}

// =============================================================================
// SOURCE SETTINGS
// =============================================================================

// SourceSettings describes how terminal export files are found and parsed.
type SourceSettings struct {
	// IncludeMarker must appear in a file name for the file to be loaded.
	// Compared case-insensitively.
	// Default: "Count"
	IncludeMarker string `mapstructure:"include_marker" yaml:"include_marker"`

	// ExcludeMarker must NOT appear in the file name. Empty disables the check.
	// Compared case-insensitively.
	// Default: "Sale"
	ExcludeMarker string `mapstructure:"exclude_marker" yaml:"exclude_marker"`

	// Extensions lists accepted file extensions, case-insensitive.
	// Default: [".csv"]
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`

	// Encoding is the character encoding of the export files.
	// Common values: "shift_jis" (also "cp932", "sjis"), "euc-jp", "utf-8"
	// Default: "shift_jis"
	Encoding string `mapstructure:"encoding" yaml:"encoding"`

	// Delimiter is the field separator.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// HeaderRows is the number of leading records skipped in each file.
	// Default: 1
	HeaderRows int `mapstructure:"header_rows" yaml:"header_rows"`
}

// =============================================================================
// FIELD SETTINGS
// =============================================================================

// FieldSettings holds the zero-based column of each logical field.
type FieldSettings struct {
	Quantity        int `mapstructure:"quantity" yaml:"quantity"`
	AmountSign      int `mapstructure:"amount_sign" yaml:"amount_sign"`
	Amount          int `mapstructure:"amount" yaml:"amount"`
	CardDeduction   int `mapstructure:"card_deduction" yaml:"card_deduction"`
	TransactionDate int `mapstructure:"transaction_date" yaml:"transaction_date"`
	ProductCode     int `mapstructure:"product_code" yaml:"product_code"`
	ProductName     int `mapstructure:"product_name" yaml:"product_name"`
	GroupNumber     int `mapstructure:"group_number" yaml:"group_number"`
	GroupName       int `mapstructure:"group_name" yaml:"group_name"`
}

// FieldMap converts the settings to a fieldmap.FieldMap.
func (f FieldSettings) FieldMap() fieldmap.FieldMap {
	return fieldmap.FieldMap{
		fieldmap.Quantity:        f.Quantity,
		fieldmap.AmountSign:      f.AmountSign,
		fieldmap.Amount:          f.Amount,
		fieldmap.CardDeduction:   f.CardDeduction,
		fieldmap.TransactionDate: f.TransactionDate,
		fieldmap.ProductCode:     f.ProductCode,
		fieldmap.ProductName:     f.ProductName,
		fieldmap.GroupNumber:     f.GroupNumber,
		fieldmap.GroupName:       f.GroupName,
	}
}

// =============================================================================
// CLASSIFICATION AND EXPORT SETTINGS
// =============================================================================

// ClassificationSettings controls payment classification edge cases.
type ClassificationSettings struct {
	// UnknownSign is "reject" (fail the query) or "exclude" (drop and count
	// the row) for amount sign codes other than 0 and 1.
	// Default: "reject"
	UnknownSign string `mapstructure:"unknown_sign" yaml:"unknown_sign"`
}

// ExportSettings controls the exported reports.
type ExportSettings struct {
	// Formats lists the formats written by `export` when --format is not
	// given. Valid values: "xlsx", "pdf".
	// Default: ["xlsx", "pdf"]
	Formats []string `mapstructure:"formats" yaml:"formats"`

	// FileNameFormat is the output file name without extension.
	// Placeholders:
	//   {shop}      - Shop name
	//   {title}     - Report title (daily or monthly)
	//   {range}     - yyyyMMdd, or yyyyMMdd-yyyyMMdd for multi-day ranges
	//   {date}      - Current date (YYYYMMDD)
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "{shop}_{title}_{range}"
	FileNameFormat string `mapstructure:"file_name_format" yaml:"file_name_format"`

	// FontPath is a TrueType font with Japanese glyphs for the PDF report.
	// Empty falls back to Helvetica, which cannot draw Japanese text.
	FontPath string `mapstructure:"font_path" yaml:"font_path"`

	// NegateReversal prints reversal figures as negative numbers.
	// Default: true
	NegateReversal bool `mapstructure:"negate_reversal" yaml:"negate_reversal"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads the configuration from configPath, environment overrides and
// defaults.
//
// PARAMETERS:
//   - configPath: Path of the YAML config file. A missing file is not an
//     error; defaults and environment variables still apply.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be parsed or a value is invalid.
func Load(configPath string) (*MainConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg MainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *MainConfig {
	v := viper.New()
	setDefaults(v)

	var cfg MainConfig
	// Defaults are static and always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults registers a default for every key. Registering each key also
// lets AutomaticEnv find it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input_dir", "./input")
	v.SetDefault("output_dir", "./output")
	v.SetDefault("shop_name", "KB Series")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_concurrency", 4)

	v.SetDefault("source.include_marker", "Count")
	v.SetDefault("source.exclude_marker", "Sale")
	v.SetDefault("source.extensions", []string{".csv"})
	v.SetDefault("source.encoding", "shift_jis")
	v.SetDefault("source.delimiter", ",")
	v.SetDefault("source.header_rows", 1)

	fm := fieldmap.Default()
	for _, f := range fieldmap.Fields {
		v.SetDefault("fields."+string(f), fm.Index(f))
	}

	v.SetDefault("classification.unknown_sign", string(aggregator.RejectUnknownSign))

	v.SetDefault("export.formats", []string{"xlsx", "pdf"})
	v.SetDefault("export.file_name_format", "{shop}_{title}_{range}")
	v.SetDefault("export.font_path", "")
	v.SetDefault("export.negate_reversal", true)
}

// Validate checks values that cannot be fixed by a default.
func (c *MainConfig) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format must be text, json or logfmt, got %q", c.LogFormat)
	}

	if c.Source.IncludeMarker == "" {
		return fmt.Errorf("source.include_marker must not be empty")
	}
	if len(c.Source.Extensions) == 0 {
		return fmt.Errorf("source.extensions must list at least one extension")
	}
	if c.Source.HeaderRows < 0 {
		return fmt.Errorf("source.header_rows must not be negative")
	}

	if err := c.Fields.FieldMap().Validate(); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	if _, err := aggregator.ParseUnknownSignPolicy(c.Classification.UnknownSign); err != nil {
		return fmt.Errorf("classification: %w", err)
	}

	for _, f := range c.Export.Formats {
		if f != "xlsx" && f != "pdf" {
			return fmt.Errorf("export.formats: unsupported format %q", f)
		}
	}
	if c.Export.FileNameFormat == "" {
		return fmt.Errorf("export.file_name_format must not be empty")
	}

	return nil
}

// AggregatorOptions returns the aggregation options described by the config.
// Call after Validate.
func (c *MainConfig) AggregatorOptions() aggregator.Options {
	policy, _ := aggregator.ParseUnknownSignPolicy(c.Classification.UnknownSign)
	return aggregator.Options{UnknownSign: policy}
}
