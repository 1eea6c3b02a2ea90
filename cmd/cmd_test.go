package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/config"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/engine"
	"github.com/ginjaninja78/pos-sales-report/internal/logging"
	"github.com/ginjaninja78/pos-sales-report/internal/validation"
)

func exportLine(date, qty, sign, amount, card, code, name, group string) string {
	f := make([]string, 20)
	f[9], f[10], f[11], f[12], f[13] = qty, sign, amount, card, date
	f[16], f[17], f[18], f[19] = code, name, "1", group
	return strings.Join(f, ",")
}

// writeFixture writes a Shift_JIS export file with a header row.
func writeFixture(t *testing.T, dir string) {
	t.Helper()
	body := strings.Join([]string{
		strings.Repeat("h,", 19) + "h",
		exportLine("240101", "2", "0", "1000", "0", "0012", "醤油ラーメン", "麺類"),
		exportLine("240101", "1", "0", "500", "500", "0031", "餃子", "サイド"),
		exportLine("240101", "1", "1", "500", "0", "0031", "餃子", "サイド"),
	}, "\r\n") + "\r\n"
	text, err := japanese.ShiftJIS.NewEncoder().String(body)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "T1_Count_0101.csv"), []byte(text), 0o644))
}

func runSession(t *testing.T) (*config.MainConfig, *engine.Session) {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir)

	cfg := config.Default()
	cfg.InputDir = dir
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	require.NoError(t, cfg.Validate())

	s, err := engine.New(cfg, nil).Run(context.Background(), engine.Query{
		Range: datefilter.Range{Start: "240101", End: "240101"},
	})
	require.NoError(t, err)
	return cfg, s
}

func TestQueryFlagsResolve(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name    string
		flags   queryFlags
		want    datefilter.Range
		wantErr bool
	}{
		{name: "default is today", want: datefilter.Range{Start: "240315", End: "240315"}},
		{name: "today", flags: queryFlags{today: true}, want: datefilter.Range{Start: "240315", End: "240315"}},
		{name: "this month", flags: queryFlags{thisMonth: true}, want: datefilter.Range{Start: "240301", End: "240315"}},
		{name: "this year", flags: queryFlags{thisYear: true}, want: datefilter.Range{Start: "240101", End: "240315"}},
		{name: "from only", flags: queryFlags{from: "2024-01-05"}, want: datefilter.Range{Start: "240105", End: "240105"}},
		{name: "to only", flags: queryFlags{to: "240110"}, want: datefilter.Range{Start: "240110", End: "240110"}},
		{name: "from and to", flags: queryFlags{from: "240101", to: "2024/01/31"}, want: datefilter.Range{Start: "240101", End: "240131"}},
		{name: "reversed", flags: queryFlags{from: "240131", to: "240101"}, wantErr: true},
		{name: "preset and explicit", flags: queryFlags{from: "240101", today: true}, wantErr: true},
		{name: "bad date", flags: queryFlags{from: "tomorrow"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.resolve(now)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintSummaryJSON(t *testing.T) {
	_, s := runSession(t)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, s, summaryOptions{Format: "json"}))

	var doc struct {
		Session     string            `json:"session"`
		RowsMatched int               `json:"rows_matched"`
		Result      aggregator.Result `json:"result"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, s.ID.String(), doc.Session)
	assert.Equal(t, 3, doc.RowsMatched)
	assert.Equal(t, int64(1500), doc.Result.TotalAmount)
	assert.Equal(t, int64(500), doc.Result.CashlessAmount)
}

func TestPrintSummaryYAML(t *testing.T) {
	_, s := runSession(t)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, s, summaryOptions{Format: "yaml"}))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "240101", doc["start"])
	result := doc["result"].(map[string]interface{})
	assert.Equal(t, 3, result["total_quantity"])
}

func TestPrintSummaryTable(t *testing.T) {
	_, s := runSession(t)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, s, summaryOptions{
		Format:         "table",
		Category:       aggregator.Reversal,
		NegateReversal: true,
	}))

	out := buf.String()
	assert.Contains(t, out, "売上日計表")
	assert.Contains(t, out, "醤油ラーメン")
	assert.Contains(t, out, "1,500")
	assert.Contains(t, out, "-500")

	assert.Error(t, printSummary(&buf, s, summaryOptions{Format: "csv"}))
}

func TestPrintSummaryNoMatches(t *testing.T) {
	cfg, _ := runSession(t)
	s, err := engine.New(cfg, nil).Run(context.Background(), engine.Query{
		Range: datefilter.Range{Start: "240201", End: "240229"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, s, summaryOptions{}))
	assert.Contains(t, buf.String(), "該当するデータがありません")
	assert.Contains(t, buf.String(), "売上月計表")
}

func TestExportSession(t *testing.T) {
	cfg, s := runSession(t)

	var buf bytes.Buffer
	paths, err := exportSession(&buf, s, cfg.Export, exportOptions{
		Formats:   []string{"xlsx", "pdf"},
		OutputDir: cfg.OutputDir,
		ShopName:  "Station",
	}, logging.Discard())
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "Station_売上日計表_20240101.xlsx"), paths[0])
	assert.Equal(t, filepath.Join(cfg.OutputDir, "Station_売上日計表_20240101.pdf"), paths[1])
	for _, p := range paths {
		assert.FileExists(t, p)
	}

	_, err = exportSession(&buf, s, cfg.Export, exportOptions{Formats: []string{"docx"}}, logging.Discard())
	assert.Error(t, err)
}

func TestReportAudit(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, reportAudit(&buf, &validation.Result{IsValid: true, RowsAudited: 4}))
	assert.Contains(t, buf.String(), "No issues found.")

	buf.Reset()
	err := reportAudit(&buf, &validation.Result{
		IsValid:    false,
		ErrorCount: 1,
		Issues:     []*validation.Issue{{Severity: validation.SeverityError, Source: "a.csv", Line: 2, Message: "bad"}},
	})
	assert.ErrorIs(t, err, errAuditFailed)
	assert.Contains(t, buf.String(), "a.csv:2")
}

func TestWriteAuditLog(t *testing.T) {
	out := filepath.Join(t.TempDir(), "logs")
	path, err := writeAuditLog(&validation.Result{Issues: []*validation.Issue{
		{Severity: validation.SeverityWarning, Source: "a.csv", Line: 3, Message: "blank product code"},
	}}, out)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "blank product code")
}

func TestRootSummaryCommand(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	t.Setenv("SALESREPORT_INPUT_DIR", dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"summary", "--config", filepath.Join(dir, "missing.yaml"), "--from", "240101", "-o", "json"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var doc summaryDocument
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, int64(1500), doc.Result.TotalAmount)
	assert.Equal(t, []string{filepath.Join(dir, "T1_Count_0101.csv")}, doc.Files)
}
