package pdfwriter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/report"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

func sale(sign, qty, amount, card, code, name, group string) types.Row {
	f := make([]string, 20)
	f[9], f[10], f[11], f[12], f[13] = qty, sign, amount, card, "240101"
	f[16], f[17], f[18], f[19] = code, name, "1", group
	return types.Row{Fields: f}
}

func sampleLayout(t *testing.T, rows types.RowSet) report.Layout {
	t.Helper()
	res, err := aggregator.Aggregate(rows, fieldmap.Default(), aggregator.DefaultOptions())
	require.NoError(t, err)
	return report.Build(res, datefilter.Range{Start: "240101", End: "240131"}, report.Options{
		NegateReversal: true,
		Now:            time.Date(2024, 2, 1, 8, 0, 0, 0, time.Local),
	})
}

func TestRenderProducesPDF(t *testing.T) {
	layout := sampleLayout(t, types.RowSet{
		sale("0", "2", "1000", "0", "0012", "Shoyu", "Noodle"),
		sale("0", "1", "500", "500", "0031", "Gyoza", ""),
		sale("1", "1", "450", "0", "0002", "Shio", "Noodle"),
	})

	var logBuf bytes.Buffer
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, layout, Options{Logger: log.New(&logBuf)}))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Contains(t, logBuf.String(), "export.font_path")
}

func TestRenderEmptyLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleLayout(t, nil), Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderManyRowsPaginates(t *testing.T) {
	var rows types.RowSet
	for i := 0; i < 200; i++ {
		rows = append(rows, sale("0", "1", "100", "0", fmt.Sprintf("%04d", i), "Item", "G"))
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleLayout(t, rows), Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestRenderMissingFont(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleLayout(t, nil), Options{FontPath: filepath.Join(t.TempDir(), "none.ttf")})

	var exportErr *report.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, "pdf", exportErr.Format)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, buf.Len())
}

func TestWriteFile(t *testing.T) {
	layout := sampleLayout(t, nil)

	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, WriteFile(path, layout, Options{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	bad := filepath.Join(t.TempDir(), "missing", "report.pdf")
	err = WriteFile(bad, layout, Options{})
	var exportErr *report.ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, bad, exportErr.Path)
}
