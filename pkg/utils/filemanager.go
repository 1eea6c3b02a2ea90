// =============================================================================
// POS Sales Report - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the report exporters:
//   - Output directory management
//   - Output file naming
//   - Audit log generation
//
// Source exports are never moved or modified; the report tool only reads them.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the exporters.
type FileManager struct {
	// OutputDir is the directory where reports and logs are written.
	OutputDir string
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir string) *FileManager {
	return &FileManager{OutputDir: outputDir}
}

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath joins a file name onto the output directory.
func (fm *FileManager) OutputPath(fileName string) string {
	return filepath.Join(fm.OutputDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// unsafeFileChars are replaced with "_" in generated names.
var unsafeFileChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name, without extension.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     plus one {key} per entry of params
//   - params: A map of placeholder values.
//   - ext: The extension to append, e.g. ".xlsx".
//
// RETURNS:
//   - The generated file name with "/", "\" and ":" replaced by "_".
//
// EXAMPLE:
//
//	format: "{shop}_{title}_{range}"
//	params: {"shop": "KB Series", "title": "売上日計表", "range": "20240115"}
//	output: "KB Series_売上日計表_20240115.xlsx"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	result = unsafeFileChars.Replace(result)

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// =============================================================================
// AUDIT LOG GENERATION
// =============================================================================

// AuditLogEntry is one finding of a data audit.
type AuditLogEntry struct {
	Severity   string
	FileName   string
	RowNumber  int
	FieldName  string
	FieldValue string
	Message    string
}

// WriteAuditLog writes audit entries to a timestamped text file.
//
// PARAMETERS:
//   - entries: The entries to write.
//   - outputDir: The directory to write the log file.
//
// RETURNS:
//   - The path to the log file, or "" when there is nothing to write.
//   - An error if writing fails.
func WriteAuditLog(entries []AuditLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("audit_log_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audit log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "POS Sales Report - Audit Log\n"+
		"Generated: %s\n"+
		"Total Findings: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Finding #%d\n"+
			"  Severity:   %s\n"+
			"  File:       %s\n"+
			"  Message:    %s\n",
			i+1, entry.Severity, entry.FileName, entry.Message)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:      %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Audit Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush audit log: %w", err)
	}
	return logPath, nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
