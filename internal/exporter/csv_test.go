package exporter

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncli/internal/config"
)

// Setup test environment
func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()

	tempDir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(tempDir, "out")

	paths, err := config.ResolvePaths(cfg)
	require.NoError(t, err)

	return NewCSVWriter(paths, slog.New(slog.NewTextHandler(io.Discard, nil))), tempDir
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths, nil)
	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
	assert.NotNil(t, writer.logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"Name", "Age", "City"},
				Records: [][]string{
					{"John", "25", "New York"},
					{"Jane", "30", "London"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3) // header + 2 records
				assert.Equal(t, "Name,Age,City", lines[0])
				assert.Equal(t, "John,25,New York", lines[1])
				assert.Equal(t, "Jane,30,London", lines[2])
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"key", "value"},
				Records:   [][]string{{"a", "1"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				lines := strings.Split(strings.TrimSpace(string(content[3:])), "\n")
				assert.Equal(t, "key,value", lines[0])
			},
		},
		{
			name:     "quotes cells with commas",
			filePath: "test_quotes.csv",
			options: WriteOptions{
				Headers: []string{"payload_key", "payload_val"},
				Records: [][]string{{"tags", "a,b"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Contains(t, string(content), `tags,"a,b"`)
			},
		},
		{
			name:     "empty records",
			filePath: "test_empty.csv",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Col1,Col2\n", string(content))
			},
		},
		{
			name:     "absolute path",
			filePath: filepath.Join(tempDir, "elsewhere", "abs.csv"),
			options: WriteOptions{
				Headers: []string{"x"},
				Records: [][]string{{"1"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "x\n1\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))

			content, err := os.ReadFile(writer.resolvePath(tt.filePath))
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_ResolvePath(t *testing.T) {
	writer, tempDir := setupTestEnv(t)

	assert.Equal(t, filepath.Join(tempDir, "out", "report.csv"), writer.resolvePath("report.csv"))
	assert.Equal(t, "/abs/report.csv", writer.resolvePath("/abs/report.csv"))

	bare := NewCSVWriter(nil, nil)
	assert.Equal(t, "report.csv", bare.resolvePath("report.csv"))
}

func TestWriteFileAtomic_FailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "event_data.csv")
	require.NoError(t, os.WriteFile(target, []byte("original\n"), 0644))

	writeErr := errors.New("boom")
	err := WriteFileAtomic(target, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return writeErr
	})
	require.ErrorIs(t, err, writeErr)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is removed")
}

func TestWriteFileAtomic_FailureCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "new.csv")

	err := WriteFileAtomic(target, func(w io.Writer) error { return errors.New("boom") })
	require.Error(t, err)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFileAtomic_Replaces(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "file.txt")

	require.NoError(t, WriteFileAtomic(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "first")
		return err
	}))
	require.NoError(t, WriteFileAtomic(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "second")
		return err
	}))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero value", 0.0, "0"},
		{"positive integer", 1000.0, "1000"},
		{"ratio", 0.25, "0.25"},
		{"repeating decimal", 1.0 / 3.0, "0.3333333333333333"},
		{"negative", -2.5, "-2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}

	assert.Equal(t, "", formatOptionalFloat(nil))
}
