package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwnholic/observador/internal"
	"github.com/pwnholic/observador/internal/document"
)

func testConfig(t *testing.T, backend string) *Config {
	t.Helper()
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 24, 24))))
	left := filepath.Join(dir, "left.png")
	right := filepath.Join(dir, "right.png")
	require.NoError(t, os.WriteFile(left, buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(right, buf.Bytes(), 0o644))

	conf, err := loadConfig("")
	require.NoError(t, err)
	conf.Backend = backend
	conf.OutputDir = filepath.Join(dir, "out")
	conf.Concurrency = 2
	conf.LeftLogo = left
	conf.RightLogo = "file://" + right
	return conf
}

func TestProcessRecords(t *testing.T) {
	conf := testConfig(t, "html")
	process, err := NewGenerateRecords(conf)
	require.NoError(t, err)
	defer process.Close()

	records := []Record{
		{Student: document.Student{Name: "Ana  Pérez", Year: "2024"}},
		{Student: document.Student{Name: "Luis", Year: "2024"}, Filename: "luis.html"},
		{Student: document.Student{Name: "Sofía", Year: "2023"}},
	}
	saved, err := process.processRecords(context.Background(), records)
	require.NoError(t, err)
	assert.Len(t, saved, 3)

	for _, name := range []string{"Observador_Ana_Pérez_2024.html", "luis.html", "Observador_Sofía_2023.html"} {
		data, err := os.ReadFile(filepath.Join(conf.OutputDir, name))
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(string(data), "<!DOCTYPE html>"))
	}
}

func TestProcessRecordsReportsEveryFailure(t *testing.T) {
	conf := testConfig(t, "pdf")
	process, err := NewGenerateRecords(conf)
	require.NoError(t, err)
	defer process.Close()

	tooTall := document.ObservationSet{
		document.PeriodI: {Difficulties: document.Field(strings.Repeat("línea\n", 90))},
	}
	records := []Record{
		{Student: document.Student{Name: "Ana", Year: "2024"}},
		{Student: document.Student{Name: "Luis", Year: "2024"}, Observations: tooTall},
	}

	saved, err := process.processRecords(context.Background(), records)
	require.Error(t, err)
	assert.Len(t, saved, 1)
	assert.True(t, errors.Is(err, internal.ErrLayoutOverflow))
	assert.Contains(t, err.Error(), "Luis")
}

func TestProcessRecordsMissingLogo(t *testing.T) {
	conf := testConfig(t, "docx")
	conf.RightLogo = filepath.Join(t.TempDir(), "nope.png")
	process, err := NewGenerateRecords(conf)
	require.NoError(t, err)
	defer process.Close()

	saved, err := process.processRecords(context.Background(), []Record{{Student: document.Student{Name: "Ana"}}})
	assert.Empty(t, saved)
	assert.True(t, errors.Is(err, internal.ErrAssetLoad))

	_, statErr := os.Stat(conf.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewGenerateRecordsUnknownBackend(t *testing.T) {
	conf := testConfig(t, "odt")
	_, err := NewGenerateRecords(conf)
	assert.Error(t, err)
}
