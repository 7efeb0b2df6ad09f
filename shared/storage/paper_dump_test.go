package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"astro-digest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadPapers(t *testing.T) {
	published := time.Date(2024, 1, 1, 18, 59, 59, 0, time.FixedZone("UTC+8", 8*3600))
	papers := []models.Paper{
		{
			ID:        "2401.00001",
			Title:     "JWST & ALMA view of <z> > 6 galaxies",
			Authors:   []string{"Zhang, W.", "Smith, J."},
			Published: published,
			Summary:   "We observe 星系.",
			PDFURL:    "http://arxiv.org/pdf/2401.00001v1",
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "parsed_papers.json")
	require.NoError(t, SavePapers(path, papers))

	loaded, err := LoadPapers(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	got := loaded[0]
	assert.Equal(t, papers[0].Title, got.Title)
	assert.Equal(t, papers[0].Authors, got.Authors)
	assert.Equal(t, papers[0].Summary, got.Summary)
	assert.Equal(t, papers[0].PDFURL, got.PDFURL)
	assert.True(t, published.Equal(got.Published))
}

func TestSavePapersWritesISOTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	published := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, SavePapers(path, []models.Paper{{Title: "T", Published: published}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	stamp, ok := raw[0]["published"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, stamp)
	require.NoError(t, err)
	assert.True(t, published.Equal(parsed))
	assert.Contains(t, string(data), "  \"title\": \"T\"")
}

func TestSavePapersEmptyListIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	require.NoError(t, SavePapers(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestLoadPapersMissingFile(t *testing.T) {
	_, err := LoadPapers(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
