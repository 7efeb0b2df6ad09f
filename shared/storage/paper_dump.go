package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"astro-digest/internal/models"
)

// SavePapers writes papers to filePath as an indented JSON array.
// Timestamps are encoded as RFC 3339 strings.
func SavePapers(filePath string, papers []models.Paper) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dump directory: %w", err)
		}
	}

	if papers == nil {
		papers = []models.Paper{}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(papers); err != nil {
		return fmt.Errorf("failed to encode papers: %w", err)
	}

	return file.Close()
}

// LoadPapers reads a dump written by SavePapers
func LoadPapers(filePath string) ([]models.Paper, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump file: %w", err)
	}
	defer file.Close()

	var papers []models.Paper
	if err := json.NewDecoder(file).Decode(&papers); err != nil {
		return nil, fmt.Errorf("failed to decode dump file: %w", err)
	}

	return papers, nil
}
