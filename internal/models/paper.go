package models

import "time"

// Paper is one preprint returned by the arXiv search API
type Paper struct {
	ID        string    `json:"id,omitempty"`
	Category  string    `json:"category,omitempty"`
	Title     string    `json:"title"`
	Authors   []string  `json:"authors"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"`
	PDFURL    string    `json:"pdf_url"`
}

// PromptPaper is the trimmed view of a Paper embedded into the LLM prompt
type PromptPaper struct {
	Title    string    `json:"title"`
	Authors  []string  `json:"authors"`
	Abstract string    `json:"abstract"`
	Date     time.Time `json:"date"`
	URL      string    `json:"url"`
}
