package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"astro-digest/internal/models"
)

const (
	maxTitleRunes    = 150
	maxAuthors       = 30
	maxAbstractRunes = 1000
)

// PromptOptions controls the topical filter and the output language
type PromptOptions struct {
	Topic    string
	Keywords []string
	Language string
	Model    string
}

type promptData struct {
	PromptOptions
	KeywordList string
	Start       string
	End         string
	Papers      string
}

// TruncatePapers bounds the size of every field embedded into the prompt
func TruncatePapers(papers []models.Paper) []models.PromptPaper {
	out := make([]models.PromptPaper, 0, len(papers))
	for _, p := range papers {
		authors := p.Authors
		if len(authors) > maxAuthors {
			authors = authors[:maxAuthors]
		}
		out = append(out, models.PromptPaper{
			Title:    truncateRunes(p.Title, maxTitleRunes),
			Authors:  append([]string{}, authors...),
			Abstract: truncateRunes(p.Summary, maxAbstractRunes),
			Date:     p.Published,
			URL:      p.PDFURL,
		})
	}
	return out
}

// BuildPrompt renders the instruction document for the digest. The same
// papers, window and options always give the same text.
func BuildPrompt(papers []models.Paper, window models.DateWindow, opts PromptOptions) (string, error) {
	var papersJSON bytes.Buffer
	enc := json.NewEncoder(&papersJSON)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(TruncatePapers(papers)); err != nil {
		return "", fmt.Errorf("failed to encode papers: %w", err)
	}

	data := promptData{
		PromptOptions: opts,
		KeywordList:   strings.Join(opts.Keywords, ", "),
		Start:         window.StartString(),
		End:           window.EndString(),
		Papers:        strings.TrimRight(papersJSON.String(), "\n"),
	}

	var buf bytes.Buffer
	if err := analysisPrompt.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}

func systemPrompt(language string) string {
	return fmt.Sprintf("You are a professional astronomy literature assistant, fluent in English and %s. Process the paper data strictly as instructed.", language)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var analysisPrompt = template.Must(template.New("analysis").Parse(`You are an astronomy literature analysis assistant. Below is a JSON list of papers from arXiv covering astronomy and astrophysics.
Your tasks:
1) Select the papers highly relevant to "{{.Topic}}" research, judging from title and abstract. Relevance is based on these keywords and topics (including but not limited to): {{.KeywordList}}.
2) Format every selected paper and translate it into {{.Language}}.
3) Write a short summary of the day's papers (or the selected subset).
4) Produce a complete HTML email ready to send.

[PAPER DATA]
{{.Papers}}

[OUTPUT REQUIREMENTS]
1. Output the complete HTML email directly, with no extra explanation.
2. Use the following HTML structure (styles and content):
` + "```html" + `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
        .header { background: #2c3e50; color: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
        .section { background: white; padding: 20px; border-radius: 8px; margin-bottom: 20px; border-left: 4px solid #4a6491; }
        .section-title { color: #2c3e50; font-size: 18px; font-weight: 600; margin-bottom: 15px; }
        .paper { margin-bottom: 25px; padding-bottom: 20px; border-bottom: 1px dashed #eee; }
        .paper-title { font-size: 16px; font-weight: 600; color: #2c3e50; margin-bottom: 5px; }
        .paper-title-translation { font-size: 14px; color: #555; font-style: italic; margin-bottom: 8px; }
        .paper-meta { font-size: 13px; color: #666; background-color: #f5f5f5; padding: 8px 12px; border-radius: 4px; margin: 8px 0; }
        .paper-abstract { font-size: 14px; line-height: 1.7; margin: 10px 0; padding: 12px; background-color: #f8f9fa; border-radius: 4px; }
        .paper-link { display: inline-block; background-color: #4a6491; color: white; padding: 6px 12px; text-decoration: none; border-radius: 4px; font-size: 13px; margin-top: 8px; }
        .summary { background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 25px 0; }
        .footer { text-align: center; font-size: 12px; color: #666; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="header">
        <h1>arXiv Astronomy Daily Digest</h1>
        <div>Submission dates: {{.Start}} to {{.End}}</div>
    </div>

    <div class="section">
        <div class="section-title">📚 Selected papers</div>

        <!-- Repeat this block for every selected paper -->
        <div class="paper">
            <div class="paper-title">Title: [original title]</div>
            <div class="paper-title-translation">Translated title: [title in {{.Language}}]</div>
            <div class="paper-meta">Published: [publication time]</div>
            <div class="paper-meta">Authors: [author list]</div>
            <div class="paper-abstract">Abstract: [original abstract, keeping only the first and last 100 characters]</div>
            <div class="paper-abstract-translation">Translated abstract: [professional, fluent {{.Language}} translation of the abstract]</div>
            <a class="paper-link" href="https://arxiv.org/abs/[arXiv ID]" target="_blank">View paper</a>
        </div>
        <!-- End of paper block -->

    </div>

    <div class="summary">
        <div class="section-title">📊 Summary of the day</div>
        <p>[About 200 words in {{.Language}} summarizing the selected papers for professional researchers, highlighting important findings and trends]</p>
    </div>

    <div class="footer">
        <p>Generated by {{.Model}} | [number of papers] papers processed</p>
    </div>
</body>
</html>
` + "```" + `
`))
