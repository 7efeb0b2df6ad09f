package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"astro-digest/internal/models"
	"astro-digest/shared/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const queryPath = "/api/query"

// ErrUnexpectedStatus is returned when the API answers with a non-2xx code
var ErrUnexpectedStatus = errors.New("arXiv API returned unexpected status")

// Client queries the arXiv search API
type Client struct {
	http       *resty.Client
	maxResults int
	pageSize   int
	pageDelay  time.Duration
	logger     *zap.Logger
}

func NewClient(cfg *config.ArxivConfig, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/atom+xml").
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(cfg.Timeout)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 1000
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > maxResults {
		pageSize = maxResults
	}

	return &Client{
		http:       httpClient,
		maxResults: maxResults,
		pageSize:   pageSize,
		pageDelay:  cfg.PageDelay,
		logger:     logger.Named("arxiv"),
	}
}

// BuildQuery combines a category filter with an inclusive submission date
// range. Dates are passed as literal calendar values.
func BuildQuery(category string, window models.DateWindow) string {
	return fmt.Sprintf("cat:%s AND submittedDate:[%s TO %s]",
		category, window.StartString(), window.EndString())
}

// Fetch returns the papers submitted to category within window, oldest
// first. At most maxResults papers are returned; a larger result set is
// logged and truncated.
func (c *Client) Fetch(ctx context.Context, category string, window models.DateWindow) ([]models.Paper, error) {
	query := BuildQuery(category, window)
	c.logger.Debug("Querying arXiv", zap.String("query", query))

	var papers []models.Paper
	for start := 0; start < c.maxResults; {
		size := min(c.pageSize, c.maxResults-start)

		if start > 0 && c.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pageDelay):
			}
		}

		page, err := c.fetchPage(ctx, query, start, size)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s papers: %w", category, err)
		}

		if start == 0 && page.TotalResults > c.maxResults {
			c.logger.Warn("Result count exceeds fetch limit, extra papers are dropped",
				zap.String("category", category),
				zap.Int("total_results", page.TotalResults),
				zap.Int("limit", c.maxResults),
			)
		}

		for _, entry := range page.Entries {
			paper, err := entry.toPaper(category)
			if err != nil {
				c.logger.Warn("Unparseable published date, keeping zero time",
					zap.String("id", strings.TrimSpace(entry.ID)),
					zap.String("published", entry.Published),
					zap.Error(err),
				)
			}
			papers = append(papers, paper)
		}

		start += len(page.Entries)
		if len(page.Entries) < size || start >= page.TotalResults {
			break
		}
	}

	c.logger.Info("Fetched papers",
		zap.String("category", category),
		zap.String("window", window.String()),
		zap.Int("count", len(papers)),
	)

	return papers, nil
}

// FetchAll calls Fetch once per category and concatenates the results,
// keeping each category's order. The first failure aborts.
func (c *Client) FetchAll(ctx context.Context, categories []string, window models.DateWindow) ([]models.Paper, error) {
	var all []models.Paper
	for _, category := range categories {
		papers, err := c.Fetch(ctx, category, window)
		if err != nil {
			return nil, err
		}
		all = append(all, papers...)
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, start, size int) (*feed, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_query": query,
			"start":        strconv.Itoa(start),
			"max_results":  strconv.Itoa(size),
			"sortBy":       "submittedDate",
			"sortOrder":    "ascending",
		}).
		Get(queryPath)
	if err != nil {
		return nil, fmt.Errorf("arXiv request failed: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status())
	}

	var f feed
	if err := xml.Unmarshal(resp.Body(), &f); err != nil {
		return nil, fmt.Errorf("failed to decode arXiv feed: %w", err)
	}

	return &f, nil
}

// Atom feed structures returned by the API
type feed struct {
	TotalResults int     `xml:"totalResults"`
	Entries      []entry `xml:"entry"`
}

type entry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []author `xml:"author"`
	Links     []link   `xml:"link"`
}

type author struct {
	Name string `xml:"name"`
}

type link struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
}

var whitespace = regexp.MustCompile(`\s+`)

// toPaper always returns the paper; a non-nil error means Published is zero.
func (e entry) toPaper(category string) (models.Paper, error) {
	p := models.Paper{
		ID:       extractID(e.ID),
		Category: category,
		Title:    strings.TrimSpace(whitespace.ReplaceAllString(e.Title, " ")),
		Summary:  strings.TrimSpace(e.Summary),
		PDFURL:   e.pdfURL(),
		Authors:  make([]string, 0, len(e.Authors)),
	}

	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}

	t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published))
	if err != nil {
		return p, fmt.Errorf("invalid published date: %w", err)
	}
	p.Published = t

	return p, nil
}

func (e entry) pdfURL() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return strings.Replace(strings.TrimSpace(e.ID), "/abs/", "/pdf/", 1)
}

// extractID turns "http://arxiv.org/abs/2401.01234v2" into "2401.01234"
func extractID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
