package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github/itish2003/medassist/logger"
	"github/itish2003/medassist/models"

	"github.com/tidwall/gjson"
)

// LabelService looks drug labels up in openFDA.
type LabelService interface {
	FetchLabel(ctx context.Context, drugName string) models.FetchResult
}

type openFDALabelService struct {
	httpClient *http.Client
	baseURL    string
}

// NewLabelService returns a LabelService querying baseURL
// (normally https://api.fda.gov/drug/label.json).
func NewLabelService(client *http.Client, baseURL string) LabelService {
	return &openFDALabelService{
		httpClient: client,
		baseURL:    baseURL,
	}
}

// searchURL builds the brand-or-generic query. The '+' between the two
// clauses must reach openFDA unescaped, so the query string is assembled by
// hand rather than through url.Values.
func (s *openFDALabelService) searchURL(name string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf("%s?search=openfda.brand_name:%s+openfda.generic_name:%s&limit=1", s.baseURL, escaped, escaped)
}

// FetchLabel returns the label text of the first matching record, with each
// section's paragraphs joined by a newline and sections separated by a blank
// line.
func (s *openFDALabelService) FetchLabel(ctx context.Context, drugName string) models.FetchResult {
	name := strings.ToLower(strings.TrimSpace(drugName))
	done := func(r models.FetchResult) models.FetchResult {
		if r.Status == models.FetchFailed {
			logger.Warnw("label fetch failed", "drug", name, "error", r.Err)
		} else {
			logger.Infow("label fetch finished", "drug", name, "status", r.Status.String(), "chars", len(r.Text))
		}
		return r
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL(name), nil)
	if err != nil {
		return done(failed(fmt.Errorf("failed to create openfda request: %w", err)))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return done(failed(fmt.Errorf("failed to call openfda: %w", err)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return done(failed(fmt.Errorf("failed to read openfda response: %w", err)))
	}

	// openFDA answers a search with no hits with 404 and an error object.
	if resp.StatusCode == http.StatusNotFound {
		return done(models.FetchResult{Status: models.FetchNotFound})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return done(failed(fmt.Errorf("openfda returned non-2xx status: %d, body: %s", resp.StatusCode, truncate(string(body), 200))))
	}
	if !gjson.ValidBytes(body) {
		return done(failed(fmt.Errorf("openfda returned invalid json")))
	}

	results := gjson.GetBytes(body, "results")
	if !results.IsArray() || len(results.Array()) == 0 {
		return done(models.FetchResult{Status: models.FetchNotFound})
	}

	return done(models.FetchResult{
		Status: models.FetchFound,
		Text:   combineSections(results.Array()[0]),
	})
}

// combineSections joins the known sections present on one label record.
func combineSections(record gjson.Result) string {
	var sections []string
	for _, name := range models.LabelSections {
		field := record.Get(name)
		if !field.Exists() {
			continue
		}
		var paragraphs []string
		if field.IsArray() {
			for _, p := range field.Array() {
				paragraphs = append(paragraphs, p.String())
			}
		} else {
			paragraphs = append(paragraphs, field.String())
		}
		sections = append(sections, strings.Join(paragraphs, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

func failed(err error) models.FetchResult {
	return models.FetchResult{Status: models.FetchFailed, Err: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
