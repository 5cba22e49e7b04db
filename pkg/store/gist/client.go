package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

const reportFileName = "lighthouse_results.json"

// Config describes a gist-style storage API.
type Config struct {
	// BaseURL of the API, e.g. https://api.github.com.
	BaseURL string
	// Token is an optional bearer token for create calls.
	Token string
	// HTTPClient overrides the default client when set.
	HTTPClient *http.Client
}

// Client talks to a gist-hosting API. A gist is a named bag of files; the
// report lives in a single JSON file inside it.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("gist base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    httpClient,
	}, nil
}

type gistFile struct {
	Content string `json:"content"`
}

type gistDocument struct {
	ID          string              `json:"id"`
	Description string              `json:"description,omitempty"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

// FetchByID downloads the gist and parses its report file.
func (c *Client) FetchByID(ctx context.Context, id string) (domain.ReportPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/gists/%s", c.baseURL, id), nil)
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ReportPayload{}, fmt.Errorf("%w: gist %s: unexpected status %d", domain.ErrFetch, id, resp.StatusCode)
	}

	var doc gistDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: decoding gist %s: %v", domain.ErrFetch, id, err)
	}

	content, err := reportContent(doc)
	if err != nil {
		return domain.ReportPayload{}, fmt.Errorf("%w: gist %s: %v", domain.ErrFetch, id, err)
	}
	return domain.ParseReport([]byte(content))
}

// Create uploads the payload as a new secret gist and returns its
// identifier.
func (c *Client) Create(ctx context.Context, payload domain.ReportPayload) (string, error) {
	doc := gistDocument{
		Description: "Performance report (Report Lens)",
		Files: map[string]gistFile{
			reportFileName: {Content: string(payload.Raw)},
		},
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gists", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: creating gist: unexpected status %d", domain.ErrFetch, resp.StatusCode)
	}

	var created gistDocument
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("%w: decoding create response: %v", domain.ErrFetch, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create response carried no identifier", domain.ErrFetch)
	}
	return created.ID, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// reportContent picks the report file out of the gist: the canonical name
// first, otherwise the first JSON file.
func reportContent(doc gistDocument) (string, error) {
	if f, ok := doc.Files[reportFileName]; ok {
		return f.Content, nil
	}
	names := make([]string, 0, len(doc.Files))
	for name := range doc.Files {
		names = append(names, name)
	}
	// Map order is not stable; pick deterministically.
	sort.Strings(names)
	for _, name := range names {
		if strings.HasSuffix(name, ".json") {
			return doc.Files[name].Content, nil
		}
	}
	return "", fmt.Errorf("no report file found")
}
