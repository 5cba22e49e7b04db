package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/perf-tools/report-lens/pkg/models/domain"
)

const templateCacheSize = 8

// Renderer turns a validated report payload into an HTML document. Compiled
// templates are cached; Reset drops the cache so a failed render never
// leaves a half-built template behind.
type Renderer struct {
	templates *lru.Cache[string, *template.Template]
}

func NewRenderer() (*Renderer, error) {
	cache, err := lru.New[string, *template.Template](templateCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating template cache: %w", err)
	}
	return &Renderer{templates: cache}, nil
}

// Render builds the document for payload and writes it into target. Every
// failure wraps domain.ErrRender; the caller owns resetting the target.
func (r *Renderer) Render(_ context.Context, payload domain.ReportPayload, target *Container) error {
	view, err := buildView(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	tmpl, err := r.template("report", reportTemplate)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	target.SetHTML(buf.Bytes())
	return nil
}

// Reset drops all cached templates.
func (r *Renderer) Reset() {
	r.templates.Purge()
}

func (r *Renderer) template(name, text string) (*template.Template, error) {
	if tmpl, ok := r.templates.Get(name); ok {
		return tmpl, nil
	}
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, err
	}
	r.templates.Add(name, tmpl)
	return tmpl, nil
}

type categoryView struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Score *float64 `json:"score"`
}

func (c categoryView) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Name
}

// Percent normalizes scores to 0-100; newer reports use the 0-1 range.
func (c categoryView) Percent() int {
	if c.Score == nil {
		return 0
	}
	score := *c.Score
	if score <= 1 {
		score *= 100
	}
	return int(score + 0.5)
}

type reportView struct {
	Version          string         `json:"lighthouseVersion"`
	RequestedURL     string         `json:"requestedUrl"`
	FinalURL         string         `json:"finalUrl"`
	URL              string         `json:"url"`
	FetchTime        string         `json:"fetchTime"`
	GeneratedTime    string         `json:"generatedTime"`
	Categories       map[string]categoryView `json:"categories"`
	ReportCategories []categoryView `json:"reportCategories"`
}

func (v reportView) Subject() string {
	if v.FinalURL != "" {
		return v.FinalURL
	}
	if v.RequestedURL != "" {
		return v.RequestedURL
	}
	return v.URL
}

func (v reportView) When() string {
	if v.FetchTime != "" {
		return v.FetchTime
	}
	return v.GeneratedTime
}

// AllCategories merges the two historical category shapes into one ordered
// list.
func (v reportView) AllCategories() []categoryView {
	if len(v.ReportCategories) > 0 {
		return v.ReportCategories
	}
	out := make([]categoryView, 0, len(v.Categories))
	for id, cat := range v.Categories {
		if cat.ID == "" {
			cat.ID = id
		}
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func buildView(payload domain.ReportPayload) (reportView, error) {
	var view reportView
	if err := json.Unmarshal(payload.Raw, &view); err != nil {
		return reportView{}, fmt.Errorf("decoding report document: %w", err)
	}
	return view, nil
}
