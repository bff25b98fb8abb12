// Package importer turns a web page with a checklist into a task and its steps.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"femwork/internal/llm"
	"femwork/internal/shared"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	MaxItems   = 30
	maxTextLen = 200

	// Page text sent to the model is cut to keep the prompt small.
	maxPromptText = 8000

	extractorAgent = "ChecklistExtractor"
)

// ErrNoItems is returned when a page has no usable list items.
var ErrNoItems = errors.New("no checklist items found")

// Checklist is what a page yields: a title and its ordered items.
type Checklist struct {
	Title     string   `json:"title"`
	Items     []string `json:"items"`
	SourceURL string   `json:"source_url"`
}

// Importer fetches pages and extracts checklists from them.
type Importer struct {
	httpClient *http.Client
	textGen    llm.TextGenerator
	logger     *zap.Logger
}

// NewImporter creates an Importer. textGen is optional; when set, pages
// without list markup are handed to the model for extraction.
func NewImporter(textGen llm.TextGenerator, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		textGen:    textGen,
		logger:     logger,
	}
}

// Fetch downloads rawURL and extracts its checklist.
func (i *Importer) Fetch(ctx context.Context, rawURL string) (*Checklist, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: extractorAgent}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, meta, fmt.Errorf("invalid url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, meta, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to parse page: %w", err)
	}

	list := parseDocument(doc)
	list.SourceURL = u.String()
	if list.Title == "" {
		list.Title = u.Host
	}
	if len(list.Items) > 0 {
		return list, meta, nil
	}
	if i.textGen == nil {
		return nil, meta, ErrNoItems
	}

	i.logger.Debug("no list markup, asking model", zap.String("url", list.SourceURL))
	return i.extractWithModel(ctx, doc, list)
}

// ParseChecklist extracts a checklist from HTML. Checkbox items win over
// article or main list items, which win over any list item.
func ParseChecklist(r io.Reader) (*Checklist, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	list := parseDocument(doc)
	if len(list.Items) == 0 {
		return list, ErrNoItems
	}
	return list, nil
}

func parseDocument(doc *goquery.Document) *Checklist {
	doc.Find("script, style, nav, footer, header, iframe, aside, .ads, #ads").Remove()

	list := &Checklist{Title: clean(doc.Find("h1").First().Text())}
	if list.Title == "" {
		list.Title = clean(doc.Find("title").First().Text())
	}

	checkboxes := doc.Find("li").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(`input[type="checkbox"]`).Length() > 0
	})
	for _, sel := range []*goquery.Selection{
		checkboxes,
		doc.Find("article li, main li"),
		doc.Find("li"),
	} {
		if items := collect(sel); len(items) > 0 {
			list.Items = items
			break
		}
	}
	return list
}

func collect(sel *goquery.Selection) []string {
	var items []string
	seen := make(map[string]struct{})
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := clean(s.Text())
		if text == "" {
			return true
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}
		items = append(items, text)
		return len(items) < MaxItems
	})
	return items
}

func (i *Importer) extractWithModel(ctx context.Context, doc *goquery.Document, list *Checklist) (*Checklist, shared.AgentMeta, error) {
	meta := shared.AgentMeta{AgentName: extractorAgent}
	text := clean(doc.Find("body").Text())
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}

	prompt := fmt.Sprintf(`
You are a checklist extraction expert. Extract the actionable steps from the following page text.
Return the result strictly as a JSON object with this structure:
{
  "title": "Short title for the whole checklist",
  "items": ["first step", "second step", ...]
}

Page Text:
%s
`, text)

	start := time.Now()
	resp, err := i.textGen.GenerateContent(ctx, prompt)
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, fmt.Errorf("ai extraction failed: %w", err)
	}
	meta.Usage = resp.Usage

	var extracted struct {
		Title string   `json:"title"`
		Items []string `json:"items"`
	}
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Content)), &extracted); err != nil {
		return nil, meta, fmt.Errorf("failed to parse AI response: %w. Response: %s", err, resp.Content)
	}

	seen := make(map[string]struct{})
	for _, item := range extracted.Items {
		item = clean(item)
		if _, dup := seen[strings.ToLower(item)]; item == "" || dup {
			continue
		}
		seen[strings.ToLower(item)] = struct{}{}
		list.Items = append(list.Items, item)
		if len(list.Items) == MaxItems {
			break
		}
	}
	if len(list.Items) == 0 {
		return nil, meta, ErrNoItems
	}
	if t := clean(extracted.Title); t != "" {
		list.Title = t
	}
	return list, meta, nil
}

// clean collapses whitespace and cuts text to the stored length limit.
func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxTextLen {
		return s
	}
	return string([]rune(s)[:maxTextLen])
}
