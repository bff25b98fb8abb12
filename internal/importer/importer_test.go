package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"femwork/internal/llm"
	"femwork/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockTextGenerator struct {
	Response    string
	ShouldError bool
}

func (m *MockTextGenerator) GenerateContent(_ context.Context, _ string) (llm.ContentResponse, error) {
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response, Usage: shared.TokenUsage{PromptTokens: 9}}, nil
}

func TestParseChecklist_PrefersCheckboxes(t *testing.T) {
	html := `
	<html>
		<head><title>Launch checklist | Blog</title></head>
		<body>
			<nav><ul><li>Home</li><li>About</li></ul></nav>
			<h1>  Launch
			   checklist </h1>
			<ul>
				<li><input type="checkbox"> Write the announcement</li>
				<li><input type="checkbox"> Schedule the  email</li>
				<li><input type="checkbox"> write the announcement</li>
			</ul>
			<article><ul><li>Unrelated article bullet</li></ul></article>
			<footer><ul><li>Copyright</li></ul></footer>
		</body>
	</html>`

	got, err := ParseChecklist(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, "Launch checklist", got.Title)
	assert.Equal(t, []string{"Write the announcement", "Schedule the email"}, got.Items)
}

func TestParseChecklist_FallsBackThroughSelectors(t *testing.T) {
	article := `<html><head><title>Moving house</title></head><body>
		<ul><li>Sidebar link</li></ul>
		<main><ol><li>Book the van</li><li>Pack the kitchen</li></ol></main>
	</body></html>`
	got, err := ParseChecklist(strings.NewReader(article))
	require.NoError(t, err)
	assert.Equal(t, "Moving house", got.Title)
	assert.Equal(t, []string{"Book the van", "Pack the kitchen"}, got.Items)

	plain := `<html><body><ul><li>One</li><li></li><li>Two</li></ul></body></html>`
	got, err = ParseChecklist(strings.NewReader(plain))
	require.NoError(t, err)
	assert.Equal(t, []string{"One", "Two"}, got.Items)
	assert.Empty(t, got.Title)
}

func TestParseChecklist_CapsAndTrims(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "<li>Step %d</li>", i)
	}
	sb.WriteString("</ul>")

	got, err := ParseChecklist(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Len(t, got.Items, MaxItems)
	assert.Equal(t, "Step 29", got.Items[MaxItems-1])

	long := "<ul><li>" + strings.Repeat("a", 300) + "</li></ul>"
	got, err = ParseChecklist(strings.NewReader(long))
	require.NoError(t, err)
	assert.Len(t, got.Items[0], maxTextLen)
}

func TestParseChecklist_NoItems(t *testing.T) {
	_, err := ParseChecklist(strings.NewReader("<p>Just prose.</p>"))
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestImporter_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list":
			_, _ = w.Write([]byte(`<ul><li>Buy stamps</li><li>Post letters</li></ul>`))
		case "/prose":
			_, _ = w.Write([]byte(`<h1>Tax day</h1><p>First gather receipts, then fill the form.</p>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	ctx := context.Background()

	t.Run("list markup", func(t *testing.T) {
		got, meta, err := NewImporter(nil, nil).Fetch(ctx, ts.URL+"/list")
		require.NoError(t, err)
		assert.Equal(t, []string{"Buy stamps", "Post letters"}, got.Items)
		assert.Equal(t, ts.URL+"/list", got.SourceURL)
		assert.NotEmpty(t, got.Title, "host is used when the page has no title")
		assert.True(t, meta.Usage.Empty())
	})

	t.Run("model extraction", func(t *testing.T) {
		gen := &MockTextGenerator{Response: `{"title": "", "items": ["Gather receipts", "Fill the form", "gather receipts"]}`}
		got, meta, err := NewImporter(gen, nil).Fetch(ctx, ts.URL+"/prose")
		require.NoError(t, err)
		assert.Equal(t, "Tax day", got.Title)
		assert.Equal(t, []string{"Gather receipts", "Fill the form"}, got.Items)
		assert.Equal(t, 9, meta.Usage.PromptTokens)
	})

	t.Run("no items without model", func(t *testing.T) {
		_, _, err := NewImporter(nil, nil).Fetch(ctx, ts.URL+"/prose")
		assert.True(t, errors.Is(err, ErrNoItems))
	})

	t.Run("model error", func(t *testing.T) {
		_, _, err := NewImporter(&MockTextGenerator{ShouldError: true}, nil).Fetch(ctx, ts.URL+"/prose")
		assert.ErrorContains(t, err, "ai extraction failed")
	})

	t.Run("bad status", func(t *testing.T) {
		_, _, err := NewImporter(nil, nil).Fetch(ctx, ts.URL+"/missing")
		assert.ErrorContains(t, err, "status 404")
	})

	t.Run("bad url", func(t *testing.T) {
		_, _, err := NewImporter(nil, nil).Fetch(ctx, "ftp://example.com/list")
		assert.ErrorContains(t, err, "invalid url")
	})
}
