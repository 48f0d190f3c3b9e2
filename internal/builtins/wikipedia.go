// ABOUTME: Wikipedia article extraction tool returning the API query.pages payload.
// ABOUTME: Fetches plain-text extracts with language-code validation and a bounded client.

package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2389/mcpd/internal/tools"
)

const wikipediaSchema = `{
	"type": "object",
	"properties": {
		"title": {
			"type": "string",
			"description": "Wikipedia article title, e.g. 'Earth'."
		},
		"language": {
			"type": "string",
			"description": "Wikipedia language code, e.g. 'en'. Defaults to 'en'."
		}
	},
	"required": ["title"],
	"additionalProperties": false
}`

// wikiRequestTimeout bounds a single Wikipedia API round trip.
const wikiRequestTimeout = 20 * time.Second

// wikipediaHandlers holds the HTTP client and endpoint resolver,
// injectable for tests.
type wikipediaHandlers struct {
	client *http.Client
	apiURL func(language string) string
}

// WikipediaTool returns the get_wikipedia_pages_json descriptor.
func WikipediaTool() *tools.Descriptor {
	return newWikipediaTool(
		&http.Client{Timeout: wikiRequestTimeout},
		func(language string) string {
			return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", language)
		},
	)
}

func newWikipediaTool(client *http.Client, apiURL func(string) string) *tools.Descriptor {
	h := &wikipediaHandlers{client: client, apiURL: apiURL}
	return &tools.Descriptor{
		Name:        "get_wikipedia_pages_json",
		Description: "Fetch plain-text article content from Wikipedia and return only the API `query.pages` JSON payload.",
		InputSchema: json.RawMessage(wikipediaSchema),
		Handler:     h.Get,
	}
}

type wikipediaInput struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// wikipediaResponse matches the formatversion=2 API shape.
type wikipediaResponse struct {
	Query struct {
		Pages []json.RawMessage `json:"pages"`
	} `json:"query"`
}

func (h *wikipediaHandlers) Get(ctx context.Context, args json.RawMessage) (*tools.Result, error) {
	var in wikipediaInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("`title` is required and must be a non-empty string")
	}

	language, err := resolveLanguage(in.Language)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"action":        {"query"},
		"prop":          {"extracts"},
		"titles":        {title},
		"explaintext":   {"1"},
		"redirects":     {"1"},
		"format":        {"json"},
		"formatversion": {"2"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.apiURL(language)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building Wikipedia request: %w", err)
	}
	req.Header.Set("User-Agent", "mcpd/0.1")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Wikipedia request failed with HTTP %d", resp.StatusCode)
	}

	var payload wikipediaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("Wikipedia response was not valid JSON: %w", err)
	}

	if payload.Query.Pages == nil {
		return nil, fmt.Errorf("Wikipedia response did not include a valid `query.pages` payload")
	}

	pagesJSON, err := json.Marshal(payload.Query.Pages)
	if err != nil {
		return nil, fmt.Errorf("encoding pages payload: %w", err)
	}

	return tools.TextResult(string(pagesJSON), map[string]any{
		"pages": payload.Query.Pages,
	}), nil
}

// resolveLanguage validates a Wikipedia language code, defaulting to "en".
func resolveLanguage(language string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(language))
	if normalized == "" {
		return "en", nil
	}

	for _, r := range normalized {
		if (r < 'a' || r > 'z') && r != '-' {
			return "", fmt.Errorf("`language` must be a valid Wikipedia language code, e.g. 'en'")
		}
	}

	return normalized, nil
}
