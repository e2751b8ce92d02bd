package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"companysift/internal/domain"
)

const rapidAPIHost = "duckduckgo8.p.rapidapi.com"

// RapidAPIProvider queries the DuckDuckGo search API on RapidAPI.
type RapidAPIProvider struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func NewRapidAPIProvider(apiKey string, timeout time.Duration) (*RapidAPIProvider, error) {
	if len(strings.TrimSpace(apiKey)) < 10 {
		return nil, fmt.Errorf("search API key is required and must be at least 10 characters")
	}
	return &RapidAPIProvider{
		apiKey:  apiKey,
		baseURL: "https://" + rapidAPIHost,
		hc:      &http.Client{Timeout: timeout},
	}, nil
}

func (p *RapidAPIProvider) Name() string { return "rapidapi-ddg" }

type rapidAPIResult struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type rapidAPIResponse struct {
	Results []rapidAPIResult `json:"results"`
}

func (p *RapidAPIProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("max_results", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFatalLookup, err)
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", rapidAPIHost)

	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed rapidAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFatalLookup, err)
	}

	hits := make([]domain.SearchHit, 0, len(parsed.Results))
	for i, r := range parsed.Results {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		hits = append(hits, domain.SearchHit{
			URL:      r.URL,
			Title:    r.Title,
			Snippet:  r.Description,
			Position: i + 1,
		})
	}
	return hits, nil
}
