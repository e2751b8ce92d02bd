package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"companysift/internal/domain"
)

// HTMLProvider scrapes the DuckDuckGo HTML endpoint. Keyless fallback for
// runs without a RapidAPI key; same contract as the API provider.
type HTMLProvider struct {
	baseURL string
	hc      *http.Client
}

func NewHTMLProvider(timeout time.Duration) *HTMLProvider {
	return &HTMLProvider{
		baseURL: "https://duckduckgo.com/html/",
		hc:      &http.Client{Timeout: timeout},
	}
}

func (p *HTMLProvider) Name() string { return "ddg-html" }

func (p *HTMLProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error) {
	u := p.baseURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFatalLookup, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results html: %w", err)
	}

	var hits []domain.SearchHit
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		a := sel.Find("a.result__a").First()
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		hits = append(hits, domain.SearchHit{
			URL:      decodeRedirect(href),
			Title:    strings.TrimSpace(a.Text()),
			Snippet:  strings.TrimSpace(sel.Find(".result__snippet").Text()),
			Position: len(hits) + 1,
		})
		return len(hits) < maxResults
	})
	return hits, nil
}

// decodeRedirect unwraps DDG's /l/?uddg=<urlencoded> indirection.
func decodeRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return href
}
