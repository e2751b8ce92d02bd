package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ddgResultsPage = `<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facmewidgets.co.uk%2F&rut=abc">Acme Widgets</a>
  <div class="result__snippet">Makers of fine widgets since 1962.</div>
</div>
<div class="result">
  <a class="result__a" href="https://companycheck.co.uk/company/12345678">ACME WIDGETS LTD - Company Check</a>
  <div class="result__snippet">Free company accounts.</div>
</div>
<div class="result">
  <a class="result__a" href="https://acme.com">Acme Inc</a>
  <div class="result__snippet"></div>
</div>
</body></html>`

func htmlServer(t *testing.T, handler http.HandlerFunc) *HTMLProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &HTMLProvider{baseURL: srv.URL, hc: srv.Client()}
}

func TestHTMLSearchParsesResults(t *testing.T) {
	p := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme widgets official website", r.URL.Query().Get("q"))
		w.Write([]byte(ddgResultsPage))
	})

	hits, err := p.Search(context.Background(), "acme widgets official website", 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "https://acmewidgets.co.uk/", hits[0].URL, "redirect wrapper unwrapped")
	assert.Equal(t, "Acme Widgets", hits[0].Title)
	assert.Equal(t, "Makers of fine widgets since 1962.", hits[0].Snippet)
	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, "https://companycheck.co.uk/company/12345678", hits[1].URL)
	assert.Equal(t, 3, hits[2].Position)
}

func TestHTMLSearchHonorsMaxResults(t *testing.T) {
	p := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddgResultsPage))
	})

	hits, err := p.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestHTMLSearchStatusError(t *testing.T) {
	p := htmlServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	})

	_, err := p.Search(context.Background(), "q", 10)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Code)
}

func TestDecodeRedirect(t *testing.T) {
	assert.Equal(t, "https://acmewidgets.co.uk/",
		decodeRedirect("//duckduckgo.com/l/?uddg=https%3A%2F%2Facmewidgets.co.uk%2F&rut=abc"))
	assert.Equal(t, "https://acme.com", decodeRedirect("https://acme.com"))
	assert.Equal(t, "::bad::", decodeRedirect("::bad::"))
}
