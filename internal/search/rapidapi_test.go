package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rapidAPIServer(t *testing.T, handler http.HandlerFunc) *RapidAPIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &RapidAPIProvider{
		apiKey:  "test-key-0123456789",
		baseURL: srv.URL,
		hc:      srv.Client(),
	}
}

func TestRapidAPISearchParsesResults(t *testing.T) {
	p := rapidAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key-0123456789", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "acme widgets official website", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"url":"https://acmewidgets.co.uk","title":"Acme Widgets","description":"Official site"},
			{"url":"","title":"broken","description":""},
			{"url":"https://companycheck.co.uk/1","title":"ACME WIDGETS LTD","description":"registry"}
		]}`))
	})

	hits, err := p.Search(context.Background(), "acme widgets official website", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://acmewidgets.co.uk", hits[0].URL)
	assert.Equal(t, 1, hits[0].Position)
	// empty-URL rows are dropped but the provider rank is preserved
	assert.Equal(t, 3, hits[1].Position)
}

func TestRapidAPISearchStatusError(t *testing.T) {
	p := rapidAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	})

	_, err := p.Search(context.Background(), "q", 10)
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, IsTransient(err))
}

func TestRapidAPISearchAuthFailureIsFatal(t *testing.T) {
	p := rapidAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	})

	_, err := p.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestRapidAPISearchMalformedBodyIsFatal(t *testing.T) {
	p := rapidAPIServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := p.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFatalLookup)
}

func TestNewRapidAPIProviderRejectsShortKey(t *testing.T) {
	_, err := NewRapidAPIProvider("short", 30*time.Second)
	assert.Error(t, err)
}
