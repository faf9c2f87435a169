package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T, handler http.HandlerFunc) *Collector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewCollector("test-token", zerolog.Nop())
	c.baseURL = server.URL
	return c
}

func TestCollect_Success(t *testing.T) {
	c := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-token", r.URL.Query().Get("auth_token"))
		w.Write([]byte(`{"results": [
			{"title": "Gold token supply hits record", "url": "https://cp.example/1", "original_url": "https://news.example/gold"},
			{"title": "Tokenized equities expand", "url": "https://cp.example/2", "original_url": ""}
		]}`))
	})

	bundle := c.Collect(context.Background())

	assert.True(t, bundle.FetchStatus["cryptopanic"])
	assert.Empty(t, bundle.FailedSources)
	require.Len(t, bundle.Items, 2)
	// original_url preferred, aggregator URL as fallback
	assert.Equal(t, "https://news.example/gold", bundle.Items[0].URL)
	assert.Equal(t, "https://cp.example/2", bundle.Items[1].URL)
	assert.Contains(t, bundle.Text, "[cryptopanic] Gold token supply hits record")
	assert.Len(t, bundle.SourceURLs, 2)
}

func TestCollect_ServerErrorMarksSourceFailed(t *testing.T) {
	c := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	bundle := c.Collect(context.Background())

	assert.False(t, bundle.FetchStatus["cryptopanic"])
	assert.Equal(t, []string{"cryptopanic"}, bundle.FailedSources)
	assert.Empty(t, bundle.Items)
	assert.Empty(t, bundle.Text)
}

func TestCollect_MissingTokenMarksSourceFailed(t *testing.T) {
	c := NewCollector("", zerolog.Nop())

	bundle := c.Collect(context.Background())

	assert.False(t, bundle.FetchStatus["cryptopanic"])
	assert.Equal(t, []string{"cryptopanic"}, bundle.FailedSources)
}

func TestCollect_CapsItemCount(t *testing.T) {
	c := newTestCollector(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [
			{"title": "1"}, {"title": "2"}, {"title": "3"}, {"title": "4"},
			{"title": "5"}, {"title": "6"}, {"title": "7"}, {"title": "8"},
			{"title": "9"}, {"title": "10"}, {"title": "11"}, {"title": "12"}
		]}`))
	})

	bundle := c.Collect(context.Background())

	assert.Len(t, bundle.Items, maxItems)
}
