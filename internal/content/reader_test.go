package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

func TestReadDocument(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/hero.json":
			gotQuery = r.URL.Query().Get("t")
			w.Write([]byte(`{"images":["https://x/a.png"]}`))
		case "/data/inspiration.json":
			http.Error(w, "down", http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := NewReader(srv.URL+"/", srv.Client())
	r.now = func() time.Time { return time.UnixMilli(1700000000123) }
	ctx := context.Background()

	body, ok, err := r.ReadDocument(ctx, model.DocBanners)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"images":["https://x/a.png"]}`, string(body))
	assert.Equal(t, "1700000000123", gotQuery)

	_, ok, err = r.ReadDocument(ctx, model.DocCatalog)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = r.ReadDocument(ctx, model.DocGallery)
	assert.ErrorIs(t, err, model.ErrFetch)
}

func TestReadDocumentUnreachable(t *testing.T) {
	r := NewReader("http://127.0.0.1:1", nil)
	_, _, err := r.ReadDocument(context.Background(), model.DocCatalog)
	assert.ErrorIs(t, err, model.ErrFetch)
}
