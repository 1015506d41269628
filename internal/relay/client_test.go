package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

func fakeServer(t *testing.T, saveStatus int) (*httptest.Server, *SavePayload) {
	t.Helper()
	var got SavePayload
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "right" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"ok":false,"message":"Invalid credentials"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"token":"secret-token"}`))
	})
	mux.HandleFunc("POST /api/save-products", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"ok":false,"message":"Unauthorized"}`))
			return
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(saveStatus)
		if saveStatus == http.StatusOK {
			w.Write([]byte(`{"ok":true,"commit":"abc1234def"}`))
			return
		}
		w.Write([]byte(`{"ok":false,"message":"Failed to save data","error":"ref conflict"}`))
	})
	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestLoginAndPublish(t *testing.T) {
	srv, got := fakeServer(t, http.StatusOK)
	c := New(srv.URL+"/", "")
	ctx := context.Background()

	_, err := c.Publish(ctx, model.Documents{})
	assert.ErrorIs(t, err, model.ErrAuth)

	_, err = c.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, model.ErrAuth)

	tok, err := c.Login(ctx, "admin", "right")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", tok)

	rev, err := c.Publish(ctx, model.Documents{
		Catalog: model.Catalog{"p1": {Name: "Mug", Price: 9.5, Images: []string{}}},
		Banners: []string{"https://x/h.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.Revision("abc1234def"), rev)
	assert.Equal(t, "Mug", got.Products["p1"].Name)
	assert.Equal(t, []string{"https://x/h.png"}, got.HeroSlides)
	assert.Equal(t, []string{}, got.InspirationItems)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token)
}

func TestPublishStaleToken(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusOK)
	c := New(srv.URL, "expired")

	_, err := c.Publish(context.Background(), model.Documents{})
	assert.ErrorIs(t, err, model.ErrAuth)
	assert.Empty(t, c.Token)
}

func TestPublishServerFailure(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusInternalServerError)
	c := New(srv.URL, "secret-token")

	_, err := c.Publish(context.Background(), model.Documents{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPublish)
	assert.Contains(t, err.Error(), "ref conflict")

	var pe *model.PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "relay", pe.Step)
}

func TestPublishRejected(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusBadRequest)
	c := New(srv.URL, "secret-token")

	_, err := c.Publish(context.Background(), model.Documents{})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestPublishUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "tok")
	_, err := c.Publish(context.Background(), model.Documents{})
	assert.ErrorIs(t, err, model.ErrPublish)
}
