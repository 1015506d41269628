package upload

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

type fakeHost struct {
	url   string
	err   error
	calls int
}

func (f *fakeHost) Upload(ctx context.Context, a Asset) (string, error) {
	f.calls++
	return f.url, f.err
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{1, 2, 3, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStoreUploaded(t *testing.T) {
	host := &fakeHost{url: "https://res.cloudinary.com/demo/a.jpg"}
	s := NewService(host, nil)

	res := s.Store(context.Background(), Asset{Filename: "a.png", Data: pngBytes(t)})
	assert.Equal(t, model.StatusOK, res.Status)
	assert.Equal(t, "https://res.cloudinary.com/demo/a.jpg", res.Value)
	assert.Equal(t, 1, host.calls)
}

func TestStoreDegradesToPreview(t *testing.T) {
	host := &fakeHost{err: errors.New("503")}
	s := NewService(host, nil)

	res := s.Store(context.Background(), Asset{Filename: "a.png", Data: pngBytes(t)})
	require.Equal(t, model.StatusDegraded, res.Status)
	assert.True(t, strings.HasPrefix(res.Value, "data:image/jpeg;base64,"))
	assert.ErrorIs(t, res.Reason, model.ErrUpload)
	assert.True(t, res.Usable())
}

func TestStoreRejectsNonDurableHostURL(t *testing.T) {
	s := NewService(&fakeHost{url: "http://insecure/a.jpg"}, nil)

	res := s.Store(context.Background(), Asset{Filename: "a.png", Data: pngBytes(t)})
	assert.Equal(t, model.StatusDegraded, res.Status)
}

func TestStoreWithoutHost(t *testing.T) {
	res := NewService(nil, nil).Store(context.Background(), Asset{Filename: "a.png", Data: pngBytes(t)})
	assert.Equal(t, model.StatusDegraded, res.Status)
	assert.ErrorIs(t, res.Reason, model.ErrUpload)
}

func TestStoreRejectsNonImage(t *testing.T) {
	host := &fakeHost{url: "https://x/a.jpg"}
	res := NewService(host, nil).Store(context.Background(), Asset{Filename: "notes.txt", Data: []byte("hello")})

	assert.Equal(t, model.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Reason, model.ErrValidation)
	assert.False(t, res.Usable())
	assert.Zero(t, host.calls)
}

func TestRetryUploadsPreview(t *testing.T) {
	failing := &fakeHost{err: errors.New("offline")}
	preview := NewService(failing, nil).Store(context.Background(), Asset{Filename: "a.png", Data: pngBytes(t)})
	require.Equal(t, model.StatusDegraded, preview.Status)

	host := &fakeHost{url: "https://x/retried.jpg"}
	res := NewService(host, nil).Retry(context.Background(), preview.Value)
	assert.Equal(t, model.StatusOK, res.Status)
	assert.Equal(t, "https://x/retried.jpg", res.Value)

	bad := NewService(host, nil).Retry(context.Background(), "blob:abc")
	assert.Equal(t, model.StatusFailed, bad.Status)
}
