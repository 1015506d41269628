package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// maxDocumentSize caps a single read-side artifact.
const maxDocumentSize = 10 << 20

// Reader fetches published artifacts anonymously.
type Reader struct {
	base string
	hc   *http.Client
	now  func() time.Time
}

// NewReader reads artifacts below baseURL (the site root serving data/).
func NewReader(baseURL string, hc *http.Client) *Reader {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Reader{base: strings.TrimSuffix(baseURL, "/"), hc: hc, now: time.Now}
}

// DocumentPath is the repository path of a named document.
func DocumentPath(name string) string {
	return "data/" + name + ".json"
}

// ReadDocument fetches data/<name>.json with a cache-defeating query
// parameter. A 404 is reported as exists == false with no error.
func (r *Reader) ReadDocument(ctx context.Context, name string) ([]byte, bool, error) {
	u := r.base + "/" + DocumentPath(name) + "?t=" + strconv.FormatInt(r.now().UnixMilli(), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", model.ErrFetch, name, err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := r.hc.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", model.ErrFetch, name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, nil
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("%w: %s: status %d", model.ErrFetch, name, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading %s: %v", model.ErrFetch, name, err)
	}
	return body, true, nil
}
