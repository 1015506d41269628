// Package storefront keeps the shopper-side copies of the published
// documents.
package storefront

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/store"
)

// ErrNotRefreshed marks cached values this process has not confirmed.
var ErrNotRefreshed = errors.New("not refreshed since start")

// DocumentReader fetches a published document by name.
type DocumentReader interface {
	ReadDocument(ctx context.Context, name string) ([]byte, bool, error)
}

// Cache serves the last successfully fetched version of each document.
// Entries never expire; only a successful refresh replaces them.
type Cache struct {
	db     *sql.DB
	reader DocumentReader
	log    *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	lastErr map[string]error // per document; absent means never tried
}

// New returns a cache persisting into db and refreshing through reader.
func New(db *sql.DB, reader DocumentReader, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{db: db, reader: reader, log: log, now: time.Now, lastErr: map[string]error{}}
}

// DocumentStatus is the refresh outcome of one document. Value is the
// fetch time of the copy the cache now holds.
type DocumentStatus struct {
	Name   string
	Result model.Result[time.Time]
}

// RefreshReport lists one status per document in publish order.
type RefreshReport struct {
	Documents []DocumentStatus
}

// Fresh reports whether every document was refreshed.
func (r RefreshReport) Fresh() bool {
	for _, d := range r.Documents {
		if d.Result.Status != model.StatusOK {
			return false
		}
	}
	return true
}

// Refresh fetches all documents concurrently. A document that cannot be
// fetched or parsed keeps its cached copy; failures are logged and
// reported, never returned.
func (c *Cache) Refresh(ctx context.Context) RefreshReport {
	report := RefreshReport{Documents: make([]DocumentStatus, len(model.DocumentNames))}

	var g errgroup.Group
	for i, name := range model.DocumentNames {
		g.Go(func() error {
			report.Documents[i] = DocumentStatus{Name: name, Result: c.refreshOne(ctx, name)}
			return nil
		})
	}
	g.Wait()
	return report
}

func (c *Cache) refreshOne(ctx context.Context, name string) model.Result[time.Time] {
	err := c.fetch(ctx, name)

	c.mu.Lock()
	c.lastErr[name] = err
	c.mu.Unlock()

	if err == nil {
		return model.OK(c.now())
	}

	c.log.Warn("storefront refresh failed, serving cache", "document", name, "error", err)
	cached, cerr := store.GetDocument(ctx, c.db, name)
	if cerr != nil || cached == nil {
		return model.Failed[time.Time](err)
	}
	return model.Degraded(cached.FetchedAt, err)
}

func (c *Cache) fetch(ctx context.Context, name string) error {
	body, ok, err := c.reader.ReadDocument(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s not published", model.ErrFetch, name)
	}
	if err := validate(name, body); err != nil {
		return fmt.Errorf("%w: %s: %v", model.ErrFetch, name, err)
	}
	return store.PutDocument(ctx, c.db, name, body, c.now())
}

func validate(name string, body []byte) error {
	switch name {
	case model.DocCatalog:
		var v model.Catalog
		return json.Unmarshal(body, &v)
	case model.DocBanners:
		var v model.BannerSet
		return json.Unmarshal(body, &v)
	case model.DocGallery:
		var v model.GallerySet
		return json.Unmarshal(body, &v)
	}
	return fmt.Errorf("unknown document %q", name)
}

// Catalog returns the cached product catalog.
func (c *Cache) Catalog(ctx context.Context) model.Result[model.Catalog] {
	var v model.Catalog
	res := c.load(ctx, model.DocCatalog, &v)
	if v == nil {
		v = model.Catalog{}
	}
	return withValue(res, v)
}

// Banners returns the cached banner rotation.
func (c *Cache) Banners(ctx context.Context) model.Result[[]string] {
	var v model.BannerSet
	res := c.load(ctx, model.DocBanners, &v)
	if v.Images == nil {
		v.Images = []string{}
	}
	return withValue(res, v.Images)
}

// Gallery returns the cached gallery images.
func (c *Cache) Gallery(ctx context.Context) model.Result[[]string] {
	var v model.GallerySet
	res := c.load(ctx, model.DocGallery, &v)
	items := make([]string, len(v.Items))
	for i, it := range v.Items {
		items[i] = string(it)
	}
	return withValue(res, items)
}

// load decodes the cached document into dst and tags how current it is.
// A missing or unreadable entry is Failed; dst is left zero.
func (c *Cache) load(ctx context.Context, name string, dst any) model.Result[struct{}] {
	cached, err := store.GetDocument(ctx, c.db, name)
	if err != nil {
		return model.Failed[struct{}](err)
	}
	if cached == nil {
		return model.Failed[struct{}](fmt.Errorf("%s: %w", name, model.ErrNotFound))
	}
	if err := json.Unmarshal(cached.Body, dst); err != nil {
		c.log.Warn("discarding unreadable cached document", "document", name, "error", err)
		return model.Failed[struct{}](fmt.Errorf("%s: %w", name, model.ErrNotFound))
	}

	c.mu.Lock()
	lastErr, tried := c.lastErr[name]
	c.mu.Unlock()

	switch {
	case tried && lastErr == nil:
		return model.OK(struct{}{})
	case tried:
		return model.Degraded(struct{}{}, lastErr)
	default:
		return model.Degraded(struct{}{}, fmt.Errorf("%s cached %s: %w", name, cached.FetchedAt.Format(time.RFC3339), ErrNotRefreshed))
	}
}

func withValue[T any](r model.Result[struct{}], v T) model.Result[T] {
	if r.Status == model.StatusFailed {
		var zero T
		return model.Result[T]{Status: model.StatusFailed, Value: zero, Reason: r.Reason}
	}
	return model.Result[T]{Status: r.Status, Value: v, Reason: r.Reason}
}
