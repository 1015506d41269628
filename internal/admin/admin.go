// Package admin owns the editable catalog, banner and gallery state and
// turns it into published revisions.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/store"
	"github.com/hobbybyrox/hobbyshop/internal/upload"
)

// Publisher commits durable documents and returns a revision handle.
type Publisher interface {
	Publish(ctx context.Context, docs model.Documents) (model.Revision, error)
}

// Options configures a Controller.
type Options struct {
	// Uploads handles raw assets. Nil means every asset stays a preview.
	Uploads *upload.Service
	// Publisher is required by Publish only.
	Publisher Publisher
	// NewID generates product identifiers. Defaults to UUIDv7.
	NewID  func() (string, error)
	Logger *slog.Logger
}

// Controller is the single owner of admin state. Every accepted mutation
// is persisted before it becomes visible.
type Controller struct {
	db        *sql.DB
	uploads   *upload.Service
	publisher Publisher
	newID     func() (string, error)
	log       *slog.Logger

	mu      sync.Mutex
	state   model.State
	retired map[string]bool
}

// New loads the persisted state from db.
func New(ctx context.Context, db *sql.DB, opts Options) (*Controller, error) {
	state, err := store.LoadState(ctx, db)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		db:        db,
		uploads:   opts.Uploads,
		publisher: opts.Publisher,
		newID:     opts.NewID,
		log:       opts.Logger,
		state:     state,
		retired:   map[string]bool{},
	}
	if c.uploads == nil {
		c.uploads = upload.NewService(nil, opts.Logger)
	}
	if c.newID == nil {
		c.newID = newUUID
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// State returns a copy of the current state.
func (c *Controller) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// mutate applies fn to a copy of the state, persists it, then swaps it in.
// On any error the current state is left as it was.
func (c *Controller) mutate(ctx context.Context, fn func(*model.State) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := store.SaveState(ctx, c.db, next); err != nil {
		return err
	}
	c.state = next
	return nil
}

// Publish filters the current state down to durable references and hands
// it to the publisher. Local state is never modified, whatever the outcome.
func (c *Controller) Publish(ctx context.Context) (model.Revision, error) {
	if c.publisher == nil {
		return "", errors.New("no publisher configured")
	}

	snapshot := c.State()
	if pending := pendingIn(snapshot); len(pending) > 0 {
		c.log.Warn("publishing without unuploaded images", "pending", len(pending))
	}

	rev, err := c.publisher.Publish(ctx, snapshot.Documents().Durable())
	if err != nil {
		c.log.Error("publish failed", "error", err)
		return "", err
	}
	c.log.Info("published", "revision", rev.Short())
	return rev, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func validateProduct(p model.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return model.Invalid("name is required")
	}
	if !validPrice(p.Price) {
		return model.Invalid("price must be a positive number, got %v", p.Price)
	}
	return nil
}

func checkIndex(kind string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s index %d out of range [0,%d)", model.ErrValidation, kind, i, n)
	}
	return nil
}
