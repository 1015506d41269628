package publish

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/hobbybyrox/hobbyshop/internal/content"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// DefaultMessage is the commit message used when none is configured.
const DefaultMessage = "[SYNC] Update data files via admin panel"

// Strategy names.
const (
	StrategyTree       = "tree"
	StrategySequential = "sequential"
)

// Publisher commits a document set and returns the new revision handle.
// Callers filter docs down to durable image references first.
type Publisher interface {
	Publish(ctx context.Context, docs model.Documents) (model.Revision, error)
}

// GitStore is the git data API the tree strategy needs.
type GitStore interface {
	BranchHead(ctx context.Context) (content.Head, error)
	CreateBlob(ctx context.Context, body []byte) (string, error)
	CreateTree(ctx context.Context, base string, entries []content.TreeEntry) (string, error)
	CreateCommit(ctx context.Context, message, tree, parent string) (string, error)
	MoveBranch(ctx context.Context, commit string) error
}

// FileWriter upserts one file per call.
type FileWriter interface {
	WriteDocument(ctx context.Context, path string, body []byte, message string) (model.Revision, error)
}

// Store is what *content.Client provides: both write paths.
type Store interface {
	GitStore
	FileWriter
}

// New returns the publisher for strategy. An empty strategy means tree.
func New(strategy string, store Store, message string, log *slog.Logger) (Publisher, error) {
	switch strategy {
	case "", StrategyTree:
		return &TreePublisher{Store: store, Message: message, Log: log}, nil
	case StrategySequential:
		return &SequentialPublisher{Writer: store, Message: message, Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown publish strategy %q", strategy)
	}
}

// TreePublisher writes all documents in a single commit and then moves
// the branch pointer. Until the final step nothing is visible on the
// branch, so any failure leaves the published documents untouched.
type TreePublisher struct {
	Store   GitStore
	Message string
	Log     *slog.Logger
}

// Publish implements Publisher.
func (p *TreePublisher) Publish(ctx context.Context, docs model.Documents) (model.Revision, error) {
	files, err := Encode(docs)
	if err != nil {
		return "", &model.PublishError{Step: "encode", Err: err}
	}

	head, err := p.Store.BranchHead(ctx)
	if err != nil {
		return "", &model.PublishError{Step: "head", Err: err}
	}

	entries := make([]content.TreeEntry, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			sha, err := p.Store.CreateBlob(gctx, f.Body)
			if err != nil {
				return &model.PublishError{Step: "blob", Path: f.Path, Err: err}
			}
			entries[i] = content.TreeEntry{Path: f.Path, SHA: sha}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	tree, err := p.Store.CreateTree(ctx, head.Tree, entries)
	if err != nil {
		return "", &model.PublishError{Step: "tree", Err: err}
	}

	commit, err := p.Store.CreateCommit(ctx, message(p.Message), tree, head.Commit)
	if err != nil {
		return "", &model.PublishError{Step: "commit", Err: err}
	}

	if err := p.Store.MoveBranch(ctx, commit); err != nil {
		return "", &model.PublishError{Step: "ref", Err: err}
	}

	logger(p.Log).Info("published documents", "strategy", StrategyTree, "commit", model.Revision(commit).Short())
	return model.Revision(commit), nil
}

// SequentialPublisher upserts each document as its own commit in the
// fixed order catalog, banners, gallery. A failure part way leaves the
// branch in a mixed state; the error names the document that failed.
type SequentialPublisher struct {
	Writer  FileWriter
	Message string
	Log     *slog.Logger
}

// Publish implements Publisher. The handle is the last document's commit.
func (p *SequentialPublisher) Publish(ctx context.Context, docs model.Documents) (model.Revision, error) {
	files, err := Encode(docs)
	if err != nil {
		return "", &model.PublishError{Step: "encode", Err: err}
	}

	log := logger(p.Log)
	log.Warn("publishing without a single commit, documents may be mixed on failure", "strategy", StrategySequential)

	var rev model.Revision
	for i, f := range files {
		rev, err = p.Writer.WriteDocument(ctx, f.Path, f.Body, message(p.Message))
		if err != nil {
			if i > 0 {
				log.Error("partial publish", "written", i, "failed", f.Path, "error", err)
			}
			return "", err
		}
	}

	log.Info("published documents", "strategy", StrategySequential, "commit", rev.Short())
	return rev, nil
}

func message(m string) string {
	if m == "" {
		return DefaultMessage
	}
	return m
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
