// Package content talks to the remote content store: a git repository
// hosted on GitHub for writes, and its published static artifacts for
// anonymous reads.
package content

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v68/github"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// Config locates the repository and branch documents are written to.
type Config struct {
	Owner  string
	Repo   string
	Branch string
	Token  string

	// APIBaseURL overrides https://api.github.com/ (tests, GHE).
	APIBaseURL string
	HTTPClient *http.Client
}

// Client is the authenticated write side of the content store.
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	branch string
}

// Head is the branch's current commit and the tree it points at.
type Head struct {
	Commit string
	Tree   string
}

// TreeEntry places a blob at a path in a new tree.
type TreeEntry struct {
	Path string
	SHA  string
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("content store: owner and repo are required")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}

	gh := github.NewClient(cfg.HTTPClient)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing api base url: %w", err)
		}
		gh.BaseURL = u
	}

	return &Client{gh: gh, owner: cfg.Owner, repo: cfg.Repo, branch: cfg.Branch}, nil
}

// Branch returns the branch the client writes to.
func (c *Client) Branch() string {
	return c.branch
}

// FileSHA resolves the blob pointer of an existing file on the branch.
// A missing file is reported as ok == false with no error.
func (c *Client) FileSHA(ctx context.Context, path string) (string, bool, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path,
		&github.RepositoryContentGetOptions{Ref: c.branch})
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("getting %s: %w", path, err)
	}
	if file == nil {
		return "", false, fmt.Errorf("getting %s: path is a directory", path)
	}
	return file.GetSHA(), true, nil
}

// WriteDocument creates or updates one file as its own commit and returns
// that commit's handle. The prior pointer is resolved first; only a
// "not found" answer turns the write into a create.
func (c *Client) WriteDocument(ctx context.Context, path string, body []byte, message string) (model.Revision, error) {
	sha, exists, err := c.FileSHA(ctx, path)
	if err != nil {
		return "", &model.PublishError{Step: "resolve", Path: path, Err: err}
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: body,
		Branch:  github.Ptr(c.branch),
	}

	var res *github.RepositoryContentResponse
	if exists {
		opts.SHA = github.Ptr(sha)
		res, _, err = c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
	} else {
		res, _, err = c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
	}
	if err != nil {
		return "", &model.PublishError{Step: "write", Path: path, Err: err}
	}
	return model.Revision(res.Commit.GetSHA()), nil
}

// BranchHead resolves the branch's commit and its root tree.
func (c *Client) BranchHead(ctx context.Context) (Head, error) {
	ref, _, err := c.gh.Git.GetRef(ctx, c.owner, c.repo, "heads/"+c.branch)
	if err != nil {
		return Head{}, fmt.Errorf("getting ref heads/%s: %w", c.branch, err)
	}
	commitSHA := ref.GetObject().GetSHA()

	commit, _, err := c.gh.Git.GetCommit(ctx, c.owner, c.repo, commitSHA)
	if err != nil {
		return Head{}, fmt.Errorf("getting commit %s: %w", commitSHA, err)
	}
	return Head{Commit: commitSHA, Tree: commit.GetTree().GetSHA()}, nil
}

// CreateBlob stores body as a blob and returns its SHA.
func (c *Client) CreateBlob(ctx context.Context, body []byte) (string, error) {
	blob, _, err := c.gh.Git.CreateBlob(ctx, c.owner, c.repo, &github.Blob{
		Content:  github.Ptr(base64.StdEncoding.EncodeToString(body)),
		Encoding: github.Ptr("base64"),
	})
	if err != nil {
		return "", fmt.Errorf("creating blob: %w", err)
	}
	return blob.GetSHA(), nil
}

// CreateTree builds a tree on top of base, replacing the given paths.
func (c *Client) CreateTree(ctx context.Context, base string, entries []TreeEntry) (string, error) {
	ghEntries := make([]*github.TreeEntry, len(entries))
	for i, e := range entries {
		ghEntries[i] = &github.TreeEntry{
			Path: github.Ptr(e.Path),
			Mode: github.Ptr("100644"),
			Type: github.Ptr("blob"),
			SHA:  github.Ptr(e.SHA),
		}
	}
	tree, _, err := c.gh.Git.CreateTree(ctx, c.owner, c.repo, base, ghEntries)
	if err != nil {
		return "", fmt.Errorf("creating tree: %w", err)
	}
	return tree.GetSHA(), nil
}

// CreateCommit records tree as a child of parent.
func (c *Client) CreateCommit(ctx context.Context, message, tree, parent string) (string, error) {
	commit, _, err := c.gh.Git.CreateCommit(ctx, c.owner, c.repo, &github.Commit{
		Message: github.Ptr(message),
		Tree:    &github.Tree{SHA: github.Ptr(tree)},
		Parents: []*github.Commit{{SHA: github.Ptr(parent)}},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("creating commit: %w", err)
	}
	return commit.GetSHA(), nil
}

// MoveBranch fast-forwards the branch to commit. The remote refuses
// non-fast-forward moves, so a concurrent publish loses cleanly.
func (c *Client) MoveBranch(ctx context.Context, commit string) error {
	_, _, err := c.gh.Git.UpdateRef(ctx, c.owner, c.repo, &github.Reference{
		Ref:    github.Ptr("refs/heads/" + c.branch),
		Object: &github.GitObject{SHA: github.Ptr(commit)},
	}, false)
	if err != nil {
		return fmt.Errorf("updating ref heads/%s: %w", c.branch, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
