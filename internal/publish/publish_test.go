package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbybyrox/hobbyshop/internal/content"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// memRepo is an in-memory git store: commits map to full file trees.
type memRepo struct {
	mu      sync.Mutex
	seq     int
	blobs   map[string][]byte
	trees   map[string]map[string]string
	commits map[string]string // commit -> tree
	head    string

	failStep string
	writes   []string
}

func newMemRepo(files map[string]string) *memRepo {
	r := &memRepo{
		blobs:   map[string][]byte{},
		trees:   map[string]map[string]string{},
		commits: map[string]string{},
	}
	tree := map[string]string{}
	for path, body := range files {
		sha := r.id("b")
		r.blobs[sha] = []byte(body)
		tree[path] = sha
	}
	r.trees["t0"] = tree
	r.commits["c0"] = "t0"
	r.head = "c0"
	return r
}

func (r *memRepo) id(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s%d", prefix, r.seq)
}

func (r *memRepo) fail(step string) error {
	if r.failStep == step {
		return errors.New(step + " refused")
	}
	return nil
}

// read returns a file as visible on the branch.
func (r *memRepo) read(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sha, ok := r.trees[r.commits[r.head]][path]
	if !ok {
		return ""
	}
	return string(r.blobs[sha])
}

func (r *memRepo) BranchHead(ctx context.Context) (content.Head, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("head"); err != nil {
		return content.Head{}, err
	}
	return content.Head{Commit: r.head, Tree: r.commits[r.head]}, nil
}

func (r *memRepo) CreateBlob(ctx context.Context, body []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("blob"); err != nil {
		return "", err
	}
	sha := r.id("b")
	r.blobs[sha] = body
	return sha, nil
}

func (r *memRepo) CreateTree(ctx context.Context, base string, entries []content.TreeEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("tree"); err != nil {
		return "", err
	}
	tree := map[string]string{}
	for p, sha := range r.trees[base] {
		tree[p] = sha
	}
	for _, e := range entries {
		tree[e.Path] = e.SHA
	}
	sha := r.id("t")
	r.trees[sha] = tree
	return sha, nil
}

func (r *memRepo) CreateCommit(ctx context.Context, message, tree, parent string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("commit"); err != nil {
		return "", err
	}
	sha := r.id("c")
	r.commits[sha] = tree
	return sha, nil
}

func (r *memRepo) MoveBranch(ctx context.Context, commit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("ref"); err != nil {
		return err
	}
	r.head = commit
	return nil
}

func (r *memRepo) WriteDocument(ctx context.Context, path string, body []byte, message string) (model.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failStep == path {
		return "", &model.PublishError{Step: "write", Path: path, Err: errors.New("refused")}
	}
	r.writes = append(r.writes, path)
	tree := map[string]string{}
	for p, sha := range r.trees[r.commits[r.head]] {
		tree[p] = sha
	}
	blob := r.id("b")
	r.blobs[blob] = body
	tree[path] = blob
	t := r.id("t")
	r.trees[t] = tree
	c := r.id("c")
	r.commits[c] = t
	r.head = c
	return model.Revision(c), nil
}

func sampleDocs() model.Documents {
	return model.Documents{
		Catalog: model.Catalog{"p1": {Name: "Mug", Price: 9.5, Images: []string{"https://x/a.png"}, Thumbnail: "https://x/a.png"}},
		Banners: []string{"https://x/banner.png"},
		Gallery: []string{"https://x/g1.png", "https://x/g2.png"},
	}
}

var oldFiles = map[string]string{
	"data/products.json":    `{}`,
	"data/hero.json":        `{"images":[]}`,
	"data/inspiration.json": `{"items":[]}`,
	"index.html":            `<html></html>`,
}

func TestEncodeSchema(t *testing.T) {
	files, err := Encode(model.Documents{})
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "data/products.json", files[0].Path)
	assert.Equal(t, "data/hero.json", files[1].Path)
	assert.Equal(t, "data/inspiration.json", files[2].Path)
	assert.Equal(t, "{}\n", string(files[0].Body))
	assert.Equal(t, "{\n  \"images\": []\n}\n", string(files[1].Body))
	assert.Equal(t, "{\n  \"items\": []\n}\n", string(files[2].Body))
}

func TestEncodeKeepsURLsReadable(t *testing.T) {
	files, err := Encode(model.Documents{Banners: []string{"https://x/a.png?w=1&h=2"}})
	require.NoError(t, err)
	assert.Contains(t, string(files[1].Body), "w=1&h=2")
}

func TestTreePublish(t *testing.T) {
	repo := newMemRepo(oldFiles)
	p := &TreePublisher{Store: repo}

	rev, err := p.Publish(context.Background(), sampleDocs())
	require.NoError(t, err)
	assert.NotEmpty(t, rev)
	assert.Equal(t, string(rev), repo.head)

	var catalog model.Catalog
	require.NoError(t, json.Unmarshal([]byte(repo.read("data/products.json")), &catalog))
	assert.Equal(t, "Mug", catalog["p1"].Name)

	var gallery model.GallerySet
	require.NoError(t, json.Unmarshal([]byte(repo.read("data/inspiration.json")), &gallery))
	assert.Equal(t, []model.GalleryItem{"https://x/g1.png", "https://x/g2.png"}, gallery.Items)

	assert.Equal(t, `<html></html>`, repo.read("index.html"))
}

func TestTreePublishFailureLeavesBranchUntouched(t *testing.T) {
	for _, step := range []string{"head", "blob", "tree", "commit", "ref"} {
		t.Run(step, func(t *testing.T) {
			repo := newMemRepo(oldFiles)
			repo.failStep = step
			p := &TreePublisher{Store: repo}

			_, err := p.Publish(context.Background(), sampleDocs())
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrPublish)

			var pe *model.PublishError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, step, pe.Step)

			assert.Equal(t, "c0", repo.head)
			for path, body := range oldFiles {
				assert.Equal(t, body, repo.read(path))
			}
		})
	}
}

func TestTreePublishTransientOnlyProduct(t *testing.T) {
	repo := newMemRepo(oldFiles)
	docs := model.Documents{Catalog: model.Catalog{
		"p1": {Name: "Mug", Price: 9.5, Images: []string{"data:image/jpeg;base64,AAAA"}, Thumbnail: "data:image/jpeg;base64,AAAA"},
	}}.Durable()

	_, err := (&TreePublisher{Store: repo}).Publish(context.Background(), docs)
	require.NoError(t, err)

	body := repo.read("data/products.json")
	assert.Contains(t, body, `"images": []`)
	assert.Contains(t, body, `"thumbnail": ""`)
}

func TestSequentialPublishOrder(t *testing.T) {
	repo := newMemRepo(oldFiles)
	p := &SequentialPublisher{Writer: repo}

	rev, err := p.Publish(context.Background(), sampleDocs())
	require.NoError(t, err)
	assert.Equal(t, []string{"data/products.json", "data/hero.json", "data/inspiration.json"}, repo.writes)
	assert.Equal(t, string(rev), repo.head)
}

func TestSequentialPublishPartialFailure(t *testing.T) {
	repo := newMemRepo(oldFiles)
	repo.failStep = "data/hero.json"
	p := &SequentialPublisher{Writer: repo}

	_, err := p.Publish(context.Background(), sampleDocs())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrPublish)

	// Catalog landed, the rest did not.
	assert.True(t, strings.Contains(repo.read("data/products.json"), "Mug"))
	assert.Equal(t, `{"images":[]}`, repo.read("data/hero.json"))
	assert.Equal(t, []string{"data/products.json"}, repo.writes)
}

func TestNewStrategy(t *testing.T) {
	repo := newMemRepo(nil)

	p, err := New("", repo, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &TreePublisher{}, p)

	p, err = New(StrategySequential, repo, "", nil)
	require.NoError(t, err)
	assert.IsType(t, &SequentialPublisher{}, p)

	_, err = New("zip", repo, "", nil)
	assert.Error(t, err)
}
