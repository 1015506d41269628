package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, ":10000", c.Addr)
	assert.Equal(t, "main", c.GitHub.Branch)
	assert.Equal(t, "tree", c.Strategy)
	assert.Error(t, c.ValidateRelay())
}

func TestPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hobbyshop.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"addr": ":9000",
		"github_owner": "file-owner",
		"github_repo": "site",
		"strategy": "sequential",
		"allowed_origins": ["https://example.com"]
	}`), 0o600))

	c, err := Load([]string{"serve", "-c", path}, env(map[string]string{
		"GITHUB_OWNER": "HobbyByRox",
		"GITHUB_TOKEN": "tok",
		"PORT":         "10001",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":10001", c.Addr)
	assert.Equal(t, "HobbyByRox", c.GitHub.Owner)
	assert.Equal(t, "site", c.GitHub.Repo)
	assert.Equal(t, "main", c.GitHub.Branch)
	assert.Equal(t, "sequential", c.Strategy)
	assert.NoError(t, c.ValidateRelay())
	assert.Equal(t, []string{"https://example.com", "https://hobbybyrox.github.io"}, c.Origins())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load([]string{"-config=" + filepath.Join(t.TempDir(), "nope.json")}, env(nil))
	assert.Error(t, err)
}

func TestFindConfigFlag(t *testing.T) {
	cases := map[string][]string{
		"a.json": {"-c", "a.json"},
		"b.json": {"serve", "--config=b.json"},
		"c.json": {"-addr", ":1", "-config", "c.json"},
		"":       {"-addr", ":1"},
	}
	for want, args := range cases {
		assert.Equal(t, want, FindConfigFlag(args), "%v", args)
	}
}

func TestValidateRelayNamesMissing(t *testing.T) {
	c := Default()
	c.GitHub.Owner = "o"
	err := c.ValidateRelay()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_TOKEN")
	assert.Contains(t, err.Error(), "GITHUB_REPO")
	assert.NotContains(t, err.Error(), "GITHUB_OWNER")
}
