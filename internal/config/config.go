// Package config assembles runtime settings from defaults, an optional
// JSON file, the environment and command-line flags, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hobbybyrox/hobbyshop/internal/backup"
)

// Config holds the settings of every hobbyshop subcommand.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string

	// Relay.
	TokenMode      string
	Strategy       string
	CommitMessage  string
	AllowedOrigins []string
	LoginPerMinute float64
	LoginBurst     int
	GitHub         GitHub

	// Admin client and storefront.
	StatePath  string
	RelayURL   string
	Cloudinary Cloudinary
	S3         backup.S3Config

	// Storefront.
	DataURL  string
	WhatsApp string
	Email    string
}

// GitHub locates the content repository.
type GitHub struct {
	Token      string
	Owner      string
	Repo       string
	Branch     string
	APIBaseURL string
}

// Cloudinary configures the image host.
type Cloudinary struct {
	URL    string
	Folder string
	Preset string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DBPath:    "hobbyshop.sqlite3",
		Addr:      ":10000",
		TokenMode: "secret",
		Strategy:  "tree",
		AllowedOrigins: []string{
			"http://localhost:8000",
			"http://127.0.0.1:5500",
			"https://hobbybyrox.nl",
			"https://www.hobbybyrox.nl",
		},
		LoginPerMinute: 10,
		LoginBurst:     5,
		GitHub:         GitHub{Branch: "main"},
		StatePath:      "hobbyshop-local.sqlite3",
		RelayURL:       "http://localhost:10000",
		Cloudinary:     Cloudinary{Folder: "hobbybyrox"},
		DataURL:        "https://hobbybyrox.nl",
	}
}

// fileConfig is the JSON form of Config.
type fileConfig struct {
	DBPath         string   `json:"db_path"`
	Addr           string   `json:"addr"`
	LogPath        string   `json:"log_path"`
	TokenMode      string   `json:"token_mode"`
	Strategy       string   `json:"strategy"`
	CommitMessage  string   `json:"commit_message"`
	AllowedOrigins []string `json:"allowed_origins"`
	LoginPerMinute float64  `json:"login_per_minute"`
	LoginBurst     int      `json:"login_burst"`

	GitHubOwner  string `json:"github_owner"`
	GitHubRepo   string `json:"github_repo"`
	GitHubBranch string `json:"github_branch"`
	GitHubToken  string `json:"github_token"`
	GitHubAPI    string `json:"github_api_url"`

	StatePath        string `json:"state_path"`
	RelayURL         string `json:"relay_url"`
	CloudinaryURL    string `json:"cloudinary_url"`
	CloudinaryFolder string `json:"cloudinary_folder"`
	CloudinaryPreset string `json:"cloudinary_preset"`

	S3Region    string `json:"s3_region"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`

	DataURL  string `json:"data_url"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
}

// LoadFile overlays the values set in the JSON file at path.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	set(&c.DBPath, f.DBPath)
	set(&c.Addr, f.Addr)
	set(&c.LogPath, f.LogPath)
	set(&c.TokenMode, f.TokenMode)
	set(&c.Strategy, f.Strategy)
	set(&c.CommitMessage, f.CommitMessage)
	if len(f.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.AllowedOrigins
	}
	if f.LoginPerMinute > 0 {
		c.LoginPerMinute = f.LoginPerMinute
	}
	if f.LoginBurst > 0 {
		c.LoginBurst = f.LoginBurst
	}

	set(&c.GitHub.Owner, f.GitHubOwner)
	set(&c.GitHub.Repo, f.GitHubRepo)
	set(&c.GitHub.Branch, f.GitHubBranch)
	set(&c.GitHub.Token, f.GitHubToken)
	set(&c.GitHub.APIBaseURL, f.GitHubAPI)

	set(&c.StatePath, f.StatePath)
	set(&c.RelayURL, f.RelayURL)
	set(&c.Cloudinary.URL, f.CloudinaryURL)
	set(&c.Cloudinary.Folder, f.CloudinaryFolder)
	set(&c.Cloudinary.Preset, f.CloudinaryPreset)

	set(&c.S3.Region, f.S3Region)
	set(&c.S3.Endpoint, f.S3Endpoint)
	set(&c.S3.AccessKey, f.S3AccessKey)
	set(&c.S3.SecretKey, f.S3SecretKey)

	set(&c.DataURL, f.DataURL)
	set(&c.WhatsApp, f.WhatsApp)
	set(&c.Email, f.Email)
	return nil
}

// ApplyEnv overlays the environment variables that are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	set(&c.GitHub.Token, getenv("GITHUB_TOKEN"))
	set(&c.GitHub.Owner, getenv("GITHUB_OWNER"))
	set(&c.GitHub.Repo, getenv("GITHUB_REPO"))
	set(&c.GitHub.Branch, getenv("GITHUB_BRANCH"))
	set(&c.Cloudinary.URL, getenv("CLOUDINARY_URL"))
	set(&c.RelayURL, getenv("HOBBYSHOP_RELAY"))
	set(&c.DataURL, getenv("HOBBYSHOP_DATA_URL"))
	set(&c.DBPath, getenv("HOBBYSHOP_DB"))
	set(&c.StatePath, getenv("HOBBYSHOP_STATE"))
	set(&c.S3.Region, getenv("HOBBYSHOP_S3_REGION"))
	set(&c.S3.Endpoint, getenv("HOBBYSHOP_S3_ENDPOINT"))
	set(&c.S3.AccessKey, getenv("HOBBYSHOP_S3_ACCESS_KEY"))
	set(&c.S3.SecretKey, getenv("HOBBYSHOP_S3_SECRET_KEY"))
}

// Load builds the configuration for args: defaults, then the file named
// by -c/-config in args (if any), then the environment. Flags parsed by
// the caller override the result.
func Load(args []string, getenv func(string) string) (*Config, error) {
	c := Default()
	if path := FindConfigFlag(args); path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	c.ApplyEnv(getenv)
	return c, nil
}

// FindConfigFlag returns the value of -c, -config, --c or --config in args.
func FindConfigFlag(args []string) string {
	for i, arg := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || (name != "c" && name != "config") {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// Origins returns the CORS allow-list, including the GitHub Pages site of
// the repository owner.
func (c *Config) Origins() []string {
	out := append([]string{}, c.AllowedOrigins...)
	if c.GitHub.Owner != "" {
		out = append(out, "https://"+strings.ToLower(c.GitHub.Owner)+".github.io")
	}
	return out
}

// ValidateRelay checks what serve cannot start without.
func (c *Config) ValidateRelay() error {
	var missing []string
	if c.GitHub.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if c.GitHub.Owner == "" {
		missing = append(missing, "GITHUB_OWNER")
	}
	if c.GitHub.Repo == "" {
		missing = append(missing, "GITHUB_REPO")
	}
	if len(missing) > 0 {
		return errors.New("missing required GitHub settings: " + strings.Join(missing, ", "))
	}
	return nil
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
