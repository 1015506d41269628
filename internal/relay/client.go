// Package relay is the admin side of the sync server: it logs in and
// hands durable documents to the server for committing.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// Client calls a sync server. Token is the bearer token from Login.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// New returns a client for baseURL holding token (may be empty).
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SavePayload is the body of POST /api/save-products.
type SavePayload struct {
	Products         model.Catalog `json:"products"`
	HeroSlides       []string      `json:"heroSlides"`
	InspirationItems []string      `json:"inspirationItems"`
}

// reply covers every JSON answer of the server.
type reply struct {
	OK      bool   `json:"ok"`
	Token   string `json:"token"`
	Commit  string `json:"commit"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (r reply) text() string {
	switch {
	case r.Message != "" && r.Error != "":
		return r.Message + ": " + r.Error
	case r.Message != "":
		return r.Message
	default:
		return r.Error
	}
}

// Login exchanges credentials for a token and keeps it on the client.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	status, r, err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusUnauthorized:
		return "", fmt.Errorf("%w: %s", model.ErrAuth, r.text())
	case status != http.StatusOK || !r.OK || r.Token == "":
		return "", fmt.Errorf("login: status %d: %s", status, r.text())
	}
	c.Token = r.Token
	return r.Token, nil
}

// Logout revokes the token on the server and forgets it. The token is
// dropped even when the server cannot be reached.
func (c *Client) Logout(ctx context.Context) error {
	if c.Token == "" {
		return nil
	}
	status, r, err := c.do(ctx, http.MethodPost, "/api/logout", nil, true)
	c.Token = ""
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusUnauthorized {
		return fmt.Errorf("logout: status %d: %s", status, r.text())
	}
	return nil
}

// Publish sends docs to the server, which commits them in one revision.
func (c *Client) Publish(ctx context.Context, docs model.Documents) (model.Revision, error) {
	if c.Token == "" {
		return "", fmt.Errorf("%w: not logged in", model.ErrAuth)
	}

	payload := SavePayload{
		Products:         docs.Catalog,
		HeroSlides:       docs.Banners,
		InspirationItems: docs.Gallery,
	}
	if payload.Products == nil {
		payload.Products = model.Catalog{}
	}
	if payload.HeroSlides == nil {
		payload.HeroSlides = []string{}
	}
	if payload.InspirationItems == nil {
		payload.InspirationItems = []string{}
	}

	status, r, err := c.do(ctx, http.MethodPost, "/api/save-products", payload, true)
	if err != nil {
		return "", &model.PublishError{Step: "relay", Err: err}
	}
	switch status {
	case http.StatusOK:
		if !r.OK || r.Commit == "" {
			return "", &model.PublishError{Step: "relay", Err: errors.New("server reply carries no commit")}
		}
		return model.Revision(r.Commit), nil
	case http.StatusUnauthorized:
		// The token is useless now; the caller has to log in again.
		c.Token = ""
		return "", fmt.Errorf("%w: %s", model.ErrAuth, r.text())
	case http.StatusBadRequest:
		return "", model.Invalid("%s", r.text())
	default:
		return "", &model.PublishError{Step: "relay", Err: fmt.Errorf("status %d: %s", status, r.text())}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, auth bool) (int, reply, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, reply{}, fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return 0, reply{}, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, reply{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var r reply
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, reply{}, fmt.Errorf("reading response: %w", err)
	}
	if len(data) > 0 && json.Unmarshal(data, &r) != nil {
		r.Message = strings.TrimSpace(string(data))
	}
	return resp.StatusCode, r, nil
}
