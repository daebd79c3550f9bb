package hosting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client provisions archive repositories on GitHub. It only knows how to
// ensure a repository exists for the token's user and hand back a clone URL;
// everything else about the remote is the repository manager's business.
type Client struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a GitHub provisioning client.
func New(apiURL, token string, opts ...Option) (*Client, error) {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return nil, errors.New("github api url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("github token required")
	}
	client := &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type userPayload struct {
	Login string `json:"login"`
}

type repoPayload struct {
	CloneURL string `json:"clone_url"`
}

// EnsureRepository makes sure a private repository with the given name exists
// for the token's user, creating it when absent, and returns its clone URL
// with the token embedded for authenticated pushes.
func (c *Client) EnsureRepository(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("repository name required")
	}

	var user userPayload
	if err := c.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return "", fmt.Errorf("resolve authenticated user: %w", err)
	}

	var repo repoPayload
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/repos/%s/%s", url.PathEscape(user.Login), url.PathEscape(name)), nil, &repo)
	if err == nil {
		return WithToken(repo.CloneURL, c.token)
	}
	if !errors.Is(err, errNotFound) {
		return "", fmt.Errorf("look up repository %s: %w", name, err)
	}

	body := map[string]any{"name": name, "private": true}
	if err := c.do(ctx, http.MethodPost, "/user/repos", body, &repo); err != nil {
		return "", fmt.Errorf("create repository %s: %w", name, err)
	}
	return WithToken(repo.CloneURL, c.token)
}

// WithToken embeds a token as userinfo in an https clone URL so pushes
// authenticate without credential helpers.
func WithToken(cloneURL, token string) (string, error) {
	parsed, err := url.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("parse clone url: %w", err)
	}
	parsed.User = url.User(token)
	return parsed.String(), nil
}

var errNotFound = errors.New("not found")

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("github returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
