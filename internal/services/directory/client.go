package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cwmc/portable-launcher/internal/model"
)

// Paths of the documents served by the directory service
const (
	TeamsPath  = "/teams.json"
	ConfigPath = "/args.json"
)

// Client is a plain HTTP client for the directory service
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for a directory address given as host, host:port or a full URL
func NewClient(address string, httpClient *http.Client) (*Client, error) {
	base, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		baseURL:    base,
		httpClient: httpClient,
	}, nil
}

// ParseAddress normalizes a directory address into an http base URL
func ParseAddress(address string) (*url.URL, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: empty directory address", model.ErrDirectoryUnreachable)
	}
	if !strings.Contains(address, "://") {
		address = "http://" + address
	}

	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid directory address: %v", model.ErrDirectoryUnreachable, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: directory address %q has no host", model.ErrDirectoryUnreachable, address)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// Host returns the directory host name without port
func (c *Client) Host() string {
	return c.baseURL.Hostname()
}

// URL resolves a path relative to the directory base address
func (c *Client) URL(path string) string {
	return c.baseURL.String() + "/" + strings.TrimPrefix(path, "/")
}

// FetchTeams retrieves the team roster
func (c *Client) FetchTeams(ctx context.Context) (model.TeamsDocument, error) {
	var doc model.TeamsDocument
	if err := c.getJSON(ctx, TeamsPath, &doc); err != nil {
		return model.TeamsDocument{}, err
	}
	return doc, nil
}

// FetchConfig retrieves the run configuration
func (c *Client) FetchConfig(ctx context.Context) (model.DirectoryConfig, error) {
	var cfg model.DirectoryConfig
	if err := c.getJSON(ctx, ConfigPath, &cfg); err != nil {
		return model.DirectoryConfig{}, err
	}
	return cfg, nil
}

// getJSON performs a GET request and decodes the JSON body into result
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	target := c.URL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", model.ErrDirectoryUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrDirectoryUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", model.ErrDirectoryUnreachable, path, err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: GET %s: HTTP %d", model.ErrDirectoryUnreachable, path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: parse %s: %v", model.ErrDirectoryUnreachable, path, err)
	}
	return nil
}
