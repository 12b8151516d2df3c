// Package github is the authenticated client for the provider's REST API.
// It performs single requests only: pagination and selection policy live in
// the artifact locator.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ghdeploy/internal/models"
)

// DefaultBaseURL is the production API endpoint.
const DefaultBaseURL = "https://api.github.com"

const acceptHeader = "application/vnd.github.v3+json"

// Client performs authenticated requests against the provider API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	creds      Credentials
}

// NewClient creates a client with the given credentials and request timeout.
func NewClient(creds Credentials, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		creds:      creds,
	}
}

// Host returns the hostname of the configured API endpoint, for credential
// lookup.
func Host(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing api url: %w", err)
	}
	return u.Hostname(), nil
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	reqURL := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.creds.Login + ":" + c.creds.Password))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &models.APIError{URL: reqURL, Detail: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &models.APIError{
			Status: resp.StatusCode,
			URL:    reqURL,
			Detail: strings.TrimSpace(string(body)),
		}
	}

	return resp, nil
}

// ListArtifacts fetches one page of the artifact listing for a repository.
// Page 1 is requested without a page query parameter.
func (c *Client) ListArtifacts(ctx context.Context, repo string, page int) (models.ArtifactsPage, error) {
	path := fmt.Sprintf("/repos/%s/actions/artifacts", repo)
	if page > 1 {
		path += fmt.Sprintf("?page=%d", page)
	}

	var listing models.ArtifactsPage

	resp, err := c.do(ctx, path)
	if err != nil {
		return listing, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return listing, &models.APIError{URL: c.BaseURL + path, Detail: fmt.Sprintf("decoding listing: %s", err)}
	}

	return listing, nil
}

// DownloadArtifact fetches the zip payload of one artifact.
func (c *Client) DownloadArtifact(ctx context.Context, repo string, id int64) ([]byte, error) {
	path := fmt.Sprintf("/repos/%s/actions/artifacts/%d/zip", repo, id)

	resp, err := c.do(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.APIError{URL: c.BaseURL + path, Detail: fmt.Sprintf("reading payload: %s", err)}
	}

	return data, nil
}
