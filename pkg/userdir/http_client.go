// pkg/userdir/http_client.go

package userdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type httpClient struct {
	baseURL string
	key     string
	httpc   *http.Client
}

func NewHTTP(baseURL, key string) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *httpClient) EmailFor(ctx context.Context, uid string) (string, error) {
	if c.baseURL == "" {
		return "", nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+url.PathEscape(uid), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("user lookup: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("user lookup: auth provider returned %d", resp.StatusCode)
	}

	var out struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Email, nil
}
