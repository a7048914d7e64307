// pkg/provider/http_client.go

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

type httpClient struct {
	baseURL string
	key     string
	httpc   *http.Client
	log     *zap.Logger
}

func NewHTTP(baseURL, key string, log *zap.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

func (c *httpClient) Configured() bool { return c.baseURL != "" && c.key != "" }

type polygonRow struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Geo  json.RawMessage `json:"geo_json,omitempty"`
}

func (c *httpClient) CreatePolygon(ctx context.Context, name string, boundary []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	// De-duplicate by name before creating: a lost race on the sync record
	// may have registered this polygon already.
	if id, err := c.findPolygon(ctx, name); err == nil && id != "" {
		return id, nil
	}

	body, _ := json.Marshal(polygonRow{Name: name, Geo: boundary})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/polygons?appid="+url.QueryEscape(c.key), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("create polygon: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("create polygon: provider returned %d", resp.StatusCode)
	}

	var out polygonRow
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("create polygon: decode: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("create polygon: provider returned empty id")
	}
	return out.ID, nil
}

func (c *httpClient) findPolygon(ctx context.Context, name string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/polygons?appid="+url.QueryEscape(c.key), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("list polygons: provider returned %d", resp.StatusCode)
	}
	var rows []polygonRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return "", err
	}
	for _, r := range rows {
		if r.Name == name {
			return r.ID, nil
		}
	}
	return "", nil
}

func (c *httpClient) SearchImages(ctx context.Context, polygonID string, from, to time.Time) ([]Image, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("appid", c.key)
	q.Set("polyid", polygonID)
	q.Set("start", from.Format("2006-01-02"))
	q.Set("end", to.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/image/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("image search: provider returned %d", resp.StatusCode)
	}

	var rows []struct {
		Date       string  `json:"date"`
		Mean       float64 `json:"mean"`
		Min        float64 `json:"min"`
		Max        float64 `json:"max"`
		CloudCover float64 `json:"cloud_cover"`
		DataCover  float64 `json:"data_cover"`
		Source     string  `json:"source"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("image search: decode: %w", err)
	}

	out := make([]Image, 0, len(rows))
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			c.log.Warn("image search: skipping row with bad date", zap.String("date", r.Date))
			continue
		}
		src := r.Source
		if src == "" {
			src = "s2"
		}
		out = append(out, Image{
			Date:          d,
			MeanIndex:     r.Mean,
			MinIndex:      r.Min,
			MaxIndex:      r.Max,
			CloudCoverPct: r.CloudCover,
			DataCoverPct:  r.DataCover,
			Source:        src,
		})
	}
	return out, nil
}
