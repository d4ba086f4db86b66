// Package agro adapts the agro-monitoring satellite API: polygon
// registration, current soil data, and NDVI history.
package agro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fieldscope/land-quality-service/internal/domain"
	"github.com/fieldscope/land-quality-service/internal/geo"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

// Client implements domain.PolygonCreator, domain.SoilSource, and
// domain.VegetationSource against the agro-monitoring HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an agro API client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

// CreatePolygon registers a ring with the API and returns its polygon handle.
// The API expects a GeoJSON feature with [lon, lat] coordinate order.
func (c *Client) CreatePolygon(ctx context.Context, name string, ring geo.Ring) (domain.PolygonInfo, error) {
	start := time.Now()
	defer func() { c.metrics.SatAPIDuration.WithLabelValues("polygon").Observe(time.Since(start).Seconds()) }()

	body, err := json.Marshal(polygonRequest{
		Name:    name,
		GeoJSON: geoJSONFeature(ring),
	})
	if err != nil {
		return domain.PolygonInfo{}, fmt.Errorf("encode polygon request: %w", err)
	}

	u := fmt.Sprintf("%s/polygons?appid=%s&duplicated=true", c.baseURL, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return domain.PolygonInfo{}, fmt.Errorf("create polygon request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.PolygonRequests.WithLabelValues("error").Inc()
		return domain.PolygonInfo{}, fmt.Errorf("polygon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.metrics.PolygonRequests.WithLabelValues("error").Inc()
		payload, _ := io.ReadAll(resp.Body)
		return domain.PolygonInfo{}, fmt.Errorf("agro API error: status %d: %s", resp.StatusCode, payload)
	}

	var pr polygonResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		c.metrics.PolygonRequests.WithLabelValues("error").Inc()
		return domain.PolygonInfo{}, fmt.Errorf("decode polygon response: %w", err)
	}

	c.metrics.PolygonRequests.WithLabelValues("success").Inc()
	info := domain.PolygonInfo{ID: pr.ID, AreaHa: pr.Area}
	if len(pr.Center) == 2 {
		// API returns [lon, lat].
		info.Center = geo.Coordinate{Lat: pr.Center[1], Lon: pr.Center[0]}
	}
	return info, nil
}

// FetchSoil returns the current raw soil payload for a polygon.
func (c *Client) FetchSoil(ctx context.Context, polygonID string) (domain.SoilReading, error) {
	start := time.Now()
	defer func() { c.metrics.SatAPIDuration.WithLabelValues("soil").Observe(time.Since(start).Seconds()) }()

	params := url.Values{
		"polyid": {polygonID},
		"appid":  {c.apiKey},
	}
	u := c.baseURL + "/soil?" + params.Encode()

	var reading domain.SoilReading
	if err := c.getJSON(ctx, u, &reading); err != nil {
		return domain.SoilReading{}, fmt.Errorf("soil request: %w", err)
	}
	return reading, nil
}

// FetchNDVIHistory returns NDVI entries for a polygon within [start, end].
// A 404 means no captures exist for the window and is returned as an empty
// slice, not an error, so the caller's window-narrowing retry can proceed.
func (c *Client) FetchNDVIHistory(ctx context.Context, polygonID string, startAt, endAt time.Time) ([]domain.NDVIEntry, error) {
	start := time.Now()
	defer func() { c.metrics.SatAPIDuration.WithLabelValues("ndvi").Observe(time.Since(start).Seconds()) }()

	params := url.Values{
		"polyid": {polygonID},
		"start":  {strconv.FormatInt(startAt.Unix(), 10)},
		"end":    {strconv.FormatInt(endAt.Unix(), 10)},
		"appid":  {c.apiKey},
	}
	u := c.baseURL + "/ndvi/history?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create ndvi request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ndvi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("agro API error: status %d: %s", resp.StatusCode, payload)
	}

	var entries []domain.NDVIEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode ndvi response: %w", err)
	}
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("agro API error: status %d: %s", resp.StatusCode, payload)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// geoJSONFeature converts a ring into the GeoJSON polygon feature the API
// expects, flipping to [lon, lat] order.
func geoJSONFeature(ring geo.Ring) map[string]any {
	closed := ring.Closed()
	coords := make([][]float64, 0, len(closed))
	for _, p := range closed {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	return map[string]any{
		"type":       "Feature",
		"properties": map[string]any{},
		"geometry": map[string]any{
			"type":        "Polygon",
			"coordinates": [][][]float64{coords},
		},
	}
}

// Agro API wire types.

type polygonRequest struct {
	Name    string         `json:"name"`
	GeoJSON map[string]any `json:"geo_json"`
}

type polygonResponse struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Center []float64 `json:"center"` // [lon, lat]
	Area   float64   `json:"area"`   // hectares
}
