package agro

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldscope/land-quality-service/internal/geo"
	"github.com/fieldscope/land-quality-service/internal/observability"
)

const (
	testAPIKey        = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testRing() geo.Ring {
	return geo.Ring{
		{Lat: 44.0, Lon: 11.0},
		{Lat: 44.0, Lon: 11.01},
		{Lat: 44.01, Lon: 11.01},
		{Lat: 44.01, Lon: 11.0},
	}
}

func TestClient_CreatePolygon_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/polygons", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))
		assert.Equal(t, "true", r.URL.Query().Get("duplicated"))

		var req polygonRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "field-1", req.Name)

		geometry := req.GeoJSON["geometry"].(map[string]any)
		coords := geometry["coordinates"].([]any)[0].([]any)
		assert.Len(t, coords, 5, "ring must be closed on the wire")
		first := coords[0].([]any)
		// GeoJSON carries [lon, lat].
		assert.Equal(t, 11.0, first[0])
		assert.Equal(t, 44.0, first[1])

		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(polygonResponse{
			ID:     "poly-1",
			Name:   "field-1",
			Center: []float64{11.005, 44.005},
			Area:   89.2,
		}))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	info, err := c.CreatePolygon(context.Background(), "field-1", testRing())
	require.NoError(t, err)

	assert.Equal(t, "poly-1", info.ID)
	assert.Equal(t, 89.2, info.AreaHa)
	assert.Equal(t, 44.005, info.Center.Lat)
	assert.Equal(t, 11.005, info.Center.Lon)
}

func TestClient_CreatePolygon_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"polygon area too small"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.CreatePolygon(context.Background(), "field-1", testRing())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "too small")
}

func TestClient_FetchSoil(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/soil", r.URL.Path)
			assert.Equal(t, "poly-1", r.URL.Query().Get("polyid"))
			assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))

			w.Header().Set(headerContentType, contentTypeJSON)
			_, _ = w.Write([]byte(`{"dt":1714143000,"t0":291.15,"t10":289.15,"moisture":0.35}`))
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		reading, err := c.FetchSoil(context.Background(), "poly-1")
		require.NoError(t, err)

		assert.Equal(t, int64(1714143000), reading.Dt)
		require.NotNil(t, reading.T0)
		assert.Equal(t, 291.15, *reading.T0)
		require.NotNil(t, reading.Moisture)
		assert.Equal(t, 0.35, *reading.Moisture)
	})

	t.Run("partial payload leaves fields nil", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(headerContentType, contentTypeJSON)
			_, _ = w.Write([]byte(`{"dt":1714143000,"t0":291.15}`))
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		reading, err := c.FetchSoil(context.Background(), "poly-1")
		require.NoError(t, err)

		require.NotNil(t, reading.T0)
		assert.Nil(t, reading.T10)
		assert.Nil(t, reading.Moisture)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		_, err := c.FetchSoil(context.Background(), "poly-1")
		assert.Error(t, err)
	})
}

func TestClient_FetchNDVIHistory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		start := time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ndvi/history", r.URL.Path)
			assert.Equal(t, "poly-1", r.URL.Query().Get("polyid"))
			assert.Equal(t, "1756080000", r.URL.Query().Get("start"))
			assert.Equal(t, "1787616000", r.URL.Query().Get("end"))

			w.Header().Set(headerContentType, contentTypeJSON)
			_, _ = w.Write([]byte(`[{"dt":1714143000,"data":{"mean":0.42,"min":0.1,"max":0.7}},{"dt":1714229400,"data":{"mean":0.44}}]`))
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		entries, err := c.FetchNDVIHistory(context.Background(), "poly-1", start, end)
		require.NoError(t, err)

		require.Len(t, entries, 2)
		require.NotNil(t, entries[0].Data)
		assert.Equal(t, 0.42, *entries[0].Data.Mean)
		assert.Equal(t, 0.44, *entries[1].Data.Mean)
	})

	t.Run("flat value shape decodes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(headerContentType, contentTypeJSON)
			_, _ = w.Write([]byte(`[{"dt":1714143000,"value":0.38}]`))
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		entries, err := c.FetchNDVIHistory(context.Background(), "poly-1", time.Now().Add(-time.Hour), time.Now())
		require.NoError(t, err)

		require.Len(t, entries, 1)
		assert.Nil(t, entries[0].Data)
		require.NotNil(t, entries[0].Value)
		assert.Equal(t, 0.38, *entries[0].Value)
	})

	t.Run("404 means no captures, not an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		entries, err := c.FetchNDVIHistory(context.Background(), "poly-1", time.Now().Add(-time.Hour), time.Now())

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := testClient(srv.URL)
		_, err := c.FetchNDVIHistory(context.Background(), "poly-1", time.Now().Add(-time.Hour), time.Now())
		assert.Error(t, err)
	})
}
