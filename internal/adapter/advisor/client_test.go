package advisor

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

	"github.com/fieldscope/land-quality-service/internal/domain"
)

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     "test-key",
		baseURL:    baseURL,
		model:      "test-model",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func verdictServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}))
	}))
}

func TestClient_Assess(t *testing.T) {
	input := domain.AdvisorInput{
		Sample: domain.SoilSample{TimestampUnix: 1714143000},
	}

	t.Run("clean JSON verdict", func(t *testing.T) {
		srv := verdictServer(t, `{"Soil_Quality_score":82,"Soil_Quality_Level":"High","confidence":0.9,"summary":"Fertile plot.","recommendations":["Rotate crops.","Monitor moisture."]}`)
		defer srv.Close()

		got, err := testClient(srv.URL).Assess(context.Background(), input)
		require.NoError(t, err)

		require.NotNil(t, got.Score)
		assert.Equal(t, 82.0, *got.Score)
		assert.Equal(t, domain.LevelHigh, got.Level)
		assert.Equal(t, "0.9", got.Confidence)
		assert.Equal(t, "Fertile plot.", got.Summary)
		assert.Len(t, got.Recommendations, 2)
	})

	t.Run("code-fenced verdict", func(t *testing.T) {
		srv := verdictServer(t, "```json\n{\"Soil_Quality_score\":55,\"Soil_Quality_Level\":\"Moderate\",\"confidence\":\"75%\"}\n```")
		defer srv.Close()

		got, err := testClient(srv.URL).Assess(context.Background(), input)
		require.NoError(t, err)

		require.NotNil(t, got.Score)
		assert.Equal(t, 55.0, *got.Score)
		assert.Equal(t, domain.LevelModerate, got.Level)
		assert.Equal(t, "75%", got.Confidence)
	})

	t.Run("stringly-typed score", func(t *testing.T) {
		srv := verdictServer(t, `{"Soil_Quality_score":"68.5","Soil_Quality_Level":"moderate","confidence":85}`)
		defer srv.Close()

		got, err := testClient(srv.URL).Assess(context.Background(), input)
		require.NoError(t, err)

		require.NotNil(t, got.Score)
		assert.Equal(t, 68.5, *got.Score)
		assert.Equal(t, domain.LevelModerate, got.Level)
		assert.Equal(t, "85", got.Confidence)
	})

	t.Run("unparseable verdict", func(t *testing.T) {
		srv := verdictServer(t, "The land looks pretty good to me.")
		defer srv.Close()

		_, err := testClient(srv.URL).Assess(context.Background(), input)
		assert.Error(t, err)
	})

	t.Run("API error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Assess(context.Background(), input)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Assess(context.Background(), input)
		assert.Error(t, err)
	})
}

func TestParseVerdict(t *testing.T) {
	t.Run("missing fields stay zero-valued", func(t *testing.T) {
		got, err := parseVerdict(`{"summary":"No data."}`)
		require.NoError(t, err)
		assert.Nil(t, got.Score)
		assert.Empty(t, got.Level)
		assert.Empty(t, got.Confidence)
		assert.Equal(t, "No data.", got.Summary)
	})

	t.Run("unrecognized level is dropped", func(t *testing.T) {
		got, err := parseVerdict(`{"Soil_Quality_Level":"Spectacular"}`)
		require.NoError(t, err)
		assert.Empty(t, got.Level)
	})

	t.Run("medium maps to moderate", func(t *testing.T) {
		got, err := parseVerdict(`{"Soil_Quality_Level":"Medium"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.LevelModerate, got.Level)
	})

	t.Run("percentage string score", func(t *testing.T) {
		got, err := parseVerdict(`{"Soil_Quality_score":"82%"}`)
		require.NoError(t, err)
		require.NotNil(t, got.Score)
		assert.Equal(t, 82.0, *got.Score)
	})
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no fence", in: `{"a":1}`, want: `{"a":1}`},
		{name: "plain fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  ```json\n{\"a\":1}\n```  ", want: `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.in))
		})
	}
}
