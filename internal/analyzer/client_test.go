package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecodocs/reportpipe/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("requires base URL", func(t *testing.T) {
		_, err := NewClient(Config{})
		assert.Error(t, err)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient(Config{BaseURL: "http://analyzer:8000/"})
		require.NoError(t, err)
		assert.Equal(t, "http://analyzer:8000", client.baseURL)
	})
}

func TestAnalyze_Success(t *testing.T) {
	var gotPath string
	var gotRequest analyzeRequest

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"summary": {"textual_summary": "A drought impact assessment.", "confidence_score": 0.92},
			"category": {"name": "Water"},
			"extracted_data": [
				{
					"key": "affected_population",
					"value": 250000,
					"unit": "people",
					"page": 3,
					"confidence_score": 0.88,
					"chart_type": "BarChart",
					"indicator_category": "social_population"
				},
				{
					"key": "rainfall_deficit",
					"value": "40 percent",
					"page": "unknown",
					"confidence_score": 0.7,
					"chart_type": "Heatmap",
					"indicator_category": "weather_stuff"
				}
			]
		}`))
	})

	result, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 17)
	require.NoError(t, err)

	assert.Equal(t, "/api/analyze-document", gotPath)
	assert.Equal(t, "/tmp/doc.pdf", gotRequest.FilePath)
	assert.Equal(t, int64(17), gotRequest.DocumentID)

	require.NotNil(t, result.Summary)
	assert.Equal(t, "A drought impact assessment.", result.Summary.Content)
	assert.InDelta(t, 0.92, result.Summary.Confidence, 0.001)
	assert.Equal(t, "Water", result.CategoryName)

	require.Len(t, result.DataPoints, 2)

	first := result.DataPoints[0]
	assert.Equal(t, "affected_population", first.Key)
	assert.Equal(t, "250000", first.Value, "numeric values keep their text form")
	assert.Equal(t, "people", first.Unit)
	require.NotNil(t, first.Page)
	assert.Equal(t, 3, *first.Page)
	assert.Equal(t, model.ChartTypeBar, first.ChartType)
	assert.Equal(t, model.IndicatorSocialPopulation, first.IndicatorCategory)

	second := result.DataPoints[1]
	assert.Equal(t, "40 percent", second.Value)
	assert.Nil(t, second.Page, `page "unknown" means no page`)
	assert.Equal(t, model.ChartTypeUnknown, second.ChartType)
	assert.Equal(t, model.IndicatorOther, second.IndicatorCategory)
}

func TestAnalyze_PartialResponse(t *testing.T) {
	t.Run("summary only", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"summary": {"textual_summary": "Narrative only.", "confidence_score": 0.6}}`))
		})

		result, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
		require.NoError(t, err)
		require.NotNil(t, result.Summary)
		assert.Empty(t, result.CategoryName)
		assert.Empty(t, result.DataPoints)
	})

	t.Run("empty object", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		result, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
		require.NoError(t, err)
		assert.Nil(t, result.Summary)
		assert.Empty(t, result.CategoryName)
		assert.Empty(t, result.DataPoints)
	})

	t.Run("numeric string page is parsed", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"extracted_data": [{"key": "k", "value": "v", "page": "12", "confidence_score": 0.5}]}`))
		})

		result, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
		require.NoError(t, err)
		require.Len(t, result.DataPoints, 1)
		require.NotNil(t, result.DataPoints[0].Page)
		assert.Equal(t, 12, *result.DataPoints[0].Page)
	})
}

func TestAnalyze_ErrorResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "model crashed"}`))
	})

	_, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrorKindErrorResponse, svcErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, svcErr.StatusCode)
	assert.Contains(t, svcErr.Message, "model crashed")
}

func TestAnalyze_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: serverURL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrorKindUnreachable, svcErr.Kind)
}

func TestAnalyze_Timeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
		w.WriteHeader(http.StatusOK)
	})
	client.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, ErrorKindTimeout, svcErr.Kind)
}

func TestAnalyze_MalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Analyze(context.Background(), "/tmp/doc.pdf", 1)
	require.Error(t, err)
	var svcErr *ServiceError
	assert.False(t, errors.As(err, &svcErr), "a malformed success body is a parse error, not a service error")
}
