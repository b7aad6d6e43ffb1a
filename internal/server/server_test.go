package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecodocs/reportpipe/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockProcessor records the document ID it was asked for and returns a canned
// report or error.
type mockProcessor struct {
	report     *model.ProcessingReport
	err        error
	documentID *int64
	called     bool
}

func (m *mockProcessor) ProcessBatch(_ context.Context, documentID *int64) (*model.ProcessingReport, error) {
	m.called = true
	m.documentID = documentID
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func performRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := NewServer(&mockProcessor{})
	w := performRequest(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleProcess(t *testing.T) {
	t.Run("empty body triggers a full batch", func(t *testing.T) {
		processor := &mockProcessor{report: &model.ProcessingReport{TotalFound: 3, Processed: 3, NeedsProcessing: 3}}
		s := NewServer(processor)

		w := performRequest(t, s, http.MethodPost, "/api/documents/process", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, processor.called)
		assert.Nil(t, processor.documentID)

		var report model.ProcessingReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 3, report.TotalFound)
		assert.Equal(t, 3, report.Processed)
	})

	t.Run("document_id is passed through", func(t *testing.T) {
		processor := &mockProcessor{report: &model.ProcessingReport{TotalFound: 1}}
		s := NewServer(processor)

		w := performRequest(t, s, http.MethodPost, "/api/documents/process", `{"document_id": 42}`)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, processor.documentID)
		assert.Equal(t, int64(42), *processor.documentID)
	})

	t.Run("report with failures is still a 200", func(t *testing.T) {
		processor := &mockProcessor{report: &model.ProcessingReport{
			TotalFound:      2,
			NeedsProcessing: 2,
			Processed:       1,
			Failed:          1,
			Outcomes: []model.ProcessingOutcome{
				{DocumentID: 1, Title: "ok", NeededProcessing: true, Processed: true},
				{DocumentID: 2, Title: "broken", NeededProcessing: true, Error: "analysis service unreachable"},
			},
		}}
		s := NewServer(processor)

		w := performRequest(t, s, http.MethodPost, "/api/documents/process", "{}")
		assert.Equal(t, http.StatusOK, w.Code)

		var report model.ProcessingReport
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Outcomes, 2)
		assert.Equal(t, "analysis service unreachable", report.Outcomes[1].Error)
	})

	t.Run("orchestration error is a 500", func(t *testing.T) {
		processor := &mockProcessor{err: errors.New("database is locked")}
		s := NewServer(processor)

		w := performRequest(t, s, http.MethodPost, "/api/documents/process", "{}")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "database is locked")
	})

	t.Run("malformed JSON is a 400", func(t *testing.T) {
		processor := &mockProcessor{report: &model.ProcessingReport{}}
		s := NewServer(processor)

		w := performRequest(t, s, http.MethodPost, "/api/documents/process", `{"document_id": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, processor.called)
	})
}
