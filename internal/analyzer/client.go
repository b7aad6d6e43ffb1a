// Package analyzer is the HTTP client for the external document analysis
// service. It classifies transport failures so the orchestrator can tell an
// unreachable service from a structured error response or a timeout, and it
// normalizes the service's loosely-typed JSON at the boundary. It performs no
// persistence and no retries.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ecodocs/reportpipe/internal/model"
)

// DefaultTimeout is deliberately long: a single analysis run loads and
// queries a large model and routinely takes minutes.
const DefaultTimeout = 15 * time.Minute

// ErrorKind classifies an analysis service failure.
type ErrorKind string

// Analysis failure kinds.
const (
	ErrorKindUnreachable   ErrorKind = "unreachable"
	ErrorKindErrorResponse ErrorKind = "error_response"
	ErrorKindTimeout       ErrorKind = "timeout"
)

// ServiceError is a classified analysis service failure. StatusCode is only
// set for ErrorKindErrorResponse.
type ServiceError struct {
	Message    string
	Kind       ErrorKind
	StatusCode int
}

func (e *ServiceError) Error() string {
	switch e.Kind {
	case ErrorKindErrorResponse:
		return fmt.Sprintf("analysis service returned status %d: %s", e.StatusCode, e.Message)
	case ErrorKindTimeout:
		return fmt.Sprintf("analysis service timed out: %s", e.Message)
	default:
		return fmt.Sprintf("analysis service unreachable: %s", e.Message)
	}
}

// Result is the analyzer's output for one document. Any field may be empty;
// absence means there is nothing to persist for that artifact.
type Result struct {
	Summary      *model.Summary
	CategoryName string
	DataPoints   []model.DataPoint
}

// Config holds the analysis client settings.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
}

// Client sends documents to the analysis service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an analysis service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("analysis service base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

type analyzeRequest struct {
	FilePath   string `json:"file_path"`
	DocumentID int64  `json:"document_id"`
}

type analyzeResponse struct {
	Summary       *summaryPayload    `json:"summary"`
	Category      *categoryPayload   `json:"category"`
	ExtractedData []dataPointPayload `json:"extracted_data"`
}

type summaryPayload struct {
	TextualSummary  string  `json:"textual_summary"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type categoryPayload struct {
	Name string `json:"name"`
}

type dataPointPayload struct {
	Key               string    `json:"key"`
	Value             flexValue `json:"value"`
	Unit              string    `json:"unit"`
	ChartType         string    `json:"chart_type"`
	IndicatorCategory string    `json:"indicator_category"`
	Page              flexPage  `json:"page"`
	ConfidenceScore   float64   `json:"confidence_score"`
}

// flexValue accepts either a JSON string or number and keeps the canonical
// text representation.
type flexValue string

func (v *flexValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = flexValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = flexValue(n.String())
		return nil
	}

	return fmt.Errorf("value must be a string or number, got %s", string(data))
}

// flexPage accepts a JSON number, a numeric string, null, or garbage like
// "unknown" — the analyzer emits all of these. Anything non-numeric means
// "no page" rather than an error.
type flexPage struct {
	number *int
}

func (p *flexPage) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		p.number = &n
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		var parsed int
		if _, scanErr := fmt.Sscanf(strings.TrimSpace(s), "%d", &parsed); scanErr == nil {
			p.number = &parsed
		}
		return nil
	}

	p.number = nil
	return nil
}

// Analyze submits a resolved file for analysis and returns the structured
// result, or a classified ServiceError.
func (c *Client) Analyze(ctx context.Context, filePath string, documentID int64) (*Result, error) {
	body, err := json.Marshal(analyzeRequest{FilePath: filePath, DocumentID: documentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze-document", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Kind: ErrorKindUnreachable, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServiceError{
			Kind:       ErrorKindErrorResponse,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	return buildResult(parsed), nil
}

func classifyTransportError(err error) *ServiceError {
	kind := ErrorKindUnreachable

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		kind = ErrorKindTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrorKindTimeout
	}

	return &ServiceError{Kind: kind, Message: err.Error()}
}

func buildResult(parsed analyzeResponse) *Result {
	result := &Result{}

	if parsed.Summary != nil {
		result.Summary = &model.Summary{
			Content:    parsed.Summary.TextualSummary,
			Confidence: parsed.Summary.ConfidenceScore,
		}
	}

	if parsed.Category != nil {
		result.CategoryName = strings.TrimSpace(parsed.Category.Name)
	}

	for _, point := range parsed.ExtractedData {
		result.DataPoints = append(result.DataPoints, model.DataPoint{
			Key:               point.Key,
			Value:             string(point.Value),
			Unit:              point.Unit,
			Page:              point.Page.number,
			Confidence:        point.ConfidenceScore,
			ChartType:         model.ParseChartType(point.ChartType),
			IndicatorCategory: model.ParseIndicatorCategory(point.IndicatorCategory),
		})
	}

	return result
}
