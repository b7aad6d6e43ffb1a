// Package server exposes the pipeline's HTTP trigger surface.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecodocs/reportpipe/internal/model"
)

// BatchProcessor runs the analysis pipeline over pending documents.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, documentID *int64) (*model.ProcessingReport, error)
}

// Server holds the state for the REST API server.
type Server struct {
	processor BatchProcessor
	router    *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(processor BatchProcessor) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		processor: processor,
		router:    router,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler returns the underlying HTTP handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/api/documents/process", s.handleProcess)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

type processRequest struct {
	DocumentID *int64 `json:"document_id"`
}

// handleProcess triggers a batch run. Individual document failures are part
// of the report and still yield a 200; only orchestration-level errors
// produce a 500.
func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := s.processor.ProcessBatch(c.Request.Context(), req.DocumentID)
	if err != nil {
		slog.Error("batch processing failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}
