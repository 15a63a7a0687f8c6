// Package server exposes the bridge operations over HTTP. The routes mirror
// the direct backend's API so existing clients work unchanged regardless of
// which protocol the configured backend speaks.
package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prajwal-kadam12/ReqGen/bridge"
	"github.com/prajwal-kadam12/ReqGen/errors"
	"github.com/prajwal-kadam12/ReqGen/logger"
)

// AudioFieldName is the multipart field clients send audio files under.
const AudioFieldName = "audio"

// Server is the HTTP surface in front of a Bridge.
type Server struct {
	engine *gin.Engine
	bridge *bridge.Bridge
	log    *logger.Logger
}

// New creates the HTTP surface for a bridge.
func New(b *bridge.Bridge, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		bridge: b,
		log:    log.WithComponent("server"),
	}

	s.engine.Use(gin.Recovery(), requestID(), s.requestLogger())

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/transcribe", s.handleTranscribe)
	api.POST("/summarize", s.handleSummarize)
	api.POST("/process-audio", s.handleProcessAudio)
	api.POST("/generate-document", s.handleGenerateDocument)
	api.POST("/test-upload", s.handleTestUpload)

	return s
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on addr until the process exits.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.engine.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	desc := s.bridge.Descriptor()
	healthy := s.bridge.Healthy(c.Request.Context())

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":   status,
		"endpoint": desc.BaseURL,
		"mode":     desc.Mode.String(),
	})
}

func (s *Server) handleTranscribe(c *gin.Context) {
	data, header, ok := s.readAudio(c)
	if !ok {
		return
	}
	result, err := s.bridge.Transcribe(c.Request.Context(), data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, result)
}

func (s *Server) handleSummarize(c *gin.Context) {
	var req struct {
		Text     string `json:"text"`
		Strategy string `json:"strategy"`
		Quality  string `json:"quality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidRequest("request body is not valid JSON"))
		return
	}
	result, err := s.bridge.Summarize(c.Request.Context(), req.Text, req.Strategy, req.Quality)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, result)
}

func (s *Server) handleProcessAudio(c *gin.Context) {
	data, header, ok := s.readAudio(c)
	if !ok {
		return
	}
	result, err := s.bridge.ProcessAudio(c.Request.Context(), data, header.Filename,
		header.Header.Get("Content-Type"), c.PostForm("strategy"), c.PostForm("quality"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, result)
}

func (s *Server) handleGenerateDocument(c *gin.Context) {
	var req struct {
		Text         string `json:"text"`
		DocumentType string `json:"document_type"`
		Metadata     string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidRequest("request body is not valid JSON"))
		return
	}
	result, err := s.bridge.GenerateDocument(c.Request.Context(), req.Text, req.DocumentType, req.Metadata)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, result)
}

func (s *Server) handleTestUpload(c *gin.Context) {
	data, header, ok := s.readAudio(c)
	if !ok {
		return
	}
	result, err := s.bridge.CheckUpload(c.Request.Context(), data, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, result)
}

// readAudio extracts the uploaded file from the request, answering the
// client itself on failure.
func (s *Server) readAudio(c *gin.Context) ([]byte, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile(AudioFieldName)
	if err != nil {
		RespondWithError(c, errors.InvalidRequest("multipart field "+AudioFieldName+" is required"))
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(c, errors.Internal(err))
		return nil, nil, false
	}
	return data, header, true
}

// requestID injects a unique X-Request-Id header into every request.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str(logger.FieldRequestID, c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int(logger.FieldStatus, c.Writer.Status()).
			Int64(logger.FieldDuration, time.Since(start).Milliseconds()).
			Msg("request")
	}
}
