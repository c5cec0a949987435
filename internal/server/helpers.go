package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/valpere/cliptran/internal/clipboard"
	"github.com/valpere/cliptran/internal/orchestrator"
	"github.com/valpere/cliptran/internal/translator"
)

func setStreamingHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// writeSSEEvent writes one named SSE event.
func writeSSEEvent(w io.Writer, name string, data []byte) (int, error) {
	return fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}

func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	var (
		cfgErr    *translator.ConfigurationError
		accessErr *clipboard.AccessError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, orchestrator.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrEmptyText), errors.Is(err, orchestrator.ErrInvalidLanguage):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrNoClipboard):
		return http.StatusNotImplemented
	case errors.As(err, &accessErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondWithEngineError(c *gin.Context, err error) {
	respondWithError(c, statusFor(err), err.Error())
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
