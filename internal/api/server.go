// Package api exposes the HTTP interface for the blog search service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d5meta/blogsearch/internal/metrics"
	"github.com/d5meta/blogsearch/internal/search"
)

// Client-facing messages kept verbatim from the service contract.
const (
	msgNoMatch        = "No matching blog found."
	msgNoURLs         = "No blog URLs found from sitemap."
	msgInternalError  = "An internal server error occurred."
	msgQueryRequired  = "query is required"
	msgInvalidRequest = "invalid JSON"
)

// Searcher runs one blog search.
type Searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

// Server wires HTTP handlers to the search service.
type Server struct {
	router   chi.Router
	searcher Searcher
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(searcher Searcher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		searcher: searcher,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	// Wide-open CORS is part of the public client contract. Tighten
	// AllowedOrigins before exposing this anywhere that handles credentials.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/search-blog", s.searchBlog)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	// The service keeps no connections open between requests; ready when up.
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ready"})
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Title          string   `json:"title,omitempty"`
	URL            string   `json:"url,omitempty"`
	ContentPreview string   `json:"content_preview,omitempty"`
	FullContent    string   `json:"full_content,omitempty"`
	ImageURLs      []string `json:"image_urls"`
	Message        string   `json:"message,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func (s *Server) searchBlog(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(s.logger, w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeDetail(s.logger, w, http.StatusBadRequest, msgQueryRequired)
		return
	}

	result, err := s.searcher.Search(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("search failed",
			zap.String("query", req.Query),
			zap.Error(err),
		)
		writeDetail(s.logger, w, http.StatusInternalServerError, detailFor(err))
		return
	}

	if !result.Matched {
		writeJSON(s.logger, w, http.StatusOK, searchResponse{
			Message:   msgNoMatch,
			ImageURLs: []string{},
		})
		return
	}

	images := result.Images
	if images == nil {
		images = []string{}
	}
	writeJSON(s.logger, w, http.StatusOK, searchResponse{
		Title:          result.Title,
		URL:            result.URL,
		ContentPreview: result.Preview,
		FullContent:    result.Content,
		ImageURLs:      images,
	})
}

// detailFor maps pipeline failures to their client-facing messages.
func detailFor(err error) string {
	switch {
	case errors.Is(err, search.ErrNoURLs):
		return msgNoURLs
	case errors.Is(err, search.ErrContentFetch),
		errors.Is(err, search.ErrContentExtract):
		return err.Error()
	default:
		return msgInternalError
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			duration := time.Since(start)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			)
			metrics.ObserveHTTPRequest(r.Method, strconv.Itoa(ww.status), r.URL.Path, duration)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeDetail(logger, w, http.StatusInternalServerError, msgInternalError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeDetail(logger *zap.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(logger, w, status, map[string]string{"detail": msg})
}
