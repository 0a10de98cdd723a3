// Package chi wires the gateway's HTTP surface: document CRUD, tenant
// search, health, and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docgate/internal/domain"
	"github.com/kailas-cloud/docgate/internal/version"

	documentuc "github.com/kailas-cloud/docgate/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docgate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docgate/internal/usecase/search"
)

// Server holds the use case services behind the HTTP handlers.
type Server struct {
	documents *documentuc.Service
	search    *searchuc.Service
	health    *healthuc.Service
	logger    *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		documents: documents,
		search:    search,
		health:    health,
		logger:    logger,
	}
}

// Register mounts all routes on the router. searchLimit wraps only the
// search endpoint; writes and health are not rate limited.
func (s *Server) Register(r chi.Router, searchLimit func(http.Handler) http.Handler) {
	r.Post("/documents", s.createDocument)
	r.Get("/documents/{docID}", s.getDocument)
	r.Delete("/documents/{docID}", s.deleteDocument)
	r.With(searchLimit).Get("/search", s.searchDocuments)
	r.Get("/health", s.healthCheck)
	r.Handle("/metrics", promhttp.Handler())
}

// createDocument handles POST /documents.
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var doc domain.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := s.documents.Index(r.Context(), &doc); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "success", ID: doc.ID})
}

// getDocument handles GET /documents/{docID}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	doc, err := s.documents.Get(r.Context(), docID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// deleteDocument handles DELETE /documents/{docID}. Idempotent: deleting an
// absent id still reports success.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")

	if err := s.documents.Delete(r.Context(), docID); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted", ID: docID})
}

// searchDocuments handles GET /search?q=&tenant=&page=&size=.
func (s *Server) searchDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid page parameter", err.Error())
		return
	}
	size, err := queryInt(q.Get("size"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid size parameter", err.Error())
		return
	}

	req := domain.SearchRequest{
		TenantID:  q.Get("tenant"),
		QueryText: q.Get("q"),
		Page:      page,
		PageSize:  size,
	}

	resp, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// healthCheck handles GET /health. Always 200: unreachable collaborators
// are reported as false, never as an error.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	writeJSON(w, http.StatusOK, healthResponse{
		Status: string(report.Status),
		Index:  report.Checks[healthuc.CheckIndex],
		Cache:  report.Checks[healthuc.CheckCache],
		Version: versionInfo{
			Branch: version.Branch,
		},
	})
}

// handleDomainError maps domain errors onto HTTP status codes and payloads.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, domain.ErrDocumentNotFound):
		writeJSON(w, http.StatusNotFound, notFoundResponse{Detail: "Document not found"})
	default:
		s.logger.Error("Store operation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Document store unavailable", err.Error())
	}
}

// --- Wire types ---

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type notFoundResponse struct {
	Detail string `json:"detail"`
}

type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type versionInfo struct {
	Branch string `json:"branch"`
}

type healthResponse struct {
	Status  string      `json:"status"`
	Index   bool        `json:"index"`
	Cache   bool        `json:"cache"`
	Version versionInfo `json:"version"`
}

// --- Helpers ---

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, details ...string) {
	resp := errorResponse{Message: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	writeJSON(w, status, resp)
}
