package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/esbind-io/esbind/internal/domain"
	domdoc "github.com/esbind-io/esbind/internal/domain/document"
	"github.com/esbind-io/esbind/internal/domain/document/patch"
	domidx "github.com/esbind-io/esbind/internal/domain/index"
	documentuc "github.com/esbind-io/esbind/internal/usecase/document"
	healthuc "github.com/esbind-io/esbind/internal/usecase/health"
	indexuc "github.com/esbind-io/esbind/internal/usecase/index"
	searchuc "github.com/esbind-io/esbind/internal/usecase/search"
)

const maxBulkSize = 1000

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the index, document and search services over HTTP.
type Server struct {
	indices       *indexuc.Service
	documents     *documentuc.Service
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	indices *indexuc.Service,
	documents *documentuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		indices:   indices,
		documents: documents,
		search:    search,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		versionConflictHandler,
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrIndexNotFound, http.StatusNotFound, CodeIndexNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeIndexNotFound),
		sentinelHandler(domain.ErrIndexExists, http.StatusConflict, CodeIndexAlreadyExists),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrVectorSearchNotConfigured,
			http.StatusNotImplemented, CodeVectorSearchNotConfigured),
	}
	return s
}

// Register mounts all API routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/reindex", s.Reindex)

		r.Route("/indices/{index}", func(r chi.Router) {
			r.Put("/", s.CreateIndex)
			r.Get("/", s.GetIndex)
			r.Delete("/", s.DeleteIndex)
			r.Post("/ensure", s.EnsureIndex)
			r.Put("/aliases/{alias}", s.PutAlias)
			r.Post("/refresh", s.RefreshIndex)

			r.Post("/search", s.SearchDocuments)
			r.Post("/count", s.CountDocuments)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/bulk", s.BulkSave)
				r.Post("/delete_by_query", s.DeleteByQuery)
				r.Put("/{id}", s.SaveDocument)
				r.Get("/{id}", s.GetDocument)
				r.Patch("/{id}", s.PatchDocument)
				r.Delete("/{id}", s.DeleteDocument)
			})
		})
	})
}

// CreateIndex handles PUT /api/v1/indices/{index}.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	var req createIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m, err := mappingFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	if err := s.indices.Create(r.Context(), name, m); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, indexResponse{Index: name, Created: true})
}

// EnsureIndex handles POST /api/v1/indices/{index}/ensure.
func (s *Server) EnsureIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	var req createIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	m, err := mappingFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	created, err := s.indices.Ensure(r.Context(), name, m)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, indexResponse{Index: name, Created: created})
}

// GetIndex handles GET /api/v1/indices/{index}.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")

	exists, err := s.indices.Exists(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, CodeIndexNotFound, "index not found")
		return
	}

	writeJSON(w, http.StatusOK, existsResponse{Index: name, Exists: true})
}

// DeleteIndex handles DELETE /api/v1/indices/{index}.
func (s *Server) DeleteIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.indices.Drop(r.Context(), chi.URLParam(r, "index")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PutAlias handles PUT /api/v1/indices/{index}/aliases/{alias}.
func (s *Server) PutAlias(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "index")
	alias := chi.URLParam(r, "alias")

	if err := s.indices.Alias(r.Context(), name, alias); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RefreshIndex handles POST /api/v1/indices/{index}/refresh.
// The index path segment may be a comma-separated list.
func (s *Server) RefreshIndex(w http.ResponseWriter, r *http.Request) {
	coords, err := coordinatesFromPath(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	if err := s.indices.Refresh(r.Context(), coords); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reindex handles POST /api/v1/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	var req reindexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Source == "" || req.Dest == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "source and dest are required")
		return
	}

	summary, err := s.indices.Reindex(r.Context(), req.Source, req.Dest)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reindexToResponse(summary))
}

// SaveDocument handles PUT /api/v1/indices/{index}/documents/{id}.
func (s *Server) SaveDocument(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	id := chi.URLParam(r, "id")

	var req saveDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	doc, err := domdoc.New(id, req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	if req.IfSeqNo != nil && req.IfPrimaryTerm != nil {
		doc = doc.WithConcurrency(*req.IfSeqNo, *req.IfPrimaryTerm)
	}

	saved, created, err := s.documents.Save(r.Context(), index, doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", fmt.Sprintf("/api/v1/indices/%s/documents/%s", index, id))
	}
	writeJSON(w, status, documentToResponse(saved))
}

// GetDocument handles GET /api/v1/indices/{index}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documents.Get(r.Context(), chi.URLParam(r, "index"), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// PatchDocument handles PATCH /api/v1/indices/{index}/documents/{id}.
func (s *Server) PatchDocument(w http.ResponseWriter, r *http.Request) {
	var req patchDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p, err := patch.New(req.Set, req.Remove)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	doc, err := s.documents.Update(r.Context(), chi.URLParam(r, "index"), chi.URLParam(r, "id"), p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(doc))
}

// DeleteDocument handles DELETE /api/v1/indices/{index}/documents/{id}.
// Guarded deletes pass if_seq_no and if_primary_term query parameters.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	seqNo, err := queryInt64(r, "if_seq_no", domdoc.UnsetSeq)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}
	primaryTerm, err := queryInt64(r, "if_primary_term", domdoc.UnsetSeq)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	err = s.documents.Delete(r.Context(), chi.URLParam(r, "index"), chi.URLParam(r, "id"), seqNo, primaryTerm)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkSave handles POST /api/v1/indices/{index}/documents/bulk.
func (s *Server) BulkSave(w http.ResponseWriter, r *http.Request) {
	var req bulkSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Documents) == 0 || len(req.Documents) > maxBulkSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", maxBulkSize))
		return
	}

	docs := make([]domdoc.Document, 0, len(req.Documents))
	for _, item := range req.Documents {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		doc, err := domdoc.New(item.ID, item.Source)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed,
				fmt.Sprintf("document %s: %s", item.ID, err))
			return
		}
		docs = append(docs, doc)
	}

	saved, err := s.documents.SaveAll(r.Context(), chi.URLParam(r, "index"), docs)
	if err != nil && len(saved) == 0 {
		s.handleDomainError(w, err)
		return
	}

	resp := bulkSaveResponse{
		Items:  make([]documentResponse, len(saved)),
		Saved:  len(saved),
		Failed: len(docs) - len(saved),
	}
	for i, d := range saved {
		resp.Items[i] = documentToResponse(d)
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteByQuery handles POST /api/v1/indices/{index}/documents/delete_by_query.
func (s *Server) DeleteByQuery(w http.ResponseWriter, r *http.Request) {
	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := filtersFromBody(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	deleted, err := s.documents.DeleteByQuery(r.Context(), chi.URLParam(r, "index"), filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteByQueryResponse{Deleted: deleted})
}

// SearchDocuments handles POST /api/v1/indices/{index}/search.
// The index path segment may be a comma-separated list.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	coords, err := coordinatesFromPath(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	var req searchDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	searchReq, err := searchRequestFromBody(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	hits, err := s.search.Search(r.Context(), coords, searchReq)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hitsToResponse(hits))
}

// CountDocuments handles POST /api/v1/indices/{index}/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request) {
	coords, err := coordinatesFromPath(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	var req filtersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := filtersFromBody(req.Filters)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	count, err := s.search.Count(r.Context(), coords, filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func coordinatesFromPath(segment string) (domidx.Coordinates, error) {
	names := strings.Split(segment, ",")
	coords, err := domidx.New(names...)
	if err != nil {
		return domidx.Coordinates{}, fmt.Errorf("index path: %w", err)
	}
	return coords, nil
}

func queryInt64(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}

	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrIndexNotFound,
		domain.ErrNotFound,
		domain.ErrIndexExists,
		domain.ErrVersionConflict,
		domain.ErrInvalidSchema,
		domain.ErrInvalidQuery,
		domain.ErrEmbeddingProviderError,
		domain.ErrVectorSearchNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// versionConflictHandler handles optimistic locking failures with the
// engine's current seq_no and primary_term in the response body.
func versionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrVersionConflict) {
		return false
	}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) && conflict.SeqNo >= 0 {
		seqNo, primaryTerm := conflict.SeqNo, conflict.PrimaryTerm
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Code:        CodeVersionConflict,
			Message:     msg,
			SeqNo:       &seqNo,
			PrimaryTerm: &primaryTerm,
		})
		return true
	}
	writeError(w, http.StatusConflict, CodeVersionConflict, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
