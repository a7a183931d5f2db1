// Package handlers provides the HTTP endpoints of the drug info service.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime"

	"github.com/giygas/druginfo/backend"
	"github.com/giygas/druginfo/entities"
	"github.com/giygas/druginfo/formatter"
	"github.com/giygas/druginfo/interfaces"
	"github.com/giygas/druginfo/logging"
	"github.com/giygas/druginfo/metrics"
)

const (
	msgInvalidDrugJSON   = "Please provide a drug name in JSON format."
	msgInvalidFormatJSON = "Please provide a backend response in JSON format."
	msgMissingUpload     = "Please upload an image in the \"file\" field."
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	backend       interfaces.Backend
	cache         interfaces.ResultStore
	validator     interfaces.QueryValidator
	health        interfaces.HealthChecker
	maxUploadSize int64
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(b interfaces.Backend, cache interfaces.ResultStore, validator interfaces.QueryValidator,
	health interfaces.HealthChecker, maxUploadSize int64) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		backend:       b,
		cache:         cache,
		validator:     validator,
		health:        health,
		maxUploadSize: maxUploadSize,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	System map[string]any `json:"system"`
}

// formatRequest is the body of POST /v1/format. Response is a pointer so
// a missing field can be told apart from an empty response.
type formatRequest struct {
	DrugName string  `json:"drug_name"`
	Response *string `json:"response"`
}

// FormatResponse formats a backend payload supplied by the caller
func (h *HTTPHandlerImpl) FormatResponse(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, msgInvalidFormatJSON)
		return
	}
	if req.Response == nil {
		RespondWithError(w, http.StatusBadRequest, "The \"response\" field is required.")
		return
	}

	h.respondWithDocument(w, &entities.DrugInfoResult{DrugName: req.DrugName, Response: *req.Response}, false)
}

// DrugInfo looks up a drug by name, answering from the cache when it can
func (h *HTTPHandlerImpl) DrugInfo(w http.ResponseWriter, r *http.Request) {
	var req entities.DrugInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, http.StatusBadRequest, msgInvalidDrugJSON)
		return
	}

	if err := h.validator.ValidateQuery(entities.Query{DrugName: req.DrugName}); err != nil {
		logging.Warn("Rejected drug name", "drug_name", req.DrugName, "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if cached, ok := h.cache.Lookup(req.DrugName); ok {
		h.respondWithDocument(w, cached, true)
		return
	}

	result, err := h.backend.LookupDrug(r.Context(), req.DrugName)
	if err != nil {
		h.respondWithBackendError(w, err)
		return
	}

	h.cache.Store(req.DrugName, result)
	h.respondWithDocument(w, result, false)
}

// MedicineInfo identifies a medicine from a multipart photo upload.
// Photos are never cached.
func (h *HTTPHandlerImpl) MedicineInfo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		RespondWithError(w, http.StatusBadRequest, msgMissingUpload)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(backend.UploadField)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, msgMissingUpload)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, msgMissingUpload)
		return
	}

	upload := &entities.ImageUpload{Filename: header.Filename, Data: data}
	if err := h.validator.ValidateQuery(entities.Query{Image: upload}); err != nil {
		logging.Warn("Rejected upload", "filename", header.Filename, "size", len(data), "error", err)
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.backend.IdentifyMedicine(r.Context(), upload.Filename, bytes.NewReader(upload.Data))
	if err != nil {
		h.respondWithBackendError(w, err)
		return
	}

	h.respondWithDocument(w, result, false)
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status: status,
		Data:   data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}

func (h *HTTPHandlerImpl) respondWithDocument(w http.ResponseWriter, result *entities.DrugInfoResult, cached bool) {
	doc := formatter.NewDocument(result)
	for kind, n := range formatter.CountByKind(doc.Blocks) {
		metrics.FormattedBlocksTotal.WithLabelValues(kind.String()).Add(float64(n))
	}

	view := doc.View()
	view.Cached = cached
	RespondWithJSON(w, http.StatusOK, view)
}

func (h *HTTPHandlerImpl) respondWithBackendError(w http.ResponseWriter, err error) {
	var be *backend.Error
	if !errors.As(err, &be) {
		logging.Error("Inference backend call failed", "error", err)
	}
	RespondWithError(w, backend.StatusCode(err), backend.UserMessage(err))
}

