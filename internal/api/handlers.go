package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	verrors "github.com/seqvarlab/varnorm/core/errors"
	"github.com/seqvarlab/varnorm/core/models"
	"github.com/seqvarlab/varnorm/core/translate"
	"github.com/seqvarlab/varnorm/internal/logging"
	"github.com/seqvarlab/varnorm/internal/server"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Timestamp string `json:"timestamp"`
}

// TranslateRequest is the request body for translation.
type TranslateRequest struct {
	Expression string `json:"expression"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Normalize  *bool  `json:"normalize,omitempty"`
	Validate   *bool  `json:"validate,omitempty"`
	Assembly   string `json:"assembly,omitempty"`
}

// TranslateResult is the result of a translation. Expressions holds
// the equivalent renderings in the requested target format.
type TranslateResult struct {
	Expressions []string       `json:"expressions,omitempty"`
	Allele      *models.Allele `json:"allele,omitempty"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

var startTime = time.Now()

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}

	respond(w, http.StatusOK, map[string]interface{}{
		"name":    "varnorm",
		"version": Version,
		"endpoints": []string{
			"GET /health",
			"POST /v1/translate",
			"POST /v1/identify",
			"GET /v1/sequence/{id}",
			"GET /v1/sequence/{id}/metadata",
			"WS /v1/ws/translate",
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	respond(w, http.StatusOK, HealthInfo{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
	})
}

func handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}
	if !server.ValidateContentType(r.Header.Get("Content-Type"), []string{"application/json"}) {
		respondError(w, http.StatusUnsupportedMediaType, "INVALID_CONTENT_TYPE", "Content-Type must be application/json")
		return
	}

	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if strings.TrimSpace(req.Expression) == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "expression is required")
		return
	}

	start := time.Now()
	opts := translateOptions(req)
	allele, err := engine.Translator.TranslateFrom(r.Context(), req.Expression, req.From, opts...)
	if err != nil {
		respondTranslateError(w, err)
		return
	}

	result := TranslateResult{Allele: allele}
	if req.To != "" {
		exprs, err := engine.Translator.TranslateTo(r.Context(), allele, req.To, opts...)
		if err != nil {
			respondTranslateError(w, err)
			return
		}
		result.Expressions = exprs
	}

	logging.Translation(req.From, req.To, req.Expression, time.Since(start))
	respond(w, http.StatusOK, result)
}

func handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST is allowed")
		return
	}
	if !server.ValidateContentType(r.Header.Get("Content-Type"), []string{"application/json"}) {
		respondError(w, http.StatusUnsupportedMediaType, "INVALID_CONTENT_TYPE", "Content-Type must be application/json")
		return
	}

	var allele models.Allele
	if err := json.NewDecoder(r.Body).Decode(&allele); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if allele.Location == nil || allele.State == nil {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "allele requires location and state")
		return
	}

	if err := translate.Identify(&allele); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "IDENTIFY_FAILED", err.Error())
		return
	}

	respond(w, http.StatusOK, &allele)
}

// handleSequence serves refget-style sequence slices and metadata from
// the local repository.
func handleSequence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/sequence/")
	if id == "" {
		respondError(w, http.StatusBadRequest, "MISSING_ID", "Sequence ID is required")
		return
	}

	if rest, ok := strings.CutSuffix(id, "/metadata"); ok {
		handleSequenceMetadata(w, r, rest)
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
		return
	}

	seq, err := engine.Proxy.GetSequence(r.Context(), id, start, end)
	if err != nil {
		respondTranslateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(seq))
}

func handleSequenceMetadata(w http.ResponseWriter, r *http.Request, id string) {
	meta, err := engine.Proxy.GetMetadata(r.Context(), id)
	if err != nil {
		respondTranslateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"metadata": map[string]interface{}{
			"length":  meta.Length,
			"aliases": meta.Aliases,
		},
	})
}

func parseRange(r *http.Request) (int, int, error) {
	start, end := 0, -1
	if s := r.URL.Query().Get("start"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, err
		}
		start = n
	}
	if s := r.URL.Query().Get("end"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, err
		}
		end = n
	}
	return start, end, nil
}

func translateOptions(req TranslateRequest) []translate.Option {
	var opts []translate.Option
	if req.Normalize != nil {
		opts = append(opts, translate.WithNormalize(*req.Normalize))
	}
	if req.Validate != nil {
		opts = append(opts, translate.WithValidation(*req.Validate))
	}
	if req.Assembly != "" {
		opts = append(opts, translate.WithAssemblyName(req.Assembly))
	}
	return opts
}

// respondTranslateError maps domain errors onto HTTP statuses.
func respondTranslateError(w http.ResponseWriter, err error) {
	switch {
	case verrors.Is(err, verrors.ErrSyntax):
		respondError(w, http.StatusBadRequest, "INVALID_EXPRESSION", err.Error())
	case verrors.Is(err, verrors.ErrReferenceMismatch):
		respondError(w, http.StatusUnprocessableEntity, "REFERENCE_MISMATCH", err.Error())
	case verrors.Is(err, verrors.ErrMissingData):
		respondError(w, http.StatusUnprocessableEntity, "MISSING_DATA", err.Error())
	case verrors.Is(err, verrors.ErrUnresolvedReference):
		respondError(w, http.StatusBadRequest, "UNRESOLVED_REFERENCE", err.Error())
	case verrors.Is(err, verrors.ErrNotFound), verrors.Is(err, verrors.ErrLookup):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case verrors.Is(err, verrors.ErrUnsupported):
		respondError(w, http.StatusBadRequest, "UNSUPPORTED", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
