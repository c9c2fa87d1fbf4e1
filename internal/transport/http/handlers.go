package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"valentinelink/internal/domain"
	"valentinelink/internal/metrics"
	"valentinelink/internal/service"
)

// Handler holds the HTTP handlers for the valentine link API
type Handler struct {
	links   service.LinkService
	metrics *metrics.Metrics
}

// NewHandler creates a new HTTP handler
func NewHandler(links service.LinkService, m *metrics.Metrics) *Handler {
	return &Handler{
		links:   links,
		metrics: m,
	}
}

// CreateLink handles POST /api/valentine
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[ERROR] Failed to read create request body: %v", err)
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	result, err := h.links.CreateLink(r.Context(), payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidConfig) {
			log.Printf("[ERROR] Invalid config in create request: %v", err)
			h.metrics.RequestErrors.WithLabelValues("invalid_config").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[ERROR] Failed to generate short link: %v", err)
		h.metrics.RequestErrors.WithLabelValues("storage").Inc()
		writeError(w, http.StatusInternalServerError, "Failed to generate short link")
		return
	}

	h.metrics.LinksCreated.Inc()
	writeJSON(w, http.StatusOK, result)
}

// GetConfig handles GET /api/valentine?id={id} and returns the raw stored
// configuration document.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	record, err := h.links.GetLinkRecord(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingID):
			h.metrics.RequestErrors.WithLabelValues("missing_id").Inc()
			writeError(w, http.StatusBadRequest, "Missing id parameter")
		case errors.Is(err, service.ErrNotFound):
			h.metrics.RequestErrors.WithLabelValues("not_found").Inc()
			writeError(w, http.StatusNotFound, "Config not found")
		default:
			log.Printf("[ERROR] Failed to get config for id '%s': %v", id, err)
			h.metrics.RequestErrors.WithLabelValues("storage").Inc()
			writeError(w, http.StatusInternalServerError, "Failed to get config")
		}
		return
	}

	h.metrics.LinksResolved.Inc()

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(record.Config); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// ValentineHandler handles both POST and GET on /api/valentine
func (h *Handler) ValentineHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.CreateLink(w, r)
	case http.MethodGet:
		h.GetConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// writeJSON writes a JSON response body with the given status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError writes the API's JSON error envelope
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.ErrorResponse{Error: message})
}
