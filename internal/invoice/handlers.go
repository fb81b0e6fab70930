package invoice

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// writeJSON writes a JSON response body
func writeJSON(w http.ResponseWriter, status int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeImagePayload turns the request's base64 image field into raw bytes.
// Accepts both bare base64 and data URLs; the data-URL MIME type wins,
// otherwise image/jpeg is assumed (what browser canvas exports default to).
func decodeImagePayload(image string) ([]byte, string, error) {
	contentType := "image/jpeg"
	payload := image

	if strings.HasPrefix(image, "data:") {
		header, rest, ok := strings.Cut(image, ",")
		if !ok {
			return nil, "", errors.New("malformed data URL")
		}
		payload = rest
		header = strings.TrimPrefix(header, "data:")
		if mime, _, found := strings.Cut(header, ";"); found && mime != "" {
			contentType = mime
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.New("invalid base64 image data")
	}
	return data, contentType, nil
}

// handleLogin mints an access token for the configured credential pair
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		slog.Warn("Login rejected", "username", req.Username)
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"accessToken": token})
}

// handleExtractInvoice runs the synchronous extraction path
func (s *Server) handleExtractInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		writeError(w, http.StatusBadRequest, "An image in base64 format is required")
		return
	}

	imageData, contentType, err := decodeImagePayload(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := s.service.Extract(imageData, contentType)
	if err != nil {
		slog.Error("Error extracting invoice", "user", Principal(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// handleQueueInvoice accepts an invoice for asynchronous extraction and
// responds with the job id before any extraction work happens
func (s *Server) handleQueueInvoice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image == "" {
		writeError(w, http.StatusBadRequest, "An image in base64 format is required")
		return
	}

	imageData, contentType, err := decodeImagePayload(req.Image)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.service.Enqueue(imageData, contentType)
	if err != nil {
		slog.Error("Error queueing invoice", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not queue invoice")
		return
	}

	slog.Info("Invoice queued", "job_id", job.ID, "user", Principal(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Invoice queued for processing",
		"jobId":     job.ID,
		"statusUrl": "/api/job-status/" + job.ID,
	})
}

// handleJobStatus returns the current snapshot of a job
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.service.JobStatus(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Job not found")
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// handleSubscribe registers a webhook subscriber URL
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	subscriptions, err := s.registry.Subscribe(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, "A webhook url is required")
		return
	}

	slog.Info("Webhook subscribed", "url", req.URL, "subscribers", len(subscriptions))
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "Webhook subscription registered",
		"activeSubscriptions": subscriptions,
	})
}

// handleListEvents returns the recent event history, newest first
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events := s.events.List()
	if events == nil {
		events = []Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleInboundWebhook is a generic sink for deliveries from other systems
func (s *Server) handleInboundWebhook(w http.ResponseWriter, r *http.Request) {
	n, _ := io.Copy(io.Discard, r.Body)
	slog.Info("Inbound webhook received", "bytes", n)
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// handleHealth is the liveness endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "facturai-api",
	})
}
