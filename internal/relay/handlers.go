// Package relay provides the pass-through HTTP relay that fetches GeoJSON
// payloads from signed storage URLs on behalf of clients that cannot reach
// them directly.
package relay

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// FetchHandler handles POST requests carrying a signed URL and relays the
// payload behind it. The relay performs no transformation of the payload
// body beyond re-serialization inside the response envelope.
type FetchHandler struct {
	upstream     *http.Client
	maxBodyBytes int64
}

// NewFetchHandler creates a new fetch handler. upstreamTimeout bounds the
// outbound request to storage.
func NewFetchHandler(upstreamTimeout time.Duration, maxBodyBytes int64) *FetchHandler {
	return &FetchHandler{
		upstream:     &http.Client{Timeout: upstreamTimeout},
		maxBodyBytes: maxBodyBytes,
	}
}

type fetchRequest struct {
	SignedURL string `json:"signedURL"`
}

// ServeHTTP handles incoming fetch requests
func (h *FetchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.New().String()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req fetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SignedURL == "" {
		writeError(w, http.StatusBadRequest, "signedURL is required")
		slog.Error("Missing or unreadable signedURL", "req_id", reqID, "err", err)
		return
	}

	slog.Info("Relaying fetch", "req_id", reqID, "signed_url", req.SignedURL)

	upstreamReq, err := http.NewRequestWithContext(r.Context(), http.MethodGet, req.SignedURL, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		slog.Error("Failed to build upstream request", "req_id", reqID, "err", err)
		return
	}

	resp, err := h.upstream.Do(upstreamReq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		slog.Error("Upstream request failed", "req_id", reqID, "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Mirror the upstream status so the client can tell an expired
		// signed URL from a relay fault.
		writeError(w, resp.StatusCode, "Failed to fetch GeoJSON: "+resp.Status)
		slog.Error("Upstream returned non-success status", "req_id", reqID, "status", resp.Status)
		return
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		slog.Error("Failed to read upstream body", "req_id", reqID, "err", err)
		return
	}
	if !json.Valid(payload) {
		writeError(w, http.StatusInternalServerError, "upstream returned invalid JSON")
		slog.Error("Upstream body is not valid JSON", "req_id", reqID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    json.RawMessage(payload),
	})
	slog.Info("Relayed payload", "req_id", reqID, "bytes", len(payload))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}
