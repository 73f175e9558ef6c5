package relay

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gyanova/gyanova/internal/models"
)

// MaxRequestBytes caps the relay request body
const MaxRequestBytes = 1 << 20

// Handler serves the relay over HTTP
type Handler struct {
	relay *Relay
}

// NewHandler creates a Handler for r
func NewHandler(r *Relay) *Handler {
	return &Handler{relay: r}
}

// ServeHTTP answers POST {"question": string} with {"text"} or {"error"}.
// Every fault is converted to a JSON error here; nothing escapes to the client raw.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.relay.logger

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("relay_panic", "panic", rec, "path", r.URL.Path)
			writeJSON(w, http.StatusInternalServerError, models.AnswerResponse{Error: MsgServerBusy})
		}
	}()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, models.AnswerResponse{Error: MsgMethodNotAllowed})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		logger.Error("relay_read_body_failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, models.AnswerResponse{Error: MsgServerBusy})
		return
	}

	question, err := ParseQuestion(body)
	if err == nil {
		var text string
		text, err = h.relay.Answer(r.Context(), question)
		if err == nil {
			writeJSON(w, http.StatusOK, models.AnswerResponse{Text: text})
			return
		}
	}

	status, msg := Classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("relay_request_failed", "error", err, "status", status)
	} else {
		logger.Debug("relay_request_rejected", "error", err, "status", status)
	}
	writeJSON(w, status, models.AnswerResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
