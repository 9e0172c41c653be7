package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/skilloww/cs2panel/services"
)

// maxWebhookBytes caps plugin event payloads.
const maxWebhookBytes = 1 << 20

type WebhookHandler struct {
	webhookService services.WebhookService
}

func NewWebhookHandler(webhookService services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// HandleEvent ingests one plugin event. Authentication is carried in
// the body (matchid plus api_key), not in a session.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	eventName, err := h.webhookService.ProcessEvent(r.Context(), body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	slog.Info("plugin event processed",
		slog.String("event", eventName),
		slog.String("path", r.URL.Path))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"received": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
