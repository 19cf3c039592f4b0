package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/realtime"
	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/service"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/httputil"
)

// EventMessage is the realtime frame a client sends to post to the chat.
const EventMessage = "message"

// ChatHandler serves the chat username check and the chat side of the
// realtime channel.
type ChatHandler struct {
	service *service.ChatService
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  logger,
	}
}

// UserCheckRequest is the body of POST /api/chat/usercheck.
type UserCheckRequest struct {
	User string `json:"user"`
}

// CheckUser handles POST /api/chat/usercheck.
func (h *ChatHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	var req UserCheckRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	if err := h.service.CheckUser(r.Context(), req.User); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Message: "username available",
		Data:    map[string]string{"user": req.User},
	})
}

// HandleMessage is the realtime handler for EventMessage frames.
func (h *ChatHandler) HandleMessage(ctx context.Context, _ *realtime.Client, payload json.RawMessage) error {
	var msg domain.ChatMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return apperrors.InvalidInput("malformed chat message")
	}
	// Clients do not choose the timestamp.
	msg.SentAt = domain.Now()
	return h.service.PostMessage(ctx, msg)
}

// SendLog is a connect hook giving a new client the current chat log.
func (h *ChatHandler) SendLog(_ context.Context, c *realtime.Client) error {
	return c.Send(service.EventMessageLogs, h.service.Messages())
}
