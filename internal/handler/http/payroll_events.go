package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventsHandler interface {
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type eventsHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
}

// NewEventsHandler streams generation progress from hub to its subscribers.
func NewEventsHandler(hub *sse.Hub, jwtService jwt.Service) EventsHandler {
	return &eventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
	}
}

// GetSSEToken generates a short-lived token for SSE connections
func (h *eventsHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(principal.UserID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles the SSE connection for payroll progress
func (h *eventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot send headers, so the token travels in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(userID)
	defer cleanup()

	slog.DebugContext(r.Context(), "Payroll progress stream opened", "user_id", userID)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"userId\":%q}\n\n", userID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
