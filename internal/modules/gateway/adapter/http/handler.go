package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/jannikanker/OhHellCardGame/internal/modules/gateway/domain"
	"github.com/jannikanker/OhHellCardGame/internal/modules/gateway/ws"
	"github.com/jannikanker/OhHellCardGame/pkg/logger"
	"github.com/jannikanker/OhHellCardGame/pkg/service"
)

// Handler handles HTTP/WebSocket requests
type Handler struct {
	useCase domain.GatewayUseCase
	manager *ws.Manager
	userSvc service.UserService
}

// NewHandler creates a new HTTP handler
func NewHandler(useCase domain.GatewayUseCase, manager *ws.Manager, userSvc service.UserService) *Handler {
	return &Handler{
		useCase: useCase,
		manager: manager,
		userSvc: userSvc,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// HandleWebSocket handles websocket requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Create context with Request ID for WebSocket
	ctx := logger.WebSocketContext(r)
	requestID := logger.GetRequestID(ctx)

	logger.Info(ctx).
		Str("remote_addr", r.RemoteAddr).
		Msg("WebSocket connection request")

	// 1. Extract token from query param or header
	token := r.URL.Query().Get("token")
	if token == "" {
		logger.Warn(ctx).Msg("Missing auth token")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// 2. Validate token
	userID, username, email, _, err := h.userSvc.ValidateToken(r.Context(), token)
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Msg("Token validation failed")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	actor := service.GameActor{UserID: userID, Email: email, Name: username}

	// 3. Upgrade connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("WebSocket upgrade failed")
		return
	}

	logger.Info(ctx).
		Int64("user_id", userID).
		Str("email", email).
		Msg("WebSocket connection established")

	// 4. Register client
	client := h.manager.Register(conn, userID)

	// Start pumps
	go client.WritePump()
	go client.ReadPump(func(userID int64, message []byte) {
		// Create new context with Request ID for each message
		msgCtx := logger.WithRequestID(context.Background(), logger.GenerateRequestID())
		msgCtx = logger.WithFields(msgCtx, map[string]interface{}{
			"user_id":       userID,
			"ws_request_id": requestID, // Original WS connection ID
		})

		logger.Debug(msgCtx).
			Int("message_size", len(message)).
			Msg("WebSocket message received")

		response, err := h.useCase.HandleMessage(msgCtx, actor, message)
		if err != nil {
			logger.Error(msgCtx).
				Err(err).
				Msg("Failed to handle message")

			errorResp := map[string]interface{}{
				"type":  "error",
				"error": err.Error(),
			}
			if jsonResp, err := json.Marshal(errorResp); err == nil {
				h.manager.SendToUser(userID, jsonResp)
			}
		} else if response != nil {
			h.manager.SendToUser(userID, response)
		}
	})
}
