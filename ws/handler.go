package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/pdfbrain/pdfbrain-backend/models"
	"github.com/pdfbrain/pdfbrain-backend/services"
	"github.com/pdfbrain/pdfbrain-backend/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dev only, restrict in production
	},
}

// Handler serves the websocket endpoints: document status feeds and the chat
// socket.
type Handler struct {
	hub           *Hub
	db            *gorm.DB
	chat          *services.ChatSessionManager
	gateway       *services.LLMGateway
	maxContentLen int
}

func NewHandler(hub *Hub, db *gorm.DB, chat *services.ChatSessionManager, gateway *services.LLMGateway, maxContentLen int) *Handler {
	return &Handler{
		hub:           hub,
		db:            db,
		chat:          chat,
		gateway:       gateway,
		maxContentLen: maxContentLen,
	}
}

// HandleDocumentWebSocket subscribes a client to status updates of one document.
func (h *Handler) HandleDocumentWebSocket(c *gin.Context) {
	docID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.hub.Register(docID, conn)
	defer h.hub.Unregister(docID, conn)

	sendDirect(conn, nil, gin.H{"type": "connected", "message": "Connected to document " + docID})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// HandleGlobalWebSocket subscribes a client to document-list change signals.
func (h *Handler) HandleGlobalWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.hub.RegisterGlobal(conn)
	defer h.hub.UnregisterGlobal(conn)

	sendDirect(conn, nil, gin.H{"type": "connected", "message": "Connected to global WebSocket"})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

type chatSocketRequest struct {
	RequestID  string `json:"request_id"`
	DocumentID string `json:"document_id"`
	SessionID  string `json:"session_id"`
	Message    string `json:"message"`
}

type socketMessage struct {
	Type      string          `json:"type"`
	Timestamp any             `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// HandleChatWebSocket runs an authenticated chat conversation over a socket.
// Requests are acknowledged immediately and answered asynchronously so a slow
// model call never blocks the read loop.
func (h *Handler) HandleChatWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	claims, err := utils.VerifyToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().Str("user_id", claims.UserID).Msg("chat socket connected")

	// gorilla allows one concurrent writer per connection.
	var writeMu sync.Mutex

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg socketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			sendDirect(conn, &writeMu, gin.H{"type": "error", "error": "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			sendDirect(conn, &writeMu, gin.H{"type": "pong", "timestamp": msg.Timestamp})
		case "chat_request":
			var req chatSocketRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil || strings.TrimSpace(req.Message) == "" {
				sendDirect(conn, &writeMu, gin.H{"type": "error", "error": "invalid chat request"})
				continue
			}
			sendDirect(conn, &writeMu, gin.H{"type": "request_received", "request_id": req.RequestID})
			go h.processChatRequest(conn, &writeMu, req)
		default:
			sendDirect(conn, &writeMu, gin.H{"type": "error", "error": "unknown message type"})
		}
	}

	log.Info().Str("user_id", claims.UserID).Msg("chat socket disconnected")
}

func (h *Handler) processChatRequest(conn *websocket.Conn, writeMu *sync.Mutex, req chatSocketRequest) {
	fail := func(message string) {
		sendDirect(conn, writeMu, gin.H{"type": "error", "request_id": req.RequestID, "error": message})
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		fail("invalid document_id")
		return
	}

	var doc models.Document
	if err := h.db.First(&doc, "id = ?", docID).Error; err != nil {
		fail("document not found")
		return
	}
	if strings.TrimSpace(doc.ExtractedText) == "" {
		fail("no text content available for this document")
		return
	}

	sendDirect(conn, writeMu, gin.H{
		"type":       "status_update",
		"request_id": req.RequestID,
		"status":     "processing",
	})

	sessionID := h.chat.StartOrReuseSession(req.SessionID)
	history, err := h.chat.RecentHistory(docID, sessionID, services.DefaultHistoryLimit)
	if err != nil {
		fail("failed to load chat history")
		return
	}

	answer, err := h.gateway.Answer(context.Background(), req.Message, services.TruncateForModel(doc.ExtractedText, h.maxContentLen), history)
	if err != nil {
		fail("failed to answer question")
		return
	}

	turn, err := h.chat.RecordTurn(docID, sessionID, req.Message, answer)
	if err != nil {
		fail("failed to record chat turn")
		return
	}

	sendDirect(conn, writeMu, gin.H{
		"type":       "chat_response",
		"request_id": req.RequestID,
		"data": gin.H{
			"response":    answer,
			"session_id":  sessionID,
			"document_id": docID,
			"timestamp":   turn.Timestamp.Format(time.RFC3339),
		},
	})
}

func sendDirect(conn *websocket.Conn, mu *sync.Mutex, data interface{}) {
	msg, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("marshal websocket message")
		return
	}
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Debug().Err(err).Msg("websocket write failed")
	}
}
