package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/internal/apierror"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	// Chat frames queued per client before the client is told it is busy.
	maxPendingChats = 4
)

// ChatHandler answers one chat request with a fully materialized reply
type ChatHandler interface {
	Handle(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// Hub maintains the set of active clients
type Hub struct {
	// Registered clients.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	stopped chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	chat           ChatHandler
	requestTimeout time.Duration
	upgrader       websocket.Upgrader
	validator      *MessageValidator

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub. allowedOrigins may contain "*".
func NewHub(chat ChatHandler, requestTimeout time.Duration, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		stopped:        make(chan struct{}),
		chat:           chat,
		requestTimeout: requestTimeout,
		validator:      NewMessageValidator(),
		logger:         logger,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin:     originChecker(allowedOrigins),
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(strings.TrimRight(o, "/"), strings.TrimRight(origin, "/")) {
				return true
			}
		}
		return false
	}
}

// Run starts the hub's main loop and closes every client once ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("clientID", client.id))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				client.stop()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("clientID", client.id))

		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				client.stop()
			}
			h.mu.Unlock()
			h.logger.Info("Hub stopped")
			return
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Chat frames waiting for the worker.
	chats chan *ChatMessage

	// Closed when the client is unregistered.
	done     chan struct{}
	stopOnce sync.Once

	id     string
	logger *zap.Logger
}

func (c *Client) stop() {
	c.stopOnce.Do(func() { close(c.done) })
}

// HandleWebSocket handles websocket requests from the peer.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := hub.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", zap.Error(err))
		// the upgrader has already written an HTTP error
		return nil
	}

	id := uuid.NewString()
	client := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan WriteData, 16),
		chats:  make(chan *ChatMessage, maxPendingChats),
		done:   make(chan struct{}),
		id:     id,
		logger: logger.With(zap.String("clientID", id)),
	}

	select {
	case hub.register <- client:
	case <-hub.stopped:
		conn.Close()
		return nil
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.chatWorker()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the worker.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn("Received unsupported message type", zap.Int("type", messageType))
			c.writeJSON(CreateErrorMessage("", apierror.CodeInvalidRequest, "only text frames are supported"))
			continue
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the send queue to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// processMessage processes incoming messages from the client
func (c *Client) processMessage(message []byte) {
	parsed, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected message", zap.Error(err))
		c.writeJSON(CreateErrorMessage("", apierror.CodeInvalidRequest, err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *PingMessage:
		c.writeJSON(CreatePongMessage(msg.MessageID, msg.Data))
	case *ChatMessage:
		if msg.MessageID == "" {
			msg.MessageID = uuid.NewString()
		}
		select {
		case c.chats <- msg:
		default:
			c.writeJSON(CreateErrorMessage(msg.MessageID, "busy", "too many pending chat messages"))
		}
	}
}

// chatWorker answers chat frames one at a time so replies keep their order
func (c *Client) chatWorker() {
	for {
		select {
		case msg := <-c.chats:
			c.answer(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Client) answer(msg *ChatMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), c.hub.requestTimeout)
	defer cancel()

	// stop work for a client that went away
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	resp, err := c.hub.chat.Handle(ctx, domain.ChatRequest{Message: msg.Message})
	if err != nil {
		apiErr, status := apierror.FromError(err)
		c.logger.Error("Chat request failed",
			zap.String("messageID", msg.MessageID),
			zap.Int("status", status),
			zap.Error(err))
		c.writeJSON(CreateErrorMessage(msg.MessageID, apiErr.Code, apiErr.Message))
		return
	}

	c.logger.Info("Chat request answered",
		zap.String("messageID", msg.MessageID),
		zap.Int("messages", len(resp.Messages)),
		zap.Duration("took", time.Since(start)))
	c.writeJSON(CreateChatResponseMessage(msg.MessageID, resp))
}

// writeJSON queues v for the write pump; dropped once the client is gone
func (c *Client) writeJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	case <-c.done:
	}
}
