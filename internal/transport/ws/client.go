package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"storyweave/internal/app"
	"storyweave/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection. A connection routes each
// of its messages to the room named in the payload; once a join-room is
// accepted the connection is subscribed to that room's broadcasts.
type Client struct {
	conn    *websocket.Conn
	hub     *app.RoomHub
	connID  string
	session *app.RoomSession // room this connection is subscribed to, nil before join
	send    chan []byte
	done    chan struct{}
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.RoomHub, connID string, logger *slog.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		connID: connID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// GetConnID implements app.ClientConnection
func (c *Client) GetConnID() string {
	return c.connID
}

// Send implements app.ClientConnection. Delivery is best-effort: when the
// buffer is full the message is dropped so one slow client cannot stall the
// room's broadcast loop.
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, message dropped", "connID", c.connID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		if c.session != nil {
			c.session.UnregisterClient(c.connID)
		}
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// inboundMessage is the wire form of a client message; the payload stays
// raw until the type is known.
type inboundMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgJoinRoom:
		c.handleJoinRoom(msg.Payload)
	case MsgSubmitSentence:
		c.handleSubmitSentence(msg.Payload)
	case MsgEndGame:
		c.handleEndGame(msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoinRoom handles a join-room message
func (c *Client) handleJoinRoom(raw json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" || payload.PlayerName == "" {
		c.sendError(ErrCodeInvalidMessage, "Room code and player name are required")
		return
	}

	session, err := c.hub.GetSession(payload.RoomCode)
	if err != nil {
		c.sendError(ErrCodeRoomNotFound, "Room not found")
		return
	}

	// One room per connection. Joining a different room moves the
	// subscription.
	if c.session != nil && c.session != session {
		c.session.UnregisterClient(c.connID)
	}

	// Subscribe before joining so this connection sees every event from
	// its own join onward. Its own player-joined is excluded by conn ID.
	session.RegisterClient(c)

	if err := session.Join(context.Background(), payload.PlayerName, c.connID); err != nil {
		session.UnregisterClient(c.connID)
		c.sendDomainError(err)
		return
	}

	c.session = session

	snapshot := session.RoomSnapshot()
	c.Send(NewServerMessage(MsgJoined, &JoinedPayload{
		RoomCode: snapshot.Code,
		Players:  snapshot.Players,
		Scores:   snapshot.Scores,
	}))
}

// handleSubmitSentence handles a submit-sentence message
func (c *Client) handleSubmitSentence(raw json.RawMessage) {
	var payload SubmitSentencePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" || payload.PlayerName == "" {
		c.sendError(ErrCodeInvalidMessage, "Room code and player name are required")
		return
	}

	session, err := c.hub.GetSession(payload.RoomCode)
	if err != nil {
		c.sendError(ErrCodeRoomNotFound, "Room not found")
		return
	}

	if err := session.SubmitSentence(context.Background(), payload.PlayerName, payload.Sentence); err != nil {
		c.sendDomainError(err)
		return
	}
}

// handleEndGame handles an end-game message
func (c *Client) handleEndGame(raw json.RawMessage) {
	var payload EndGamePayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.RoomCode == "" {
		c.sendError(ErrCodeInvalidMessage, "Room code is required")
		return
	}

	session, err := c.hub.GetSession(payload.RoomCode)
	if err != nil {
		c.sendError(ErrCodeRoomNotFound, "Room not found")
		return
	}

	if err := session.EndGame(context.Background()); err != nil {
		c.sendDomainError(err)
		return
	}
}

// sendDomainError maps a domain error onto a wire error code for the acting
// connection. Other subscribers are unaffected.
func (c *Client) sendDomainError(err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		c.sendError(ErrCodeRoomNotFound, "Room not found")
	case errors.Is(err, domain.ErrRoomInactive):
		c.sendError(ErrCodeRoomInactive, "Room is no longer active")
	case errors.Is(err, domain.ErrNotYourTurn):
		c.sendError(ErrCodeNotYourTurn, "It's not your turn")
	case errors.Is(err, domain.ErrEmptySentence):
		c.sendError(ErrCodeEmptySentence, "Sentence cannot be empty")
	case errors.Is(err, domain.ErrEmptyPlayerName):
		c.sendError(ErrCodeInvalidMessage, "Player name is required")
	default:
		c.sendError(ErrCodeInternalError, "Internal error")
	}
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected() {
	c.Send(NewServerMessage(MsgConnected, &ConnectedPayload{
		ConnID: c.connID,
	}))
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}
