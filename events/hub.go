package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/flavorfleet/admin-dashboard/utils"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Client is one websocket connection bound to an admin session. Only its
// write loop writes data frames to the connection.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	username  string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed once the hub has dropped the client.
func (cl *Client) Done() <-chan struct{} {
	return cl.done
}

func (cl *Client) close(reason string) {
	cl.closeOnce.Do(func() {
		close(cl.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		_ = cl.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		cl.conn.Close()
	})
}

// Hub holds connected dashboard clients. Publish never writes to a socket
// itself; each client drains its own buffered queue.
type Hub struct {
	clients map[*Client]struct{}
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// RegisterClient adds a connection for the given session. The connection is
// closed when the session expires, when DisconnectSession is called for it or
// when a write fails.
func (h *Hub) RegisterClient(conn *websocket.Conn, sessionID, username string, expiresAt time.Time) *Client {
	cl := &Client{
		conn:      conn,
		sessionID: sessionID,
		username:  username,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
	}
	h.mutex.Lock()
	h.clients[cl] = struct{}{}
	h.mutex.Unlock()

	go h.writeLoop(cl, expiresAt)
	return cl
}

func (h *Hub) UnregisterClient(cl *Client) {
	h.drop(cl, "bye")
}

func (h *Hub) drop(cl *Client, reason string) {
	h.mutex.Lock()
	delete(h.clients, cl)
	h.mutex.Unlock()
	cl.close(reason)
}

// DisconnectSession closes every connection opened with the session.
func (h *Hub) DisconnectSession(sessionID string) {
	var dropped []*Client
	h.mutex.Lock()
	for cl := range h.clients {
		if cl.sessionID == sessionID {
			delete(h.clients, cl)
			dropped = append(dropped, cl)
		}
	}
	h.mutex.Unlock()

	for _, cl := range dropped {
		cl.close("session ended")
	}
	if len(dropped) > 0 {
		utils.InfoLogger.WithField("connections", len(dropped)).Info("Closed event streams of ended session")
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(cl *Client, expiresAt time.Time) {
	expiry := time.NewTimer(time.Until(expiresAt))
	defer expiry.Stop()

	for {
		select {
		case data := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				utils.ErrorLogger.WithField("user", cl.username).Errorf("Error sending event: %v", err)
				h.drop(cl, "write failed")
				return
			}
		case <-expiry.C:
			h.drop(cl, "session expired")
			return
		case <-cl.done:
			return
		}
	}
}

// Publish queues the event for every client. A client whose queue is full
// is dropped.
func (h *Hub) Publish(_ context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var slow []*Client
	h.mutex.Lock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			delete(h.clients, cl)
			slow = append(slow, cl)
		}
	}
	queued := len(h.clients)
	h.mutex.Unlock()

	for _, cl := range slow {
		utils.ErrorLogger.WithField("user", cl.username).Warn("Dropping event stream that is not keeping up")
		cl.close("too slow")
	}
	utils.InfoLogger.WithFields(logrus.Fields{"event": evt.Type, "clients": queued}).Debug("Broadcast queued")
	return nil
}
