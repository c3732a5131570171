package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gamifiedFitnessAPI/internal/session"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// A batch of a few hundred waypoints fits comfortably.
	maxMessageSize = 64 * 1024

	liveOpTimeout = 5 * time.Second

	liveSendBuffer = 16
)

const (
	LiveActionWaypoints = "waypoints"
	LiveActionStop      = "stop"
	LiveActionStats     = "stats"
	LiveActionStopped   = "stopped"
	LiveActionError     = "error"
)

// LivePayload is a message from the tracking client. A "waypoints" message
// carries a single waypoint, a batch, or both.
type LivePayload struct {
	Action string `json:"action"`
	session.AddWaypointsRequest
	session.StopSessionRequest
}

// LiveUpdate is a message to the tracking client.
type LiveUpdate struct {
	Action    string                       `json:"action"`
	SessionID string                       `json:"sessionId"`
	Stats     *session.Stats               `json:"stats,omitempty"`
	Duration  float64                      `json:"duration,omitempty"`
	Waypoints int                          `json:"waypoints,omitempty"`
	Result    *session.StopSessionResponse `json:"result,omitempty"`
	Error     string                       `json:"error,omitempty"`
}

// LiveClient streams waypoints from one connection into one active session.
type LiveClient struct {
	Conn      *websocket.Conn
	Send      chan []byte
	done      chan struct{}
	fitness   *FitnessService
	clerkID   string
	sessionID string
}

func NewLiveClient(conn *websocket.Conn, fitness *FitnessService, clerkID, sessionID string) *LiveClient {
	return &LiveClient{
		Conn:      conn,
		Send:      make(chan []byte, liveSendBuffer),
		done:      make(chan struct{}),
		fitness:   fitness,
		clerkID:   clerkID,
		sessionID: sessionID,
	}
}

// Run pumps until the peer disconnects or the session is stopped.
func (c *LiveClient) Run() {
	go c.WritePump()
	c.ReadPump()
}

func (c *LiveClient) ReadPump() {
	defer close(c.Send)

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	log := logrus.WithFields(logrus.Fields{"session": c.sessionID, "clerk": c.clerkID})
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("Live tracking connection dropped")
			}
			return
		}

		var payload LivePayload
		if err := json.Unmarshal(message, &payload); err != nil {
			c.push(LiveUpdate{Action: LiveActionError, SessionID: c.sessionID, Error: "invalid message"})
			continue
		}

		if done := c.handle(payload); done {
			return
		}
	}
}

// handle applies one client message and reports whether the stream is over.
func (c *LiveClient) handle(p LivePayload) bool {
	ctx, cancel := context.WithTimeout(context.Background(), liveOpTimeout)
	defer cancel()

	switch p.Action {
	case LiveActionWaypoints:
		sess, err := c.fitness.AddWaypoints(ctx, c.clerkID, c.sessionID, p.All())
		if err != nil {
			c.push(LiveUpdate{Action: LiveActionError, SessionID: c.sessionID, Error: err.Error()})
			return errors.Is(err, ErrSessionNotActive)
		}
		stats := sess.Stats
		c.push(LiveUpdate{
			Action:    LiveActionStats,
			SessionID: sess.ID,
			Stats:     &stats,
			Duration:  sess.Duration,
			Waypoints: len(sess.Waypoints),
		})

	case LiveActionStop:
		res, err := c.fitness.StopSession(ctx, c.clerkID, c.sessionID, &p.StopSessionRequest)
		if err != nil {
			c.push(LiveUpdate{Action: LiveActionError, SessionID: c.sessionID, Error: err.Error()})
			return errors.Is(err, ErrSessionNotActive)
		}
		c.push(LiveUpdate{Action: LiveActionStopped, SessionID: c.sessionID, Result: res})
		return true

	default:
		c.push(LiveUpdate{Action: LiveActionError, SessionID: c.sessionID, Error: "unknown action " + p.Action})
	}
	return false
}

func (c *LiveClient) push(u LiveUpdate) {
	data, err := json.Marshal(u)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal live update")
		return
	}
	select {
	case c.Send <- data:
	case <-c.done:
	default:
		logrus.WithFields(logrus.Fields{"session": c.sessionID, "action": u.Action}).Warn("Live update dropped, client too slow")
	}
}

// WritePump handles messages going to the client and keeps the connection
// alive with pings. Closing done on exit lets ReadPump stop queueing.
func (c *LiveClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
