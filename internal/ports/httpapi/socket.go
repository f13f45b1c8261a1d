package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	socketReadLimit   = 16 << 10
	defaultPongWait   = 60 * time.Second
	defaultPingPeriod = defaultPongWait * 9 / 10
)

type socketResult struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	RequestID string `json:"requestId,omitempty"`
	Response  any    `json:"response"`
}

type socketError struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	RequestID string `json:"requestId,omitempty"`
	errorBody
}

// handleSocket accepts action envelopes over a WebSocket. After a
// successful create, join or get_updates the socket is subscribed to that
// seat and receives "update" pushes whenever the seat's outbox fills.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &conn{
		ws:           ws,
		token:        s.sessionKey(clientToken(r, request{ClientID: r.URL.Query().Get("clientId")})),
		writeTimeout: s.hub.writeTimeout,
	}
	done := make(chan struct{})
	defer func() {
		close(done)
		s.hub.unsubscribe(c)
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		_ = ws.Close()
	}()

	ws.SetReadLimit(socketReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(s.pongWait))
	ws.SetPongHandler(func(string) error {
		s.lobby.Touch(c.sessionToken())
		return ws.SetReadDeadline(time.Now().Add(s.pongWait))
	})
	go s.keepAlive(c, done)

	for {
		var req request
		if err := ws.ReadJSON(&req); err != nil {
			if _, ok := err.(*websocket.CloseError); !ok {
				s.logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(s.pongWait))
		s.handleSocketRequest(c, req)
	}
}

func (s *Server) handleSocketRequest(c *conn, req request) {
	if req.ClientID != "" {
		c.setSessionToken(s.sessionKey(req.ClientID))
	}
	token := c.sessionToken()

	resp, err := dispatch(s.lobby, token, req)
	if err != nil {
		s.logRejected(req, err)
		_ = c.send(socketError{Type: "error", Action: req.Action, RequestID: req.RequestID, errorBody: errorPayload(err)})
		return
	}

	switch v := resp.(type) {
	case joinedResponse:
		s.hub.subscribe(c, v.RoomID, v.PlayerID)
	case updatesResponse:
		s.hub.subscribe(c, v.State.RoomID, req.PlayerID)
	}
	if req.Action == ActionLeaveRoom {
		s.hub.unsubscribe(c)
	}
	_ = c.send(socketResult{Type: "result", Action: req.Action, RequestID: req.RequestID, Response: resp})
}

// keepAlive pings the client and keeps its session fresh while the socket
// is open, so a seat held over a quiet socket is not reclaimed as idle.
func (s *Server) keepAlive(c *conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.mu.Lock()
			err := websocket.ErrCloseSent
			if !c.closed {
				err = c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
			}
			token := c.token
			c.mu.Unlock()
			if err != nil {
				return
			}
			s.lobby.Touch(token)
		}
	}
}
