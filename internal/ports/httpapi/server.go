// Package httpapi exposes the lobby over HTTP polling and WebSocket.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"staredown/internal/app"
	"staredown/internal/session"
)

const maxBodyBytes = 64 << 10

// Server routes requests to the lobby.
type Server struct {
	lobby    Lobby
	hub      *Hub
	issuer   *session.Issuer
	logger   *zap.Logger
	origins  []string
	upgrader websocket.Upgrader
	now      func() time.Time

	pingPeriod time.Duration
	pongWait   time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithIssuer enables POST /api/session and signed client tokens.
func WithIssuer(i *session.Issuer) Option {
	return func(s *Server) { s.issuer = i }
}

// WithHub enables the /ws endpoint.
func WithHub(h *Hub) Option {
	return func(s *Server) { s.hub = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPingPeriod sets how often sockets are pinged. Each ping and pong
// counts as client activity for the socket's session.
func WithPingPeriod(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingPeriod = d
			s.pongWait = d * 10 / 9
		}
	}
}

// WithAllowedOrigins restricts CORS and socket origins. Empty allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

func NewServer(l Lobby, opts ...Option) *Server {
	s := &Server{
		lobby:      l,
		logger:     zap.NewNop(),
		now:        time.Now,
		pingPeriod: defaultPingPeriod,
		pongWait:   defaultPongWait,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.cors)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.handleRooms).Methods(http.MethodGet)
	r.HandleFunc("/api/game", s.handlePoll).Methods(http.MethodGet)
	r.HandleFunc("/api/game", s.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/api/session", s.handleSession).Methods(http.MethodPost)
	if s.hub != nil {
		r.HandleFunc("/ws", s.handleSocket).Methods(http.MethodGet)
	}
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (s *Server) allowed(origin string) bool {
	return len(s.origins) == 0 || lo.Contains(s.origins, origin)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.allowed(origin)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(s.origins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.allowed(origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Token")
		next.ServeHTTP(w, r)
	})
}

// sessionKey maps a raw client token to its session key. Signed tokens from
// our issuer collapse to their jti; anything else is used verbatim.
func (s *Server) sessionKey(raw string) string {
	if raw == "" || s.issuer == nil {
		return raw
	}
	if id, err := s.issuer.Verify(raw); err == nil {
		return id
	}
	return raw
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.lobby.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"rooms":     st.Rooms,
		"clients":   st.Sessions,
		"players":   st.Players,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.lobby.Rooms())
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	if s.issuer == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NotFound", Message: "session tokens are disabled"})
		return
	}
	token, id, err := s.issuer.Mint(s.now())
	if err != nil {
		s.logger.Error("mint session token", zap.Error(err))
		writeError(w, app.ErrInternal)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token, "sessionId": id})
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := request{
		Action:   ActionGetUpdates,
		ClientID: q.Get("clientId"),
		RoomID:   q.Get("roomId"),
		PlayerID: q.Get("playerId"),
	}
	s.serve(w, r, req)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.logger.Debug("rejected request body", zap.Error(err))
		writeError(w, malformed("invalid JSON body"))
		return
	}
	s.serve(w, r, req)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, req request) {
	token := s.sessionKey(clientToken(r, req))
	resp, err := dispatch(s.lobby, token, req)
	if err != nil {
		s.logRejected(req, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) logRejected(req request, err error) {
	if errors.Is(err, app.ErrInternal) || app.ErrorCode(err) == "Internal" {
		s.logger.Error("request failed", zap.String("action", req.Action), zap.String("room", req.RoomID), zap.Error(err))
		return
	}
	s.logger.Debug("request rejected", zap.String("action", req.Action), zap.String("room", req.RoomID), zap.Error(err))
}
