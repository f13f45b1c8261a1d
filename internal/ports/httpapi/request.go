package httpapi

import (
	"net/http"
	"strings"

	"staredown/internal/domain"
)

// Action names accepted on POST /api/game and over the socket.
const (
	ActionCreateRoom = "create_room"
	ActionJoinRoom   = "join_room"
	ActionLeaveRoom  = "leave_room"
	ActionStartGame  = "start_game"
	ActionPlayAgain  = "play_again"
	ActionPlayCards  = "play_cards"
	ActionPassTurn   = "pass_turn"
	ActionGetUpdates = "get_updates"
)

// request is the action envelope shared by the HTTP and socket transports.
type request struct {
	Action     string          `json:"action"`
	RequestID  string          `json:"requestId,omitempty"`
	ClientID   string          `json:"clientId,omitempty"`
	RoomID     string          `json:"roomId,omitempty"`
	PlayerID   string          `json:"playerId,omitempty"`
	PlayerName string          `json:"playerName,omitempty"`
	Cards      domain.CardRefs `json:"cards,omitempty"`
}

// clientToken picks the liveness token: header first, then the envelope.
func clientToken(r *http.Request, req request) string {
	if tok := r.Header.Get("X-Client-Token"); tok != "" {
		return tok
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return req.ClientID
}
