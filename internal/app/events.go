package app

import "staredown/internal/domain"

// EventKind identifies emitted domain events for outbox dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventCardPlayed   EventKind = "card_played"
	EventTurnPassed   EventKind = "turn_passed"
	EventGameEnded    EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means everyone seated
}

// SeatView is the public roster entry for one seat.
type SeatView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

type PlayerJoinedPayload struct {
	PlayerID   string     `json:"playerId"`
	PlayerName string     `json:"playerName"`
	Players    []SeatView `json:"players"`
}

type PlayerLeftPayload struct {
	PlayerID        string     `json:"playerId"`
	PlayerName      string     `json:"playerName"`
	Players         []SeatView `json:"players"`
	CurrentPlayerID string     `json:"currentPlayer,omitempty"`
	DealerID        string     `json:"dealer"`
}

type GameStartedPayload struct {
	DealerID        string     `json:"dealer"`
	CurrentPlayerID string     `json:"currentPlayer"`
	Players         []SeatView `json:"players"`
	DrawPileCount   int        `json:"drawPileCount"`
}

type HandDealtPayload struct {
	PlayerID string        `json:"playerId"`
	Hand     []domain.Card `json:"hand"`
}

type CardPlayedPayload struct {
	PlayerID     string      `json:"playerId"`
	PlayerName   string      `json:"playerName"`
	Play         domain.Play `json:"play"`
	NextPlayerID string      `json:"nextPlayer"`
	NewHandCount int         `json:"newHandCount"`
}

type TurnPassedPayload struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	NextPlayerID string `json:"nextPlayer"`
	RoundReset   bool   `json:"roundReset"`
}

type GameEndedPayload struct {
	domain.Result
}
