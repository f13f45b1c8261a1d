package domain

import (
	"time"

	"staredown/internal/outbox"
)

// Phase represents the lifecycle stage of a room's game.
type Phase string

const (
	// PhaseWaiting is the pre-game state where players can join.
	PhaseWaiting Phase = "waiting"
	// PhaseInProgress is the active game state where cards are played.
	PhaseInProgress Phase = "in_progress"
	// PhaseEnded is reported in the game-ended event; the room itself
	// immediately returns to PhaseWaiting.
	PhaseEnded Phase = "ended"
)

// Category classifies an accepted play.
type Category string

const (
	CategoryAny      Category = "any"
	CategoryBomb     Category = "bomb"
	CategoryNewRound Category = "new_round"
	CategoryNormal   Category = "normal"
)

// SpecialResult flags an out-of-the-ordinary win.
type SpecialResult string

const (
	SpecialNone      SpecialResult = ""
	SpecialCelestial SpecialResult = "celestial_win"
)

// Player holds state for a seated participant.
type Player struct {
	ID        string
	Name      string
	Hand      []Card
	CardCount int  // cached len(Hand) for broadcasts
	Passed    bool // passed since the last accepted play
	Outbox    *outbox.Outbox
}

// NewPlayer returns a player with an empty hand and outbox.
func NewPlayer(id, name string) *Player {
	return &Player{ID: id, Name: name, Outbox: outbox.New()}
}

// SetHand replaces the hand and refreshes the cached count.
func (p *Player) SetHand(hand []Card) {
	p.Hand = hand
	p.CardCount = len(hand)
}

// Play is an accepted set of cards.
type Play struct {
	PlayerID string   `json:"playerId"`
	Cards    []Card   `json:"cards"`
	Category Category `json:"type"`
}

// Result is the outcome of the most recent finished game.
type Result struct {
	WinnerID      string        `json:"winnerId"`
	WinnerName    string        `json:"winnerName"`
	SpecialResult SpecialResult `json:"specialResult,omitempty"`
}

// Room is the aggregate for one table. Seat order in Players is turn order.
type Room struct {
	ID       string
	Players  []*Player
	DealerID string
	Phase    Phase

	// DealtDealerID is the seat that received the dealer's extra card in the
	// current game. It does not follow DealerID when the dealer leaves.
	DealtDealerID string

	// Turn / round tracking
	CurrentPlayerID  string // empty before start and after the game ends
	CurrentPlay      *Play
	LastPlay         *Play
	AllPlayersPassed bool // round reset: the next play is unconstrained

	DrawPile    []Card // top is the end of the slice
	DiscardPile []Card
	RecentPlays []Play // bounded display history
	LastResult  *Result

	CreatedAt    time.Time
	LastActivity time.Time

	seats map[string]int // player id -> index in Players
}

// NewRoom creates a waiting room seeded with its dealer.
func NewRoom(id string, dealer *Player, now time.Time) *Room {
	r := &Room{
		ID:           id,
		DealerID:     dealer.ID,
		Phase:        PhaseWaiting,
		CreatedAt:    now,
		LastActivity: now,
	}
	r.Seat(dealer)
	return r
}

// GameStarted reports whether a game is in progress.
func (r *Room) GameStarted() bool {
	return r.Phase == PhaseInProgress
}

// Touch records activity.
func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
}
