package app

import (
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"

	"staredown/internal/domain"
)

// Service contains the stare-down use-cases operating on a room. It is the
// only code that mutates a domain.Room; callers serialize access per room.
type Service struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewService constructs a Service. A nil rng draws a freshly seeded source
// for every shuffle; tests pass a seeded rng for reproducible deals.
func NewService(rng *rand.Rand) *Service {
	return &Service{rng: rng}
}

// Join seats a new player at the end of the ring and notifies the players
// already seated.
func (s *Service) Join(room *domain.Room, player *domain.Player, now time.Time) ([]Event, error) {
	if room.GameStarted() {
		return nil, ErrAlreadyStarted
	}
	if len(room.Players) >= domain.MaxSeats {
		return nil, ErrRoomFull
	}

	previous := playerIDs(room)
	room.Seat(player)
	room.Touch(now)

	return []Event{
		{
			Kind: EventPlayerJoined,
			Payload: PlayerJoinedPayload{
				PlayerID:   player.ID,
				PlayerName: player.Name,
				Players:    Roster(room),
			},
			Recipients: previous,
		},
	}, nil
}

// Leave removes a seat. A game in progress keeps running over the collapsed
// ring: if the leaver held the turn, it passes to whoever now sits in that
// seat index. The leaver's cards go to the discard pile.
func (s *Service) Leave(room *domain.Room, playerID string, now time.Time) ([]Event, error) {
	pl, idx, ok := room.Unseat(playerID)
	if !ok {
		return nil, ErrNotSeated
	}
	room.DiscardPile = append(room.DiscardPile, pl.Hand...)
	pl.SetHand(nil)
	room.Touch(now)

	if len(room.Players) == 0 {
		room.CurrentPlayerID = ""
		return nil, nil
	}

	if room.DealerID == playerID {
		room.DealerID = room.Players[0].ID
	}
	if room.GameStarted() && room.CurrentPlayerID == playerID {
		room.CurrentPlayerID = room.PlayerAt(idx)
	}

	return []Event{
		{
			Kind: EventPlayerLeft,
			Payload: PlayerLeftPayload{
				PlayerID:        pl.ID,
				PlayerName:      pl.Name,
				Players:         Roster(room),
				CurrentPlayerID: room.CurrentPlayerID,
				DealerID:        room.DealerID,
			},
		},
	}, nil
}

// StartGame shuffles a fresh deck, deals DealerHandSize cards to the dealer
// and HandSize to everyone else, and gives the dealer the first turn.
func (s *Service) StartGame(room *domain.Room, requesterID string, now time.Time) ([]Event, error) {
	if _, ok := room.Player(requesterID); !ok {
		return nil, ErrNotSeated
	}
	if room.GameStarted() {
		return nil, ErrAlreadyStarted
	}
	if len(room.Players) < MinPlayersToStartGame {
		return nil, ErrInsufficientPlayers
	}

	deck := s.shuffle(domain.NewDeck())

	// Deal from the top (end) of the pile, in seat order.
	for _, pl := range room.Players {
		count := domain.HandSize
		if pl.ID == room.DealerID {
			count = domain.DealerHandSize
		}
		top := len(deck) - count
		hand := make([]domain.Card, count)
		copy(hand, deck[top:])
		deck = deck[:top]
		pl.SetHand(hand)
		pl.Passed = false
	}

	room.DrawPile = deck
	room.DiscardPile = nil
	room.RecentPlays = nil
	room.CurrentPlay = nil
	room.LastPlay = nil
	room.LastResult = nil
	room.AllPlayersPassed = false
	room.DealtDealerID = room.DealerID
	room.CurrentPlayerID = room.DealerID
	room.Phase = domain.PhaseInProgress
	room.Touch(now)

	events := make([]Event, 0, len(room.Players)+1)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			DealerID:        room.DealerID,
			CurrentPlayerID: room.CurrentPlayerID,
			Players:         Roster(room),
			DrawPileCount:   len(room.DrawPile),
		},
	})
	for _, pl := range room.Players {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				PlayerID: pl.ID,
				Hand:     append([]domain.Card(nil), pl.Hand...),
			},
			Recipients: []string{pl.ID},
		})
	}
	return events, nil
}

// PlayCards validates and applies a play by the player holding the turn.
// Nothing is mutated unless every check passes.
func (s *Service) PlayCards(room *domain.Room, playerID string, cardIDs []string, now time.Time) ([]Event, error) {
	if !room.GameStarted() {
		return nil, ErrNotPlaying
	}
	pl, ok := room.Player(playerID)
	if !ok {
		return nil, ErrNotSeated
	}
	if room.CurrentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	if len(cardIDs) == 0 {
		return nil, illegal("no cards selected")
	}
	cards, ok := domain.ResolveCards(pl.Hand, cardIDs)
	if !ok {
		return nil, illegal("card not in hand")
	}
	verdict := domain.Validate(cards, room.LastPlay, room.AllPlayersPassed)
	if !verdict.Legal {
		return nil, illegal(verdict.Reason)
	}

	pl.SetHand(domain.RemoveCards(pl.Hand, cards))
	room.DiscardPile = append(room.DiscardPile, cards...)

	// A play breaks the pass chain.
	room.AllPlayersPassed = false
	for _, p := range room.Players {
		p.Passed = false
	}

	play := domain.Play{PlayerID: playerID, Cards: cards, Category: verdict.Category}
	room.CurrentPlay = &play
	room.LastPlay = &play
	room.RecordPlay(play)
	room.CurrentPlayerID = room.NextPlayerID(playerID)
	room.Touch(now)

	events := []Event{
		{
			Kind: EventCardPlayed,
			Payload: CardPlayedPayload{
				PlayerID:     playerID,
				PlayerName:   pl.Name,
				Play:         play,
				NextPlayerID: room.CurrentPlayerID,
				NewHandCount: pl.CardCount,
			},
		},
	}

	if pl.CardCount == 0 {
		events = append(events, s.endGame(room, pl))
	}
	return events, nil
}

// PassTurn marks the current player as passed. Once at most one seat has not
// passed since the last play, the round resets: the table is cleared and the
// next play is unconstrained.
func (s *Service) PassTurn(room *domain.Room, playerID string, now time.Time) ([]Event, error) {
	if !room.GameStarted() {
		return nil, ErrNotPlaying
	}
	pl, ok := room.Player(playerID)
	if !ok {
		return nil, ErrNotSeated
	}
	if room.CurrentPlayerID != playerID {
		return nil, ErrNotYourTurn
	}

	pl.Passed = true
	stillIn := lo.CountBy(room.Players, func(p *domain.Player) bool { return !p.Passed })
	if stillIn <= 1 {
		room.AllPlayersPassed = true
		room.LastPlay = nil
		room.CurrentPlay = nil
		for _, p := range room.Players {
			p.Passed = false
		}
	}

	room.CurrentPlayerID = room.NextPlayerID(playerID)
	room.Touch(now)

	return []Event{
		{
			Kind: EventTurnPassed,
			Payload: TurnPassedPayload{
				PlayerID:     playerID,
				PlayerName:   pl.Name,
				NextPlayerID: room.CurrentPlayerID,
				RoundReset:   room.AllPlayersPassed,
			},
		},
	}, nil
}

// endGame declares winner and returns the room to a restartable waiting state.
// The seat dealt the dealer's hand going out while every other seat still
// holds its full opening hand is a celestial win.
func (s *Service) endGame(room *domain.Room, winner *domain.Player) Event {
	special := domain.SpecialNone
	if winner.ID == room.DealtDealerID && lo.EveryBy(room.Players, func(p *domain.Player) bool {
		return p.ID == winner.ID || p.CardCount == domain.HandSize
	}) {
		special = domain.SpecialCelestial
	}

	result := domain.Result{
		WinnerID:      winner.ID,
		WinnerName:    winner.Name,
		SpecialResult: special,
	}

	room.LastResult = &result
	room.Phase = domain.PhaseWaiting
	room.DealtDealerID = ""
	room.CurrentPlayerID = ""
	room.CurrentPlay = nil
	room.LastPlay = nil
	room.AllPlayersPassed = false

	return Event{Kind: EventGameEnded, Payload: GameEndedPayload{Result: result}}
}

// Roster projects the seat order into its public view.
func Roster(room *domain.Room) []SeatView {
	return lo.Map(room.Players, func(p *domain.Player, _ int) SeatView {
		return SeatView{ID: p.ID, Name: p.Name, Cards: p.CardCount}
	})
}

func playerIDs(room *domain.Room) []string {
	return lo.Map(room.Players, func(p *domain.Player, _ int) string { return p.ID })
}

func (s *Service) shuffle(deck []domain.Card) []domain.Card {
	if s.rng == nil {
		return domain.ShuffleDeck(deck, nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ShuffleDeck(deck, s.rng)
}
