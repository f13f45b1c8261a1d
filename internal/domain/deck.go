package domain

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// Suit of a card. SuitJoker marks the two jokers.
type Suit int

const (
	SuitSpades Suit = iota
	SuitHearts
	SuitDiamonds
	SuitClubs
	SuitJoker
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣", "★"}

// Symbol returns the suit glyph used in card ids.
func (s Suit) Symbol() string {
	if s < SuitSpades || s > SuitJoker {
		return "?"
	}
	return suitSymbols[s]
}

// Rank orders 3 lowest through 2 highest; jokers carry RankJoker.
type Rank int

const (
	RankThree Rank = iota
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
	RankTwo
	RankJoker
)

var rankLabels = [...]string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2", "Joker"}

// Label returns the printed value of the rank.
func (r Rank) Label() string {
	if r < RankThree || r > RankJoker {
		return "?"
	}
	return rankLabels[r]
}

// Color is derived from the suit.
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// Card is an immutable playing card. ID is stable across the process:
// value followed by suit glyph ("10♥"), or "Joker1"/"Joker2".
type Card struct {
	ID    string
	Rank  Rank
	Suit  Suit
	Color Color
}

// IsJoker reports whether the card is one of the two jokers.
func (c Card) IsJoker() bool {
	return c.Suit == SuitJoker
}

// MarshalJSON renders the card in the shape clients expect.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    string `json:"id"`
		Value string `json:"value"`
		Suit  string `json:"suit"`
		Color Color  `json:"color"`
		Joker bool   `json:"isJoker,omitempty"`
	}{c.ID, c.Rank.Label(), c.Suit.Symbol(), c.Color, c.IsJoker()})
}

func newCard(r Rank, s Suit) Card {
	color := Black
	if s == SuitHearts || s == SuitDiamonds {
		color = Red
	}
	return Card{ID: r.Label() + s.Symbol(), Rank: r, Suit: s, Color: color}
}

// NewDeck returns the 54-card deck in a fixed order: each suit 3..2, then
// the red and black jokers.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := SuitSpades; s <= SuitClubs; s++ {
		for r := RankThree; r <= RankTwo; r++ {
			deck = append(deck, newCard(r, s))
		}
	}
	deck = append(deck,
		Card{ID: "Joker1", Rank: RankJoker, Suit: SuitJoker, Color: Red},
		Card{ID: "Joker2", Rank: RankJoker, Suit: SuitJoker, Color: Black},
	)
	return deck
}

// ShuffleDeck permutes deck in place (Fisher-Yates) and returns it. A nil rng
// gets a fresh source seeded from crypto/rand, so consecutive shuffles are
// not predictable from each other.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	if rng == nil {
		rng = NewRand()
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// NewRand returns a math/rand generator seeded from crypto/rand, falling
// back to the clock if the system source is unavailable.
func NewRand() *rand.Rand {
	var seed [8]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(seed[:]))))
}

// CardRefs is a list of card ids decoded from a client. Each element may be a
// bare id or a card object; only the id is kept, so rank and suit are always
// taken from the server-side hand.
type CardRefs []string

func (c *CardRefs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		var id string
		if err := json.Unmarshal(item, &id); err == nil {
			ids = append(ids, id)
			continue
		}
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &obj); err != nil || obj.ID == "" {
			return fmt.Errorf("card must be an id or an object with an id")
		}
		ids = append(ids, obj.ID)
	}
	*c = ids
	return nil
}
