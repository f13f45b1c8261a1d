package domain

const (
	// DeckSize is 13 ranks x 4 suits plus two jokers.
	DeckSize = 54
	// MaxSeats caps room membership.
	MaxSeats = 6
	// DealerHandSize is the dealer's opening hand; everyone else gets HandSize.
	DealerHandSize = 6
	HandSize       = 5
	// RecentPlaysLimit bounds the display history kept on a room.
	RecentPlaysLimit = 4
)
