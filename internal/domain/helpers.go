package domain

// Seat appends a player to the end of the seat order.
func (r *Room) Seat(p *Player) {
	r.Players = append(r.Players, p)
	r.reindex()
}

// Unseat removes a player from the ring, returning the player and the seat
// index it occupied.
func (r *Room) Unseat(playerID string) (*Player, int, bool) {
	idx := r.SeatIndex(playerID)
	if idx < 0 {
		return nil, -1, false
	}
	p := r.Players[idx]
	r.Players = append(r.Players[:idx:idx], r.Players[idx+1:]...)
	r.reindex()
	return p, idx, true
}

// Player looks up a seated player by id.
func (r *Room) Player(playerID string) (*Player, bool) {
	idx := r.SeatIndex(playerID)
	if idx < 0 {
		return nil, false
	}
	return r.Players[idx], true
}

// SeatIndex returns the seat of playerID or -1.
func (r *Room) SeatIndex(playerID string) int {
	if r.seats == nil {
		r.reindex()
	}
	idx, ok := r.seats[playerID]
	if !ok {
		return -1
	}
	return idx
}

// PlayerAt returns the id seated at idx modulo the current seat count.
func (r *Room) PlayerAt(idx int) string {
	if len(r.Players) == 0 {
		return ""
	}
	n := len(r.Players)
	return r.Players[((idx%n)+n)%n].ID
}

// NextPlayerID returns the id seated after playerID, wrapping around.
func (r *Room) NextPlayerID(playerID string) string {
	idx := r.SeatIndex(playerID)
	if idx < 0 {
		return ""
	}
	return r.PlayerAt(idx + 1)
}

func (r *Room) reindex() {
	r.seats = make(map[string]int, len(r.Players))
	for i, p := range r.Players {
		r.seats[p.ID] = i
	}
}

// RecordPlay appends to the bounded recent-plays history.
func (r *Room) RecordPlay(p Play) {
	r.RecentPlays = append(r.RecentPlays, p)
	if over := len(r.RecentPlays) - RecentPlaysLimit; over > 0 {
		r.RecentPlays = append([]Play(nil), r.RecentPlays[over:]...)
	}
}

// TotalCards counts every card the room is accounting for.
func (r *Room) TotalCards() int {
	n := len(r.DrawPile) + len(r.DiscardPile)
	for _, p := range r.Players {
		n += len(p.Hand)
	}
	return n
}

// ResolveCards maps the requested card ids onto cards from hand. Each hand
// card may satisfy at most one id; ok is false if any id is unmatched.
func ResolveCards(hand []Card, ids []string) ([]Card, bool) {
	used := make([]bool, len(hand))
	out := make([]Card, 0, len(ids))
	for _, id := range ids {
		found := false
		for i, c := range hand {
			if !used[i] && c.ID == id {
				used[i] = true
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return out, true
}

// RemoveCards removes exactly one occurrence of each played card, matched by
// id, and returns the updated hand.
func RemoveCards(hand []Card, played []Card) []Card {
	if len(played) == 0 || len(hand) == 0 {
		return hand
	}

	removeCounts := make(map[string]int, len(played))
	for _, card := range played {
		removeCounts[card.ID]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if count := removeCounts[card.ID]; count > 0 {
			removeCounts[card.ID] = count - 1
			continue
		}
		updated = append(updated, card)
	}
	return updated
}
