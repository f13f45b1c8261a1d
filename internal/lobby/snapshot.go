package lobby

import (
	"staredown/internal/app"
	"staredown/internal/domain"
	"staredown/internal/outbox"
)

// SeatState is one roster entry of a snapshot.
type SeatState struct {
	app.SeatView
	IsCurrent bool `json:"isCurrent"`
	IsDealer  bool `json:"isDealer"`
	Passed    bool `json:"passed"`
}

// Snapshot is the room state as seen by one player.
type Snapshot struct {
	RoomID          string         `json:"roomId"`
	Phase           domain.Phase   `json:"phase"`
	GameStarted     bool           `json:"gameStarted"`
	Players         []SeatState    `json:"players"`
	DealerID        string         `json:"dealer"`
	CurrentPlayerID string         `json:"currentPlayer,omitempty"`
	LastPlay        *domain.Play   `json:"lastPlay"`
	RoundReset      bool           `json:"roundReset"`
	DrawPileCount   int            `json:"drawPileCount"`
	RecentPlays     []domain.Play  `json:"recentPlays"`
	Hand            []domain.Card  `json:"hand"`
	LastResult      *domain.Result `json:"lastResult,omitempty"`
}

// Update is the result of a drain: the caller's pending messages plus the
// current room state.
type Update struct {
	Messages []outbox.Message `json:"messages"`
	State    Snapshot         `json:"roomState"`
}

// snapshot copies everything it exposes so the result may be read after the
// room lock is released.
func snapshot(room *domain.Room, viewer *domain.Player) Snapshot {
	seats := make([]SeatState, 0, len(room.Players))
	for _, p := range room.Players {
		seats = append(seats, SeatState{
			SeatView:  app.SeatView{ID: p.ID, Name: p.Name, Cards: p.CardCount},
			IsCurrent: p.ID == room.CurrentPlayerID,
			IsDealer:  p.ID == room.DealerID,
			Passed:    p.Passed,
		})
	}

	s := Snapshot{
		RoomID:          room.ID,
		Phase:           room.Phase,
		GameStarted:     room.GameStarted(),
		Players:         seats,
		DealerID:        room.DealerID,
		CurrentPlayerID: room.CurrentPlayerID,
		RoundReset:      room.AllPlayersPassed,
		DrawPileCount:   len(room.DrawPile),
		RecentPlays:     clonePlays(room.RecentPlays),
		Hand:            append([]domain.Card{}, viewer.Hand...),
	}
	if room.LastPlay != nil {
		lp := clonePlay(*room.LastPlay)
		s.LastPlay = &lp
	}
	if room.LastResult != nil {
		res := *room.LastResult
		s.LastResult = &res
	}
	return s
}

func clonePlay(p domain.Play) domain.Play {
	p.Cards = append([]domain.Card(nil), p.Cards...)
	return p
}

func clonePlays(plays []domain.Play) []domain.Play {
	out := make([]domain.Play, len(plays))
	for i, p := range plays {
		out[i] = clonePlay(p)
	}
	return out
}
