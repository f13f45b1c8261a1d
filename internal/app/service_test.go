package app

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"staredown/internal/domain"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTable(t *testing.T, ids ...string) (*Service, *domain.Room) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(42)))
	room := domain.NewRoom("ROOM01", domain.NewPlayer(ids[0], "P-"+ids[0]), t0)
	for _, id := range ids[1:] {
		if _, err := svc.Join(room, domain.NewPlayer(id, "P-"+id), t0); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	return svc, room
}

func startedTable(t *testing.T, ids ...string) (*Service, *domain.Room) {
	t.Helper()
	svc, room := newTable(t, ids...)
	if _, err := svc.StartGame(room, ids[0], t0); err != nil {
		t.Fatalf("start game: %v", err)
	}
	return svc, room
}

func mustPlayer(t *testing.T, room *domain.Room, id string) *domain.Player {
	t.Helper()
	pl, ok := room.Player(id)
	if !ok {
		t.Fatalf("player %s not seated", id)
	}
	return pl
}

func hc(r domain.Rank, s domain.Suit) domain.Card {
	return domain.Card{ID: r.Label() + s.Symbol(), Rank: r, Suit: s}
}

func ids(cards ...domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestJoinNotifiesPreviouslySeated(t *testing.T) {
	svc, room := newTable(t, "alice", "bob")

	evs, err := svc.Join(room, domain.NewPlayer("carol", "Carol"), t0)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventPlayerJoined {
		t.Fatalf("events = %+v, want one player_joined", evs)
	}
	got := evs[0].Recipients
	if len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Fatalf("recipients = %v, want [alice bob]", got)
	}
	payload := evs[0].Payload.(PlayerJoinedPayload)
	if len(payload.Players) != 3 {
		t.Fatalf("roster size = %d, want 3", len(payload.Players))
	}
}

func TestJoinRejectsFullAndStartedRooms(t *testing.T) {
	svc, room := newTable(t, "p1", "p2", "p3", "p4", "p5", "p6")
	if _, err := svc.Join(room, domain.NewPlayer("p7", "P7"), t0); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}

	svc, room = startedTable(t, "a", "b")
	if _, err := svc.Join(room, domain.NewPlayer("c", "C"), t0); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
}

func TestStartGameDealsHands(t *testing.T) {
	svc, room := newTable(t, "dealer", "u2", "u3")

	evs, err := svc.StartGame(room, "u2", t0)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if room.Phase != domain.PhaseInProgress {
		t.Fatalf("phase = %s, want in_progress", room.Phase)
	}
	if room.CurrentPlayerID != "dealer" {
		t.Fatalf("current = %s, want dealer", room.CurrentPlayerID)
	}

	handEvents := 0
	for _, ev := range evs {
		if ev.Kind != EventHandDealt {
			continue
		}
		handEvents++
		payload := ev.Payload.(HandDealtPayload)
		want := domain.HandSize
		if payload.PlayerID == "dealer" {
			want = domain.DealerHandSize
		}
		if len(payload.Hand) != want {
			t.Fatalf("%s hand size = %d, want %d", payload.PlayerID, len(payload.Hand), want)
		}
		if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.PlayerID {
			t.Fatalf("hand for %s addressed to %v", payload.PlayerID, ev.Recipients)
		}
	}
	if handEvents != 3 {
		t.Fatalf("hand events = %d, want 3", handEvents)
	}
	if evs[0].Kind != EventGameStarted || evs[0].Recipients != nil {
		t.Fatalf("first event = %+v, want broadcast game_started", evs[0])
	}

	if got, want := len(room.DrawPile), domain.DeckSize-6-5-5; got != want {
		t.Fatalf("draw pile = %d, want %d", got, want)
	}
	if room.TotalCards() != domain.DeckSize {
		t.Fatalf("total cards = %d, want %d", room.TotalCards(), domain.DeckSize)
	}
}

func TestStartGameNeverDuplicatesCards(t *testing.T) {
	_, room := startedTable(t, "p1", "p2", "p3", "p4", "p5", "p6")

	seen := map[string]bool{}
	check := func(c domain.Card) {
		if seen[c.ID] {
			t.Fatalf("card %s dealt twice", c.ID)
		}
		seen[c.ID] = true
	}
	for _, pl := range room.Players {
		for _, c := range pl.Hand {
			check(c)
		}
	}
	for _, c := range room.DrawPile {
		check(c)
	}
	if len(seen) != domain.DeckSize {
		t.Fatalf("distinct cards = %d, want %d", len(seen), domain.DeckSize)
	}
}

func TestStartGamePreconditions(t *testing.T) {
	svc, room := newTable(t, "solo")
	if _, err := svc.StartGame(room, "ghost", t0); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("err = %v, want ErrNotSeated", err)
	}
	if _, err := svc.StartGame(room, "solo", t0); !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("err = %v, want ErrInsufficientPlayers", err)
	}

	svc, room = startedTable(t, "a", "b")
	if _, err := svc.StartGame(room, "a", t0); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("err = %v, want ErrAlreadyStarted", err)
	}
}

func TestPlayCardsShrinksHandAndAdvances(t *testing.T) {
	svc, room := startedTable(t, "a", "b", "c")
	a := mustPlayer(t, room, "a")
	before := len(a.Hand)
	played := a.Hand[:2]

	evs, err := svc.PlayCards(room, "a", ids(played...), t0)
	if err != nil {
		t.Fatalf("play cards error: %v", err)
	}
	if len(a.Hand) != before-2 || a.CardCount != before-2 {
		t.Fatalf("hand = %d (count %d), want %d", len(a.Hand), a.CardCount, before-2)
	}
	if room.CurrentPlayerID != "b" {
		t.Fatalf("current = %s, want b", room.CurrentPlayerID)
	}
	if room.LastPlay == nil || room.LastPlay.Category != domain.CategoryAny {
		t.Fatalf("last play = %+v, want category any", room.LastPlay)
	}
	payload := evs[0].Payload.(CardPlayedPayload)
	if payload.NextPlayerID != "b" || payload.NewHandCount != before-2 {
		t.Fatalf("payload = %+v", payload)
	}
	if room.TotalCards() != domain.DeckSize {
		t.Fatalf("total cards = %d, want %d", room.TotalCards(), domain.DeckSize)
	}
}

func TestPlayCardsRejections(t *testing.T) {
	svc, room := startedTable(t, "a", "b")
	a := mustPlayer(t, room, "a")
	b := mustPlayer(t, room, "b")

	cases := []struct {
		name   string
		player string
		cards  []string
		want   error
	}{
		{"not seated", "ghost", ids(a.Hand[0]), ErrNotSeated},
		{"not your turn", "b", ids(b.Hand[0]), ErrNotYourTurn},
		{"empty", "a", nil, ErrIllegalPlay},
		{"not in hand", "a", ids(b.Hand[0]), ErrIllegalPlay},
		{"duplicate id", "a", []string{a.Hand[0].ID, a.Hand[0].ID}, ErrIllegalPlay},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handBefore := len(a.Hand)
			_, err := svc.PlayCards(room, tc.player, tc.cards, t0)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if len(a.Hand) != handBefore || room.CurrentPlayerID != "a" {
				t.Fatalf("rejected play mutated state")
			}
		})
	}

	svc, room = newTable(t, "x", "y")
	if _, err := svc.PlayCards(room, "x", []string{"A♠"}, t0); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("err = %v, want ErrNotPlaying", err)
	}
}

func TestCountMismatchReason(t *testing.T) {
	svc, room := startedTable(t, "a", "b")
	a := mustPlayer(t, room, "a")
	b := mustPlayer(t, room, "b")
	a.SetHand([]domain.Card{hc(domain.RankFive, domain.SuitSpades), hc(domain.RankSix, domain.SuitHearts), hc(domain.RankNine, domain.SuitClubs)})
	b.SetHand([]domain.Card{hc(domain.RankSeven, domain.SuitSpades), hc(domain.RankEight, domain.SuitHearts), hc(domain.RankTen, domain.SuitClubs)})

	if _, err := svc.PlayCards(room, "a", ids(a.Hand[0]), t0); err != nil {
		t.Fatalf("lead: %v", err)
	}
	_, err := svc.PlayCards(room, "b", ids(b.Hand[0], b.Hand[1]), t0)
	var ipe *IllegalPlayError
	if !errors.As(err, &ipe) {
		t.Fatalf("err = %v, want IllegalPlayError", err)
	}
	if ipe.Reason != domain.ReasonCountMismatch {
		t.Fatalf("reason = %q, want %q", ipe.Reason, domain.ReasonCountMismatch)
	}
}

func TestBombBeatsAnything(t *testing.T) {
	svc, room := startedTable(t, "a", "b")
	a := mustPlayer(t, room, "a")
	b := mustPlayer(t, room, "b")
	a.SetHand([]domain.Card{hc(domain.RankAce, domain.SuitSpades), hc(domain.RankTwo, domain.SuitSpades)})
	b.SetHand([]domain.Card{
		hc(domain.RankFour, domain.SuitSpades),
		hc(domain.RankFour, domain.SuitHearts),
		hc(domain.RankFour, domain.SuitClubs),
		hc(domain.RankKing, domain.SuitClubs),
	})

	if _, err := svc.PlayCards(room, "a", ids(a.Hand[0]), t0); err != nil {
		t.Fatalf("lead: %v", err)
	}
	if _, err := svc.PlayCards(room, "b", ids(b.Hand[:3]...), t0); err != nil {
		t.Fatalf("bomb: %v", err)
	}
	if room.LastPlay.Category != domain.CategoryBomb {
		t.Fatalf("category = %s, want bomb", room.LastPlay.Category)
	}
}

func TestPassTurnResetsRound(t *testing.T) {
	svc, room := startedTable(t, "a", "b", "c")
	a := mustPlayer(t, room, "a")
	if _, err := svc.PlayCards(room, "a", ids(a.Hand[0]), t0); err != nil {
		t.Fatalf("lead: %v", err)
	}

	evs, err := svc.PassTurn(room, "b", t0)
	if err != nil {
		t.Fatalf("pass b: %v", err)
	}
	if evs[0].Payload.(TurnPassedPayload).RoundReset {
		t.Fatalf("round reset after a single pass")
	}
	evs, err = svc.PassTurn(room, "c", t0)
	if err != nil {
		t.Fatalf("pass c: %v", err)
	}
	payload := evs[0].Payload.(TurnPassedPayload)
	if !payload.RoundReset || !room.AllPlayersPassed {
		t.Fatalf("expected round reset, payload = %+v", payload)
	}
	if room.LastPlay != nil {
		t.Fatalf("last play not cleared")
	}
	for _, p := range room.Players {
		if p.Passed {
			t.Fatalf("%s still marked passed", p.ID)
		}
	}
	if room.CurrentPlayerID != "a" {
		t.Fatalf("current = %s, want a", room.CurrentPlayerID)
	}

	// After the reset any count is accepted and labelled a new round.
	if _, err := svc.PlayCards(room, "a", ids(a.Hand[:2]...), t0); err != nil {
		t.Fatalf("new round play: %v", err)
	}
	if room.LastPlay.Category != domain.CategoryNewRound {
		t.Fatalf("category = %s, want new_round", room.LastPlay.Category)
	}
	if room.AllPlayersPassed {
		t.Fatalf("play did not clear round reset")
	}
}

func TestPassTurnRequiresTurn(t *testing.T) {
	svc, room := startedTable(t, "a", "b")
	if _, err := svc.PassTurn(room, "b", t0); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
}

func TestLeaveCollapsesRing(t *testing.T) {
	svc, room := startedTable(t, "a", "b", "c")
	a := mustPlayer(t, room, "a")
	if _, err := svc.PlayCards(room, "a", ids(a.Hand[0]), t0); err != nil {
		t.Fatalf("lead: %v", err)
	}
	// b holds the turn at index 1; after b leaves, c sits at index 1.
	bHand := len(mustPlayer(t, room, "b").Hand)
	discardBefore := len(room.DiscardPile)

	evs, err := svc.Leave(room, "b", t0)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if room.CurrentPlayerID != "c" {
		t.Fatalf("current = %s, want c", room.CurrentPlayerID)
	}
	if len(room.DiscardPile) != discardBefore+bHand {
		t.Fatalf("leaver's hand not discarded")
	}
	if room.TotalCards() != domain.DeckSize {
		t.Fatalf("total cards = %d, want %d", room.TotalCards(), domain.DeckSize)
	}
	payload := evs[0].Payload.(PlayerLeftPayload)
	if payload.CurrentPlayerID != "c" || len(payload.Players) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	if room.NextPlayerID("c") != "a" {
		t.Fatalf("ring not collapsed: next after c = %s", room.NextPlayerID("c"))
	}
}

func TestLeaveReassignsDealer(t *testing.T) {
	svc, room := newTable(t, "a", "b", "c")
	if _, err := svc.Leave(room, "a", t0); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if room.DealerID != "b" {
		t.Fatalf("dealer = %s, want b", room.DealerID)
	}
	if _, err := svc.Leave(room, "a", t0); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("err = %v, want ErrNotSeated", err)
	}
}

func TestCelestialWin(t *testing.T) {
	svc, room := startedTable(t, "alice", "bob")
	alice := mustPlayer(t, room, "alice")
	bob := mustPlayer(t, room, "bob")
	if alice.CardCount != domain.DealerHandSize || bob.CardCount != domain.HandSize {
		t.Fatalf("opening hands = %d/%d", alice.CardCount, bob.CardCount)
	}

	// Alice goes out with all six cards while Bob is untouched.
	evs, err := svc.PlayCards(room, "alice", ids(alice.Hand...), t0)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if len(evs) != 2 || evs[1].Kind != EventGameEnded {
		t.Fatalf("events = %+v, want card_played then game_ended", evs)
	}
	result := evs[1].Payload.(GameEndedPayload)
	if result.WinnerID != "alice" || result.SpecialResult != domain.SpecialCelestial {
		t.Fatalf("result = %+v, want celestial win for alice", result)
	}
	if room.Phase != domain.PhaseWaiting || room.CurrentPlayerID != "" {
		t.Fatalf("room not reset: phase %s current %q", room.Phase, room.CurrentPlayerID)
	}
	if room.LastResult == nil || room.LastResult.WinnerID != "alice" {
		t.Fatalf("last result = %+v", room.LastResult)
	}

	// The room can be dealt again.
	if _, err := svc.StartGame(room, "bob", t0); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if room.LastResult != nil {
		t.Fatalf("last result survived restart")
	}
}

func TestNoCelestialWinAfterDealerLeaves(t *testing.T) {
	svc, room := startedTable(t, "a", "b", "c")
	if _, err := svc.Leave(room, "a", t0); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if room.DealerID != "b" || room.CurrentPlayerID != "b" {
		t.Fatalf("dealer %s current %s, want b/b", room.DealerID, room.CurrentPlayerID)
	}

	// b was dealt an ordinary hand; emptying it in one lead is a plain win
	// even though b is now the dealer and c is untouched.
	b := mustPlayer(t, room, "b")
	if b.CardCount != domain.HandSize {
		t.Fatalf("b holds %d cards", b.CardCount)
	}
	evs, err := svc.PlayCards(room, "b", ids(b.Hand...), t0)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	result := evs[len(evs)-1].Payload.(GameEndedPayload)
	if result.WinnerID != "b" || result.SpecialResult != domain.SpecialNone {
		t.Fatalf("result = %+v, want plain win for b", result)
	}
}

func TestOrdinaryWin(t *testing.T) {
	svc, room := startedTable(t, "a", "b")
	a := mustPlayer(t, room, "a")
	b := mustPlayer(t, room, "b")
	a.SetHand([]domain.Card{hc(domain.RankThree, domain.SuitSpades), hc(domain.RankFour, domain.SuitSpades)})
	b.SetHand([]domain.Card{hc(domain.RankFive, domain.SuitSpades)})

	if _, err := svc.PlayCards(room, "a", ids(a.Hand[0]), t0); err != nil {
		t.Fatalf("lead: %v", err)
	}
	evs, err := svc.PlayCards(room, "b", ids(b.Hand[0]), t0)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	result := evs[len(evs)-1].Payload.(GameEndedPayload)
	if result.WinnerID != "b" || result.SpecialResult != domain.SpecialNone {
		t.Fatalf("result = %+v, want plain win for b", result)
	}
}
