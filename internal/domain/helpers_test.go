package domain

import (
	"reflect"
	"testing"
	"time"
)

func seatedRoom(ids ...string) *Room {
	r := NewRoom("R1", NewPlayer(ids[0], ids[0]), time.Unix(0, 0))
	for _, id := range ids[1:] {
		r.Seat(NewPlayer(id, id))
	}
	return r
}

func TestSeatOrderIsTurnOrder(t *testing.T) {
	r := seatedRoom("a", "b", "c")

	tests := []struct {
		from string
		want string
	}{
		{from: "a", want: "b"},
		{from: "b", want: "c"},
		{from: "c", want: "a"},
		{from: "zz", want: ""},
	}
	for _, tt := range tests {
		if got := r.NextPlayerID(tt.from); got != tt.want {
			t.Fatalf("NextPlayerID(%q) = %q, want %q", tt.from, got, tt.want)
		}
	}
}

func TestUnseatCollapsesRing(t *testing.T) {
	r := seatedRoom("a", "b", "c")

	p, idx, ok := r.Unseat("b")
	if !ok || p.ID != "b" || idx != 1 {
		t.Fatalf("Unseat = (%v, %d, %v)", p, idx, ok)
	}
	if got := r.NextPlayerID("a"); got != "c" {
		t.Fatalf("NextPlayerID(a) = %q, want c", got)
	}
	if r.SeatIndex("c") != 1 {
		t.Fatalf("SeatIndex(c) = %d, want 1", r.SeatIndex("c"))
	}
	if _, _, ok := r.Unseat("b"); ok {
		t.Fatalf("second Unseat should fail")
	}
}

func TestPlayerAtWraps(t *testing.T) {
	r := seatedRoom("a", "b")
	if got := r.PlayerAt(2); got != "a" {
		t.Fatalf("PlayerAt(2) = %q, want a", got)
	}
	if got := r.PlayerAt(-1); got != "b" {
		t.Fatalf("PlayerAt(-1) = %q, want b", got)
	}
}

func TestResolveCards(t *testing.T) {
	hand := []Card{card(RankThree, SuitSpades), card(RankFour, SuitHearts), joker1}

	got, ok := ResolveCards(hand, []string{"Joker1", "3♠"})
	if !ok {
		t.Fatalf("ResolveCards should succeed")
	}
	if !reflect.DeepEqual(got, []Card{joker1, hand[0]}) {
		t.Fatalf("ResolveCards() = %v", got)
	}

	if _, ok := ResolveCards(hand, []string{"3♠", "3♠"}); ok {
		t.Fatalf("duplicate id must not match one hand card twice")
	}
	if _, ok := ResolveCards(hand, []string{"K♣"}); ok {
		t.Fatalf("missing card must fail")
	}
}

func TestRemoveCards(t *testing.T) {
	hand := []Card{
		card(RankThree, SuitSpades),
		card(RankFour, SuitHearts),
		card(RankFive, SuitDiamonds),
		card(RankSix, SuitSpades),
	}
	played := []Card{card(RankFour, SuitHearts), card(RankSix, SuitSpades)}

	got := RemoveCards(hand, played)
	want := []Card{card(RankThree, SuitSpades), card(RankFive, SuitDiamonds)}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("RemoveCards() = %v, want %v", got, want)
	}
}

func TestRecordPlayKeepsLastFour(t *testing.T) {
	r := seatedRoom("a")
	for i := 0; i < 6; i++ {
		r.RecordPlay(Play{PlayerID: string(rune('a' + i))})
	}
	if len(r.RecentPlays) != RecentPlaysLimit {
		t.Fatalf("len(RecentPlays) = %d, want %d", len(r.RecentPlays), RecentPlaysLimit)
	}
	if r.RecentPlays[0].PlayerID != "c" || r.RecentPlays[3].PlayerID != "f" {
		t.Fatalf("unexpected history: %+v", r.RecentPlays)
	}
}
