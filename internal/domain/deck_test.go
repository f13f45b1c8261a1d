package domain

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}

	seen := make(map[string]bool)
	jokers := 0
	for _, c := range deck {
		if seen[c.ID] {
			t.Fatalf("duplicate card found: %s", c.ID)
		}
		seen[c.ID] = true
		if c.IsJoker() {
			jokers++
			continue
		}
		wantColor := Black
		if c.Suit == SuitHearts || c.Suit == SuitDiamonds {
			wantColor = Red
		}
		if c.Color != wantColor {
			t.Fatalf("%s color = %s, want %s", c.ID, c.Color, wantColor)
		}
	}
	if jokers != 2 || !seen["Joker1"] || !seen["Joker2"] {
		t.Fatalf("expected Joker1 and Joker2, got %d jokers", jokers)
	}
	if !seen["10♥"] || !seen["A♠"] || !seen["2♣"] {
		t.Fatalf("unexpected id format")
	}
}

func TestShuffleDeckIsPermutation(t *testing.T) {
	deck := ShuffleDeck(NewDeck(), rand.New(rand.NewSource(7)))
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}

	seen := make(map[string]bool, DeckSize)
	for _, c := range deck {
		seen[c.ID] = true
	}
	if len(seen) != DeckSize {
		t.Fatalf("shuffle lost cards: %d distinct", len(seen))
	}

	ordered := NewDeck()
	same := 0
	for i := range deck {
		if deck[i].ID == ordered[i].ID {
			same++
		}
	}
	if same == DeckSize {
		t.Fatalf("shuffle left the deck untouched")
	}
}

func TestShuffleDeckWithoutRng(t *testing.T) {
	a := ShuffleDeck(NewDeck(), nil)
	b := ShuffleDeck(NewDeck(), nil)
	identical := true
	for i := range a {
		if a[i].ID != b[i].ID {
			identical = false
			break
		}
	}
	if identical {
		t.Fatalf("two unseeded shuffles produced the same order")
	}
}

func TestCardMarshalJSON(t *testing.T) {
	b, err := json.Marshal(newCard(RankTen, SuitHearts))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["id"] != "10♥" || got["value"] != "10" || got["suit"] != "♥" || got["color"] != "red" {
		t.Fatalf("unexpected card json: %s", b)
	}
	if _, ok := got["isJoker"]; ok {
		t.Fatalf("non-joker should omit isJoker: %s", b)
	}
}

func TestCardRefsAcceptsIDsAndObjects(t *testing.T) {
	var refs CardRefs
	if err := json.Unmarshal([]byte(`["A♠", {"id": "Joker1", "value": "ignored"}]`), &refs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(refs) != 2 || refs[0] != "A♠" || refs[1] != "Joker1" {
		t.Fatalf("refs = %v", refs)
	}

	if err := json.Unmarshal([]byte(`[{"value": "A"}]`), &refs); err == nil {
		t.Fatal("expected error for card without id")
	}
	if err := json.Unmarshal([]byte(`"A♠"`), &refs); err == nil {
		t.Fatal("expected error for non-array")
	}
}
