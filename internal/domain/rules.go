package domain

// Verdict is the outcome of validating a proposed play.
type Verdict struct {
	Legal    bool
	Category Category
	Reason   string
}

// ReasonCountMismatch is returned when a non-bomb does not match the size of
// the previous play.
const ReasonCountMismatch = "count must match previous play"

// Validate decides whether cards may be played on top of lastPlay.
//
// An open table (no lastPlay) accepts anything; it is a fresh round when the
// round-reset flag is set and the opening lead otherwise. A bomb beats
// anything. After a round reset the size constraint is lifted. Otherwise the
// play must have the same number of cards as the previous one.
func Validate(cards []Card, lastPlay *Play, roundReset bool) Verdict {
	if lastPlay == nil {
		if roundReset {
			return Verdict{Legal: true, Category: CategoryNewRound}
		}
		return Verdict{Legal: true, Category: CategoryAny}
	}

	if IsBomb(cards) {
		return Verdict{Legal: true, Category: CategoryBomb}
	}

	if roundReset {
		return Verdict{Legal: true, Category: CategoryNewRound}
	}

	// TODO: compare ranks for normal plays once the house ranking (2 high,
	// jokers wild) is settled; only the card count is enforced today.
	if len(cards) != len(lastPlay.Cards) {
		return Verdict{Legal: false, Reason: ReasonCountMismatch}
	}
	return Verdict{Legal: true, Category: CategoryNormal}
}

// IsBomb reports whether cards are 3 or 4 cards of one rank, with jokers
// standing in for any rank.
func IsBomb(cards []Card) bool {
	if len(cards) != 3 && len(cards) != 4 {
		return false
	}

	rank := RankJoker
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if rank == RankJoker {
			rank = c.Rank
			continue
		}
		if c.Rank != rank {
			return false
		}
	}
	return true
}
