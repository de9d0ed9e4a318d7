package game

const BlackjackPoints = 21

type Outcome string

const (
	Undecided Outcome = ""
	PlayerWin Outcome = "player"
	DealerWin Outcome = "dealer"
)

func (o Outcome) String() string {
	if o == Undecided {
		return "undecided"
	}
	return string(o)
}

// Score returns the hand value. Non-ace cards are summed first, then every
// ace in draw order counts 11 if that keeps the total at or under 21, else 1.
func Score(hand []Card) (int, error) {
	total := 0
	aces := 0

	for _, card := range hand {
		if card.Value.IsAce() {
			aces++
			continue
		}
		p, err := card.Value.Points()
		if err != nil {
			return 0, err
		}
		total += p
	}

	for i := 0; i < aces; i++ {
		if total+11 <= BlackjackPoints {
			total += 11
		} else {
			total++
		}
	}

	return total, nil
}

func IsBust(points int) bool {
	return points > BlackjackPoints
}

// ResolveOutcome classifies the round from both hand values.
// A natural 21 wins first, player before dealer. Otherwise a bust hands the
// round to the other side; a double bust goes to the dealer.
func ResolveOutcome(playerPoints, dealerPoints int) Outcome {
	if playerPoints == BlackjackPoints || dealerPoints == BlackjackPoints {
		if playerPoints == BlackjackPoints {
			return PlayerWin
		}
		return DealerWin
	}

	if IsBust(playerPoints) || IsBust(dealerPoints) {
		if IsBust(playerPoints) {
			return DealerWin
		}
		return PlayerWin
	}

	return Undecided
}

func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case Undecided, PlayerWin, DealerWin:
		return Outcome(s), true
	}
	return "", false
}
