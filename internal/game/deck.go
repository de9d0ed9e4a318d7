package game

import (
	"fmt"
	"math/rand"
)

type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	d := &Deck{
		cards: make([]Card, 0, len(Suits)*len(Ranks)),
	}

	for _, s := range Suits {
		for _, r := range Ranks {
			d.cards = append(d.cards, NewCard(r, s))
		}
	}

	d.Shuffle()
	return d
}

// NewDeckFrom builds an unshuffled deck; cards are drawn in the given order.
func NewDeckFrom(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw takes n cards from the top. An exhausted deck is replaced by a fresh shuffled one.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid draw count %d", n)
	}

	out := make([]Card, 0, n)
	for len(out) < n {
		if len(d.cards) == 0 {
			*d = *NewDeck()
		}
		out = append(out, d.cards[0])
		d.cards = d.cards[1:]
	}
	return out, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
