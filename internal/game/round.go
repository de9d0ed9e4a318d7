package game

import (
	"fmt"
	"time"
)

type Side string

const (
	SidePlayer Side = "player"
	SideDealer Side = "dealer"
)

func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SidePlayer, SideDealer:
		return Side(s), true
	}
	return "", false
}

// Hand is the ordered list of cards held by one side.
type Hand []Card

func (h Hand) Score() (int, error) {
	return Score(h)
}

func (h Hand) Validate() error {
	for _, c := range h {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Round хранит состояние одной раздачи
type Round struct {
	ID           string    `json:"_id"`
	DeckID       string    `json:"deckId"`
	PlayerCards  Hand      `json:"playerCards"`
	DealerCards  Hand      `json:"dealerCards"`
	PlayerPoints int       `json:"playerPoints"`
	DealerPoints int       `json:"dealerPoints"`
	Winner       Outcome   `json:"winner"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewRound builds a scored round from the initial deal.
func NewRound(deckID string, player, dealer []Card) (*Round, error) {
	r := &Round{
		DeckID:      deckID,
		PlayerCards: append(Hand(nil), player...),
		DealerCards: append(Hand(nil), dealer...),
	}
	if err := r.Rescore(); err != nil {
		return nil, err
	}
	return r, nil
}

// Add appends a drawn card to one side and rescores the round.
func (r *Round) Add(side Side, card Card) error {
	switch side {
	case SidePlayer:
		r.PlayerCards = append(r.PlayerCards, card)
	case SideDealer:
		r.DealerCards = append(r.DealerCards, card)
	default:
		return fmt.Errorf("unknown side %q", side)
	}
	return r.Rescore()
}

// Rescore recomputes both hand values from the full hands and resolves the winner.
func (r *Round) Rescore() error {
	if err := r.RescorePoints(); err != nil {
		return err
	}
	r.Winner = ResolveOutcome(r.PlayerPoints, r.DealerPoints)
	return nil
}

// RescorePoints recomputes hand values but leaves Winner untouched.
func (r *Round) RescorePoints() error {
	p, err := r.PlayerCards.Score()
	if err != nil {
		return fmt.Errorf("failed to score player hand: %w", err)
	}
	d, err := r.DealerCards.Score()
	if err != nil {
		return fmt.Errorf("failed to score dealer hand: %w", err)
	}
	r.PlayerPoints = p
	r.DealerPoints = d
	return nil
}

func (r *Round) Decided() bool {
	return r.Winner != Undecided
}

func (r *Round) Clone() *Round {
	c := *r
	c.PlayerCards = append(Hand(nil), r.PlayerCards...)
	c.DealerCards = append(Hand(nil), r.DealerCards...)
	return &c
}
