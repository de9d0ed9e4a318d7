package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Rank string

const (
	Ace   Rank = "ACE"
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "JACK"
	Queen Rank = "QUEEN"
	King  Rank = "KING"
)

type Suit string

const (
	Hearts   Suit = "HEARTS"
	Diamonds Suit = "DIAMONDS"
	Clubs    Suit = "CLUBS"
	Spades   Suit = "SPADES"
)

var (
	Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
	Suits = []Suit{Hearts, Diamonds, Clubs, Spades}
)

// очки без тузов, туз считается отдельно
var rankPoints = map[Rank]int{
	Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7, Eight: 8, Nine: 9, Ten: 10,
	Jack: 10, Queen: 10, King: 10,
}

// ErrInvalidCardValue is matched with errors.Is for any InvalidCardValue.
var ErrInvalidCardValue = errors.New("invalid card value")

// InvalidCardValue reports a rank or suit outside the known set.
type InvalidCardValue struct {
	Value string
}

func (e *InvalidCardValue) Error() string {
	return fmt.Sprintf("invalid card value %q", e.Value)
}

func (e *InvalidCardValue) Is(target error) bool {
	return target == ErrInvalidCardValue
}

// ParseRank maps a provider value ("ACE", "10", "king") onto the closed rank set.
func ParseRank(s string) (Rank, error) {
	r := Rank(strings.ToUpper(strings.TrimSpace(s)))
	if r == Ace {
		return r, nil
	}
	if _, ok := rankPoints[r]; ok {
		return r, nil
	}
	return "", &InvalidCardValue{Value: s}
}

func ParseSuit(s string) (Suit, error) {
	su := Suit(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Suits {
		if su == known {
			return su, nil
		}
	}
	return "", &InvalidCardValue{Value: s}
}

// UnmarshalJSON accepts only known ranks, in any letter case.
func (r *Rank) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRank(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

func (s *Suit) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseSuit(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (r Rank) IsAce() bool {
	return r == Ace
}

// Points returns the value of a non-ace rank. Aces are valued by Score.
func (r Rank) Points() (int, error) {
	p, ok := rankPoints[r]
	if !ok {
		return 0, &InvalidCardValue{Value: string(r)}
	}
	return p, nil
}

type Card struct {
	Value Rank   `json:"value"`
	Suit  Suit   `json:"suit"`
	Code  string `json:"code,omitempty"`
	Image string `json:"image,omitempty"`
}

// Validate checks rank and suit against the known sets.
func (c Card) Validate() error {
	if _, err := ParseRank(string(c.Value)); err != nil {
		return err
	}
	if _, err := ParseSuit(string(c.Suit)); err != nil {
		return err
	}
	return nil
}

func NewCard(r Rank, s Suit) Card {
	return Card{Value: r, Suit: s, Code: cardCode(r, s)}
}

// cardCode builds the provider style code, e.g. "AS", "0H" for ten of hearts.
func cardCode(r Rank, s Suit) string {
	var head string
	switch r {
	case Ten:
		head = "0"
	default:
		head = string(r)[:1]
	}
	return head + string(s)[:1]
}

func (c Card) String() string {
	var sym string
	switch c.Suit {
	case Hearts:
		sym = "♥"
	case Diamonds:
		sym = "♦"
	case Clubs:
		sym = "♣"
	case Spades:
		sym = "♠"
	}

	name := string(c.Value)
	switch c.Value {
	case Ace, Jack, Queen, King:
		name = name[:1]
	}
	return name + sym
}
