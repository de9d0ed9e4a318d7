package game

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRank(t *testing.T) {
	for _, in := range []string{"ACE", "ace", "2", "10", "JACK", "Queen", " king "} {
		if _, err := ParseRank(in); err != nil {
			t.Fatalf("ParseRank(%q): %v", in, err)
		}
	}

	for _, in := range []string{"", "1", "11", "JOKER", "A"} {
		_, err := ParseRank(in)
		if !errors.Is(err, ErrInvalidCardValue) {
			t.Fatalf("ParseRank(%q): expected ErrInvalidCardValue, got %v", in, err)
		}
	}
}

func TestParseSuit(t *testing.T) {
	s, err := ParseSuit("spades")
	if err != nil || s != Spades {
		t.Fatalf("expected SPADES, got %q %v", s, err)
	}
	if _, err := ParseSuit("STARS"); !errors.Is(err, ErrInvalidCardValue) {
		t.Fatalf("expected ErrInvalidCardValue, got %v", err)
	}
}

func TestCardCodeAndString(t *testing.T) {
	c := NewCard(Ten, Hearts)
	if c.Code != "0H" {
		t.Fatalf("expected 0H, got %s", c.Code)
	}
	if c.String() != "10♥" {
		t.Fatalf("expected 10♥, got %s", c.String())
	}
	c = NewCard(Ace, Spades)
	if c.Code != "AS" || c.String() != "A♠" {
		t.Fatalf("expected AS / A♠, got %s / %s", c.Code, c.String())
	}
}

func TestCardUnmarshalUsesKnownSets(t *testing.T) {
	var c Card
	if err := json.Unmarshal([]byte(`{"value":"ace","suit":"spades","code":"AS"}`), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if c.Value != Ace || c.Suit != Spades {
		t.Fatalf("expected canonical ACE/SPADES, got %s/%s", c.Value, c.Suit)
	}

	for _, in := range []string{
		`{"value":"ACE","suit":"BOGUS"}`,
		`{"value":"1","suit":"HEARTS"}`,
	} {
		err := json.Unmarshal([]byte(in), &c)
		if !errors.Is(err, ErrInvalidCardValue) {
			t.Fatalf("%s: expected ErrInvalidCardValue, got %v", in, err)
		}
	}
}

func TestHandValidate(t *testing.T) {
	if err := (Hand{NewCard(Two, Hearts), NewCard(King, Clubs)}).Validate(); err != nil {
		t.Fatalf("valid hand rejected: %v", err)
	}
	bad := Hand{NewCard(Two, Hearts), {Value: Ace, Suit: "STARS"}}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidCardValue) {
		t.Fatalf("expected ErrInvalidCardValue, got %v", err)
	}
}
