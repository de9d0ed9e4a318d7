package deckapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blackjack21/internal/game"
)

var ErrProvider = errors.New("deck provider error")

// Client talks to a deckofcardsapi.com compatible service.
type Client struct {
	Base string
	HTTP *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{Base: base, HTTP: &http.Client{Timeout: timeout}}
}

type apiCard struct {
	Code  string `json:"code"`
	Image string `json:"image"`
	Value string `json:"value"`
	Suit  string `json:"suit"`
}

type apiResponse struct {
	Success   bool      `json:"success"`
	DeckID    string    `json:"deck_id"`
	Remaining int       `json:"remaining"`
	Cards     []apiCard `json:"cards"`
	Error     string    `json:"error"`
}

// NewDeck shuffles a fresh single deck and returns its handle.
func (c *Client) NewDeck(ctx context.Context) (string, error) {
	var out apiResponse
	if err := c.getJSON(ctx, "/api/deck/new/shuffle/?deck_count=1", &out); err != nil {
		return "", err
	}
	if out.DeckID == "" {
		return "", fmt.Errorf("%w: empty deck id", ErrProvider)
	}
	return out.DeckID, nil
}

// Draw takes count cards from the deck. Unknown ranks or suits are rejected here.
func (c *Client) Draw(ctx context.Context, deckID string, count int) ([]game.Card, error) {
	if deckID == "" {
		return nil, fmt.Errorf("%w: empty deck id", ErrProvider)
	}
	if count <= 0 {
		return nil, fmt.Errorf("invalid draw count %d", count)
	}

	var out apiResponse
	path := "/api/deck/" + url.PathEscape(deckID) + "/draw/?count=" + strconv.Itoa(count)
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	if len(out.Cards) < count {
		return nil, fmt.Errorf("%w: requested %d cards, got %d", ErrProvider, count, len(out.Cards))
	}

	cards := make([]game.Card, 0, count)
	for _, ac := range out.Cards[:count] {
		card, err := parseCard(ac)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func parseCard(ac apiCard) (game.Card, error) {
	rank, err := game.ParseRank(ac.Value)
	if err != nil {
		return game.Card{}, err
	}
	suit, err := game.ParseSuit(ac.Suit)
	if err != nil {
		return game.Card{}, err
	}
	return game.Card{Value: rank, Suit: suit, Code: ac.Code, Image: ac.Image}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out *apiResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: get %s: %s", ErrProvider, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrProvider, path, err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "unsuccessful response"
		}
		return fmt.Errorf("%w: %s", ErrProvider, msg)
	}
	return nil
}
