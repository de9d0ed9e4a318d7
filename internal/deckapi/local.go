package deckapi

import (
	"context"
	"fmt"
	"sync"

	"blackjack21/internal/game"

	"github.com/google/uuid"
)

// Local serves decks from memory, for offline play and tests.
type Local struct {
	mu    sync.Mutex
	decks map[string]*game.Deck
	// NewDeckFunc is used for every new deck; defaults to game.NewDeck.
	NewDeckFunc func() *game.Deck
}

func NewLocal() *Local {
	return &Local{
		decks:       make(map[string]*game.Deck),
		NewDeckFunc: game.NewDeck,
	}
}

func (l *Local) NewDeck(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decks[id] = l.NewDeckFunc()
	return id, nil
}

func (l *Local) Draw(ctx context.Context, deckID string, count int) ([]game.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.decks[deckID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown deck %q", ErrProvider, deckID)
	}
	return d.Draw(count)
}
