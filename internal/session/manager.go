package session

import (
	"context"
	"errors"
	"fmt"

	"blackjack21/internal/game"
	"blackjack21/internal/logging"
	"blackjack21/internal/round"
)

var (
	ErrRoundDecided   = errors.New("round already decided")
	ErrInvalidSide    = errors.New("side must be player or dealer")
	ErrInvalidOutcome = errors.New("winner must be empty, player or dealer")
)

// Source hands out shuffled decks and draws from them.
type Source interface {
	NewDeck(ctx context.Context) (string, error)
	Draw(ctx context.Context, deckID string, count int) ([]game.Card, error)
}

// InitialCards is dealt to each side when a round starts.
const InitialCards = 2

type Manager struct {
	source Source
	rounds round.Repository
	locks  *keyedMutex
}

func NewManager(source Source, rounds round.Repository) *Manager {
	return &Manager{
		source: source,
		rounds: rounds,
		locks:  newKeyedMutex(),
	}
}

// Start deals two cards to the player, then two to the dealer, and stores the round.
// A natural 21 on the deal decides the round immediately.
func (m *Manager) Start(ctx context.Context) (*game.Round, error) {
	deckID, err := m.source.NewDeck(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open deck: %w", err)
	}

	player, err := m.source.Draw(ctx, deckID, InitialCards)
	if err != nil {
		return nil, fmt.Errorf("failed to deal player: %w", err)
	}
	dealer, err := m.source.Draw(ctx, deckID, InitialCards)
	if err != nil {
		return nil, fmt.Errorf("failed to deal dealer: %w", err)
	}

	r, err := game.NewRound(deckID, player, dealer)
	if err != nil {
		return nil, err
	}

	saved, err := m.rounds.Save(ctx, r)
	if err != nil {
		return nil, err
	}

	logging.L.Info("round started", "round", saved.ID,
		"player", saved.PlayerPoints, "dealer", saved.DealerPoints, "winner", saved.Winner)
	return saved, nil
}

// Draw adds one card to the named side. Decided rounds are rejected, and a
// failed draw leaves the stored round as it was.
func (m *Manager) Draw(ctx context.Context, id, side string) (*game.Round, game.Card, error) {
	s, ok := game.ParseSide(side)
	if !ok {
		return nil, game.Card{}, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	log := logging.With("round", id)

	unlock := m.locks.Lock(id)
	defer unlock()

	r, err := m.rounds.Get(ctx, id)
	if err != nil {
		return nil, game.Card{}, err
	}
	if r.Decided() {
		return nil, game.Card{}, fmt.Errorf("%w: %s won", ErrRoundDecided, r.Winner)
	}

	drawn, err := m.source.Draw(ctx, r.DeckID, 1)
	if err != nil {
		return nil, game.Card{}, fmt.Errorf("failed to draw card: %w", err)
	}
	card := drawn[0]

	if err := r.Add(s, card); err != nil {
		return nil, game.Card{}, err
	}

	updated, err := m.rounds.Update(ctx, r)
	if err != nil {
		return nil, game.Card{}, err
	}

	log.Debug("card drawn", "side", s, "card", card.String(),
		"player", updated.PlayerPoints, "dealer", updated.DealerPoints)
	if updated.Decided() {
		log.Info("round decided", "winner", updated.Winner)
	}
	return updated, card, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*game.Round, error) {
	return m.rounds.Get(ctx, id)
}

// Patch replaces parts of a stored round. Nil fields are kept.
type Patch struct {
	PlayerCards *game.Hand
	DealerCards *game.Hand
	// Winner, when set, is stored verbatim instead of being recomputed.
	Winner *game.Outcome
}

// Overwrite applies p to the round and recomputes the hand values from the cards.
func (m *Manager) Overwrite(ctx context.Context, id string, p Patch) (*game.Round, error) {
	if p.Winner != nil {
		if _, ok := game.ParseOutcome(string(*p.Winner)); !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, *p.Winner)
		}
	}
	for _, h := range []*game.Hand{p.PlayerCards, p.DealerCards} {
		if h == nil {
			continue
		}
		if err := h.Validate(); err != nil {
			return nil, err
		}
	}

	unlock := m.locks.Lock(id)
	defer unlock()

	r, err := m.rounds.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.PlayerCards != nil {
		r.PlayerCards = append(game.Hand(nil), (*p.PlayerCards)...)
	}
	if p.DealerCards != nil {
		r.DealerCards = append(game.Hand(nil), (*p.DealerCards)...)
	}

	if p.Winner != nil {
		if err := r.RescorePoints(); err != nil {
			return nil, err
		}
		r.Winner = *p.Winner
	} else if err := r.Rescore(); err != nil {
		return nil, err
	}

	updated, err := m.rounds.Update(ctx, r)
	if err != nil {
		return nil, err
	}

	logging.L.Info("round overwritten", "round", id, "winner", updated.Winner)
	return updated, nil
}
