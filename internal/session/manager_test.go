package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"blackjack21/internal/deckapi"
	"blackjack21/internal/game"
	"blackjack21/internal/round"
)

type memRepo struct {
	mu     sync.Mutex
	rounds map[string]*game.Round
	next   int
}

func newMemRepo() *memRepo {
	return &memRepo{rounds: make(map[string]*game.Round)}
}

func (m *memRepo) Save(ctx context.Context, r *game.Round) (*game.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	c := r.Clone()
	c.ID = fmt.Sprintf("r%d", m.next)
	m.rounds[c.ID] = c
	return c.Clone(), nil
}

func (m *memRepo) Get(ctx context.Context, id string) (*game.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return nil, round.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *memRepo) Update(ctx context.Context, r *game.Round) (*game.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rounds[r.ID]; !ok {
		return nil, round.ErrNotFound
	}
	m.rounds[r.ID] = r.Clone()
	return r.Clone(), nil
}

func card(r game.Rank) game.Card {
	return game.NewCard(r, game.Clubs)
}

// fixedSource deals the given cards in order: player, player, dealer, dealer, then draws.
func fixedSource(ranks ...game.Rank) *deckapi.Local {
	l := deckapi.NewLocal()
	l.NewDeckFunc = func() *game.Deck {
		cs := make([]game.Card, 0, len(ranks))
		for _, r := range ranks {
			cs = append(cs, card(r))
		}
		return game.NewDeckFrom(cs...)
	}
	return l
}

type failingSource struct {
	Source
	fail bool
}

func (f *failingSource) Draw(ctx context.Context, deckID string, count int) ([]game.Card, error) {
	if f.fail {
		return nil, deckapi.ErrProvider
	}
	return f.Source.Draw(ctx, deckID, count)
}

func TestStartDealsTwoEach(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Three, game.Ten, game.Four), newMemRepo())

	r, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(r.PlayerCards) != 2 || len(r.DealerCards) != 2 {
		t.Fatalf("expected 2+2 cards, got %d+%d", len(r.PlayerCards), len(r.DealerCards))
	}
	if r.PlayerPoints != 5 || r.DealerPoints != 14 || r.Decided() {
		t.Fatalf("unexpected state %d/%d %s", r.PlayerPoints, r.DealerPoints, r.Winner)
	}
	if r.ID == "" || r.DeckID == "" {
		t.Fatal("expected ids to be assigned")
	}
}

func TestStartNaturalDecides(t *testing.T) {
	m := NewManager(fixedSource(game.Nine, game.Seven, game.Ace, game.Queen), newMemRepo())

	r, err := m.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Winner != game.DealerWin {
		t.Fatalf("expected dealer natural, got %s", r.Winner)
	}
}

func TestDrawUntilBust(t *testing.T) {
	m := NewManager(fixedSource(game.Ten, game.Six, game.Two, game.Three, game.King), newMemRepo())
	ctx := context.Background()

	r, err := m.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	r, c, err := m.Draw(ctx, r.ID, "player")
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if c.Value != game.King {
		t.Fatalf("expected king, got %s", c)
	}
	if r.PlayerPoints != 26 || r.Winner != game.DealerWin {
		t.Fatalf("expected player bust, got %d %s", r.PlayerPoints, r.Winner)
	}

	_, _, err = m.Draw(ctx, r.ID, "dealer")
	if !errors.Is(err, ErrRoundDecided) {
		t.Fatalf("expected ErrRoundDecided, got %v", err)
	}
}

func TestDrawReachingTwentyOneDecides(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Three, game.Ten, game.Five, game.Six), newMemRepo())
	ctx := context.Background()

	r, _ := m.Start(ctx)
	r, _, err := m.Draw(ctx, r.ID, "dealer")
	if err != nil {
		t.Fatal(err)
	}
	if r.DealerPoints != 21 || r.Winner != game.DealerWin {
		t.Fatalf("expected dealer 21, got %d %s", r.DealerPoints, r.Winner)
	}
}

func TestDrawValidation(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Three, game.Four, game.Five), newMemRepo())
	ctx := context.Background()

	if _, _, err := m.Draw(ctx, "r1", "banker"); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}
	if _, _, err := m.Draw(ctx, "missing", "player"); !errors.Is(err, round.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDrawSourceFailureLeavesRoundUntouched(t *testing.T) {
	repo := newMemRepo()
	src := &failingSource{Source: fixedSource(game.Two, game.Three, game.Four, game.Five)}
	m := NewManager(src, repo)
	ctx := context.Background()

	r, err := m.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	src.fail = true
	if _, _, err := m.Draw(ctx, r.ID, "player"); !errors.Is(err, deckapi.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}

	stored, _ := repo.Get(ctx, r.ID)
	if len(stored.PlayerCards) != 2 || stored.PlayerPoints != r.PlayerPoints {
		t.Fatalf("round was modified: %+v", stored)
	}
}

func TestConcurrentDrawsAreSerialised(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Two, game.Two, game.Two), newMemRepo())
	ctx := context.Background()

	// колода с четырьмя двойками потом пересобирается, значения неважны
	r, err := m.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = m.Draw(ctx, r.ID, "dealer")
		}()
	}
	wg.Wait()

	final, _ := m.Get(ctx, r.ID)
	want, err := final.DealerCards.Score()
	if err != nil {
		t.Fatal(err)
	}
	if final.DealerPoints != want {
		t.Fatalf("cached points %d drift from hand %d", final.DealerPoints, want)
	}
	if got := m.locks.size(); got != 0 {
		t.Fatalf("expected lock table to drain, %d left", got)
	}
}

func TestOverwriteRecomputes(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Three, game.Four, game.Five), newMemRepo())
	ctx := context.Background()
	r, _ := m.Start(ctx)

	player := game.Hand{card(game.Ace), card(game.Jack)}
	got, err := m.Overwrite(ctx, r.ID, Patch{PlayerCards: &player})
	if err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if got.PlayerPoints != 21 || got.Winner != game.PlayerWin {
		t.Fatalf("expected player 21 win, got %d %s", got.PlayerPoints, got.Winner)
	}
	if len(got.DealerCards) != 2 {
		t.Fatal("dealer cards should be kept")
	}
}

func TestOverwriteExplicitWinner(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Three, game.Four, game.Five), newMemRepo())
	ctx := context.Background()
	r, _ := m.Start(ctx)

	w := game.DealerWin
	got, err := m.Overwrite(ctx, r.ID, Patch{Winner: &w})
	if err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if got.Winner != game.DealerWin || got.PlayerPoints != 5 {
		t.Fatalf("unexpected %d %s", got.PlayerPoints, got.Winner)
	}

	bad := game.Outcome("draw")
	if _, err := m.Overwrite(ctx, r.ID, Patch{Winner: &bad}); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
}

func TestOverwriteRejectsInvalidCards(t *testing.T) {
	m := NewManager(fixedSource(game.Two, game.Three, game.Four, game.Five), newMemRepo())
	ctx := context.Background()
	r, _ := m.Start(ctx)

	dealer := game.Hand{{Value: "ZERO", Suit: game.Hearts}}
	if _, err := m.Overwrite(ctx, r.ID, Patch{DealerCards: &dealer}); !errors.Is(err, game.ErrInvalidCardValue) {
		t.Fatalf("expected ErrInvalidCardValue, got %v", err)
	}
}

func TestOverwriteRejectsUnknownSuit(t *testing.T) {
	repo := newMemRepo()
	m := NewManager(fixedSource(game.Two, game.Three, game.Four, game.Five), repo)
	ctx := context.Background()
	r, _ := m.Start(ctx)

	player := game.Hand{{Value: game.Ace, Suit: "BOGUS"}}
	if _, err := m.Overwrite(ctx, r.ID, Patch{PlayerCards: &player}); !errors.Is(err, game.ErrInvalidCardValue) {
		t.Fatalf("expected ErrInvalidCardValue, got %v", err)
	}

	stored, _ := repo.Get(ctx, r.ID)
	if len(stored.PlayerCards) != 2 || stored.PlayerCards[0].Suit != game.Clubs {
		t.Fatalf("round was modified: %+v", stored.PlayerCards)
	}
}
