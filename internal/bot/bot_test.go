package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"blackjack21/internal/game"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type blockingSessions struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingSessions) Start(ctx context.Context) (*game.Round, error) {
	close(s.started)
	<-s.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return game.NewRound("deck", nil, nil)
}

func (s *blockingSessions) Draw(ctx context.Context, id, side string) (*game.Round, game.Card, error) {
	return nil, game.Card{}, nil
}

func (s *blockingSessions) Get(ctx context.Context, id string) (*game.Round, error) {
	return nil, nil
}

func TestDispatchIsTrackedUntilHandlerReturns(t *testing.T) {
	sessions := &blockingSessions{started: make(chan struct{}), release: make(chan struct{})}
	fs := &fakeSender{}
	b := &Bot{handler: NewHandler(fs, sessions)}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	b.dispatch(ctx, &wg, tgbotapi.Update{Message: message(9, "/play")})

	<-sessions.started
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while the handler was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(sessions.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the handler finished")
	}

	// контекст обработчика не отменяется вместе с Run
	if len(fs.messages) != 1 || fs.messages[0].ReplyMarkup == nil {
		t.Fatalf("expected the round to be shown, got %+v", fs.messages)
	}
}
