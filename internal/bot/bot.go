package bot

import (
	"context"
	"sync"

	"blackjack21/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
}

func New(token string, debug bool, sessions Sessions) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug

	return &Bot{
		api:     api,
		handler: NewHandler(api, sessions),
	}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	logging.L.Info("bot started", "user", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	// ждём обработчики, иначе база закроется посреди записи
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, &wg, update)
		}
	}
}

// dispatch runs the update in its own goroutine. Handlers keep running after
// ctx is cancelled so a started draw is written out.
func (b *Bot) dispatch(ctx context.Context, wg *sync.WaitGroup, update tgbotapi.Update) {
	ctx = context.WithoutCancel(ctx)
	switch {
	case update.CallbackQuery != nil:
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.handler.HandleCallback(ctx, update.CallbackQuery)
		}()
	case update.Message != nil:
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.handler.HandleMessage(ctx, update.Message)
		}()
	}
}
