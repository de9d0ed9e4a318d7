package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blackjack21/internal/game"
	"blackjack21/internal/logging"
	"blackjack21/internal/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sessions is the part of session.Manager the bot drives.
type Sessions interface {
	Start(ctx context.Context) (*game.Round, error)
	Draw(ctx context.Context, id, side string) (*game.Round, game.Card, error)
	Get(ctx context.Context, id string) (*game.Round, error)
}

// sender is the subset of *tgbotapi.BotAPI used by the handler.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	bot      sender
	sessions Sessions
	chats    *chats
}

func NewHandler(bot sender, sessions Sessions) *Handler {
	return &Handler{
		bot:      bot,
		sessions: sessions,
		chats:    newChats(),
	}
}

// ============== вспомогательные ==============

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logging.L.Warn("failed to send message", "chat", chatID, "err", err)
	}
}

func (h *Handler) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := h.bot.Send(msg); err != nil {
		logging.L.Warn("failed to send message", "chat", chatID, "err", err)
	}
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		logging.L.Debug("failed to answer callback", "err", err)
	}
}

// ============== форматирование ==============

func formatHand(cards game.Hand) string {
	parts := make([]string, 0, len(cards))
	for _, c := range cards {
		parts = append(parts, c.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatRound(r *game.Round) string {
	msg := fmt.Sprintf("🎴 Вы: %s (%d)\n🃏 Дилер: %s (%d)",
		formatHand(r.PlayerCards), r.PlayerPoints, formatHand(r.DealerCards), r.DealerPoints)

	switch r.Winner {
	case game.PlayerWin:
		if r.PlayerPoints == game.BlackjackPoints {
			msg += "\n\n🎰 21! Вы выиграли!"
		} else {
			msg += "\n\n💥 Дилер перебрал! Вы выиграли!"
		}
	case game.DealerWin:
		if r.DealerPoints == game.BlackjackPoints {
			msg += "\n\n😔 21 у дилера!"
		} else {
			msg += "\n\n💥 Перебор! Дилер выиграл!"
		}
	}
	return msg
}

func (h *Handler) showRound(chatID int64, prefix string, r *game.Round) {
	text := formatRound(r)
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	if r.Decided() {
		h.sendWithKeyboard(chatID, text, EndGameKeyboard())
		return
	}
	h.sendWithKeyboard(chatID, text, GameKeyboard())
}

// ============== команды ==============

func (h *Handler) HandleStart(chatID int64) {
	h.send(chatID,
		"🎰 Добро пожаловать в 21!\n\n"+
			"/play — новая раздача\n"+
			"/state — текущая раздача\n"+
			"/help — правила")
}

func (h *Handler) HandleHelp(chatID int64) {
	h.send(chatID,
		"📖 Правила:\n\n"+
			"📊 Очки:\n"+
			"• 2-10 — номинал\n"+
			"• J, Q, K — 10\n"+
			"• A — 11 или 1\n\n"+
			"🎯 Кто первым набрал 21 — победил. Перебор отдаёт победу сопернику.\n\n"+
			"🎮 Hit — карта вам, Дилер — карта дилеру")
}

func (h *Handler) HandlePlay(ctx context.Context, chatID int64) {
	r, err := h.sessions.Start(ctx)
	if err != nil {
		logging.L.Error("failed to start round", "chat", chatID, "err", err)
		h.send(chatID, "❌ Не удалось начать игру. Попробуйте позже.")
		return
	}
	h.chats.Set(chatID, r.ID)
	h.showRound(chatID, "🃏 Новая раздача", r)
}

func (h *Handler) HandleState(ctx context.Context, chatID int64) {
	id, ok := h.chats.Get(chatID)
	if !ok {
		h.send(chatID, "Игра не начата. Используйте /play")
		return
	}
	r, err := h.sessions.Get(ctx, id)
	if err != nil {
		logging.L.Error("failed to load round", "chat", chatID, "round", id, "err", err)
		h.send(chatID, "❌ Ошибка")
		return
	}
	h.showRound(chatID, "", r)
}

// ============== callback ==============

func (h *Handler) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		h.answerCallback(callback.ID, "")
		return
	}
	chatID := callback.Message.Chat.ID

	switch callback.Data {
	case CallbackNew:
		h.answerCallback(callback.ID, "")
		h.HandlePlay(ctx, chatID)
		return
	case CallbackState:
		h.answerCallback(callback.ID, "")
		h.HandleState(ctx, chatID)
		return
	}

	var side game.Side
	switch callback.Data {
	case CallbackHit:
		side = game.SidePlayer
	case CallbackDealer:
		side = game.SideDealer
	default:
		h.answerCallback(callback.ID, "")
		return
	}

	id, ok := h.chats.Get(chatID)
	if !ok {
		h.answerCallback(callback.ID, "Игра не активна")
		return
	}

	r, card, err := h.sessions.Draw(ctx, id, string(side))
	if errors.Is(err, session.ErrRoundDecided) {
		h.answerCallback(callback.ID, "Раздача окончена")
		return
	}
	if err != nil {
		logging.L.Error("failed to draw", "chat", chatID, "round", id, "side", side, "err", err)
		h.answerCallback(callback.ID, "Ошибка")
		return
	}

	h.answerCallback(callback.ID, "")
	who := "Вам"
	if side == game.SideDealer {
		who = "Дилеру"
	}
	h.showRound(chatID, fmt.Sprintf("%s выпала %s", who, card), r)
}

// ============== сообщения ==============

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	parts := strings.Fields(msg.Text)

	if len(parts) == 0 {
		return
	}

	// /play@botname тоже команда
	cmd := strings.ToLower(strings.SplitN(parts[0], "@", 2)[0])

	switch cmd {
	case "/start":
		h.HandleStart(chatID)
	case "/help":
		h.HandleHelp(chatID)
	case "/play":
		h.HandlePlay(ctx, chatID)
	case "/state":
		h.HandleState(ctx, chatID)
	}
}
