// Package telegram is a chat shell over the chefbook services for a single
// allowed Telegram user. Updates arrive by long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chefbook/internal/app"
	"chefbook/internal/logging"
	"chefbook/internal/recipe"
	"chefbook/internal/session"
)

const (
	pollTimeout      = 60
	defaultTimerTick = 10 * time.Second
)

// API is the subset of tgbotapi.BotAPI the bot sends through.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// recipeView is the recipe the user is currently chatting about. Every answer
// for the view is applied through ticket, which goes stale once the view closes.
type recipeView struct {
	rec    *recipe.Recipe
	guard  *session.Guard
	ticket session.Ticket

	// sendMu serialises transcript writes within the view.
	sendMu sync.Mutex
}

// Bot routes Telegram updates to the chefbook services.
type Bot struct {
	api       API
	poller    *tgbotapi.BotAPI
	app       *app.App
	allowedID int64
	logger    *zap.Logger

	timer     *session.Timer
	planGuard *session.Guard

	mu   sync.Mutex
	view *recipeView

	wg sync.WaitGroup
}

// NewBot authorizes against the Bot API with token. Only messages from
// allowedUserID are served.
func NewBot(token string, allowedUserID int64, application *app.App, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger = logging.OrNop(logger)
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	b := newBot(api, allowedUserID, application, logger, defaultTimerTick)
	b.poller = api
	return b, nil
}

func newBot(api API, allowedUserID int64, application *app.App, logger *zap.Logger, timerTick time.Duration) *Bot {
	return &Bot{
		api:       api,
		app:       application,
		allowedID: allowedUserID,
		logger:    logging.OrNop(logger).Named("telegram"),
		timer:     session.NewTimer(timerTick),
		planGuard: session.NewGuard(),
	}
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	if b.poller == nil {
		return errors.New("bot has no telegram connection")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := b.poller.GetUpdatesChan(u)
	defer b.poller.StopReceivingUpdates()

	b.serve(ctx, updates)
	return nil
}

func (b *Bot) serve(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Close stops the cooking timer, drops every pending result and waits for
// in-flight work to finish.
func (b *Bot) Close() {
	b.timer.Close()
	b.planGuard.Close()
	b.closeView()
	b.wg.Wait()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || q.From.ID != b.allowedID || q.Message == nil {
			return
		}
		b.handleCallback(ctx, q)
	case update.Message != nil:
		msg := update.Message
		if msg.From == nil || msg.From.ID != b.allowedID {
			if msg.From != nil {
				b.logger.Warn("unauthorized access attempt", zap.Int64("user_id", msg.From.ID), zap.String("username", msg.From.UserName))
			}
			return
		}
		b.handleMessage(ctx, msg)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		b.handleQuestion(ctx, chatID, msg.Text)
		return
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.sendMarkdown(chatID, helpText)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "recipe":
		b.handleOpenRecipe(ctx, chatID, args)
	case "close":
		b.closeView()
		b.sendText(chatID, "Sesi resep ditutup.")
	case "reset":
		b.handleReset(ctx, chatID)
	case "plan":
		b.handleShowPlan(ctx, chatID)
	case "newplan":
		b.handleGeneratePlan(ctx, chatID, args)
	case "shopping":
		b.handleShopping(ctx, chatID)
	case "clear":
		b.handleClearShopping(ctx, chatID)
	case "diary":
		b.handleDiary(ctx, chatID)
	case "achievements":
		b.handleAchievements(ctx, chatID)
	case "key":
		b.handleSaveKey(ctx, chatID, msg.MessageID, args)
	case "prefs":
		b.handleSavePrefs(ctx, chatID, args)
	case "timer":
		b.handleTimer(chatID, args)
	case "stoptimer":
		if !b.timer.Running() {
			b.sendText(chatID, "Tidak ada timer yang berjalan.")
			return
		}
		b.timer.Stop()
		b.sendText(chatID, "Timer dihentikan.")
	case "metrics":
		b.handleMetrics(ctx, chatID)
	default:
		b.sendText(chatID, "Perintah tidak dikenal. Ketik /help.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}

	action, arg, _ := strings.Cut(q.Data, "|")
	chatID := q.Message.Chat.ID
	switch action {
	case "shop":
		b.handleAddIngredients(ctx, chatID, arg)
	case "finish":
		b.handleFinish(ctx, chatID, arg)
	case "toggle":
		if !b.app.Shopping.Toggle(ctx, arg) {
			b.sendText(chatID, msgStorageFailed)
			return
		}
		b.refreshShopping(ctx, chatID, q.Message.MessageID)
	case "remove":
		if !b.app.Shopping.Remove(ctx, arg) {
			b.sendText(chatID, msgStorageFailed)
			return
		}
		b.refreshShopping(ctx, chatID, q.Message.MessageID)
	}
}

// openView makes rec the current chat subject. Answers still pending for the
// previous recipe are dropped.
func (b *Bot) openView(rec *recipe.Recipe) *recipeView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view != nil {
		b.view.guard.Close()
	}
	guard := session.NewGuard()
	b.view = &recipeView{rec: rec, guard: guard, ticket: guard.Begin()}
	return b.view
}

func (b *Bot) closeView() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.view != nil {
		b.view.guard.Close()
		b.view = nil
	}
}

func (b *Bot) currentView() *recipeView {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// async runs fn in the background; Close waits for it.
func (b *Bot) async(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

func (b *Bot) sendText(chatID int64, text string) (tgbotapi.Message, bool) {
	return b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMarkdown(chatID int64, text string) (tgbotapi.Message, bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return b.send(msg)
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	sent, err := b.api.Send(c)
	if err != nil {
		b.logger.Warn("failed to send telegram message", zap.Error(err))
		return tgbotapi.Message{}, false
	}
	return sent, true
}
