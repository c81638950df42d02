package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expenses_bot/internal/domain"
	"expenses_bot/internal/logger"
	"expenses_bot/internal/ratelimit"
	"expenses_bot/internal/render"
)

const (
	handlerTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// API is the subset of *tgbotapi.BotAPI the bot depends on.
type API interface {
	Client
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Ledger is the set of user operations the bot dispatches to.
type Ledger interface {
	HandleText(ctx context.Context, ev domain.IncomingEvent) error
	HandleButton(ctx context.Context, ev domain.IncomingEvent) error
	StartAdd(ctx context.Context, ev domain.IncomingEvent) error
	StartEdit(ctx context.Context, ev domain.IncomingEvent, id int64) error
	Delete(ctx context.Context, ev domain.IncomingEvent, id int64) error
	Undo(ctx context.Context, ev domain.IncomingEvent) error
	CancelDialogue(ctx context.Context, ev domain.IncomingEvent) error
	ListRecent(ctx context.Context, ev domain.IncomingEvent, limit int) error
	WeekSummary(ctx context.Context, ev domain.IncomingEvent) error
	MonthSummary(ctx context.Context, ev domain.IncomingEvent) error
}

type Options struct {
	// Allowed reports whether a user may use the bot. Nil allows everyone.
	Allowed func(userID int64) bool
	// Limiter caps events per user. Nil disables limiting.
	Limiter ratelimit.Limiter
}

// Bot receives Telegram updates, by polling or from the webhook, and dispatches them.
type Bot struct {
	api      API
	sender   *Sender
	ledger   Ledger
	allowed  func(int64) bool
	limiter  ratelimit.Limiter
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	log      *slog.Logger
}

// NewAPI authorizes the token against Telegram.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info("bot authorized", "username", api.Self.UserName)
	return api, nil
}

func New(api API, sender *Sender, ledger Ledger, opts Options) *Bot {
	allowed := opts.Allowed
	if allowed == nil {
		allowed = func(int64) bool { return true }
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &Bot{
		api:     api,
		sender:  sender,
		ledger:  ledger,
		allowed: allowed,
		limiter: limiter,
		stopCh:  make(chan struct{}),
		log:     logger.With("component", "bot"),
	}
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (b *Bot) RegisterCommands() error {
	commands := make([]tgbotapi.BotCommand, 0, len(render.Commands))
	for _, c := range render.Commands {
		commands = append(commands, tgbotapi.BotCommand{Command: c.Name, Description: c.Description})
	}
	_, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

// Start polls for updates until Stop is called. Each update runs in its own goroutine.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.ProcessAsync(update)
		}
	}
}

// ProcessAsync handles update in a tracked goroutine with its own timeout.
func (b *Bot) ProcessAsync(update tgbotapi.Update) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
		defer cancel()
		b.ProcessUpdate(ctx, update)
	}()
}

// Stop ends polling and waits for in-flight handlers.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		b.log.Info("stopping bot...")
		close(b.stopCh)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(shutdownTimeout):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

// ProcessUpdate handles one update synchronously.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("panic while handling update", "update_id", update.UpdateID, "panic", r)
		}
	}()

	ev, ok := EventFromUpdate(update)
	if !ok {
		if update.CallbackQuery != nil {
			b.answer(update.CallbackQuery.ID)
		}
		return
	}

	ctx, log := logger.ForEvent(ctx, b.log, ev.UpdateID, ev.UserID)

	if ev.Kind == domain.EventButton {
		b.answer(ev.CallbackID)
	}
	if !b.allowed(ev.UserID) {
		log.Debug("ignoring user outside the allow-list")
		return
	}

	allowed, err := b.limiter.Allow(ctx, strconv.FormatInt(ev.UserID, 10))
	if err != nil {
		log.Warn("rate limiter unavailable", "error", err)
	}
	if !allowed {
		b.reply(ctx, ev, render.RateLimitedText, nil)
		return
	}

	if !ev.Private {
		b.reply(ctx, ev, render.PrivateOnlyText, nil)
		return
	}

	if err := b.dispatch(ctx, ev); err != nil {
		log.Error("failed to handle update", "error", err)
	}
}

func (b *Bot) answer(callbackID string) {
	if callbackID == "" {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		b.log.Debug("failed to answer callback", "error", err)
	}
}

// reply answers outside the ledger, editing the pressed message for buttons.
func (b *Bot) reply(ctx context.Context, ev domain.IncomingEvent, text string, kb *domain.Keyboard) {
	r := domain.OutgoingReply{ChannelID: ev.ChannelID, Text: text, Keyboard: kb}
	if ev.Kind == domain.EventButton {
		r.EditMessageID = ev.MessageID
	}
	if err := b.sender.Reply(ctx, r); err != nil {
		logger.FromContext(ctx).Error("error sending message", "error", err)
	}
}

func (b *Bot) dispatch(ctx context.Context, ev domain.IncomingEvent) error {
	if ev.Kind == domain.EventButton {
		return b.ledger.HandleButton(ctx, ev)
	}

	name, args, ok := parseCommand(ev.Text)
	if !ok {
		return b.ledger.HandleText(ctx, ev)
	}
	return b.handleCommand(ctx, ev, name, args)
}

func (b *Bot) handleCommand(ctx context.Context, ev domain.IncomingEvent, name, args string) error {
	switch name {
	case "start", "add":
		return b.ledger.StartAdd(ctx, ev)

	case "help":
		b.reply(ctx, ev, render.HelpText, render.CommandKeyboard())

	case "id":
		b.reply(ctx, ev, fmt.Sprintf("Your user id: %d", ev.UserID), nil)

	case "menu":
		b.reply(ctx, ev, "📋 Menu:", render.CommandKeyboard())

	case "hide":
		b.reply(ctx, ev, "Menu hidden.", render.RemoveKeyboard())

	case "last":
		limit := 0
		if args != "" {
			n, err := strconv.Atoi(strings.Fields(args)[0])
			if err != nil {
				b.reply(ctx, ev, "Usage: /last [count]", nil)
				return nil
			}
			limit = n
		}
		return b.ledger.ListRecent(ctx, ev, limit)

	case "undo":
		return b.ledger.Undo(ctx, ev)

	case "cancel":
		return b.ledger.CancelDialogue(ctx, ev)

	case "week":
		return b.ledger.WeekSummary(ctx, ev)

	case "month":
		return b.ledger.MonthSummary(ctx, ev)

	case "delete":
		id, ok := singleID(args)
		if !ok {
			b.reply(ctx, ev, "Usage: /delete <id>", nil)
			return nil
		}
		return b.ledger.Delete(ctx, ev, id)

	case "edit":
		id, ok := singleID(args)
		if !ok {
			b.reply(ctx, ev, "Usage: /edit <id>", nil)
			return nil
		}
		return b.ledger.StartEdit(ctx, ev, id)

	default:
		b.reply(ctx, ev, "Unknown command. Use /help for the list of commands.", nil)
	}
	return nil
}

// singleID parses exactly one integer argument, accepting a leading '#'.
func singleID(args string) (int64, bool) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(fields[0], "#"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
