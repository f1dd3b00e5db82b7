// Package bot exposes the notifier over Telegram: commands and inline
// buttons for running a report immediately and for managing a daily
// delivery schedule.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oxbi/heathfully/checker"
	"github.com/oxbi/heathfully/schedule"
)

const welcomeText = "👋 *Welcome to Healthfully Farm Notifier!*\n\n" +
	"Use the buttons below:\n" +
	"• *▶️ Run once now* — sends today's stock report.\n" +
	"• *⏰ Set daily time* — send a time like `08:30` (24-hour) and I'll DM the report every day.\n\n" +
	"You can also type `/status` anytime to see your schedule."

const askTimeText = "Send a time in *24-hour* format, e.g. `08:30` or `21:05`.\n" +
	"_I'll send the report every day at that time (server local time)._"

const badTimeText = "Please send time like `08:30` or `7:45` (24-hour)."

const runFailedText = "❌ Failed to fetch/send report. See logs."

const saveFailedText = "❌ Couldn't save your schedule. Please try again."

// ReportBuilder produces the availability message on demand.
type ReportBuilder interface {
	BuildReport(ctx context.Context) (string, error)
}

// api is the slice of tgbotapi.BotAPI the bot uses; tests substitute a
// recording fake.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var mainKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("▶️ Run once now", "run_now"),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⏰ Set daily time", "set_time"),
	),
)

// Bot wires the Telegram update stream to the checker and the schedule
// store. One daily cron job per subscribed chat delivers the report.
type Bot struct {
	api        api
	reports    ReportBuilder
	store      *schedule.Store
	scheduler  *schedule.Scheduler
	metrics    *checker.Metrics
	runTimeout time.Duration

	mu           sync.Mutex
	awaitingTime map[int64]bool
	jobCtx       context.Context
}

// New connects to the Bot API and assembles the bot.
func New(token string, reports ReportBuilder, store *schedule.Store, scheduler *schedule.Scheduler, metrics *checker.Metrics, runTimeout time.Duration) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	slog.Info("telegram bot authorised", slog.String("username", client.Self.UserName))

	return newBot(client, reports, store, scheduler, metrics, runTimeout), nil
}

func newBot(client api, reports ReportBuilder, store *schedule.Store, scheduler *schedule.Scheduler, metrics *checker.Metrics, runTimeout time.Duration) *Bot {
	if runTimeout <= 0 {
		runTimeout = time.Minute
	}
	return &Bot{
		api:          client,
		reports:      reports,
		store:        store,
		scheduler:    scheduler,
		metrics:      metrics,
		runTimeout:   runTimeout,
		awaitingTime: make(map[int64]bool),
		jobCtx:       context.Background(),
	}
}

// RestoreSchedules registers a daily job for every persisted schedule.
// A malformed entry is logged and skipped, never fatal.
func (b *Bot) RestoreSchedules() {
	for chatID, hhmm := range b.store.All() {
		hour, minute, err := schedule.ParseHHMM(hhmm)
		if err != nil {
			slog.Error("skipping stored schedule",
				slog.Int64("chat_id", chatID),
				slog.String("time", hhmm),
				slog.Any("error", err),
			)
			continue
		}
		if err := b.registerDaily(chatID, hour, minute); err != nil {
			slog.Error("restoring schedule failed",
				slog.Int64("chat_id", chatID),
				slog.Any("error", err),
			)
		}
	}
	slog.Info("schedules restored", slog.Int("jobs", b.scheduler.Count()))
}

// Run consumes Telegram updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.mu.Lock()
	b.jobCtx = ctx
	b.mu.Unlock()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.onCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.onCommand(ctx, update.Message)
	case update.Message != nil:
		b.onText(update.Message)
	}
}

func (b *Bot) onCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.sendMarkdown(chatID, b.welcomeFor(chatID), &mainKeyboard)
	case "help":
		b.sendMarkdown(chatID, welcomeText, &mainKeyboard)
	case "status":
		b.sendMarkdown(chatID, b.statusFor(chatID), &mainKeyboard)
	case "run":
		b.runNow(ctx, chatID)
	case "settime":
		b.askTime(chatID)
	default:
		b.sendMarkdown(chatID, welcomeText, &mainKeyboard)
	}
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		slog.Error("answer callback failed", slog.Any("error", err))
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	slog.Info("button pressed", slog.Int64("chat_id", chatID), slog.String("data", cb.Data))

	switch cb.Data {
	case "run_now":
		b.runNow(ctx, chatID)
	case "set_time":
		b.askTime(chatID)
	}
}

// onText only reacts when the chat is mid set-time conversation;
// unrelated chatter is ignored.
func (b *Bot) onText(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	b.mu.Lock()
	awaiting := b.awaitingTime[chatID]
	b.mu.Unlock()
	if !awaiting {
		return
	}

	hour, minute, err := schedule.ParseHHMM(msg.Text)
	if err != nil {
		b.sendMarkdown(chatID, badTimeText, nil)
		return
	}

	if err := b.store.Set(chatID, hour, minute); err != nil {
		slog.Error("persist schedule failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		b.sendMarkdown(chatID, saveFailedText, nil)
		return
	}
	if err := b.registerDaily(chatID, hour, minute); err != nil {
		slog.Error("register daily job failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		b.sendMarkdown(chatID, saveFailedText, nil)
		return
	}

	b.mu.Lock()
	delete(b.awaitingTime, chatID)
	b.mu.Unlock()

	confirmation := fmt.Sprintf(
		"✅ *Your time is set to %s now.*\nNext send: *%s*",
		schedule.FormatHHMM(hour, minute),
		schedule.DescribeNextRun(time.Now(), hour, minute),
	)
	b.sendMarkdown(chatID, confirmation, &mainKeyboard)
}

func (b *Bot) runNow(ctx context.Context, chatID int64) {
	runCtx, cancel := context.WithTimeout(ctx, b.runTimeout)
	defer cancel()

	text, err := b.reports.BuildReport(runCtx)
	if err != nil {
		slog.Error("run now failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		b.sendMarkdown(chatID, runFailedText, nil)
		return
	}
	if b.sendMarkdown(chatID, text, nil) {
		b.metrics.IncReportSent()
	}
}

func (b *Bot) askTime(chatID int64) {
	b.mu.Lock()
	b.awaitingTime[chatID] = true
	b.mu.Unlock()
	b.sendMarkdown(chatID, askTimeText, nil)
}

// registerDaily installs the cron job that delivers the report to one
// chat every day.
func (b *Bot) registerDaily(chatID int64, hour, minute int) error {
	err := b.scheduler.Set(chatID, hour, minute, func() {
		b.mu.Lock()
		ctx := b.jobCtx
		b.mu.Unlock()
		b.runNow(ctx, chatID)
	})
	if err != nil {
		return err
	}
	slog.Info("daily job registered",
		slog.Int64("chat_id", chatID),
		slog.String("time", schedule.FormatHHMM(hour, minute)),
	)
	return nil
}

func (b *Bot) welcomeFor(chatID int64) string {
	if hhmm, ok := b.store.Get(chatID); ok {
		return welcomeText + "\n\n" + b.scheduleLine(hhmm)
	}
	return welcomeText + "\n\n_No schedule set yet._ Tap *Set daily time*."
}

func (b *Bot) statusFor(chatID int64) string {
	hhmm, ok := b.store.Get(chatID)
	if !ok {
		return "No schedule set."
	}
	return b.scheduleLine(hhmm)
}

func (b *Bot) scheduleLine(hhmm string) string {
	line := fmt.Sprintf("Current schedule: *%s* daily", hhmm)
	if hour, minute, err := schedule.ParseHHMM(hhmm); err == nil {
		line += fmt.Sprintf("\nNext send: *%s*", schedule.DescribeNextRun(time.Now(), hour, minute))
	}
	return line
}

// sendMarkdown delivers a Markdown message with link previews off.
func (b *Bot) sendMarkdown(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) bool {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("send message failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return false
	}
	return true
}
