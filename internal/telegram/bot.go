package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"femwork/internal/app"
	"femwork/internal/checkin"
	"femwork/internal/config"
	"femwork/internal/cycle"
	"femwork/internal/engine"
	"femwork/internal/metrics"
	"femwork/internal/shared"
	"femwork/internal/task"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	moodTTL        = 30 * time.Minute
	updateTimeout  = 2 * time.Minute
	callbackDone   = "done"
	callbackCheck  = "ci"
	checkEnergy    = "e"
	checkBrain     = "b"
	awaitingAnswer = "awaiting"
)

// apiClient is the part of *tgbotapi.BotAPI the bot uses.
type apiClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the App.
type Bot struct {
	api      apiClient
	app      *app.App
	sessions *SessionRepository
	metrics  *metrics.Store
	cfg      *config.Config
	logger   *zap.Logger
	dataDir  string
	started  time.Time
	inflight sync.WaitGroup
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	a *app.App,
	sessions *SessionRepository,
	metricsStore *metrics.Store,
	dataDir string,
	logger *zap.Logger,
) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	b := newBot(api, cfg, a, sessions, metricsStore, dataDir, logger)
	b.logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url: %w", err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	b.logger.Info("webhook set", zap.String("response", resp.Description))
	return b, nil
}

func newBot(api apiClient, cfg *config.Config, a *app.App, sessions *SessionRepository, store *metrics.Store, dataDir string, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		api:      api,
		app:      a,
		sessions: sessions,
		metrics:  store,
		cfg:      cfg,
		logger:   logger,
		dataDir:  dataDir,
		started:  time.Now(),
	}
}

// Register adds the webhook route to mux.
func (b *Bot) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook", b.handleWebhook)
}

// Wait blocks until updates being processed have finished.
func (b *Bot) Wait() {
	b.inflight.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	// Telegram retries slow webhooks, so updates run after the response.
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		b.handleUpdate(ctx, update)
	}()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.From == nil || !b.cfg.IsAllowed(q.From.ID) {
			return
		}
		b.handleCallbackQuery(ctx, q)
	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		if !b.cfg.IsAllowed(msg.From.ID) {
			b.logger.Warn("unauthorized access attempt",
				zap.Int64("telegram_id", msg.From.ID), zap.String("username", msg.From.UserName))
			return
		}
		b.processMessage(ctx, msg)
	}
}

func userID(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := userID(msg.From)
	chatID := msg.Chat.ID
	cmd, args := splitCommand(msg.Text)

	switch cmd {
	case "start", "help":
		b.send(chatID, helpText, nil)
	case "checkin":
		kb := energyKeyboard()
		b.send(chatID, "🔋 *How's your energy today?*", &kb)
	case "today":
		plan, err := b.app.Today(ctx, user)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatPlan(plan), nil)
	case "next":
		b.handleNext(ctx, chatID, user)
	case "tasks":
		tasks, err := b.app.ListTasks(ctx, user, false)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatTasks(tasks), nil)
	case "add":
		in, err := parseAddArgs(args, b.app.Location())
		if err != nil {
			b.send(chatID, "❌ "+err.Error(), nil)
			return
		}
		t, err := b.app.AddTask(ctx, user, in)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatTaskAdded(t), nil)
	case "done":
		if args == "" {
			b.send(chatID, "Usage: /done <task id>", nil)
			return
		}
		res, err := b.app.CompleteTask(ctx, user, args)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatCompletion(res), nil)
	case "step":
		if args == "" {
			b.send(chatID, "Usage: /step <task id>", nil)
			return
		}
		res, err := b.app.CompleteStep(ctx, user, args)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatStep(res), nil)
	case "breakdown":
		b.handleBreakdown(ctx, chatID, user, args)
	case "cycle":
		b.handleCycle(ctx, chatID, user, args)
	case "wins":
		wins, err := b.app.WeeklyWins(ctx, user)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatWins(wins), nil)
	case "break":
		br, err := b.app.SuggestBreak(ctx, user)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.send(chatID, formatBreak(br), nil)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	case "skip":
		b.clearSession(ctx, user)
		b.send(chatID, "Okay, no mood today. 💛", nil)
	case "":
		b.handleText(ctx, msg)
	default:
		b.send(chatID, "I don't know that command. Try /help.", nil)
	}
}

func (b *Bot) handleNext(ctx context.Context, chatID int64, user string) {
	res, err := b.app.Next(ctx, user)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if res.Task == nil {
		b.send(chatID, formatNext(res), nil)
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Done", callbackDone+"|"+res.Task.ID),
	))
	b.send(chatID, formatNext(res), &kb)
}

func (b *Bot) handleBreakdown(ctx context.Context, chatID int64, user, ref string) {
	if ref == "" {
		b.send(chatID, "Usage: /breakdown <task id>", nil)
		return
	}
	sent, err := b.api.Send(b.message(chatID, "🧩 *Breaking it down...*", nil))
	if err != nil {
		b.logger.Warn("failed to send status", zap.Error(err))
		return
	}
	res, err := b.app.BreakDown(ctx, user, ref)
	if err != nil {
		b.edit(chatID, sent.MessageID, b.errorText(err), nil)
		return
	}
	b.edit(chatID, sent.MessageID, formatSteps(res.Task, res.Source), nil)
}

func (b *Bot) handleCycle(ctx context.Context, chatID int64, user, args string) {
	var (
		status *app.PhaseStatus
		err    error
	)
	if args == "" {
		status, err = b.app.CurrentPhase(ctx, user)
	} else {
		var p engine.CycleProfile
		if p, err = parseCycleArgs(args, b.app.Location()); err != nil {
			b.send(chatID, "❌ "+err.Error(), nil)
			return
		}
		status, err = b.app.SetCycle(ctx, user, p)
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.send(chatID, formatPhase(status), nil)
}

// handleText covers plain messages: a link to import, or the mood word
// after a check-in.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	user := userID(msg.From)
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if isURL(text) {
		b.handleImport(ctx, chatID, user, text)
		return
	}

	s, err := b.sessions.GetActive(ctx, user, time.Now())
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if s != nil && s.SessionType == SessionMood {
		data, err := s.GetContextData()
		today := shared.FormatDay(b.app.Now())
		if err == nil && data.Day == today {
			b.clearSession(ctx, user)
			if err := b.app.SetMood(ctx, user, text); err != nil {
				b.replyError(chatID, err)
				return
			}
			b.send(chatID, fmt.Sprintf("Noted: feeling *%s* today. 💛", esc(text)), nil)
			return
		}
		b.clearSession(ctx, user)
	}
	b.send(chatID, "Not sure what to do with that. Try /help.", nil)
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, user, url string) {
	sent, err := b.api.Send(b.message(chatID, "📥 *Importing checklist...*", nil))
	if err != nil {
		b.logger.Warn("failed to send status", zap.Error(err))
		return
	}
	t, err := b.app.ImportChecklist(ctx, user, url)
	if err != nil {
		b.logger.Warn("checklist import failed", zap.String("url", url), zap.Error(err))
		b.edit(chatID, sent.MessageID, "❌ Couldn't import that page: "+esc(err.Error()), nil)
		return
	}
	b.edit(chatID, sent.MessageID, formatTaskAdded(t), nil)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Debug("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}
	user := userID(query.From)
	chatID := query.Message.Chat.ID
	msgID := query.Message.MessageID
	parts := strings.Split(query.Data, "|")

	switch {
	case len(parts) == 2 && parts[0] == callbackDone:
		res, err := b.app.CompleteTask(ctx, user, parts[1])
		if err != nil {
			b.edit(chatID, msgID, b.errorText(err), nil)
			return
		}
		b.edit(chatID, msgID, formatCompletion(res), nil)

	case len(parts) == 3 && parts[0] == callbackCheck && parts[1] == checkEnergy:
		kb := brainKeyboard(parts[2])
		b.edit(chatID, msgID, "🧠 *And your brain state?*", &kb)

	case len(parts) == 4 && parts[0] == callbackCheck && parts[1] == checkBrain:
		b.finishCheckIn(ctx, chatID, msgID, user, parts[2], parts[3])
	}
}

func (b *Bot) finishCheckIn(ctx context.Context, chatID int64, msgID int, user, energy, brain string) {
	in := app.CheckInInput{Energy: engine.Energy(energy), BrainState: engine.BrainState(brain)}
	res, err := b.app.CheckIn(ctx, user, in)
	if err != nil {
		b.edit(chatID, msgID, b.errorText(err), nil)
		return
	}

	text := formatCheckIn(res)
	_, err = b.sessions.Create(ctx, user, SessionMood, awaitingAnswer,
		SessionContextData{Day: res.Record.Day, ChatID: chatID}, moodTTL)
	if err != nil {
		b.logger.Warn("failed to open mood session", zap.String("user", user), zap.Error(err))
	} else {
		text += "\nOne word for your mood? Reply, or /skip."
	}
	b.edit(chatID, msgID, text, nil)
}

func (b *Bot) clearSession(ctx context.Context, user string) {
	s, err := b.sessions.GetActive(ctx, user, time.Now())
	if err != nil || s == nil {
		return
	}
	if err := b.sessions.Delete(ctx, s.ID); err != nil {
		b.logger.Warn("failed to delete session", zap.Error(err))
	}
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if b.cfg.AdminTelegramID == 0 || msg.From.ID != b.cfg.AdminTelegramID {
		b.send(msg.Chat.ID, "⛔ *Access Denied*: Admin only.", nil)
		return
	}
	usage, err := b.metrics.GetDailyUsage(ctx, 7)
	if err != nil {
		b.send(msg.Chat.ID, "❌ Error fetching metrics.", nil)
		return
	}
	b.send(msg.Chat.ID, formatMetrics(usage, metrics.Snapshot(b.dataDir, b.started)), nil)
}

func energyKeyboard() tgbotapi.InlineKeyboardMarkup {
	labels := map[engine.Energy]string{
		engine.EnergyLow:    "🪫 Low",
		engine.EnergyMedium: "🔋 Medium",
		engine.EnergyHigh:   "⚡ High",
	}
	var row []tgbotapi.InlineKeyboardButton
	for _, e := range engine.Energies {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(labels[e],
			strings.Join([]string{callbackCheck, checkEnergy, string(e)}, "|")))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func brainKeyboard(energy string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range engine.BrainStates {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(string(s),
			strings.Join([]string{callbackCheck, checkBrain, energy, string(s)}, "|")))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// errorText turns an App error into a user-facing message. Unexpected
// errors are logged and reported to the admin.
func (b *Bot) errorText(err error) string {
	switch {
	case errors.Is(err, app.ErrNoCheckIn):
		return "🌙 Check in first with /checkin."
	case errors.Is(err, task.ErrNotFound):
		return "I can't find that task. /tasks lists them."
	case errors.Is(err, app.ErrNoSteps):
		return "That task has no steps yet. Try /breakdown first."
	case errors.Is(err, task.ErrInvalid),
		errors.Is(err, checkin.ErrInvalid),
		errors.Is(err, cycle.ErrInvalidProfile):
		return "❌ " + esc(err.Error())
	}
	b.logger.Error("request failed", zap.Error(err))
	b.sendAdminAlert(fmt.Sprintf("⚠️ *Error*\n```\n%s\n```", strings.ReplaceAll(err.Error(), "`", "'")))
	return "❌ Something went wrong. Please try again."
}

func (b *Bot) replyError(chatID int64, err error) {
	b.send(chatID, b.errorText(err), nil)
}

func (b *Bot) message(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	return msg
}

func (b *Bot) send(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	if _, err := b.api.Send(b.message(chatID, text, kb)); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, msgID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.send(b.cfg.AdminTelegramID, text, nil)
}
