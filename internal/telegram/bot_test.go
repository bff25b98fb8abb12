package telegram

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"femwork/internal/app"
	"femwork/internal/checkin"
	"femwork/internal/config"
	"femwork/internal/cycle"
	"femwork/internal/database"
	"femwork/internal/engine"
	"femwork/internal/metrics"
	"femwork/internal/task"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	allowedID = int64(7)
	adminID   = int64(9)
	chatID    = int64(100)
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// last returns the text and keyboard of the most recent outgoing message.
func (f *fakeAPI) last(t *testing.T) (string, *tgbotapi.InlineKeyboardMarkup) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		kb, _ := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		return m.Text, &kb
	case tgbotapi.EditMessageTextConfig:
		return m.Text, m.ReplyMarkup
	}
	t.Fatalf("unexpected chattable %T", f.sent[len(f.sent)-1])
	return "", nil
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testBot struct {
	bot *Bot
	api *fakeAPI
	app *app.App
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	dir := t.TempDir()
	db, err := database.NewDB(filepath.Join(dir, "bot.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	a := app.NewApp(app.Deps{
		Cycles:   cycle.NewRepository(db.SQL),
		CheckIns: checkin.NewRepository(db.SQL),
		Tasks:    task.NewRepository(db.SQL),
		Location: now.Location(),
		Clock:    func() time.Time { return now },
	})
	cfg := &config.Config{TelegramAllowedUserIDs: []int64{allowedID, adminID}, AdminTelegramID: adminID}
	api := &fakeAPI{}
	b := newBot(api, cfg, a, NewSessionRepository(db.SQL), metrics.NewStore(db.SQL), dir, nil)
	return &testBot{bot: b, api: api, app: a}
}

func (tb *testBot) say(from int64, text string) {
	tb.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: from},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}})
}

func (tb *testBot) press(data string) {
	tb.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: allowedID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}})
}

func TestBot_IgnoresStrangers(t *testing.T) {
	tb := newTestBot(t)
	tb.say(12345, "/today")
	tb.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		From: &tgbotapi.User{ID: 12345}, Data: "done|x",
	}})
	assert.Zero(t, tb.api.count())
}

func TestBot_CheckInFlow(t *testing.T) {
	tb := newTestBot(t)

	tb.say(allowedID, "/today")
	text, _ := tb.api.last(t)
	assert.Equal(t, "🌙 Check in first with /checkin.", text)

	tb.say(allowedID, "/checkin")
	text, kb := tb.api.last(t)
	assert.Contains(t, text, "energy")
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 3)
	assert.Equal(t, "ci|e|High", *kb.InlineKeyboard[0][2].CallbackData)

	tb.press("ci|e|High")
	text, kb = tb.api.last(t)
	assert.Contains(t, text, "brain state")
	require.NotNil(t, kb)
	assert.Equal(t, "ci|b|High|Calm", *kb.InlineKeyboard[0][0].CallbackData)

	tb.press("ci|b|High|Calm")
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "✅ *Checked in*")
	assert.Contains(t, text, "One word for your mood?")

	tb.say(allowedID, "hopeful")
	text, _ = tb.api.last(t)
	assert.Equal(t, "Noted: feeling *hopeful* today. 💛", text)

	rec, err := tb.app.TodayCheckIn(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, engine.EnergyHigh, rec.Energy)
	assert.Equal(t, engine.BrainCalm, rec.BrainState)
	assert.Equal(t, "hopeful", rec.Mood)

	tb.say(allowedID, "still here")
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "Try /help")
}

func TestBot_TaskFlow(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	_, err := tb.app.CheckIn(ctx, "7", app.CheckInInput{Energy: engine.EnergyMedium, BrainState: engine.BrainCalm})
	require.NoError(t, err)

	tb.say(allowedID, "/add Email landlord !high")
	text, _ := tb.api.last(t)
	assert.Contains(t, text, "➕ Added *Email landlord* [High]")

	tb.say(allowedID, "/next")
	text, kb := tb.api.last(t)
	assert.Contains(t, text, "Do this next:* Email landlord")
	require.NotNil(t, kb)
	data := *kb.InlineKeyboard[0][0].CallbackData
	assert.Regexp(t, `^done\|[0-9a-f-]{36}$`, data)

	tb.press(data)
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "*Email landlord* is done.")

	tb.say(allowedID, "/next")
	text, _ = tb.api.last(t)
	assert.Equal(t, "✨ "+engine.ReasonAllDone, text)

	tb.say(allowedID, "/done nope-nope")
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "can't find that task")
}

func TestBot_Steps(t *testing.T) {
	tb := newTestBot(t)
	created, err := tb.app.AddTask(context.Background(), "7", task.NewTask{Name: "Newsletter", MicroTasks: []string{"Outline", "Draft"}})
	require.NoError(t, err)

	tb.say(allowedID, "/step "+created.ID[:8])
	text, _ := tb.api.last(t)
	assert.Equal(t, "☑️ Outline (1/2 done)\nNext: Draft", text)

	tb.say(allowedID, "/breakdown "+created.ID[:8])
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "🧩 *Newsletter*")
	assert.Contains(t, text, "_steps: fallback_")
}

func TestBot_Cycle(t *testing.T) {
	tb := newTestBot(t)

	tb.say(allowedID, "/cycle")
	text, _ := tb.api.last(t)
	assert.Contains(t, text, "No cycle set yet")

	tb.say(allowedID, "/cycle 2024-09-20 40")
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "❌")

	tb.say(allowedID, "/cycle "+time.Now().Format("2006-01-02"))
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "*Day 1 - Menstrual phase*")
	assert.Contains(t, text, "Cycle: 28 days, period 5 days")
}

func TestBot_MetricsAdminOnly(t *testing.T) {
	tb := newTestBot(t)

	tb.say(allowedID, "/metrics")
	text, _ := tb.api.last(t)
	assert.Contains(t, text, "Admin only")

	tb.say(adminID, "/metrics")
	text, _ = tb.api.last(t)
	assert.Contains(t, text, "Usage & Health Report")
}

func TestBot_Webhook(t *testing.T) {
	tb := newTestBot(t)
	mux := http.NewServeMux()
	tb.bot.Register(mux)

	body := []byte(`{"update_id": 1, "message": {"message_id": 5, "from": {"id": 7}, "chat": {"id": 100}, "text": "/start"}}`)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)

	tb.bot.Wait()
	text, _ := tb.api.last(t)
	assert.Equal(t, helpText, text)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
