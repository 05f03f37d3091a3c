package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/taskflowbot/internal/callback"
	"github.com/edgard/taskflowbot/internal/chat"
	"github.com/edgard/taskflowbot/internal/config"
	"github.com/edgard/taskflowbot/internal/database"
	"github.com/edgard/taskflowbot/internal/dispatch"
	"github.com/edgard/taskflowbot/internal/logger"
	"github.com/edgard/taskflowbot/internal/menu"
	"github.com/edgard/taskflowbot/internal/session"
	"github.com/edgard/taskflowbot/internal/wizard"
)

// fakeMessenger records Bot API calls.
type fakeMessenger struct {
	mu       sync.Mutex
	sent     []*tgbot.SendMessageParams
	edited   []*tgbot.EditMessageTextParams
	markups  []*tgbot.EditMessageReplyMarkupParams
	answered []*tgbot.AnswerCallbackQueryParams
	sendErr  error
}

func (f *fakeMessenger) SendMessage(_ context.Context, p *tgbot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, p)
	return &models.Message{}, f.sendErr
}

func (f *fakeMessenger) EditMessageText(_ context.Context, p *tgbot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, p)
	return &models.Message{}, nil
}

func (f *fakeMessenger) EditMessageReplyMarkup(_ context.Context, p *tgbot.EditMessageReplyMarkupParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markups = append(f.markups, p)
	return &models.Message{}, nil
}

func (f *fakeMessenger) AnswerCallbackQuery(_ context.Context, p *tgbot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, p)
	return true, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newDeps(t *testing.T, allowed ...int64) (HandlerDeps, *fakeMessenger) {
	t.Helper()

	db, err := database.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	store := database.NewStore(db, nil)
	sessions := session.NewMemoryRepository()
	msgs := dispatch.Messages{Welcome: "welcome", Help: "help", GeneralError: "oops", Settings: "soon"}

	router := dispatch.NewTaskRouter(sessions, wizard.New(sessions, store, nil), dispatch.NewQueries(store, msgs, nil), nil)

	fake := &fakeMessenger{}
	cfg := &config.Config{
		Telegram: config.TelegramConfig{AllowedUserIDs: allowed},
		Messages: config.MessagesConfig{NotAuthorized: "not allowed"},
	}
	return HandlerDeps{Logger: quietLogger(), Config: cfg, Router: router, Messenger: fake}, fake
}

func textUpdate(userID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   7,
		Chat: models.Chat{ID: userID},
		From: &models.User{ID: userID},
		Text: text,
	}}
}

func callbackUpdate(userID int64, data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb-1",
		From: models.User{ID: userID},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 99, Chat: models.Chat{ID: userID}},
		},
	}}
}

func TestToEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		update *models.Update
		want   chat.Event
		ok     bool
	}{
		{
			name:   "command with bot suffix and args",
			update: textUpdate(5, "/Task@taskflow_bot  12 "),
			want:   chat.Event{Kind: chat.EventCommand, UserID: 5, ChatID: 5, Name: "task", Args: "12", Text: "/Task@taskflow_bot  12 "},
			ok:     true,
		},
		{
			name:   "menu label",
			update: textUpdate(5, menu.Add),
			want:   chat.Event{Kind: chat.EventButton, UserID: 5, ChatID: 5, Name: menu.Add, Text: menu.Add},
			ok:     true,
		},
		{
			name:   "free text",
			update: textUpdate(5, "Buy milk"),
			want:   chat.Event{Kind: chat.EventText, UserID: 5, ChatID: 5, Text: "Buy milk"},
			ok:     true,
		},
		{
			name:   "callback with message",
			update: callbackUpdate(5, "done_3"),
			want:   chat.Event{Kind: chat.EventInline, UserID: 5, ChatID: 5, Name: "done_3", MessageID: 99, CallbackID: "cb-1"},
			ok:     true,
		},
		{
			name: "callback with inaccessible message",
			update: &models.Update{CallbackQuery: &models.CallbackQuery{
				ID:   "cb-2",
				From: models.User{ID: 5},
				Data: "ignore",
				Message: models.MaybeInaccessibleMessage{
					InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: 8}, MessageID: 4},
				},
			}},
			want: chat.Event{Kind: chat.EventInline, UserID: 5, ChatID: 8, Name: "ignore", MessageID: 4, CallbackID: "cb-2"},
			ok:   true,
		},
		{
			name:   "callback without message falls back to the user chat",
			update: &models.Update{CallbackQuery: &models.CallbackQuery{ID: "cb-3", From: models.User{ID: 5}, Data: "ignore"}},
			want:   chat.Event{Kind: chat.EventInline, UserID: 5, ChatID: 5, Name: "ignore", CallbackID: "cb-3"},
			ok:     true,
		},
		{name: "nil update", update: nil},
		{name: "edited message", update: &models.Update{EditedMessage: &models.Message{Text: "x"}}},
		{name: "message without text", update: &models.Update{Message: &models.Message{From: &models.User{ID: 5}}}},
		{name: "message without sender", update: &models.Update{Message: &models.Message{Text: "hi"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ToEvent(tt.update)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReplyMarkup(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ReplyMarkup(nil))

	inline := ReplyMarkup(&chat.Keyboard{Inline: true, Rows: [][]chat.Button{
		{{Text: "✅", Token: "done_1"}, {Text: "🗑", Token: "delete_1"}},
	}})
	ik, ok := inline.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, ik.InlineKeyboard, 1)
	assert.Equal(t, models.InlineKeyboardButton{Text: "🗑", CallbackData: "delete_1"}, ik.InlineKeyboard[0][1])

	rk, ok := ReplyMarkup(menu.CancelOnly()).(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, rk.ResizeKeyboard)
	assert.Equal(t, menu.Cancel, rk.Keyboard[0][0].Text)
}

func TestExecute(t *testing.T) {
	t.Parallel()

	fake := &fakeMessenger{sendErr: errors.New("boom")}
	ev := chat.Event{Kind: chat.EventInline, ChatID: 3, MessageID: 10, CallbackID: "cb"}

	Execute(context.Background(), fake, quietLogger(), ev, []chat.Action{
		chat.SendText("first", nil),
		chat.EditText("edited", nil),
		chat.EditKeyboard(&chat.Keyboard{Inline: true}),
		chat.Acknowledge("noted"),
	})

	require.Len(t, fake.sent, 1, "a failed send does not stop later actions")
	require.Len(t, fake.edited, 1)
	assert.Equal(t, 10, fake.edited[0].MessageID)
	assert.Equal(t, "edited", fake.edited[0].Text)
	require.Len(t, fake.markups, 1)
	require.Len(t, fake.answered, 1)
	assert.Equal(t, "noted", fake.answered[0].Text)
}

func TestExecute_WithoutSourceMessage(t *testing.T) {
	t.Parallel()

	fake := &fakeMessenger{}
	ev := chat.Event{Kind: chat.EventCommand, ChatID: 3}

	Execute(context.Background(), fake, quietLogger(), ev, []chat.Action{
		chat.EditText("as new message", nil),
		chat.EditKeyboard(nil),
		chat.Acknowledge(""),
	})

	require.Len(t, fake.sent, 1)
	assert.Equal(t, "as new message", fake.sent[0].Text)
	assert.Empty(t, fake.edited)
	assert.Empty(t, fake.markups)
	assert.Empty(t, fake.answered)
}

func TestDefaultHandler_WizardFlow(t *testing.T) {
	t.Parallel()

	deps, fake := newDeps(t)
	h := NewDefaultHandler(deps)
	ctx := context.Background()

	h(ctx, nil, textUpdate(1, "/add"))
	h(ctx, nil, textUpdate(1, "Buy milk"))
	h(ctx, nil, textUpdate(1, "2 liters"))

	require.Len(t, fake.sent, 3)
	assert.Equal(t, wizard.MsgAskTitle, fake.sent[0].Text)
	assert.Equal(t, wizard.MsgAskDescription, fake.sent[1].Text)
	assert.Equal(t, wizard.MsgAskDate, fake.sent[2].Text)
	_, inline := fake.sent[2].ReplyMarkup.(*models.InlineKeyboardMarkup)
	assert.True(t, inline, "the date step shows the calendar")

	h(ctx, nil, callbackUpdate(1, callback.Ignore()))
	require.Len(t, fake.answered, 1, "inline selections are always acknowledged")
	assert.Equal(t, "cb-1", fake.answered[0].CallbackQueryID)
}

func TestAllowedUsers(t *testing.T) {
	t.Parallel()

	deps, fake := newDeps(t, 1)
	h := NewDefaultHandler(deps)
	ctx := context.Background()

	h(ctx, nil, textUpdate(2, "/start"))
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "not allowed", fake.sent[0].Text)
	assert.Equal(t, int64(2), fake.sent[0].ChatID)

	h(ctx, nil, callbackUpdate(2, callback.Ignore()))
	require.Len(t, fake.answered, 1)
	assert.Equal(t, "not allowed", fake.answered[0].Text)

	h(ctx, nil, textUpdate(1, "/start"))
	require.Len(t, fake.sent, 2)
	assert.Equal(t, "welcome", fake.sent[1].Text)
}

func TestRegisterAllCommands(t *testing.T) {
	t.Parallel()

	deps, _ := newDeps(t)
	registered := RegisterAllCommands(deps)

	require.Len(t, registered, len(dispatch.Commands)+1)
	for _, cmd := range dispatch.Commands {
		h, ok := registered["/"+cmd.Name]
		require.True(t, ok, cmd.Name)
		assert.Equal(t, cmd.Name, h.Pattern)
		assert.Equal(t, tgbot.MatchTypeCommandStartOnly, h.MatchType)
		assert.Len(t, h.Middleware, 1)
	}

	cb := registered["callback"]
	assert.Equal(t, tgbot.HandlerTypeCallbackQueryData, cb.HandlerType)
	assert.Equal(t, tgbot.MatchTypePrefix, cb.MatchType)
	assert.NotNil(t, cb.Handler)
}

func TestBotCommands(t *testing.T) {
	t.Parallel()

	cmds := BotCommands()
	require.Len(t, cmds, len(dispatch.Commands))
	assert.Equal(t, "start", cmds[0].Command)
	for _, c := range cmds {
		assert.NotEmpty(t, c.Description, c.Command)
	}
}

func TestEventHandler_LogsCarryRequestID(t *testing.T) {
	t.Parallel()

	deps, fake := newDeps(t)
	fake.sendErr = errors.New("bot was blocked by the user")

	var buf bytes.Buffer
	log := logger.New(&buf, "debug", true)
	deps.Logger = log

	logger.Middleware(log)(NewDefaultHandler(deps))(context.Background(), nil, textUpdate(1, "/help"))

	ids := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		msg, _ := entry["msg"].(string)
		id, _ := entry["request_id"].(string)
		ids[msg] = id
	}

	require.NotEmpty(t, ids["Processing update"])
	assert.Equal(t, ids["Processing update"], ids["Failed to execute action"])
}
