package bot

import (
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/conversation"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, sentMessage{chatID: msg.ChatID, text: msg.Text})
	}
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type brokenEngine struct{ Engine }

func (brokenEngine) CreateSession(context.Context) (*models.ChatSession, error) {
	return nil, errors.New("store unavailable")
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
}

func commandMessage(chatID int64, command string) *tgbotapi.Message {
	msg := textMessage(chatID, "/"+command)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command) + 1}}
	return msg
}

func newTestBot(t *testing.T) (*Bot, *fakeSender, *conversation.Engine) {
	store := storage.NewMemoryStorage()
	engine := conversation.NewEngine(store,
		conversation.WithLogger(zaptest.NewLogger(t)),
		conversation.WithRandSource(conversation.NewRandSource(1)),
	)
	s := &fakeSender{}
	return newBot(s, engine, zaptest.NewLogger(t)), s, engine
}

func TestBot_TextStartsSessionAndReplies(t *testing.T) {
	ctx := context.Background()
	b, s, engine := newTestBot(t)

	b.handleMessage(ctx, textMessage(10, "quero criar um orçamento"))

	reply := s.last(t)
	assert.Equal(t, int64(10), reply.chatID)
	assert.Contains(t, reply.text, "Qual é o nome do cliente?")

	sessionID := b.sessions[10]
	require.NotEmpty(t, sessionID)
	session, err := engine.GetSession(ctx, sessionID)
	require.NoError(t, err)
	assert.Len(t, session.Messages, 2)

	b.handleMessage(ctx, textMessage(10, "Ana"))
	assert.Equal(t, sessionID, b.sessions[10])
	assert.Equal(t, "Qual é o e-mail do cliente?", s.last(t).text)
}

func TestBot_ChatsAreIsolated(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBot(t)

	b.handleMessage(ctx, textMessage(1, "oi"))
	b.handleMessage(ctx, textMessage(2, "oi"))

	assert.NotEqual(t, b.sessions[1], b.sessions[2])
}

func TestBot_Commands(t *testing.T) {
	ctx := context.Background()
	b, s, engine := newTestBot(t)

	b.handleMessage(ctx, commandMessage(5, "start"))
	first := b.sessions[5]
	require.NotEmpty(t, first)
	assert.Contains(t, s.last(t).text, "/help")

	b.handleMessage(ctx, commandMessage(5, "help"))
	assert.Contains(t, s.last(t).text, "/cancel")

	b.handleMessage(ctx, commandMessage(5, "cancel"))
	assert.Equal(t, "Não há nenhum cadastro em andamento.", s.last(t).text)

	b.handleMessage(ctx, textMessage(5, "cadastrar serviço"))
	b.handleMessage(ctx, commandMessage(5, "cancel"))
	session, err := engine.GetSession(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, session.Context.CollectingData)
	require.NotNil(t, session.Messages[len(session.Messages)-1].Metadata)
	assert.Equal(t, "flow_cancelled", session.Messages[len(session.Messages)-1].Metadata.Action)

	b.handleMessage(ctx, commandMessage(5, "new"))
	assert.NotEqual(t, first, b.sessions[5])

	b.handleMessage(ctx, commandMessage(5, "tags"))
	assert.Contains(t, s.last(t).text, "Comando desconhecido")
}

func TestBot_EngineFailureSendsWarning(t *testing.T) {
	s := &fakeSender{}
	b := newBot(s, brokenEngine{}, zaptest.NewLogger(t))

	b.handleMessage(context.Background(), textMessage(3, "oi"))

	assert.Contains(t, s.last(t).text, "⚠️")
	assert.Empty(t, b.sessions)
}

func TestBot_IgnoresEmptyText(t *testing.T) {
	b, s, _ := newTestBot(t)

	b.handleMessage(context.Background(), textMessage(4, "   "))

	assert.Empty(t, s.sent)
	assert.Empty(t, b.sessions)
}
