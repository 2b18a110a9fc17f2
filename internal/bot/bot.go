package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/conversation"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"go.uber.org/zap"
)

// Engine is the part of conversation.Engine the bot drives.
type Engine interface {
	CreateSession(ctx context.Context) (*models.ChatSession, error)
	GetSession(ctx context.Context, id string) (*models.ChatSession, error)
	ProcessMessage(ctx context.Context, sessionID, text string) (*conversation.Response, error)
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot relays Telegram chats to the conversation engine. Each chat is bound
// to one engine session.
type Bot struct {
	api    *tgbotapi.BotAPI
	sender sender
	engine Engine
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[int64]string // chat id -> session id
}

func New(token string, engine Engine, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(api, engine, logger)
	b.api = api
	return b, nil
}

func newBot(s sender, engine Engine, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		sender:   s,
		engine:   engine,
		logger:   logger,
		sessions: make(map[int64]string),
	}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	content := message.Text
	if message.Caption != "" {
		content = message.Caption
	}
	if strings.TrimSpace(content) == "" {
		return
	}

	chatID := message.Chat.ID
	sessionID, err := b.sessionFor(ctx, chatID)
	if err != nil {
		b.logger.Error("Failed to open chat session",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendErrorMessage(chatID, "Não consegui iniciar a conversa. Tente novamente em instantes.")
		return
	}

	resp, err := b.engine.ProcessMessage(ctx, sessionID, content)
	if err != nil {
		b.logger.Error("Failed to process message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("session_id", sessionID))
		b.sendErrorMessage(chatID, "Não consegui processar sua mensagem. Tente novamente.")
		return
	}

	b.sendMessage(chatID, resp.Message)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "help":
		b.handleHelp(message)
	case "new":
		b.handleNew(ctx, message)
	case "cancel":
		b.handleCancel(ctx, message)
	default:
		b.sendMessage(message.Chat.ID, "Comando desconhecido. Use /help para ver os comandos disponíveis.")
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if _, err := b.resetSession(ctx, message.Chat.ID); err != nil {
		b.logger.Error("Failed to create chat session",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Não consegui iniciar a conversa. Tente novamente em instantes.")
		return
	}

	welcome := `Olá! Sou o assistente do seu negócio. 🛠️
Posso criar orçamentos, cadastrar serviços e cadastrar clientes.

É só me dizer o que você precisa, por exemplo "criar orçamento".
Use /help para ver todos os comandos.`

	b.sendMessage(message.Chat.ID, welcome)
}

func (b *Bot) handleHelp(message *tgbotapi.Message) {
	help := `Comandos disponíveis:
/start - Iniciar o assistente
/help - Mostrar esta ajuda
/new - Começar uma nova conversa
/cancel - Cancelar o cadastro em andamento

Você também pode escrever:
- criar orçamento
- cadastrar serviço
- cadastrar cliente`

	b.sendMessage(message.Chat.ID, help)
}

func (b *Bot) handleNew(ctx context.Context, message *tgbotapi.Message) {
	if _, err := b.resetSession(ctx, message.Chat.ID); err != nil {
		b.logger.Error("Failed to create chat session",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
		b.sendErrorMessage(message.Chat.ID, "Não consegui abrir uma nova conversa.")
		return
	}
	b.sendMessage(message.Chat.ID, "Nova conversa iniciada. Como posso ajudar?")
}

// handleCancel routes through the engine so the cancellation is recorded
// in the transcript.
func (b *Bot) handleCancel(ctx context.Context, message *tgbotapi.Message) {
	b.mu.Lock()
	sessionID, ok := b.sessions[message.Chat.ID]
	b.mu.Unlock()
	if ok {
		session, err := b.engine.GetSession(ctx, sessionID)
		ok = err == nil && session.Context.CollectingData != nil
	}
	if !ok {
		b.sendMessage(message.Chat.ID, "Não há nenhum cadastro em andamento.")
		return
	}

	resp, err := b.engine.ProcessMessage(ctx, sessionID, "cancelar")
	if err != nil {
		b.logger.Error("Failed to cancel flow",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID),
			zap.String("session_id", sessionID))
		b.sendErrorMessage(message.Chat.ID, "Não consegui cancelar agora. Tente novamente.")
		return
	}
	b.sendMessage(message.Chat.ID, resp.Message)
}

func (b *Bot) sessionFor(ctx context.Context, chatID int64) (string, error) {
	b.mu.Lock()
	id, ok := b.sessions[chatID]
	b.mu.Unlock()
	if ok {
		return id, nil
	}
	return b.resetSession(ctx, chatID)
}

func (b *Bot) resetSession(ctx context.Context, chatID int64) (string, error) {
	session, err := b.engine.CreateSession(ctx)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	b.sessions[chatID] = session.ID
	b.mu.Unlock()

	b.logger.Info("Chat bound to session",
		zap.Int64("chat_id", chatID),
		zap.String("session_id", session.ID))
	return session.ID, nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
