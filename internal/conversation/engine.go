package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/storage"
	"go.uber.org/zap"
)

// ErrSessionNotFound is returned by ProcessMessage and GetSession for ids
// unknown to the session repository.
var ErrSessionNotFound = storage.ErrSessionNotFound

var ErrInvalidStatus = errors.New("invalid session status")

const actionError = "error"

// Response is the result of one processed user message.
type Response struct {
	Message   string                  `json:"message"`
	SessionID string                  `json:"sessionId"`
	Metadata  *models.MessageMetadata `json:"metadata,omitempty"`
}

// Engine drives guided dialogues over sessions kept in a SessionRepository.
// Turns on the same session are serialized; different sessions run in
// parallel.
type Engine struct {
	sessions  storage.SessionRepository
	resources storage.ResourceStore
	logger    *zap.Logger
	rand      RandSource
	now       func() time.Time
	metrics   *Metrics

	locks sync.Map // session id -> *sync.Mutex
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithRandSource(r RandSource) Option {
	return func(e *Engine) { e.rand = r }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithResourceStore persists resources created by completed flows.
func WithResourceStore(store storage.ResourceStore) Option {
	return func(e *Engine) { e.resources = store }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func NewEngine(sessions storage.SessionRepository, opts ...Option) *Engine {
	e := &Engine{
		sessions: sessions,
		logger:   zap.NewNop(),
		rand:     defaultRandSource(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) CreateSession(ctx context.Context) (*models.ChatSession, error) {
	now := e.now()
	session := &models.ChatSession{
		ID:        uuid.New().String(),
		Title:     defaultTitle,
		Status:    models.SessionActive,
		Messages:  []models.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	e.logger.Info("Chat session created", zap.String("session_id", session.ID))
	return session, nil
}

func (e *Engine) GetSession(ctx context.Context, id string) (*models.ChatSession, error) {
	return e.sessions.Get(ctx, id)
}

// ListSessions returns all sessions, most recently updated first.
func (e *Engine) ListSessions(ctx context.Context) ([]*models.ChatSession, error) {
	return e.sessions.List(ctx)
}

// SetStatus changes a session's lifecycle status. It does not affect the
// conversation state.
func (e *Engine) SetStatus(ctx context.Context, id string, status models.SessionStatus) (*models.ChatSession, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	unlock := e.lock(id)
	defer unlock()

	session, err := e.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Status = status
	session.UpdatedAt = e.now()
	if err := e.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

// turn is the outcome of handling one message before it is committed to
// the session.
type turn struct {
	text     string
	metadata *models.MessageMetadata
	context  models.ConversationContext
	intent   Intent
}

// ProcessMessage runs one user message through the session's state machine
// and appends the user and assistant messages to its transcript.
func (e *Engine) ProcessMessage(ctx context.Context, sessionID, text string) (*Response, error) {
	unlock := e.lock(sessionID)
	defer unlock()

	session, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	firstTurn := len(session.Messages) == 0
	userMsg := e.newMessage(sessionID, models.RoleUser, text, nil)

	t, err := e.safeRespond(ctx, session, text)
	if err != nil {
		e.logger.Error("Failed to generate response",
			zap.Error(err),
			zap.String("session_id", sessionID))
		t = turn{
			text:     errorMessage,
			metadata: &models.MessageMetadata{Action: actionError},
			context:  session.Context,
		}
	}

	assistantMsg := e.newMessage(sessionID, models.RoleAssistant, t.text, t.metadata)
	session.Messages = append(session.Messages, userMsg, assistantMsg)
	session.Context = t.context
	session.UpdatedAt = assistantMsg.Timestamp
	if firstTurn && t.intent != "" && t.intent != IntentGreeting {
		if title, ok := sessionTitles[t.intent]; ok {
			session.Title = title
		}
	}

	if err := e.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	e.metrics.observe(t.metadata.Action)

	return &Response{
		Message:   t.text,
		SessionID: sessionID,
		Metadata:  t.metadata,
	}, nil
}

func (e *Engine) lock(sessionID string) func() {
	v, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (e *Engine) newMessage(sessionID string, role models.Role, content string, md *models.MessageMetadata) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: e.now(),
		Metadata:  md,
	}
}

// safeRespond converts panics raised while building a reply into errors.
func (e *Engine) safeRespond(ctx context.Context, session *models.ChatSession, text string) (t turn, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while responding: %v", r)
		}
	}()

	if session.Context.CollectingData == nil {
		return e.handleIdle(text), nil
	}
	return e.continueFlow(ctx, session, text)
}

func (e *Engine) handleIdle(text string) turn {
	intent, confidence := DetectIntent(text)
	e.logger.Debug("Intent detected",
		zap.String("intent", string(intent)),
		zap.Float64("confidence", confidence))

	flow, ok := flowForIntent(intent)
	if !ok {
		return turn{
			text: pick(responsePools[intent], e.rand),
			metadata: &models.MessageMetadata{
				Action:           string(intent),
				Confidence:       confidence,
				SuggestedActions: suggestedActions,
			},
			intent: intent,
		}
	}

	return turn{
		text: flow.LeadIn + "\n\n" + flow.Steps[0].Prompt,
		metadata: &models.MessageMetadata{
			Action:     string(intent),
			Confidence: confidence,
			Data: map[string]any{
				"flow":       string(flow.Type),
				"step":       0,
				"totalSteps": len(flow.Steps),
			},
		},
		context: models.ConversationContext{
			CurrentAction: string(intent),
			CollectingData: &models.CollectingData{
				Type: string(flow.Type),
				Step: 0,
				Data: map[string]string{},
			},
		},
		intent: intent,
	}
}

func (e *Engine) continueFlow(ctx context.Context, session *models.ChatSession, text string) (turn, error) {
	collecting := session.Context.CollectingData

	flow, ok := FlowFor(FlowType(collecting.Type))
	if !ok || collecting.Step < 0 || collecting.Step >= len(flow.Steps) {
		e.logger.Warn("Discarding unusable flow state",
			zap.String("session_id", session.ID),
			zap.String("flow", collecting.Type),
			zap.Int("step", collecting.Step))
		return turn{
			text:     brokenFlow,
			metadata: &models.MessageMetadata{Action: actionError},
		}, nil
	}

	if isCancel(text) {
		e.logger.Info("Flow cancelled",
			zap.String("session_id", session.ID),
			zap.String("flow", collecting.Type))
		return turn{
			text: cancelled,
			metadata: &models.MessageMetadata{
				Action:           "flow_cancelled",
				SuggestedActions: suggestedActions,
			},
		}, nil
	}

	step := flow.Steps[collecting.Step]
	if !validate(step.Rule, text) {
		e.logger.Debug("Step validation failed",
			zap.String("session_id", session.ID),
			zap.String("field", step.Field),
			zap.String("rule", string(step.Rule)))
		return turn{
			text: validationError(step.Rule) + "\n\n" + step.Prompt,
			metadata: &models.MessageMetadata{
				Action: "validation_error",
				Data: map[string]any{
					"field": step.Field,
					"step":  collecting.Step,
				},
			},
			context: session.Context.Clone(),
		}, nil
	}

	next := session.Context.Clone()
	next.CollectingData.Data[step.Field] = text
	next.CollectingData.Step++

	if next.CollectingData.Step < len(flow.Steps) {
		return turn{
			text: flow.Steps[next.CollectingData.Step].Prompt,
			metadata: &models.MessageMetadata{
				Action: string(flow.Type) + "_step",
				Data: map[string]any{
					"step":       next.CollectingData.Step,
					"totalSteps": len(flow.Steps),
				},
			},
			context: next,
		}, nil
	}

	return e.complete(ctx, session.ID, flow, next.CollectingData.Data)
}

func (e *Engine) complete(ctx context.Context, sessionID string, flow *Flow, fields map[string]string) (turn, error) {
	resource := &models.Resource{
		ID:        generateID(flow.IDPrefix, e.rand),
		Type:      flow.Resource,
		Fields:    fields,
		SessionID: sessionID,
		CreatedAt: e.now(),
	}
	if e.resources != nil {
		if err := e.resources.SaveResource(ctx, resource); err != nil {
			return turn{}, fmt.Errorf("failed to save %s: %w", flow.Type, err)
		}
	}

	e.logger.Info("Flow completed",
		zap.String("session_id", sessionID),
		zap.String("flow", string(flow.Type)),
		zap.String("resource_id", resource.ID))

	data := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data["id"] = resource.ID

	return turn{
		text: completionMessage(flow, resource.ID, fields),
		metadata: &models.MessageMetadata{
			Action: string(flow.Type) + "_completed",
			Data:   data,
		},
	}, nil
}

func completionMessage(flow *Flow, id string, fields map[string]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s cadastrado com sucesso!\n\nID: %s\n", flow.Noun, id)
	for _, step := range flow.Steps {
		if step.Rule == RuleConfirmation {
			continue
		}
		value := strings.TrimSpace(fields[step.Field])
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "• %s: %s\n", step.Label, value)
	}
	return strings.TrimRight(b.String(), "\n")
}
