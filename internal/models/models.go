package models

import "time"

// SessionStatus is the lifecycle status of a chat session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionArchived  SessionStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionCompleted, SessionArchived:
		return true
	}
	return false
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatSession is one user's conversation with the assistant.
type ChatSession struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Status    SessionStatus       `json:"status"`
	Messages  []ChatMessage       `json:"messages"`
	Context   ConversationContext `json:"context"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// ChatMessage is immutable once appended to a session.
type ChatMessage struct {
	ID        string           `json:"id"`
	SessionID string           `json:"sessionId"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

type MessageMetadata struct {
	Action           string         `json:"action,omitempty"`
	Data             map[string]any `json:"data,omitempty"`
	Confidence       float64        `json:"confidence,omitempty"`
	SuggestedActions []string       `json:"suggestedActions,omitempty"`
}

// ConversationContext holds the transient per-session dialogue state.
// CollectingData is non-nil exactly while the session is mid-flow.
type ConversationContext struct {
	CurrentAction  string          `json:"currentAction,omitempty"`
	CollectingData *CollectingData `json:"collectingData,omitempty"`
}

type CollectingData struct {
	Type string            `json:"type"`
	Step int               `json:"step"`
	Data map[string]string `json:"data"`
}

// Clone returns a deep copy so stored sessions never share slices or maps
// with callers.
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Messages = make([]ChatMessage, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m
		if m.Metadata != nil {
			md := *m.Metadata
			if m.Metadata.Data != nil {
				md.Data = make(map[string]any, len(m.Metadata.Data))
				for k, v := range m.Metadata.Data {
					md.Data[k] = v
				}
			}
			md.SuggestedActions = append([]string(nil), m.Metadata.SuggestedActions...)
			out.Messages[i].Metadata = &md
		}
	}
	out.Context = s.Context.Clone()
	return &out
}

func (c ConversationContext) Clone() ConversationContext {
	out := c
	if c.CollectingData != nil {
		cd := *c.CollectingData
		cd.Data = make(map[string]string, len(c.CollectingData.Data))
		for k, v := range c.CollectingData.Data {
			cd.Data[k] = v
		}
		out.CollectingData = &cd
	}
	return out
}
