package models

import "time"

type Email struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	Body       string    `json:"body"`
	Snippet    string    `json:"snippet"`
	Category   string    `json:"category,omitempty"`
	Confidence float64   `json:"confidence"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type ResourceType string

const (
	ResourceQuotation ResourceType = "quotation"
	ResourceService   ResourceType = "service"
	ResourceClient    ResourceType = "client"
)

// Resource is a record created by a completed conversation flow.
type Resource struct {
	ID        string            `json:"id"`
	Type      ResourceType      `json:"type"`
	Fields    map[string]string `json:"fields"`
	SessionID string            `json:"sessionId"`
	CreatedAt time.Time         `json:"createdAt"`
}
