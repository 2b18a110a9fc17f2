package storage

import (
	"context"
	"errors"

	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Storage interface {
	CategoryStore
	EmailStore
	ResourceStore
	Close() error

	// Embed SessionRepository interface
	SessionRepository
}

// SessionRepository persists chat sessions. Get returns ErrSessionNotFound
// for unknown ids and List orders sessions by UpdatedAt, newest first.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.ChatSession, error)
	Put(ctx context.Context, session *models.ChatSession) error
	List(ctx context.Context) ([]*models.ChatSession, error)
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]models.CategoryRule, error)
	ListActiveCategories(ctx context.Context) ([]models.CategoryRule, error)
	SaveCategory(ctx context.Context, rule models.CategoryRule) error
	DeleteCategory(ctx context.Context, name string) error
}

type EmailStore interface {
	SaveEmail(ctx context.Context, email *models.Email) error
	GetEmail(ctx context.Context, id string) (*models.Email, error)
	ListEmails(ctx context.Context) ([]*models.Email, error)
}

type ResourceStore interface {
	SaveResource(ctx context.Context, resource *models.Resource) error
	ListResources(ctx context.Context, typ models.ResourceType) ([]*models.Resource, error)
}
