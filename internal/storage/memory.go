package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
)

// MemoryStorage keeps everything in process memory. Sessions are lost on
// restart.
type MemoryStorage struct {
	mu         sync.RWMutex
	sessions   map[string]*models.ChatSession
	categories []models.CategoryRule
	emails     map[string]*models.Email
	emailOrder []string
	resources  []*models.Resource
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*models.ChatSession),
		emails:   make(map[string]*models.Email),
	}
}

// Session methods
func (s *MemoryStorage) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStorage) Put(ctx context.Context, session *models.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *MemoryStorage) List(ctx context.Context) ([]*models.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session.Clone())
	}
	sortByRecency(out)
	return out, nil
}

func sortByRecency(sessions []*models.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}

// Category methods
func (s *MemoryStorage) ListCategories(ctx context.Context) ([]models.CategoryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyRules(s.categories, false), nil
}

func (s *MemoryStorage) ListActiveCategories(ctx context.Context) ([]models.CategoryRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copyRules(s.categories, true), nil
}

// SaveCategory replaces the rule with the same name in place, or appends it.
func (s *MemoryStorage) SaveCategory(ctx context.Context, rule models.CategoryRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule = copyRule(rule)
	for i, c := range s.categories {
		if c.Name == rule.Name {
			s.categories[i] = rule
			return nil
		}
	}
	s.categories = append(s.categories, rule)
	return nil
}

func (s *MemoryStorage) DeleteCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.categories {
		if c.Name == name {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func copyRules(rules []models.CategoryRule, activeOnly bool) []models.CategoryRule {
	out := make([]models.CategoryRule, 0, len(rules))
	for _, r := range rules {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, copyRule(r))
	}
	return out
}

func copyRule(r models.CategoryRule) models.CategoryRule {
	r.Keywords = append([]string(nil), r.Keywords...)
	r.Patterns = append([]string(nil), r.Patterns...)
	r.Domains = append([]string(nil), r.Domains...)
	return r
}

// Email methods
func (s *MemoryStorage) SaveEmail(ctx context.Context, email *models.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[email.ID]; !exists {
		s.emailOrder = append(s.emailOrder, email.ID)
	}
	e := *email
	s.emails[email.ID] = &e
	return nil
}

func (s *MemoryStorage) GetEmail(ctx context.Context, id string) (*models.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, exists := s.emails[id]
	if !exists {
		return nil, ErrNotFound
	}
	e := *email
	return &e, nil
}

func (s *MemoryStorage) ListEmails(ctx context.Context) ([]*models.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Email, 0, len(s.emailOrder))
	for _, id := range s.emailOrder {
		e := *s.emails[id]
		out = append(out, &e)
	}
	return out, nil
}

// Resource methods
func (s *MemoryStorage) SaveResource(ctx context.Context, resource *models.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resources = append(s.resources, copyResource(resource))
	return nil
}

func (s *MemoryStorage) ListResources(ctx context.Context, typ models.ResourceType) ([]*models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Resource
	for _, r := range s.resources {
		if typ != "" && r.Type != typ {
			continue
		}
		out = append(out, copyResource(r))
	}
	return out, nil
}

func copyResource(r *models.Resource) *models.Resource {
	c := *r
	c.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return &c
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
