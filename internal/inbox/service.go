package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/classifier"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/storage"
	"go.uber.org/zap"
)

// Service classifies inbound emails against the active category rules and
// stores them with their category.
type Service struct {
	categories storage.CategoryStore
	emails     storage.EmailStore
	classifier classifier.Classifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(categories storage.CategoryStore, emails storage.EmailStore, clf classifier.Classifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		categories: categories,
		emails:     emails,
		classifier: clf,
		logger:     logger,
		now:        time.Now,
	}
}

// SeedDefaultRules stores rules when the category store is empty. It
// reports whether anything was written.
func (s *Service) SeedDefaultRules(ctx context.Context, rules []models.CategoryRule) (bool, error) {
	existing, err := s.categories.ListCategories(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	for _, rule := range rules {
		if err := s.categories.SaveCategory(ctx, rule); err != nil {
			return false, fmt.Errorf("failed to seed category %q: %w", rule.Name, err)
		}
	}
	s.logger.Info("Seeded default categories", zap.Int("count", len(rules)))
	return true, nil
}

// Classify scores emails against the active rules without storing them.
func (s *Service) Classify(ctx context.Context, emails []models.Email) ([]models.ClassificationResult, error) {
	rules, err := s.categories.ListActiveCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return s.classifier.ClassifyMany(emails, rules), nil
}

// Ingest classifies one email and stores it. Missing ids and receive times
// are filled in.
func (s *Service) Ingest(ctx context.Context, email models.Email) (*models.Email, models.ClassificationResult, error) {
	if email.ID == "" {
		email.ID = uuid.New().String()
	}
	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = s.now()
	}

	rules, err := s.categories.ListActiveCategories(ctx)
	if err != nil {
		return nil, models.ClassificationResult{}, fmt.Errorf("failed to load categories: %w", err)
	}

	result := s.classifier.Classify(email, rules)
	email.Category = result.Category
	email.Confidence = result.Confidence

	if err := s.emails.SaveEmail(ctx, &email); err != nil {
		s.logger.Error("Failed to save email",
			zap.Error(err),
			zap.String("email_id", email.ID))
		return nil, models.ClassificationResult{}, fmt.Errorf("failed to save email: %w", err)
	}

	s.logger.Info("Email classified",
		zap.String("email_id", email.ID),
		zap.String("category", result.Category),
		zap.Float64("confidence", result.Confidence))

	return &email, result, nil
}

// Reclassify runs every stored email through the current active rules and
// stores the new categories. It returns the number of emails processed.
func (s *Service) Reclassify(ctx context.Context) (int, error) {
	stored, err := s.emails.ListEmails(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list emails: %w", err)
	}
	rules, err := s.categories.ListActiveCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load categories: %w", err)
	}

	batch := make([]models.Email, len(stored))
	for i, email := range stored {
		batch[i] = *email
	}

	results := s.classifier.ClassifyMany(batch, rules)
	for i := range batch {
		batch[i].Category = results[i].Category
		batch[i].Confidence = results[i].Confidence
		if err := s.emails.SaveEmail(ctx, &batch[i]); err != nil {
			return i, fmt.Errorf("failed to save email %s: %w", batch[i].ID, err)
		}
	}
	return len(batch), nil
}
