package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db, logger: logger}

	if err := storage.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.String("dbname", config.DBName))
	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}
	return nil
}

// Session methods

func (s *PostgresStorage) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	query := `
		SELECT id, title, status, messages, context, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying session: %w", err)
	}
	return session, nil
}

func (s *PostgresStorage) Put(ctx context.Context, session *models.ChatSession) error {
	messages, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("error encoding messages: %w", err)
	}
	convCtx, err := json.Marshal(session.Context)
	if err != nil {
		return fmt.Errorf("error encoding context: %w", err)
	}

	query := `
		INSERT INTO chat_sessions (id, title, status, messages, context, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
			status = EXCLUDED.status,
			messages = EXCLUDED.messages,
			context = EXCLUDED.context,
			updated_at = EXCLUDED.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.Title,
		string(session.Status),
		messages,
		convCtx,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (s *PostgresStorage) List(ctx context.Context) ([]*models.ChatSession, error) {
	query := `
		SELECT id, title, status, messages, context, created_at, updated_at
		FROM chat_sessions
		ORDER BY updated_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.ChatSession, error) {
	var (
		session  models.ChatSession
		status   string
		messages []byte
		convCtx  []byte
	)
	err := row.Scan(
		&session.ID,
		&session.Title,
		&status,
		&messages,
		&convCtx,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionStatus(status)
	if err := json.Unmarshal(messages, &session.Messages); err != nil {
		return nil, fmt.Errorf("error decoding messages: %w", err)
	}
	if err := json.Unmarshal(convCtx, &session.Context); err != nil {
		return nil, fmt.Errorf("error decoding context: %w", err)
	}
	return &session, nil
}

// Category methods

func (s *PostgresStorage) ListCategories(ctx context.Context) ([]models.CategoryRule, error) {
	return s.queryCategories(ctx, `
		SELECT name, keywords, patterns, domains, color, active
		FROM categories
		ORDER BY position`)
}

func (s *PostgresStorage) ListActiveCategories(ctx context.Context) ([]models.CategoryRule, error) {
	return s.queryCategories(ctx, `
		SELECT name, keywords, patterns, domains, color, active
		FROM categories
		WHERE active
		ORDER BY position`)
}

func (s *PostgresStorage) queryCategories(ctx context.Context, query string) ([]models.CategoryRule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	var rules []models.CategoryRule
	for rows.Next() {
		var rule models.CategoryRule
		err := rows.Scan(
			&rule.Name,
			pq.Array(&rule.Keywords),
			pq.Array(&rule.Patterns),
			pq.Array(&rule.Domains),
			&rule.Color,
			&rule.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *PostgresStorage) SaveCategory(ctx context.Context, rule models.CategoryRule) error {
	query := `
		INSERT INTO categories (name, keywords, patterns, domains, color, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE
		SET keywords = EXCLUDED.keywords,
			patterns = EXCLUDED.patterns,
			domains = EXCLUDED.domains,
			color = EXCLUDED.color,
			active = EXCLUDED.active`

	_, err := s.db.ExecContext(ctx, query,
		rule.Name,
		pq.Array(rule.Keywords),
		pq.Array(rule.Patterns),
		pq.Array(rule.Domains),
		rule.Color,
		rule.Active,
	)
	if err != nil {
		return fmt.Errorf("error saving category: %w", err)
	}
	return nil
}

func (s *PostgresStorage) DeleteCategory(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("error deleting category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Email methods

func (s *PostgresStorage) SaveEmail(ctx context.Context, email *models.Email) error {
	query := `
		INSERT INTO emails (id, subject, sender, body, snippet, category, confidence, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET category = EXCLUDED.category,
			confidence = EXCLUDED.confidence`

	_, err := s.db.ExecContext(ctx, query,
		email.ID,
		email.Subject,
		email.From,
		email.Body,
		email.Snippet,
		email.Category,
		email.Confidence,
		email.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving email: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetEmail(ctx context.Context, id string) (*models.Email, error) {
	query := `
		SELECT id, subject, sender, body, snippet, category, confidence, received_at
		FROM emails
		WHERE id = $1`

	email := &models.Email{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&email.ID,
		&email.Subject,
		&email.From,
		&email.Body,
		&email.Snippet,
		&email.Category,
		&email.Confidence,
		&email.ReceivedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying email: %w", err)
	}
	return email, nil
}

func (s *PostgresStorage) ListEmails(ctx context.Context) ([]*models.Email, error) {
	query := `
		SELECT id, subject, sender, body, snippet, category, confidence, received_at
		FROM emails
		ORDER BY received_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying emails: %w", err)
	}
	defer rows.Close()

	var emails []*models.Email
	for rows.Next() {
		email := &models.Email{}
		err := rows.Scan(
			&email.ID,
			&email.Subject,
			&email.From,
			&email.Body,
			&email.Snippet,
			&email.Category,
			&email.Confidence,
			&email.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// Resource methods

func (s *PostgresStorage) SaveResource(ctx context.Context, resource *models.Resource) error {
	fields, err := json.Marshal(resource.Fields)
	if err != nil {
		return fmt.Errorf("error encoding resource fields: %w", err)
	}

	query := `
		INSERT INTO resources (id, type, fields, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = s.db.ExecContext(ctx, query,
		resource.ID,
		string(resource.Type),
		fields,
		resource.SessionID,
		resource.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving resource: %w", err)
	}
	return nil
}

func (s *PostgresStorage) ListResources(ctx context.Context, typ models.ResourceType) ([]*models.Resource, error) {
	query := `
		SELECT id, type, fields, session_id, created_at
		FROM resources
		WHERE $1 = '' OR type = $1
		ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, string(typ))
	if err != nil {
		return nil, fmt.Errorf("error querying resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		var (
			r      models.Resource
			rtype  string
			fields []byte
		)
		if err := rows.Scan(&r.ID, &rtype, &fields, &r.SessionID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		r.Type = models.ResourceType(rtype)
		if err := json.Unmarshal(fields, &r.Fields); err != nil {
			return nil, fmt.Errorf("error decoding resource fields: %w", err)
		}
		resources = append(resources, &r)
	}
	return resources, rows.Err()
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
