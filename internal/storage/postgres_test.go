package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/marcelohs402015/app-email-attendant-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newMockStorage(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresStorage{db: db, logger: zaptest.NewLogger(t)}, mock
}

func TestPostgresStorage_GetSession(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStorage(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "title", "status", "messages", "context", "created_at", "updated_at"}).
		AddRow("s1", "Criação de Orçamento", "active",
			[]byte(`[{"id":"m1","sessionId":"s1","role":"user","content":"oi","timestamp":"2024-01-01T10:00:00Z"}]`),
			[]byte(`{"currentAction":"create_quotation","collectingData":{"type":"quotation","step":2,"data":{"client_name":"Ana"}}}`),
			now, now)
	mock.ExpectQuery("SELECT (.+) FROM chat_sessions WHERE id = \\$1").
		WithArgs("s1").
		WillReturnRows(rows)

	session, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, session.Status)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, models.RoleUser, session.Messages[0].Role)
	require.NotNil(t, session.Context.CollectingData)
	assert.Equal(t, 2, session.Context.CollectingData.Step)
	assert.Equal(t, "Ana", session.Context.CollectingData.Data["client_name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_GetSessionNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery("SELECT (.+) FROM chat_sessions").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_PutSession(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Now().UTC()
	session := newSession("s1", now)

	mock.ExpectExec("INSERT INTO chat_sessions").
		WithArgs("s1", "Nova conversa", "active", sqlmock.AnyArg(), sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Put(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_ListActiveCategories(t *testing.T) {
	s, mock := newMockStorage(t)

	rows := sqlmock.NewRows([]string{"name", "keywords", "patterns", "domains", "color", "active"}).
		AddRow("quote", "{orçamento,cotação}", "{\"quanto custa|orçamento\"}", "{}", "#2563eb", true).
		AddRow("payment", "{pagamento}", "{}", "{paypal}", "#ca8a04", true)
	mock.ExpectQuery("SELECT (.+) FROM categories WHERE active ORDER BY position").
		WillReturnRows(rows)

	rules, err := s.ListActiveCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"orçamento", "cotação"}, rules[0].Keywords)
	assert.Equal(t, []string{"quanto custa|orçamento"}, rules[0].Patterns)
	assert.Equal(t, []string{"paypal"}, rules[1].Domains)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorage_DeleteCategory(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "not found", affected: 0, wantErr: ErrNotFound},
		{name: "database error", execErr: errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStorage(t)
			exp := mock.ExpectExec("DELETE FROM categories").WithArgs("quote")
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			err := s.DeleteCategory(context.Background(), "quote")
			switch {
			case tt.execErr != nil:
				assert.ErrorIs(t, err, tt.execErr)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStorage_SaveAndListResources(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStorage(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO resources").
		WithArgs("CLI-ABCD1234", "client", sqlmock.AnyArg(), "s1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.SaveResource(ctx, &models.Resource{
		ID:        "CLI-ABCD1234",
		Type:      models.ResourceClient,
		Fields:    map[string]string{"name": "Ana"},
		SessionID: "s1",
		CreatedAt: now,
	})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM resources").
		WithArgs("client").
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "fields", "session_id", "created_at"}).
			AddRow("CLI-ABCD1234", "client", []byte(`{"name":"Ana"}`), "s1", now))

	resources, err := s.ListResources(ctx, models.ResourceClient)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "Ana", resources[0].Fields["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
