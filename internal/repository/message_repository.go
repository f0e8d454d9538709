package repository

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	db *pgxpool.Pool
}

func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

const messageColumns = "id, seq, content, role, is_ai_generated, chat_id, created_at, updated_at"

func scanMessage(row pgx.Row) (*entities.Message, error) {
	var m entities.Message
	var role string
	err := row.Scan(&m.ID, &m.Seq, &m.Content, &role, &m.IsAIGenerated, &m.ChatID, &m.CreatedAt, &m.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.Role = entities.MessageRole(role)
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]entities.Message, error) {
	defer rows.Close()
	messages := []entities.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) CreateMessage(ctx context.Context, m *entities.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (id, content, role, is_ai_generated, chat_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`, m.ID, m.Content, string(m.Role), m.IsAIGenerated, m.ChatID, m.CreatedAt, m.UpdatedAt).Scan(&m.Seq)
	return mapWriteError(err)
}

func (r *MessageRepository) GetMessage(ctx context.Context, id uuid.UUID) (*entities.Message, error) {
	return scanMessage(r.db.QueryRow(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = $1", id))
}

func (r *MessageRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]entities.Message, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = $1 ORDER BY created_at, seq", chatID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// RecentMessages selects the tail of the conversation and returns it oldest first
func (r *MessageRepository) RecentMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]entities.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM messages WHERE chat_id = $1
			ORDER BY created_at DESC, seq DESC LIMIT $2
		) tail ORDER BY created_at, seq
	`, chatID, limit)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (r *MessageRepository) PageMessages(ctx context.Context, chatID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Message], error) {
	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM messages WHERE chat_id = $1", chatID).Scan(&total); err != nil {
		return entities.Page[entities.Message]{}, err
	}

	rows, err := r.db.Query(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id = $1 ORDER BY created_at, seq LIMIT $2 OFFSET $3",
		chatID, page.PageSize, page.Offset())
	if err != nil {
		return entities.Page[entities.Message]{}, err
	}
	messages, err := collectMessages(rows)
	if err != nil {
		return entities.Page[entities.Message]{}, err
	}
	return entities.NewPage(messages, total, page), nil
}

func (r *MessageRepository) UpdateMessageContent(ctx context.Context, id uuid.UUID, content string) (*entities.Message, error) {
	return scanMessage(r.db.QueryRow(ctx,
		"UPDATE messages SET content = $2, updated_at = NOW() WHERE id = $1 RETURNING "+messageColumns,
		id, content))
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM messages WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
