package repository

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

const chatColumns = "id, name, client_description, special_instructions, user_id, company_id, created_at, updated_at"

func scanChat(row pgx.Row) (*entities.Chat, error) {
	var c entities.Chat
	err := row.Scan(&c.ID, &c.Name, &c.ClientDescription, &c.SpecialInstructions,
		&c.UserID, &c.CompanyID, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepository) CreateChat(ctx context.Context, c *entities.Chat) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := r.db.Exec(ctx,
		"INSERT INTO chats ("+chatColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		c.ID, c.Name, c.ClientDescription, c.SpecialInstructions, c.UserID, c.CompanyID, c.CreatedAt, c.UpdatedAt)
	return mapWriteError(err)
}

func (r *ChatRepository) GetChat(ctx context.Context, id uuid.UUID) (*entities.Chat, error) {
	return scanChat(r.db.QueryRow(ctx, "SELECT "+chatColumns+" FROM chats WHERE id = $1", id))
}

// ListChatsByUser pages through the chats a user owns, newest first
func (r *ChatRepository) ListChatsByUser(ctx context.Context, userID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Chat], error) {
	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM chats WHERE user_id = $1", userID).Scan(&total); err != nil {
		return entities.Page[entities.Chat]{}, err
	}

	rows, err := r.db.Query(ctx,
		"SELECT "+chatColumns+" FROM chats WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3",
		userID, page.PageSize, page.Offset())
	if err != nil {
		return entities.Page[entities.Chat]{}, err
	}
	defer rows.Close()

	chats := []entities.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return entities.Page[entities.Chat]{}, err
		}
		chats = append(chats, *c)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[entities.Chat]{}, err
	}
	return entities.NewPage(chats, total, page), nil
}

func (r *ChatRepository) UpdateChat(ctx context.Context, id uuid.UUID, patch entities.ChatPatch) (*entities.Chat, error) {
	return scanChat(r.db.QueryRow(ctx, `
		UPDATE chats SET
			name = COALESCE($2, name),
			client_description = COALESCE($3, client_description),
			special_instructions = COALESCE($4, special_instructions),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+chatColumns,
		id, patch.Name, patch.ClientDescription, patch.SpecialInstructions))
}

// DeleteChat removes the chat; messages and chat configurations cascade
func (r *ChatRepository) DeleteChat(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM chats WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
