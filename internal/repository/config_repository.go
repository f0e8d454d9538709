package repository

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfigRepository stores AI configurations. The unique index on
// (company_id, COALESCE(chat_id, nil uuid)) keeps one row per key.
type ConfigRepository struct {
	db *pgxpool.Pool
}

func NewConfigRepository(db *pgxpool.Pool) *ConfigRepository {
	return &ConfigRepository{db: db}
}

const aiConfigColumns = "id, client_description, special_instructions, company_id, chat_id, created_at, updated_at"

func scanAIConfig(row pgx.Row) (*entities.AIConfiguration, error) {
	var c entities.AIConfiguration
	var chatID uuid.NullUUID
	err := row.Scan(&c.ID, &c.ClientDescription, &c.SpecialInstructions, &c.CompanyID, &chatID, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil // Not found is not strictly an error
	}
	if err != nil {
		return nil, err
	}
	c.ChatID = uuidPtr(chatID)
	return &c, nil
}

func (r *ConfigRepository) GetAIConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (*entities.AIConfiguration, error) {
	return scanAIConfig(r.db.QueryRow(ctx,
		"SELECT "+aiConfigColumns+" FROM ai_configurations WHERE company_id = $1 AND chat_id IS NOT DISTINCT FROM $2::uuid",
		companyID, nullUUID(chatID)))
}

func (r *ConfigRepository) InsertAIConfig(ctx context.Context, c *entities.AIConfiguration) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := r.db.Exec(ctx,
		"INSERT INTO ai_configurations ("+aiConfigColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		c.ID, c.ClientDescription, c.SpecialInstructions, c.CompanyID, nullUUID(c.ChatID), c.CreatedAt, c.UpdatedAt)
	return mapWriteError(err)
}

// UpsertAIConfig creates the row for the key or patches it in one statement.
// NULL parameters keep the stored value.
func (r *ConfigRepository) UpsertAIConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID, patch entities.AIConfigPatch) (*entities.AIConfiguration, error) {
	return scanAIConfig(r.db.QueryRow(ctx, `
		INSERT INTO ai_configurations (`+aiConfigColumns+`)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (company_id, (COALESCE(chat_id, '00000000-0000-0000-0000-000000000000'::uuid)))
		DO UPDATE SET
			client_description = COALESCE(EXCLUDED.client_description, ai_configurations.client_description),
			special_instructions = COALESCE(EXCLUDED.special_instructions, ai_configurations.special_instructions),
			updated_at = NOW()
		RETURNING `+aiConfigColumns,
		uuid.New(), patch.ClientDescription, patch.SpecialInstructions, companyID, nullUUID(chatID)))
}

func (r *ConfigRepository) DeleteAIConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM ai_configurations WHERE company_id = $1 AND chat_id IS NOT DISTINCT FROM $2::uuid",
		companyID, nullUUID(chatID))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
