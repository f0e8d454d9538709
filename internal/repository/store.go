package repository

import (
	"errors"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements interfaces.Store on a pgx pool.
type PostgresStore struct {
	*CompanyRepository
	*UserRepository
	*ChatRepository
	*MessageRepository
	*ConfigRepository
	*UsageRepository

	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		CompanyRepository: NewCompanyRepository(db),
		UserRepository:    NewUserRepository(db),
		ChatRepository:    NewChatRepository(db),
		MessageRepository: NewMessageRepository(db),
		ConfigRepository:  NewConfigRepository(db),
		UsageRepository:   NewUsageRepository(db),
		db:                db,
	}
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

const uniqueViolation = "23505"

// mapWriteError turns unique violations into entities.ErrConflict.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return entities.ErrConflict
	}
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
