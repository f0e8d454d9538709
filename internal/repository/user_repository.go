package repository

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, name, company_id, is_active, is_superuser, created_at, updated_at"

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.CompanyID,
		&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if isNoRows(err) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, u *entities.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.db.Exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		u.ID, u.Email, u.PasswordHash, u.Name, u.CompanyID, u.IsActive, u.IsSuperuser, u.CreatedAt, u.UpdatedAt)
	return mapWriteError(err)
}

func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

// ListUsers returns every user, or the users of one company when companyID is set
func (r *UserRepository) ListUsers(ctx context.Context, companyID *uuid.UUID) ([]entities.User, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE $1::uuid IS NULL OR company_id = $1 ORDER BY created_at",
		nullUUID(companyID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []entities.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uuid.UUID, patch entities.UserPatch) (*entities.User, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE users SET
			email = COALESCE($2, email),
			name = COALESCE($3, name),
			password_hash = COALESCE($4, password_hash),
			is_active = COALESCE($5, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, patch.Email, patch.Name, patch.PasswordHash, patch.IsActive)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return u, nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
