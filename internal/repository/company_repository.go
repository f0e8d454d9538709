package repository

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, c *entities.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := r.db.Exec(ctx,
		"INSERT INTO companies (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)",
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt)
	return mapWriteError(err)
}

func (r *CompanyRepository) GetCompany(ctx context.Context, id uuid.UUID) (*entities.Company, error) {
	var c entities.Company
	err := r.db.QueryRow(ctx,
		"SELECT id, name, created_at, updated_at FROM companies WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]entities.Company, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, created_at, updated_at FROM companies ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []entities.Company{}
	for rows.Next() {
		var c entities.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) RenameCompany(ctx context.Context, id uuid.UUID, name string) (*entities.Company, error) {
	var c entities.Company
	err := r.db.QueryRow(ctx, `
		UPDATE companies SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) DeleteCompany(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM companies WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetStats returns platform-wide counters for the admin dashboard
func (r *CompanyRepository) GetStats(ctx context.Context) (*entities.CompanyStats, error) {
	var s entities.CompanyStats
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM chats),
			(SELECT COUNT(*) FROM messages)
	`).Scan(&s.TotalCompanies, &s.TotalUsers, &s.ActiveUsers, &s.TotalChats, &s.TotalMessages)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
