package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresOptions struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, opts PostgresOptions) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = opts.MaxConns
	config.MinConns = opts.MinConns
	config.MaxConnLifetime = opts.MaxConnLifetime
	config.MaxConnIdleTime = opts.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

// schema is applied in order; every statement is idempotent.
var schema = []struct {
	name string
	ddl  string
}{
	{"companies", `
		CREATE TABLE IF NOT EXISTS companies (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"users_company_idx", `CREATE INDEX IF NOT EXISTS users_company_idx ON users (company_id)`},
	{"chats", `
		CREATE TABLE IF NOT EXISTS chats (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			client_description TEXT,
			special_instructions TEXT,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"chats_user_idx", `CREATE INDEX IF NOT EXISTS chats_user_idx ON chats (user_id, created_at DESC)`},
	{"messages", `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			seq BIGSERIAL,
			content TEXT NOT NULL,
			role VARCHAR(20) NOT NULL CHECK (role IN ('client', 'manager')),
			is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
			chat_id UUID NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"messages_chat_idx", `CREATE INDEX IF NOT EXISTS messages_chat_idx ON messages (chat_id, created_at, seq)`},
	{"ai_configurations", `
		CREATE TABLE IF NOT EXISTS ai_configurations (
			id UUID PRIMARY KEY,
			client_description TEXT,
			special_instructions TEXT,
			company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			chat_id UUID REFERENCES chats(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	// One global row per company and one row per (company, chat).
	{"ai_configurations_key_idx", `
		CREATE UNIQUE INDEX IF NOT EXISTS ai_configurations_key_idx
		ON ai_configurations (company_id, (COALESCE(chat_id, '00000000-0000-0000-0000-000000000000'::uuid)))`},
	{"ai_usage", `
		CREATE TABLE IF NOT EXISTS ai_usage (
			company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			generations INT NOT NULL DEFAULT 0,
			revisions INT NOT NULL DEFAULT 0,
			failures INT NOT NULL DEFAULT 0,
			prompt_tokens BIGINT NOT NULL DEFAULT 0,
			completion_tokens BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (company_id, date)
		)`},
}

func (p *PostgresClient) Migrate(ctx context.Context) error {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, step := range schema {
		if _, err := tx.Exec(ctx, step.ddl); err != nil {
			return fmt.Errorf("create %s: %w", step.name, err)
		}
	}

	return tx.Commit(ctx)
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
