package repository

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsageRepository struct {
	db *pgxpool.Pool
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordUsage adds one model call to the company's counters for the event day
func (r *UsageRepository) RecordUsage(ctx context.Context, ev entities.UsageEvent) error {
	var generations, revisions, failures int
	switch {
	case ev.Failed:
		failures = 1
	case ev.Kind == "revision":
		revisions = 1
	default:
		generations = 1
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO ai_usage (company_id, date, generations, revisions, failures, prompt_tokens, completion_tokens)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, date)
		DO UPDATE SET
			generations = ai_usage.generations + EXCLUDED.generations,
			revisions = ai_usage.revisions + EXCLUDED.revisions,
			failures = ai_usage.failures + EXCLUDED.failures,
			prompt_tokens = ai_usage.prompt_tokens + EXCLUDED.prompt_tokens,
			completion_tokens = ai_usage.completion_tokens + EXCLUDED.completion_tokens
	`, ev.CompanyID, startOfDay(ev.At), generations, revisions, failures, ev.PromptTokens, ev.CompletionTokens)
	return err
}

// UsageHistory returns daily usage since the given day, oldest first
func (r *UsageRepository) UsageHistory(ctx context.Context, companyID uuid.UUID, since time.Time) ([]entities.DailyUsage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date, generations, revisions, failures, prompt_tokens, completion_tokens
		FROM ai_usage
		WHERE company_id = $1 AND date >= $2
		ORDER BY date ASC
	`, companyID, startOfDay(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	usage := []entities.DailyUsage{}
	for rows.Next() {
		var u entities.DailyUsage
		if err := rows.Scan(&u.Date, &u.Generations, &u.Revisions, &u.Failures, &u.PromptTokens, &u.CompletionTokens); err != nil {
			return nil, err
		}
		usage = append(usage, u)
	}
	return usage, rows.Err()
}
