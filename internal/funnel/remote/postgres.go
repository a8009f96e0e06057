package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"provider-funnel/internal/common/database"
	"provider-funnel/internal/models"
)

const (
	upsertUserFunnel = `
		INSERT INTO user_funnels (user_id, category, answers, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, category)
		DO UPDATE SET answers = EXCLUDED.answers, updated_at = EXCLUDED.updated_at`

	selectUserFunnel = `
		SELECT answers FROM user_funnels
		WHERE user_id = $1 AND category = $2`
)

// PostgresPersister keeps one row per (user, category) in user_funnels.
// Concurrent writers race; the last one wins.
type PostgresPersister struct {
	db *database.PostgresClient
}

func NewPostgresPersister(db *database.PostgresClient) *PostgresPersister {
	return &PostgresPersister{db: db}
}

func (p *PostgresPersister) Persist(ctx context.Context, userID, category string, answers models.AnswerSet) error {
	payload, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	if _, err := p.db.Exec(ctx, upsertUserFunnel, userID, category, payload); err != nil {
		return fmt.Errorf("upsert user funnel: %w", err)
	}
	return nil
}

// Fetch returns the remote copy for a user and category. The boolean is false
// when no row exists.
func (p *PostgresPersister) Fetch(ctx context.Context, userID, category string) (models.AnswerSet, bool, error) {
	var payload []byte
	err := p.db.QueryRow(ctx, selectUserFunnel, userID, category).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select user funnel: %w", err)
	}

	answers := models.AnswerSet{}
	if err := json.Unmarshal(payload, &answers); err != nil {
		return nil, false, fmt.Errorf("decode user funnel: %w", err)
	}
	return answers, true, nil
}
