package providers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"provider-funnel/internal/common/database"
	"provider-funnel/internal/models"
)

const selectProviders = `
	SELECT id, category, name, description, phone, email, website, address,
	       featured, rating, attributes
	FROM providers
	WHERE category = $1 AND active = TRUE
	ORDER BY position, id`

// PostgresSource reads the providers table.
type PostgresSource struct {
	db *database.PostgresClient
}

func NewPostgresSource(db *database.PostgresClient) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Providers(ctx context.Context, category string) ([]models.Provider, error) {
	rows, err := s.db.Query(ctx, selectProviders, category)
	if err != nil {
		return nil, fmt.Errorf("query providers: %w", err)
	}
	defer rows.Close()

	out := []models.Provider{}
	for rows.Next() {
		var (
			p      models.Provider
			rating sql.NullFloat64
			attrs  []byte
		)
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.Description, &p.Phone, &p.Email,
			&p.Website, &p.Address, &p.Featured, &rating, &attrs); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		if rating.Valid {
			v := rating.Float64
			p.Rating = &v
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
				return nil, fmt.Errorf("decode attributes of provider %s: %w", p.ID, err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return out, nil
}
