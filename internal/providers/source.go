// Package providers supplies the provider records a category's results are
// ranked from. Sources return providers already filtered to the category, in
// a stable order.
package providers

import (
	"context"
	"fmt"
	"strings"

	"provider-funnel/internal/models"
)

// Source lists a category's providers.
type Source interface {
	Providers(ctx context.Context, category string) ([]models.Provider, error)
}

// splitValues parses a delimited attribute cell ("italian; cafe" or "a,b").
func splitValues(cell string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == ',' || r == '|' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func validate(p models.Provider) error {
	if p.ID == "" {
		return fmt.Errorf("provider without id (name %q)", p.Name)
	}
	if p.Category == "" {
		return fmt.Errorf("provider %s has no category", p.ID)
	}
	return nil
}
