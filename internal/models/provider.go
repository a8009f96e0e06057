// internal/models/provider.go
package models

// Provider is a business listing. The funnel engine only reads providers;
// owners and admins mutate them elsewhere.
type Provider struct {
	ID          string              `json:"id" yaml:"id"`
	Category    string              `json:"category" yaml:"category"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Phone       string              `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string              `json:"email,omitempty" yaml:"email,omitempty"`
	Website     string              `json:"website,omitempty" yaml:"website,omitempty"`
	Address     string              `json:"address,omitempty" yaml:"address,omitempty"`
	Featured    bool                `json:"featured" yaml:"featured"`
	Rating      *float64            `json:"rating,omitempty" yaml:"rating,omitempty"`
	Attributes  map[string][]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// HasRating reports whether the provider carries a rating at all.
func (p Provider) HasRating() bool {
	return p.Rating != nil
}

// Attribute returns the values stored under key and whether the key exists.
func (p Provider) Attribute(key string) ([]string, bool) {
	vals, ok := p.Attributes[key]
	return vals, ok && len(vals) > 0
}

// HasAttributeValue reports whether the attribute under key contains value.
func (p Provider) HasAttributeValue(key, value string) bool {
	for _, v := range p.Attributes[key] {
		if v == value {
			return true
		}
	}
	return false
}

// ScoredProvider is one entry of a ranked result.
type ScoredProvider struct {
	Provider Provider `json:"provider"`
	Score    float64  `json:"score"`
}
