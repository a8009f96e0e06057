package scoring

import (
	"math"
	"sync"

	"provider-funnel/internal/funnel/catalog"
	"provider-funnel/internal/models"
)

// Mode selects how a hard constraint compares an answer with a provider attribute.
type Mode int

const (
	// MustInclude requires the attribute to list the answer.
	MustInclude Mode = iota
	// AtMost requires the attribute's level on Scale to not exceed the answer's level.
	AtMost
)

// Constraint excludes providers outright.
type Constraint struct {
	Question  string
	Attribute string
	Mode      Mode
	Scale     []string
	// Any lists answers that impose nothing.
	Any []string
}

// Preference contributes Weight to the score when the provider's attribute
// lists the answer.
type Preference struct {
	Question  string
	Attribute string
	Weight    float64
	Any       []string
}

// Config is one category's scoring rules.
type Config struct {
	Constraints []Constraint
	Preferences []Preference
}

// Admits reports whether p passes every hard constraint implied by answers.
// An unanswered question imposes nothing; a provider without the attribute fails.
func (c Config) Admits(answers models.AnswerSet, p models.Provider) bool {
	for _, con := range c.Constraints {
		answer, ok := answers[con.Question]
		if !ok || contains(con.Any, answer) {
			continue
		}
		values, ok := p.Attribute(con.Attribute)
		if !ok {
			return false
		}
		switch con.Mode {
		case MustInclude:
			if !contains(values, answer) {
				return false
			}
		case AtMost:
			if !withinCeiling(con.Scale, values, answer) {
				return false
			}
		}
	}
	return true
}

// Match returns 100 × matched weight / answered weight, rounded to two
// decimals. With no answered preference the score is 0.
func (c Config) Match(answers models.AnswerSet, p models.Provider) float64 {
	var answered, matched float64
	for _, pref := range c.Preferences {
		answer, ok := answers[pref.Question]
		if !ok || contains(pref.Any, answer) {
			continue
		}
		answered += pref.Weight
		if p.HasAttributeValue(pref.Attribute, answer) {
			matched += pref.Weight
		}
	}
	if answered == 0 {
		return 0
	}
	return math.Round(10000*matched/answered) / 100
}

// withinCeiling holds when at least one of values sits at or below ceiling on
// scale. Values missing from the scale never qualify.
func withinCeiling(scale, values []string, ceiling string) bool {
	limit := indexOf(scale, ceiling)
	if limit < 0 {
		return false
	}
	for _, v := range values {
		if i := indexOf(scale, v); i >= 0 && i <= limit {
			return true
		}
	}
	return false
}

func indexOf(values []string, v string) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return -1
}

func contains(values []string, v string) bool {
	return indexOf(values, v) >= 0
}

var (
	configMu sync.RWMutex
	configs  = map[string]Config{
		catalog.RestaurantsCafes: restaurantsConfig,
		catalog.HomeServices:     homeConfig,
		catalog.HealthWellness:   healthConfig,
	}
)

// ConfigFor returns the scoring rules registered for a category.
func ConfigFor(categoryID string) (Config, error) {
	configMu.RLock()
	defer configMu.RUnlock()
	cfg, ok := configs[categoryID]
	if !ok {
		return Config{}, catalog.ErrUnknownCategory
	}
	return cfg, nil
}

// RegisterConfig installs scoring rules for a category, replacing any earlier ones.
func RegisterConfig(categoryID string, cfg Config) {
	configMu.Lock()
	defer configMu.Unlock()
	configs[categoryID] = cfg
}
