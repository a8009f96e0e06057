// internal/workers/funnel/score-providers/config.go
package scoreproviders

import "time"

type Config struct {
	Timeout time.Duration
	// MaxResults truncates the ranked list; 0 returns every match.
	MaxResults int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    15 * time.Second,
		MaxResults: 20,
	}
}
