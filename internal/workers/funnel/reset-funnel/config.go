// internal/workers/funnel/reset-funnel/config.go
package resetfunnel

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
