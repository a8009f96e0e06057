// internal/workers/funnel/load-funnel/config.go
package loadfunnel

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
