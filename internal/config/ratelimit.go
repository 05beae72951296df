package config

import "time"

// RateLimitConfig drives the Redis token bucket in front of the auth routes.
type RateLimitConfig struct {
	Enabled        bool          `env:"ENABLED" envDefault:"true"`
	Capacity       int           `env:"CAPACITY" envDefault:"20"`
	RefillTokens   int           `env:"REFILL_TOKENS" envDefault:"1"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"3s"`
	TTL            time.Duration `env:"TTL" envDefault:"10m"`
	KeyStrategy    string        `env:"KEY_STRATEGY" envDefault:"ip_route"`
	Prefix         string        `env:"PREFIX" envDefault:"rl"`
	Debug          bool          `env:"DEBUG" envDefault:"false"`
}

// Normalize clamps nonsensical values so the limiter script never divides
// by zero or expires a bucket before it can refill.
func (rl RateLimitConfig) Normalize() RateLimitConfig {
	if rl.Capacity < 1 { rl.Capacity = 1 }
	if rl.RefillTokens < 1 { rl.RefillTokens = 1 }
	if rl.RefillInterval <= 0 { rl.RefillInterval = time.Second }
	minTTL := 5 * rl.RefillInterval
	if rl.TTL < minTTL { rl.TTL = minTTL }
	if rl.Prefix == "" { rl.Prefix = "rl" }
	return rl
}
