package lock

import "time"

// Config holds configuration for the Redis-backed run lock.
type Config struct {
	// Addr is the Redis address. Empty disables distributed locking.
	Addr string `mapstructure:"addr" default:""`
	// Password authenticates against Redis.
	Password string `mapstructure:"password" default:""`
	// DB selects the Redis logical database.
	DB int `mapstructure:"db" default:"0" validate:"min=0"`
	// KeyPrefix is prepended to every lock key.
	KeyPrefix string `mapstructure:"key_prefix" default:"customer-merger:lock:"`
	// TTL bounds how long a crashed holder keeps the lock.
	TTL time.Duration `mapstructure:"ttl" default:"10m" validate:"min=1s"`
}
