package config

import (
	"fmt"
	"reflect"
	"strings"

	"customer-merger/core/database"
	"customer-merger/core/lock"
	"customer-merger/core/logger"
	"customer-merger/core/reconcile"
	"customer-merger/core/server"
	"customer-merger/core/storage"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application, one section per
// component.
type Config struct {
	Server   server.Config    `mapstructure:"server"`
	Storage  storage.Config   `mapstructure:"storage"`
	Log      logger.Config    `mapstructure:"log"`
	Database database.Config  `mapstructure:"database"`
	Redis    lock.Config      `mapstructure:"redis"`
	Merge    reconcile.Config `mapstructure:"merge"`
}

// LoadConfig reads path/.env, then the environment, and validates the result.
// Environment keys are the upper-cased section and field joined by an
// underscore, e.g. MERGE_BATCH_SIZE for merge.batch_size.
func LoadConfig(path string) (*Config, error) {
	envPath := ".env"
	if path != "." {
		envPath = path + "/.env"
	}
	// Missing .env is normal in production.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	registerDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// registerDefaults walks the struct tags and sets every `default:` value.
// Keys without a default are registered too so AutomaticEnv can fill them.
func registerDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct {
			registerDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
