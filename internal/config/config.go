// Package config loads the environment-variable-driven configuration
// shared by cmd/apiserver and cmd/worker (spec §6.4).
package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/taskflow/core/internal/broker"
)

// Config is the fully resolved, clamped configuration for either binary.
type Config struct {
	DatabaseURL string

	Rabbit broker.Config

	DueScanIntervalSeconds int
	DueScanBatchSize       int

	CORSAllowedOrigins []string
	HTTPAddr           string
}

// Load reads configuration from environment variables, applying the
// defaults and clamps of spec §6.4.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("rabbitmq_host", "localhost")
	v.SetDefault("rabbitmq_username", "guest")
	v.SetDefault("rabbitmq_password", "guest")
	v.SetDefault("due_scan_interval_seconds", 15)
	v.SetDefault("due_scan_batch_size", 50)
	v.SetDefault("http_addr", ":8080")

	dbURL := v.GetString("connection_strings_default_connection")
	if dbURL == "" {
		return nil, fmt.Errorf("CONNECTION_STRINGS_DEFAULT_CONNECTION is required")
	}

	interval := v.GetInt("due_scan_interval_seconds")
	if interval < 5 {
		log.Warn().Int("requested", interval).Msg("DUE_SCAN_INTERVAL_SECONDS below minimum, clamping to 5")
		interval = 5
	}

	batch := v.GetInt("due_scan_batch_size")
	if batch > 1000 {
		log.Warn().Int("requested", batch).Msg("DUE_SCAN_BATCH_SIZE above maximum, clamping to 1000")
		batch = 1000
	}

	var origins []string
	if raw := v.GetString("cors_allowed_origins"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		DatabaseURL: dbURL,
		Rabbit: broker.Config{
			Host:     v.GetString("rabbitmq_host"),
			Username: v.GetString("rabbitmq_username"),
			Password: v.GetString("rabbitmq_password"),
		},
		DueScanIntervalSeconds: interval,
		DueScanBatchSize:       batch,
		CORSAllowedOrigins:     origins,
		HTTPAddr:               v.GetString("http_addr"),
	}, nil
}
