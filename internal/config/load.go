package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load reads the diagnostic-engine section of the active viper instance
// into a Config, starting from Default() so unset keys keep their
// built-in values, then validates the result.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if v == nil {
		return cfg, cfg.Validate()
	}
	if !v.IsSet("engine") {
		return cfg, cfg.Validate()
	}
	sub := v.Sub("engine")
	if sub == nil {
		return cfg, cfg.Validate()
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding engine section: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
