package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/deskclock/deskclock-go/pkg/ringer"
	"github.com/deskclock/deskclock-go/pkg/timer"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DESKCLOCK"

// Load reads the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range Default().settings() {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its field constraints.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.RegisterValidation("timersort", func(fl validator.FieldLevel) bool {
		_, err := timer.ParseSort(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("autosilence", func(fl validator.FieldLevel) bool {
		_, err := ringer.ParseAutoSilence(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	if err := v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// Write renders cfg as YAML to path.
func Write(path string, cfg Config) error {
	doc := make(map[string]any)
	for key, value := range cfg.settings() {
		section, name, _ := strings.Cut(key, ".")
		m, ok := doc[section].(map[string]any)
		if !ok {
			m = make(map[string]any)
			doc[section] = m
		}
		m[name] = value
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
