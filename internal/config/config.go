package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix       = "MERGELIST"
	defaultLogLevel = "info"
)

var knownLogLevels = map[string]struct{}{
	"debug":   {},
	"info":    {},
	"warn":    {},
	"warning": {},
	"error":   {},
}

// AppConfig captures runtime configuration for the replay harness.
type AppConfig struct {
	ScriptPath string
	LogLevel   string
	Verbose    bool
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("script.path", "")
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("output.verbose", false)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		ScriptPath: configViper.GetString("script.path"),
		LogLevel:   configViper.GetString("log.level"),
		Verbose:    configViper.GetBool("output.verbose"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if level == "" {
		return fmt.Errorf("log.level is required")
	}
	if _, ok := knownLogLevels[level]; !ok {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}
