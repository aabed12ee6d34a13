package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database     DatabaseConfig
	Provisioning ProvisioningConfig
	Directory    DirectoryConfig
	Engine       EngineConfig
	UI           UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ProvisioningConfig holds the panel login endpoint.
type ProvisioningConfig struct {
	URL string
}

// DirectoryConfig holds the remote contact directory endpoint.
type DirectoryConfig struct {
	URL string
}

// EngineConfig holds telephony engine settings.
type EngineConfig struct {
	Transport string // udp, tcp or tls
}

// UIConfig holds presentation settings. The pip key needs an explicit tag:
// viper matches field names case-insensitively, which never reaches
// "pip_enabled".
type UIConfig struct {
	Theme      string `mapstructure:"theme"` // accent variant: orange, yellow, green, blue, red, pink, purple
	PiPEnabled bool   `mapstructure:"pip_enabled"`
}

// Load reads configuration from file and env. Env var overrides use prefix SANTRAL_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "santral", "santral.db"))
	v.SetDefault("provisioning.url", "https://labeco.ttsanalsantral.com.tr/api_v1")
	v.SetDefault("directory.url", "https://panel.intouchtech.com.tr/api.php")
	v.SetDefault("engine.transport", "tls")
	v.SetDefault("ui.theme", "orange")
	v.SetDefault("ui.pip_enabled", true)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("SANTRAL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "santral"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("SANTRAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the settings screen for non-sensitive preferences; SIP
// credentials live in the secrets store, never here.
func Save(cfg Config) error {
	path := os.Getenv("SANTRAL_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "santral", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("provisioning.url", cfg.Provisioning.URL)
	v.Set("directory.url", cfg.Directory.URL)
	v.Set("engine.transport", cfg.Engine.Transport)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.pip_enabled", cfg.UI.PiPEnabled)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
