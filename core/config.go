package core

import (
	"fmt"
	"strings"
)

// Pagination limits encode platform rate and latency trade-offs; they are
// policy, not tuning knobs.
const (
	LatestVersionFetchLimit       = 10
	ReleaseNoteVersionFetchLimit  = 20
	VersionMatchFetchLimit        = 50
	LocalizationFetchLimit        = 200
	FilteredLocalizationLimit     = 1
	DefaultTokenExpirationSeconds = 600
	MaxTokenExpirationSeconds     = 1200
)

type AppStoreConfig struct {
	IssuerID   string `koanf:"issuer_id" mapstructure:"issuer_id"`
	KeyID      string `koanf:"key_id" mapstructure:"key_id"`
	PrivateKey string `koanf:"private_key" mapstructure:"private_key"`
}

func (c AppStoreConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.IssuerID) == "" {
		missing = append(missing, "issuer_id")
	}
	if strings.TrimSpace(c.KeyID) == "" {
		missing = append(missing, "key_id")
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		missing = append(missing, "private_key")
	}
	return missing
}

type PlayStoreConfig struct {
	PackageName string `koanf:"package_name" mapstructure:"package_name"`
	ClientEmail string `koanf:"client_email" mapstructure:"client_email"`
	PrivateKey  string `koanf:"private_key" mapstructure:"private_key"`
	TokenURL    string `koanf:"token_url" mapstructure:"token_url"`
}

func (c PlayStoreConfig) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.ClientEmail) == "" {
		missing = append(missing, "client_email")
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		missing = append(missing, "private_key")
	}
	return missing
}

type Config struct {
	ServiceName string          `koanf:"service_name" mapstructure:"service_name"`
	AppStore    AppStoreConfig  `koanf:"app_store" mapstructure:"app_store"`
	PlayStore   PlayStoreConfig `koanf:"play_store" mapstructure:"play_store"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "storesync",
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	return nil
}
