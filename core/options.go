package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver merges configuration layers with fixed precedence:
// defaults < loaded config < runtime overrides.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	appStore := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.AppStore.IssuerID) != "" {
		appStore["issuer_id"] = cfg.AppStore.IssuerID
	}
	if includeZero || strings.TrimSpace(cfg.AppStore.KeyID) != "" {
		appStore["key_id"] = cfg.AppStore.KeyID
	}
	if includeZero || strings.TrimSpace(cfg.AppStore.PrivateKey) != "" {
		appStore["private_key"] = cfg.AppStore.PrivateKey
	}
	if len(appStore) > 0 {
		layer["app_store"] = appStore
	}
	playStore := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.PlayStore.PackageName) != "" {
		playStore["package_name"] = cfg.PlayStore.PackageName
	}
	if includeZero || strings.TrimSpace(cfg.PlayStore.ClientEmail) != "" {
		playStore["client_email"] = cfg.PlayStore.ClientEmail
	}
	if includeZero || strings.TrimSpace(cfg.PlayStore.PrivateKey) != "" {
		playStore["private_key"] = cfg.PlayStore.PrivateKey
	}
	if includeZero || strings.TrimSpace(cfg.PlayStore.TokenURL) != "" {
		playStore["token_url"] = cfg.PlayStore.TokenURL
	}
	if len(playStore) > 0 {
		layer["play_store"] = playStore
	}
	return layer
}
