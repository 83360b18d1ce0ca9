// Package storesync synchronizes app-listing metadata across App Store
// Connect and Google Play: pull and push of localized listing fields,
// idempotent version creation, release-note collection, and locale
// distribution driven by a registered-app registry.
package storesync

import (
	"fmt"

	"github.com/goliatone/go-storesync/core"
	"github.com/goliatone/go-storesync/registry"
	"github.com/goliatone/go-storesync/service"
)

// Re-exported domain types so most callers only import this package.
type (
	Config          = core.Config
	AppStoreConfig  = core.AppStoreConfig
	PlayStoreConfig = core.PlayStoreConfig

	CanonicalMetadata = core.CanonicalMetadata
	RegisteredApp     = core.RegisteredApp
	StoreListing      = core.StoreListing
	AppInfo           = core.AppInfo
	ReleaseNote       = core.ReleaseNote
	StoreKind         = core.StoreKind
)

const (
	StoreKindAppStore   = core.StoreKindAppStore
	StoreKindGooglePlay = core.StoreKindGooglePlay
	StoreKindBoth       = core.StoreKindBoth

	DefaultLocale = core.DefaultLocale
)

type Option func(*options)

type options struct {
	registry registry.Store
	logger   core.Logger
}

func WithRegistry(store registry.Store) Option {
	return func(o *options) {
		o.registry = store
	}
}

func WithLogger(logger core.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New wires a Service from configuration. Each store service is built
// only when its credentials are configured; an app registered for a
// single store works with a single-store configuration.
func New(cfg Config, opts ...Option) (*service.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	resolved := options{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&resolved)
	}

	var appStore *service.AppStoreService
	if len(cfg.AppStore.Missing()) == 0 {
		built, err := service.NewAppStoreService(service.AppStoreServiceConfig{
			Auth:   cfg.AppStore,
			Logger: resolved.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("storesync: build app store service: %w", err)
		}
		appStore = built
	}

	var googlePlay *service.GooglePlayService
	if len(cfg.PlayStore.Missing()) == 0 {
		built, err := service.NewGooglePlayService(service.GooglePlayServiceConfig{
			Auth:   cfg.PlayStore,
			Logger: resolved.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("storesync: build google play service: %w", err)
		}
		googlePlay = built
	}

	return service.New(service.Config{
		AppStore:   appStore,
		GooglePlay: googlePlay,
		Registry:   resolved.registry,
		Logger:     resolved.logger,
	}), nil
}
