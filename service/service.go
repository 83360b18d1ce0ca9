// Package service is the envelope boundary of the engine. Operations
// return ServiceResult or MaybeResult values; expected failures travel
// inside the envelope with a subsystem-prefixed message, and Go errors
// never cross this boundary.
package service

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-storesync/core"
	"github.com/goliatone/go-storesync/locale"
	"github.com/goliatone/go-storesync/registry"
)

// Service bundles both store services with the registered-app registry
// that feeds the locale distribution engine.
type Service struct {
	AppStore   *AppStoreService
	GooglePlay *GooglePlayService

	registry registry.Store
	logger   core.Logger
}

type Config struct {
	AppStore   *AppStoreService
	GooglePlay *GooglePlayService
	Registry   registry.Store
	Logger     core.Logger
}

func New(cfg Config) *Service {
	reg := cfg.Registry
	if reg == nil {
		reg = registry.NewMemoryStore()
	}
	_, logger := glog.Resolve("storesync.service", nil, cfg.Logger)
	return &Service{
		AppStore:   cfg.AppStore,
		GooglePlay: cfg.GooglePlay,
		registry:   reg,
		logger:     glog.Ensure(logger),
	}
}

func (s *Service) Registry() registry.Store {
	if s == nil {
		return nil
	}
	return s.registry
}

// SupportedLocales reports the registered locales for an app, kept per
// store for the stores the selector matches.
func (s *Service) SupportedLocales(ctx context.Context, identifier string, store core.StoreKind) core.ServiceResult[locale.SupportedLocales] {
	app, result := s.lookupApp(ctx, identifier)
	if result != nil {
		return core.Failure[locale.SupportedLocales](result.Error)
	}
	return core.OK(locale.CollectSupportedLocales(app, store))
}

// TranslationRequests builds the per-store translation requests for a
// single source text.
func (s *Service) TranslationRequests(ctx context.Context, identifier string, sourceText string, sourceLocale string, store core.StoreKind) core.ServiceResult[[]locale.TranslationRequest] {
	app, result := s.lookupApp(ctx, identifier)
	if result != nil {
		return core.Failure[[]locale.TranslationRequest](result.Error)
	}
	return core.OK(locale.CreateTranslationRequests(app, sourceText, sourceLocale, store))
}

// SeparateTranslations projects a locale-to-text map onto each store's
// registered locale set.
func (s *Service) SeparateTranslations(ctx context.Context, identifier string, translations map[string]string, sourceLocale string, store core.StoreKind) core.ServiceResult[locale.StoreTranslations] {
	app, result := s.lookupApp(ctx, identifier)
	if result != nil {
		return core.Failure[locale.StoreTranslations](result.Error)
	}
	return core.OK(locale.SeparateTranslationsByStore(translations, app, sourceLocale, store))
}

func (s *Service) lookupApp(ctx context.Context, identifier string) (core.RegisteredApp, *core.ServiceResult[core.RegisteredApp]) {
	app, found, err := s.registry.Get(ctx, identifier)
	if err != nil {
		failure := core.Failure[core.RegisteredApp](failureMessage("registry", err))
		return core.RegisteredApp{}, &failure
	}
	if !found {
		failure := core.Failure[core.RegisteredApp]("registry: app " + identifier + " is not registered")
		return core.RegisteredApp{}, &failure
	}
	return app, nil
}

// failureMessage renders an error for the envelope: mapped to the
// storesync taxonomy and prefixed with the failing subsystem unless the
// message already names it.
func failureMessage(subsystem string, err error) string {
	mapped := core.MapError(err)
	if mapped == nil {
		return subsystem + ": unknown error"
	}
	message := strings.TrimSpace(mapped.Message)
	if message == "" {
		message = mapped.Error()
	}
	if strings.HasPrefix(message, subsystem+":") || strings.HasPrefix(message, subsystem+" ") {
		return message
	}
	return subsystem + ": " + message
}

func isNotFound(err error) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.Category == goerrors.CategoryNotFound
}
