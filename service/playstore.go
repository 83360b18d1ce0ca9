package service

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-storesync/core"
	"github.com/goliatone/go-storesync/playstore"
)

const playStoreSubsystem = "play-store"

// GooglePlayService wraps the Android Publisher client in result
// envelopes.
type GooglePlayService struct {
	client *playstore.Client
	logger core.Logger
}

type GooglePlayServiceConfig struct {
	Auth       core.PlayStoreConfig
	BaseURL    string
	HTTPClient playstore.HTTPDoer
	Logger     core.Logger
	Now        func() int64
}

func NewGooglePlayService(cfg GooglePlayServiceConfig) (*GooglePlayService, error) {
	client, err := playstore.NewClient(playstore.ClientConfig{
		Auth:       cfg.Auth,
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
		Now:        cfg.Now,
	})
	if err != nil {
		return nil, err
	}
	_, logger := glog.Resolve("storesync.playstore", nil, cfg.Logger)
	return &GooglePlayService{
		client: client,
		logger: glog.Ensure(logger),
	}, nil
}

func (s *GooglePlayService) Client() *playstore.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// ready reports whether the service was wired with credentials. The
// facade leaves an unconfigured store's service nil, so every operation
// answers through the envelope instead of dereferencing a nil receiver.
func (s *GooglePlayService) ready() error {
	if s == nil || s.client == nil {
		return core.NewAuthConfigMissingError(playStoreSubsystem)
	}
	return nil
}

// VerifyAppAccess confirms the service account can read the configured
// package.
func (s *GooglePlayService) VerifyAppAccess(ctx context.Context) core.MaybeResult[core.AppInfo] {
	if err := s.ready(); err != nil {
		return core.NotFoundBecause[core.AppInfo](err)
	}
	info, err := s.client.VerifyAppAccess(ctx)
	if err != nil {
		if isNotFound(err) {
			return core.NotFound[core.AppInfo]()
		}
		return core.NotFoundBecause[core.AppInfo](core.MapError(err))
	}
	return core.Found(info)
}

// Push writes the localized listings and reports the locales written.
func (s *GooglePlayService) Push(ctx context.Context, metadata core.CanonicalMetadata) core.ServiceResult[[]string] {
	if err := s.ready(); err != nil {
		return core.Failure[[]string](failureMessage(playStoreSubsystem, err))
	}
	written, err := s.client.PushMetadata(ctx, metadata)
	if err != nil {
		return core.Failure[[]string](failureMessage(playStoreSubsystem, err))
	}
	s.logger.Info("listings pushed", "package", s.client.PackageName(), "locales", written)
	return core.OK(written)
}

func (s *GooglePlayService) PullReleaseNotes(ctx context.Context) core.ServiceResult[[]core.ReleaseNote] {
	if err := s.ready(); err != nil {
		return core.Failure[[]core.ReleaseNote](failureMessage(playStoreSubsystem, err))
	}
	notes, err := s.client.PullReleaseNotes(ctx)
	if err != nil {
		return core.Failure[[]core.ReleaseNote](failureMessage(playStoreSubsystem, err))
	}
	return core.OK(notes)
}

func (s *GooglePlayService) LatestVersionSummary(ctx context.Context) core.ServiceResult[string] {
	if err := s.ready(); err != nil {
		return core.Failure[string](failureMessage(playStoreSubsystem, err))
	}
	summary, err := s.client.LatestVersionSummary(ctx)
	if err != nil {
		return core.Failure[string](failureMessage(playStoreSubsystem, err))
	}
	return core.OK(summary)
}
