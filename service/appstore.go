package service

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-storesync/appstore"
	"github.com/goliatone/go-storesync/core"
)

const appStoreSubsystem = "app-store"

// AuthCheck is the decoded view of a freshly issued credential, used to
// confirm signing configuration without talking to the vendor.
type AuthCheck struct {
	Header    map[string]any
	Payload   map[string]any
	ExpiresAt int64
}

// AppStoreService wraps the App Store Connect client in result
// envelopes.
type AppStoreService struct {
	auth   core.AppStoreConfig
	client *appstore.Client
	logger core.Logger
}

type AppStoreServiceConfig struct {
	Auth core.AppStoreConfig
	// Transport overrides the authenticated session, for tests.
	Transport core.Transport
	BaseURL   string
	Logger    core.Logger
}

func NewAppStoreService(cfg AppStoreServiceConfig) (*AppStoreService, error) {
	transport := cfg.Transport
	if transport == nil {
		session, err := appstore.NewSession(appstore.SessionConfig{
			Auth:    cfg.Auth,
			BaseURL: cfg.BaseURL,
			Logger:  cfg.Logger,
		})
		if err != nil {
			return nil, err
		}
		transport = session
	}
	_, logger := glog.Resolve("storesync.appstore", nil, cfg.Logger)
	return &AppStoreService{
		auth:   cfg.Auth,
		client: appstore.NewClient(transport, cfg.Logger),
		logger: glog.Ensure(logger),
	}, nil
}

func (s *AppStoreService) Client() *appstore.Client {
	if s == nil {
		return nil
	}
	return s.client
}

// ready reports whether the service was wired with credentials. The
// facade leaves an unconfigured store's service nil, so every operation
// answers through the envelope instead of dereferencing a nil receiver.
func (s *AppStoreService) ready() error {
	if s == nil || s.client == nil {
		return core.NewAuthConfigMissingError(appStoreSubsystem)
	}
	return nil
}

// VerifyAuth issues a credential with the requested expiration and
// decodes it, proving the signing key and claims are usable.
func (s *AppStoreService) VerifyAuth(expirationSeconds int) core.ServiceResult[AuthCheck] {
	if err := s.ready(); err != nil {
		return core.Failure[AuthCheck](failureMessage(appStoreSubsystem, err))
	}
	credential, err := appstore.IssueCredential(s.auth, appstore.TokenOptions{
		ExpirationSeconds: expirationSeconds,
	})
	if err != nil {
		return core.Failure[AuthCheck](failureMessage(appStoreSubsystem, err))
	}
	decoded, err := appstore.DecodeToken(credential.Token)
	if err != nil {
		return core.Failure[AuthCheck](failureMessage(appStoreSubsystem, err))
	}
	return core.OK(AuthCheck{
		Header:    decoded.Header,
		Payload:   decoded.Payload,
		ExpiresAt: credential.ExpiresAt,
	})
}

func (s *AppStoreService) Pull(ctx context.Context, identifier string) core.ServiceResult[core.CanonicalMetadata] {
	if err := s.ready(); err != nil {
		return core.Failure[core.CanonicalMetadata](failureMessage(appStoreSubsystem, err))
	}
	metadata, err := s.client.PullMetadata(ctx, identifier)
	if err != nil {
		return core.Failure[core.CanonicalMetadata](failureMessage(appStoreSubsystem, err))
	}
	return core.OK(metadata)
}

// Push writes the metadata to the target locale and reports the locale
// written.
func (s *AppStoreService) Push(ctx context.Context, identifier string, metadata core.CanonicalMetadata) core.ServiceResult[string] {
	if err := s.ready(); err != nil {
		return core.Failure[string](failureMessage(appStoreSubsystem, err))
	}
	targetLocale := metadata.TargetLocale()
	if targetLocale == "" {
		targetLocale = core.DefaultLocale
	}
	if err := s.client.PushMetadata(ctx, identifier, metadata); err != nil {
		return core.Failure[string](failureMessage(appStoreSubsystem, err))
	}
	s.logger.Info("metadata pushed", "identifier", identifier, "locale", targetLocale)
	return core.OK(targetLocale)
}

func (s *AppStoreService) CreateVersion(ctx context.Context, identifier string, version string) core.ServiceResult[core.CreateVersionResult] {
	if err := s.ready(); err != nil {
		return core.Failure[core.CreateVersionResult](failureMessage(appStoreSubsystem, err))
	}
	result, err := s.client.CreateVersion(ctx, identifier, version)
	if err != nil {
		return core.Failure[core.CreateVersionResult](failureMessage(appStoreSubsystem, err))
	}
	return core.OK(result)
}

func (s *AppStoreService) PullReleaseNotes(ctx context.Context, identifier string) core.ServiceResult[[]core.ReleaseNote] {
	if err := s.ready(); err != nil {
		return core.Failure[[]core.ReleaseNote](failureMessage(appStoreSubsystem, err))
	}
	notes, err := s.client.PullReleaseNotes(ctx, identifier)
	if err != nil {
		return core.Failure[[]core.ReleaseNote](failureMessage(appStoreSubsystem, err))
	}
	return core.OK(notes)
}

// FetchAppInfo is a lookup: a missing app yields a clean not-found, any
// other failure carries a diagnostic.
func (s *AppStoreService) FetchAppInfo(ctx context.Context, bundleID string) core.MaybeResult[core.AppInfo] {
	if err := s.ready(); err != nil {
		return core.NotFoundBecause[core.AppInfo](err)
	}
	info, err := s.client.AppInfo(ctx, bundleID)
	if err != nil {
		if isNotFound(err) {
			return core.NotFound[core.AppInfo]()
		}
		return core.NotFoundBecause[core.AppInfo](core.MapError(err))
	}
	return core.Found(info)
}

func (s *AppStoreService) LatestVersionSummary(ctx context.Context, identifier string) core.ServiceResult[string] {
	if err := s.ready(); err != nil {
		return core.Failure[string](failureMessage(appStoreSubsystem, err))
	}
	summary, err := s.client.LatestVersionSummary(ctx, identifier)
	if err != nil {
		return core.Failure[string](failureMessage(appStoreSubsystem, err))
	}
	return core.OK(summary)
}
