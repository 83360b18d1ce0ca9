package appstore

import (
	"context"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-storesync/core"
)

const (
	resourceTypeVersions      = "appStoreVersions"
	resourceTypeLocalizations = "appStoreVersionLocalizations"
	resourceTypeApps          = "apps"
)

// Client orchestrates metadata pulls and pushes against App Store
// Connect. It resolves app, version, and localization fresh on every
// operation; the only state it shares with anything is the credential
// cache inside the transport session.
type Client struct {
	transport core.Transport
	locator   *Locator
	logger    core.Logger
}

func NewClient(transport core.Transport, logger core.Logger) *Client {
	_, resolved := glog.Resolve("appstore.client", nil, logger)
	return &Client{
		transport: transport,
		locator:   NewLocator(transport),
		logger:    glog.Ensure(resolved),
	}
}

func (c *Client) Locator() *Locator {
	return c.locator
}

// PullMetadata reads app attributes plus the latest version's
// localization for the app's primary locale into the canonical shape.
// This is a single-locale pull; the localization's promotional text wins
// over the app-level subtitle when both exist.
func (c *Client) PullMetadata(ctx context.Context, identifier string) (core.CanonicalMetadata, error) {
	appID, err := c.locator.EnsureAppID(ctx, identifier)
	if err != nil {
		return core.CanonicalMetadata{}, err
	}

	app, err := c.locator.GetApp(ctx, appID)
	if err != nil {
		return core.CanonicalMetadata{}, err
	}
	primaryLocale := app.Attributes.PrimaryLocale
	if strings.TrimSpace(primaryLocale) == "" {
		primaryLocale = core.DefaultLocale
	}

	latest, hasVersion, err := c.locator.LatestVersion(ctx, appID)
	if err != nil {
		return core.CanonicalMetadata{}, err
	}

	var localization core.LocalizationRecord
	var hasLocalization bool
	if hasVersion {
		localization, hasLocalization, err = c.locator.LocalizationForLocale(ctx, latest.ID, primaryLocale)
		if err != nil {
			return core.CanonicalMetadata{}, err
		}
	}

	metadata := core.CanonicalMetadata{
		Name: core.SingleLocale(primaryLocale, app.Attributes.Name),
		Raw: map[string]any{
			"app": app,
		},
	}
	if hasVersion {
		metadata.Raw["version"] = latest
	}
	if hasLocalization {
		metadata.Raw["localization"] = localization
		metadata.Description = core.SingleLocale(primaryLocale, deref(localization.Description))
		metadata.Keywords = core.SingleLocale(primaryLocale, deref(localization.Keywords))
		metadata.SupportURL = core.SingleLocale(primaryLocale, deref(localization.SupportURL))
		metadata.MarketingURL = core.SingleLocale(primaryLocale, deref(localization.MarketingURL))
		metadata.WhatsNew = core.SingleLocale(primaryLocale, deref(localization.WhatsNew))
	}

	subtitle := app.Attributes.Subtitle
	if hasLocalization && deref(localization.PromotionalText) != "" {
		subtitle = deref(localization.PromotionalText)
	}
	metadata.Subtitle = core.SingleLocale(primaryLocale, subtitle)

	return metadata, nil
}

// PushMetadata writes a canonical metadata object back: it patches the
// existing localization for the target locale when one exists, sending
// only the provided attributes, and otherwise creates a new localization
// linked to the latest version. Safe to retry; the create-or-patch
// decision is re-derived from a fresh lookup every call.
func (c *Client) PushMetadata(ctx context.Context, identifier string, metadata core.CanonicalMetadata) error {
	appID, err := c.locator.EnsureAppID(ctx, identifier)
	if err != nil {
		return err
	}

	targetLocale := metadata.TargetLocale()
	if targetLocale == "" {
		targetLocale = core.DefaultLocale
	}

	latest, hasVersion, err := c.locator.LatestVersion(ctx, appID)
	if err != nil {
		return err
	}
	if !hasVersion {
		return core.NewNoVersionError("app-store", appID)
	}

	attributes := metadata.AttributesForLocale(targetLocale)

	existing, found, err := c.locator.LocalizationForLocale(ctx, latest.ID, targetLocale)
	if err != nil {
		return err
	}

	if found {
		c.logger.Info("patching localization",
			"app_id", appID,
			"version_id", latest.ID,
			"locale", targetLocale,
		)
		return c.transport.Patch(ctx, "v1/appStoreVersionLocalizations/"+existing.ID, localizationPatchRequest{
			Data: localizationPatchData{
				Type:       resourceTypeLocalizations,
				ID:         existing.ID,
				Attributes: toSchemaAttributes("", attributes),
			},
		})
	}

	c.logger.Info("creating localization",
		"app_id", appID,
		"version_id", latest.ID,
		"locale", targetLocale,
	)
	var created localizationsResponse
	return c.transport.Post(ctx, "v1/appStoreVersionLocalizations", localizationCreateRequest{
		Data: localizationCreateData{
			Type:       resourceTypeLocalizations,
			Attributes: toSchemaAttributes(targetLocale, attributes),
			Relationships: map[string]relationship{
				"appStoreVersion": {
					Data: relationshipData{
						Type: resourceTypeVersions,
						ID:   latest.ID,
					},
				},
			},
		},
	}, &created)
}

// CreateVersion is idempotent: an existing version with the same version
// string is returned without a create call.
func (c *Client) CreateVersion(ctx context.Context, identifier string, version string) (core.CreateVersionResult, error) {
	appID, err := c.locator.EnsureAppID(ctx, identifier)
	if err != nil {
		return core.CreateVersionResult{}, err
	}

	existing, found, err := c.locator.VersionByString(ctx, appID, version)
	if err != nil {
		return core.CreateVersionResult{}, err
	}
	if found {
		return core.CreateVersionResult{Version: version, Raw: existing}, nil
	}

	var created versionResponse
	err = c.transport.Post(ctx, "v1/appStoreVersions", versionCreateRequest{
		Data: versionCreateData{
			Type: resourceTypeVersions,
			Attributes: versionAttributes{
				Platform:      Platform,
				VersionString: version,
			},
			Relationships: map[string]relationship{
				"app": {
					Data: relationshipData{
						Type: resourceTypeApps,
						ID:   appID,
					},
				},
			},
		},
	}, &created)
	if err != nil {
		return core.CreateVersionResult{}, err
	}
	return core.CreateVersionResult{Version: version, Raw: created.Data}, nil
}

// PullReleaseNotes walks recent versions and collects every localized
// "what's new" entry. The result is flat and may repeat a locale across
// versions; ordering follows version-fetch order.
func (c *Client) PullReleaseNotes(ctx context.Context, identifier string) ([]core.ReleaseNote, error) {
	appID, err := c.locator.EnsureAppID(ctx, identifier)
	if err != nil {
		return nil, err
	}

	versions, err := c.locator.ListVersions(ctx, appID, core.ReleaseNoteVersionFetchLimit)
	if err != nil {
		return nil, err
	}

	var notes []core.ReleaseNote
	for _, version := range versions {
		localizations, err := c.locator.ListLocalizations(ctx, version.ID)
		if err != nil {
			return nil, err
		}
		for _, localization := range localizations {
			text := deref(localization.WhatsNew)
			if localization.Locale == "" || text == "" {
				continue
			}
			notes = append(notes, core.ReleaseNote{
				Version: version.VersionString,
				Locale:  localization.Locale,
				Text:    text,
			})
		}
	}
	return notes, nil
}

// AppInfo resolves a bundle identifier to its app id, display name, and
// the set of locales the latest version is localized into.
func (c *Client) AppInfo(ctx context.Context, bundleID string) (core.AppInfo, error) {
	appID, err := c.locator.EnsureAppID(ctx, bundleID)
	if err != nil {
		return core.AppInfo{}, err
	}
	app, err := c.locator.GetApp(ctx, appID)
	if err != nil {
		return core.AppInfo{}, err
	}

	info := core.AppInfo{
		Store:    core.StoreKindAppStore,
		AppID:    appID,
		BundleID: app.Attributes.BundleID,
		Name:     app.Attributes.Name,
	}

	latest, hasVersion, err := c.locator.LatestVersion(ctx, appID)
	if err != nil {
		return core.AppInfo{}, err
	}
	if hasVersion {
		localizations, err := c.locator.ListLocalizations(ctx, latest.ID)
		if err != nil {
			return core.AppInfo{}, err
		}
		for _, localization := range localizations {
			if localization.Locale != "" {
				info.SupportedLocales = append(info.SupportedLocales, localization.Locale)
			}
		}
	}
	return info, nil
}

// LatestVersionSummary renders a short human-readable line describing
// the store's newest version, for status reporting.
func (c *Client) LatestVersionSummary(ctx context.Context, identifier string) (string, error) {
	appID, err := c.locator.EnsureAppID(ctx, identifier)
	if err != nil {
		return "", err
	}
	latest, hasVersion, err := c.locator.LatestVersion(ctx, appID)
	if err != nil {
		return "", err
	}
	if !hasVersion {
		return "App Store: no version found (can create first version)", nil
	}
	return "App Store: " + latest.VersionString, nil
}

func toSchemaAttributes(locale string, attrs core.LocalizationAttributes) localizationAttributes {
	return localizationAttributes{
		Locale:          locale,
		Description:     attrs.Description,
		Keywords:        attrs.Keywords,
		PromotionalText: attrs.PromotionalText,
		SupportURL:      attrs.SupportURL,
		MarketingURL:    attrs.MarketingURL,
		WhatsNew:        attrs.WhatsNew,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
