package appstore

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storesync/core"
)

// Platform is the fixed platform filter applied to every version fetch.
const Platform = "IOS"

// storeURLAppIDPattern matches the numeric id embedded in store URLs,
// e.g. https://apps.apple.com/us/app/app-name/id1234567890.
var storeURLAppIDPattern = regexp.MustCompile(`id(\d{6,})`)

var numericPattern = regexp.MustCompile(`^\d+$`)

// Locator resolves human-supplied app identifiers to store-internal ids
// and locates the mutable version and localization targets for a write.
// Results are never cached across calls; every top-level operation
// resolves fresh so concurrent external edits cannot go stale.
type Locator struct {
	transport core.Transport
}

func NewLocator(transport core.Transport) *Locator {
	return &Locator{transport: transport}
}

// ExtractAppID resolves a store URL or bundle identifier to an app id.
// A URL-embedded numeric id is returned without any network call. An
// input containing a dot is treated as a bundle identifier and looked
// up; anything else reports not found.
func (l *Locator) ExtractAppID(ctx context.Context, input string) (string, bool, error) {
	trimmed := strings.TrimSpace(input)
	if match := storeURLAppIDPattern.FindStringSubmatch(trimmed); match != nil {
		return match[1], true, nil
	}
	if strings.Contains(trimmed, ".") {
		appID, err := l.findAppIDByBundleID(ctx, trimmed)
		if err != nil {
			return "", false, err
		}
		if appID == "" {
			return "", false, nil
		}
		return appID, true, nil
	}
	return "", false, nil
}

// EnsureAppID resolves an identifier that must exist: a purely numeric
// input short-circuits, everything else goes through a bundle-id lookup
// and fails with an app-not-found error when nothing matches.
func (l *Locator) EnsureAppID(ctx context.Context, identifier string) (string, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return "", goerrors.New("appstore: app identifier is required", goerrors.CategoryBadInput).
			WithTextCode(core.ErrorBadInput)
	}
	if numericPattern.MatchString(trimmed) {
		return trimmed, nil
	}
	appID, err := l.findAppIDByBundleID(ctx, trimmed)
	if err != nil {
		return "", err
	}
	if appID == "" {
		return "", core.NewAppNotFoundError("app-store", trimmed)
	}
	return appID, nil
}

func (l *Locator) findAppIDByBundleID(ctx context.Context, bundleID string) (string, error) {
	var res appsResponse
	path := "v1/apps?filter[bundleId]=" + url.QueryEscape(bundleID)
	if err := l.transport.Get(ctx, path, &res); err != nil {
		return "", err
	}
	if len(res.Data) == 0 {
		return "", nil
	}
	return res.Data[0].ID, nil
}

// GetApp fetches app-level attributes.
func (l *Locator) GetApp(ctx context.Context, appID string) (appResource, error) {
	var res appResponse
	if err := l.transport.Get(ctx, "v1/apps/"+appID, &res); err != nil {
		return appResource{}, err
	}
	return res.Data, nil
}

// ListVersions fetches up to limit version records for the fixed
// platform.
func (l *Locator) ListVersions(ctx context.Context, appID string, limit int) ([]core.VersionRecord, error) {
	var res versionsResponse
	path := fmt.Sprintf("v1/apps/%s/appStoreVersions?filter[platform]=%s&limit=%d", appID, Platform, limit)
	if err := l.transport.Get(ctx, path, &res); err != nil {
		return nil, err
	}
	versions := make([]core.VersionRecord, 0, len(res.Data))
	for _, item := range res.Data {
		versions = append(versions, core.VersionRecord{
			ID:            item.ID,
			VersionString: item.Attributes.VersionString,
			Platform:      item.Attributes.Platform,
		})
	}
	return versions, nil
}

// LatestVersion selects the maximum version by the dot-segment
// comparator. "Latest" is defined by version-string ordering, not by
// server-returned order or release date.
func (l *Locator) LatestVersion(ctx context.Context, appID string) (core.VersionRecord, bool, error) {
	versions, err := l.ListVersions(ctx, appID, core.LatestVersionFetchLimit)
	if err != nil {
		return core.VersionRecord{}, false, err
	}
	latest, ok := core.LatestVersion(versions)
	return latest, ok, nil
}

// VersionByString returns the first exact string match; no semantic or
// coercive comparison.
func (l *Locator) VersionByString(ctx context.Context, appID string, versionString string) (core.VersionRecord, bool, error) {
	versions, err := l.ListVersions(ctx, appID, core.VersionMatchFetchLimit)
	if err != nil {
		return core.VersionRecord{}, false, err
	}
	for _, version := range versions {
		if version.VersionString == versionString {
			return version, true, nil
		}
	}
	return core.VersionRecord{}, false, nil
}

// ListLocalizations fetches every localization attached to a version.
func (l *Locator) ListLocalizations(ctx context.Context, versionID string) ([]core.LocalizationRecord, error) {
	var res localizationsResponse
	path := fmt.Sprintf(
		"v1/appStoreVersions/%s/appStoreVersionLocalizations?limit=%d",
		versionID,
		core.LocalizationFetchLimit,
	)
	if err := l.transport.Get(ctx, path, &res); err != nil {
		return nil, err
	}
	records := make([]core.LocalizationRecord, 0, len(res.Data))
	for _, item := range res.Data {
		records = append(records, toLocalizationRecord(item))
	}
	return records, nil
}

// LocalizationForLocale performs a server-side filtered fetch limited to
// one result. When the platform rejects the filter it falls back to
// fetching all localizations and scanning client-side.
func (l *Locator) LocalizationForLocale(ctx context.Context, versionID string, locale string) (core.LocalizationRecord, bool, error) {
	var res localizationsResponse
	path := fmt.Sprintf(
		"v1/appStoreVersions/%s/appStoreVersionLocalizations?filter[locale]=%s&limit=%d",
		versionID,
		url.QueryEscape(locale),
		core.FilteredLocalizationLimit,
	)
	err := l.transport.Get(ctx, path, &res)
	if err != nil {
		var reqErr *core.RequestError
		if goerrors.As(err, &reqErr) && reqErr.Status == http.StatusBadRequest {
			return l.scanLocalizations(ctx, versionID, locale)
		}
		return core.LocalizationRecord{}, false, err
	}
	if len(res.Data) == 0 {
		return core.LocalizationRecord{}, false, nil
	}
	return toLocalizationRecord(res.Data[0]), true, nil
}

func (l *Locator) scanLocalizations(ctx context.Context, versionID string, locale string) (core.LocalizationRecord, bool, error) {
	records, err := l.ListLocalizations(ctx, versionID)
	if err != nil {
		return core.LocalizationRecord{}, false, err
	}
	for _, record := range records {
		if record.Locale == locale {
			return record, true, nil
		}
	}
	return core.LocalizationRecord{}, false, nil
}

func toLocalizationRecord(item localizationResource) core.LocalizationRecord {
	return core.LocalizationRecord{
		ID:     item.ID,
		Locale: item.Attributes.Locale,
		LocalizationAttributes: core.LocalizationAttributes{
			Description:     item.Attributes.Description,
			Keywords:        item.Attributes.Keywords,
			PromotionalText: item.Attributes.PromotionalText,
			SupportURL:      item.Attributes.SupportURL,
			MarketingURL:    item.Attributes.MarketingURL,
			WhatsNew:        item.Attributes.WhatsNew,
		},
	}
}
