package playstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-storesync/core"
)

const (
	defaultBaseURL        = "https://androidpublisher.googleapis.com/androidpublisher/v3/applications/"
	defaultRequestTimeout = 30 * time.Second

	productionTrack = "production"
)

type ClientConfig struct {
	Auth       core.PlayStoreConfig
	BaseURL    string
	HTTPClient HTTPDoer
	Logger     core.Logger
	// Now returns the current epoch seconds; tests override it.
	Now func() int64
}

// Client talks to the Android Publisher API for one package. Listing
// reads and writes go through the edits workflow: open an edit, act on
// it, then commit or discard.
type Client struct {
	packageName string
	baseURL     string
	tokens      *TokenSource
	httpClient  HTTPDoer
	logger      core.Logger
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if missing := cfg.Auth.Missing(); len(missing) > 0 {
		return nil, core.NewAuthConfigMissingError("play-store", missing...)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	tokens, err := NewTokenSource(cfg.Auth, httpClient, cfg.Now)
	if err != nil {
		return nil, err
	}
	_, logger := glog.Resolve("playstore", nil, cfg.Logger)
	return &Client{
		packageName: strings.TrimSpace(cfg.Auth.PackageName),
		baseURL:     baseURL,
		tokens:      tokens,
		httpClient:  httpClient,
		logger:      glog.Ensure(logger),
	}, nil
}

func (c *Client) PackageName() string {
	if c == nil {
		return ""
	}
	return c.packageName
}

// VerifyAppAccess confirms the service account can read the app and
// reports its title and supported listing locales.
func (c *Client) VerifyAppAccess(ctx context.Context) (core.AppInfo, error) {
	listings, err := c.Listings(ctx)
	if err != nil {
		return core.AppInfo{}, err
	}

	locales := make([]string, 0, len(listings))
	for locale := range listings {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	title := ""
	if listing, ok := listings[core.DefaultLocale]; ok {
		title = listing.Title
	} else if len(locales) > 0 {
		title = listings[locales[0]].Title
	}

	return core.AppInfo{
		Store:            core.StoreKindGooglePlay,
		AppID:            c.packageName,
		BundleID:         c.packageName,
		Name:             title,
		SupportedLocales: locales,
	}, nil
}

// Listings returns the localized store listings keyed by BCP 47 locale.
// The edit used for the read is discarded afterwards.
func (c *Client) Listings(ctx context.Context) (map[string]Listing, error) {
	editID, err := c.openEdit(ctx)
	if err != nil {
		return nil, err
	}
	defer c.discardEdit(ctx, editID)

	var res listingsResponse
	if err := c.request(ctx, http.MethodGet, fmt.Sprintf("edits/%s/listings", editID), nil, &res); err != nil {
		return nil, err
	}
	listings := make(map[string]Listing, len(res.Listings))
	for _, listing := range res.Listings {
		if listing.Language == "" {
			continue
		}
		listings[listing.Language] = listing
	}
	return listings, nil
}

// PushMetadata writes localized listings inside one committed edit and
// reports the locales written. Canonical fields map onto the listing
// shape: name to title, subtitle to the short description, description
// to the full description.
func (c *Client) PushMetadata(ctx context.Context, metadata core.CanonicalMetadata) ([]string, error) {
	locales := map[string]struct{}{}
	for locale := range metadata.Name {
		locales[locale] = struct{}{}
	}
	for locale := range metadata.Subtitle {
		locales[locale] = struct{}{}
	}
	for locale := range metadata.Description {
		locales[locale] = struct{}{}
	}
	if len(locales) == 0 {
		return nil, core.NewBadInputError("play-store push has no localized fields to write")
	}

	ordered := make([]string, 0, len(locales))
	for locale := range locales {
		ordered = append(ordered, locale)
	}
	sort.Strings(ordered)

	editID, err := c.openEdit(ctx)
	if err != nil {
		return nil, err
	}

	for _, locale := range ordered {
		listing := Listing{
			Language:         locale,
			Title:            metadata.Name[locale],
			ShortDescription: metadata.Subtitle[locale],
			FullDescription:  metadata.Description[locale],
		}
		path := fmt.Sprintf("edits/%s/listings/%s", editID, locale)
		if err := c.request(ctx, http.MethodPatch, path, listing, nil); err != nil {
			c.discardEdit(ctx, editID)
			return nil, err
		}
	}

	if err := c.commitEdit(ctx, editID); err != nil {
		c.discardEdit(ctx, editID)
		return nil, err
	}
	return ordered, nil
}

// LatestProductionRelease reports the newest release on the production
// track, if the track has any.
func (c *Client) LatestProductionRelease(ctx context.Context) (Release, bool, error) {
	editID, err := c.openEdit(ctx)
	if err != nil {
		return Release{}, false, err
	}
	defer c.discardEdit(ctx, editID)

	var res trackResponse
	path := fmt.Sprintf("edits/%s/tracks/%s", editID, productionTrack)
	if err := c.request(ctx, http.MethodGet, path, nil, &res); err != nil {
		return Release{}, false, err
	}
	if len(res.Releases) == 0 {
		return Release{}, false, nil
	}
	return res.Releases[0], true, nil
}

// PullReleaseNotes flattens the production release notes into one row
// per locale.
func (c *Client) PullReleaseNotes(ctx context.Context) ([]core.ReleaseNote, error) {
	release, found, err := c.LatestProductionRelease(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	notes := make([]core.ReleaseNote, 0, len(release.ReleaseNotes))
	for _, entry := range release.ReleaseNotes {
		if entry.Language == "" || entry.Text == "" {
			continue
		}
		notes = append(notes, core.ReleaseNote{
			Version: release.Name,
			Locale:  entry.Language,
			Text:    entry.Text,
		})
	}
	return notes, nil
}

// LatestVersionSummary renders a one-line description of the newest
// production release for status output.
func (c *Client) LatestVersionSummary(ctx context.Context) (string, error) {
	release, found, err := c.LatestProductionRelease(ctx)
	if err != nil {
		return "", err
	}
	if !found {
		return "Google Play: no production release", nil
	}
	name := release.Name
	if name == "" && len(release.VersionCodes) > 0 {
		name = release.VersionCodes[0]
	}
	status := release.Status
	if status == "" {
		status = "unknown"
	}
	return fmt.Sprintf("Google Play: %s (%s)", name, status), nil
}

func (c *Client) openEdit(ctx context.Context) (string, error) {
	var edit editResource
	if err := c.request(ctx, http.MethodPost, "edits", nil, &edit); err != nil {
		return "", err
	}
	if edit.ID == "" {
		return "", fmt.Errorf("playstore: edit insert returned no id")
	}
	return edit.ID, nil
}

func (c *Client) commitEdit(ctx context.Context, editID string) error {
	return c.request(ctx, http.MethodPost, fmt.Sprintf("edits/%s:commit", editID), nil, nil)
}

// discardEdit is best effort; abandoned edits expire server-side.
func (c *Client) discardEdit(ctx context.Context, editID string) {
	if err := c.request(ctx, http.MethodDelete, fmt.Sprintf("edits/%s", editID), nil, nil); err != nil {
		c.logger.Debug("discard edit failed", "edit", editID, "error", err)
	}
}

func (c *Client) request(ctx context.Context, method string, path string, body any, out any) error {
	if c == nil {
		return fmt.Errorf("playstore: client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	target := c.baseURL + c.packageName + "/" + strings.TrimPrefix(path, "/")

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("playstore: marshal request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("playstore: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("playstore: %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("playstore: read response body: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("play store request failed",
			"method", method,
			"path", path,
			"status", res.StatusCode,
		)
		return &core.RequestError{
			Store:  "play-store",
			Status: res.StatusCode,
			Body:   string(payload),
		}
	}

	c.logger.Debug("play store request succeeded",
		"method", method,
		"path", path,
		"status", res.StatusCode,
	)

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("playstore: decode %s %s response: %w", method, path, err)
	}
	return nil
}
