package core

import (
	"sort"
	"strings"
)

// DefaultLocale is used whenever an app or an edit does not name a locale.
const DefaultLocale = "en-US"

type StoreKind string

const (
	StoreKindAppStore   StoreKind = "appStore"
	StoreKindGooglePlay StoreKind = "googlePlay"
	StoreKindBoth       StoreKind = "both"
)

func (k StoreKind) Matches(store StoreKind) bool {
	return k == StoreKindBoth || k == store
}

func ParseStoreKind(value string) (StoreKind, bool) {
	switch strings.TrimSpace(value) {
	case string(StoreKindAppStore):
		return StoreKindAppStore, true
	case string(StoreKindGooglePlay):
		return StoreKindGooglePlay, true
	case string(StoreKindBoth), "":
		return StoreKindBoth, true
	}
	return "", false
}

// VersionRecord is one store version of an app. The version string is a
// dot-separated sequence of non-negative integers.
type VersionRecord struct {
	ID            string
	VersionString string
	Platform      string
}

// LocalizationRecord is the per-locale set of editable listing fields
// attached to one app version. At most one record exists per
// (version id, locale) pair.
type LocalizationRecord struct {
	ID     string
	Locale string
	LocalizationAttributes
}

// LocalizationAttributes carries the editable fields. Nil pointers mean
// "not provided" so a patch leaves the remote value untouched.
type LocalizationAttributes struct {
	Description     *string
	Keywords        *string
	PromotionalText *string
	SupportURL      *string
	MarketingURL    *string
	WhatsNew        *string
}

func (a LocalizationAttributes) Empty() bool {
	return a.Description == nil &&
		a.Keywords == nil &&
		a.PromotionalText == nil &&
		a.SupportURL == nil &&
		a.MarketingURL == nil &&
		a.WhatsNew == nil
}

// CanonicalMetadata is the store-agnostic listing shape: per field, a
// locale to value mapping. Raw preserves the last fetched vendor payload
// for diagnostics.
type CanonicalMetadata struct {
	Name         map[string]string
	Subtitle     map[string]string
	Description  map[string]string
	Keywords     map[string]string
	SupportURL   map[string]string
	MarketingURL map[string]string
	WhatsNew     map[string]string
	Raw          map[string]any
}

// TargetLocale scans the field mappings in fixed precedence order and
// returns the first populated mapping's first locale key. The precedence
// order is part of the push contract and must not be reordered. Map keys
// are unordered in Go, so "first key" is the smallest one, which keeps
// the choice stable across runs.
func (m CanonicalMetadata) TargetLocale() string {
	for _, field := range []map[string]string{
		m.Description,
		m.Keywords,
		m.Subtitle,
		m.Name,
		m.SupportURL,
		m.MarketingURL,
		m.WhatsNew,
	} {
		if len(field) == 0 {
			continue
		}
		keys := make([]string, 0, len(field))
		for key := range field {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return keys[0]
	}
	return ""
}

// AttributesForLocale projects the canonical mappings onto the
// per-locale attribute set a store write expects. Fields without a value
// for the locale stay nil.
func (m CanonicalMetadata) AttributesForLocale(locale string) LocalizationAttributes {
	return LocalizationAttributes{
		Description:     localeValue(m.Description, locale),
		Keywords:        localeValue(m.Keywords, locale),
		PromotionalText: localeValue(m.Subtitle, locale),
		SupportURL:      localeValue(m.SupportURL, locale),
		MarketingURL:    localeValue(m.MarketingURL, locale),
		WhatsNew:        localeValue(m.WhatsNew, locale),
	}
}

func localeValue(field map[string]string, locale string) *string {
	if field == nil {
		return nil
	}
	value, ok := field[locale]
	if !ok {
		return nil
	}
	return &value
}

// SingleLocale builds a one-key mapping, used when assembling canonical
// metadata from a single-locale pull.
func SingleLocale(locale string, value string) map[string]string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return map[string]string{locale: value}
}

// ReleaseNote is one localized "what's new" entry. Pulls across versions
// may repeat a locale.
type ReleaseNote struct {
	Version string
	Locale  string
	Text    string
}

// CreateVersionResult reports the version string that now exists on the
// store plus the raw vendor record behind it.
type CreateVersionResult struct {
	Version string
	Raw     any
}

// StoreListing describes the per-store locale configuration of a
// registered app.
type StoreListing struct {
	SupportedLocales []string
}

// RegisteredApp is the read-only registration record consumed by the
// locale distribution engine.
type RegisteredApp struct {
	BundleID    string
	PackageName string
	AppStore    *StoreListing
	GooglePlay  *StoreListing
}

// AppInfo is the summary a store lookup yields for one app.
type AppInfo struct {
	Store            StoreKind
	AppID            string
	BundleID         string
	Name             string
	SupportedLocales []string
}
