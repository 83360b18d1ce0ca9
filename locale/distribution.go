// Package locale expands a single-locale edit into the per-store locale
// sets an app is configured to localize into. It is a pure computation
// layer: no network calls, no placeholder text.
package locale

import (
	"sort"

	"github.com/goliatone/go-storesync/core"
)

// TranslationRequest asks an external translation pipeline to render
// SourceText from SourceLocale into each target locale for one store.
// TargetLocales may be empty when the source locale is the only
// supported one; the request still tracks the source-locale copy.
type TranslationRequest struct {
	Store         core.StoreKind
	SourceLocale  string
	SourceText    string
	TargetLocales []string
}

// StoreTranslations is the per-store projection of a translation map.
// A store with no matching app listing gets an empty, non-nil map.
type StoreTranslations struct {
	AppStore   map[string]string
	GooglePlay map[string]string
}

// SupportedLocales holds each store's supported locale set. A store
// outside the selector, or one the app is not listed on, gets an empty,
// non-nil set. Each set is sorted and duplicate-free.
type SupportedLocales struct {
	AppStore   []string
	GooglePlay []string
}

// Union flattens both store sets into one sorted, duplicate-free list.
func (s SupportedLocales) Union() []string {
	seen := map[string]struct{}{}
	for _, locale := range s.AppStore {
		seen[locale] = struct{}{}
	}
	for _, locale := range s.GooglePlay {
		seen[locale] = struct{}{}
	}
	union := make([]string, 0, len(seen))
	for locale := range seen {
		union = append(union, locale)
	}
	sort.Strings(union)
	return union
}

// CollectSupportedLocales returns the supported locales of each store
// the selector matches, keeping the sets separate so callers can tell
// which store carries which locale.
func CollectSupportedLocales(app core.RegisteredApp, store core.StoreKind) SupportedLocales {
	return SupportedLocales{
		AppStore:   normalizeLocales(storeLocales(app, core.StoreKindAppStore, store)),
		GooglePlay: normalizeLocales(storeLocales(app, core.StoreKindGooglePlay, store)),
	}
}

func normalizeLocales(locales []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(locales))
	for _, locale := range locales {
		if _, dup := seen[locale]; dup {
			continue
		}
		seen[locale] = struct{}{}
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// CreateTranslationRequests builds one request per store that has
// supported locales. Target locales exclude the source locale. A store
// whose only supported locale is the source still yields a request with
// empty targets so the source-locale copy stays tracked; a store that
// does not support the source locale and has no other locales yields
// nothing.
func CreateTranslationRequests(app core.RegisteredApp, sourceText string, sourceLocale string, store core.StoreKind) []TranslationRequest {
	if sourceLocale == "" {
		sourceLocale = core.DefaultLocale
	}
	if store == "" {
		store = core.StoreKindBoth
	}

	var requests []TranslationRequest
	for _, kind := range []core.StoreKind{core.StoreKindAppStore, core.StoreKindGooglePlay} {
		supported := storeLocales(app, kind, store)
		if len(supported) == 0 {
			continue
		}

		sourceSupported := false
		targets := make([]string, 0, len(supported))
		for _, locale := range supported {
			if locale == sourceLocale {
				sourceSupported = true
				continue
			}
			targets = append(targets, locale)
		}
		if len(targets) == 0 && !sourceSupported {
			continue
		}
		sort.Strings(targets)

		requests = append(requests, TranslationRequest{
			Store:         kind,
			SourceLocale:  sourceLocale,
			SourceText:    sourceText,
			TargetLocales: targets,
		})
	}
	return requests
}

// SeparateTranslationsByStore projects a locale-to-text map onto each
// store's supported locales. A supported locale takes its exact-match
// translation when one exists; the source locale may fall back to the
// source translation. Supported locales with neither are omitted, an
// external pipeline decides what still needs translating.
func SeparateTranslationsByStore(translations map[string]string, app core.RegisteredApp, sourceLocale string, store core.StoreKind) StoreTranslations {
	if sourceLocale == "" {
		sourceLocale = core.DefaultLocale
	}
	if store == "" {
		store = core.StoreKindBoth
	}
	return StoreTranslations{
		AppStore:   projectStore(translations, storeLocales(app, core.StoreKindAppStore, store), sourceLocale),
		GooglePlay: projectStore(translations, storeLocales(app, core.StoreKindGooglePlay, store), sourceLocale),
	}
}

func projectStore(translations map[string]string, supported []string, sourceLocale string) map[string]string {
	out := map[string]string{}
	for _, locale := range supported {
		if text, ok := translations[locale]; ok {
			out[locale] = text
			continue
		}
		if locale == sourceLocale {
			if text, ok := translations[sourceLocale]; ok {
				out[locale] = text
			}
		}
	}
	return out
}

func storeLocales(app core.RegisteredApp, kind core.StoreKind, selector core.StoreKind) []string {
	if !selector.Matches(kind) {
		return nil
	}
	switch kind {
	case core.StoreKindAppStore:
		if app.AppStore == nil {
			return nil
		}
		return app.AppStore.SupportedLocales
	case core.StoreKindGooglePlay:
		if app.GooglePlay == nil {
			return nil
		}
		return app.GooglePlay.SupportedLocales
	}
	return nil
}
