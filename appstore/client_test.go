package appstore

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-storesync/core"
	"github.com/goliatone/go-storesync/devkit"
)

func appPayload(name, subtitle, primaryLocale string) map[string]any {
	return map[string]any{"data": map[string]any{
		"id":         "app_1",
		"attributes": map[string]any{"name": name, "subtitle": subtitle, "primaryLocale": primaryLocale},
	}}
}

func versionsPayload(versions ...map[string]any) map[string]any {
	return map[string]any{"data": versions}
}

func versionPayload(id, versionString string) map[string]any {
	return map[string]any{"id": id, "attributes": map[string]any{"versionString": versionString}}
}

func TestClient_PullMetadata(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: appPayload("Example", "App Subtitle", "ko")},
		devkit.Script{Body: versionsPayload(versionPayload("v1", "1.2.0"), versionPayload("v2", "1.10.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{{
			"id": "loc_ko",
			"attributes": map[string]any{
				"locale":          "ko",
				"description":     "설명",
				"keywords":        "키워드",
				"promotionalText": "프로모션",
			},
		}}}},
	)
	client := NewClient(transport, nil)

	metadata, err := client.PullMetadata(context.Background(), "1234567890")
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if metadata.Name["ko"] != "Example" {
		t.Fatalf("expected name keyed by primary locale, got %+v", metadata.Name)
	}
	if metadata.Subtitle["ko"] != "프로모션" {
		t.Fatalf("expected promotional text to win over subtitle, got %+v", metadata.Subtitle)
	}
	if metadata.Description["ko"] != "설명" || metadata.Keywords["ko"] != "키워드" {
		t.Fatalf("unexpected localized fields: %+v", metadata)
	}
	if metadata.Raw["app"] == nil || metadata.Raw["version"] == nil || metadata.Raw["localization"] == nil {
		t.Fatalf("expected raw payloads preserved for diagnostics")
	}
}

func TestClient_PullMetadataFallsBackToAppSubtitle(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: appPayload("Example", "App Subtitle", "")},
		devkit.Script{Body: versionsPayload(versionPayload("v1", "1.0.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{{
			"id":         "loc_en",
			"attributes": map[string]any{"locale": "en-US", "description": "desc"},
		}}}},
	)
	client := NewClient(transport, nil)

	metadata, err := client.PullMetadata(context.Background(), "1234567890")
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if metadata.Subtitle["en-US"] != "App Subtitle" {
		t.Fatalf("expected app subtitle fallback under default locale, got %+v", metadata.Subtitle)
	}
}

func TestClient_PushMetadataPatchesExistingLocalization(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload(versionPayload("v1", "2.0.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{{
			"id":         "loc_fr",
			"attributes": map[string]any{"locale": "fr-FR"},
		}}}},
		devkit.Script{Status: http.StatusNoContent},
	)
	client := NewClient(transport, nil)

	metadata := core.CanonicalMetadata{
		Description: map[string]string{"fr-FR": "nouvelle description"},
		WhatsNew:    map[string]string{"fr-FR": "nouveautés"},
	}
	if err := client.PushMetadata(context.Background(), "1234567890", metadata); err != nil {
		t.Fatalf("push: %v", err)
	}

	requests := transport.Requests()
	if len(requests) != 3 {
		t.Fatalf("expected versions, localization lookup, patch; got %d requests", len(requests))
	}
	patch := requests[2]
	if patch.Method != http.MethodPatch || patch.Path != "v1/appStoreVersionLocalizations/loc_fr" {
		t.Fatalf("unexpected patch request: %+v", patch)
	}

	var body map[string]any
	if err := json.Unmarshal(patch.Body, &body); err != nil {
		t.Fatalf("decode patch body: %v", err)
	}
	data := body["data"].(map[string]any)
	if data["type"] != "appStoreVersionLocalizations" || data["id"] != "loc_fr" {
		t.Fatalf("unexpected patch envelope: %+v", data)
	}
	attributes := data["attributes"].(map[string]any)
	if attributes["description"] != "nouvelle description" || attributes["whatsNew"] != "nouveautés" {
		t.Fatalf("expected provided attributes, got %+v", attributes)
	}
	for _, absent := range []string{"keywords", "promotionalText", "supportUrl", "marketingUrl", "locale"} {
		if _, ok := attributes[absent]; ok {
			t.Fatalf("expected %s to be omitted from a partial patch", absent)
		}
	}
}

func TestClient_PushMetadataCreatesMissingLocalization(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload(versionPayload("v1", "2.0.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{}}},
		devkit.Script{Status: http.StatusCreated, Body: map[string]any{"data": []map[string]any{}}},
	)
	client := NewClient(transport, nil)

	metadata := core.CanonicalMetadata{
		Keywords: map[string]string{"de-DE": "stichwörter"},
	}
	if err := client.PushMetadata(context.Background(), "1234567890", metadata); err != nil {
		t.Fatalf("push: %v", err)
	}

	requests := transport.Requests()
	create := requests[2]
	if create.Method != http.MethodPost || create.Path != "v1/appStoreVersionLocalizations" {
		t.Fatalf("unexpected create request: %+v", create)
	}
	var body map[string]any
	if err := json.Unmarshal(create.Body, &body); err != nil {
		t.Fatalf("decode create body: %v", err)
	}
	data := body["data"].(map[string]any)
	attributes := data["attributes"].(map[string]any)
	if attributes["locale"] != "de-DE" || attributes["keywords"] != "stichwörter" {
		t.Fatalf("expected locale and keywords in create attributes, got %+v", attributes)
	}
	relationships := data["relationships"].(map[string]any)
	version := relationships["appStoreVersion"].(map[string]any)["data"].(map[string]any)
	if version["type"] != "appStoreVersions" || version["id"] != "v1" {
		t.Fatalf("expected relationship to resolved version, got %+v", version)
	}
}

func TestClient_PushMetadataFailsWithoutVersions(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload()},
	)
	client := NewClient(transport, nil)

	err := client.PushMetadata(context.Background(), "1234567890", core.CanonicalMetadata{
		Description: map[string]string{"en-US": "text"},
	})
	if err == nil {
		t.Fatalf("expected no-version error")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.TextCode != core.ErrorNoVersionForApp {
		t.Fatalf("expected no-version text code, got %v", err)
	}
}

func TestClient_PushMetadataDefaultsLocale(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload(versionPayload("v1", "1.0.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{}}},
		devkit.Script{Status: http.StatusCreated},
	)
	client := NewClient(transport, nil)

	if err := client.PushMetadata(context.Background(), "1234567890", core.CanonicalMetadata{}); err != nil {
		t.Fatalf("push: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(transport.Requests()[2].Body, &body); err != nil {
		t.Fatalf("decode create body: %v", err)
	}
	attributes := body["data"].(map[string]any)["attributes"].(map[string]any)
	if attributes["locale"] != core.DefaultLocale {
		t.Fatalf("expected default locale %s, got %+v", core.DefaultLocale, attributes)
	}
}

func TestClient_CreateVersionIsIdempotent(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload(versionPayload("v1", "1.2.0"))},
	)
	client := NewClient(transport, nil)

	result, err := client.CreateVersion(context.Background(), "1234567890", "1.2.0")
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if result.Version != "1.2.0" {
		t.Fatalf("unexpected version result: %+v", result)
	}
	for _, request := range transport.Requests() {
		if request.Method == http.MethodPost {
			t.Fatalf("expected no create call for an existing version string")
		}
	}
}

func TestClient_CreateVersionCreatesWhenMissing(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload()},
		devkit.Script{Status: http.StatusCreated, Body: map[string]any{"data": versionPayload("v_new", "1.3.0")}},
	)
	client := NewClient(transport, nil)

	result, err := client.CreateVersion(context.Background(), "1234567890", "1.3.0")
	if err != nil {
		t.Fatalf("create version: %v", err)
	}
	if result.Version != "1.3.0" {
		t.Fatalf("unexpected result: %+v", result)
	}

	requests := transport.Requests()
	if len(requests) != 2 || requests[1].Method != http.MethodPost {
		t.Fatalf("expected lookup then create, got %+v", requests)
	}
	var body map[string]any
	if err := json.Unmarshal(requests[1].Body, &body); err != nil {
		t.Fatalf("decode create body: %v", err)
	}
	data := body["data"].(map[string]any)
	attributes := data["attributes"].(map[string]any)
	if attributes["versionString"] != "1.3.0" || attributes["platform"] != Platform {
		t.Fatalf("unexpected create attributes: %+v", attributes)
	}
	app := data["relationships"].(map[string]any)["app"].(map[string]any)["data"].(map[string]any)
	if app["type"] != "apps" || app["id"] != "1234567890" {
		t.Fatalf("expected app relationship, got %+v", app)
	}
}

func TestClient_PullReleaseNotes(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: versionsPayload(versionPayload("v2", "1.1.0"), versionPayload("v1", "1.0.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{
			{"id": "l1", "attributes": map[string]any{"locale": "en-US", "whatsNew": "Bug fixes"}},
			{"id": "l2", "attributes": map[string]any{"locale": "fr-FR", "whatsNew": ""}},
			{"id": "l3", "attributes": map[string]any{"locale": "", "whatsNew": "orphan"}},
		}}},
		devkit.Script{Body: map[string]any{"data": []map[string]any{
			{"id": "l4", "attributes": map[string]any{"locale": "en-US", "whatsNew": "Initial release"}},
		}}},
	)
	client := NewClient(transport, nil)

	notes, err := client.PullReleaseNotes(context.Background(), "1234567890")
	if err != nil {
		t.Fatalf("pull release notes: %v", err)
	}
	want := []core.ReleaseNote{
		{Version: "1.1.0", Locale: "en-US", Text: "Bug fixes"},
		{Version: "1.0.0", Locale: "en-US", Text: "Initial release"},
	}
	if len(notes) != len(want) {
		t.Fatalf("expected %d notes, got %+v", len(want), notes)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("note %d: expected %+v, got %+v", i, want[i], notes[i])
		}
	}
}

func TestClient_AppInfo(t *testing.T) {
	transport := devkit.NewFakeTransport("app-store",
		devkit.Script{Body: map[string]any{"data": []map[string]any{{"id": "app_7", "attributes": map[string]any{"bundleId": "com.example.app"}}}}},
		devkit.Script{Body: appPayload("Example", "", "en-US")},
		devkit.Script{Body: versionsPayload(versionPayload("v1", "1.0.0"))},
		devkit.Script{Body: map[string]any{"data": []map[string]any{
			{"id": "l1", "attributes": map[string]any{"locale": "en-US"}},
			{"id": "l2", "attributes": map[string]any{"locale": "fr-FR"}},
		}}},
	)
	client := NewClient(transport, nil)

	info, err := client.AppInfo(context.Background(), "com.example.app")
	if err != nil {
		t.Fatalf("app info: %v", err)
	}
	if info.AppID != "app_7" || info.Name != "Example" {
		t.Fatalf("unexpected app info: %+v", info)
	}
	if len(info.SupportedLocales) != 2 {
		t.Fatalf("expected two supported locales, got %+v", info.SupportedLocales)
	}
}
