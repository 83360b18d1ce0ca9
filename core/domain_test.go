package core

import "testing"

func TestCanonicalMetadata_TargetLocalePrecedence(t *testing.T) {
	metadata := CanonicalMetadata{
		Name:        map[string]string{"de-DE": "Name"},
		Description: map[string]string{"fr-FR": "Description"},
		Keywords:    map[string]string{"ja": "keywords"},
	}
	if locale := metadata.TargetLocale(); locale != "fr-FR" {
		t.Fatalf("expected description locale fr-FR to win, got %q", locale)
	}

	metadata.Description = nil
	if locale := metadata.TargetLocale(); locale != "ja" {
		t.Fatalf("expected keywords locale ja next, got %q", locale)
	}
}

func TestCanonicalMetadata_TargetLocaleStableAcrossKeys(t *testing.T) {
	metadata := CanonicalMetadata{
		WhatsNew: map[string]string{"ko": "b", "en-US": "a"},
	}
	for i := 0; i < 50; i++ {
		if locale := metadata.TargetLocale(); locale != "en-US" {
			t.Fatalf("expected smallest key en-US, got %q", locale)
		}
	}
}

func TestCanonicalMetadata_TargetLocaleEmpty(t *testing.T) {
	if locale := (CanonicalMetadata{}).TargetLocale(); locale != "" {
		t.Fatalf("expected empty locale for empty metadata, got %q", locale)
	}
}

func TestCanonicalMetadata_AttributesForLocale(t *testing.T) {
	metadata := CanonicalMetadata{
		Description: map[string]string{"en-US": "desc", "fr-FR": "desc-fr"},
		Subtitle:    map[string]string{"en-US": "promo"},
		WhatsNew:    map[string]string{"fr-FR": "nouveau"},
	}
	attrs := metadata.AttributesForLocale("en-US")
	if attrs.Description == nil || *attrs.Description != "desc" {
		t.Fatalf("expected description for en-US")
	}
	if attrs.PromotionalText == nil || *attrs.PromotionalText != "promo" {
		t.Fatalf("expected subtitle mapped to promotional text")
	}
	if attrs.WhatsNew != nil {
		t.Fatalf("expected nil whatsNew for en-US, got %q", *attrs.WhatsNew)
	}
	if attrs.Keywords != nil || attrs.SupportURL != nil || attrs.MarketingURL != nil {
		t.Fatalf("expected absent fields to stay nil")
	}
}

func TestLocalizationAttributes_Empty(t *testing.T) {
	if !(LocalizationAttributes{}).Empty() {
		t.Fatalf("zero attributes should be empty")
	}
	value := "x"
	if (LocalizationAttributes{Keywords: &value}).Empty() {
		t.Fatalf("attributes with keywords should not be empty")
	}
}

func TestParseStoreKind(t *testing.T) {
	if kind, ok := ParseStoreKind("appStore"); !ok || kind != StoreKindAppStore {
		t.Fatalf("expected appStore, got %q ok=%v", kind, ok)
	}
	if kind, ok := ParseStoreKind(""); !ok || kind != StoreKindBoth {
		t.Fatalf("expected empty selector to default to both, got %q ok=%v", kind, ok)
	}
	if _, ok := ParseStoreKind("amazon"); ok {
		t.Fatalf("expected unknown store selector to fail")
	}
}

func TestStoreKindMatches(t *testing.T) {
	if !StoreKindBoth.Matches(StoreKindAppStore) {
		t.Fatalf("both should match appStore")
	}
	if StoreKindGooglePlay.Matches(StoreKindAppStore) {
		t.Fatalf("googlePlay should not match appStore")
	}
}
