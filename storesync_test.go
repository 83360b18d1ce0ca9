package storesync_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	storesync "github.com/goliatone/go-storesync"
	"github.com/goliatone/go-storesync/core"
	"github.com/goliatone/go-storesync/registry"
)

func testConfig(t *testing.T) storesync.Config {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate ec key: %v", err)
	}
	encoded, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal ec key: %v", err)
	}
	pemBlock := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: encoded,
	})

	cfg := core.DefaultConfig()
	cfg.AppStore = core.AppStoreConfig{
		IssuerID:   "issuer-1",
		KeyID:      "kid-1",
		PrivateKey: string(pemBlock),
	}
	return cfg
}

func testPlayConfig(t *testing.T) storesync.Config {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	encoded, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal rsa key: %v", err)
	}
	pemBlock := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: encoded,
	})

	cfg := core.DefaultConfig()
	cfg.PlayStore = core.PlayStoreConfig{
		PackageName: "com.example.app",
		ClientEmail: "sync@project.iam.gserviceaccount.com",
		PrivateKey:  string(pemBlock),
	}
	return cfg
}

func TestNew_BuildsConfiguredStores(t *testing.T) {
	svc, err := storesync.New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if svc.AppStore == nil {
		t.Fatalf("expected app store service for configured credentials")
	}
	if svc.GooglePlay != nil {
		t.Fatalf("expected no google play service without credentials")
	}

	result := svc.AppStore.VerifyAuth(0)
	if !result.Success {
		t.Fatalf("expected working credential issuer, got %q", result.Error)
	}
}

func TestNew_UnconfiguredStoreAnswersThroughEnvelope(t *testing.T) {
	svc, err := storesync.New(testPlayConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if svc.AppStore != nil {
		t.Fatalf("expected no app store service without credentials")
	}

	pull := svc.AppStore.Pull(context.Background(), "com.example.app")
	if pull.Success {
		t.Fatalf("expected failure for unconfigured app store")
	}
	if !strings.Contains(pull.Error, "app-store") || !strings.Contains(pull.Error, "auth configuration is missing") {
		t.Fatalf("expected auth config message, got %q", pull.Error)
	}
	if auth := svc.AppStore.VerifyAuth(0); auth.Success {
		t.Fatalf("expected failure for unconfigured app store")
	}
	info := svc.AppStore.FetchAppInfo(context.Background(), "com.example.app")
	if info.Found || !strings.Contains(info.Error, "auth configuration is missing") {
		t.Fatalf("expected not-found with diagnostic, got %+v", info)
	}

	appOnly, err := storesync.New(testConfig(t))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if appOnly.GooglePlay != nil {
		t.Fatalf("expected no google play service without credentials")
	}

	push := appOnly.GooglePlay.Push(context.Background(), storesync.CanonicalMetadata{})
	if push.Success || !strings.Contains(push.Error, "play-store") {
		t.Fatalf("expected play-store failure, got %+v", push)
	}
	access := appOnly.GooglePlay.VerifyAppAccess(context.Background())
	if access.Found || !strings.Contains(access.Error, "auth configuration is missing") {
		t.Fatalf("expected not-found with diagnostic, got %+v", access)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	if _, err := storesync.New(storesync.Config{}); err == nil {
		t.Fatalf("expected validation error for empty config")
	}
}

func TestNew_UsesProvidedRegistry(t *testing.T) {
	store := registry.NewMemoryStore()
	app := storesync.RegisteredApp{
		BundleID: "com.example.app",
		AppStore: &storesync.StoreListing{SupportedLocales: []string{"en-US", "fr-FR"}},
	}
	if err := store.Save(context.Background(), app); err != nil {
		t.Fatalf("save: %v", err)
	}

	svc, err := storesync.New(testConfig(t), storesync.WithRegistry(store))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	result := svc.SupportedLocales(context.Background(), "com.example.app", storesync.StoreKindBoth)
	if !result.Success || len(result.Data.AppStore) != 2 {
		t.Fatalf("expected registered locales, got %+v", result)
	}
}
