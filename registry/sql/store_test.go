package sqlregistry_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-storesync/core"
	sqlregistry "github.com/goliatone/go-storesync/registry/sql"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-storesync-tests"
}

func newSQLiteStore(t *testing.T) (*sqlregistry.Store, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:storesync-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{driver: "sqlite3", server: dsn}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	store, err := sqlregistry.NewStoreFromPersistence(client)
	if err != nil {
		_ = client.Close()
		t.Fatalf("new registry store: %v", err)
	}
	if err := store.EnsureSchema(context.Background()); err != nil {
		_ = client.Close()
		t.Fatalf("ensure schema: %v", err)
	}
	return store, func() {
		_ = client.Close()
	}
}

func TestStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newSQLiteStore(t)
	defer cleanup()

	app := core.RegisteredApp{
		BundleID:    "com.example.app",
		PackageName: "com.example.app.android",
		AppStore:    &core.StoreListing{SupportedLocales: []string{"en-US", "fr-FR"}},
		GooglePlay:  &core.StoreListing{SupportedLocales: []string{"en-US", "de-DE"}},
	}
	if err := store.Save(ctx, app); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := store.Get(ctx, "com.example.app")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found {
		t.Fatalf("expected saved app")
	}
	if got.PackageName != "com.example.app.android" {
		t.Fatalf("unexpected package name %q", got.PackageName)
	}
	if got.AppStore == nil || len(got.AppStore.SupportedLocales) != 2 {
		t.Fatalf("expected app store locales round-tripped, got %+v", got.AppStore)
	}
	if got.GooglePlay == nil || got.GooglePlay.SupportedLocales[1] != "de-DE" {
		t.Fatalf("expected google play locales round-tripped, got %+v", got.GooglePlay)
	}
}

func TestStore_SaveUpsertsByBundleID(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newSQLiteStore(t)
	defer cleanup()

	if err := store.Save(ctx, core.RegisteredApp{
		BundleID: "com.example.app",
		AppStore: &core.StoreListing{SupportedLocales: []string{"en-US"}},
	}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := store.Save(ctx, core.RegisteredApp{
		BundleID:   "com.example.app",
		GooglePlay: &core.StoreListing{SupportedLocales: []string{"ja"}},
	}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	apps, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected one record after upsert, got %d", len(apps))
	}
	if apps[0].AppStore != nil {
		t.Fatalf("expected app store listing replaced, got %+v", apps[0].AppStore)
	}
	if apps[0].GooglePlay == nil || apps[0].GooglePlay.SupportedLocales[0] != "ja" {
		t.Fatalf("expected google play listing, got %+v", apps[0].GooglePlay)
	}
}

func TestStore_GetMatchesPackageName(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newSQLiteStore(t)
	defer cleanup()

	if err := store.Save(ctx, core.RegisteredApp{
		BundleID:    "com.example.app",
		PackageName: "com.example.app.android",
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, found, err := store.Get(ctx, "com.example.app.android")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || got.BundleID != "com.example.app" {
		t.Fatalf("expected lookup by package name, got %+v found=%v", got, found)
	}

	_, found, err = store.Get(ctx, "com.example.unknown")
	if err != nil {
		t.Fatalf("get unknown: %v", err)
	}
	if found {
		t.Fatalf("expected no match for unknown identifier")
	}
}

func TestStore_ListSortsAndRemoveDeletes(t *testing.T) {
	ctx := context.Background()
	store, cleanup := newSQLiteStore(t)
	defer cleanup()

	for _, bundleID := range []string{"com.example.b", "com.example.a"} {
		if err := store.Save(ctx, core.RegisteredApp{BundleID: bundleID}); err != nil {
			t.Fatalf("save %s: %v", bundleID, err)
		}
	}

	apps, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 2 || apps[0].BundleID != "com.example.a" {
		t.Fatalf("expected sorted list, got %+v", apps)
	}

	if err := store.Remove(ctx, "com.example.a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	apps, err = store.List(ctx)
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(apps) != 1 || apps[0].BundleID != "com.example.b" {
		t.Fatalf("expected only com.example.b, got %+v", apps)
	}
}
