// Package registry stores the per-app locale configuration the locale
// distribution engine reads. Records are keyed by bundle identifier;
// lookups also match the Google Play package name.
package registry

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-storesync/core"
)

type Store interface {
	Save(ctx context.Context, app core.RegisteredApp) error
	Get(ctx context.Context, identifier string) (core.RegisteredApp, bool, error)
	List(ctx context.Context) ([]core.RegisteredApp, error)
	Remove(ctx context.Context, identifier string) error
}

// MemoryStore is the in-process Store used by tests and single-run
// tooling that has no database at hand.
type MemoryStore struct {
	mu   sync.RWMutex
	apps map[string]core.RegisteredApp
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{apps: map[string]core.RegisteredApp{}}
}

func (s *MemoryStore) Save(_ context.Context, app core.RegisteredApp) error {
	bundleID := strings.TrimSpace(app.BundleID)
	if bundleID == "" {
		return core.NewBadInputError("registry: bundle id is required")
	}
	app.BundleID = bundleID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[bundleID] = cloneApp(app)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, identifier string) (core.RegisteredApp, bool, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return core.RegisteredApp{}, false, core.NewBadInputError("registry: identifier is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if app, ok := s.apps[identifier]; ok {
		return cloneApp(app), true, nil
	}
	for _, app := range s.apps {
		if app.PackageName == identifier {
			return cloneApp(app), true, nil
		}
	}
	return core.RegisteredApp{}, false, nil
}

func (s *MemoryStore) List(_ context.Context) ([]core.RegisteredApp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]core.RegisteredApp, 0, len(s.apps))
	for _, app := range s.apps {
		apps = append(apps, cloneApp(app))
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].BundleID < apps[j].BundleID })
	return apps, nil
}

func (s *MemoryStore) Remove(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.apps, strings.TrimSpace(identifier))
	return nil
}

func cloneApp(app core.RegisteredApp) core.RegisteredApp {
	cloned := core.RegisteredApp{
		BundleID:    app.BundleID,
		PackageName: app.PackageName,
	}
	if app.AppStore != nil {
		cloned.AppStore = &core.StoreListing{
			SupportedLocales: append([]string(nil), app.AppStore.SupportedLocales...),
		}
	}
	if app.GooglePlay != nil {
		cloned.GooglePlay = &core.StoreListing{
			SupportedLocales: append([]string(nil), app.GooglePlay.SupportedLocales...),
		}
	}
	return cloned
}

var _ Store = (*MemoryStore)(nil)
