// Package sqlregistry is the bun-backed registry store. SQLite is the
// supported dialect; the jsonb listing columns also work on Postgres.
package sqlregistry

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-storesync/core"
	"github.com/goliatone/go-storesync/registry"
)

type Store struct {
	db   *bun.DB
	repo repository.Repository[*registeredAppRecord]
}

func NewStore(db *bun.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlregistry: bun db is required")
	}
	repo := repository.NewRepository[*registeredAppRecord](db, registeredAppHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlregistry: invalid registry repository wiring: %w", err)
		}
	}
	return &Store{db: db, repo: repo}, nil
}

// NewStoreFromPersistence builds a Store from anything that exposes the
// underlying bun handle, such as a go-persistence-bun client.
func NewStoreFromPersistence(client interface{ DB() *bun.DB }) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("sqlregistry: persistence client is required")
	}
	return NewStore(client.DB())
}

// EnsureSchema creates the registered_apps table when it does not
// exist. Long-lived deployments run migrations instead.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlregistry: store is not configured")
	}
	_, err := s.db.NewCreateTable().
		Model((*registeredAppRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *Store) Save(ctx context.Context, app core.RegisteredApp) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlregistry: store is not configured")
	}
	bundleID := strings.TrimSpace(app.BundleID)
	if bundleID == "" {
		return core.NewBadInputError("sqlregistry: bundle id is required")
	}
	app.BundleID = bundleID
	now := time.Now().UTC()

	existing, found, err := s.findByBundleID(ctx, bundleID)
	if err != nil {
		return err
	}
	if found {
		existing.PackageName = app.PackageName
		existing.AppStore = toListingDoc(app.AppStore)
		existing.GooglePlay = toListingDoc(app.GooglePlay)
		existing.UpdatedAt = now
		_, err = s.repo.Update(ctx, existing, repository.UpdateByID(existing.ID))
		return err
	}

	_, err = s.repo.Create(ctx, newRegisteredAppRecord(app, now))
	return err
}

func (s *Store) Get(ctx context.Context, identifier string) (core.RegisteredApp, bool, error) {
	if s == nil || s.repo == nil {
		return core.RegisteredApp{}, false, fmt.Errorf("sqlregistry: store is not configured")
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return core.RegisteredApp{}, false, core.NewBadInputError("sqlregistry: identifier is required")
	}

	record, found, err := s.findByBundleID(ctx, identifier)
	if err != nil {
		return core.RegisteredApp{}, false, err
	}
	if !found {
		record, found, err = s.findByPackageName(ctx, identifier)
		if err != nil {
			return core.RegisteredApp{}, false, err
		}
	}
	if !found {
		return core.RegisteredApp{}, false, nil
	}
	return record.toDomain(), true, nil
}

func (s *Store) List(ctx context.Context) ([]core.RegisteredApp, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlregistry: store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("bundle_id ASC"))
	if err != nil {
		return nil, err
	}
	apps := make([]core.RegisteredApp, 0, len(records))
	for _, record := range records {
		apps = append(apps, record.toDomain())
	}
	return apps, nil
}

func (s *Store) Remove(ctx context.Context, identifier string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlregistry: store is not configured")
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return core.NewBadInputError("sqlregistry: identifier is required")
	}
	_, err := s.db.NewDelete().
		Model((*registeredAppRecord)(nil)).
		Where("bundle_id = ?", identifier).
		Exec(ctx)
	return err
}

func (s *Store) findByBundleID(ctx context.Context, bundleID string) (*registeredAppRecord, bool, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("bundle_id", "=", bundleID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

func (s *Store) findByPackageName(ctx context.Context, packageName string) (*registeredAppRecord, bool, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("package_name", "=", packageName),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return nil, false, nil
	}
	return records[0], true, nil
}

var _ registry.Store = (*Store)(nil)
