package sqlregistry

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-storesync/core"
)

type storeListingDoc struct {
	SupportedLocales []string `json:"supportedLocales"`
}

type registeredAppRecord struct {
	bun.BaseModel `bun:"table:registered_apps,alias:ra"`

	ID          string           `bun:"id,pk"`
	BundleID    string           `bun:"bundle_id,notnull,unique"`
	PackageName string           `bun:"package_name"`
	AppStore    *storeListingDoc `bun:"app_store,type:jsonb"`
	GooglePlay  *storeListingDoc `bun:"google_play,type:jsonb"`
	CreatedAt   time.Time        `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time        `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newRegisteredAppRecord(app core.RegisteredApp, now time.Time) *registeredAppRecord {
	record := &registeredAppRecord{
		BundleID:    app.BundleID,
		PackageName: app.PackageName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	record.AppStore = toListingDoc(app.AppStore)
	record.GooglePlay = toListingDoc(app.GooglePlay)
	return record
}

func (r *registeredAppRecord) toDomain() core.RegisteredApp {
	if r == nil {
		return core.RegisteredApp{}
	}
	return core.RegisteredApp{
		BundleID:    r.BundleID,
		PackageName: r.PackageName,
		AppStore:    fromListingDoc(r.AppStore),
		GooglePlay:  fromListingDoc(r.GooglePlay),
	}
}

func toListingDoc(listing *core.StoreListing) *storeListingDoc {
	if listing == nil {
		return nil
	}
	return &storeListingDoc{
		SupportedLocales: append([]string(nil), listing.SupportedLocales...),
	}
}

func fromListingDoc(doc *storeListingDoc) *core.StoreListing {
	if doc == nil {
		return nil
	}
	return &core.StoreListing{
		SupportedLocales: append([]string(nil), doc.SupportedLocales...),
	}
}
