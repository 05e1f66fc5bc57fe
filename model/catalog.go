package model

import (
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/Laisky/openrouter-mcp/catalog"
)

// CatalogModel is one persisted model record. The table is fully replaced
// on every successful refresh, so rows never carry update history.
type CatalogModel struct {
	ID                  string           `json:"id" gorm:"primaryKey;type:varchar(191)"`
	Provider            string           `json:"provider" gorm:"type:varchar(128);index"`
	Model               string           `json:"model" gorm:"type:varchar(191)"`
	CanonicalSlug       string           `json:"canonical_slug" gorm:"type:varchar(191)"`
	HuggingFaceID       string           `json:"hugging_face_id" gorm:"type:varchar(191)"`
	Name                string           `json:"name" gorm:"type:varchar(255);index"`
	Created             int64            `json:"created" gorm:"bigint"`
	Description         string           `json:"description" gorm:"type:text"`
	ContextLength       int              `json:"context_length" gorm:"index"`
	Architecture        ArchitectureJSON `json:"architecture" gorm:"type:text"`
	Pricing             PricingJSON      `json:"pricing" gorm:"type:text"`
	TopProvider         TopProviderJSON  `json:"top_provider" gorm:"type:text"`
	PerRequestLimits    JSONStringMap    `json:"per_request_limits" gorm:"type:text"`
	SupportedParameters JSONStringSlice  `json:"supported_parameters" gorm:"type:text"`
}

// CatalogMeta is the single row describing the persisted snapshot.
type CatalogMeta struct {
	ID          int   `gorm:"primaryKey"`
	FetchedAt   int64 `gorm:"bigint;not null"`
	RecordCount int   `gorm:"not null"`
}

const catalogMetaID = 1

// SaveSnapshot replaces the persisted catalog with the given snapshot in
// one transaction, mirroring the upstream's full-replace semantics.
func SaveSnapshot(db *gorm.DB, snap *catalog.Snapshot) error {
	if db == nil {
		return errors.New("database is not initialized")
	}
	if snap.Empty() {
		return errors.New("refusing to persist an empty snapshot")
	}

	rows := make([]CatalogModel, 0, snap.Len())
	for _, rec := range snap.Records {
		rows = append(rows, recordToRow(rec))
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&CatalogModel{}).Error; err != nil {
			return errors.Wrap(err, "clear persisted catalog")
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return errors.Wrap(err, "insert catalog rows")
		}
		meta := CatalogMeta{
			ID:          catalogMetaID,
			FetchedAt:   snap.FetchedAt.UnixMilli(),
			RecordCount: snap.Len(),
		}
		if err := tx.Save(&meta).Error; err != nil {
			return errors.Wrap(err, "save catalog meta")
		}
		return nil
	})
}

// LoadSnapshot restores the last persisted snapshot, or (nil, nil) when
// nothing has been persisted yet.
func LoadSnapshot(db *gorm.DB) (*catalog.Snapshot, error) {
	if db == nil {
		return nil, errors.New("database is not initialized")
	}

	var meta CatalogMeta
	if err := db.First(&meta, "id = ?", catalogMetaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load catalog meta")
	}

	var rows []CatalogModel
	if err := db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load catalog rows")
	}

	snap := &catalog.Snapshot{
		FetchedAt: time.UnixMilli(meta.FetchedAt),
		Records:   make([]catalog.ModelRecord, 0, len(rows)),
	}
	for _, row := range rows {
		snap.Records = append(snap.Records, rowToRecord(row))
	}
	return snap, nil
}

func recordToRow(rec catalog.ModelRecord) CatalogModel {
	return CatalogModel{
		ID:                  rec.ID,
		Provider:            rec.Provider,
		Model:               rec.Model,
		CanonicalSlug:       rec.CanonicalSlug,
		HuggingFaceID:       rec.HuggingFaceID,
		Name:                rec.Name,
		Created:             rec.Created,
		Description:         rec.Description,
		ContextLength:       rec.ContextLength,
		Architecture:        ArchitectureJSON(rec.Architecture),
		Pricing:             PricingJSON(rec.Pricing),
		TopProvider:         TopProviderJSON{Provider: rec.TopProvider},
		PerRequestLimits:    JSONStringMap(rec.PerRequestLimits),
		SupportedParameters: JSONStringSlice(rec.SupportedParameters),
	}
}

func rowToRecord(row CatalogModel) catalog.ModelRecord {
	return catalog.ModelRecord{
		ID:                  row.ID,
		Provider:            row.Provider,
		Model:               row.Model,
		CanonicalSlug:       row.CanonicalSlug,
		HuggingFaceID:       row.HuggingFaceID,
		Name:                row.Name,
		Created:             row.Created,
		Description:         row.Description,
		ContextLength:       row.ContextLength,
		Architecture:        catalog.Architecture(row.Architecture),
		Pricing:             catalog.Pricing(row.Pricing),
		TopProvider:         row.TopProvider.Provider,
		PerRequestLimits:    map[string]string(row.PerRequestLimits),
		SupportedParameters: []string(row.SupportedParameters),
	}
}
