package models

import "time"

// LegacyUIDReservation records a legacy UID claimed during ingestion. The
// unique index turns the triplestore duplicate pre-check into a hard
// constraint: two concurrent ingests of the same legacy UID cannot both
// commit a reservation. The row only guards the UID; the asset itself lives
// in LAKE.
type LegacyUIDReservation struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	LegacyUID string `gorm:"size:255;uniqueIndex" json:"legacy_uid"`
	AssetURI  string `gorm:"size:1024" json:"asset_uri"`

	CreatedAt time.Time `json:"created_at"`
}
