package connectors

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Uidminter generates persistent UIDs through the mintuid stored procedure
// in the UID minter database.
type Uidminter struct {
	db *gorm.DB
}

func NewUidminter(db *gorm.DB) *Uidminter {
	return &Uidminter{db: db}
}

// Mint generates a new UID for the given type prefix and mid-prefix. A
// database failure is fatal to the calling operation; there is no retry.
func (u *Uidminter) Mint(ctx context.Context, pfx, mid string) (string, error) {
	var uid string
	err := u.db.WithContext(ctx).Raw("SELECT mintuid(?, ?)", pfx, mid).Scan(&uid).Error
	if err != nil {
		return "", fmt.Errorf("uidminter: could not mint UID for prefix %s/%s: %w", pfx, mid, err)
	}
	if uid == "" {
		return "", fmt.Errorf("uidminter: mintuid returned no UID for prefix %s/%s", pfx, mid)
	}
	return uid, nil
}
