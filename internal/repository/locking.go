package repository

import (
	"news-cms/pkg/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func supportsRowLocking(tx *gorm.DB) bool {
	return db.SupportsRowLocking(tx)
}

func lockingUpdate() clause.Locking {
	return clause.Locking{Strength: clause.LockingStrengthUpdate}
}
