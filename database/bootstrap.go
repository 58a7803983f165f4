package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite" // CGO-free driver
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garden/entities"
	"garden/logging"
)

// OpenSQLite opens the local store and migrates the catalog and plot tables.
// Plots may reference crops that live only in a remote catalog, so foreign
// key constraints are not created.
func OpenSQLite(path string, l *zap.Logger) (*gorm.DB, error) {
	if l == nil {
		l = zap.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                                   logging.Gorm(l),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&entities.CropGroup{},
		&entities.IconArt{},
		&entities.Crop{},
		&entities.Plot{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return db, nil
}
