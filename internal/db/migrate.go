package db

import (
	"fmt"

	"github.com/zulandar/stationmaster/internal/models"
	"gorm.io/gorm"
)

// AllModels returns the GORM models for migration, leaf entities first.
func AllModels() []interface{} {
	return []interface{}{
		&models.Station{},
		&models.AARType{},
		&models.Locomotive{},
		&models.Industry{},
		&models.Route{},
		&models.Car{},
		&models.Train{},
		&models.CarOrder{},
		&models.OperatingSession{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
