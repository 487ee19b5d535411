// Package session governs the singleton operating session: advance with a
// single-level snapshot, rollback from it, and description edits. All writes
// are version-checked compare-and-swap; advance and rollback are additionally
// serialized process-wide because they rewrite whole collections.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
	"github.com/zulandar/stationmaster/internal/train"
	"gorm.io/gorm"
)

// mu serializes advance and rollback within the process.
var mu sync.Mutex

// MaxDescriptionLen bounds the session description.
const MaxDescriptionLen = 500

// AdvanceStats reports what a session advance cleaned up.
type AdvanceStats struct {
	TrainsDeleted        int `json:"trainsDeleted"`
	CarsUpdated          int `json:"carsUpdated"`
	ActiveTrainsReverted int `json:"activeTrainsReverted"`
}

// RollbackStats reports what a rollback restored.
type RollbackStats struct {
	CarsRestored      int `json:"carsRestored"`
	TrainsRestored    int `json:"trainsRestored"`
	CarOrdersRestored int `json:"carOrdersRestored"`
}

// Current returns the operating session, lazily creating session 1 on first
// use.
func Current(db *gorm.DB) (*models.OperatingSession, error) {
	var sess models.OperatingSession
	err := db.Where("id = ?", models.SessionRowID).First(&sess).Error
	if err == nil {
		return &sess, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, opserr.Internal("failed to load operating session", fmt.Errorf("session: load: %w", err))
	}

	sess = models.OperatingSession{
		ID:                   models.SessionRowID,
		CurrentSessionNumber: 1,
		SessionDate:          time.Now(),
		Description:          "Operating Session 1",
		Version:              1,
	}
	if err := db.Create(&sess).Error; err != nil {
		// Lost the creation race; the winner's row is the session.
		var existing models.OperatingSession
		if ferr := db.Where("id = ?", models.SessionRowID).First(&existing).Error; ferr == nil {
			return &existing, nil
		}
		return nil, opserr.Internal("failed to create operating session", fmt.Errorf("session: create: %w", err))
	}
	return &sess, nil
}

// load fetches the session without creating it.
func load(db *gorm.DB) (*models.OperatingSession, error) {
	var sess models.OperatingSession
	if err := db.Where("id = ?", models.SessionRowID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, opserr.NotFound("no operating session exists")
		}
		return nil, opserr.Internal("failed to load operating session", fmt.Errorf("session: load: %w", err))
	}
	return &sess, nil
}

// Advance closes out the current session: snapshot all mutable state, age
// every car's idle counter, delete Completed trains, revert abandoned
// In Progress trains' orders, then increment the session number. The
// snapshot overwrites any prior one — rollback is a single undo step.
func Advance(db *gorm.DB, description string) (*models.OperatingSession, *AdvanceStats, error) {
	mu.Lock()
	defer mu.Unlock()

	sess, err := load(db)
	if err != nil {
		return nil, nil, err
	}

	stats := &AdvanceStats{}
	err = db.Transaction(func(tx *gorm.DB) error {
		var cars []models.Car
		if err := tx.Order("id ASC").Find(&cars).Error; err != nil {
			return fmt.Errorf("session: snapshot cars: %w", err)
		}
		var trains []models.Train
		if err := tx.Order("id ASC").Find(&trains).Error; err != nil {
			return fmt.Errorf("session: snapshot trains: %w", err)
		}
		var carOrders []models.CarOrder
		if err := tx.Order("id ASC").Find(&carOrders).Error; err != nil {
			return fmt.Errorf("session: snapshot car orders: %w", err)
		}

		snap := models.SessionSnapshot{
			SessionNumber: sess.CurrentSessionNumber,
			Cars:          cars,
			Trains:        trains,
			CarOrders:     carOrders,
		}
		snapJSON, err := snap.Marshal()
		if err != nil {
			return err
		}

		// Idle-time aging for every car.
		res := tx.Model(&models.Car{}).
			Where("id <> ''").
			Update("sessions_at_location", gorm.Expr("sessions_at_location + 1"))
		if res.Error != nil {
			return fmt.Errorf("session: age cars: %w", res.Error)
		}
		stats.CarsUpdated = int(res.RowsAffected)

		// Completed trains are history the snapshot already preserves.
		res = tx.Where("status = ?", models.TrainCompleted).Delete(&models.Train{})
		if res.Error != nil {
			return fmt.Errorf("session: delete completed trains: %w", res.Error)
		}
		stats.TrainsDeleted = int(res.RowsAffected)

		// Abandoned In Progress trains release their orders; the records
		// stay, with assignment fields and switch lists cleared.
		emptyCars, err := models.MarshalIDs(nil)
		if err != nil {
			return err
		}
		for _, t := range trains {
			if t.Status != models.TrainInProgress {
				continue
			}
			if _, err := train.RevertOrders(tx, t.ID); err != nil {
				return err
			}
			if err := tx.Model(&models.Train{}).
				Where("id = ?", t.ID).
				Updates(map[string]interface{}{
					"assigned_car_ids": emptyCars,
					"switch_list":      nil,
				}).Error; err != nil {
				return fmt.Errorf("session: clear train %s: %w", t.ID, err)
			}
			stats.ActiveTrainsReverted++
		}

		next := sess.CurrentSessionNumber + 1
		desc := description
		if desc == "" {
			desc = fmt.Sprintf("Operating Session %d", next)
		}
		res = tx.Model(&models.OperatingSession{}).
			Where("id = ? AND version = ?", models.SessionRowID, sess.Version).
			Updates(map[string]interface{}{
				"current_session_number": next,
				"description":            desc,
				"session_date":           time.Now(),
				"previous_snapshot":      snapJSON,
				"version":                sess.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("session: advance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return opserr.Conflict("operating session was modified concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, nil, asOpsErr(err, "session advance failed")
	}

	updated, err := load(db)
	if err != nil {
		return nil, nil, err
	}
	return updated, stats, nil
}

// Rollback restores the previous session's cars, trains and car orders
// wholesale from the snapshot, then clears it — there is no redo.
func Rollback(db *gorm.DB) (*models.OperatingSession, *RollbackStats, error) {
	mu.Lock()
	defer mu.Unlock()

	sess, err := load(db)
	if err != nil {
		return nil, nil, err
	}
	if sess.CurrentSessionNumber == 1 {
		return nil, nil, opserr.Validation("Cannot rollback from session 1")
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return nil, nil, opserr.Internal("Invalid session snapshot", err)
	}
	if snap == nil {
		return nil, nil, opserr.Validation("No previous session snapshot available")
	}
	if !snap.Valid() {
		return nil, nil, opserr.Internal("Invalid session snapshot", fmt.Errorf("session: snapshot session number %d", snap.SessionNumber))
	}

	stats := &RollbackStats{
		CarsRestored:      len(snap.Cars),
		TrainsRestored:    len(snap.Trains),
		CarOrdersRestored: len(snap.CarOrders),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Car{}, &models.Train{}, &models.CarOrder{}} {
			if err := tx.Where("id <> ''").Delete(model).Error; err != nil {
				return fmt.Errorf("session: clear collection: %w", err)
			}
		}
		if len(snap.Cars) > 0 {
			if err := tx.Create(&snap.Cars).Error; err != nil {
				return fmt.Errorf("session: restore cars: %w", err)
			}
		}
		if len(snap.Trains) > 0 {
			if err := tx.Create(&snap.Trains).Error; err != nil {
				return fmt.Errorf("session: restore trains: %w", err)
			}
		}
		if len(snap.CarOrders) > 0 {
			if err := tx.Create(&snap.CarOrders).Error; err != nil {
				return fmt.Errorf("session: restore car orders: %w", err)
			}
		}

		res := tx.Model(&models.OperatingSession{}).
			Where("id = ? AND version = ?", models.SessionRowID, sess.Version).
			Updates(map[string]interface{}{
				"current_session_number": snap.SessionNumber,
				"previous_snapshot":      nil,
				"version":                sess.Version + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("session: rollback: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return opserr.Conflict("operating session was modified concurrently")
		}
		return nil
	})
	if err != nil {
		return nil, nil, asOpsErr(err, "session rollback failed")
	}

	updated, err := load(db)
	if err != nil {
		return nil, nil, err
	}
	return updated, stats, nil
}

// UpdateDescription sets the session description after validating it.
func UpdateDescription(db *gorm.DB, text string) (*models.OperatingSession, error) {
	if text == "" {
		return nil, opserr.Validation("description must not be empty")
	}
	if len(text) > MaxDescriptionLen {
		return nil, opserr.Validation("description must be at most %d characters", MaxDescriptionLen)
	}

	sess, err := load(db)
	if err != nil {
		return nil, err
	}
	res := db.Model(&models.OperatingSession{}).
		Where("id = ? AND version = ?", models.SessionRowID, sess.Version).
		Updates(map[string]interface{}{
			"description": text,
			"version":     sess.Version + 1,
		})
	if res.Error != nil {
		return nil, opserr.Internal("failed to update description", fmt.Errorf("session: update description: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, opserr.Conflict("operating session was modified concurrently")
	}
	return load(db)
}

// asOpsErr passes typed domain errors through and masks everything else.
func asOpsErr(err error, msg string) error {
	var oe *opserr.Error
	if errors.As(err, &oe) {
		return oe
	}
	return opserr.Internal(msg, err)
}
