// Package train governs train lifecycle: creation, completion, cancellation,
// and the Planned-only edit window.
package train

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
	"github.com/zulandar/stationmaster/internal/orders"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new train.
type CreateOpts struct {
	Name          string
	RouteID       string
	SessionNumber int
	LocomotiveIDs []string
	MaxCapacity   int
}

// CompleteStats reports what a completion run did.
type CompleteStats struct {
	CarsMoved int `json:"carsMoved"`
}

// CancelStats reports what a cancellation released.
type CancelStats struct {
	OrdersReverted int `json:"ordersReverted"`
}

// Create creates a Planned train after validating its route and locomotives.
func Create(db *gorm.DB, opts CreateOpts) (*models.Train, error) {
	if opts.Name == "" {
		return nil, opserr.Validation("train name is required")
	}
	if opts.MaxCapacity <= 0 {
		return nil, opserr.Validation("train capacity must be positive")
	}
	if len(opts.LocomotiveIDs) == 0 {
		return nil, opserr.Validation("train needs at least one locomotive")
	}

	var route models.Route
	if err := db.Where("id = ?", opts.RouteID).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, opserr.NotFound("route not found: %s", opts.RouteID)
		}
		return nil, opserr.Internal("failed to load route", fmt.Errorf("train: load route %s: %w", opts.RouteID, err))
	}
	for _, locoID := range opts.LocomotiveIDs {
		var loco models.Locomotive
		if err := db.Where("id = ?", locoID).First(&loco).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, opserr.NotFound("locomotive not found: %s", locoID)
			}
			return nil, opserr.Internal("failed to load locomotive", fmt.Errorf("train: load locomotive %s: %w", locoID, err))
		}
	}

	id, err := models.NewID("trn")
	if err != nil {
		return nil, opserr.Internal("failed to generate train id", err)
	}
	t := models.Train{
		ID:            id,
		Name:          opts.Name,
		RouteID:       opts.RouteID,
		SessionNumber: opts.SessionNumber,
		Status:        models.TrainPlanned,
		MaxCapacity:   opts.MaxCapacity,
	}
	if err := t.SetLocomotives(opts.LocomotiveIDs); err != nil {
		return nil, opserr.Internal("failed to marshal locomotive ids", err)
	}
	emptyCars, err := models.MarshalIDs(nil)
	if err != nil {
		return nil, opserr.Internal("failed to marshal car ids", err)
	}
	t.AssignedCarIDs = emptyCars

	if err := db.Create(&t).Error; err != nil {
		return nil, opserr.Internal("failed to create train", fmt.Errorf("train: create: %w", err))
	}
	return &t, nil
}

// Get retrieves a train by ID.
func Get(db *gorm.DB, id string) (*models.Train, error) {
	var t models.Train
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, opserr.NotFound("train not found: %s", id)
		}
		return nil, opserr.Internal("failed to load train", fmt.Errorf("train: get %s: %w", id, err))
	}
	return &t, nil
}

// List returns trains, optionally filtered by status and session number.
func List(db *gorm.DB, status string, sessionNumber int) ([]models.Train, error) {
	q := db.Model(&models.Train{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if sessionNumber > 0 {
		q = q.Where("session_number = ?", sessionNumber)
	}
	var trains []models.Train
	if err := q.Order("created_at ASC, id ASC").Find(&trains).Error; err != nil {
		return nil, opserr.Internal("failed to list trains", fmt.Errorf("train: list: %w", err))
	}
	return trains, nil
}

// Complete executes an In Progress train's switch list: every setout moves
// its car to the destination industry and marks the order delivered, then the
// train becomes Completed. All writes commit atomically.
func Complete(db *gorm.DB, trainID string) (*models.Train, *CompleteStats, error) {
	t, err := Get(db, trainID)
	if err != nil {
		return nil, nil, err
	}
	next, ok := Transition(t.Status, EventComplete)
	if !ok {
		return nil, nil, opserr.InvalidTransition("Cannot complete train with status: %s", t.Status)
	}

	list, err := t.SwitchList()
	if err != nil {
		return nil, nil, opserr.Internal("failed to parse switch list", err)
	}
	if list == nil {
		return nil, nil, opserr.Internal("train has no switch list", fmt.Errorf("train: complete %s: missing switch list", trainID))
	}

	stats := &CompleteStats{}
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Train{}).
			Where("id = ? AND status = ?", t.ID, models.TrainInProgress).
			Update("status", next)
		if res.Error != nil {
			return fmt.Errorf("train: complete %s: %w", t.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return opserr.Conflict("train %s was modified concurrently", t.ID)
		}

		now := time.Now()
		for _, visit := range list.Stops {
			for _, setout := range visit.Setouts {
				res := tx.Model(&models.Car{}).
					Where("id = ?", setout.CarID).
					Updates(map[string]interface{}{
						"current_industry_id":  setout.DestinationIndustryID,
						"sessions_at_location": 0,
						"last_moved":           now,
					})
				if res.Error != nil {
					return fmt.Errorf("train: move car %s: %w", setout.CarID, res.Error)
				}
				if res.RowsAffected == 0 {
					return opserr.NotFound("car not found: %s", setout.CarID)
				}

				var order models.CarOrder
				if err := tx.Where("id = ?", setout.CarOrderID).First(&order).Error; err != nil {
					return fmt.Errorf("train: load order %s: %w", setout.CarOrderID, err)
				}
				delivered, ok := orders.Transition(order.Status, orders.EventDeliver)
				if !ok {
					return opserr.Conflict("car order %s cannot be delivered from status %s", order.ID, order.Status)
				}
				ores := tx.Model(&models.CarOrder{}).
					Where("id = ? AND status = ?", order.ID, order.Status).
					Update("status", delivered)
				if ores.Error != nil {
					return fmt.Errorf("train: deliver order %s: %w", setout.CarOrderID, ores.Error)
				}
				if ores.RowsAffected == 0 {
					return opserr.Conflict("car order %s was modified concurrently", setout.CarOrderID)
				}
				stats.CarsMoved++
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, asOpsErr(err, "train completion failed")
	}

	updated, err := Get(db, trainID)
	if err != nil {
		return nil, nil, err
	}
	return updated, stats, nil
}

// Cancel abandons a train. An In Progress train's assigned orders revert to
// pending with cleared assignment fields; cars stay where they are since
// movement only happens on completion.
func Cancel(db *gorm.DB, trainID string) (*models.Train, *CancelStats, error) {
	t, err := Get(db, trainID)
	if err != nil {
		return nil, nil, err
	}
	next, ok := Transition(t.Status, EventCancel)
	if !ok {
		if t.Status == models.TrainCompleted {
			return nil, nil, opserr.InvalidTransition("Cannot cancel completed train")
		}
		return nil, nil, opserr.InvalidTransition("Cannot cancel train with status: %s", t.Status)
	}

	stats := &CancelStats{}
	wasInProgress := t.Status == models.TrainInProgress
	err = db.Transaction(func(tx *gorm.DB) error {
		if wasInProgress {
			reverted, err := RevertOrders(tx, t.ID)
			if err != nil {
				return err
			}
			stats.OrdersReverted = reverted
		}

		emptyCars, err := models.MarshalIDs(nil)
		if err != nil {
			return err
		}
		res := tx.Model(&models.Train{}).
			Where("id = ? AND status = ?", t.ID, t.Status).
			Updates(map[string]interface{}{
				"status":           next,
				"assigned_car_ids": emptyCars,
			})
		if res.Error != nil {
			return fmt.Errorf("train: cancel %s: %w", t.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return opserr.Conflict("train %s was modified concurrently", t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, nil, asOpsErr(err, "train cancellation failed")
	}

	updated, err := Get(db, trainID)
	if err != nil {
		return nil, nil, err
	}
	return updated, stats, nil
}

// RevertOrders releases every open order committed to the train: status back
// to pending, assignment fields cleared. Used by cancellation and by session
// cleanup of abandoned trains.
func RevertOrders(tx *gorm.DB, trainID string) (int, error) {
	res := tx.Model(&models.CarOrder{}).
		Where("assigned_train_id = ? AND status IN ?", trainID,
			[]string{models.OrderAssigned, models.OrderInTransit}).
		Updates(map[string]interface{}{
			"status":            models.OrderPending,
			"assigned_car_id":   nil,
			"assigned_train_id": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("train: revert orders for %s: %w", trainID, res.Error)
	}
	return int(res.RowsAffected), nil
}

// Update modifies a Planned train's editable fields. Non-Planned trains are
// immutable.
func Update(db *gorm.DB, trainID string, updates map[string]interface{}) (*models.Train, error) {
	t, err := Get(db, trainID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TrainPlanned {
		return nil, opserr.Conflict("Cannot update train with status: %s. Only 'Planned' trains can be updated.", t.Status)
	}

	res := db.Model(&models.Train{}).
		Where("id = ? AND status = ?", trainID, models.TrainPlanned).
		Updates(updates)
	if res.Error != nil {
		return nil, opserr.Internal("failed to update train", fmt.Errorf("train: update %s: %w", trainID, res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, opserr.Conflict("train %s was modified concurrently", trainID)
	}
	return Get(db, trainID)
}

// Delete removes a Planned train. Non-Planned trains persist as history.
func Delete(db *gorm.DB, trainID string) error {
	t, err := Get(db, trainID)
	if err != nil {
		return err
	}
	if t.Status != models.TrainPlanned {
		return opserr.Conflict("Cannot delete train with status: %s. Only 'Planned' trains can be deleted.", t.Status)
	}

	res := db.Where("id = ? AND status = ?", trainID, models.TrainPlanned).Delete(&models.Train{})
	if res.Error != nil {
		return opserr.Internal("failed to delete train", fmt.Errorf("train: delete %s: %w", trainID, res.Error))
	}
	if res.RowsAffected == 0 {
		return opserr.Conflict("train %s was modified concurrently", trainID)
	}
	return nil
}

// asOpsErr passes typed domain errors through and masks everything else.
func asOpsErr(err error, msg string) error {
	var oe *opserr.Error
	if errors.As(err, &oe) {
		return oe
	}
	return opserr.Internal(msg, err)
}
