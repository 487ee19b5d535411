// Package switchlist generates a train's switch list: a two-phase engine that
// plans pickups and setouts over an immutable snapshot, then commits the plan
// with status-guarded writes.
package switchlist

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
	"github.com/zulandar/stationmaster/internal/orders"
	"gorm.io/gorm"
)

// Stats reports the outcome of a switch-list generation.
type Stats struct {
	StationsServed int `json:"stationsServed"`
	CarsAssigned   int `json:"carsAssigned"`
}

// Generate builds and commits the switch list for a Planned train. On
// success the train is In Progress with its assigned cars and switch list
// persisted, and every matched order is assigned. The commit is atomic: a
// concurrent status flip on the train or an order aborts the whole
// transaction.
func Generate(db *gorm.DB, trainID string) (*models.Train, *Stats, error) {
	var train models.Train
	if err := db.Where("id = ?", trainID).First(&train).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, opserr.NotFound("train not found: %s", trainID)
		}
		return nil, nil, opserr.Internal("failed to load train", fmt.Errorf("switchlist: load train %s: %w", trainID, err))
	}
	if train.Status != models.TrainPlanned {
		return nil, nil, opserr.InvalidTransition("Cannot generate switch list for train with status: %s", train.Status)
	}

	route, err := validateRequirements(db, &train)
	if err != nil {
		return nil, nil, err
	}

	stops, err := buildWalk(db, route)
	if err != nil {
		return nil, nil, err
	}

	input, err := loadPlanInput(db, train, stops)
	if err != nil {
		return nil, nil, err
	}

	plan := BuildPlan(input, time.Now())

	if err := commit(db, &train, plan); err != nil {
		return nil, nil, err
	}

	var updated models.Train
	if err := db.Where("id = ?", trainID).First(&updated).Error; err != nil {
		return nil, nil, opserr.Internal("failed to reload train", fmt.Errorf("switchlist: reload train %s: %w", trainID, err))
	}
	stats := &Stats{
		StationsServed: len(stops),
		CarsAssigned:   len(plan.Assignments),
	}
	return &updated, stats, nil
}

// ValidateRequirements checks a train's route and locomotive integrity
// without writing anything, so callers can pre-flight a generation request.
func ValidateRequirements(db *gorm.DB, trainID string) error {
	var train models.Train
	if err := db.Where("id = ?", trainID).First(&train).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return opserr.NotFound("train not found: %s", trainID)
		}
		return opserr.Internal("failed to load train", fmt.Errorf("switchlist: load train %s: %w", trainID, err))
	}
	_, err := validateRequirements(db, &train)
	return err
}

// validateRequirements loads the route and verifies both endpoints are yards
// and every assigned locomotive exists and is in service.
func validateRequirements(db *gorm.DB, train *models.Train) (*models.Route, error) {
	var route models.Route
	if err := db.Where("id = ?", train.RouteID).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, opserr.NotFound("route not found: %s", train.RouteID)
		}
		return nil, opserr.Internal("failed to load route", fmt.Errorf("switchlist: load route %s: %w", train.RouteID, err))
	}

	for _, yardID := range []string{route.OriginYardID, route.TerminationYardID} {
		var yard models.Industry
		if err := db.Where("id = ?", yardID).First(&yard).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, opserr.NotFound("yard industry not found: %s", yardID)
			}
			return nil, opserr.Internal("failed to load yard", fmt.Errorf("switchlist: load yard %s: %w", yardID, err))
		}
		if !yard.IsYard {
			return nil, opserr.Validation("industry %s is not a yard", yardID)
		}
	}

	locoIDs, err := train.Locomotives()
	if err != nil {
		return nil, opserr.Internal("failed to parse locomotive ids", err)
	}
	if len(locoIDs) == 0 {
		return nil, opserr.Validation("train %s has no locomotives assigned", train.ID)
	}
	for _, locoID := range locoIDs {
		var loco models.Locomotive
		if err := db.Where("id = ?", locoID).First(&loco).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, opserr.NotFound("locomotive not found: %s", locoID)
			}
			return nil, opserr.Internal("failed to load locomotive", fmt.Errorf("switchlist: load locomotive %s: %w", locoID, err))
		}
		if !loco.InService {
			return nil, opserr.Validation("locomotive %s is not in service", locoID)
		}
	}

	return &route, nil
}

// buildWalk assembles the ordered stop list: origin yard, each station in the
// route sequence, then the termination yard. Yard endpoints resolve to the
// yard industry alone; station stops resolve to every industry at the station.
func buildWalk(db *gorm.DB, route *models.Route) ([]Stop, error) {
	origin, err := yardStop(db, route.OriginYardID)
	if err != nil {
		return nil, err
	}
	stops := []Stop{origin}

	stationIDs, err := route.StationIDs()
	if err != nil {
		return nil, opserr.Internal("failed to parse route station sequence", err)
	}
	for _, sid := range stationIDs {
		var station models.Station
		if err := db.Where("id = ?", sid).First(&station).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, opserr.NotFound("station not found: %s", sid)
			}
			return nil, opserr.Internal("failed to load station", fmt.Errorf("switchlist: load station %s: %w", sid, err))
		}
		var industries []models.Industry
		if err := db.Where("station_id = ?", sid).Order("id ASC").Find(&industries).Error; err != nil {
			return nil, opserr.Internal("failed to load industries", fmt.Errorf("switchlist: industries at %s: %w", sid, err))
		}
		ids := make([]string, len(industries))
		for i, ind := range industries {
			ids[i] = ind.ID
		}
		stops = append(stops, Stop{StationID: station.ID, StationName: station.Name, IndustryIDs: ids})
	}

	termination, err := yardStop(db, route.TerminationYardID)
	if err != nil {
		return nil, err
	}
	return append(stops, termination), nil
}

// yardStop renders a yard endpoint as a walk stop. The yard industry itself
// is the only switching target there.
func yardStop(db *gorm.DB, yardID string) (Stop, error) {
	var yard models.Industry
	if err := db.Where("id = ?", yardID).First(&yard).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Stop{}, opserr.NotFound("yard industry not found: %s", yardID)
		}
		return Stop{}, opserr.Internal("failed to load yard", fmt.Errorf("switchlist: load yard %s: %w", yardID, err))
	}
	name := yard.Name
	var station models.Station
	if err := db.Where("id = ?", yard.StationID).First(&station).Error; err == nil {
		name = station.Name
	}
	return Stop{StationID: yard.StationID, StationName: name, IndustryIDs: []string{yard.ID}}, nil
}

// loadPlanInput snapshots the pending orders and free in-service cars for
// the walk. Cars already claimed by an open order elsewhere are excluded so
// no car is ever double-committed.
func loadPlanInput(db *gorm.DB, train models.Train, stops []Stop) (PlanInput, error) {
	var industryIDs []string
	for _, stop := range stops {
		industryIDs = append(industryIDs, stop.IndustryIDs...)
	}

	var pending []models.CarOrder
	if err := db.
		Where("industry_id IN ? AND session_number = ? AND status = ?", industryIDs, train.SessionNumber, models.OrderPending).
		Order("created_at ASC, id ASC").
		Find(&pending).Error; err != nil {
		return PlanInput{}, opserr.Internal("failed to load pending orders", fmt.Errorf("switchlist: load orders: %w", err))
	}

	claimedSub := db.Model(&models.CarOrder{}).
		Select("assigned_car_id").
		Where("assigned_car_id IS NOT NULL AND status IN ?", []string{models.OrderAssigned, models.OrderInTransit})

	var cars []models.Car
	if err := db.
		Where("current_industry_id IN ? AND in_service = ?", industryIDs, true).
		Where("id NOT IN (?)", claimedSub).
		Order("created_at ASC, id ASC").
		Find(&cars).Error; err != nil {
		return PlanInput{}, opserr.Internal("failed to load cars", fmt.Errorf("switchlist: load cars: %w", err))
	}

	industries := make(map[string]models.Industry, len(industryIDs))
	var all []models.Industry
	if err := db.Where("id IN ?", industryIDs).Find(&all).Error; err != nil {
		return PlanInput{}, opserr.Internal("failed to load industries", fmt.Errorf("switchlist: load industries: %w", err))
	}
	for _, ind := range all {
		industries[ind.ID] = ind
	}

	return PlanInput{
		Train:      train,
		Stops:      stops,
		Orders:     pending,
		Cars:       cars,
		Industries: industries,
	}, nil
}

// commit writes the plan atomically. The train row and every matched order
// row are updated with status-guarded compare-and-swap conditions; zero rows
// affected means a concurrent writer got there first and the transaction
// rolls back.
func commit(db *gorm.DB, train *models.Train, plan Plan) error {
	listJSON, err := plan.List.Marshal()
	if err != nil {
		return opserr.Internal("failed to marshal switch list", err)
	}
	carIDsJSON, err := models.MarshalIDs(plan.CarIDs)
	if err != nil {
		return opserr.Internal("failed to marshal assigned car ids", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Train{}).
			Where("id = ? AND status = ?", train.ID, models.TrainPlanned).
			Updates(map[string]interface{}{
				"status":           models.TrainInProgress,
				"assigned_car_ids": carIDsJSON,
				"switch_list":      listJSON,
			})
		if res.Error != nil {
			return fmt.Errorf("switchlist: update train %s: %w", train.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return opserr.Conflict("train %s was modified concurrently", train.ID)
		}

		for _, a := range plan.Assignments {
			next, ok := orders.Transition(a.Order.Status, orders.EventAssign)
			if !ok {
				return opserr.Conflict("car order %s is no longer pending", a.Order.ID)
			}
			res := tx.Model(&models.CarOrder{}).
				Where("id = ? AND status = ?", a.Order.ID, models.OrderPending).
				Updates(map[string]interface{}{
					"status":            next,
					"assigned_car_id":   a.Car.ID,
					"assigned_train_id": train.ID,
				})
			if res.Error != nil {
				return fmt.Errorf("switchlist: assign order %s: %w", a.Order.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return opserr.Conflict("car order %s was claimed concurrently", a.Order.ID)
			}
		}
		return nil
	})
	if err != nil {
		var oe *opserr.Error
		if errors.As(err, &oe) {
			return oe
		}
		return opserr.Internal("switch list commit failed", err)
	}
	return nil
}
