package switchlist

import (
	"time"

	"github.com/zulandar/stationmaster/internal/models"
)

// Stop is one position of the station walk: the origin yard, each
// intermediate station, then the termination yard.
type Stop struct {
	StationID   string
	StationName string
	IndustryIDs []string // industries physically located at this stop
}

// PlanInput is the immutable snapshot the matcher works over. Orders must be
// pending and sorted FIFO by creation time; cars must be in service, located
// at one of the walk's industries, and free of any open order claim.
type PlanInput struct {
	Train      models.Train
	Stops      []Stop
	Orders     []models.CarOrder
	Cars       []models.Car
	Industries map[string]models.Industry
}

// Assignment pairs a car with the order it satisfies, as stop positions
// within the walk.
type Assignment struct {
	Car        models.Car
	Order      models.CarOrder
	PickupStop int
	SetoutStop int
}

// Plan is the computed switch list before anything is written back.
type Plan struct {
	Assignments []Assignment
	CarIDs      []string
	List        models.SwitchList
}

// BuildPlan matches cars to orders along the walk. At each stop, every
// eligible car is matched to the earliest-created pending order of the same
// AAR type whose destination lies at this stop or later in the walk. Matching
// stops once the train reaches capacity. BuildPlan is pure: it never touches
// the database.
func BuildPlan(in PlanInput, now time.Time) Plan {
	// First walk position of each industry.
	industryStop := make(map[string]int)
	for pos, stop := range in.Stops {
		for _, id := range stop.IndustryIDs {
			if _, seen := industryStop[id]; !seen {
				industryStop[id] = pos
			}
		}
	}

	capacity := in.Train.MaxCapacity
	usedCars := make(map[string]bool)
	usedOrders := make(map[string]bool)
	var assignments []Assignment

	for pos, stop := range in.Stops {
		if len(assignments) >= capacity {
			break
		}
		here := make(map[string]bool, len(stop.IndustryIDs))
		for _, id := range stop.IndustryIDs {
			here[id] = true
		}

		for _, car := range in.Cars {
			if len(assignments) >= capacity {
				break
			}
			if usedCars[car.ID] || !here[car.CurrentIndustryID] {
				continue
			}
			for _, order := range in.Orders {
				if usedOrders[order.ID] || order.AARTypeID != car.AARTypeID {
					continue
				}
				dest, onWalk := industryStop[order.IndustryID]
				if !onWalk || dest < pos {
					continue
				}
				usedCars[car.ID] = true
				usedOrders[order.ID] = true
				assignments = append(assignments, Assignment{
					Car:        car,
					Order:      order,
					PickupStop: pos,
					SetoutStop: dest,
				})
				break
			}
		}
	}

	return Plan{
		Assignments: assignments,
		CarIDs:      carIDs(assignments),
		List:        buildList(in, assignments, now),
	}
}

func carIDs(assignments []Assignment) []string {
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.Car.ID
	}
	return ids
}

// buildList renders the assignments as an ordered switch list document.
func buildList(in PlanInput, assignments []Assignment, now time.Time) models.SwitchList {
	list := models.SwitchList{
		Stops:       make([]models.StationVisit, len(in.Stops)),
		GeneratedAt: now,
	}

	for pos, stop := range in.Stops {
		visit := models.StationVisit{
			StationID:   stop.StationID,
			StationName: stop.StationName,
			Pickups:     []models.Pickup{},
			Setouts:     []models.Setout{},
		}
		for _, a := range assignments {
			destName := in.Industries[a.Order.IndustryID].Name
			if a.PickupStop == pos {
				visit.Pickups = append(visit.Pickups, models.Pickup{
					CarID:                   a.Car.ID,
					CarReportingMarks:       a.Car.ReportingMarks,
					CarReportingNumber:      a.Car.ReportingNumber,
					CarType:                 a.Car.AARTypeID,
					DestinationIndustryID:   a.Order.IndustryID,
					DestinationIndustryName: destName,
					CarOrderID:              a.Order.ID,
				})
			}
			if a.SetoutStop == pos {
				visit.Setouts = append(visit.Setouts, models.Setout{
					CarID:                   a.Car.ID,
					CarType:                 a.Car.AARTypeID,
					DestinationIndustryID:   a.Order.IndustryID,
					DestinationIndustryName: destName,
					CarOrderID:              a.Order.ID,
				})
			}
		}
		list.TotalPickups += len(visit.Pickups)
		list.TotalSetouts += len(visit.Setouts)
		list.Stops[pos] = visit
	}

	list.FinalCarCount = list.TotalPickups - list.TotalSetouts
	return list
}
