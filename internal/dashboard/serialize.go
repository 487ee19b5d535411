package dashboard

import (
	"github.com/gin-gonic/gin"
	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
)

// trainView renders a train with its JSON columns expanded for the SPA.
func trainView(t *models.Train) (gin.H, error) {
	locos, err := t.Locomotives()
	if err != nil {
		return nil, opserr.Internal("failed to parse locomotive ids", err)
	}
	carIDs, err := t.AssignedCars()
	if err != nil {
		return nil, opserr.Internal("failed to parse assigned car ids", err)
	}
	list, err := t.SwitchList()
	if err != nil {
		return nil, opserr.Internal("failed to parse switch list", err)
	}
	if locos == nil {
		locos = []string{}
	}
	if carIDs == nil {
		carIDs = []string{}
	}

	return gin.H{
		"id":             t.ID,
		"name":           t.Name,
		"routeId":        t.RouteID,
		"sessionNumber":  t.SessionNumber,
		"status":         t.Status,
		"locomotiveIds":  locos,
		"maxCapacity":    t.MaxCapacity,
		"assignedCarIds": carIDs,
		"switchList":     list,
		"createdAt":      t.CreatedAt,
		"updatedAt":      t.UpdatedAt,
	}, nil
}

// sessionView renders the operating session, hiding snapshot internals but
// exposing whether a rollback is possible.
func sessionView(s *models.OperatingSession) gin.H {
	return gin.H{
		"currentSessionNumber": s.CurrentSessionNumber,
		"sessionDate":          s.SessionDate,
		"description":          s.Description,
		"canRollback":          s.CurrentSessionNumber > 1 && s.PreviousSnapshot != nil,
		"updatedAt":            s.UpdatedAt,
	}
}
