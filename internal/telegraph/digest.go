package telegraph

import (
	"fmt"

	"github.com/zulandar/stationmaster/internal/models"
	"gorm.io/gorm"
)

// Digest summarizes the current operating session as an announceable event:
// session number, train counts by status, open orders, and cars in service.
func Digest(db *gorm.DB) (Event, error) {
	var sess models.OperatingSession
	if err := db.Where("id = ?", models.SessionRowID).First(&sess).Error; err != nil {
		return Event{}, fmt.Errorf("telegraph: digest session: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int
	}
	var trainCounts []statusCount
	if err := db.Model(&models.Train{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status ASC").
		Find(&trainCounts).Error; err != nil {
		return Event{}, fmt.Errorf("telegraph: digest trains: %w", err)
	}

	var pendingOrders int64
	if err := db.Model(&models.CarOrder{}).
		Where("status = ?", models.OrderPending).
		Count(&pendingOrders).Error; err != nil {
		return Event{}, fmt.Errorf("telegraph: digest orders: %w", err)
	}

	var carsInService int64
	if err := db.Model(&models.Car{}).
		Where("in_service = ?", true).
		Count(&carsInService).Error; err != nil {
		return Event{}, fmt.Errorf("telegraph: digest cars: %w", err)
	}

	ev := Event{
		Title:    fmt.Sprintf("Operating Session %d digest", sess.CurrentSessionNumber),
		Body:     sess.Description,
		Severity: SeverityInfo,
		Fields: []Field{
			{Name: "Pending orders", Value: fmt.Sprintf("%d", pendingOrders)},
			{Name: "Cars in service", Value: fmt.Sprintf("%d", carsInService)},
		},
	}
	for _, tc := range trainCounts {
		ev.Fields = append(ev.Fields, Field{
			Name:  fmt.Sprintf("Trains %s", tc.Status),
			Value: fmt.Sprintf("%d", tc.Count),
		})
	}
	return ev, nil
}
