package models

import "time"

// Car order statuses. Orders are created pending, become assigned when a
// switch list commits them to a train, and end delivered when the train
// completes. Cancellation and session cleanup revert them to pending.
const (
	OrderPending   = "pending"
	OrderAssigned  = "assigned"
	OrderInTransit = "in-transit"
	OrderDelivered = "delivered"
)

// CarOrder is a standing request for one car of a given AAR type at an
// industry for a given session.
type CarOrder struct {
	ID              string    `gorm:"primaryKey;size:32" json:"id"`
	IndustryID      string    `gorm:"size:32;index" json:"industryId"`
	AARTypeID       string    `gorm:"size:32;index" json:"aarTypeId"`
	SessionNumber   int       `gorm:"index" json:"sessionNumber"`
	Status          string    `gorm:"size:16;default:pending;index" json:"status"`
	AssignedCarID   *string   `gorm:"size:32" json:"assignedCarId"`
	AssignedTrainID *string   `gorm:"size:32" json:"assignedTrainId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Terminal reports whether the order can no longer claim a car.
func (o *CarOrder) Terminal() bool {
	return o.Status == OrderDelivered
}
