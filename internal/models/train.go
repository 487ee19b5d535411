package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Train statuses. Planned trains may generate a switch list; InProgress trains
// may complete or cancel; Completed and Cancelled are terminal.
const (
	TrainPlanned    = "Planned"
	TrainInProgress = "In Progress"
	TrainCompleted  = "Completed"
	TrainCancelled  = "Cancelled"
)

// Train is an operating-session run over a route.
type Train struct {
	ID             string    `gorm:"primaryKey;size:32" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	RouteID        string    `gorm:"size:32;index" json:"routeId"`
	SessionNumber  int       `gorm:"index" json:"sessionNumber"`
	Status         string    `gorm:"size:16;default:Planned;index" json:"status"`
	LocomotiveIDs  string    `gorm:"type:json" json:"locomotiveIds"`
	MaxCapacity    int       `gorm:"not null" json:"maxCapacity"`
	AssignedCarIDs string    `gorm:"type:json" json:"assignedCarIds"`
	SwitchListDoc  *string   `gorm:"column:switch_list;type:json" json:"switchList"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Locomotives parses the train's locomotive id list.
func (t *Train) Locomotives() ([]string, error) {
	return unmarshalIDs(t.LocomotiveIDs, "locomotive ids", t.ID)
}

// SetLocomotives stores the locomotive id list as JSON.
func (t *Train) SetLocomotives(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("models: marshal locomotive ids for train %s: %w", t.ID, err)
	}
	t.LocomotiveIDs = string(data)
	return nil
}

// AssignedCars parses the ids of cars currently committed to the train.
func (t *Train) AssignedCars() ([]string, error) {
	return unmarshalIDs(t.AssignedCarIDs, "assigned car ids", t.ID)
}

// SwitchList parses the train's stored switch list, or returns nil if none
// has been generated.
func (t *Train) SwitchList() (*SwitchList, error) {
	if t.SwitchListDoc == nil || *t.SwitchListDoc == "" {
		return nil, nil
	}
	var sl SwitchList
	if err := json.Unmarshal([]byte(*t.SwitchListDoc), &sl); err != nil {
		return nil, fmt.Errorf("models: parse switch list for train %s: %w", t.ID, err)
	}
	return &sl, nil
}

func unmarshalIDs(raw, what, trainID string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("models: parse %s for train %s: %w", what, trainID, err)
	}
	return ids, nil
}

// MarshalIDs renders an id list as a JSON column value. A nil list marshals
// as an empty JSON array so the column is never SQL NULL.
func MarshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("models: marshal id list: %w", err)
	}
	return string(data), nil
}
