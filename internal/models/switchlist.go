package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SwitchList is the generated, ordered plan of pickups and setouts a train
// executes along its route for one session. It is stored as a JSON document
// on the Train row.
type SwitchList struct {
	Stops         []StationVisit `json:"stops"`
	TotalPickups  int            `json:"totalPickups"`
	TotalSetouts  int            `json:"totalSetouts"`
	FinalCarCount int            `json:"finalCarCount"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

// StationVisit is one stop of the walk, with the work to perform there.
type StationVisit struct {
	StationID   string   `json:"stationId"`
	StationName string   `json:"stationName"`
	Pickups     []Pickup `json:"pickups"`
	Setouts     []Setout `json:"setouts"`
}

// Pickup is a car collected at a stop, bound for a destination industry.
type Pickup struct {
	CarID                   string `json:"carId"`
	CarReportingMarks       string `json:"carReportingMarks"`
	CarReportingNumber      string `json:"carReportingNumber"`
	CarType                 string `json:"carType"`
	DestinationIndustryID   string `json:"destinationIndustryId"`
	DestinationIndustryName string `json:"destinationIndustryName"`
	CarOrderID              string `json:"carOrderId"`
}

// Setout is a car dropped at its destination industry.
type Setout struct {
	CarID                   string `json:"carId"`
	CarType                 string `json:"carType"`
	DestinationIndustryID   string `json:"destinationIndustryId"`
	DestinationIndustryName string `json:"destinationIndustryName"`
	CarOrderID              string `json:"carOrderId"`
}

// Marshal renders the switch list as a JSON column value.
func (s *SwitchList) Marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("models: marshal switch list: %w", err)
	}
	return string(data), nil
}
