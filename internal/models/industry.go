package models

import (
	"encoding/json"
	"fmt"
)

// Industry is a car destination on the layout. Yards are industries flagged
// as route endpoints.
type Industry struct {
	ID           string `gorm:"primaryKey;size:32" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	StationID    string `gorm:"size:32;index" json:"stationId"`
	IsYard       bool   `gorm:"default:false" json:"isYard"`
	DemandConfig string `gorm:"type:json" json:"-"`
}

// DemandEntry is one line of an industry's per-session car demand.
type DemandEntry struct {
	AARTypeID      string `json:"aarTypeId"`
	CarsPerSession int    `json:"carsPerSession"`
	Frequency      int    `json:"frequency"` // sessions between demand pulses
}

// Demand parses the industry's demand configuration.
func (i *Industry) Demand() ([]DemandEntry, error) {
	if i.DemandConfig == "" {
		return nil, nil
	}
	var entries []DemandEntry
	if err := json.Unmarshal([]byte(i.DemandConfig), &entries); err != nil {
		return nil, fmt.Errorf("models: parse demand config for industry %s: %w", i.ID, err)
	}
	return entries, nil
}

// SetDemand stores the demand configuration as JSON.
func (i *Industry) SetDemand(entries []DemandEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("models: marshal demand config for industry %s: %w", i.ID, err)
	}
	i.DemandConfig = string(data)
	return nil
}

// Route is an ordered yard-to-yard path with intermediate stations.
type Route struct {
	ID                string `gorm:"primaryKey;size:32" json:"id"`
	Name              string `gorm:"not null" json:"name"`
	OriginYardID      string `gorm:"size:32;not null" json:"originYard"`
	TerminationYardID string `gorm:"size:32;not null" json:"terminationYard"`
	StationSequence   string `gorm:"type:json" json:"-"`
}

// StationIDs parses the route's intermediate station sequence. The sequence
// may be empty for a direct yard-to-yard route.
func (r *Route) StationIDs() ([]string, error) {
	if r.StationSequence == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(r.StationSequence), &ids); err != nil {
		return nil, fmt.Errorf("models: parse station sequence for route %s: %w", r.ID, err)
	}
	return ids, nil
}

// SetStationIDs stores the intermediate station sequence as JSON.
func (r *Route) SetStationIDs(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("models: marshal station sequence for route %s: %w", r.ID, err)
	}
	r.StationSequence = string(data)
	return nil
}
