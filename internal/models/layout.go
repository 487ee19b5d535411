// Package models defines the GORM schema for the operating-session tracker.
package models

// Station is a named point on the layout that trains pass through.
type Station struct {
	ID   string `gorm:"primaryKey;size:32" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

// AARType is a standardized rolling-stock category (boxcar, flatcar, ...).
type AARType struct {
	ID   string `gorm:"primaryKey;size:32" json:"id"`
	Code string `gorm:"size:8" json:"code"`
	Name string `gorm:"not null" json:"name"`
}

// Locomotive is a motive-power record assignable to trains.
type Locomotive struct {
	ID              string `gorm:"primaryKey;size:32" json:"id"`
	ReportingMarks  string `gorm:"size:16" json:"reportingMarks"`
	ReportingNumber string `gorm:"size:16" json:"reportingNumber"`
	InService       bool   `gorm:"default:true" json:"isInService"`
}
