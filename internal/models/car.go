package models

import "time"

// Car is a piece of rolling stock sitting at an industry between moves.
type Car struct {
	ID                 string     `gorm:"primaryKey;size:32" json:"id"`
	ReportingMarks     string     `gorm:"size:16" json:"reportingMarks"`
	ReportingNumber    string     `gorm:"size:16" json:"reportingNumber"`
	AARTypeID          string     `gorm:"size:32;index" json:"carType"`
	CurrentIndustryID  string     `gorm:"size:32;index" json:"currentIndustry"`
	HomeYardID         string     `gorm:"size:32" json:"homeYard"`
	InService          bool       `gorm:"default:true" json:"isInService"`
	SessionsAtLocation int        `gorm:"default:0" json:"sessionsAtCurrentLocation"`
	LastMoved          *time.Time `json:"lastMoved"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}
