// Package orders generates pending car orders from industry demand.
package orders

import (
	"errors"
	"fmt"

	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
	"gorm.io/gorm"
)

// Opts holds parameters for an order-generation run.
type Opts struct {
	SessionNumber int      // 0 means use the current operating session
	IndustryIDs   []string // empty means all industries
	Force         bool     // create even when a matching open order exists
}

// Summary reports what an order-generation run produced.
type Summary struct {
	TotalOrdersGenerated int            `json:"totalOrdersGenerated"`
	IndustriesProcessed  int            `json:"industriesProcessed"`
	OrdersByIndustry     map[string]int `json:"ordersByIndustry"`
	OrdersByAARType      map[string]int `json:"ordersByAarType"`
}

// Generate creates pending car orders for every industry demand entry whose
// frequency divides the target session number. Entries that already have an
// open order for the same (industry, AAR type, session) are skipped unless
// opts.Force is set.
func Generate(db *gorm.DB, opts Opts) (*Summary, error) {
	sessionNumber := opts.SessionNumber
	if sessionNumber == 0 {
		var sess models.OperatingSession
		if err := db.Where("id = ?", models.SessionRowID).First(&sess).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, opserr.NotFound("no current operating session and no session number supplied")
			}
			return nil, opserr.Internal("failed to load operating session", fmt.Errorf("orders: load session: %w", err))
		}
		sessionNumber = sess.CurrentSessionNumber
	}

	q := db.Model(&models.Industry{})
	if len(opts.IndustryIDs) > 0 {
		q = q.Where("id IN ?", opts.IndustryIDs)
	}
	var industries []models.Industry
	if err := q.Order("id ASC").Find(&industries).Error; err != nil {
		return nil, opserr.Internal("failed to load industries", fmt.Errorf("orders: list industries: %w", err))
	}

	summary := &Summary{
		OrdersByIndustry: make(map[string]int),
		OrdersByAARType:  make(map[string]int),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, ind := range industries {
			entries, err := ind.Demand()
			if err != nil {
				return opserr.Internal("failed to parse industry demand", err)
			}
			summary.IndustriesProcessed++

			for _, entry := range entries {
				if entry.Frequency <= 0 || entry.CarsPerSession <= 0 {
					continue
				}
				if sessionNumber%entry.Frequency != 0 {
					continue
				}

				if !opts.Force {
					var open int64
					err := tx.Model(&models.CarOrder{}).
						Where("industry_id = ? AND aar_type_id = ? AND session_number = ? AND status <> ?",
							ind.ID, entry.AARTypeID, sessionNumber, models.OrderDelivered).
						Count(&open).Error
					if err != nil {
						return fmt.Errorf("orders: check existing orders: %w", err)
					}
					if open > 0 {
						continue
					}
				}

				for i := 0; i < entry.CarsPerSession; i++ {
					id, err := models.NewID("ord")
					if err != nil {
						return fmt.Errorf("orders: %w", err)
					}
					order := models.CarOrder{
						ID:            id,
						IndustryID:    ind.ID,
						AARTypeID:     entry.AARTypeID,
						SessionNumber: sessionNumber,
						Status:        models.OrderPending,
					}
					if err := tx.Create(&order).Error; err != nil {
						return fmt.Errorf("orders: create order for %s/%s: %w", ind.ID, entry.AARTypeID, err)
					}
					summary.TotalOrdersGenerated++
					summary.OrdersByIndustry[ind.ID]++
					summary.OrdersByAARType[entry.AARTypeID]++
				}
			}
		}
		return nil
	})
	if err != nil {
		var oe *opserr.Error
		if errors.As(err, &oe) {
			return nil, oe
		}
		return nil, opserr.Internal("order generation failed", err)
	}

	return summary, nil
}
