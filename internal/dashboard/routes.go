package dashboard

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
	"github.com/zulandar/stationmaster/internal/orders"
	"github.com/zulandar/stationmaster/internal/session"
	"github.com/zulandar/stationmaster/internal/switchlist"
	"github.com/zulandar/stationmaster/internal/telegraph"
	"github.com/zulandar/stationmaster/internal/train"
	"gorm.io/gorm"
)

// registerRoutes sets up all API routes on the Gin router.
func registerRoutes(router *gin.Engine, db *gorm.DB, announcer telegraph.Announcer) {
	api := router.Group("/api")

	// Entity reads.
	api.GET("/stations", handleList[models.Station](db))
	api.GET("/industries", handleList[models.Industry](db))
	api.GET("/cars", handleList[models.Car](db))
	api.GET("/orders", handleOrderList(db))
	api.GET("/trains", handleTrainList(db))
	api.GET("/trains/:id", handleTrainDetail(db))

	// Core operations.
	api.POST("/orders/generate", handleGenerateOrders(db, announcer))
	api.POST("/trains/:id/switchlist", handleGenerateSwitchList(db, announcer))
	api.POST("/trains/:id/complete", handleCompleteTrain(db, announcer))
	api.POST("/trains/:id/cancel", handleCancelTrain(db, announcer))

	// Session lifecycle.
	api.GET("/session", handleCurrentSession(db))
	api.POST("/session/advance", handleAdvanceSession(db, announcer))
	api.POST("/session/rollback", handleRollbackSession(db, announcer))
	api.PUT("/session/description", handleUpdateDescription(db))
}

// fail renders a domain error with its mapped HTTP status.
func fail(c *gin.Context, err error) {
	c.JSON(opserr.HTTPStatus(err), gin.H{"error": opserr.Message(err)})
}

// announce delivers an event when an announcer is configured.
func announce(c *gin.Context, a telegraph.Announcer, ev telegraph.Event) {
	if a != nil {
		a.Announce(c.Request.Context(), ev)
	}
}

func handleList[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []T
		if err := db.Order("id ASC").Find(&records).Error; err != nil {
			fail(c, opserr.Internal("failed to list records", err))
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func handleOrderList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&models.CarOrder{})
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if industryID := c.Query("industryId"); industryID != "" {
			q = q.Where("industry_id = ?", industryID)
		}
		var records []models.CarOrder
		if err := q.Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
			fail(c, opserr.Internal("failed to list orders", err))
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func handleTrainList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		trains, err := train.List(db, c.Query("status"), 0)
		if err != nil {
			fail(c, err)
			return
		}
		views := make([]gin.H, len(trains))
		for i := range trains {
			view, err := trainView(&trains[i])
			if err != nil {
				fail(c, err)
				return
			}
			views[i] = view
		}
		c.JSON(http.StatusOK, views)
	}
}

func handleTrainDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := train.Get(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		view, err := trainView(t)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func handleGenerateOrders(db *gorm.DB, announcer telegraph.Announcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			SessionNumber int      `json:"sessionNumber"`
			IndustryIDs   []string `json:"industryIds"`
			Force         bool     `json:"force"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				fail(c, opserr.Validation("malformed request body"))
				return
			}
		}
		summary, err := orders.Generate(db, orders.Opts{
			SessionNumber: req.SessionNumber,
			IndustryIDs:   req.IndustryIDs,
			Force:         req.Force,
		})
		if err != nil {
			fail(c, err)
			return
		}
		announce(c, announcer, telegraph.Event{
			Title:    "Car orders generated",
			Severity: telegraph.SeverityInfo,
			Fields: []telegraph.Field{
				{Name: "Orders", Value: fmt.Sprintf("%d", summary.TotalOrdersGenerated)},
				{Name: "Industries", Value: fmt.Sprintf("%d", summary.IndustriesProcessed)},
			},
		})
		c.JSON(http.StatusOK, summary)
	}
}

func handleGenerateSwitchList(db *gorm.DB, announcer telegraph.Announcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, stats, err := switchlist.Generate(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		view, err := trainView(t)
		if err != nil {
			fail(c, err)
			return
		}
		view["stats"] = stats
		announce(c, announcer, telegraph.Event{
			Title:    fmt.Sprintf("Switch list ready for %s", t.Name),
			Severity: telegraph.SeverityInfo,
			Fields: []telegraph.Field{
				{Name: "Stations served", Value: fmt.Sprintf("%d", stats.StationsServed)},
				{Name: "Cars assigned", Value: fmt.Sprintf("%d", stats.CarsAssigned)},
			},
		})
		c.JSON(http.StatusOK, view)
	}
}

func handleCompleteTrain(db *gorm.DB, announcer telegraph.Announcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, stats, err := train.Complete(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		view, err := trainView(t)
		if err != nil {
			fail(c, err)
			return
		}
		view["stats"] = stats
		announce(c, announcer, telegraph.Event{
			Title:    fmt.Sprintf("Train %s completed", t.Name),
			Severity: telegraph.SeveritySuccess,
			Fields: []telegraph.Field{
				{Name: "Cars moved", Value: fmt.Sprintf("%d", stats.CarsMoved)},
			},
		})
		c.JSON(http.StatusOK, view)
	}
}

func handleCancelTrain(db *gorm.DB, announcer telegraph.Announcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, stats, err := train.Cancel(db, c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		view, err := trainView(t)
		if err != nil {
			fail(c, err)
			return
		}
		view["stats"] = stats
		announce(c, announcer, telegraph.Event{
			Title:    fmt.Sprintf("Train %s cancelled", t.Name),
			Severity: telegraph.SeverityWarning,
			Fields: []telegraph.Field{
				{Name: "Orders reverted", Value: fmt.Sprintf("%d", stats.OrdersReverted)},
			},
		})
		c.JSON(http.StatusOK, view)
	}
}

func handleCurrentSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := session.Current(db)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(sess))
	}
}

func handleAdvanceSession(db *gorm.DB, announcer telegraph.Announcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Description string `json:"description"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				fail(c, opserr.Validation("malformed request body"))
				return
			}
		}
		sess, stats, err := session.Advance(db, req.Description)
		if err != nil {
			fail(c, err)
			return
		}
		view := sessionView(sess)
		view["stats"] = stats
		announce(c, announcer, telegraph.Event{
			Title:    fmt.Sprintf("Advanced to Operating Session %d", sess.CurrentSessionNumber),
			Body:     sess.Description,
			Severity: telegraph.SeveritySuccess,
			Fields: []telegraph.Field{
				{Name: "Trains deleted", Value: fmt.Sprintf("%d", stats.TrainsDeleted)},
				{Name: "Active trains reverted", Value: fmt.Sprintf("%d", stats.ActiveTrainsReverted)},
			},
		})
		c.JSON(http.StatusOK, view)
	}
}

func handleRollbackSession(db *gorm.DB, announcer telegraph.Announcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, stats, err := session.Rollback(db)
		if err != nil {
			fail(c, err)
			return
		}
		view := sessionView(sess)
		view["stats"] = stats
		announce(c, announcer, telegraph.Event{
			Title:    fmt.Sprintf("Rolled back to Operating Session %d", sess.CurrentSessionNumber),
			Severity: telegraph.SeverityWarning,
			Fields: []telegraph.Field{
				{Name: "Cars restored", Value: fmt.Sprintf("%d", stats.CarsRestored)},
				{Name: "Trains restored", Value: fmt.Sprintf("%d", stats.TrainsRestored)},
			},
		})
		c.JSON(http.StatusOK, view)
	}
}

func handleUpdateDescription(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, opserr.Validation("malformed request body"))
			return
		}
		sess, err := session.UpdateDescription(db, req.Description)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, sessionView(sess))
	}
}
