package orders

import (
	"testing"
	"time"

	"github.com/zulandar/stationmaster/internal/models"
	"github.com/zulandar/stationmaster/internal/opserr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with all required tables.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Industry{},
		&models.CarOrder{},
		&models.OperatingSession{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedIndustry(t *testing.T, db *gorm.DB, id string, entries []models.DemandEntry) {
	t.Helper()
	ind := models.Industry{ID: id, Name: id, StationID: "sta-00001"}
	if err := ind.SetDemand(entries); err != nil {
		t.Fatalf("set demand: %v", err)
	}
	if err := db.Create(&ind).Error; err != nil {
		t.Fatalf("create industry: %v", err)
	}
}

func countOrders(t *testing.T, db *gorm.DB, industryID, aarTypeID string, session int) int64 {
	t.Helper()
	var n int64
	err := db.Model(&models.CarOrder{}).
		Where("industry_id = ? AND aar_type_id = ? AND session_number = ?", industryID, aarTypeID, session).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count orders: %v", err)
	}
	return n
}

func TestGenerate_DemandPulse(t *testing.T) {
	db := testDB(t)
	seedIndustry(t, db, "lumber-mill", []models.DemandEntry{
		{AARTypeID: "flatcar", CarsPerSession: 2, Frequency: 1},
	})

	summary, err := Generate(db, Opts{SessionNumber: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.TotalOrdersGenerated != 2 {
		t.Errorf("TotalOrdersGenerated = %d, want 2", summary.TotalOrdersGenerated)
	}
	if summary.IndustriesProcessed != 1 {
		t.Errorf("IndustriesProcessed = %d, want 1", summary.IndustriesProcessed)
	}
	if summary.OrdersByIndustry["lumber-mill"] != 2 {
		t.Errorf("OrdersByIndustry = %v", summary.OrdersByIndustry)
	}
	if summary.OrdersByAARType["flatcar"] != 2 {
		t.Errorf("OrdersByAARType = %v", summary.OrdersByAARType)
	}

	var generated []models.CarOrder
	if err := db.Find(&generated).Error; err != nil {
		t.Fatalf("load orders: %v", err)
	}
	for _, o := range generated {
		if o.IndustryID != "lumber-mill" || o.AARTypeID != "flatcar" || o.SessionNumber != 2 {
			t.Errorf("order = %+v", o)
		}
		if o.Status != models.OrderPending {
			t.Errorf("order status = %q, want pending", o.Status)
		}
	}
}

func TestGenerate_SkipsExistingOpenOrders(t *testing.T) {
	db := testDB(t)
	seedIndustry(t, db, "lumber-mill", []models.DemandEntry{
		{AARTypeID: "flatcar", CarsPerSession: 2, Frequency: 1},
	})

	if _, err := Generate(db, Opts{SessionNumber: 2}); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	summary, err := Generate(db, Opts{SessionNumber: 2})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if summary.TotalOrdersGenerated != 0 {
		t.Errorf("duplicate run generated %d orders, want 0", summary.TotalOrdersGenerated)
	}
	if got := countOrders(t, db, "lumber-mill", "flatcar", 2); got != 2 {
		t.Errorf("order count = %d, want 2", got)
	}
}

func TestGenerate_ForceCreatesDuplicates(t *testing.T) {
	db := testDB(t)
	seedIndustry(t, db, "lumber-mill", []models.DemandEntry{
		{AARTypeID: "flatcar", CarsPerSession: 2, Frequency: 1},
	})

	if _, err := Generate(db, Opts{SessionNumber: 2}); err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	summary, err := Generate(db, Opts{SessionNumber: 2, Force: true})
	if err != nil {
		t.Fatalf("forced Generate: %v", err)
	}
	if summary.TotalOrdersGenerated != 2 {
		t.Errorf("forced run generated %d orders, want 2", summary.TotalOrdersGenerated)
	}
	if got := countOrders(t, db, "lumber-mill", "flatcar", 2); got != 4 {
		t.Errorf("order count = %d, want 4", got)
	}
}

func TestGenerate_FrequencyGate(t *testing.T) {
	db := testDB(t)
	seedIndustry(t, db, "ind-quarry", []models.DemandEntry{
		{AARTypeID: "hopper", CarsPerSession: 1, Frequency: 3},
	})

	summary, err := Generate(db, Opts{SessionNumber: 2})
	if err != nil {
		t.Fatalf("Generate session 2: %v", err)
	}
	if summary.TotalOrdersGenerated != 0 {
		t.Errorf("session 2 generated %d orders, want 0 (frequency 3)", summary.TotalOrdersGenerated)
	}

	summary, err = Generate(db, Opts{SessionNumber: 3})
	if err != nil {
		t.Fatalf("Generate session 3: %v", err)
	}
	if summary.TotalOrdersGenerated != 1 {
		t.Errorf("session 3 generated %d orders, want 1", summary.TotalOrdersGenerated)
	}
}

func TestGenerate_IndustryFilter(t *testing.T) {
	db := testDB(t)
	seedIndustry(t, db, "ind-a", []models.DemandEntry{{AARTypeID: "boxcar", CarsPerSession: 1, Frequency: 1}})
	seedIndustry(t, db, "ind-b", []models.DemandEntry{{AARTypeID: "boxcar", CarsPerSession: 1, Frequency: 1}})

	summary, err := Generate(db, Opts{SessionNumber: 1, IndustryIDs: []string{"ind-a"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.IndustriesProcessed != 1 || summary.TotalOrdersGenerated != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if got := countOrders(t, db, "ind-b", "boxcar", 1); got != 0 {
		t.Errorf("filtered-out industry got %d orders", got)
	}
}

func TestGenerate_NoSessionFails(t *testing.T) {
	db := testDB(t)
	seedIndustry(t, db, "ind-a", []models.DemandEntry{{AARTypeID: "boxcar", CarsPerSession: 1, Frequency: 1}})

	_, err := Generate(db, Opts{})
	if err == nil {
		t.Fatal("Generate with no session: want error")
	}
	if !opserr.IsKind(err, opserr.KindNotFound) {
		t.Errorf("error kind = %v, want NotFound", err)
	}
}

func TestGenerate_UsesCurrentSession(t *testing.T) {
	db := testDB(t)
	sess := models.OperatingSession{
		ID:                   models.SessionRowID,
		CurrentSessionNumber: 4,
		SessionDate:          time.Now(),
		Version:              1,
	}
	if err := db.Create(&sess).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	seedIndustry(t, db, "ind-a", []models.DemandEntry{{AARTypeID: "boxcar", CarsPerSession: 1, Frequency: 2}})

	summary, err := Generate(db, Opts{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.TotalOrdersGenerated != 1 {
		t.Errorf("generated %d, want 1 (session 4, frequency 2)", summary.TotalOrdersGenerated)
	}
	if got := countOrders(t, db, "ind-a", "boxcar", 4); got != 1 {
		t.Errorf("orders tagged with wrong session; count at 4 = %d", got)
	}
}

func TestTransition_OrderStateMachine(t *testing.T) {
	tests := []struct {
		from   string
		event  string
		want   string
		wantOK bool
	}{
		{models.OrderPending, EventAssign, models.OrderAssigned, true},
		{models.OrderAssigned, EventDeliver, models.OrderDelivered, true},
		{models.OrderAssigned, EventRevert, models.OrderPending, true},
		{models.OrderInTransit, EventDeliver, models.OrderDelivered, true},
		{models.OrderInTransit, EventRevert, models.OrderPending, true},
		{models.OrderPending, EventDeliver, "", false},
		{models.OrderDelivered, EventRevert, "", false},
		{models.OrderDelivered, EventAssign, "", false},
		{"unknown", EventAssign, "", false},
	}
	for _, tt := range tests {
		got, ok := Transition(tt.from, tt.event)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Transition(%q, %q) = (%q, %v), want (%q, %v)",
				tt.from, tt.event, got, ok, tt.want, tt.wantOK)
		}
	}
}
