package switchlist

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
		&models.Station{},
		&models.Industry{},
		&models.Locomotive{},
		&models.Route{},
		&models.Car{},
		&models.Train{},
		&models.CarOrder{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedLayout builds the yard1 → station1 → yard2 fixture with one in-service
// locomotive.
func seedLayout(t *testing.T, db *gorm.DB) {
	t.Helper()
	records := []interface{}{
		&models.Station{ID: "sta-yard1", Name: "Eastport"},
		&models.Station{ID: "sta-town1", Name: "Milton"},
		&models.Station{ID: "sta-yard2", Name: "Westbrook"},
		&models.Industry{ID: "ind-yard1", Name: "Eastport Yard", StationID: "sta-yard1", IsYard: true},
		&models.Industry{ID: "ind-mill", Name: "Lumber Mill", StationID: "sta-town1"},
		&models.Industry{ID: "ind-yard2", Name: "Westbrook Yard", StationID: "sta-yard2", IsYard: true},
		&models.Locomotive{ID: "loc-00001", ReportingMarks: "SMRR", ReportingNumber: "4401", InService: true},
	}
	for _, r := range records {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	route := models.Route{ID: "rte-main", Name: "Mainline", OriginYardID: "ind-yard1", TerminationYardID: "ind-yard2"}
	if err := route.SetStationIDs([]string{"sta-town1"}); err != nil {
		t.Fatalf("seed route: %v", err)
	}
	if err := db.Create(&route).Error; err != nil {
		t.Fatalf("seed route: %v", err)
	}
}

// seedTrain creates a Planned train on the mainline route.
func seedTrain(t *testing.T, db *gorm.DB, id string, capacity int) {
	t.Helper()
	tr := models.Train{
		ID:            id,
		Name:          "Local 123",
		RouteID:       "rte-main",
		SessionNumber: 1,
		Status:        models.TrainPlanned,
		MaxCapacity:   capacity,
	}
	if err := tr.SetLocomotives([]string{"loc-00001"}); err != nil {
		t.Fatalf("seed train: %v", err)
	}
	if err := db.Create(&tr).Error; err != nil {
		t.Fatalf("seed train: %v", err)
	}
}

func seedCar(t *testing.T, db *gorm.DB, id, aarType, industry string) {
	t.Helper()
	car := models.Car{
		ID: id, ReportingMarks: "SMRR", ReportingNumber: id[4:],
		AARTypeID: aarType, CurrentIndustryID: industry, HomeYardID: "ind-yard1", InService: true,
	}
	if err := db.Create(&car).Error; err != nil {
		t.Fatalf("seed car: %v", err)
	}
}

func seedOrder(t *testing.T, db *gorm.DB, id, aarType, industry string, createdAt time.Time) {
	t.Helper()
	order := models.CarOrder{
		ID: id, IndustryID: industry, AARTypeID: aarType,
		SessionNumber: 1, Status: models.OrderPending, CreatedAt: createdAt,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestGenerate_Local123Scenario(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	seedTrain(t, db, "trn-00001", 20)
	seedCar(t, db, "car-00001", "flatcar", "ind-yard1")
	seedOrder(t, db, "ord-00001", "flatcar", "ind-mill", time.Now())

	updated, stats, err := Generate(db, "trn-00001")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if updated.Status != models.TrainInProgress {
		t.Errorf("train status = %q, want In Progress", updated.Status)
	}
	if stats.CarsAssigned != 1 {
		t.Errorf("CarsAssigned = %d, want 1", stats.CarsAssigned)
	}
	if stats.StationsServed != 3 {
		t.Errorf("StationsServed = %d, want 3", stats.StationsServed)
	}

	list, err := updated.SwitchList()
	if err != nil {
		t.Fatalf("SwitchList: %v", err)
	}
	if list == nil || list.TotalPickups != 1 {
		t.Fatalf("switch list = %+v, want 1 pickup", list)
	}

	carIDs, err := updated.AssignedCars()
	if err != nil {
		t.Fatalf("AssignedCars: %v", err)
	}
	if len(carIDs) != 1 || carIDs[0] != "car-00001" {
		t.Errorf("assigned cars = %v", carIDs)
	}

	var order models.CarOrder
	if err := db.Where("id = ?", "ord-00001").First(&order).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != models.OrderAssigned {
		t.Errorf("order status = %q, want assigned", order.Status)
	}
	if order.AssignedCarID == nil || *order.AssignedCarID != "car-00001" {
		t.Errorf("order AssignedCarID = %v", order.AssignedCarID)
	}
	if order.AssignedTrainID == nil || *order.AssignedTrainID != "trn-00001" {
		t.Errorf("order AssignedTrainID = %v", order.AssignedTrainID)
	}
}

func TestGenerate_NonPlannedFailsUnmodified(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	seedTrain(t, db, "trn-00001", 20)
	if err := db.Model(&models.Train{}).Where("id = ?", "trn-00001").
		Update("status", models.TrainInProgress).Error; err != nil {
		t.Fatalf("set status: %v", err)
	}

	_, _, err := Generate(db, "trn-00001")
	if !opserr.IsKind(err, opserr.KindInvalidTransition) {
		t.Fatalf("error = %v, want InvalidTransition", err)
	}
	want := "Cannot generate switch list for train with status: In Progress"
	if opserr.Message(err) != want {
		t.Errorf("message = %q, want %q", opserr.Message(err), want)
	}

	var tr models.Train
	if err := db.Where("id = ?", "trn-00001").First(&tr).Error; err != nil {
		t.Fatalf("load train: %v", err)
	}
	if tr.SwitchListDoc != nil {
		t.Error("failed generation wrote a switch list")
	}
}

func TestGenerate_TrainNotFound(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)

	_, _, err := Generate(db, "trn-nope")
	if !opserr.IsKind(err, opserr.KindNotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}

func TestGenerate_OutOfServiceLocomotive(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	seedTrain(t, db, "trn-00001", 20)
	if err := db.Model(&models.Locomotive{}).Where("id = ?", "loc-00001").
		Update("in_service", false).Error; err != nil {
		t.Fatalf("sideline locomotive: %v", err)
	}

	_, _, err := Generate(db, "trn-00001")
	if !opserr.IsKind(err, opserr.KindValidation) {
		t.Errorf("error = %v, want Validation", err)
	}

	var tr models.Train
	if err := db.Where("id = ?", "trn-00001").First(&tr).Error; err != nil {
		t.Fatalf("load train: %v", err)
	}
	if tr.Status != models.TrainPlanned {
		t.Errorf("train status = %q, want Planned (no partial write)", tr.Status)
	}
}

func TestGenerate_MissingLocomotive(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	tr := models.Train{
		ID: "trn-00001", Name: "Local 123", RouteID: "rte-main",
		SessionNumber: 1, Status: models.TrainPlanned, MaxCapacity: 20,
	}
	if err := tr.SetLocomotives([]string{"loc-ghost"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&tr).Error; err != nil {
		t.Fatal(err)
	}

	_, _, err := Generate(db, "trn-00001")
	if !opserr.IsKind(err, opserr.KindNotFound) {
		t.Errorf("error = %v, want NotFound", err)
	}
}

func TestGenerate_NonYardEndpoint(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	route := models.Route{ID: "rte-bad", Name: "Bad", OriginYardID: "ind-mill", TerminationYardID: "ind-yard2"}
	if err := db.Create(&route).Error; err != nil {
		t.Fatal(err)
	}
	tr := models.Train{
		ID: "trn-00001", Name: "Local 123", RouteID: "rte-bad",
		SessionNumber: 1, Status: models.TrainPlanned, MaxCapacity: 20,
	}
	if err := tr.SetLocomotives([]string{"loc-00001"}); err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&tr).Error; err != nil {
		t.Fatal(err)
	}

	_, _, err := Generate(db, "trn-00001")
	if !opserr.IsKind(err, opserr.KindValidation) {
		t.Errorf("error = %v, want Validation", err)
	}
}

func TestGenerate_CapacityNeverExceeded(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	seedTrain(t, db, "trn-00001", 1)
	seedCar(t, db, "car-00001", "flatcar", "ind-yard1")
	seedCar(t, db, "car-00002", "flatcar", "ind-yard1")
	now := time.Now()
	seedOrder(t, db, "ord-00001", "flatcar", "ind-mill", now)
	seedOrder(t, db, "ord-00002", "flatcar", "ind-mill", now.Add(time.Second))

	updated, stats, err := Generate(db, "trn-00001")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if stats.CarsAssigned != 1 {
		t.Errorf("CarsAssigned = %d, want 1", stats.CarsAssigned)
	}
	carIDs, err := updated.AssignedCars()
	if err != nil {
		t.Fatal(err)
	}
	if len(carIDs) > updated.MaxCapacity {
		t.Errorf("assigned %d cars over capacity %d", len(carIDs), updated.MaxCapacity)
	}
}

func TestGenerate_SkipsCarsClaimedElsewhere(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	seedTrain(t, db, "trn-00001", 20)
	seedCar(t, db, "car-00001", "flatcar", "ind-yard1")
	seedOrder(t, db, "ord-00001", "flatcar", "ind-mill", time.Now())

	// Another train already holds this car through an open order.
	carID := "car-00001"
	otherTrain := "trn-other"
	claimed := models.CarOrder{
		ID: "ord-held", IndustryID: "ind-yard2", AARTypeID: "flatcar",
		SessionNumber: 1, Status: models.OrderAssigned,
		AssignedCarID: &carID, AssignedTrainID: &otherTrain,
	}
	if err := db.Create(&claimed).Error; err != nil {
		t.Fatal(err)
	}

	_, stats, err := Generate(db, "trn-00001")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if stats.CarsAssigned != 0 {
		t.Errorf("CarsAssigned = %d, want 0 (car already claimed)", stats.CarsAssigned)
	}
}

func TestValidateRequirements_OK(t *testing.T) {
	db := testDB(t)
	seedLayout(t, db)
	seedTrain(t, db, "trn-00001", 20)

	if err := ValidateRequirements(db, "trn-00001"); err != nil {
		t.Errorf("ValidateRequirements: %v", err)
	}
}
