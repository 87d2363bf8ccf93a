// File: tests/integration/setup_test.go
package integration

import (
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/common"
	"motormate_backend/internal/filestorage"
	"motormate_backend/internal/garage"
	"motormate_backend/internal/middleware"
	"motormate_backend/internal/notification"
	platformES "motormate_backend/internal/platform/elasticsearch"
	"motormate_backend/internal/profile"
	"motormate_backend/internal/vehicle"
)

// testEnv holds everything a test needs to drive the API and inspect state.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB

	customer profile.Profile
	owner    profile.Profile
	garage   garage.Garage
	car      vehicle.Car
	oil      garage.CatalogService
	brakes   garage.CatalogService
}

// testAuth is a stand-in for the Firebase middleware: it trusts headers set by
// the test itself and populates the same context keys the real one does.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if idStr := c.GetHeader("X-Test-User-ID"); idStr != "" {
			if id, err := uuid.Parse(idStr); err == nil {
				c.Set(common.UserIDKey, id)
			}
		}
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(common.UserRoleKey, role)
		}
		c.Next()
	}
}

// setupTestServer builds an API server over an in-memory sqlite database with
// real repositories, services, and handlers. Only authentication is swapped
// for a header-driven stub.
func setupTestServer(t *testing.T) (*testEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// The garages table is created by hand: its production column types
	// (text[]) are Postgres-specific. pq.StringArray round-trips through a
	// plain TEXT column.
	require.NoError(t, db.Exec(`CREATE TABLE garages (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		city TEXT NOT NULL,
		address TEXT NOT NULL,
		phone TEXT,
		specialties TEXT,
		rating REAL NOT NULL DEFAULT 0,
		rating_count INTEGER NOT NULL DEFAULT 0,
		latitude REAL,
		longitude REAL,
		image_url TEXT
	)`).Error)
	require.NoError(t, db.AutoMigrate(
		&profile.Profile{},
		&garage.CatalogService{},
		&garage.GarageService{},
		&vehicle.Car{},
		&booking.Booking{},
		&notification.Notification{},
	))

	logger := zap.NewNop()

	garageRepo := garage.NewGORMRepository(db)
	garageService := garage.NewService(garageRepo, &platformES.ESClientWrapper{}, filestorage.NewMockStorageService(), logger)
	garageHandler := garage.NewHandler(garageService, logger)

	vehicleRepo := vehicle.NewGORMRepository(db)

	notificationRepo := notification.NewGORMRepository(db)
	notificationService := notification.NewService(notificationRepo, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	bookingRepo := booking.NewGORMRepository(db)
	bookingService := booking.NewService(bookingRepo, garageRepo, vehicleRepo, notificationService, logger)
	bookingHandler := booking.NewHandler(bookingService, logger)

	router := gin.New()
	v1 := router.Group("/api/v1")
	authMW := testAuth()
	ownerMW := middleware.RequireGarageOwner()
	garageHandler.RegisterRoutes(v1, authMW, ownerMW)
	bookingHandler.RegisterRoutes(v1, authMW, ownerMW)
	notificationHandler.RegisterRoutes(v1, authMW)

	env := &testEnv{router: router, db: db}
	seedFixtures(t, env)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
	return env, cleanup
}

// seedFixtures creates a customer with one car, a garage owner with one
// garage, and two priced catalog services.
func seedFixtures(t *testing.T, env *testEnv) {
	t.Helper()

	env.customer = profile.Profile{
		FirebaseUID: "fb-customer-" + uuid.NewString()[:8],
		Email:       fmt.Sprintf("customer-%s@test.com", uuid.NewString()[:8]),
	}
	require.NoError(t, env.db.Create(&env.customer).Error)

	env.owner = profile.Profile{
		FirebaseUID:   "fb-owner-" + uuid.NewString()[:8],
		Email:         fmt.Sprintf("owner-%s@test.com", uuid.NewString()[:8]),
		IsGarageOwner: true,
	}
	require.NoError(t, env.db.Create(&env.owner).Error)

	env.garage = garage.Garage{
		BaseModel: common.BaseModel{ID: uuid.New()},
		OwnerID:   env.owner.ID,
		Name:      "Precision Auto",
		Slug:      "precision-auto-" + uuid.NewString()[:8],
		City:      "Addis Ababa",
		Address:   "Bole Road 12",
		Rating:    4.5,
	}
	require.NoError(t, env.db.Create(&env.garage).Error)

	env.car = vehicle.Car{
		OwnerID: env.customer.ID,
		Make:    "Toyota",
		Model:   "Corolla",
		Year:    2019,
	}
	require.NoError(t, env.db.Create(&env.car).Error)

	env.oil = garage.CatalogService{Name: "Oil Change " + uuid.NewString()[:8]}
	env.brakes = garage.CatalogService{Name: "Brake Inspection " + uuid.NewString()[:8]}
	require.NoError(t, env.db.Create(&env.oil).Error)
	require.NoError(t, env.db.Create(&env.brakes).Error)

	require.NoError(t, env.db.Create(&garage.GarageService{
		GarageID:    env.garage.ID,
		ServiceID:   env.oil.ID,
		Price:       35,
		IsAvailable: true,
	}).Error)
	require.NoError(t, env.db.Create(&garage.GarageService{
		GarageID:    env.garage.ID,
		ServiceID:   env.brakes.ID,
		Price:       120,
		IsAvailable: true,
	}).Error)
}

// tomorrowAt returns an appointment slot safely in the future.
func tomorrowAt(hour int) time.Time {
	next := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), hour, 0, 0, 0, time.UTC)
}
