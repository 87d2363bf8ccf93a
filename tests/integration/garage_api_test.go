// File: tests/integration/garage_api_test.go
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/common"
	"motormate_backend/internal/garage"
	"motormate_backend/internal/vehicle"
)

func decodeJSON(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, out))
}

func TestServiceDiscovery_ListsGaragesAndHonorsAvailability(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	discoveryPath := fmt.Sprintf("/api/v1/services/%s/garages", env.oil.ID)

	rr := doJSON(t, env, "GET", discoveryPath, nil, uuid.Nil, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var listResp struct {
		Data []struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		} `json:"data"`
	}
	decodeJSON(t, rr.Body.Bytes(), &listResp)
	require.Len(t, listResp.Data, 1)
	assert.Equal(t, "Precision Auto", listResp.Data[0].Name)
	assert.Equal(t, 35.0, listResp.Data[0].Price)

	// The owner pauses the service without removing it.
	unavailable := false
	rr = doJSON(t, env, "PUT", fmt.Sprintf("/api/v1/garages/%s/services", env.garage.ID),
		garage.SetServiceRequest{ServiceID: env.oil.ID, Price: 35, IsAvailable: &unavailable},
		env.owner.ID, common.RoleGarageOwner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Paused services disappear from discovery and from the garage's public
	// service list.
	rr = doJSON(t, env, "GET", discoveryPath, nil, uuid.Nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	decodeJSON(t, rr.Body.Bytes(), &listResp)
	assert.Empty(t, listResp.Data)

	rr = doJSON(t, env, "GET", fmt.Sprintf("/api/v1/garages/%s/services", env.garage.ID), nil, uuid.Nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var offeringsResp struct {
		Data []garage.OfferedServiceResponse `json:"data"`
	}
	decodeJSON(t, rr.Body.Bytes(), &offeringsResp)
	require.Len(t, offeringsResp.Data, 1)
	assert.Equal(t, env.brakes.ID, offeringsResp.Data[0].ServiceID)

	// Booking the paused service is rejected like any unoffered one.
	rr = doJSON(t, env, "POST", "/api/v1/bookings", booking.CreateBookingRequest{
		GarageID:    env.garage.ID,
		CarID:       env.car.ID,
		ServiceIDs:  []uuid.UUID{env.oil.ID},
		ScheduledAt: tomorrowAt(9),
	}, env.customer.ID, common.RoleCustomer)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
}

func TestServiceDiscovery_UnknownServiceIsNotFound(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	rr := doJSON(t, env, "GET", fmt.Sprintf("/api/v1/services/%s/garages", uuid.New()), nil, uuid.Nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateGarage_OwnerIsLimitedToOne(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	rr := doJSON(t, env, "POST", "/api/v1/garages", garage.CreateGarageRequest{
		Name:    "Second Workshop",
		City:    "Addis Ababa",
		Address: "Kazanchis 4",
	}, env.owner.ID, common.RoleGarageOwner)

	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	var count int64
	require.NoError(t, env.db.Model(&garage.Garage{}).Where("owner_id = ?", env.owner.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBookingCheckout_CarIsRequired(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	rr := doJSON(t, env, "POST", "/api/v1/bookings", booking.CreateBookingRequest{
		GarageID:    env.garage.ID,
		ServiceIDs:  []uuid.UUID{env.oil.ID},
		ScheduledAt: tomorrowAt(10),
	}, env.customer.ID, common.RoleCustomer)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	var count int64
	env.db.Model(&booking.Booking{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBookingCheckout_SomeoneElsesCarIsForbidden(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	strangerCar := vehicle.Car{
		OwnerID: env.owner.ID,
		Make:    "Ford",
		Model:   "Ranger",
		Year:    2021,
	}
	require.NoError(t, env.db.Create(&strangerCar).Error)

	rr := doJSON(t, env, "POST", "/api/v1/bookings", booking.CreateBookingRequest{
		GarageID:    env.garage.ID,
		CarID:       strangerCar.ID,
		ServiceIDs:  []uuid.UUID{env.oil.ID},
		ScheduledAt: tomorrowAt(11),
	}, env.customer.ID, common.RoleCustomer)

	assert.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
}
