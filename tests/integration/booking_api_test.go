// File: tests/integration/booking_api_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motormate_backend/internal/booking"
	"motormate_backend/internal/common"
	"motormate_backend/internal/notification"
)

func doJSON(t *testing.T, env *testEnv, method, path string, body interface{}, asProfile uuid.UUID, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if asProfile != uuid.Nil {
		req.Header.Set("X-Test-User-ID", asProfile.String())
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

type checkoutResult struct {
	CheckoutID uuid.UUID                 `json:"checkout_id"`
	Bookings   []booking.BookingResponse `json:"bookings"`
}

func createCheckout(t *testing.T, env *testEnv, serviceIDs []uuid.UUID, scheduledAt time.Time) checkoutResult {
	t.Helper()
	rr := doJSON(t, env, "POST", "/api/v1/bookings", booking.CreateBookingRequest{
		GarageID:    env.garage.ID,
		CarID:       env.car.ID,
		ServiceIDs:  serviceIDs,
		ScheduledAt: scheduledAt,
	}, env.customer.ID, common.RoleCustomer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Data checkoutResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Data
}

func TestBookingCheckout_OneRowPerServiceWithSnapshottedPrices(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	result := createCheckout(t, env, []uuid.UUID{env.oil.ID, env.brakes.ID}, tomorrowAt(9))

	require.Len(t, result.Bookings, 2)
	assert.NotEqual(t, uuid.Nil, result.CheckoutID)

	prices := map[uuid.UUID]float64{}
	for _, b := range result.Bookings {
		assert.Equal(t, result.CheckoutID, b.CheckoutID)
		assert.Equal(t, booking.StatusPending, b.Status)
		prices[b.ServiceID] = b.Price
	}
	assert.Equal(t, 35.0, prices[env.oil.ID])
	assert.Equal(t, 120.0, prices[env.brakes.ID])

	var count int64
	require.NoError(t, env.db.Model(&booking.Booking{}).
		Where("checkout_id = ?", result.CheckoutID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// Both parties get a notification about the new checkout.
	var ownerNotifs, customerNotifs int64
	env.db.Model(&notification.Notification{}).
		Where("profile_id = ? AND type = ?", env.owner.ID, notification.BookingRequested).Count(&ownerNotifs)
	env.db.Model(&notification.Notification{}).
		Where("profile_id = ? AND type = ?", env.customer.ID, notification.BookingRequested).Count(&customerNotifs)
	assert.Equal(t, int64(1), ownerNotifs)
	assert.Equal(t, int64(1), customerNotifs)
}

func TestBookingCheckout_PastDateLeavesNothingBehind(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	rr := doJSON(t, env, "POST", "/api/v1/bookings", booking.CreateBookingRequest{
		GarageID:    env.garage.ID,
		CarID:       env.car.ID,
		ServiceIDs:  []uuid.UUID{env.oil.ID},
		ScheduledAt: time.Now().UTC().Add(-time.Hour),
	}, env.customer.ID, common.RoleCustomer)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var count int64
	env.db.Model(&booking.Booking{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestBookingCheckout_UnofferedServiceRejected(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	rr := doJSON(t, env, "POST", "/api/v1/bookings", booking.CreateBookingRequest{
		GarageID:    env.garage.ID,
		CarID:       env.car.ID,
		ServiceIDs:  []uuid.UUID{env.oil.ID, uuid.New()},
		ScheduledAt: tomorrowAt(10),
	}, env.customer.ID, common.RoleCustomer)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var count int64
	env.db.Model(&booking.Booking{}).Count(&count)
	assert.Equal(t, int64(0), count, "a failed checkout must write nothing")
}

func TestBookingStatus_OwnerConfirmsThenCustomerCancels(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	result := createCheckout(t, env, []uuid.UUID{env.oil.ID}, tomorrowAt(11))
	bookingID := result.Bookings[0].ID

	// Owner confirms.
	rr := doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", bookingID),
		booking.UpdateStatusRequest{Status: booking.StatusConfirmed},
		env.owner.ID, common.RoleGarageOwner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var stored booking.Booking
	require.NoError(t, env.db.First(&stored, "id = ?", bookingID).Error)
	assert.Equal(t, booking.StatusConfirmed, stored.Status)

	// Confirmation notified the customer.
	var confirmNotifs int64
	env.db.Model(&notification.Notification{}).
		Where("profile_id = ? AND type = ?", env.customer.ID, notification.BookingConfirmed).Count(&confirmNotifs)
	assert.Equal(t, int64(1), confirmNotifs)

	// Customer cancels the confirmed booking.
	rr = doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", bookingID),
		booking.UpdateStatusRequest{Status: booking.StatusCancelled},
		env.customer.ID, common.RoleCustomer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.NoError(t, env.db.First(&stored, "id = ?", bookingID).Error)
	assert.Equal(t, booking.StatusCancelled, stored.Status)
}

func TestBookingStatus_CustomerCannotConfirm(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	result := createCheckout(t, env, []uuid.UUID{env.oil.ID}, tomorrowAt(12))
	bookingID := result.Bookings[0].ID

	rr := doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", bookingID),
		booking.UpdateStatusRequest{Status: booking.StatusConfirmed},
		env.customer.ID, common.RoleCustomer)

	assert.Equal(t, http.StatusConflict, rr.Code)

	var stored booking.Booking
	require.NoError(t, env.db.First(&stored, "id = ?", bookingID).Error)
	assert.Equal(t, booking.StatusPending, stored.Status)
}

func TestBookingStatus_StrangerIsForbidden(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	result := createCheckout(t, env, []uuid.UUID{env.oil.ID}, tomorrowAt(13))
	bookingID := result.Bookings[0].ID

	rr := doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", bookingID),
		booking.UpdateStatusRequest{Status: booking.StatusCancelled},
		uuid.New(), common.RoleCustomer)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestBookingStatus_TerminalStateIsImmutable(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	result := createCheckout(t, env, []uuid.UUID{env.oil.ID}, tomorrowAt(14))
	bookingID := result.Bookings[0].ID

	for _, status := range []booking.Status{booking.StatusConfirmed, booking.StatusCompleted} {
		rr := doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", bookingID),
			booking.UpdateStatusRequest{Status: status},
			env.owner.ID, common.RoleGarageOwner)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", bookingID),
		booking.UpdateStatusRequest{Status: booking.StatusCancelled},
		env.owner.ID, common.RoleGarageOwner)
	assert.Equal(t, http.StatusConflict, rr.Code)

	var stored booking.Booking
	require.NoError(t, env.db.First(&stored, "id = ?", bookingID).Error)
	assert.Equal(t, booking.StatusCompleted, stored.Status)
}

func TestCheckoutCancel_CancelsEveryCancellableRow(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	result := createCheckout(t, env, []uuid.UUID{env.oil.ID, env.brakes.ID}, tomorrowAt(15))

	// Owner completes one of the two first (pending -> confirmed -> completed).
	completedID := result.Bookings[0].ID
	for _, status := range []booking.Status{booking.StatusConfirmed, booking.StatusCompleted} {
		rr := doJSON(t, env, "PATCH", fmt.Sprintf("/api/v1/bookings/%s/status", completedID),
			booking.UpdateStatusRequest{Status: status},
			env.owner.ID, common.RoleGarageOwner)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := doJSON(t, env, "POST", fmt.Sprintf("/api/v1/bookings/checkout/%s/cancel", result.CheckoutID),
		nil, env.customer.ID, common.RoleCustomer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rows []booking.Booking
	require.NoError(t, env.db.Where("checkout_id = ?", result.CheckoutID).Find(&rows).Error)
	require.Len(t, rows, 2)
	statuses := map[uuid.UUID]booking.Status{}
	for _, b := range rows {
		statuses[b.ID] = b.Status
	}
	assert.Equal(t, booking.StatusCompleted, statuses[completedID], "completed work survives a checkout cancel")
	assert.Equal(t, booking.StatusCancelled, statuses[result.Bookings[1].ID])
}

func TestGarageBookingsList_RequiresOwnerRole(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	createCheckout(t, env, []uuid.UUID{env.oil.ID}, tomorrowAt(16))

	rr := doJSON(t, env, "GET", "/api/v1/admin/bookings", nil, env.customer.ID, common.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, env, "GET", "/api/v1/admin/bookings", nil, env.owner.ID, common.RoleGarageOwner)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Data       []booking.BookingResponse `json:"data"`
		Pagination common.Pagination         `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Pagination.TotalItems)
}

func TestNotifications_ListAndMarkRead(t *testing.T) {
	env, cleanup := setupTestServer(t)
	defer cleanup()

	createCheckout(t, env, []uuid.UUID{env.oil.ID}, tomorrowAt(17))

	rr := doJSON(t, env, "GET", "/api/v1/notifications", nil, env.customer.ID, common.RoleCustomer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var listResp struct {
		Data []notification.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listResp))
	require.NotEmpty(t, listResp.Data)
	first := listResp.Data[0]
	assert.False(t, first.IsRead)

	rr = doJSON(t, env, "POST", fmt.Sprintf("/api/v1/notifications/%s/read", first.ID),
		nil, env.customer.ID, common.RoleCustomer)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var stored notification.Notification
	require.NoError(t, env.db.First(&stored, "id = ?", first.ID).Error)
	assert.True(t, stored.IsRead)
}
