package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/lab_management/internal/middleware"
	"github.com/Skotchmaster/lab_management/internal/models"
)

func seedEquipment(t *testing.T, env *testEnv) *models.Equipment {
	t.Helper()

	eq := &models.Equipment{
		ID:           uuid.NewString(),
		Name:         "PCR Thermocycler",
		SerialNumber: "sn_" + uuid.NewString(),
		IsAvailable:  true,
	}
	require.NoError(t, env.DB.Create(eq).Error)
	return eq
}

func TestBookingHandler_Create_ConflictPayload(t *testing.T) {
	env := newTestEnv(t)
	eq := seedEquipment(t, env)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	c, rec := env.jsonRequest(http.MethodPost, "/api/v1/bookings", map[string]any{
		"equipment_id": eq.ID,
		"start_time":   start,
		"end_time":     start.Add(time.Hour),
		"purpose":      "sample prep",
	})
	c.Set(middleware.ContextUserID, "alice")
	require.NoError(t, env.Bookings.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "alice", created.UserID)
	require.Equal(t, models.BookingScheduled, created.Status)

	c, rec = env.jsonRequest(http.MethodPost, "/api/v1/bookings", map[string]any{
		"equipment_id": eq.ID,
		"start_time":   start.Add(30 * time.Minute),
		"end_time":     start.Add(90 * time.Minute),
	})
	c.Set(middleware.ContextUserID, "bob")
	require.NoError(t, env.Bookings.Create(c))
	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict struct {
		Error    string           `json:"error"`
		Bookings []models.Booking `json:"conflicting_bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	require.NotEmpty(t, conflict.Error)
	require.Len(t, conflict.Bookings, 1)
	require.Equal(t, created.ID, conflict.Bookings[0].ID)
}

func TestBookingHandler_Create_UnknownEquipment(t *testing.T) {
	env := newTestEnv(t)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c, _ := env.jsonRequest(http.MethodPost, "/api/v1/bookings", map[string]any{
		"equipment_id": uuid.NewString(),
		"start_time":   start,
		"end_time":     start.Add(time.Hour),
	})
	c.Set(middleware.ContextUserID, "alice")

	err := env.Bookings.Create(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, http.StatusNotFound, he.Code)
}

func TestBookingHandler_Cancel(t *testing.T) {
	env := newTestEnv(t)
	eq := seedEquipment(t, env)

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	c, rec := env.jsonRequest(http.MethodPost, "/api/v1/bookings", map[string]any{
		"equipment_id": eq.ID,
		"start_time":   start,
		"end_time":     start.Add(time.Hour),
	})
	c.Set(middleware.ContextUserID, "alice")
	require.NoError(t, env.Bookings.Create(c))

	var created models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	c, rec = env.jsonRequest(http.MethodDelete, "/api/v1/bookings/"+created.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(created.ID)
	require.NoError(t, env.Bookings.Cancel(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var cancelled models.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	require.Equal(t, models.BookingCancelled, cancelled.Status)
}
