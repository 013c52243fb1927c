package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/slotswap/internal/config"
	"github.com/Freeeeeet/slotswap/internal/model"
	"github.com/Freeeeeet/slotswap/internal/ratelimit"
	"github.com/Freeeeeet/slotswap/internal/repository/memory"
	"github.com/Freeeeeet/slotswap/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

func newTestAPI(t *testing.T, limiter ratelimit.Limiter) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	logger := zap.NewNop()
	users := service.NewUserService(store, logger)

	router := NewRouter(Deps{
		Slots: service.NewSlotService(store, logger),
		Swaps: service.NewSwapService(store, logger),
		Users: users,
		Auth: NewAuthenticator(testSecret, []config.StaticToken{
			{Token: "svc-token", UserID: "svc", Name: "Service"},
		}, users, logger),
		Limiter: limiter,
		Logger:  logger,
	})
	return &testAPI{t: t, router: router}
}

func mintToken(t *testing.T, sub, name string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) createSlot(token, title string, start time.Time) model.Slot {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/events", token, map[string]string{
		"title":    title,
		"fromDate": start.Format(time.RFC3339),
		"toDate":   start.Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Slot](a.t, rec)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := map[string]string{
		"missing":      "",
		"bad format":   "Token abc",
		"unknown":      "Bearer nope",
		"wrong secret": "Bearer " + func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
			s, _ := tok.SignedString([]byte("other"))
			return s
		}(),
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec := api.do(http.MethodGet, "/api/events", "svc-token", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEventsLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)
	alice := mintToken(t, "alice", "Alice")
	start := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	rec := api.do(http.MethodPost, "/api/events", alice, map[string]string{"title": "Standup"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ValidationError", decode[map[string]string](t, rec)["code"])

	later := api.createSlot(alice, "Later", start.Add(24*time.Hour))
	slot := api.createSlot(alice, "Standup", start)
	assert.Equal(t, model.SlotStatusSwappable, slot.Status)
	assert.Equal(t, "alice", slot.OwnerID)

	slots := decode[[]model.Slot](t, api.do(http.MethodGet, "/api/events", alice, nil))
	require.Len(t, slots, 2)
	assert.Equal(t, slot.ID, slots[0].ID)
	assert.Equal(t, later.ID, slots[1].ID)

	rec = api.do(http.MethodPatch, "/api/events/"+slot.ID.String()+"/status", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.SlotStatusBusy, decode[model.Slot](t, rec).Status)

	// чужой слот не виден
	bob := mintToken(t, "bob", "Bob")
	rec = api.do(http.MethodDelete, "/api/events/"+slot.ID.String(), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/events/not-a-uuid", alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/events/"+slot.ID.String(), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestSwapFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	alice, bob := mintToken(t, "alice", "Alice"), mintToken(t, "bob", "Bob")
	start := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

	a := api.createSlot(alice, "Alice slot", start)
	b := api.createSlot(bob, "Bob slot", start.Add(2*time.Hour))

	swappable := decode[[]model.Slot](t, api.do(http.MethodGet, "/api/swaps/swappable-slots", alice, nil))
	require.Len(t, swappable, 1)
	assert.Equal(t, b.ID, swappable[0].ID)

	rec := api.do(http.MethodPost, "/api/swaps/request", alice, map[string]string{"mySlotId": a.ID.String()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/swaps/request", alice, map[string]string{
		"mySlotId": a.ID.String(), "theirSlotId": b.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	req := decode[model.SwapRequest](t, rec)
	assert.Equal(t, model.SwapStatusPending, req.Status)

	rec = api.do(http.MethodPost, "/api/swaps/request", alice, map[string]string{
		"mySlotId": a.ID.String(), "theirSlotId": b.ID.String(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DuplicatePendingRequest", decode[map[string]string](t, rec)["code"])

	rec = api.do(http.MethodPatch, "/api/events/"+a.ID.String()+"/status", alice, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	incoming := decode[[]model.RequestView](t, api.do(http.MethodGet, "/api/swaps/requests", bob, nil))
	require.Len(t, incoming, 1)
	assert.Equal(t, model.DirectionIncoming, incoming[0].Type)
	assert.Equal(t, "Alice", incoming[0].Counterpart.Name)

	path := "/api/swaps/response/" + req.ID.String()

	rec = api.do(http.MethodPost, path, alice, map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, path, bob, map[string]string{"status": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidDecision", decode[map[string]string](t, rec)["code"])

	rec = api.do(http.MethodPost, path, bob, map[string]string{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.SwapStatusAccepted, decode[model.SwapRequest](t, rec).Status)

	rec = api.do(http.MethodPost, path, bob, map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	aliceSlots := decode[[]model.Slot](t, api.do(http.MethodGet, "/api/events", alice, nil))
	require.Len(t, aliceSlots, 1)
	assert.Equal(t, b.ID, aliceSlots[0].ID)
	assert.Equal(t, model.SlotStatusBusy, aliceSlots[0].Status)

	history := decode[[]model.HistoryEntry](t, api.do(http.MethodGet, "/api/swaps/history", bob, nil))
	require.Len(t, history, 1)
	assert.Equal(t, model.SwapRoleOwner, history[0].Role)
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil
}

func TestRateLimited(t *testing.T) {
	api := newTestAPI(t, denyAll{})

	rec := api.do(http.MethodGet, "/api/events", "svc-token", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	// health не лимитируется
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health", "", nil).Code)
}
