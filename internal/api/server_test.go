package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ascend/internal/access"
	"ascend/internal/availability"
	"ascend/internal/calendar"
	"ascend/internal/config"
	"ascend/internal/contracts"
	"ascend/internal/dashboard"
	"ascend/internal/directory"
	"ascend/internal/events"
	"ascend/internal/model"
	"ascend/internal/notifications"
	"ascend/internal/storage"
	"ascend/internal/tasks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() *config.DirectoryConfig {
	return &config.DirectoryConfig{
		Users: []model.User{
			{ID: "1", Name: "Olivia Owner", Email: "owner@ascend.test", Role: model.RoleOwner},
			{ID: "2", Name: "Dana Designer", Email: "dana@ascend.test", Role: "designer",
				ClientAccess: []model.ClientAccess{{ClientID: "c1", CanView: true, CanEdit: true}}},
			{ID: "3", Name: "Eli Editor", Email: "eli@ascend.test", Role: "editor"},
		},
		Roles: []model.Role{
			{ID: model.RoleOwner, Name: "Owner"},
			{ID: "designer", Name: "Designer"},
			{ID: "editor", Name: "Editor"},
		},
		Clients: []model.Client{{ID: "c1", Name: "Acme"}},
	}
}

func newTestServer(t *testing.T, opts Options) (*HTTPServer, Services) {
	t.Helper()
	logger := zerolog.Nop()
	bus := events.NewBus(&logger)
	slots := storage.NewSlots(storage.NewMemoryStore(), &logger, bus)

	dir := directory.NewService(slots, &logger)
	require.NoError(t, dir.Seed(context.Background(), testSeed()))

	notes := notifications.NewService(slots, dir, &logger)
	svc := Services{
		Slots:         slots,
		Availability:  availability.NewService(slots, "09:00", "17:00", time.UTC, &logger),
		Calendar:      calendar.NewService(slots, notes, time.UTC, &logger),
		Tasks:         tasks.NewService(slots, notes, &logger),
		Contracts:     contracts.NewService(slots, dir, &logger),
		Notifications: notes,
		Directory:     dir,
		Access:        access.NewService(dir, dir, logger),
		Dashboard:     dashboard.NewService(slots),
		Bus:           bus,
	}
	return NewHTTPServer(svc, opts, &logger), svc
}

func doRequest(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMissingUserHeader(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodGet, "/api/users", "nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIKey(t *testing.T) {
	s, _ := newTestServer(t, Options{APIKey: "secret"})

	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/users", "1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("X-User-ID", "1")
	req.Header.Set("x-api-key", "secret")
	ok := httptest.NewRecorder()
	s.Handler().ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, Options{RateLimitRPS: 0.001, RateLimitBurst: 1})

	first := doRequest(t, s.Handler(), http.MethodGet, "/api/users", "1", nil)
	second := doRequest(t, s.Handler(), http.MethodGet, "/api/users", "1", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestBulkAvailability(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/api/availability/2/bulk", "2", availability.BulkRequest{
		StartDate: "2025-05-01",
		EndDate:   "2025-05-07",
		Weekdays:  map[string]bool{"monday": true, "wednesday": true},
		Available: false,
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got model.Availability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Dates, 2)
	assert.Equal(t, "2025-05-05", got.Dates[0].Date)
	assert.Equal(t, "2025-05-07", got.Dates[1].Date)
	assert.False(t, got.Dates[0].Available)

	day := doRequest(t, s.Handler(), http.MethodGet, "/api/availability/2/days/2025-05-06", "3", nil)
	require.Equal(t, http.StatusOK, day.Code)
	var resolved model.DateAvailability
	require.NoError(t, json.Unmarshal(day.Body.Bytes(), &resolved))
	assert.True(t, resolved.Available)
	assert.Equal(t, "09:00", resolved.StartTime)
}

func TestAvailabilityAccess(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	body := availability.DateInput{Date: "2025-05-05", Available: false}

	rec := doRequest(t, s.Handler(), http.MethodPut, "/api/availability/2/dates", "3", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodPut, "/api/availability/2/dates", "1", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/api/availability/2/bulk", "2", map[string]any{"available": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEvent(t *testing.T) {
	s, svc := newTestServer(t, Options{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/api/events", "1", calendar.EventInput{
		Start: "2025-05-05T10:00:00Z",
		End:   "2025-05-05T11:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "title", verr.Field)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/api/events", "1", calendar.EventInput{
		Title:      "Kickoff",
		Start:      "2025-05-05T10:00:00Z",
		End:        "2025-05-05T11:00:00Z",
		AssignedTo: []string{"2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var list struct {
		Events []model.CalendarEvent `json:"events"`
	}
	day := doRequest(t, s.Handler(), http.MethodGet, "/api/events?date=2025-05-05", "2", nil)
	require.Equal(t, http.StatusOK, day.Code)
	require.NoError(t, json.Unmarshal(day.Body.Bytes(), &list))
	require.Len(t, list.Events, 1)
	assert.Equal(t, "Kickoff", list.Events[0].Title)

	hidden := doRequest(t, s.Handler(), http.MethodGet, "/api/events?date=2025-05-05", "3", nil)
	require.NoError(t, json.Unmarshal(hidden.Body.Bytes(), &list))
	assert.Empty(t, list.Events)

	unread, err := svc.Notifications.UnreadCount(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	denied := doRequest(t, s.Handler(), http.MethodDelete, "/api/events/"+firstEventID(t, s, "2"), "3", nil)
	assert.Equal(t, http.StatusForbidden, denied.Code)

	missing := doRequest(t, s.Handler(), http.MethodDelete, "/api/events/nope", "1", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func firstEventID(t *testing.T, s *HTTPServer, userID string) string {
	t.Helper()
	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/events", userID, nil)
	var list struct {
		Events []model.CalendarEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list.Events)
	return list.Events[0].ID
}

func TestNotificationsFlow(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec := doRequest(t, s.Handler(), http.MethodPost, "/api/notifications/send", "2",
		SendNotificationRequest{UserID: "3", Title: "Hi"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodPost, "/api/notifications/send", "1",
		SendNotificationRequest{Title: "Team meeting moved"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	count := doRequest(t, s.Handler(), http.MethodGet, "/api/notifications/unread-count", "3", nil)
	assert.JSONEq(t, `{"unread":1}`, count.Body.String())

	all := doRequest(t, s.Handler(), http.MethodPost, "/api/notifications/read-all", "3", nil)
	assert.JSONEq(t, `{"updated":1}`, all.Body.String())

	cleared := doRequest(t, s.Handler(), http.MethodDelete, "/api/notifications?read=true", "3", nil)
	assert.JSONEq(t, `{"removed":1}`, cleared.Body.String())

	missing := doRequest(t, s.Handler(), http.MethodPost, "/api/notifications/nope/read", "3", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestUserAdministration(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec := doRequest(t, s.Handler(), http.MethodDelete, "/api/users/1", "1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodDelete, "/api/users/3", "2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	role := "owner"
	rec = doRequest(t, s.Handler(), http.MethodPatch, "/api/users/2", "2", directory.UserPatch{Role: &role})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	bio := "Motion designer"
	rec = doRequest(t, s.Handler(), http.MethodPatch, "/api/users/2", "2", directory.UserPatch{Bio: &bio})
	require.Equal(t, http.StatusOK, rec.Code)
	var u model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "Motion designer", u.Bio)

	rec = doRequest(t, s.Handler(), http.MethodDelete, "/api/roles/owner", "1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodGet, "/api/clients/c1/members", "3", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodGet, "/api/clients/c1/members", "2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownFieldsRejected(t *testing.T) {
	s, _ := newTestServer(t, Options{})
	rec := doRequest(t, s.Handler(), http.MethodPost, "/api/tasks", "1", map[string]any{"bogus": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t, Options{})

	rec := doRequest(t, s.Handler(), http.MethodGet, "/api/export", "2", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s.Handler(), http.MethodGet, "/api/export", "1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, rec.Body.Len())
}

func TestChangesStream(t *testing.T) {
	s, svc := newTestServer(t, Options{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/changes?pattern=availability*", nil)
	require.NoError(t, err)
	req.Header.Set("X-User-ID", "2")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, ": subscribed"))

	_, err = svc.Availability.SetDate(context.Background(), "2", availability.DateInput{Date: "2025-05-05"})
	require.NoError(t, err)

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			var c events.Change
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &c))
			assert.Equal(t, "availability:2", c.Key)
			assert.Equal(t, "local", c.Origin)
			return
		}
	}
}
