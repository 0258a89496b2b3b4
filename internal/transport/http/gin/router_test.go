package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/elevate-events/lounge/internal/backend"
	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/domain"
	redisx "github.com/elevate-events/lounge/internal/redis"
	redisrepo "github.com/elevate-events/lounge/internal/repository/redis"
	"github.com/elevate-events/lounge/internal/service"
	"github.com/elevate-events/lounge/internal/service/content"
	"github.com/elevate-events/lounge/internal/service/wizard"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC)

type stubCreator struct {
	ref string
	err error
}

func (s *stubCreator) CreateBooking(context.Context, booking.Request) (string, error) {
	return s.ref, s.err
}

type stubBackend struct {
	err error
}

func (s *stubBackend) ListEvents(context.Context, string) ([]domain.Event, error) {
	return []domain.Event{{ID: 7, Title: "Wine Tasting"}}, s.err
}

func (s *stubBackend) ListMembershipTiers(context.Context) ([]backend.MembershipTier, error) {
	return nil, s.err
}

func (s *stubBackend) CheckLoungeAvailability(context.Context, string, string, int, string) ([]backend.LoungeAvailability, error) {
	return []backend.LoungeAvailability{{LoungeID: "gold", Available: true}}, s.err
}

func (s *stubBackend) GetBooking(context.Context, string) (*backend.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	return nil, &backend.APIError{Status: http.StatusNotFound, Message: "Booking not found"}
}

type testServer struct {
	router  *gin.Engine
	creator *stubCreator
	api     *stubBackend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := catalog.Default()
	wiz := booking.New(cat,
		booking.WithClock(func() time.Time { return testNow }),
		booking.WithLocation(time.UTC),
	)
	cache := redisrepo.NewCache(rdb)

	ts := &testServer{
		creator: &stubCreator{ref: "BK-2001"},
		api:     &stubBackend{},
	}

	svcs := &service.Services{
		Wizard: wizard.New(wizard.Deps{
			Wizard:      wiz,
			Sessions:    redisrepo.NewSessionStore(rdb, time.Hour),
			Idempotency: redisrepo.NewIdempotencyStore(rdb, time.Hour),
			Limiter:     redisrepo.NewSlidingWindowLimiter(rdb, redisx.KeyRateLimit("submit"), 10, time.Minute),
			Cache:       cache,
			PubSub:      redisx.NewBookingsPubSub(rdb),
			Creator:     ts.creator,
			Log:         log,
		}, wizard.Config{}),
		Content: content.New(ts.api, nil, cache, content.Config{}),
	}

	ts.router = NewRouter(svcs, cat, wiz, log)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestListVenuesETag(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/venues", nil)
	require.Equal(t, http.StatusOK, w.Code)

	venues := decode[[]domain.Venue](t, w)
	require.Len(t, venues, 3)

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = ts.do(t, http.MethodGet, "/api/venues", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestListSlots(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/slots?date=2030-01-15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[SlotsResponse](t, w)
	assert.Equal(t, "10:30", resp.Slots[0])
	assert.False(t, resp.NoSlots)

	w = ts.do(t, http.MethodGet, "/api/slots?date=2030-01-16", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[SlotsResponse](t, w).Slots, 48)

	w = ts.do(t, http.MethodGet, "/api/slots?date=2030-01-14", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = ts.do(t, http.MethodGet, "/api/slots?date=15.01.2030", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuote(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/quote?venue=gold&duration=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	q := decode[QuoteResponse](t, w)
	assert.Equal(t, int64(360), q.Total)
	assert.Equal(t, "€360", q.TotalDisplay)

	w = ts.do(t, http.MethodGet, "/api/quote?venue=gold&duration=3", nil, "Accept-Language", "de-DE,de;q=0.9")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "360 €", decode[QuoteResponse](t, w).TotalDisplay)
	assert.Equal(t, "de", w.Header().Get("Content-Language"))

	w = ts.do(t, http.MethodGet, "/api/quote?venue=bronze&duration=3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/quote?venue=gold&duration=13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardFlow(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/wizard", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	start := decode[WizardResponse](t, w)
	require.NotEmpty(t, start.SessionID)
	assert.Equal(t, booking.FirstStep, start.Step)
	base := "/api/wizard/" + start.SessionID

	// Step 1 incomplete.
	w = ts.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	blocked := decode[WizardResponse](t, w)
	assert.Contains(t, blocked.Errors, booking.FieldDate)

	w = ts.do(t, http.MethodPatch, base+"/draft", map[string]any{
		"date": "2030-01-16", "time": "22:30", "guests": 10, "duration_hours": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[WizardResponse](t, w).Step)

	w = ts.do(t, http.MethodPut, base+"/venue", map[string]any{"venue_id": "gold"})
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[WizardResponse](t, w)
	assert.Equal(t, 6, v.Draft.Guests)
	assert.Equal(t, int64(360), v.Total)
	require.NotNil(t, v.Schedule)
	assert.True(t, v.Schedule.CrossesMidnight)

	w = ts.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPatch, base+"/draft", map[string]any{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "phone": "+49 30 1234567",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, base+"/next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.LastStep, decode[WizardResponse](t, w).Step)

	w = ts.do(t, http.MethodPost, base+"/next", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodPatch, base+"/draft", map[string]any{"payment_method": "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPatch, base+"/draft", map[string]any{"payment_method": "paypal"})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, base+"/submit", nil, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", w.Header().Get("Idempotency-Key"))
	done := decode[WizardResponse](t, w)
	assert.True(t, done.Confirmed)
	assert.Equal(t, "BK-2001", done.Reference)

	w = ts.do(t, http.MethodPost, base+"/submit", nil, "Idempotency-Key", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "BK-2001", decode[WizardResponse](t, w).Reference)

	w = ts.do(t, http.MethodPost, base+"/submit", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPatchDraftRejections(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/wizard", map[string]any{"lang": "de"})
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/wizard/" + decode[WizardResponse](t, w).SessionID

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "bad date format", body: map[string]any{"date": "16/01/2030"}, want: http.StatusBadRequest},
		{name: "bad time format", body: map[string]any{"time": "7pm"}, want: http.StatusBadRequest},
		{name: "past date", body: map[string]any{"date": "2030-01-14"}, want: http.StatusUnprocessableEntity},
		{name: "slot gone", body: map[string]any{"date": "2030-01-15", "time": "10:00"}, want: http.StatusUnprocessableEntity},
		{name: "ok", body: map[string]any{"date": "2030-01-15", "time": "10:30"}, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPatch, base+"/draft", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w = ts.do(t, http.MethodPut, base+"/venue", map[string]any{"venue_id": "bronze"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitFailureKeepsView(t *testing.T) {
	ts := newTestServer(t)
	ts.creator.err = errors.New("lounge taken")

	w := ts.do(t, http.MethodPost, "/api/wizard", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/wizard/" + decode[WizardResponse](t, w).SessionID

	steps := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPatch, "/draft", map[string]any{"date": "2030-01-16", "time": "19:00"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPut, "/venue", map[string]any{"venue_id": "vip"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPatch, "/draft", map[string]any{"first_name": "A", "last_name": "B", "email": "a@b.co", "phone": "1"}},
		{http.MethodPost, "/next", nil},
		{http.MethodPatch, "/draft", map[string]any{"payment_method": "credit"}},
	}
	for _, s := range steps {
		w := ts.do(t, s.method, base+s.path, s.body)
		require.Equal(t, http.StatusOK, w.Code, s.path+": "+w.Body.String())
	}

	w = ts.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	v := decode[WizardResponse](t, w)
	assert.False(t, v.Confirmed)
	assert.False(t, v.Submitting)
	assert.NotEmpty(t, v.Errors[booking.FieldSubmit])
	assert.Equal(t, "vip", v.Draft.VenueID)
}

func TestWizardSessionErrors(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/wizard/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/wizard/6f1c0a3e-9a53-4a55-9d2e-0d4c8c1f7a10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "wizard session not found", decode[ErrorResponse](t, w).Error)
}

func TestContentEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/events?category=wine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Event](t, w), 1)

	w = ts.do(t, http.MethodGet, "/api/availability/lounges?date=2030-01-16&time=19:00&duration=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []domain.LoungeAvailability{{VenueID: "gold", Available: true}},
		decode[[]domain.LoungeAvailability](t, w))

	w = ts.do(t, http.MethodGet, "/api/availability/lounges?date=2030-01-16", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/bookings/EV-UNKNOWN", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.api.err = errors.New("connection refused")
	w = ts.do(t, http.MethodGet, "/api/membership-tiers", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
