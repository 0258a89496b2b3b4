package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/catalog"
	"github.com/elevate-events/lounge/internal/domain"
	"github.com/elevate-events/lounge/internal/i18n"
	"github.com/elevate-events/lounge/internal/service"
	"github.com/elevate-events/lounge/internal/service/content"
	"github.com/elevate-events/lounge/internal/service/wizard"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	cat *catalog.Catalog,
	wiz *booking.Wizard,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	registerValidators()

	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(), LanguageMiddleware())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/venues", handleListVenues(cat))
		api.GET("/slots", handleListSlots(wiz))
		api.GET("/quote", handleQuote(cat))

		w := api.Group("/wizard")
		w.POST("", handleStartWizard(svcs))
		w.GET("/:id", handleGetWizard(svcs))
		w.PATCH("/:id/draft", handlePatchDraft(svcs))
		w.PUT("/:id/venue", handleSelectVenue(svcs))
		w.POST("/:id/next", handleNext(svcs))
		w.POST("/:id/previous", handlePrevious(svcs))
		w.POST("/:id/submit", handleSubmit(svcs))
		w.GET("/:id/submissions", handleListSubmissions(svcs))

		api.GET("/events", handleListEvents(svcs))
		api.GET("/membership-tiers", handleListMembershipTiers(svcs))
		api.GET("/availability/lounges", handleLoungeAvailability(svcs))
		api.GET("/bookings/:ref", handleGetBooking(svcs))
	}

	return r
}

// @Summary  List lounges
// @Success  200  {array}  domain.Venue
// @Router   /api/venues [get]
func handleListVenues(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeJSONWithCache(c, http.StatusOK, cat.List(), "public, max-age=300", true)
	}
}

// @Summary  Selectable start times of a day
// @Param    date  query  string  true  "YYYY-MM-DD"
// @Success  200  {object}  SlotsResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  422  {object}  ErrorResponse "date in the past"
// @Router   /api/slots [get]
func handleListSlots(wiz *booking.Wizard) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q SlotsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		now := wiz.Now()
		if q.Date < now.Format(booking.DateLayout) {
			respondErr(c, booking.ErrDateInPast)
			return
		}

		resp := SlotsResponse{
			Date:    q.Date,
			Slots:   booking.Slots(q.Date, now, wiz.SlotInterval()),
			NoSlots: booking.NoSlotsLeft(q.Date, now, wiz.SlotInterval()),
		}
		if resp.NoSlots {
			resp.Message = i18n.For(langOf(c)).T(i18n.KeyNoSlots)
		}

		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Price of a lounge for a number of hours
// @Param    venue     query  string  true  "Lounge ID"
// @Param    duration  query  int     true  "Hours, 1-12"
// @Success  200  {object}  QuoteResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/quote [get]
func handleQuote(cat *catalog.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q QuoteQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		if _, ok := cat.Get(q.Venue); !ok {
			respondErr(c, booking.ErrUnknownVenue)
			return
		}

		total := booking.Total(cat, domain.BookingDraft{VenueID: q.Venue, DurationHours: q.Duration})
		writeJSONWithCache(c, http.StatusOK, QuoteResponse{
			VenueID:       q.Venue,
			DurationHours: q.Duration,
			Total:         total,
			TotalDisplay:  i18n.For(langOf(c)).FormatEUR(total),
		}, "public, max-age=300", true)
	}
}

// @Summary  Start a booking wizard session
// @Param    req  body  StartWizardRequest  false  "payload"
// @Success  201  {object}  WizardResponse
// @Router   /api/wizard [post]
func handleStartWizard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartWizardRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, err.Error())
				return
			}
		}

		lang := req.Lang
		if lang == "" {
			lang = langOf(c)
		}

		id, view, err := svcs.Wizard.Start(c.Request.Context(), lang)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.Header("Location", "/api/wizard/"+id.String())
		c.JSON(http.StatusCreated, WizardResponse{SessionID: id.String(), View: view})
	}
}

// @Summary  Current state of a wizard session
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200  {object}  WizardResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/wizard/{id} [get]
func handleGetWizard(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		view, err := svcs.Wizard.Get(c.Request.Context(), id)
		respondView(c, id, view, err)
	}
}

// @Summary  Edit draft fields
// @Param    id   path  string             true  "Session ID (uuid)"
// @Param    req  body  PatchDraftRequest  true  "changed fields"
// @Success  200  {object}  WizardResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "submitting or confirmed"
// @Failure  422  {object}  ErrorResponse "date in the past or slot unavailable"
// @Router   /api/wizard/{id}/draft [patch]
func handlePatchDraft(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req PatchDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		view, err := svcs.Wizard.Update(c.Request.Context(), id, req.toPatch())
		respondView(c, id, view, err)
	}
}

// @Summary  Select a lounge
// @Param    id   path  string              true  "Session ID (uuid)"
// @Param    req  body  SelectVenueRequest  true  "payload"
// @Success  200  {object}  WizardResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /api/wizard/{id}/venue [put]
func handleSelectVenue(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req SelectVenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		view, err := svcs.Wizard.SelectVenue(c.Request.Context(), id, req.VenueID)
		respondView(c, id, view, err)
	}
}

// @Summary  Validate the current step and advance
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200  {object}  WizardResponse
// @Failure  422  {object}  WizardResponse "step incomplete, see errors"
// @Router   /api/wizard/{id}/next [post]
func handleNext(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		view, err := svcs.Wizard.Next(c.Request.Context(), id)
		respondView(c, id, view, err)
	}
}

// @Summary  Go back one step
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200  {object}  WizardResponse
// @Router   /api/wizard/{id}/previous [post]
func handlePrevious(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		view, err := svcs.Wizard.Previous(c.Request.Context(), id)
		respondView(c, id, view, err)
	}
}

// @Summary  Submit the booking (idempotent)
// @Param    id  path  string  true  "Session ID (uuid)"
// @Header   200 {string} Idempotency-Key "echo"
// @Success  200  {object}  WizardResponse
// @Failure  409  {object}  ErrorResponse "submission in progress or already confirmed"
// @Failure  422  {object}  WizardResponse "payment step incomplete"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Failure  502  {object}  WizardResponse "booking rejected, draft kept"
// @Router   /api/wizard/{id}/submit [post]
func handleSubmit(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if idemKey != "" {
			c.Header("Idempotency-Key", idemKey)
		}

		view, err := svcs.Wizard.Submit(c.Request.Context(), id, idemKey, "ip:"+c.ClientIP())
		respondView(c, id, view, err)
	}
}

// @Summary  Submission attempts of a session
// @Param    id  path  string  true  "Session ID (uuid)"
// @Success  200  {array}  SubmissionResponse
// @Router   /api/wizard/{id}/submissions [get]
func handleListSubmissions(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		subs, err := svcs.Wizard.Submissions(c.Request.Context(), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		out := make([]SubmissionResponse, 0, len(subs))
		for _, s := range subs {
			out = append(out, toSubmissionResponse(s))
		}
		c.JSON(http.StatusOK, out)
	}
}

// @Summary  List events
// @Param    category  query  string  false  "category, all by default"
// @Success  200  {array}  domain.Event
// @Failure  502  {object}  ErrorResponse
// @Router   /api/events [get]
func handleListEvents(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q EventsQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		events, err := svcs.Content.Events(c.Request.Context(), q.Category)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, events, "public, max-age=60", true)
	}
}

// @Summary  List membership tiers
// @Success  200  {array}  domain.MembershipTier
// @Failure  502  {object}  ErrorResponse
// @Router   /api/membership-tiers [get]
func handleListMembershipTiers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tiers, err := svcs.Content.MembershipTiers(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, tiers, "public, max-age=600", true)
	}
}

// @Summary  Lounge availability for a time window
// @Param    date      query  string  true   "YYYY-MM-DD"
// @Param    time      query  string  true   "HH:MM"
// @Param    duration  query  int     false  "hours, 2 by default"
// @Param    category  query  string  false  "lounge category"
// @Success  200  {array}  domain.LoungeAvailability
// @Failure  400  {object}  ErrorResponse
// @Failure  502  {object}  ErrorResponse
// @Router   /api/availability/lounges [get]
func handleLoungeAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q AvailabilityQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			badRequest(c, err.Error())
			return
		}

		res, err := svcs.Content.LoungeAvailability(c.Request.Context(), q.Date, q.Time, q.Duration, q.Category)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, res, "public, max-age=15", true)
	}
}

// @Summary  Look up a booking by reference
// @Param    ref  path  string  true  "Booking reference"
// @Success  200  {object}  content.BookingSummary
// @Failure  404  {object}  ErrorResponse
// @Router   /api/bookings/{ref} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Content.Booking(c.Request.Context(), c.Param("ref"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// respondView writes the session view. Errors that leave the user something
// to look at (field errors, a failed submission) keep the view as the body.
func respondView(c *gin.Context, id uuid.UUID, view booking.View, err error) {
	if err == nil {
		c.JSON(http.StatusOK, WizardResponse{SessionID: id.String(), View: view})
		return
	}

	switch {
	case errors.Is(err, booking.ErrStepInvalid):
		c.JSON(http.StatusUnprocessableEntity, WizardResponse{SessionID: id.String(), View: view})
	case errors.Is(err, booking.ErrSubmissionFailed):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, WizardResponse{SessionID: id.String(), View: view})
	default:
		respondErr(c, err)
	}
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var rl *wizard.RateLimitedError

	switch {
	// wizard service
	case errors.Is(err, wizard.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "wizard session not found"})
	case errors.As(err, &rl):
		c.Header("Retry-After", strconv.Itoa(int(max(rl.RetryAfter.Round(time.Second), time.Second)/time.Second)))
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many submissions"})
	// booking rules
	case errors.Is(err, booking.ErrUnknownVenue):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown lounge"})
	case errors.Is(err, booking.ErrInvalidDate):
		badRequest(c, "invalid date, expected YYYY-MM-DD")
	case errors.Is(err, booking.ErrInvalidTime):
		badRequest(c, "invalid time, expected HH:MM")
	case errors.Is(err, booking.ErrInvalidPaymentMethod):
		badRequest(c, "invalid payment method")
	case errors.Is(err, booking.ErrDateInPast):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "date is in the past"})
	case errors.Is(err, booking.ErrSlotUnavailable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "time slot is not available"})
	case errors.Is(err, booking.ErrLastStep),
		errors.Is(err, booking.ErrNotOnPaymentStep):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not possible on this step"})
	case errors.Is(err, booking.ErrSubmissionInProgress):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "submission in progress"})
	case errors.Is(err, booking.ErrAlreadyConfirmed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "booking already confirmed"})
	// content service
	case errors.Is(err, content.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
	case errors.Is(err, content.ErrInvalidQuery):
		badRequest(c, "invalid availability query")
	case errors.Is(err, content.ErrUpstream):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "booking service unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
