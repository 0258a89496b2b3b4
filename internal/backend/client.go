package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elevate-events/lounge/internal/booking"
	"github.com/elevate-events/lounge/internal/domain"
	"github.com/go-playground/validator/v10"
)

const currencyEUR = "EUR"

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Elevate booking API.
type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
	log      *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		validate: newValidator(),
		log:      log.With(slog.String("component", "backend")),
	}
}

// newValidator accepts exactly the emails the contact step accepts.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return booking.ValidEmail(fl.Field().String())
	})
	return v
}

// CreateBooking sends a wizard submission and returns the booking reference
// assigned by the API, which may be empty.
func (c *Client) CreateBooking(ctx context.Context, req booking.Request) (string, error) {
	const op = "backend.Client.CreateBooking"

	body := NewCreateBookingRequest(req)
	if err := c.validate.Struct(body); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrInvalidRequest, err)
	}

	var resp CreateBookingResponse
	if err := c.do(ctx, http.MethodPost, "/bookings", body, &resp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return resp.BookingReference, nil
}

func (c *Client) GetBooking(ctx context.Context, reference string) (*Booking, error) {
	const op = "backend.Client.GetBooking"

	var b Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(reference), nil, &b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &b, nil
}

// ListEvents returns the events of category, or all of them for "" and "all".
func (c *Client) ListEvents(ctx context.Context, category string) ([]domain.Event, error) {
	const op = "backend.Client.ListEvents"

	path := "/events"
	if category != "" && category != "all" {
		path += "?" + url.Values{"category": {category}}.Encode()
	}

	var events []domain.Event
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (c *Client) ListMembershipTiers(ctx context.Context) ([]MembershipTier, error) {
	const op = "backend.Client.ListMembershipTiers"

	var tiers []MembershipTier
	if err := c.do(ctx, http.MethodGet, "/membership-tiers", nil, &tiers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tiers, nil
}

func (c *Client) CheckLoungeAvailability(
	ctx context.Context,
	date, hhmm string,
	duration int,
	category string,
) ([]LoungeAvailability, error) {
	const op = "backend.Client.CheckLoungeAvailability"

	q := url.Values{}
	q.Set("date", date)
	q.Set("time", hhmm)
	q.Set("duration", strconv.Itoa(duration))
	if category != "" && category != "all" {
		q.Set("category", category)
	}

	var resp LoungeAvailabilityResponse
	if err := c.do(ctx, http.MethodGet, "/availability/lounges?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return resp.Lounges, nil
}

// NewCreateBookingRequest flattens a wizard submission into the API body.
func NewCreateBookingRequest(req booking.Request) CreateBookingRequest {
	d := req.Draft

	out := CreateBookingRequest{
		LoungeID:        req.Venue.ID,
		BookingDate:     d.Date,
		StartTime:       d.Time,
		EndsNextDay:     req.Schedule.CrossesMidnight,
		DurationHours:   d.DurationHours,
		Guests:          d.Guests,
		SpecialRequests: d.SpecialRequests,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		Email:           d.Email,
		Phone:           d.Phone,
		PaymentMethod:   string(d.PaymentMethod),
		TotalAmount:     req.Total,
		Currency:        currencyEUR,
	}
	if !req.Schedule.End.IsZero() {
		out.EndTime = req.Schedule.End.Format(booking.TimeLayout)
	}

	return out
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("err", err),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	c.log.DebugContext(ctx, "request done",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func errorMessage(status int, raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
