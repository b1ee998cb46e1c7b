package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"puja-booking-api/internal/config"
	"puja-booking-api/internal/models"
	"puja-booking-api/pkg/apperrors"
	"puja-booking-api/pkg/logger"
	"puja-booking-api/pkg/metrics"
)

// TokenResolver maps a public service token to its catalog record.
type TokenResolver interface {
	Resolve(token string) (models.ServiceRecord, error)
}

// BookingService validates booking requests and forwards them to the
// booking API. Each request is sent once; there is no retry.
type BookingService struct {
	catalog  TokenResolver
	client   *http.Client
	endpoint string
	validate *validator.Validate
	log      logger.Logger
	now      func() time.Time
}

func NewBookingService(cfg config.BookingConfig, catalog TokenResolver, log logger.Logger) *BookingService {
	s := &BookingService{
		catalog:  catalog,
		client:   &http.Client{Timeout: cfg.Timeout},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/bookings/",
		log:      log.WithFields(map[string]interface{}{"component": "booking_service"}),
		now:      time.Now,
	}
	s.validate = newBookingValidator(func() time.Time { return s.now() })
	return s
}

// newBookingValidator panics if the notpast tag cannot be registered.
func newBookingValidator(now func() time.Time) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		date, err := time.ParseInLocation(models.DateFormat, fl.Field().String(), time.Local)
		if err != nil {
			return false
		}
		y, m, d := now().Date()
		return !date.Before(time.Date(y, m, d, 0, 0, 0, 0, time.Local))
	}); err != nil {
		panic(fmt.Sprintf("register notpast validation: %v", err))
	}
	return v
}

// Submit validates req, resolves its service and forwards the booking.
func (s *BookingService) Submit(ctx context.Context, req models.BookingRequest) (*models.BookingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		metrics.BookingsSubmitted.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewBookingValidationError(describeValidation(err))
	}

	record, err := s.catalog.Resolve(req.ServiceToken)
	if err != nil {
		metrics.BookingsSubmitted.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if !record.IsActive {
		metrics.BookingsSubmitted.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewBookingValidationError("service_token: service is not available for booking")
	}

	submission := models.BookingSubmission{
		Reference:     uuid.NewString(),
		ServiceID:     record.ID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		Email:         req.Email,
		Phone:         req.Phone,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Location:      req.Location,
		Gotra:         req.Gotra,
		Notes:         req.Notes,
		Amount:        record.Price,
	}
	log := s.log.WithFields(map[string]interface{}{"reference": submission.Reference})

	payload, err := s.post(ctx, submission)
	if err != nil {
		metrics.BookingsSubmitted.WithLabelValues("failure").Inc()
		log.Error("Booking submission failed", map[string]interface{}{"error": err})
		return nil, apperrors.NewBookingSubmitFailedError(err)
	}
	metrics.BookingsSubmitted.WithLabelValues("success").Inc()

	// The booking exists remotely from here on.
	var booking models.Booking
	if err := json.Unmarshal(payload, &booking); err != nil {
		log.Warn("Booking accepted but reply could not be decoded", map[string]interface{}{"error": err})
		booking = models.Booking{Status: models.BookingPending, PaymentStatus: models.PaymentPending}
	}
	if booking.Reference == "" {
		booking.Reference = submission.Reference
	}
	if booking.Amount == nil {
		amount := submission.Amount
		booking.Amount = &amount
	}
	booking.ServiceID = 0

	log.Info("Booking submitted", map[string]interface{}{
		"booking_id": booking.ID,
		"status":     string(booking.Status),
	})
	return &models.BookingResponse{
		Booking:      booking,
		ServiceToken: req.ServiceToken,
		ServiceTitle: record.Title,
	}, nil
}

// post forwards submission and returns the raw reply body of a 2xx answer.
func (s *BookingService) post(ctx context.Context, submission models.BookingSubmission) ([]byte, error) {
	body, err := json.Marshal(submission)
	if err != nil {
		return nil, fmt.Errorf("encode booking: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", submission.Reference)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("booking api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if readErr != nil {
		s.log.Warn("Booking reply truncated", map[string]interface{}{"error": readErr})
	}
	return payload, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+": is required")
		case "notpast":
			parts = append(parts, fe.Field()+": must not be in the past")
		case "datetime":
			parts = append(parts, fmt.Sprintf("%s: must match %s", fe.Field(), fe.Param()))
		case "len", "min", "max":
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s: invalid %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
