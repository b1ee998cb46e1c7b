package models

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// BookingRequest is what the booking form submits.
type BookingRequest struct {
	ServiceToken  string `json:"service_token" validate:"required"`
	CustomerName  string `json:"customer_name" validate:"required,min=2,max=120"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,number,len=10"`
	PreferredDate string `json:"preferred_date" validate:"required,datetime=2006-01-02,notpast"`
	PreferredTime string `json:"preferred_time" validate:"required,datetime=15:04"`
	Location      string `json:"location,omitempty" validate:"omitempty,max=255"`
	Gotra         string `json:"gotra,omitempty" validate:"omitempty,max=100"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// BookingSubmission is the payload forwarded to the booking API.
type BookingSubmission struct {
	Reference     string `json:"reference"`
	ServiceID     int64  `json:"service"`
	CustomerName  string `json:"customer_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Location      string `json:"location,omitempty"`
	Gotra         string `json:"gotra,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Amount        Price  `json:"amount"`
}

// Booking is the booking API's view of a submitted booking.
type Booking struct {
	ID            int64         `json:"id"`
	Reference     string        `json:"reference"`
	ServiceID     int64         `json:"service,omitempty"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Amount        *Price        `json:"amount,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// BookingResponse is returned to the client after a successful submission.
type BookingResponse struct {
	Booking      Booking `json:"booking"`
	ServiceToken string  `json:"service_token"`
	ServiceTitle string  `json:"service_title"`
}
