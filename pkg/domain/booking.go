package domain

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DateLayout is the layout of booking date strings
const DateLayout = "2006-01-02"

// BookingKind is the discriminant of the booking union
type BookingKind string

const (
	BookingHotel  BookingKind = "hotel"
	BookingFlight BookingKind = "flight"
	BookingTrain  BookingKind = "train"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// GuestDetails is the lead traveller of a booking
type GuestDetails struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// BookingInfo holds the fields shared by every booking kind.
// For hotel bookings StartDate and EndDate are the check-in and check-out dates.
type BookingInfo struct {
	ID            string        `json:"id,omitempty"`
	Kind          BookingKind   `json:"kind"`
	BookingNumber string        `json:"booking_number,omitempty"`
	SubjectID     string        `json:"subject_id"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date,omitempty"`
	PartySize     int           `json:"party_size"`
	TotalAmount   float64       `json:"total_amount"`
	Currency      string        `json:"currency,omitempty"`
	Status        BookingStatus `json:"status,omitempty"`
	Guest         GuestDetails  `json:"guestDetails"`
	CreatedAt     string        `json:"created_at,omitempty"`
	UpdatedAt     string        `json:"updated_at,omitempty"`
}

// Info returns the shared booking fields
func (b *BookingInfo) Info() *BookingInfo {
	return b
}

func (b *BookingInfo) isBooking() {}

// Booking is implemented by *HotelBooking, *FlightBooking and *TrainBooking
type Booking interface {
	Info() *BookingInfo
	Kind() BookingKind
	isBooking()
}

// HotelBooking reserves rooms at a hotel for a date range
type HotelBooking struct {
	BookingInfo
	HotelName   string  `json:"hotel_name,omitempty"`
	RoomType    string  `json:"room_type,omitempty"`
	Rooms       int     `json:"rooms"`
	NightlyRate float64 `json:"nightly_rate"`
}

func (b *HotelBooking) Kind() BookingKind { return BookingHotel }

// Nights returns the number of nights between check-in and check-out
func (b *HotelBooking) Nights() (int, error) {
	in, err := time.Parse(DateLayout, b.StartDate)
	if err != nil {
		return 0, Invalid("start_date", "must be a YYYY-MM-DD date")
	}
	out, err := time.Parse(DateLayout, b.EndDate)
	if err != nil {
		return 0, Invalid("end_date", "must be a YYYY-MM-DD date")
	}
	nights := int(out.Sub(in).Hours() / 24)
	if nights < 1 {
		return 0, Invalid("end_date", "must be after start_date")
	}
	return nights, nil
}

// FlightBooking reserves seats on a flight
type FlightBooking struct {
	BookingInfo
	FlightNumber string  `json:"flight_number"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	CabinClass   string  `json:"cabin_class,omitempty"`
	Fare         float64 `json:"fare"`
}

func (b *FlightBooking) Kind() BookingKind { return BookingFlight }

// TrainBooking reserves seats on a train
type TrainBooking struct {
	BookingInfo
	TrainNumber string  `json:"train_number"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Coach       string  `json:"coach,omitempty"`
	Fare        float64 `json:"fare"`
}

func (b *TrainBooking) Kind() BookingKind { return BookingTrain }

// NewBooking returns an empty booking of the given kind
func NewBooking(kind BookingKind) (Booking, error) {
	switch kind {
	case BookingHotel:
		return &HotelBooking{BookingInfo: BookingInfo{Kind: kind}}, nil
	case BookingFlight:
		return &FlightBooking{BookingInfo: BookingInfo{Kind: kind}}, nil
	case BookingTrain:
		return &TrainBooking{BookingInfo: BookingInfo{Kind: kind}}, nil
	default:
		return nil, Invalid("kind", fmt.Sprintf("unknown booking kind %q", kind))
	}
}

// DecodeBooking decodes JSON into the concrete booking named by its kind field
func DecodeBooking(data []byte) (Booking, error) {
	var head struct {
		Kind BookingKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, Invalid("", "booking body is not valid JSON")
	}
	b, err := NewBooking(head.Kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, Invalid("", fmt.Sprintf("booking body does not match kind %s: %v", head.Kind, err))
	}
	b.Info().Kind = head.Kind
	return b, nil
}

// BookingToRecord converts a booking to its stored record form
func BookingToRecord(b Booking) (Record, error) {
	b.Info().Kind = b.Kind()
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	rec := Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode booking record: %w", err)
	}
	return rec, nil
}

// BookingFromRecord converts a stored record back into its booking kind
func BookingFromRecord(rec Record) (Booking, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking record: %w", err)
	}
	return DecodeBooking(data)
}
