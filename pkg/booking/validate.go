package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
)

// Validate checks a booking request before anything is persisted
func Validate(b domain.Booking) error {
	if b == nil {
		return domain.Invalid("", "booking is required")
	}
	info := b.Info()
	if strings.TrimSpace(info.SubjectID) == "" {
		return domain.Invalid("subject_id", "is required")
	}
	if _, err := time.Parse(domain.DateLayout, info.StartDate); err != nil {
		return domain.Invalid("start_date", "must be a YYYY-MM-DD date")
	}
	if info.PartySize < 1 {
		return domain.Invalid("party_size", "must be at least 1")
	}
	if strings.TrimSpace(info.Guest.Name) == "" {
		return domain.Invalid("guestDetails.name", "is required")
	}
	if !strings.Contains(info.Guest.Email, "@") {
		return domain.Invalid("guestDetails.email", "must be an email address")
	}
	switch info.Status {
	case "", domain.StatusPending, domain.StatusConfirmed:
	default:
		return domain.Invalid("status", fmt.Sprintf("a new booking cannot be %q", info.Status))
	}

	switch v := b.(type) {
	case *domain.HotelBooking:
		if _, err := v.Nights(); err != nil {
			return err
		}
		if v.Rooms < 0 {
			return domain.Invalid("rooms", "cannot be negative")
		}
		if v.NightlyRate < 0 {
			return domain.Invalid("nightly_rate", "cannot be negative")
		}
	case *domain.FlightBooking:
		return validateRoute("flight_number", v.FlightNumber, v.Origin, v.Destination, v.Fare, info)
	case *domain.TrainBooking:
		return validateRoute("train_number", v.TrainNumber, v.Origin, v.Destination, v.Fare, info)
	default:
		return domain.Invalid("kind", fmt.Sprintf("unsupported booking kind %q", b.Kind()))
	}
	return nil
}

func validateRoute(numberField, number, origin, destination string, fare float64, info *domain.BookingInfo) error {
	if strings.TrimSpace(number) == "" {
		return domain.Invalid(numberField, "is required")
	}
	if strings.TrimSpace(origin) == "" {
		return domain.Invalid("origin", "is required")
	}
	if strings.TrimSpace(destination) == "" {
		return domain.Invalid("destination", "is required")
	}
	if strings.EqualFold(origin, destination) {
		return domain.Invalid("destination", "must differ from origin")
	}
	if fare <= 0 {
		return domain.Invalid("fare", "must be positive")
	}
	if info.EndDate != "" {
		end, err := time.Parse(domain.DateLayout, info.EndDate)
		if err != nil {
			return domain.Invalid("end_date", "must be a YYYY-MM-DD date")
		}
		start, _ := time.Parse(domain.DateLayout, info.StartDate)
		if end.Before(start) {
			return domain.Invalid("end_date", "cannot be before start_date")
		}
	}
	return nil
}
