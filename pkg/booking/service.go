package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adfharrison1/go-tripdb/pkg/aggregate"
	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/query"
	"github.com/adfharrison1/go-tripdb/pkg/store"
	"go.uber.org/zap"
)

// DefaultCurrency is applied to bookings that do not name one
const DefaultCurrency = "INR"

// transitions lists the statuses each status may move to
var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.StatusPending:   {domain.StatusConfirmed, domain.StatusCancelled},
	domain.StatusConfirmed: {domain.StatusCompleted, domain.StatusCancelled},
}

// Service manages the bookings collection
type Service struct {
	bookings *store.Store
	hotels   *store.Store
	now      func() time.Time
	number   func(kind domain.BookingKind, now time.Time) string
}

type Option func(*Service)

// WithClock overrides the time source used for booking numbers
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithNumberGenerator overrides booking number generation
func WithNumberGenerator(gen func(kind domain.BookingKind, now time.Time) string) Option {
	return func(s *Service) {
		s.number = gen
	}
}

// NewService creates a booking service. hotels may be nil, in which case hotel
// bookings must carry their own nightly rate.
func NewService(bookings, hotels *store.Store, options ...Option) *Service {
	s := &Service{
		bookings: bookings,
		hotels:   hotels,
		now:      time.Now,
		number:   BookingNumber,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// BookingNumber builds a human-readable booking reference
func BookingNumber(kind domain.BookingKind, now time.Time) string {
	prefix := map[domain.BookingKind]string{
		domain.BookingHotel:  "HB",
		domain.BookingFlight: "FB",
		domain.BookingTrain:  "TB",
	}[kind]
	suffix := strings.ToUpper(strings.ReplaceAll(domain.NewRecordID(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix)
}

// Create validates b, computes its total and persists it
func (s *Service) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}

	info := b.Info()
	info.ID = ""
	info.CreatedAt = ""
	info.UpdatedAt = ""
	if info.Currency == "" {
		info.Currency = DefaultCurrency
	}
	if info.Status == "" {
		// Payment is simulated, so bookings are confirmed immediately
		info.Status = domain.StatusConfirmed
	}
	info.BookingNumber = s.number(b.Kind(), s.now())

	total, err := s.total(b)
	if err != nil {
		return nil, err
	}
	info.TotalAmount = total

	rec, err := domain.BookingToRecord(b)
	if err != nil {
		return nil, err
	}
	created, err := s.bookings.Append(ctx, rec)
	if err != nil {
		return nil, err
	}

	zap.S().Infof("Created %s booking %s (%s) for %.2f %s", b.Kind(), info.BookingNumber, created.ID(), total, info.Currency)
	return domain.BookingFromRecord(created)
}

func (s *Service) total(b domain.Booking) (float64, error) {
	switch v := b.(type) {
	case *domain.HotelBooking:
		nights, err := v.Nights()
		if err != nil {
			return 0, err
		}
		if v.Rooms == 0 {
			v.Rooms = 1
		}
		if err := s.applyHotel(v); err != nil {
			return 0, err
		}
		if v.NightlyRate <= 0 {
			return 0, domain.Invalid("nightly_rate", "is required when the hotel has no price")
		}
		return float64(nights) * v.NightlyRate * float64(v.Rooms), nil
	case *domain.FlightBooking:
		return v.Fare * float64(v.PartySize), nil
	case *domain.TrainBooking:
		return v.Fare * float64(v.PartySize), nil
	default:
		return 0, domain.Invalid("kind", fmt.Sprintf("unsupported booking kind %q", b.Kind()))
	}
}

// applyHotel takes the nightly rate and name from the referenced hotel when it
// is known. Unknown hotels are tolerated.
func (s *Service) applyHotel(v *domain.HotelBooking) error {
	if s.hotels == nil {
		return nil
	}
	rec, ok := s.hotels.Get(v.SubjectID)
	if !ok {
		return nil
	}
	hotel, err := domain.HotelFromRecord(rec)
	if err != nil {
		return err
	}
	if available, ok := rec[domain.HotelAvailable].(bool); ok && !available {
		return domain.Invalid("subject_id", fmt.Sprintf("hotel %s is not available", v.SubjectID))
	}
	if rate := hotel.EffectivePrice(); rate > 0 {
		v.NightlyRate = rate
	}
	if v.HotelName == "" {
		v.HotelName = hotel.Name
	}
	return nil
}

// Get returns the booking with id
func (s *Service) Get(id string) (domain.Booking, error) {
	rec, ok := s.bookings.Get(id)
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, domain.ErrRecordNotFound)
	}
	return domain.BookingFromRecord(rec)
}

// List returns bookings in creation order, optionally only those with status
func (s *Service) List(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	q := query.New()
	if status != "" {
		if !status.Valid() {
			return nil, domain.Invalid("status", fmt.Sprintf("unknown status %q", status))
		}
		q = q.Where(query.Eq("status", string(status)))
	}

	matched := s.bookings.Query(q).Matched()
	out := make([]domain.Booking, 0, len(matched))
	for _, rec := range matched {
		b, err := domain.BookingFromRecord(rec)
		if err != nil {
			zap.S().Warnf("Skipping unreadable booking '%s': %v", rec.ID(), err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Cancel moves a pending or confirmed booking to cancelled
func (s *Service) Cancel(ctx context.Context, id string) (domain.Booking, bool, error) {
	return s.transition(ctx, id, domain.StatusCancelled)
}

// Complete moves a confirmed booking to completed
func (s *Service) Complete(ctx context.Context, id string) (domain.Booking, bool, error) {
	return s.transition(ctx, id, domain.StatusCompleted)
}

// Confirm moves a pending booking to confirmed
func (s *Service) Confirm(ctx context.Context, id string) (domain.Booking, bool, error) {
	return s.transition(ctx, id, domain.StatusConfirmed)
}

func (s *Service) transition(ctx context.Context, id string, to domain.BookingStatus) (domain.Booking, bool, error) {
	rec, ok := s.bookings.Get(id)
	if !ok {
		return nil, false, nil
	}
	from := domain.BookingStatus(rec.String("status"))
	if !allowed(from, to) {
		return nil, true, domain.Invalid("status", fmt.Sprintf("cannot move booking from %s to %s", from, to))
	}

	updated, ok, err := s.bookings.Update(ctx, id, domain.Record{"status": string(to)})
	if err != nil || !ok {
		return nil, ok, err
	}
	zap.S().Infof("Booking %s moved from %s to %s", id, from, to)
	b, err := domain.BookingFromRecord(updated)
	return b, true, err
}

func allowed(from, to domain.BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Stats summarises the bookings collection
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByKind     map[string]int `json:"by_kind"`
	TotalSpent float64        `json:"total_spent"`
}

// Stats counts bookings by status and kind and sums the amount of every booking
// that was not cancelled
func (s *Service) Stats() Stats {
	all := s.bookings.Snapshot()
	active := query.Filter(all, []query.Predicate{
		query.AnyOf("status", string(domain.StatusPending), string(domain.StatusConfirmed), string(domain.StatusCompleted)),
	})
	return Stats{
		Total:      aggregate.Count(all),
		ByStatus:   aggregate.GroupCount(all, "status"),
		ByKind:     aggregate.GroupCount(all, "kind"),
		TotalSpent: aggregate.Sum(active, "total_amount"),
	}
}
