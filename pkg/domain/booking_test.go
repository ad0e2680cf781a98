package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBooking_Hotel(t *testing.T) {
	b, err := DecodeBooking([]byte(`{
		"kind": "hotel",
		"subject_id": "h1",
		"start_date": "2026-03-01",
		"end_date": "2026-03-04",
		"party_size": 2,
		"rooms": 1,
		"guestDetails": {"name": "Asha", "email": "asha@example.com"}
	}`))
	require.NoError(t, err)

	hotel, ok := b.(*HotelBooking)
	require.True(t, ok)
	assert.Equal(t, BookingHotel, hotel.Kind())
	assert.Equal(t, "h1", hotel.SubjectID)
	assert.Equal(t, "Asha", hotel.Guest.Name)

	nights, err := hotel.Nights()
	require.NoError(t, err)
	assert.Equal(t, 3, nights)
}

func TestDecodeBooking_Flight(t *testing.T) {
	b, err := DecodeBooking([]byte(`{"kind":"flight","flight_number":"AI 101","origin":"DEL","destination":"BOM","fare":5400}`))
	require.NoError(t, err)

	flight, ok := b.(*FlightBooking)
	require.True(t, ok)
	assert.Equal(t, "AI 101", flight.FlightNumber)
	assert.Equal(t, 5400.0, flight.Fare)
}

func TestDecodeBooking_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"kind":`},
		{"missing kind", `{"subject_id":"h1"}`},
		{"unknown kind", `{"kind":"cruise"}`},
		{"wrong field type", `{"kind":"hotel","rooms":"two"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBooking([]byte(tt.body))
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestHotelBooking_Nights(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		want      int
		wantField string
	}{
		{"one night", "2026-03-01", "2026-03-02", 1, ""},
		{"same day", "2026-03-01", "2026-03-01", 0, "end_date"},
		{"reversed", "2026-03-05", "2026-03-01", 0, "end_date"},
		{"bad start", "03/01/2026", "2026-03-02", 0, "start_date"},
		{"bad end", "2026-03-01", "", 0, "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &HotelBooking{BookingInfo: BookingInfo{StartDate: tt.start, EndDate: tt.end}}
			nights, err := b.Nights()
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, nights)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestBookingRecordConversion(t *testing.T) {
	original := &TrainBooking{
		BookingInfo: BookingInfo{
			ID:        "b1",
			SubjectID: "12951",
			StartDate: "2026-04-10",
			PartySize: 3,
			Status:    StatusPending,
		},
		TrainNumber: "12951",
		Origin:      "NDLS",
		Destination: "MMCT",
		Fare:        2100,
	}

	rec, err := BookingToRecord(original)
	require.NoError(t, err)
	assert.Equal(t, "train", rec["kind"])
	assert.Equal(t, "b1", rec.ID())
	assert.Equal(t, 3.0, rec["party_size"])

	back, err := BookingFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestBookingStatus_Valid(t *testing.T) {
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, BookingStatus("refunded").Valid())
	assert.False(t, BookingStatus("").Valid())
}

func TestEffectivePrice(t *testing.T) {
	price, ok := EffectivePrice(Record{"price": 3000.0, "discount_price": 2400.0})
	require.True(t, ok)
	assert.Equal(t, 2400.0, price)

	price, ok = EffectivePrice(Record{"price": 3000.0, "discount_price": 0.0})
	require.True(t, ok)
	assert.Equal(t, 3000.0, price)

	_, ok = EffectivePrice(Record{"name": "no price"})
	assert.False(t, ok)

	assert.Equal(t, 1800.0, Hotel{Price: 2000, DiscountPrice: 1800}.EffectivePrice())
	assert.Equal(t, 2000.0, Hotel{Price: 2000}.EffectivePrice())
}

func TestHotelFromRecord(t *testing.T) {
	h, err := HotelFromRecord(Record{
		"id":        "h1",
		"name":      "Sea View",
		"city":      "Goa",
		"price":     3000.0,
		"amenities": []interface{}{"wifi", "pool"},
		"available": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sea View", h.Name)
	assert.Equal(t, []string{"wifi", "pool"}, h.Amenities)
	assert.True(t, h.Available)

	_, err = HotelFromRecord(Record{"price": "cheap"})
	assert.Error(t, err)
}
