package domain

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Hotel field names used by search and sorting
const (
	HotelPrice         = "price"
	HotelDiscountPrice = "discount_price"
	HotelRating        = "rating"
	HotelReviewCount   = "review_count"
	HotelSentiment     = "sentiment"
	HotelAmenities     = "amenities"
	HotelAvailable     = "available"
	HotelCity          = "city"
	HotelCountry       = "country"
)

// Hotel is the typed view of a searchable hotel record
type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Address       string   `json:"address,omitempty"`
	Price         float64  `json:"price"`
	DiscountPrice float64  `json:"discount_price,omitempty"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Sentiment     float64  `json:"sentiment,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Available     bool     `json:"available"`
	Featured      bool     `json:"featured,omitempty"`
}

// EffectivePrice returns the discounted price when one is set
func (h Hotel) EffectivePrice() float64 {
	if h.DiscountPrice > 0 {
		return h.DiscountPrice
	}
	return h.Price
}

// EffectivePrice returns the discounted price of a record when it is present and
// positive, else its price
func EffectivePrice(r Record) (float64, bool) {
	if d, ok := r.Number(HotelDiscountPrice); ok && d > 0 {
		return d, true
	}
	return r.Number(HotelPrice)
}

// HotelFromRecord decodes a hotel record into its typed view
func HotelFromRecord(r Record) (Hotel, error) {
	var h Hotel
	data, err := json.Marshal(r)
	if err != nil {
		return h, fmt.Errorf("failed to encode hotel record: %w", err)
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("failed to decode hotel record: %w", err)
	}
	return h, nil
}
