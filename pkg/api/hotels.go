package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/query"
	"github.com/adfharrison1/go-tripdb/pkg/store"
	"go.uber.org/zap"
)

// hotelQuery translates hotel search parameters into a query. Every listed
// amenity must be offered; the price range applies to the list price.
func hotelQuery(values url.Values) (query.Query, error) {
	q := query.New()

	if location := strings.TrimSpace(values.Get("location")); location != "" {
		q = q.Where(query.Contains(domain.HotelCity, location))
	}

	var minPrice, maxPrice *float64
	if v := values.Get("min_price"); v != "" {
		n, err := parseNumber("min_price", v)
		if err != nil {
			return q, err
		}
		minPrice = &n
	}
	if v := values.Get("max_price"); v != "" {
		n, err := parseNumber("max_price", v)
		if err != nil {
			return q, err
		}
		maxPrice = &n
	}
	if minPrice != nil || maxPrice != nil {
		q = q.Where(query.Range(domain.HotelPrice, minPrice, maxPrice))
	}

	if v := values.Get("min_rating"); v != "" {
		n, err := parseNumber("min_rating", v)
		if err != nil {
			return q, err
		}
		q = q.Where(query.AtLeast(domain.HotelRating, n))
	}

	for _, amenity := range splitList(values.Get("amenities")) {
		q = q.Where(query.AnyOf(domain.HotelAmenities, amenity))
	}

	if v := values.Get("available"); v != "" {
		available, err := parseBool("available", v)
		if err != nil {
			return q, err
		}
		q = q.Where(query.Eq(domain.HotelAvailable, available))
	}

	return withPaging(q, values)
}

// HandleHotelSearch handles GET requests searching the hotels collection
func (h *Handler) HandleHotelSearch(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.registry.Get(r.Context(), store.CollectionHotels)
	if err != nil {
		writeError(w, err)
		return
	}
	q, err := hotelQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	rs := hotels.Query(q)
	zap.S().Debugf("Hotel search matched %d of %d hotels", rs.Total, hotels.Len())
	writeJSON(w, http.StatusOK, rs)
}
