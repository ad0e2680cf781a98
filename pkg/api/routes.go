package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealth).Methods("GET")

	// Collection operations
	router.HandleFunc("/collections/{coll}", h.HandleInsert).Methods("POST")
	router.HandleFunc("/collections/{coll}", h.HandleQuery).Methods("GET")
	router.HandleFunc("/collections/{coll}", h.HandleReset).Methods("DELETE")
	router.HandleFunc("/collections/{coll}/upsert", h.HandleUpsert).Methods("PUT")
	router.HandleFunc("/collections/{coll}/summary", h.HandleSummary).Methods("GET")

	// Record operations (by ID)
	router.HandleFunc("/collections/{coll}/records/{id}", h.HandleGetById).Methods("GET")
	router.HandleFunc("/collections/{coll}/records/{id}", h.HandleUpdateById).Methods("PATCH")
	router.HandleFunc("/collections/{coll}/records/{id}", h.HandleDeleteById).Methods("DELETE")

	router.HandleFunc("/hotels/search", h.HandleHotelSearch).Methods("GET")

	// Bookings; stats is registered before {id} so it is not captured as one
	router.HandleFunc("/bookings", h.HandleCreateBooking).Methods("POST")
	router.HandleFunc("/bookings", h.HandleListBookings).Methods("GET")
	router.HandleFunc("/bookings/stats", h.HandleBookingStats).Methods("GET")
	router.HandleFunc("/bookings/{id}", h.HandleGetBooking).Methods("GET")
	router.HandleFunc("/bookings/{id}/confirm", h.HandleConfirmBooking).Methods("POST")
	router.HandleFunc("/bookings/{id}/cancel", h.HandleCancelBooking).Methods("POST")
	router.HandleFunc("/bookings/{id}/complete", h.HandleCompleteBooking).Methods("POST")

	router.HandleFunc("/chat", h.HandleChat).Methods("POST")

	router.HandleFunc("/backend", h.HandleBackend).Methods("GET")
	router.HandleFunc("/backend/detect", h.HandleRedetect).Methods("POST")
}
