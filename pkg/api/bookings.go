package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandleCreateBooking handles POST requests creating a hotel, flight or train booking
func (h *Handler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	b, err := domain.DecodeBooking(body)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := h.bookings.Create(r.Context(), b)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleListBookings handles GET requests listing bookings, optionally by status
func (h *Handler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	status := domain.BookingStatus(r.URL.Query().Get("status"))
	bookings, err := h.bookings.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// HandleGetBooking handles GET requests for one booking
func (h *Handler) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleBookingStats handles GET requests for booking totals
func (h *Handler) HandleBookingStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bookings.Stats())
}

// HandleConfirmBooking handles POST requests confirming a pending booking
func (h *Handler) HandleConfirmBooking(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.bookings.Confirm)
}

// HandleCancelBooking handles POST requests cancelling a booking
func (h *Handler) HandleCancelBooking(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.bookings.Cancel)
}

// HandleCompleteBooking handles POST requests completing a confirmed booking
func (h *Handler) HandleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.bookings.Complete)
}

type transitionFunc func(ctx context.Context, id string) (domain.Booking, bool, error)

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, transition transitionFunc) {
	id := mux.Vars(r)["id"]
	b, found, err := transition(r.Context(), id)
	if err != nil {
		zap.S().Debugf("Booking %s transition rejected: %v", id, err)
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, fmt.Errorf("booking %s: %w", id, domain.ErrRecordNotFound))
		return
	}
	writeJSON(w, http.StatusOK, b)
}
