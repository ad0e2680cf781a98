package api

import (
	"context"

	"github.com/adfharrison1/go-tripdb/pkg/booking"
	"github.com/adfharrison1/go-tripdb/pkg/chat"
	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/store"
)

// BackendSelector reports and re-runs persistence backend detection
type BackendSelector interface {
	Kind() domain.BackendKind
	DetectBackend(ctx context.Context) domain.BackendKind
	ResetDetection()
}

// Handler provides HTTP handlers for the travel API
type Handler struct {
	registry  *store.Registry
	bookings  *booking.Service
	assistant *chat.Table
	selector  BackendSelector
}

// NewHandler creates a new API handler with dependency injection
func NewHandler(registry *store.Registry, bookings *booking.Service, assistant *chat.Table, selector BackendSelector) *Handler {
	return &Handler{
		registry:  registry,
		bookings:  bookings,
		assistant: assistant,
		selector:  selector,
	}
}
