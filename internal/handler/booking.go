package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/eventhub/internal/auth"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/service"
)

// BookingHandler owns the booking endpoints. Both routes sit behind
// RequireAuth, so a missing user ID in the context is a wiring bug rather
// than a client error.
type BookingHandler struct {
	bookings *service.BookingService
	logger   *slog.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(bookings *service.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{bookings: bookings, logger: logger}
}

type createBookingRequest struct {
	EventID  string `json:"eventId"`
	Quantity int    `json:"quantity"`
}

// HandleCreate books tickets for the authenticated user.
//
// HTTP: POST /api/bookings
//
// The total price is always computed server-side from the event's current
// price; any price sent by the client is ignored by the decoder.
func (h *BookingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "authentication required"})
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	booking, err := h.bookings.Book(r.Context(), userID, req.EventID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("booking created",
		"booking_id", booking.ID,
		"event_id", booking.EventID,
		"quantity", booking.Quantity,
	)
	writeJSON(w, http.StatusCreated, map[string]*model.BookingView{"booking": booking})
}

// HandleList returns the authenticated user's bookings, newest first.
//
// HTTP: GET /api/bookings
func (h *BookingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Message: "authentication required"})
		return
	}

	bookings, err := h.bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.BookingView{"bookings": bookings})
}
