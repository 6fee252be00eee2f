package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/eventhub/internal/apperror"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository"
	"github.com/sakif/eventhub/internal/service"
)

// EventHandler owns the catalog endpoints. Reads are public; writes are
// mounted behind the admin middleware in the route table.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// HandleList returns events matching the query filters.
//
// HTTP: GET /api/events?category=Music&search=jazz&date=2026-09
//
// All filters are optional and combine with AND. The result set is
// unbounded by contract — no pagination.
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := repository.EventFilter{
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
		DatePrefix: r.URL.Query().Get("date"),
	}

	events, err := h.events.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.Event{"events": events})
}

// HandleGet returns a single event.
//
// HTTP: GET /api/events/{id}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.Event{"event": event})
}

// createEventRequest is the admin create payload. Date is RFC 3339; price
// is integer cents.
type createEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Capacity    int    `json:"capacity"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"imageUrl"`
}

// HandleCreate creates a new event.
//
// HTTP: POST /api/events  (admin required)
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]*model.Event{"event": event})
}

// updateEventRequest is the admin partial-update payload. Pointer fields
// distinguish "absent" (keep previous value) from "present but empty".
type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Location    *string `json:"location"`
	Category    *string `json:"category"`
	Capacity    *int    `json:"capacity"`
	Price       *int64  `json:"price"`
	ImageURL    *string `json:"imageUrl"`
	Status      *string `json:"status"`
}

// HandleUpdate applies a partial update to an event.
//
// HTTP: PUT /api/events/{id}  (admin required)
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	in := service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	}
	if req.Date != nil {
		date, err := parseEventDate(*req.Date)
		if err != nil {
			writeError(w, err)
			return
		}
		in.Date = &date
	}

	event, err := h.events.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.Event{"event": event})
}

// HandleDelete removes an event.
//
// HTTP: DELETE /api/events/{id}  (admin required)
//
// Responds 409 when bookings still reference the event.
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// parseEventDate parses an RFC 3339 date string. An empty string maps to
// the zero time so the service layer's "date is required" check fires with
// its own message.
func parseEventDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date", "date must be RFC 3339, e.g. 2026-09-14T19:00:00Z")
	}
	return date, nil
}
