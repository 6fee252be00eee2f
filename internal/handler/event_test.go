package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/eventhub/internal/handler"
	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository/memory"
	"github.com/sakif/eventhub/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEventRouter wires an EventHandler onto a real chi router so path
// parameters resolve the way they do in production. Admin middleware is
// deliberately absent — these tests cover the handler, not the gate.
func newEventRouter(t *testing.T) (chi.Router, *service.EventService) {
	t.Helper()
	store := memory.New()
	svc := service.NewEventService(store.Events(), testLogger())
	h := handler.NewEventHandler(svc, testLogger())

	r := chi.NewRouter()
	r.Get("/api/events", h.HandleList)
	r.Get("/api/events/{id}", h.HandleGet)
	r.Post("/api/events", h.HandleCreate)
	r.Put("/api/events/{id}", h.HandleUpdate)
	r.Delete("/api/events/{id}", h.HandleDelete)
	return r, svc
}

func seedEvent(t *testing.T, svc *service.EventService, title, category string, date time.Time) *model.Event {
	t.Helper()
	event, err := svc.Create(context.Background(), service.CreateEventInput{
		Title:    title,
		Date:     date,
		Location: "Berlin",
		Category: category,
		Capacity: 50,
		Price:    2500,
	})
	if err != nil {
		t.Fatalf("seed Create(%q) error = %v", title, err)
	}
	return event
}

func TestEventHandler_List(t *testing.T) {
	r, svc := newEventRouter(t)
	seedEvent(t, svc, "Jazz Night", "Music", time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC))
	seedEvent(t, svc, "Go Workshop", "Tech", time.Date(2026, 10, 2, 9, 0, 0, 0, time.UTC))

	t.Run("all events", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Events []model.Event `json:"events"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Len(t, body.Events, 2)
	})

	t.Run("category filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events?category=music", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		var body struct {
			Events []model.Event `json:"events"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Len(t, body.Events, 1)
		assert.Equal(t, "Jazz Night", body.Events[0].Title)
	})

	t.Run("date filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events?date=2026-10", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		var body struct {
			Events []model.Event `json:"events"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Len(t, body.Events, 1)
		assert.Equal(t, "Go Workshop", body.Events[0].Title)
	})
}

func TestEventHandler_Get(t *testing.T) {
	r, svc := newEventRouter(t)
	event := seedEvent(t, svc, "Jazz Night", "Music", time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC))

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events/"+event.ID, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Event model.Event `json:"event"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, event.ID, body.Event.ID)
		assert.Equal(t, "Jazz Night", body.Event.Title)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events/ghost", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "not_found", body.Error)
	})
}

func TestEventHandler_Create(t *testing.T) {
	r, _ := newEventRouter(t)

	t.Run("valid", func(t *testing.T) {
		payload := `{
			"title": "Street Food Festival",
			"date": "2026-10-17T12:00:00Z",
			"location": "London",
			"category": "Food",
			"capacity": 500,
			"price": 1200
		}`
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(payload))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var body struct {
			Event model.Event `json:"event"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.NotEmpty(t, body.Event.ID)
		assert.Equal(t, 500, body.Event.Available)
		assert.Equal(t, model.EventStatusActive, body.Event.Status)
	})

	t.Run("bad date format", func(t *testing.T) {
		payload := `{"title": "X", "date": "17/10/2026", "location": "London", "price": 1200}`
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(payload))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing required field", func(t *testing.T) {
		payload := `{"date": "2026-10-17T12:00:00Z", "location": "London", "price": 1200}`
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(payload))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var body handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "validation_error", body.Error)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString("{not json"))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventHandler_Update(t *testing.T) {
	r, svc := newEventRouter(t)
	event := seedEvent(t, svc, "Jazz Night", "Music", time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC))

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		payload := `{"title": "Jazz Night Extended"}`
		req := httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID, bytes.NewBufferString(payload))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Event model.Event `json:"event"`
		}
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Jazz Night Extended", body.Event.Title)
		assert.Equal(t, "Berlin", body.Event.Location)
		assert.Equal(t, int64(2500), body.Event.Price)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/events/ghost", bytes.NewBufferString(`{"title":"X"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/events/"+event.ID, bytes.NewBufferString(`{"status":"paused"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEventHandler_Delete(t *testing.T) {
	r, svc := newEventRouter(t)
	event := seedEvent(t, svc, "Jazz Night", "Music", time.Date(2026, 9, 14, 19, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodDelete, "/api/events/"+event.ID, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]bool
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.True(t, body["success"])

	// Gone now.
	req = httptest.NewRequest(http.MethodGet, "/api/events/"+event.ID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
