package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/eventhub/internal/model"
	"github.com/sakif/eventhub/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// okHandler records whether it ran and which user id it saw.
type okHandler struct {
	called bool
	userID string
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.userID, _ = UserIDFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// =========================================================================
// REQUIRE AUTH TESTS
// =========================================================================

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	next := &okHandler{}
	handler := RequireAuth(ts)(next)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !next.called {
		t.Fatal("next handler was not called")
	}
	if next.userID != "user-42" {
		t.Errorf("user id in context = %q, want %q", next.userID, "user-42")
	}
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	ts := newTestTokenService(t)
	next := &okHandler{}
	handler := RequireAuth(ts)(next)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if next.called {
		t.Error("next handler should not run without a token")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	ts := newTestTokenService(t)

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer ", "bearer lowercase-scheme"} {
		next := &okHandler{}
		handler := RequireAuth(ts)(next)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
		if next.called {
			t.Errorf("header %q: next handler should not run", header)
		}
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.IssueWithDuration("user-42", -1)
	if err != nil {
		t.Fatalf("IssueWithDuration() error = %v", err)
	}

	next := &okHandler{}
	handler := RequireAuth(ts)(next)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if next.called {
		t.Error("next handler should not run with an expired token")
	}
}

// =========================================================================
// REQUIRE ADMIN TESTS
// =========================================================================

func TestRequireAdmin_AdminUser(t *testing.T) {
	users := memory.New().Users()
	admin := &model.User{Email: "admin@example.com", IsAdmin: true}
	if err := users.Create(context.Background(), admin); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	next := &okHandler{}
	handler := RequireAdmin(users, discardLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithUserID(req.Context(), admin.ID))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !next.called {
		t.Fatal("next handler was not called for an admin")
	}
}

func TestRequireAdmin_RegularUser(t *testing.T) {
	users := memory.New().Users()
	user := &model.User{Email: "user@example.com"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	next := &okHandler{}
	handler := RequireAdmin(users, discardLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithUserID(req.Context(), user.ID))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if next.called {
		t.Error("next handler should not run for a non-admin")
	}
}

func TestRequireAdmin_UnknownUser(t *testing.T) {
	users := memory.New().Users()

	next := &okHandler{}
	handler := RequireAdmin(users, discardLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithUserID(req.Context(), "ghost"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestRequireAdmin_NoUserInContext(t *testing.T) {
	users := memory.New().Users()

	next := &okHandler{}
	handler := RequireAdmin(users, discardLogger())(next)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
