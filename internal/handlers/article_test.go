package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/session"
	"blogpress/internal/store"
)

func requestWithSession(t *testing.T, userID uuid.UUID) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/Article/Delete/x", nil)
	if userID == uuid.Nil {
		return r
	}
	sess := &session.Data{UserID: userID, Username: "tester"}
	ctx := context.WithValue(r.Context(), middleware.SessionKey, sess)
	return r.WithContext(ctx)
}

// closedDB returns a *sql.DB whose every operation fails, for asserting
// that store errors surface as 500s instead of empty pages.
func closedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", "postgres://x:x@localhost:1/x")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	db.Close()
	return db
}

func TestArticleListStoreFailure(t *testing.T) {
	h := &Article{articleStore: store.NewArticleStore(closedDB(t))}

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/Article/List", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestArticleCreateFormStoreFailure(t *testing.T) {
	h := &Article{categoryStore: store.NewCategoryStore(closedDB(t))}

	w := httptest.NewRecorder()
	h.CreateForm(w, httptest.NewRequest(http.MethodGet, "/Article/Create", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// A valid submission without a session is rejected, not a panic. The route
// is behind RequireAuth; this is the guard against a miswired chain.
func TestArticleCreateSubmitNoSession(t *testing.T) {
	h := &Article{}

	form := url.Values{
		"title":       {"Orphan"},
		"content":     {"Body."},
		"category_id": {uuid.NewString()},
	}
	r := httptest.NewRequest(http.MethodPost, "/Article/Create", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.CreateSubmit(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestArticleAuthorize(t *testing.T) {
	author := uuid.New()
	admin := uuid.New()
	stranger := uuid.New()

	article := &models.Article{ID: uuid.New(), AuthorID: author}

	tests := []struct {
		name       string
		userID     uuid.UUID
		isAdmin    bool
		wantOK     bool
		wantStatus int
	}{
		{"author may mutate", author, false, true, http.StatusOK},
		{"admin may mutate another author's article", admin, true, true, http.StatusOK},
		{"stranger is forbidden", stranger, false, false, http.StatusForbidden},
		{"no session is forbidden", uuid.Nil, false, false, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := newFakeIdentity([]string{models.RoleAdmin, "User"})
			if tt.isAdmin {
				ids.membership[models.RoleAdmin] = true
			}
			h := &Article{ids: ids}

			w := httptest.NewRecorder()
			r := requestWithSession(t, tt.userID)

			ok := h.authorize(w, r, article)
			if ok != tt.wantOK {
				t.Errorf("authorize = %v, want %v", ok, tt.wantOK)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
