package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"blogpress/internal/middleware"
	"blogpress/internal/session"
)

// helperSession returns a session.Data suitable for rendering pages.
func helperSession() *session.Data {
	return &session.Data{
		UserID:    uuid.New(),
		Username:  "tester",
		FullName:  "Test User",
		IsAdmin:   true,
		TwoFADone: true,
	}
}

// helperRequestWithContext builds an *http.Request whose context carries a
// session, which the base layout expects.
func helperRequestWithContext(method, target string, sess *session.Data) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := req.Context()
	if sess != nil {
		ctx = context.WithValue(ctx, middleware.SessionKey, sess)
	}
	return req.WithContext(ctx)
}

func TestNew(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if rn == nil {
		t.Fatal("New() returned nil renderer")
	}
	if len(rn.templates) == 0 {
		t.Error("renderer has no parsed templates")
	}

	// Verify well-known templates exist.
	for _, name := range []string{
		"article_list", "article_detail", "article_form", "article_delete",
		"user_list", "user_form", "user_delete",
		"login", "2fa_setup", "2fa_verify",
	} {
		if _, ok := rn.templates[name]; !ok {
			t.Errorf("expected template %q to be parsed", name)
		}
	}

	// base.html should NOT appear as a standalone template key.
	if _, ok := rn.templates["base"]; ok {
		t.Error("base.html should not be registered as a separate template")
	}
}

func TestPageRendering(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sess := helperSession()
	req := helperRequestWithContext(http.MethodGet, "/Article/List", sess)
	w := httptest.NewRecorder()

	rn.Page(w, req, "article_list", &PageData{
		Title:   "Articles",
		Section: "articles",
		Session: sess,
		Data:    map[string]any{"Articles": nil},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	body := w.Body.String()

	// Full page render should contain the base layout HTML structure.
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("full page render should contain <!DOCTYPE html>")
	}
	if !strings.Contains(body, "BlogPress") {
		t.Error("full page render should contain BlogPress branding")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type: got %q, want %q", ct, "text/html; charset=utf-8")
	}
}

// Standalone pages (login, 2FA) carry their own document shell rather
// than the base layout with its nav.
func TestStandaloneTemplates(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	for _, name := range []string{"login", "2fa_setup", "2fa_verify"} {
		t.Run(name, func(t *testing.T) {
			req := helperRequestWithContext(http.MethodGet, "/"+name, nil)
			w := httptest.NewRecorder()

			rn.Page(w, req, name, &PageData{
				Title: name,
				Data:  map[string]any{},
			})

			if w.Code != http.StatusOK {
				t.Fatalf("template %q: expected 200, got %d; body: %s", name, w.Code, w.Body.String())
			}

			body := w.Body.String()
			if !strings.Contains(body, "<!DOCTYPE html>") {
				t.Errorf("template %q: expected standalone HTML with <!DOCTYPE html>", name)
			}
			if strings.Contains(body, "<nav>") {
				t.Errorf("template %q: should NOT contain the base layout nav", name)
			}
		})
	}
}

func TestMissingTemplate(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	req := helperRequestWithContext(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()

	rn.Page(w, req, "nonexistent_template", &PageData{Title: "Not Found"})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not found") {
		t.Error("error response should mention template not found")
	}
}

// The CSRF token placed in the request context by the middleware must end
// up in the rendered form's hidden field.
func TestPageDataCSRFInjection(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	csrfMiddleware := middleware.NewCSRF(false)
	var capturedReq *http.Request
	inner := csrfMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
	}))

	setupReq := httptest.NewRequest(http.MethodGet, "/login", nil)
	setupRR := httptest.NewRecorder()
	inner.ServeHTTP(setupRR, setupReq)

	if capturedReq == nil {
		t.Fatal("CSRF middleware did not call inner handler")
	}

	csrfToken := middleware.CSRFTokenFromCtx(capturedReq.Context())
	if csrfToken == "" {
		t.Fatal("CSRF token not found in context")
	}

	w := httptest.NewRecorder()
	data := &PageData{Title: "Login"}
	rn.Page(w, capturedReq, "login", data)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	if !strings.Contains(w.Body.String(), csrfToken) {
		t.Error("rendered output should contain the CSRF token from context")
	}
	if data.CSRFToken != csrfToken {
		t.Errorf("PageData.CSRFToken: got %q, want %q", data.CSRFToken, csrfToken)
	}
}

func TestSessionInjectionFromContext(t *testing.T) {
	rn, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	sess := helperSession()
	req := helperRequestWithContext(http.MethodGet, "/Article/List", sess)
	w := httptest.NewRecorder()

	// Pass PageData WITHOUT setting Session; it should come from context.
	data := &PageData{
		Title:   "Articles",
		Section: "articles",
		Data:    map[string]any{"Articles": nil},
	}
	rn.Page(w, req, "article_list", data)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	if data.Session == nil {
		t.Fatal("expected Session to be injected from context")
	}
	if data.Session.FullName != "Test User" {
		t.Errorf("Session.FullName: got %q, want %q", data.Session.FullName, "Test User")
	}

	// The nav greets the signed-in user by full name.
	if !strings.Contains(w.Body.String(), "Test User") {
		t.Error("rendered output should contain the session FullName")
	}
}
