// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/identity"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/store"
)

// User groups the admin user-management HTTP handlers. The whole group is
// gated behind the Admin role at the router.
type User struct {
	renderer     *render.Renderer
	userStore    *store.UserStore
	articleStore *store.ArticleStore
	ids          identity.Manager
}

// NewUser creates a new User handler group.
func NewUser(renderer *render.Renderer, userStore *store.UserStore, articleStore *store.ArticleStore, ids identity.Manager) *User {
	return &User{
		renderer:     renderer,
		userStore:    userStore,
		articleStore: articleStore,
		ids:          ids,
	}
}

// List renders all users, annotated with the set of usernames that hold
// the Admin role. One membership query per user; fine at admin-panel
// scale, a known bound for large user counts.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	admins := make(map[string]bool, len(users))
	for _, u := range users {
		isAdmin, err := h.ids.IsInRole(r.Context(), u.ID, models.RoleAdmin)
		if err != nil {
			slog.Error("admin annotation failed", "error", err, "user", u.Username)
			continue
		}
		if isAdmin {
			admins[u.Username] = true
		}
	}

	h.renderer.Page(w, r, "user_list", &render.PageData{
		Title:   "Users",
		Section: "users",
		Data: map[string]any{
			"Users":  users,
			"Admins": admins,
		},
	})
}

// EditForm renders the user edit form with one checkbox per role, checked
// when the user currently holds that role.
func (h *User) EditForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}

	selections, err := h.roleSelections(r.Context(), user.ID)
	if err != nil {
		slog.Error("load role selections failed", "error", err, "user", user.Username)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	form := EditUserForm{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}
	h.renderForm(w, r, user.ID, form, selections, nil)
}

// EditSubmit applies profile edits, an optional password change, and role
// reconciliation, then redirects to the user list.
func (h *User) EditSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}

	form := editUserFormFromRequest(r)

	selections, err := postedRoleSelections(r, h.ids)
	if err != nil {
		slog.Error("list roles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if errs := validateForm(form); len(errs) > 0 {
		h.renderForm(w, r, user.ID, form, selections, errs)
		return
	}

	// A posted password replaces the stored hash; blank keeps it.
	if form.Password != "" {
		hash, err := h.ids.HashPassword(form.Password)
		if err != nil {
			slog.Error("hash password failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		user.PasswordHash = hash
	}

	user.Username = form.Username
	user.Email = form.Email
	user.FullName = form.FullName

	if err := h.userStore.Update(user); err != nil {
		slog.Error("update user failed", "error", err, "id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := reconcileRoles(r.Context(), h.ids, user.ID, selections); err != nil {
		slog.Error("reconcile roles failed", "error", err, "id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/Admin/User/List", http.StatusSeeOther)
}

// DeleteConfirm renders the delete confirmation view, including how many
// of the user's articles the cascade will remove.
func (h *User) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}

	count, err := h.articleStore.CountByAuthor(user.ID)
	if err != nil {
		slog.Error("count user articles failed", "error", err, "id", user.ID)
	}

	h.renderer.Page(w, r, "user_delete", &render.PageData{
		Title:   "Delete User",
		Section: "users",
		Data: map[string]any{
			"User":         user,
			"ArticleCount": count,
		},
	})
}

// DeleteSubmit deletes the user's articles and then the user, in one
// transaction. Admins cannot delete their own account.
func (h *User) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == user.ID {
		http.Error(w, "Cannot delete your own account", http.StatusForbidden)
		return
	}

	if err := h.userStore.DeleteCascade(user.ID); err != nil {
		slog.Error("delete user failed", "error", err, "id", user.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	admin := ""
	if sess != nil {
		admin = sess.Username
	}
	slog.Info("user deleted", "admin", admin, "deleted_user", user.Username)
	http.Redirect(w, r, "/Admin/User/List", http.StatusSeeOther)
}

// findUser parses the id route parameter and loads the user, writing
// 400/404/500 as appropriate.
func (h *User) findUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}

	user, err := h.userStore.FindByID(id)
	if err != nil {
		slog.Error("find user failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if user == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return user, true
}

// roleSelections builds the checkbox entries for the edit form: every role
// name sorted ascending, selected when the identity service reports
// membership.
func (h *User) roleSelections(ctx context.Context, userID uuid.UUID) ([]models.RoleSelection, error) {
	names, err := h.ids.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	selections := make([]models.RoleSelection, 0, len(names))
	for _, name := range names {
		held, err := h.ids.IsInRole(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		selections = append(selections, models.RoleSelection{Name: name, IsSelected: held})
	}
	return selections, nil
}

// postedRoleSelections reads the role checkboxes from the submitted form.
// Unchecked boxes are absent from the post, so the full role catalogue is
// read from the identity service and each role carries its posted state.
// Posted names outside the catalogue are ignored.
func postedRoleSelections(r *http.Request, ids identity.Manager) ([]models.RoleSelection, error) {
	_ = r.ParseForm()
	checked := make(map[string]bool, len(r.PostForm["roles"]))
	for _, name := range r.PostForm["roles"] {
		checked[name] = true
	}

	names, err := ids.ListRoles(r.Context())
	if err != nil {
		return nil, err
	}

	selections := make([]models.RoleSelection, 0, len(names))
	for _, name := range names {
		selections = append(selections, models.RoleSelection{Name: name, IsSelected: checked[name]})
	}
	return selections, nil
}

// reconcileRoles diffs the posted selections against actual membership and
// applies only the changes. Idempotent and order-independent: replaying
// the same selections converges to the same membership set.
func reconcileRoles(ctx context.Context, ids identity.Manager, userID uuid.UUID, selections []models.RoleSelection) error {
	for _, sel := range selections {
		held, err := ids.IsInRole(ctx, userID, sel.Name)
		if err != nil {
			return err
		}

		switch {
		case sel.IsSelected && !held:
			if err := ids.AddToRole(ctx, userID, sel.Name); err != nil {
				return err
			}
		case !sel.IsSelected && held:
			if err := ids.RemoveFromRole(ctx, userID, sel.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderForm renders the user edit form.
func (h *User) renderForm(w http.ResponseWriter, r *http.Request, id uuid.UUID, form EditUserForm, selections []models.RoleSelection, errs map[string]string) {
	h.renderer.Page(w, r, "user_form", &render.PageData{
		Title:   "Edit User",
		Section: "users",
		Data: map[string]any{
			"ID":     id,
			"Form":   form,
			"Roles":  selections,
			"Errors": errs,
		},
	})
}
