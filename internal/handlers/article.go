// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the blog. Handlers are
// grouped by concern (articles, users, auth) and receive their
// dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogpress/internal/identity"
	"blogpress/internal/middleware"
	"blogpress/internal/models"
	"blogpress/internal/render"
	"blogpress/internal/store"
	"blogpress/internal/tags"
)

// Article groups the article HTTP handlers and their dependencies.
type Article struct {
	renderer      *render.Renderer
	articleStore  *store.ArticleStore
	categoryStore *store.CategoryStore
	ids           identity.Manager
}

// NewArticle creates a new Article handler group.
func NewArticle(renderer *render.Renderer, articleStore *store.ArticleStore, categoryStore *store.CategoryStore, ids identity.Manager) *Article {
	return &Article{
		renderer:      renderer,
		articleStore:  articleStore,
		categoryStore: categoryStore,
		ids:           ids,
	}
}

// List renders all articles with author and tags loaded. An empty list is
// not an error.
func (h *Article) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleStore.List()
	if err != nil {
		slog.Error("list articles failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "article_list", &render.PageData{
		Title:   "Articles",
		Section: "articles",
		Data:    map[string]any{"Articles": articles},
	})
}

// Details renders a single article.
func (h *Article) Details(w http.ResponseWriter, r *http.Request) {
	article, ok := h.findArticle(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	h.renderer.Page(w, r, "article_detail", &render.PageData{
		Title:   article.Title,
		Section: "articles",
		Data:    map[string]any{"Article": article},
	})
}

// CreateForm renders the new article form with the category list.
func (h *Article) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, true, uuid.Nil, ArticleForm{}, nil)
}

// CreateSubmit handles the new article form submission. The author is
// always the authenticated principal.
func (h *Article) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	form := articleFormFromRequest(r)
	if errs := validateForm(form); len(errs) > 0 {
		h.renderForm(w, r, true, uuid.Nil, form, errs)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		// RequireAuth guards this route; a missing session means the
		// middleware chain is miswired.
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	categoryID, _ := uuid.Parse(form.CategoryID) // validated above

	article := &models.Article{
		Title:      form.Title,
		Content:    form.Content,
		AuthorID:   sess.UserID,
		CategoryID: categoryID,
	}

	if _, err := h.articleStore.Create(article, tags.Parse(form.Tags)); err != nil {
		slog.Error("create article failed", "error", err, "author", sess.Username)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/Article/List", http.StatusSeeOther)
}

// EditForm renders the edit form pre-populated with the article's current
// title, content, category, and joined tag string.
func (h *Article) EditForm(w http.ResponseWriter, r *http.Request) {
	article, ok := h.findArticle(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if !h.authorize(w, r, article) {
		return
	}

	form := ArticleForm{
		Title:      article.Title,
		Content:    article.Content,
		CategoryID: article.CategoryID.String(),
		Tags:       article.TagString(),
	}
	h.renderForm(w, r, false, article.ID, form, nil)
}

// EditSubmit handles the edit form submission. The article id travels in a
// hidden form field; authorship never changes.
func (h *Article) EditSubmit(w http.ResponseWriter, r *http.Request) {
	form := articleFormFromRequest(r)

	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	if errs := validateForm(form); len(errs) > 0 {
		h.renderForm(w, r, false, id, form, errs)
		return
	}

	article, ok := h.findArticle(w, r, id.String())
	if !ok {
		return
	}
	if !h.authorize(w, r, article) {
		return
	}

	categoryID, _ := uuid.Parse(form.CategoryID) // validated above
	article.Title = form.Title
	article.Content = form.Content
	article.CategoryID = categoryID

	if err := h.articleStore.Update(article, tags.Parse(form.Tags)); err != nil {
		slog.Error("update article failed", "error", err, "id", article.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/Article/List", http.StatusSeeOther)
}

// DeleteConfirm renders the delete confirmation view.
func (h *Article) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	article, ok := h.findArticle(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if !h.authorize(w, r, article) {
		return
	}

	h.renderer.Page(w, r, "article_delete", &render.PageData{
		Title:   "Delete Article",
		Section: "articles",
		Data:    map[string]any{"Article": article},
	})
}

// DeleteSubmit removes the article after confirmation. The author-or-admin
// check runs here too: the GET confirmation alone is no protection against
// a direct POST.
func (h *Article) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	article, ok := h.findArticle(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if !h.authorize(w, r, article) {
		return
	}

	if err := h.articleStore.Delete(article.ID); err != nil {
		slog.Error("delete article failed", "error", err, "id", article.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/Article/List", http.StatusSeeOther)
}

// findArticle parses the id and loads the article, writing 400/404/500 as
// appropriate. The bool reports whether the caller may proceed.
func (h *Article) findArticle(w http.ResponseWriter, r *http.Request, idStr string) (*models.Article, bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return nil, false
	}

	article, err := h.articleStore.FindByID(id)
	if err != nil {
		slog.Error("find article failed", "error", err, "id", id)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if article == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return nil, false
	}
	return article, true
}

// authorize enforces the author-or-admin predicate on mutations, writing
// 403 when it fails. The admin check goes to the identity service so role
// changes apply immediately.
func (h *Article) authorize(w http.ResponseWriter, r *http.Request, article *models.Article) bool {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	if article.AuthorID == sess.UserID {
		return true
	}

	isAdmin, err := h.ids.IsInRole(r.Context(), sess.UserID, models.RoleAdmin)
	if err != nil {
		slog.Error("admin check failed", "error", err, "user", sess.Username)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	if !isAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// renderForm renders the article form with the category list ordered by name.
func (h *Article) renderForm(w http.ResponseWriter, r *http.Request, isNew bool, id uuid.UUID, form ArticleForm, errs map[string]string) {
	categories, err := h.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := "New Article"
	if !isNew {
		title = "Edit Article"
	}

	h.renderer.Page(w, r, "article_form", &render.PageData{
		Title:   title,
		Section: "articles",
		Data: map[string]any{
			"IsNew":      isNew,
			"ID":         id,
			"Form":       form,
			"Errors":     errs,
			"Categories": categories,
		},
	})
}
