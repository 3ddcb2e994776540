// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ArticleForm is the view model for the article create and edit forms.
type ArticleForm struct {
	Title      string `validate:"required,max=50"`
	Content    string `validate:"required"`
	CategoryID string `validate:"required,uuid"`
	Tags       string
}

// EditUserForm is the view model for the admin user edit form. Password is
// optional: left blank, the stored hash is kept.
type EditUserForm struct {
	Username        string `validate:"required,max=100"`
	Email           string `validate:"required,email"`
	FullName        string `validate:"required,max=200"`
	Password        string `validate:"omitempty,min=8"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

var validate = validator.New()

// fieldLabels maps struct field names to the labels shown in messages.
var fieldLabels = map[string]string{
	"CategoryID":      "Category",
	"FullName":        "Full name",
	"ConfirmPassword": "Confirm password",
}

// validateForm runs the declared constraints and returns per-field
// messages, keyed by struct field name. An empty map means the form is valid.
func validateForm(form any) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return map[string]string{}
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"": "Invalid submission."}
	}

	msgs := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msgs[fe.Field()] = friendlyMessage(fe)
	}
	return msgs
}

// friendlyMessage converts a validator field error into a sentence
// suitable for inline display next to the field.
func friendlyMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", label)
	case "uuid":
		return fmt.Sprintf("%s is invalid.", label)
	case "eqfield":
		return "Passwords do not match."
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// articleFormFromRequest binds the posted article form fields.
func articleFormFromRequest(r *http.Request) ArticleForm {
	return ArticleForm{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Content:    r.FormValue("content"),
		CategoryID: r.FormValue("category_id"),
		Tags:       r.FormValue("tags"),
	}
}

// editUserFormFromRequest binds the posted user edit form fields.
func editUserFormFromRequest(r *http.Request) EditUserForm {
	return EditUserForm{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		FullName:        strings.TrimSpace(r.FormValue("full_name")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
}
