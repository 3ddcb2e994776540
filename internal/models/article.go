// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Article represents a blog article. An article always has exactly one
// author and one category; tags are a many-to-many association.
type Article struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	AuthorID   uuid.UUID `json:"author_id"`
	CategoryID uuid.UUID `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	Author   *User     `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
	Tags     []Tag     `json:"tags,omitempty"`
}

// TagString returns the article's tag names joined with ", ", in the
// order they were attached. Used to pre-populate the tags form field.
func (a *Article) TagString() string {
	names := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}
