// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "github.com/google/uuid"

// Tag is a named label attached to articles. Tag names are stored
// lower-cased and are unique; tags are created on demand and never
// garbage-collected when the last article stops referencing them.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
