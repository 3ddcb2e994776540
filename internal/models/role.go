package models

// RoleSelection is a transient view model driving one role checkbox on the
// user edit form. It pairs a role name with whether the user currently
// holds that role. Built fresh per request; never persisted.
type RoleSelection struct {
	Name       string
	IsSelected bool
}
