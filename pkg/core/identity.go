package core

import "strings"

// Identity is the acting reviewer, captured client-side for the duration of
// a session and stamped onto every annotation created during it. It is not
// a stored server entity.
type Identity struct {
	FirstName string
	LastName  string
	Email     string
	Company   string
}

// Complete reports whether the identity carries the required fields.
// Company is optional.
func (i Identity) Complete() bool {
	return strings.TrimSpace(i.FirstName) != "" &&
		strings.TrimSpace(i.LastName) != "" &&
		strings.TrimSpace(i.Email) != ""
}

// DisplayName returns "First Last", trimmed.
func (i Identity) DisplayName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}
