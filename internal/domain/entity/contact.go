package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// Contact represents a person the call agent will reach out to.
type Contact struct {
	ID    int64
	Name  string
	Phone string
}

// phonePattern accepts E.164-style numbers: an optional leading plus
// followed by 7 to 15 digits.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Validate validates the Contact entity fields.
// It checks that the contact has a name and a dialable phone number.
// Returns a ValidationError describing the first failing field.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}

	if c.Phone == "" {
		return &ValidationError{Field: "phone", Message: "phone is required"}
	}

	if !phonePattern.MatchString(c.Phone) {
		return &ValidationError{
			Field:   "phone",
			Message: fmt.Sprintf("phone %q must be 7-15 digits with an optional leading +", c.Phone),
		}
	}

	return nil
}
