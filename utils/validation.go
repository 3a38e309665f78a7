// utils/validation.go
package utils

import (
	"net/mail"
	"strings"
)

// ValidateEmail checks that an address parses as a bare RFC 5322 address.
// Display names ("Jane <jane@x>") are rejected, customers are keyed by the
// plain address.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
