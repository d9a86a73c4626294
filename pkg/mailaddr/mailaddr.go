// Package mailaddr normalises email addresses the same way everywhere an
// address is accepted.
package mailaddr

import (
	"errors"
	"net/mail"
	"strings"
)

var ErrInvalid = errors.New("invalid email address")

// Normalize parses raw as an RFC 5322 address and returns the bare address
// lowercased. Display names are dropped.
func Normalize(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Join(ErrInvalid, err)
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}

// LocalPart returns the part of email before the @, or email itself.
func LocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
