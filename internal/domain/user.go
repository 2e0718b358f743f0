// Package domain contains identifiers and results without logic, just meta-data
package domain

import "strings"

const MaxUserIDLen = 36

// UserID is the stable identity issued by the external user directory.
type UserID string

func (id UserID) String() string { return string(id) }

// NewUserID trims and validates a raw identifier received from a client.
func NewUserID(raw string) (UserID, error) {
	s := strings.TrimSpace(raw)
	if len(s) == 0 {
		return "", ErrUserIDEmpty
	}
	if len(s) > MaxUserIDLen {
		return "", ErrUserIDTooLong
	}
	return UserID(s), nil
}
