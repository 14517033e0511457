package models

import (
	"strings"

	dErrors "gamelib/pkg/domain-errors"
)

// Status is where a game sits in the collection. Every transition is allowed.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusPlayed     Status = "Played"
	StatusWantToPlay Status = "WantToPlay"
	StatusWishlist   Status = "Wishlist"
)

// Statuses lists every status in sort order.
var Statuses = []Status{StatusBacklog, StatusPlayed, StatusWantToPlay, StatusWishlist}

func (s Status) IsValid() bool {
	switch s {
	case StatusBacklog, StatusPlayed, StatusWantToPlay, StatusWishlist:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts only the canonical names.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	s := Status(raw)
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation,
			"status must be one of Backlog, Played, WantToPlay, Wishlist")
	}
	return s, nil
}
