package models

import (
	"strings"

	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
)

// SortKey selects the ordering of a game listing.
type SortKey string

const (
	SortTitle       SortKey = "title"
	SortReleaseDate SortKey = "releaseDate"
	SortStatus      SortKey = "status"
	SortRating      SortKey = "rating"
)

// ListFilter narrows and orders a game listing. Zero values mean "no filter"
// and title ascending. Missing values sort last in either direction and ties
// fall back to insertion order.
type ListFilter struct {
	ConsoleID *id.ConsoleID
	Status    *Status
	Search    string
	Sort      SortKey
	Desc      bool
}

// ParseSortKey accepts an empty key (title) or one of the known keys.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(raw)); k {
	case "":
		return SortTitle, nil
	case SortTitle, SortReleaseDate, SortStatus, SortRating:
		return k, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "sort must be one of title, releaseDate, status, rating")
}

// ParseOrder maps asc|desc to a descending flag. Empty means ascending.
func ParseOrder(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "asc":
		return false, nil
	case "desc":
		return true, nil
	}
	return false, dErrors.New(dErrors.CodeValidation, "order must be asc or desc")
}

// Matches reports whether g passes the filter's predicates.
func (f ListFilter) Matches(g *Game) bool {
	if f.ConsoleID != nil && g.ConsoleID != *f.ConsoleID {
		return false
	}
	if f.Status != nil && g.Status != *f.Status {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(g.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// ConsoleRef is the console data embedded in game listings.
type ConsoleRef struct {
	ID                 id.ConsoleID
	Name               string
	ExternalPlatformID *int
}

// View is a game joined with its console. Console is nil only if the console
// vanished between the two reads.
type View struct {
	*Game
	Console *ConsoleRef
}
