package models

import (
	"cmp"
	"strings"
)

// Compare orders two games for a listing. Games without a value for the sort
// key come last in both directions; remaining ties keep insertion order.
func Compare(a, b *Game, key SortKey, desc bool) int {
	var c int
	switch key {
	case SortReleaseDate:
		c = compareNullable(a.ReleaseDate == nil, b.ReleaseDate == nil, desc, func() int {
			return a.ReleaseDate.Compare(*b.ReleaseDate)
		})
	case SortRating:
		c = compareNullable(a.PersonalRating == nil, b.PersonalRating == nil, desc, func() int {
			return cmp.Compare(*a.PersonalRating, *b.PersonalRating)
		})
	case SortStatus:
		c = directed(cmp.Compare(string(a.Status), string(b.Status)), desc)
	default:
		c = directed(cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)), desc)
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

func compareNullable(aNil, bNil, desc bool, both func() int) int {
	switch {
	case aNil && bNil:
		return 0
	case aNil:
		return 1
	case bNil:
		return -1
	}
	return directed(both(), desc)
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}
