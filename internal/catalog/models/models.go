// Package models holds the game metadata returned by the external catalog.
package models

// Platform is a hardware platform known to the catalog.
type Platform struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SearchQuery is a title search, optionally restricted to one platform.
type SearchQuery struct {
	Query      string
	PlatformID *int
	Page       int
}

// SearchResult is one catalog hit. Missing metadata stays nil.
type SearchResult struct {
	ExternalID  int
	Title       string
	Cover       *string
	ReleaseDate *string
	CriticScore *int
}

// GameDetails is the full catalog record of one game.
type GameDetails struct {
	ExternalID  int
	Title       string
	Description string
	Cover       *string
	ReleaseDate *string
	CriticScore *int
	Website     *string
	Platforms   []string
	Genres      []string
}
