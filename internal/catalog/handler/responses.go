package handler

import "gamelib/internal/catalog/models"

type PlatformResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SearchResultResponse mirrors models.SearchResult field for field.
type SearchResultResponse struct {
	ExternalID  int     `json:"externalId"`
	Title       string  `json:"title"`
	Cover       *string `json:"cover"`
	ReleaseDate *string `json:"releaseDate"`
	CriticScore *int    `json:"criticScore"`
}

type GameDetailsResponse struct {
	ExternalID  int      `json:"externalId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Cover       *string  `json:"cover"`
	ReleaseDate *string  `json:"releaseDate"`
	CriticScore *int     `json:"criticScore"`
	Website     *string  `json:"website"`
	Platforms   []string `json:"platforms"`
	Genres      []string `json:"genres"`
}

func toDetailsResponse(d *models.GameDetails) GameDetailsResponse {
	resp := GameDetailsResponse{
		ExternalID:  d.ExternalID,
		Title:       d.Title,
		Description: d.Description,
		Cover:       d.Cover,
		ReleaseDate: d.ReleaseDate,
		CriticScore: d.CriticScore,
		Website:     d.Website,
		Platforms:   d.Platforms,
		Genres:      d.Genres,
	}
	if resp.Platforms == nil {
		resp.Platforms = []string{}
	}
	if resp.Genres == nil {
		resp.Genres = []string{}
	}
	return resp
}
