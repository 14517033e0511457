package handler

import (
	"time"

	"gamelib/internal/game/models"
)

type ConsoleSummary struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	ExternalPlatformID *int   `json:"externalPlatformId"`
}

// GameResponse is a game with its console embedded. Unknown optional values
// are serialized as null.
type GameResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	ConsoleID      string          `json:"consoleId"`
	Console        *ConsoleSummary `json:"console"`
	ExternalID     *int            `json:"externalId"`
	ReleaseDate    *string         `json:"releaseDate"`
	Cover          *string         `json:"cover"`
	CriticScore    *int            `json:"criticScore"`
	PersonalRating *float64        `json:"personalRating"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toGameResponse(v *models.View) GameResponse {
	resp := GameResponse{
		ID:             v.ID.String(),
		Title:          v.Title,
		ConsoleID:      v.ConsoleID.String(),
		ExternalID:     v.ExternalID,
		Cover:          v.Cover,
		CriticScore:    v.CriticScore,
		PersonalRating: v.PersonalRating,
		Status:         string(v.Status),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	if d := v.ReleaseDateString(); d != "" {
		resp.ReleaseDate = &d
	}
	if v.Console != nil {
		resp.Console = &ConsoleSummary{
			ID:                 v.Console.ID.String(),
			Name:               v.Console.Name,
			ExternalPlatformID: v.Console.ExternalPlatformID,
		}
	}
	return resp
}

func toGameResponses(views []*models.View) []GameResponse {
	out := make([]GameResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toGameResponse(v))
	}
	return out
}
