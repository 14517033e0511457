package handler

import (
	"time"

	"gamelib/internal/console/models"
)

type ConsoleResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	ExternalPlatformID *int      `json:"externalPlatformId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ClearGamesResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

func toConsoleResponse(c *models.Console) ConsoleResponse {
	return ConsoleResponse{
		ID:                 c.ID.String(),
		Name:               c.Name,
		ExternalPlatformID: c.ExternalPlatformID,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toConsoleResponses(consoles []*models.Console) []ConsoleResponse {
	out := make([]ConsoleResponse, 0, len(consoles))
	for _, c := range consoles {
		out = append(out, toConsoleResponse(c))
	}
	return out
}
