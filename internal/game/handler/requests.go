package handler

import (
	"strings"
	"time"

	"gamelib/internal/game/models"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/optional"
)

// CreateGameRequest is the body of POST /games. A present externalId adds the
// game as a catalog entry; otherwise it is a manual entry.
type CreateGameRequest struct {
	Title          string   `json:"title"`
	ConsoleID      string   `json:"consoleId"`
	ExternalID     *int     `json:"externalId"`
	Status         *string  `json:"status"`
	ReleaseDate    *string  `json:"releaseDate"`
	Cover          *string  `json:"cover"`
	CriticScore    *int     `json:"criticScore"`
	PersonalRating *float64 `json:"personalRating"`

	fields models.Fields
}

// Validate implements httputil.Validatable and prepares Fields.
func (r *CreateGameRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(r.ConsoleID) == "" {
		return dErrors.New(dErrors.CodeValidation, "consoleId is required")
	}
	consoleID, err := id.ParseConsoleID(r.ConsoleID)
	if err != nil {
		return err
	}

	f := models.Fields{
		Title:          r.Title,
		ConsoleID:      consoleID,
		ExternalID:     r.ExternalID,
		Cover:          r.Cover,
		CriticScore:    r.CriticScore,
		PersonalRating: r.PersonalRating,
	}
	if r.Status != nil {
		if f.Status, err = models.ParseStatus(*r.Status); err != nil {
			return err
		}
	}
	if r.ReleaseDate != nil && strings.TrimSpace(*r.ReleaseDate) != "" {
		d, err := models.ParseReleaseDate(*r.ReleaseDate)
		if err != nil {
			return err
		}
		f.ReleaseDate = &d
	}
	r.fields = f
	return nil
}

// Fields returns the prepared game attributes. Call after Validate.
func (r *CreateGameRequest) Fields() models.Fields {
	return r.fields
}

// FromExternalSource reports whether the request carries a catalog id.
func (r *CreateGameRequest) FromExternalSource() bool {
	return r.ExternalID != nil
}

// UpdateGameRequest is the body of PUT /games/{id}. Keys left out are not
// touched; null clears optional fields.
type UpdateGameRequest struct {
	Title          optional.Value[string]  `json:"title"`
	ConsoleID      optional.Value[string]  `json:"consoleId"`
	ExternalID     optional.Value[int]     `json:"externalId"`
	ReleaseDate    optional.Value[string]  `json:"releaseDate"`
	Cover          optional.Value[string]  `json:"cover"`
	CriticScore    optional.Value[int]     `json:"criticScore"`
	PersonalRating optional.Value[float64] `json:"personalRating"`
	Status         optional.Value[string]  `json:"status"`

	patch models.Patch
}

func (r *UpdateGameRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if (r.Title.Present && r.Title.Null) ||
		(r.ConsoleID.Present && r.ConsoleID.Null) ||
		(r.Status.Present && r.Status.Null) {
		return dErrors.New(dErrors.CodeValidation, "title, consoleId and status cannot be null")
	}

	p := models.Patch{
		Title:          r.Title,
		ExternalID:     r.ExternalID,
		Cover:          r.Cover,
		CriticScore:    r.CriticScore,
		PersonalRating: r.PersonalRating,
	}
	if r.Title.Present && strings.TrimSpace(r.Title.V) == "" {
		return dErrors.New(dErrors.CodeValidation, "title cannot be empty")
	}
	if r.ConsoleID.Present {
		consoleID, err := id.ParseConsoleID(r.ConsoleID.V)
		if err != nil {
			return err
		}
		p.ConsoleID = optional.Of(consoleID)
	}
	if r.Status.Present {
		s, err := models.ParseStatus(r.Status.V)
		if err != nil {
			return err
		}
		p.Status = optional.Of(s)
	}
	if r.ReleaseDate.Present {
		switch {
		case r.ReleaseDate.Null, strings.TrimSpace(r.ReleaseDate.V) == "":
			p.ReleaseDate = optional.Null[time.Time]()
		default:
			d, err := models.ParseReleaseDate(r.ReleaseDate.V)
			if err != nil {
				return err
			}
			p.ReleaseDate = optional.Of(d)
		}
	}
	r.patch = p
	return nil
}

// Patch returns the prepared partial update. Call after Validate.
func (r *UpdateGameRequest) Patch() models.Patch {
	return r.patch
}

// StatusRequest is the body of PATCH /games/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`

	status models.Status
}

func (r *StatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Status) == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	s, err := models.ParseStatus(r.Status)
	if err != nil {
		return err
	}
	r.status = s
	return nil
}
