package handler

import (
	"strings"
	"unicode/utf8"

	"gamelib/internal/console/models"
	dErrors "gamelib/pkg/domain-errors"
)

// CreateConsoleRequest is the body of POST /consoles.
type CreateConsoleRequest struct {
	Name               string `json:"name"`
	ExternalPlatformID *int   `json:"externalPlatformId"`
}

// Validate implements httputil.Validatable.
func (r *CreateConsoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if err := validateName(&r.Name); err != nil {
		return err
	}
	if r.ExternalPlatformID != nil && *r.ExternalPlatformID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "externalPlatformId must be a positive integer")
	}
	return nil
}

// RenameConsoleRequest is the body of PUT /consoles/{id}.
type RenameConsoleRequest struct {
	Name string `json:"name"`
}

func (r *RenameConsoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return validateName(&r.Name)
}

func validateName(name *string) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if utf8.RuneCountInString(*name) > models.MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be 128 characters or less")
	}
	return nil
}
