package models

import (
	"strings"
	"time"

	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
)

// MaxNameLength bounds console names.
const MaxNameLength = 128

// Console is a gaming platform the collection is organised by.
//
// Invariants:
//   - Name is trimmed, non-empty and at most 128 characters
//   - Name is unique case-insensitively across consoles (enforced by the store)
//   - ExternalPlatformID, when present, is positive and unique (enforced by the store)
//   - A console linked to an external platform keeps the provider's name
//   - CreatedAt is immutable after construction
type Console struct {
	ID                 id.ConsoleID
	Name               string
	ExternalPlatformID *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewConsole validates and builds a console.
func NewConsole(consoleID id.ConsoleID, name string, externalPlatformID *int, now time.Time) (*Console, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if externalPlatformID != nil && *externalPlatformID <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "externalPlatformId must be a positive integer")
	}
	var platform *int
	if externalPlatformID != nil {
		p := *externalPlatformID
		platform = &p
	}
	return &Console{
		ID:                 consoleID,
		Name:               name,
		ExternalPlatformID: platform,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IsPlatformLinked reports whether the console mirrors an external platform.
func (c *Console) IsPlatformLinked() bool {
	return c.ExternalPlatformID != nil
}

// CanRename checks the new name and that the console was added manually.
func (c *Console) CanRename(name string) (string, error) {
	name, err := normalizeName(name)
	if err != nil {
		return "", err
	}
	if c.IsPlatformLinked() {
		return "", dErrors.New(dErrors.CodeConflict, "consoles linked to an external platform cannot be renamed")
	}
	return name, nil
}

// ApplyRename sets the new name. Call CanRename first.
func (c *Console) ApplyRename(name string, now time.Time) {
	c.Name = name
	c.UpdatedAt = now
}

// NameKey is the case-folded form used for uniqueness and ordering.
func (c *Console) NameKey() string {
	return NameKey(c.Name)
}

// NameKey case-folds a console name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (c *Console) Clone() *Console {
	if c == nil {
		return nil
	}
	out := *c
	if c.ExternalPlatformID != nil {
		p := *c.ExternalPlatformID
		out.ExternalPlatformID = &p
	}
	return &out
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "console name cannot be empty")
	}
	if len([]rune(name)) > MaxNameLength {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "console name must be 128 characters or less")
	}
	return name, nil
}
