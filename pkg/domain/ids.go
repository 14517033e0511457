package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "gamelib/pkg/domain-errors"
)

// Typed identifiers keep console and game IDs from being mixed up at compile time.
type (
	ConsoleID uuid.UUID
	GameID    uuid.UUID
)

// NewConsoleID returns a fresh random console ID.
func NewConsoleID() ConsoleID { return ConsoleID(uuid.New()) }

// NewGameID returns a fresh random game ID.
func NewGameID() GameID { return GameID(uuid.New()) }

func (id ConsoleID) String() string { return uuid.UUID(id).String() }
func (id ConsoleID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id ConsoleID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *ConsoleID) UnmarshalText(b []byte) error {
	parsed, err := ParseConsoleID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id GameID) String() string { return uuid.UUID(id).String() }
func (id GameID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id GameID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

func (id *GameID) UnmarshalText(b []byte) error {
	parsed, err := ParseGameID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseConsoleID validates a console ID at a trust boundary.
func ParseConsoleID(s string) (ConsoleID, error) {
	u, err := parseUUID(s, "console ID")
	if err != nil {
		return ConsoleID{}, err
	}
	return ConsoleID(u), nil
}

// ParseGameID validates a game ID at a trust boundary.
func ParseGameID(s string) (GameID, error) {
	u, err := parseUUID(s, "game ID")
	if err != nil {
		return GameID{}, err
	}
	return GameID(u), nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	// uuid.Parse also accepts urn and braced forms; anything longer is noise.
	if len(s) > 45 {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
