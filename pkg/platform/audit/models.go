package audit

import (
	"context"
	"time"
)

// Action names a state change worth recording.
type Action string

const (
	// Console events
	ActionConsoleRegistered   Action = "console_registered"
	ActionConsoleRenamed      Action = "console_renamed"
	ActionConsoleDeleted      Action = "console_deleted"
	ActionConsoleGamesCleared Action = "console_games_cleared"

	// Game events
	ActionGameAdded         Action = "game_added"
	ActionGameUpdated       Action = "game_updated"
	ActionGameStatusChanged Action = "game_status_changed"
	ActionGameDeleted       Action = "game_deleted"
)

// SubjectType identifies what kind of entity an event is about.
type SubjectType string

const (
	SubjectConsole SubjectType = "console"
	SubjectGame    SubjectType = "game"
)

// subjectTypes maps each action to the entity it concerns.
var subjectTypes = map[Action]SubjectType{
	ActionConsoleRegistered:   SubjectConsole,
	ActionConsoleRenamed:      SubjectConsole,
	ActionConsoleDeleted:      SubjectConsole,
	ActionConsoleGamesCleared: SubjectConsole,
	ActionGameAdded:           SubjectGame,
	ActionGameUpdated:         SubjectGame,
	ActionGameStatusChanged:   SubjectGame,
	ActionGameDeleted:         SubjectGame,
}

// SubjectType returns the entity kind for this action.
func (a Action) SubjectType() SubjectType {
	return subjectTypes[a]
}

// Event is emitted from domain logic after a successful change. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    Action
	// Subject is the ID of the console or game the event is about.
	Subject   string
	RequestID string
	// Details carries small action specific facts (new status, deleted count).
	Details map[string]string
}

// Store is a sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
