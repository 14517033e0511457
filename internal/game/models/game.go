package models

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/optional"
)

const (
	MaxTitleLength    = 256
	MaxCoverLength    = 2048
	MaxCriticScore    = 100
	MaxPersonalRating = 5.0
	ratingStep        = 0.5
	releaseDateLayout = "2006-01-02"
)

// Game is one title in the collection, owned by exactly one console.
//
// Invariants:
//   - Title is trimmed, non-empty and at most 256 characters
//   - ExternalID, when present, is positive and unique per console (enforced by the store)
//   - CriticScore is within 0..100, PersonalRating within 0..5 in half steps
//   - Status is one of the four known statuses
//   - Seq is assigned by the store and orders games by insertion
type Game struct {
	ID             id.GameID
	Seq            int64
	Title          string
	ConsoleID      id.ConsoleID
	ExternalID     *int
	ReleaseDate    *time.Time
	Cover          *string
	CriticScore    *int
	PersonalRating *float64
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Fields are the caller supplied attributes of a new game.
type Fields struct {
	Title          string
	ConsoleID      id.ConsoleID
	ExternalID     *int
	ReleaseDate    *time.Time
	Cover          *string
	CriticScore    *int
	PersonalRating *float64
	Status         Status
}

// NewGame validates fields and builds a game. An empty status defaults to Backlog.
func NewGame(gameID id.GameID, f Fields, now time.Time) (*Game, error) {
	if f.Status == "" {
		f.Status = StatusBacklog
	}
	g := &Game{
		ID:             gameID,
		Title:          strings.TrimSpace(f.Title),
		ConsoleID:      f.ConsoleID,
		ExternalID:     clonePtr(f.ExternalID),
		ReleaseDate:    normalizeDate(f.ReleaseDate),
		Cover:          normalizeCover(f.Cover),
		CriticScore:    clonePtr(f.CriticScore),
		PersonalRating: clonePtr(f.PersonalRating),
		Status:         f.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Patch is a partial update. Absent fields are left alone; null clears an
// optional field. Title, console and status cannot be null.
type Patch struct {
	Title          optional.Value[string]
	ConsoleID      optional.Value[id.ConsoleID]
	ExternalID     optional.Value[int]
	ReleaseDate    optional.Value[time.Time]
	Cover          optional.Value[string]
	CriticScore    optional.Value[int]
	PersonalRating optional.Value[float64]
	Status         optional.Value[Status]
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return !p.Title.Present && !p.ConsoleID.Present && !p.ExternalID.Present &&
		!p.ReleaseDate.Present && !p.Cover.Present && !p.CriticScore.Present &&
		!p.PersonalRating.Present && !p.Status.Present
}

// Apply returns a copy of g with the patch applied, or an invariant violation.
// g itself is never modified.
func (g *Game) Apply(p Patch, now time.Time) (*Game, error) {
	if (p.Title.Present && p.Title.Null) ||
		(p.ConsoleID.Present && p.ConsoleID.Null) ||
		(p.Status.Present && p.Status.Null) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title, consoleId and status cannot be null")
	}

	next := g.Clone()
	if p.Title.Present {
		next.Title = strings.TrimSpace(p.Title.V)
	}
	if p.ConsoleID.Present {
		next.ConsoleID = p.ConsoleID.V
	}
	if p.Status.Present {
		next.Status = p.Status.V
	}
	if p.ExternalID.Present {
		next.ExternalID = p.ExternalID.Ptr()
	}
	if p.ReleaseDate.Present {
		next.ReleaseDate = normalizeDate(p.ReleaseDate.Ptr())
	}
	if p.Cover.Present {
		next.Cover = normalizeCover(p.Cover.Ptr())
	}
	if p.CriticScore.Present {
		next.CriticScore = p.CriticScore.Ptr()
	}
	if p.PersonalRating.Present {
		next.PersonalRating = p.PersonalRating.Ptr()
	}
	if err := next.validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	return next, nil
}

// ApplyStatus sets the status. Every transition is permitted.
func (g *Game) ApplyStatus(s Status, now time.Time) error {
	if !s.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown status")
	}
	g.Status = s
	g.UpdatedAt = now
	return nil
}

// ReleaseDateString formats the release date as YYYY-MM-DD, or "" when unknown.
func (g *Game) ReleaseDateString() string {
	if g.ReleaseDate == nil {
		return ""
	}
	return g.ReleaseDate.Format(releaseDateLayout)
}

// ParseReleaseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseReleaseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(releaseDateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "releaseDate must be a date (YYYY-MM-DD)")
	}
	return t, nil
}

func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.ExternalID = clonePtr(g.ExternalID)
	out.ReleaseDate = clonePtr(g.ReleaseDate)
	out.Cover = clonePtr(g.Cover)
	out.CriticScore = clonePtr(g.CriticScore)
	out.PersonalRating = clonePtr(g.PersonalRating)
	return &out
}

func (g *Game) validate() error {
	if g.Title == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "title is required")
	}
	if utf8.RuneCountInString(g.Title) > MaxTitleLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "title must be 256 characters or less")
	}
	if g.ConsoleID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "consoleId is required")
	}
	if g.ExternalID != nil && *g.ExternalID <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "externalId must be a positive integer")
	}
	if g.Cover != nil && len(*g.Cover) > MaxCoverLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "cover must be 2048 characters or less")
	}
	if g.CriticScore != nil && (*g.CriticScore < 0 || *g.CriticScore > MaxCriticScore) {
		return dErrors.New(dErrors.CodeInvariantViolation, "criticScore must be between 0 and 100")
	}
	if g.PersonalRating != nil && !validRating(*g.PersonalRating) {
		return dErrors.New(dErrors.CodeInvariantViolation, "personalRating must be between 0 and 5 in steps of 0.5")
	}
	if !g.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unknown status")
	}
	return nil
}

// normalizeDate drops the time of day so stores agree on the value.
func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// normalizeCover trims the URL and treats blank as absent.
func normalizeCover(c *string) *string {
	if c == nil {
		return nil
	}
	v := strings.TrimSpace(*c)
	if v == "" {
		return nil
	}
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func validRating(r float64) bool {
	if math.IsNaN(r) || r < 0 || r > MaxPersonalRating {
		return false
	}
	steps := r / ratingStep
	return steps == math.Trunc(steps)
}
