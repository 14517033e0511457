package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gamelib/internal/game/models"
	"gamelib/internal/platform/postgres"
	id "gamelib/pkg/domain"
	"gamelib/pkg/platform/sentinel"
	txcontext "gamelib/pkg/platform/tx"
)

// PostgresStore persists games in PostgreSQL. The games.console_id foreign key
// rejects games for unknown consoles and blocks deleting consoles in use.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const gameColumns = `id, seq, title, console_id, external_id, release_date, cover,
	critic_score, personal_rating, status, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, g *models.Game) error {
	query := `
		INSERT INTO games (id, title, console_id, external_id, release_date, cover,
			critic_score, personal_rating, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq
	`
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(g.ID), g.Title, uuid.UUID(g.ConsoleID), nullInt(g.ExternalID), nullTime(g.ReleaseDate),
		nullString(g.Cover), nullInt(g.CriticScore), nullFloat(g.PersonalRating), string(g.Status),
		g.CreatedAt, g.UpdatedAt,
	).Scan(&g.Seq)
	if err != nil {
		return translateWriteErr("insert game", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, gameID id.GameID) (*models.Game, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE id = $1`, uuid.UUID(gameID))
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Game, error) {
	query, args := buildListQuery(filter)
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := []*models.Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

func buildListQuery(filter models.ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.ConsoleID != nil {
		args = append(args, uuid.UUID(*filter.ConsoleID))
		where = append(where, fmt.Sprintf("console_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		where = append(where, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + gameColumns + ` FROM games`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY " + orderBy(filter.Sort, filter.Desc) + ", seq ASC")
	return b.String(), args
}

// orderBy only ever returns fixed SQL fragments.
func orderBy(key models.SortKey, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch key {
	case models.SortReleaseDate:
		return "release_date " + dir + " NULLS LAST"
	case models.SortRating:
		return "personal_rating " + dir + " NULLS LAST"
	case models.SortStatus:
		return `status COLLATE "C" ` + dir
	default:
		return "lower(title) " + dir
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *PostgresStore) Update(ctx context.Context, g *models.Game) error {
	query := `
		UPDATE games
		SET title = $2, console_id = $3, external_id = $4, release_date = $5, cover = $6,
			critic_score = $7, personal_rating = $8, status = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(g.ID), g.Title, uuid.UUID(g.ConsoleID), nullInt(g.ExternalID), nullTime(g.ReleaseDate),
		nullString(g.Cover), nullInt(g.CriticScore), nullFloat(g.PersonalRating), string(g.Status),
		g.UpdatedAt,
	)
	if err != nil {
		return translateWriteErr("update game", err)
	}
	return requireRow(res, "update game")
}

func (s *PostgresStore) Delete(ctx context.Context, gameID id.GameID) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM games WHERE id = $1`, uuid.UUID(gameID))
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return requireRow(res, "delete game")
}

func (s *PostgresStore) CountByConsole(ctx context.Context, consoleID id.ConsoleID) (int, error) {
	var n int
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE console_id = $1`, uuid.UUID(consoleID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

// DeleteByConsole removes the console's games in one statement.
func (s *PostgresStore) DeleteByConsole(ctx context.Context, consoleID id.ConsoleID) (int, error) {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM games WHERE console_id = $1`, uuid.UUID(consoleID))
	if err != nil {
		return 0, fmt.Errorf("delete console games: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete console games: rows affected: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*models.Game, error) {
	var (
		g                 models.Game
		rawID, rawConsole uuid.UUID
		external          sql.NullInt64
		released          sql.NullTime
		cover             sql.NullString
		critic            sql.NullInt64
		rating            sql.NullFloat64
		status            string
	)
	if err := row.Scan(&rawID, &g.Seq, &g.Title, &rawConsole, &external, &released, &cover,
		&critic, &rating, &status, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	g.ID = id.GameID(rawID)
	g.ConsoleID = id.ConsoleID(rawConsole)
	g.Status = models.Status(status)
	g.ExternalID = intPtr(external)
	g.CriticScore = intPtr(critic)
	if rating.Valid {
		r := rating.Float64
		g.PersonalRating = &r
	}
	if released.Valid {
		d := time.Date(released.Time.Year(), released.Time.Month(), released.Time.Day(), 0, 0, 0, 0, time.UTC)
		g.ReleaseDate = &d
	}
	if cover.Valid {
		c := cover.String
		g.Cover = &c
	}
	return &g, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// translateWriteErr maps constraint violations to sentinels. A foreign key
// failure on a game write means the console does not exist.
func translateWriteErr(op string, err error) error {
	switch postgres.ErrorCode(err) {
	case postgres.UniqueViolation:
		return fmt.Errorf("%s: %s: %w", op, postgres.ConstraintName(err), sentinel.ErrAlreadyUsed)
	case postgres.ForeignKeyViolation:
		return fmt.Errorf("%s: console: %w", op, sentinel.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
