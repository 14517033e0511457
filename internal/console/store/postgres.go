package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"gamelib/internal/console/models"
	"gamelib/internal/platform/postgres"
	id "gamelib/pkg/domain"
	"gamelib/pkg/platform/sentinel"
	txcontext "gamelib/pkg/platform/tx"
)

// PostgresStore persists consoles in PostgreSQL. Uniqueness of names and
// platform ids is enforced by unique indexes; deletes are refused by the
// games foreign key while games reference the console.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const consoleColumns = `id, name, external_platform_id, created_at, updated_at`

func (s *PostgresStore) CreateIfAvailable(ctx context.Context, c *models.Console) error {
	query := `
		INSERT INTO consoles (id, name, external_platform_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Name, nullInt(c.ExternalPlatformID), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return translateWriteErr("insert console", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, consoleID id.ConsoleID) (*models.Console, error) {
	row := txcontext.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+consoleColumns+` FROM consoles WHERE id = $1`, uuid.UUID(consoleID))
	c, err := scanConsole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find console: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []id.ConsoleID) (map[id.ConsoleID]*models.Console, error) {
	out := make(map[id.ConsoleID]*models.Console, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	raw := make([]string, len(ids))
	for i, consoleID := range ids {
		raw[i] = consoleID.String()
	}
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+consoleColumns+` FROM consoles WHERE id = ANY($1::uuid[])`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find consoles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanConsole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan console: %w", err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consoles: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Console, error) {
	rows, err := txcontext.Executor(ctx, s.db).QueryContext(ctx,
		`SELECT `+consoleColumns+` FROM consoles ORDER BY lower(name) ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list consoles: %w", err)
	}
	defer rows.Close()

	consoles := []*models.Console{}
	for rows.Next() {
		c, err := scanConsole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan console: %w", err)
		}
		consoles = append(consoles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consoles: %w", err)
	}
	return consoles, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Console) error {
	query := `
		UPDATE consoles
		SET name = $2, external_platform_id = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Name, nullInt(c.ExternalPlatformID), c.UpdatedAt,
	)
	if err != nil {
		return translateWriteErr("update console", err)
	}
	return requireRow(res, "update console")
}

func (s *PostgresStore) Delete(ctx context.Context, consoleID id.ConsoleID) error {
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM consoles WHERE id = $1`, uuid.UUID(consoleID))
	if err != nil {
		return translateWriteErr("delete console", err)
	}
	return requireRow(res, "delete console")
}

// Ping checks database connectivity for /healthz.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConsole(row scanner) (*models.Console, error) {
	var (
		rawID    uuid.UUID
		c        models.Console
		platform sql.NullInt64
	)
	if err := row.Scan(&rawID, &c.Name, &platform, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ID = id.ConsoleID(rawID)
	if platform.Valid {
		p := int(platform.Int64)
		c.ExternalPlatformID = &p
	}
	return &c, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func translateWriteErr(op string, err error) error {
	switch postgres.ErrorCode(err) {
	case postgres.UniqueViolation:
		return fmt.Errorf("%s: %s: %w", op, postgres.ConstraintName(err), sentinel.ErrAlreadyUsed)
	case postgres.ForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
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
