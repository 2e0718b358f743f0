package directory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dkeye/Tandem/internal/domain"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY
);
ALTER TABLE users ADD COLUMN IF NOT EXISTS socket_id TEXT;
ALTER TABLE users ADD COLUMN IF NOT EXISTS socket_seq BIGINT NOT NULL DEFAULT 0;
`

// Postgres keeps the persisted handle in users.socket_id. socket_seq guards
// against out-of-order writes.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects, retrying the ping for up to attempts seconds, and
// makes sure the handle columns exist.
func OpenPostgres(ctx context.Context, dsn string, attempts int) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	for i := 0; i < max(attempts, 1); i++ {
		pctx, cancel := context.WithTimeout(ctx, 4*time.Second)
		err = db.PingContext(pctx)
		cancel()
		if err == nil {
			break
		}
		log.Warn().Err(err).Str("module", "directory").Int("attempt", i+1).Msg("postgres not ready")
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) ResolveConnectionHandle(ctx context.Context, user domain.UserID) (domain.ConnHandle, bool, error) {
	var socket sql.NullString
	err := p.db.QueryRowContext(ctx, `SELECT socket_id FROM users WHERE id = $1`, string(user)).Scan(&socket)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", domain.ErrDirectoryUpdate, err)
	}
	if !socket.Valid || socket.String == "" {
		return "", false, nil
	}
	return domain.ConnHandle(socket.String), true, nil
}

func (p *Postgres) SetConnectionHandle(ctx context.Context, user domain.UserID, h domain.ConnHandle, seq uint64) error {
	socket := sql.NullString{String: string(h), Valid: h != ""}
	res, err := p.db.ExecContext(ctx, `
INSERT INTO users (id, socket_id, socket_seq) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE
	SET socket_id = EXCLUDED.socket_id, socket_seq = EXCLUDED.socket_seq
	WHERE users.socket_seq < EXCLUDED.socket_seq`,
		string(user), socket, int64(seq))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDirectoryUpdate, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrStaleUpdate
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
