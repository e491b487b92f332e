package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"log/slog"

	"github.com/thinkingstill/KegelRoulette/internal/app"
	"github.com/thinkingstill/KegelRoulette/internal/room"
)

// Postgres stores room snapshots as JSONB rows, the durable-storage
// deployment variant.
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to postgres and returns a pool wrapper
func NewPostgres(ctx context.Context, cfg app.Config, log *slog.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

// SaveRoom upserts the full room snapshot keyed by room id.
func (p *Postgres) SaveRoom(ctx context.Context, r *room.Room) error {
	state, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO rooms (id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`, r.ID, state)
	return err
}

// LoadRoom fetches a snapshot, (nil, nil) when none exists.
func (p *Postgres) LoadRoom(ctx context.Context, id string) (*room.Room, error) {
	var state []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM rooms WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r room.Room
	if err := json.Unmarshal(state, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRoom drops the snapshot for a destroyed room.
func (p *Postgres) DeleteRoom(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	return err
}
