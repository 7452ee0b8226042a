package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scotow/buzzer/internal/app"
	"github.com/scotow/buzzer/internal/ws"
)

// Postgres keeps the room lifecycle journal
type Postgres struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres connects to postgres and returns a pool wrapper
func NewPostgres(ctx context.Context, cfg app.Config, log *slog.Logger) (*Postgres, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.PGURL)
	if err != nil {
		return nil, fmt.Errorf("parse PG_URL: %w", err)
	}
	pcfg.MaxConns = int32(cfg.PGMaxConn)
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
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

// Consume appends a lifecycle event to room_events
func (p *Postgres) Consume(ctx context.Context, e ws.RoomEvent) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO room_events (room_id, kind, name, occurred_at)
		VALUES ($1, $2, $3, $4)
	`, e.RoomID.String(), string(e.Kind), e.Name, e.At)
	if err != nil {
		return fmt.Errorf("insert room event: %w", err)
	}
	return nil
}
