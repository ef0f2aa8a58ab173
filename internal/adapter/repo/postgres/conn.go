package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenboard/eco-intake/internal/config"
)

// NewPool creates the pgx connection pool shared by the submission and
// student repositories, sized from configuration.
func NewPool(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DBURL)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxConns > 0 {
		pc.MaxConns = cfg.DBMaxConns
	}
	if cfg.DBConnMaxIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.DBConnMaxIdleTime
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return pool, nil
}
