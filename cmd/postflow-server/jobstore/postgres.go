package jobstore

import (
	"context"
	"embed"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// Postgres is the durable Store, backed by pgxpool.Pool exactly as
// jackkayser2005-pokerBench/server/store.DB wraps one: a thin struct around
// the pool plus query methods, no ORM.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres dials dsn and returns a ready pool; callers should follow with
// Migrate before first use on a fresh database.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: p}, nil
}

// Migrate applies schema.sql; it is idempotent (CREATE TABLE IF NOT EXISTS).
func (p *Postgres) Migrate(ctx context.Context) error {
	b, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, string(b))
	return err
}

func (p *Postgres) Create(ctx context.Context, job Job) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO jobs(id, position, iterations, status, error, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, job.ID, job.Position, job.Iterations, job.Status, job.Error, job.CreatedAt)
	return err
}

func (p *Postgres) Get(ctx context.Context, id string) (Job, error) {
	var j Job
	err := p.pool.QueryRow(ctx, `
		SELECT id, position, iterations, status, error, created_at, result
		  FROM jobs WHERE id = $1
	`, id).Scan(&j.ID, &j.Position, &j.Iterations, &j.Status, &j.Error, &j.CreatedAt, &j.Result)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (p *Postgres) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE jobs SET status=$2, error=$3 WHERE id=$1`, id, status, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveResult(ctx context.Context, id string, snapshot []byte) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE jobs SET result=$2, status=$3, error='' WHERE id=$1
	`, id, snapshot, Done)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Close(ctx context.Context) { p.pool.Close() }
