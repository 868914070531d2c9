package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"routesolver/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the runs table if it does not exist. Dev helper; real
// deployments should manage schema out of band.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS runs (
            id         uuid PRIMARY KEY,
            created_at timestamptz NOT NULL DEFAULT now(),
            request    jsonb NOT NULL,
            result     jsonb NOT NULL
        )`)
	return err
}

func (p *Postgres) CreateRun(ctx context.Context, run model.Run) (model.Run, error) {
	run.ID = uuid.NewString()
	run.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	req, err := json.Marshal(run.Request)
	if err != nil {
		return model.Run{}, err
	}
	res, err := json.Marshal(run.Result)
	if err != nil {
		return model.Run{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, request, result) VALUES ($1,$2,$3,$4)`,
		run.ID, run.CreatedAt, req, res)
	if err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (model.Run, error) {
	var run model.Run
	var req, res []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, created_at::text, request, result FROM runs WHERE id=$1`, id).
		Scan(&run.ID, &run.CreatedAt, &req, &res)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	if err := json.Unmarshal(req, &run.Request); err != nil {
		return model.Run{}, err
	}
	if err := json.Unmarshal(res, &run.Result); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func (p *Postgres) ListRuns(ctx context.Context, cursor string, limit int) ([]model.Run, string, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", ErrNotFound
		}
		offset = n
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, created_at::text, request, result FROM runs ORDER BY created_at DESC OFFSET $1 LIMIT $2`,
		offset, limit+1)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Run{}
	for rows.Next() {
		var run model.Run
		var req, res []byte
		if err := rows.Scan(&run.ID, &run.CreatedAt, &req, &res); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(req, &run.Request); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(res, &run.Result); err != nil {
			return nil, "", err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = strconv.Itoa(offset + limit)
	}
	return out, next, nil
}

func (p *Postgres) Close() { _ = p.db.Close() }
