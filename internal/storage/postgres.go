package storage

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"accesslens/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/accesslens?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			total_events INTEGER NOT NULL,
			temporal_json JSONB NOT NULL,
			users_json JSONB NOT NULL,
			devices_json JSONB NOT NULL,
			security_json JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON analysis_runs(generated_at)`,
		`CREATE TABLE IF NOT EXISTS anomalies (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			ts TEXT NOT NULL,
			type TEXT NOT NULL,
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			user_id TEXT,
			device_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_anomalies_run ON anomalies(run_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) SaveRun(ctx context.Context, run model.AnalysisRun) error {
	if s.db == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, generated_at, total_events, temporal_json, users_json, devices_json, security_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID,
		run.GeneratedAt.UTC(),
		run.TotalEvents,
		encodeJSON(run.Temporal),
		encodeJSON(run.Users),
		encodeJSON(run.Devices),
		encodeJSON(run.Security),
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO anomalies (run_id, ts, type, severity, message, value, threshold, user_id, device_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, a := range run.Anomalies {
		if _, err := stmt.ExecContext(ctx,
			run.ID,
			a.Timestamp,
			a.Type,
			string(a.Severity),
			a.Message,
			a.Value,
			a.Threshold,
			a.UserID,
			a.DeviceID,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
