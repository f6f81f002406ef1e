package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect はPostgreSQLへの接続プールを作成して疎通確認します。
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema はアプリケーションが使用するテーブルを作成します（存在しない場合のみ）。
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS doctors (
			id               BIGSERIAL PRIMARY KEY,
			name             TEXT NOT NULL,
			specialization   TEXT NOT NULL,
			location         TEXT NOT NULL,
			phone_number     TEXT NOT NULL DEFAULT '',
			email            TEXT NOT NULL DEFAULT '',
			rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
			fees             NUMERIC(10,2) NOT NULL DEFAULT 0,
			experience_years INTEGER NOT NULL DEFAULT 0,
			bio              TEXT NOT NULL DEFAULT '',
			is_available     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS predictions (
			id                BIGSERIAL PRIMARY KEY,
			user_id           TEXT NOT NULL,
			disease_type      TEXT NOT NULL,
			prediction_result TEXT NOT NULL,
			confidence_score  DOUBLE PRECISION NOT NULL,
			input_data        JSONB NOT NULL DEFAULT '{}',
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL,
			subject    TEXT NOT NULL,
			message    TEXT NOT NULL,
			is_read    BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user_created
			ON predictions (user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
