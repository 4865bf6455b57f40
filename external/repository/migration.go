package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS channels (
		url TEXT PRIMARY KEY,
		kind TEXT NOT NULL CHECK (kind IN ('open', 'group')),
		name TEXT NOT NULL DEFAULT '',
		custom_type TEXT NOT NULL DEFAULT '',
		cover_image_url TEXT NOT NULL DEFAULT '',
		is_frozen BOOLEAN NOT NULL DEFAULT FALSE,
		created_at BIGINT NOT NULL,
		participant_count INTEGER,
		member_count INTEGER,
		is_supergroup BOOLEAN NOT NULL DEFAULT FALSE,
		last_message_at BIGINT,
		member_nicknames TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_channels_kind_created ON channels (kind, created_at DESC, url DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_channels_kind_custom_type ON channels (kind, custom_type)`,
	`CREATE TABLE IF NOT EXISTS operator_provisioning (
		operator_id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('open', 'group')),
		provisioned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (operator_id, kind)
	)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
