package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Schema creates the users, items and exchanges tables. It is idempotent.
const Schema = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

CREATE TABLE IF NOT EXISTS users (
	user_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	username VARCHAR(50) NOT NULL UNIQUE,
	email VARCHAR(100) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	points BIGINT NOT NULL DEFAULT 0 CHECK (points >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS items (
	item_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	owner_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
	title VARCHAR(200) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category VARCHAR(20) NOT NULL,
	condition VARCHAR(20) NOT NULL,
	size VARCHAR(20) NOT NULL DEFAULT '',
	brand VARCHAR(100) NOT NULL DEFAULT '',
	price_points BIGINT NOT NULL DEFAULT 0 CHECK (price_points >= 0),
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS exchanges (
	exchange_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
	item_id UUID NOT NULL REFERENCES items(item_id) ON DELETE CASCADE,
	offering_user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
	requesting_user_id UUID NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
	exchange_type VARCHAR(20) NOT NULL CHECK (exchange_type IN ('direct_swap', 'points_exchange')),
	status VARCHAR(20) NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending', 'accepted', 'rejected', 'completed', 'cancelled')),
	message TEXT,
	points_exchanged BIGINT NOT NULL DEFAULT 0 CHECK (points_exchanged >= 0),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (offering_user_id <> requesting_user_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS exchanges_one_pending_idx
	ON exchanges (item_id, requesting_user_id) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS exchanges_offering_user_idx ON exchanges (offering_user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS exchanges_requesting_user_idx ON exchanges (requesting_user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS items_owner_idx ON items (owner_id);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	logQuery("migrate", nil, nil, err)
	return err
}
