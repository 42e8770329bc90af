package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied on startup. The embedded backend owns its own DDL; the
// constraints mirror the PostgreSQL migrations exactly, because the ledger
// relies on them (non-negative balance, one claim per user per month).
const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id    TEXT PRIMARY KEY,
	balance    INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	transaction_id TEXT PRIMARY KEY,
	from_user_id   TEXT,
	to_user_id     TEXT NOT NULL,
	amount         INTEGER NOT NULL CHECK (amount > 0),
	kind           TEXT NOT NULL CHECK (kind IN ('transfer', 'admin_credit', 'purchase')),
	description    TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_from_user ON transactions (from_user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_to_user ON transactions (to_user_id, created_at);

CREATE TABLE IF NOT EXISTS monthly_salary_claims (
	claim_id    TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	role_id     TEXT NOT NULL,
	amount      INTEGER NOT NULL CHECK (amount > 0),
	claim_month TEXT NOT NULL,
	paid_by     TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	UNIQUE (user_id, claim_month)
);

CREATE TABLE IF NOT EXISTS salary_roles (
	role_id        TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	monthly_amount INTEGER NOT NULL CHECK (monthly_amount > 0),
	description    TEXT NOT NULL DEFAULT '',
	is_active      BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS secret_vcs (
	channel_id    TEXT PRIMARY KEY,
	owner_id      TEXT NOT NULL,
	name          TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	last_activity TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_secret_vcs_last_activity ON secret_vcs (last_activity);
`

// Bootstrap creates the tables when they do not exist yet.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return nil
}
