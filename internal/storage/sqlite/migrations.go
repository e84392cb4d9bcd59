package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS counters (
    name TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id INTEGER PRIMARY KEY,
    creator TEXT NOT NULL,
    contribution_amount INTEGER NOT NULL CHECK (contribution_amount > 0),
    cycle_interval_secs INTEGER NOT NULL,
    member_count INTEGER NOT NULL,
    min_members INTEGER NOT NULL,
    current_cycle INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    group_id INTEGER NOT NULL,
    member TEXT NOT NULL,
    payout_position INTEGER NOT NULL,
    joined_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, member),
    UNIQUE (group_id, payout_position),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS contributions (
    group_id INTEGER NOT NULL,
    cycle INTEGER NOT NULL,
    member TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    created_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, cycle, member),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS payouts (
    group_id INTEGER NOT NULL,
    cycle INTEGER NOT NULL,
    recipient TEXT NOT NULL,
    amount INTEGER NOT NULL CHECK (amount > 0),
    created_at INTEGER NOT NULL,
    PRIMARY KEY (group_id, cycle),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS payout_recipients (
    group_id INTEGER NOT NULL,
    cycle INTEGER NOT NULL,
    recipient TEXT NOT NULL,
    PRIMARY KEY (group_id, cycle),
    FOREIGN KEY (group_id) REFERENCES groups(id)
);

CREATE TABLE IF NOT EXISTS accounts (
    account TEXT PRIMARY KEY,
    balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0)
);

CREATE INDEX IF NOT EXISTS idx_members_group_id ON members(group_id);
CREATE INDEX IF NOT EXISTS idx_contributions_group_cycle ON contributions(group_id, cycle);
CREATE INDEX IF NOT EXISTS idx_payout_recipients_recipient ON payout_recipients(group_id, recipient);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
