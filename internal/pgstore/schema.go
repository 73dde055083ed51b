// Package pgstore persists analytical rules and transaction lines in PostgreSQL.
package pgstore

// Schema creates the tables used by RuleRepository and LineRepository.
const Schema = `
CREATE TABLE IF NOT EXISTS analytic_rules (
    id TEXT PRIMARY KEY,
    position BIGINT GENERATED ALWAYS AS IDENTITY,
    name TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    priority INTEGER NOT NULL DEFAULT 0,
    analytical_account_id TEXT NOT NULL,
    partner_tag_id TEXT,
    partner_id TEXT,
    product_category_id TEXT,
    product_id TEXT
);

CREATE TABLE IF NOT EXISTS transaction_lines (
    id TEXT PRIMARY KEY,
    partner_id TEXT,
    partner_tags TEXT[] NOT NULL DEFAULT '{}',
    product_id TEXT,
    product_category_id TEXT,
    manual_analytical_account_id TEXT,
    product_default_analytical_account_id TEXT,
    amount NUMERIC(18, 2) NOT NULL DEFAULT 0,
    analytical_account_id TEXT,
    analytic_source TEXT,
    analytic_rule_id TEXT,
    classified_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_transaction_lines_unassigned
    ON transaction_lines (id) WHERE analytical_account_id IS NULL;
`
