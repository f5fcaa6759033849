package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// AuditLog records every stage transition per provider, append-only.
type AuditLog struct {
	db *sql.DB
}

// AuditEntry is one recorded transition.
type AuditEntry struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAuditLog opens (creating if needed) the audit database at the given
// path and configures WAL mode.
func NewAuditLog(dsn string) (*AuditLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "audit: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "audit: exec %s", pragma)
		}
	}
	return &AuditLog{db: db}, nil
}

const auditMigration = `
CREATE TABLE IF NOT EXISTS stage_audit (
	id          TEXT PRIMARY KEY,
	provider_id TEXT NOT NULL,
	stage       TEXT NOT NULL,
	status      TEXT NOT NULL,
	confidence  REAL NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_stage_audit_provider ON stage_audit(provider_id);
CREATE INDEX IF NOT EXISTS idx_stage_audit_stage ON stage_audit(stage);
`

// Migrate creates the audit schema.
func (a *AuditLog) Migrate(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, auditMigration)
	return eris.Wrap(err, "audit: migrate")
}

// Close releases the database handle.
func (a *AuditLog) Close() error {
	return a.db.Close()
}

// Record appends one stage transition.
func (a *AuditLog) Record(ctx context.Context, providerID, stage, status string, confidence float64) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO stage_audit (id, provider_id, stage, status, confidence, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), providerID, stage, status, confidence, time.Now().UTC(),
	)
	return eris.Wrapf(err, "audit: record %s/%s", providerID, stage)
}

// History returns a provider's transitions in insertion order.
func (a *AuditLog) History(ctx context.Context, providerID string) ([]AuditEntry, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, provider_id, stage, status, confidence, created_at
		 FROM stage_audit WHERE provider_id = ? ORDER BY created_at, id`,
		providerID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "audit: query history %s", providerID)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ProviderID, &e.Stage, &e.Status, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "audit: scan history row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "audit: iterate history")
	}
	return entries, nil
}
