package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// advisoryLockKey serializes concurrent Migrate calls on postgres.
const advisoryLockKey = 727274

// Migrate applies every pending migration, each in its own transaction.
// It is safe to call on every start.
func (db *DB) Migrate() error {
	if err := db.createSchemaTable(); err != nil {
		return fmt.Errorf("failed to create schema table: %w", err)
	}

	if db.driver != DriverPostgres {
		return db.applyPending()
	}
	return db.withMigrationLock(context.Background(), db.applyPending)
}

// withMigrationLock runs fn while holding the postgres advisory lock.
// The lock belongs to a session, so it is taken and released on one
// dedicated connection that stays checked out until fn returns.
func (db *DB) withMigrationLock(ctx context.Context, fn func() error) (err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to reserve lock connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, db.rebind("SELECT pg_advisory_lock(?)"), advisoryLockKey); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	defer func() {
		if _, uerr := conn.ExecContext(context.Background(), db.rebind("SELECT pg_advisory_unlock(?)"), advisoryLockKey); uerr != nil {
			slog.Error("failed to release migration lock",
				"lock_key", advisoryLockKey,
				"error", uerr)
			if err == nil {
				err = fmt.Errorf("failed to release lock: %w", uerr)
			}
		}
	}()

	return fn()
}

// applyPending applies the migrations not yet recorded in schema_migrations.
func (db *DB) applyPending() error {
	applied, err := db.AppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		if err := db.applyMigration(m); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Description, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version, or 0.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		if isMissingTable(err) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// AppliedMigrations returns the applied migration versions, sorted.
func (db *DB) AppliedMigrations() ([]int, error) {
	rows, err := db.Query("SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		if isMissingTable(err) {
			return []int{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	versions := []int{}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return versions, nil
}

func (db *DB) createSchemaTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := db.Exec(query)
	return err
}

// applyMigration executes a single migration and records it in schema_migrations.
func (db *DB) applyMigration(m migration) error {
	return db.WithTransaction(func(tx *Tx) error {
		for _, stmt := range m.Statements {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("failed to execute SQL: %w", err)
			}
		}

		if _, err := tx.Exec(db.rebind("INSERT INTO schema_migrations (version) VALUES (?)"), m.Version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
}

func isMissingTable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		strings.Contains(msg, "does not exist")
}
