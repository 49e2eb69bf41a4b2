package db

import "time"

// Job is a named cron schedule. Schedule holds the expression text as
// entered; it is validated on write and parsed again by readers.
type Job struct {
	ID        string
	Name      string
	Schedule  string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// migration is one versioned schema change.
type migration struct {
	Version     int
	Description string
	Statements  []string
}

// migrations are applied in order by Migrate. Append only.
var migrations = []migration{
	{
		Version:     1,
		Description: "create jobs",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS jobs (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				schedule TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		Version:     2,
		Description: "add jobs.enabled",
		Statements: []string{
			`ALTER TABLE jobs ADD COLUMN enabled BOOLEAN NOT NULL DEFAULT TRUE`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_enabled ON jobs (enabled)`,
		},
	},
}
