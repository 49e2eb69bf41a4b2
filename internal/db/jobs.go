package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livinlefevreloca/cronkit/lib/cron"
)

// =============================================================================
// Job Operations
// =============================================================================

const jobColumns = `id, name, schedule, enabled, created_at, updated_at`

// validateSchedule rejects schedules the cron engine cannot parse.
// The returned error wraps both ErrInvalidSchedule and the *cron.FormatError.
func validateSchedule(schedule string) error {
	if _, err := cron.ParseExpression(schedule); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return nil
}

// prepareNewJob validates job and fills in its ID and timestamps.
func prepareNewJob(job *Job) error {
	if job.Name == "" {
		return fmt.Errorf("db: job name must not be empty")
	}
	if err := validateSchedule(job.Schedule); err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	return nil
}

// CreateJob creates a new job. An empty ID is replaced with a new UUID.
func (db *DB) CreateJob(job *Job) error {
	if err := prepareNewJob(job); err != nil {
		return err
	}

	query := db.rebind(`
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := db.Exec(query, job.ID, job.Name, job.Schedule, job.Enabled, job.CreatedAt, job.UpdatedAt)
	return classify(err)
}

// CreateJob creates a new job within a transaction
func (tx *Tx) CreateJob(job *Job) error {
	if err := prepareNewJob(job); err != nil {
		return err
	}

	query := tx.db.rebind(`
		INSERT INTO jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`)

	_, err := tx.Exec(query, job.ID, job.Name, job.Schedule, job.Enabled, job.CreatedAt, job.UpdatedAt)
	return classify(err)
}

// GetJob retrieves a job by ID
func (db *DB) GetJob(id string) (*Job, error) {
	query := db.rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`)
	return scanJob(db.QueryRow(query, id))
}

// GetJobByName retrieves a job by its unique name
func (db *DB) GetJobByName(name string) (*Job, error) {
	query := db.rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE name = ?`)
	return scanJob(db.QueryRow(query, name))
}

// GetAllJobs retrieves all jobs ordered by name
func (db *DB) GetAllJobs() ([]Job, error) {
	return db.queryJobs(`SELECT ` + jobColumns + ` FROM jobs ORDER BY name`)
}

// GetEnabledJobs retrieves the jobs that should be planned, ordered by name
func (db *DB) GetEnabledJobs() ([]Job, error) {
	return db.queryJobs(db.rebind(`SELECT `+jobColumns+` FROM jobs WHERE enabled = ? ORDER BY name`), true)
}

// UpdateJob updates the name and schedule of an existing job
func (db *DB) UpdateJob(job *Job) error {
	if err := validateSchedule(job.Schedule); err != nil {
		return err
	}
	job.UpdatedAt = time.Now().UTC()

	query := db.rebind(`
		UPDATE jobs
		SET name = ?, schedule = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`)

	result, err := db.Exec(query, job.Name, job.Schedule, job.Enabled, job.UpdatedAt, job.ID)
	if err != nil {
		return classify(err)
	}

	return expectOneRow(result)
}

// GetJobByName retrieves a job by name within a transaction
func (tx *Tx) GetJobByName(name string) (*Job, error) {
	query := tx.db.rebind(`SELECT ` + jobColumns + ` FROM jobs WHERE name = ?`)
	return scanJob(tx.QueryRow(query, name))
}

// UpdateJob updates an existing job within a transaction
func (tx *Tx) UpdateJob(job *Job) error {
	if err := validateSchedule(job.Schedule); err != nil {
		return err
	}
	job.UpdatedAt = time.Now().UTC()

	query := tx.db.rebind(`
		UPDATE jobs
		SET name = ?, schedule = ?, enabled = ?, updated_at = ?
		WHERE id = ?
	`)

	result, err := tx.Exec(query, job.Name, job.Schedule, job.Enabled, job.UpdatedAt, job.ID)
	if err != nil {
		return classify(err)
	}

	return expectOneRow(result)
}

// UpsertJobs creates or updates jobs matched by name in one transaction.
// Existing jobs keep their ID. Nothing is written if any job fails.
func (db *DB) UpsertJobs(jobs []*Job) (created, updated int, err error) {
	err = db.WithTransaction(func(tx *Tx) error {
		created, updated = 0, 0
		for _, job := range jobs {
			existing, err := tx.GetJobByName(job.Name)
			switch {
			case errors.Is(err, ErrNotFound):
				if err := tx.CreateJob(job); err != nil {
					return fmt.Errorf("job %q: %w", job.Name, err)
				}
				created++
			case err != nil:
				return err
			default:
				job.ID = existing.ID
				job.CreatedAt = existing.CreatedAt
				if err := tx.UpdateJob(job); err != nil {
					return fmt.Errorf("job %q: %w", job.Name, err)
				}
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

// SetJobEnabled enables or disables a job by ID
func (db *DB) SetJobEnabled(id string, enabled bool) error {
	query := db.rebind(`UPDATE jobs SET enabled = ?, updated_at = ? WHERE id = ?`)

	result, err := db.Exec(query, enabled, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

// DeleteJob deletes a job by ID
func (db *DB) DeleteJob(id string) error {
	query := db.rebind(`DELETE FROM jobs WHERE id = ?`)

	result, err := db.Exec(query, id)
	if err != nil {
		return err
	}

	return expectOneRow(result)
}

func (db *DB) queryJobs(query string, args ...any) ([]Job, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Return empty slice instead of nil
	if jobs == nil {
		jobs = []Job{}
	}

	return jobs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	job := &Job{}
	err := row.Scan(
		&job.ID,
		&job.Name,
		&job.Schedule,
		&job.Enabled,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	return job, nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
