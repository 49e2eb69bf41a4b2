package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/cronkit/internal/db"
	"github.com/livinlefevreloca/cronkit/internal/jobfile"
	"github.com/livinlefevreloca/cronkit/internal/scheduler"
	"github.com/livinlefevreloca/cronkit/lib/cron"
)

// jobView is the JSON shape of a stored job.
type jobView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule"`
	Enabled   bool      `json:"enabled"`
	Next      time.Time `json:"next,omitzero"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newJobView(job db.Job, now time.Time) jobView {
	view := jobView{
		ID:        job.ID,
		Name:      job.Name,
		Schedule:  job.Schedule,
		Enabled:   job.Enabled,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Enabled {
		if expr, err := cron.ParseExpression(job.Schedule); err == nil {
			if next, ok := expr.NextOccurrence(now); ok {
				view.Next = next
			}
		}
	}
	return view
}

func (v jobView) row() []string {
	return []string{v.ID, v.Name, v.Schedule, strconv.FormatBool(v.Enabled), formatTime(v.Next)}
}

var jobHeaders = []string{"ID", "NAME", "SCHEDULE", "ENABLED", "NEXT"}

// NewJobsCmd creates the command group for managing stored jobs.
func NewJobsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage stored job schedules",
	}

	cmd.AddCommand(
		newJobsAddCmd(env),
		newJobsListCmd(env),
		newJobsRemoveCmd(env),
		newJobsEnableCmd(env, true),
		newJobsEnableCmd(env, false),
		newJobsImportCmd(env),
		newJobsUpcomingCmd(env),
	)

	return cmd
}

func newJobsAddCmd(env *Env) *cobra.Command {
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add NAME EXPR",
		Short: "Store a new job",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			job := &db.Job{
				Name:     args[0],
				Schedule: joinExpression(args[1:]),
				Enabled:  !disabled,
			}
			if err := database.CreateJob(job); err != nil {
				if db.IsDuplicate(err) {
					return fmt.Errorf("job %q already exists", job.Name)
				}
				return err
			}

			out := env.Output()
			view := newJobView(*job, env.Now())
			out.Success(fmt.Sprintf("Job created: %s", job.ID))
			out.Print(jobHeaders, [][]string{view.row()}, view)
			return nil
		},
	}

	cmd.Flags().BoolVar(&disabled, "disabled", false, "Store the job disabled")

	return cmd
}

func newJobsListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			jobs, err := database.GetAllJobs()
			if err != nil {
				return err
			}

			now := env.Now()
			views := make([]jobView, len(jobs))
			rows := make([][]string, len(jobs))
			for i, job := range jobs {
				views[i] = newJobView(job, now)
				rows[i] = views[i].row()
			}

			env.Output().Print(jobHeaders, rows, views)
			return nil
		},
	}
}

func newJobsRemoveCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a stored job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			job, err := lookupJob(database, args[0])
			if err != nil {
				return err
			}
			if err := database.DeleteJob(job.ID); err != nil {
				return err
			}

			env.Output().Success(fmt.Sprintf("Job removed: %s", job.Name))
			return nil
		},
	}
}

func newJobsEnableCmd(env *Env, enabled bool) *cobra.Command {
	use, short, verb := "enable NAME", "Enable a stored job", "enabled"
	if !enabled {
		use, short, verb = "disable NAME", "Disable a stored job", "disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			job, err := lookupJob(database, args[0])
			if err != nil {
				return err
			}
			if err := database.SetJobEnabled(job.ID, enabled); err != nil {
				return err
			}

			env.Output().Success(fmt.Sprintf("Job %s: %s", verb, job.Name))
			return nil
		},
	}
}

func newJobsImportCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create or update jobs from a YAML job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := jobfile.Load(args[0])
			if err != nil {
				return err
			}

			_, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			jobs := make([]*db.Job, len(defs))
			for i, def := range defs {
				jobs[i] = def.Job()
			}

			created, updated, err := database.UpsertJobs(jobs)
			if err != nil {
				return err
			}

			out := env.Output()
			out.Success(fmt.Sprintf("Imported %d jobs (%d created, %d updated)", len(jobs), created, updated))

			now := env.Now()
			views := make([]jobView, len(jobs))
			rows := make([][]string, len(jobs))
			for i, job := range jobs {
				views[i] = newJobView(*job, now)
				rows[i] = views[i].row()
			}
			out.Print(jobHeaders, rows, views)
			return nil
		},
	}
}

func newJobsUpcomingCmd(env *Env) *cobra.Command {
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List the runs planned for enabled jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := env.openStore()
			if err != nil {
				return err
			}
			defer database.Close()

			if !cmd.Flags().Changed("window") {
				window = cfg.Planner.LookaheadWindow
			}
			if window <= 0 {
				return fmt.Errorf("--window must be positive, got %v", window)
			}

			now := env.Now()
			planner, err := scheduler.NewPlanner(scheduler.PlannerConfig{
				Source:          database,
				Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
				LookaheadWindow: window,
				MaxRunsPerJob:   cfg.Planner.MaxRunsPerJob,
				Now:             func() time.Time { return now },
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := planner.Rebuild(ctx); err != nil {
				return err
			}

			runs := planner.Upcoming(now, now.Add(window))
			rows := make([][]string, len(runs))
			for i, run := range runs {
				rows[i] = []string{formatTime(run.ScheduledAt), run.JobName, run.JobID}
			}

			env.Output().Print([]string{"TIME", "JOB", "ID"}, rows, runs)
			return nil
		},
	}

	cmd.Flags().DurationVar(&window, "window", 0, "How far ahead to look (default planner.lookahead_window)")

	return cmd
}

func lookupJob(database *db.DB, name string) (*db.Job, error) {
	job, err := database.GetJobByName(name)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("job %q not found", name)
	}
	return job, err
}
