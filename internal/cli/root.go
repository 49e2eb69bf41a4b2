package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/cronkit/internal/config"
	"github.com/livinlefevreloca/cronkit/internal/db"
)

// Env carries the dependencies shared by commands. The closures are
// evaluated lazily, after persistent flags have been parsed.
type Env struct {
	Output func() *Output
	Config func() (*config.Config, error)
	Now    func() time.Time
	Stderr io.Writer
}

// NewRootCmd builds the cronctl command tree writing to the process's
// stdout and stderr.
func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(version, os.Stdout, os.Stderr, time.Now)
}

func newRootCmd(version string, stdout, stderr io.Writer, now func() time.Time) *cobra.Command {
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "cronctl",
		Short:         "Parse, explain and plan cron schedules",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (TOML)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	env := &Env{
		Output: func() *Output { return NewOutput(jsonOutput, stdout, stderr) },
		Config: func() (*config.Config, error) {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return nil, err
			}
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid configuration: %w", err)
			}
			return cfg, nil
		},
		Now:    now,
		Stderr: stderr,
	}

	rootCmd.AddCommand(
		NewValidateCmd(env),
		NewDescribeCmd(env),
		NewFormatCmd(env),
		NewMatchCmd(env),
		NewNextCmd(env),
		NewPrevCmd(env),
		NewBuildCmd(env),
		NewMacrosCmd(env),
		NewJobsCmd(env),
		NewServeCmd(env),
	)

	return rootCmd
}

// openStore opens the configured database and brings its schema up to
// date. The caller closes the returned DB.
func (env *Env) openStore() (*config.Config, *db.DB, error) {
	cfg, err := env.Config()
	if err != nil {
		return nil, nil, err
	}

	database, err := db.OpenWithConfig(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if !cfg.Database.SkipMigrations {
		if err := database.Migrate(); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return cfg, database, nil
}

// joinExpression rebuilds an expression split across arguments.
func joinExpression(args []string) string {
	return strings.Join(args, " ")
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTime accepts RFC 3339 or one of timeLayouts in local time. An
// empty value yields fallback.
func parseTime(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected RFC 3339 or YYYY-MM-DD[ HH:MM[:SS]]", value)
}
