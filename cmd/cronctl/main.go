// cronctl parses, explains and plans cron schedules.
//
// Usage:
//
//	cronctl [--config FILE] [--json] <command> [args] [flags]
//
// Commands:
//
//	validate, describe, format, match, next, prev, build, macros
//	jobs      Manage stored job schedules
//	serve     Run the planner and metrics endpoint
package main

import (
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/livinlefevreloca/cronkit/internal/cli"
)

// version is set with -ldflags at build time.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
