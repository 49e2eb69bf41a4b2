// Package cli implements the cronctl command line tool.
//
// Engine commands (validate, describe, format, match, next, prev, build,
// macros) work on the expression given as arguments and need no
// configuration. Multiple arguments are joined with spaces, so both of
// these work:
//
//	cronctl next '*/5 * * * *'
//	cronctl next '*/5' '*' '*' '*' '*'
//
// Job commands (jobs ..., serve) open the database named by the config
// file and apply migrations first unless skip_migrations is set.
//
// Data goes to stdout as a table, or as JSON with --json. Status
// messages go to stderr, so output can be piped:
//
//	cronctl jobs list --json | jq .
package cli
