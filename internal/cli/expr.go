package cli

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/cronkit/lib/cron"
)

// expressionView is the JSON shape shared by the single-expression commands.
type expressionView struct {
	Expression  string `json:"expression"`
	Canonical   string `json:"canonical"`
	HasSeconds  bool   `json:"has_seconds"`
	Description string `json:"description"`
}

func newExpressionView(text string, expr *cron.Expression) expressionView {
	return expressionView{
		Expression:  text,
		Canonical:   cron.Format(expr),
		HasSeconds:  expr.HasSeconds(),
		Description: expr.Describe(),
	}
}

// NewValidateCmd creates the validate command.
func NewValidateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "validate EXPR",
		Short: "Check that an expression parses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinExpression(args)
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}

			view := newExpressionView(text, expr)
			fields := "5"
			if view.HasSeconds {
				fields = "6"
			}
			env.Output().Print(
				[]string{"EXPRESSION", "VALID", "FIELDS"},
				[][]string{{text, "true", fields}},
				view,
			)
			return nil
		},
	}
}

// NewDescribeCmd creates the describe command.
func NewDescribeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe EXPR",
		Short: "Explain an expression in English",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinExpression(args)
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}

			view := newExpressionView(text, expr)
			env.Output().Print(
				[]string{"EXPRESSION", "DESCRIPTION"},
				[][]string{{text, view.Description}},
				view,
			)
			return nil
		},
	}
}

// NewFormatCmd creates the format command.
func NewFormatCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "format EXPR",
		Short: "Print the canonical numeric form of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinExpression(args)
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}

			view := newExpressionView(text, expr)
			env.Output().Print(
				[]string{"EXPRESSION", "CANONICAL"},
				[][]string{{text, view.Canonical}},
				view,
			)
			return nil
		},
	}
}

// NewMatchCmd creates the match command.
func NewMatchCmd(env *Env) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "match EXPR",
		Short: "Check whether an instant satisfies an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinExpression(args)
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}
			t, err := parseTime(at, env.Now())
			if err != nil {
				return err
			}

			matched := expr.IsMatch(t)
			env.Output().Print(
				[]string{"EXPRESSION", "TIME", "MATCH"},
				[][]string{{text, formatTime(t), strconv.FormatBool(matched)}},
				struct {
					Expression string    `json:"expression"`
					Time       time.Time `json:"time"`
					Match      bool      `json:"match"`
				}{text, t, matched},
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Instant to test (default now)")

	return cmd
}

type occurrencesView struct {
	Expression  string      `json:"expression"`
	From        time.Time   `json:"from"`
	Occurrences []time.Time `json:"occurrences"`
}

func printOccurrences(out *Output, view occurrencesView) {
	rows := make([][]string, len(view.Occurrences))
	for i, t := range view.Occurrences {
		rows[i] = []string{strconv.Itoa(i + 1), formatTime(t)}
	}
	if len(view.Occurrences) == 0 {
		out.Success("No occurrence within the search horizon")
	}
	out.Print([]string{"#", "TIME"}, rows, view)
}

// NewNextCmd creates the next command.
func NewNextCmd(env *Env) *cobra.Command {
	var from, until string
	var count int

	cmd := &cobra.Command{
		Use:   "next EXPR",
		Short: "List the next occurrences of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			text := joinExpression(args)
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}
			start, err := parseTime(from, env.Now())
			if err != nil {
				return err
			}

			view := occurrencesView{Expression: text, From: start}
			if until == "" {
				view.Occurrences = expr.NextOccurrences(count, start)
			} else {
				end, err := parseTime(until, time.Time{})
				if err != nil {
					return err
				}
				if !end.After(start) {
					return fmt.Errorf("--until %s is not after --from %s", formatTime(end), formatTime(start))
				}
				// range mode lists every occurrence in [from, until) and ignores --count
				view.Occurrences = expr.Between(start, end)
			}

			printOccurrences(env.Output(), view)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start searching after this instant (default now)")
	cmd.Flags().StringVar(&until, "until", "", "List every occurrence in [from, until) instead of --count")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of occurrences to list")

	return cmd
}

// NewPrevCmd creates the prev command.
func NewPrevCmd(env *Env) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "prev EXPR",
		Short: "Show the most recent occurrence of an expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := joinExpression(args)
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}
			start, err := parseTime(from, env.Now())
			if err != nil {
				return err
			}

			view := occurrencesView{Expression: text, From: start, Occurrences: []time.Time{}}
			if t, ok := expr.PreviousOccurrence(start); ok {
				view.Occurrences = append(view.Occurrences, t)
			}
			printOccurrences(env.Output(), view)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Search backwards from this instant (default now)")

	return cmd
}

// NewBuildCmd creates the build command.
func NewBuildCmd(env *Env) *cobra.Command {
	var second, minute, hour, day, month, weekday string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compose an expression from per-field flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := cron.NewBuilder()
			flags := cmd.Flags()
			if flags.Changed("second") {
				b.Seconds(second)
			}
			if flags.Changed("minute") {
				b.Minutes(minute)
			}
			if flags.Changed("hour") {
				b.Hours(hour)
			}
			if flags.Changed("day") {
				b.Days(day)
			}
			if flags.Changed("month") {
				b.Months(month)
			}
			if flags.Changed("weekday") {
				b.DaysOfWeek(weekday)
			}

			text := b.Build()
			expr, err := cron.ParseExpression(text)
			if err != nil {
				return err
			}

			view := newExpressionView(text, expr)
			env.Output().Print(
				[]string{"EXPRESSION", "DESCRIPTION"},
				[][]string{{text, view.Description}},
				view,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&second, "second", "*", "Seconds field (switches to the 6-field form)")
	cmd.Flags().StringVar(&minute, "minute", "*", "Minutes field")
	cmd.Flags().StringVar(&hour, "hour", "*", "Hours field")
	cmd.Flags().StringVar(&day, "day", "*", "Day-of-month field")
	cmd.Flags().StringVar(&month, "month", "*", "Month field")
	cmd.Flags().StringVar(&weekday, "weekday", "*", "Day-of-week field")

	return cmd
}

// NewMacrosCmd creates the macros command.
func NewMacrosCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "macros",
		Short: "List the predefined @-expressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			macros := cron.PredefinedExpressions()

			names := make([]string, 0, len(macros))
			for name := range macros {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{name, macros[name], cron.Describe(macros[name])}
			}

			env.Output().Print([]string{"MACRO", "EXPRESSION", "DESCRIPTION"}, rows, macros)
			return nil
		},
	}
}
