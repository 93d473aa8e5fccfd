package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"volunteermatching/internal/domain"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Print ranked matches for an event or a volunteer",
}

var matchEventCmd = &cobra.Command{
	Use:   "event <name>",
	Short: "Rank volunteers for an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		matches, err := e.matches.ComputeMatchesForEvent(ctx, args[0])
		if err != nil {
			return fmt.Errorf("event %q: %w", args[0], err)
		}
		return printMatches(cmd.OutOrStdout(), "VOLUNTEER", matches, func(m domain.MatchResult) string { return m.VolunteerID })
	},
}

var matchVolunteerCmd = &cobra.Command{
	Use:   "volunteer <username>",
	Short: "Rank events for a volunteer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		matches, err := e.matches.ComputeMatchesForVolunteer(ctx, args[0])
		if err != nil {
			return fmt.Errorf("volunteer %q: %w", args[0], err)
		}
		return printMatches(cmd.OutOrStdout(), "EVENT", matches, func(m domain.MatchResult) string { return m.EventID })
	},
}

func init() {
	matchCmd.AddCommand(matchEventCmd, matchVolunteerCmd)
	rootCmd.AddCommand(matchCmd)
}

func printMatches(w io.Writer, header string, matches []domain.MatchResult, name func(domain.MatchResult) string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tSCORE\tCONTACT\n", header)
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%.1f\t%s\n", name(m), m.Score, m.Contact)
	}
	return tw.Flush()
}
