package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

func sessionsCmd() *cobra.Command {
	var activity string
	var since string
	var search string
	var limit int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List logged sessions, newest first",
		Example: `  realmlog sessions --activity study --since 7d
  realmlog sessions --search "code review -meeting"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := store.SessionFilter{Activity: activity, Limit: limit}
			if since != "" {
				t, err := parseSince(since, time.Now())
				if err != nil {
					return err
				}
				filter.Since = t
			}
			return runSessions(cmd, filter, search, asJSON)
		},
	}
	cmd.Flags().StringVar(&activity, "activity", "", "Activity to filter")
	cmd.Flags().StringVar(&since, "since", "", "Only sessions after this date (2006-01-02, RFC 3339, or an age like 7d or 36h)")
	cmd.Flags().StringVar(&search, "search", "", "Full-text search over activity, subtype and note")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of sessions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func runSessions(cmd *cobra.Command, filter store.SessionFilter, search string, asJSON bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	var sessions []realm.Session
	if strings.TrimSpace(search) != "" {
		sessions, err = a.game.SearchSessions(ctx, search, filter.Limit)
	} else {
		sessions, err = a.game.Sessions(ctx, filter)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTIVITY\tMINUTES\tAMOUNT\tTILE\tNOTE")
	for _, s := range sessions {
		amount := ""
		if s.Amount != nil {
			amount = strconv.Itoa(*s.Amount)
		}
		activity := string(s.Activity)
		if s.Subtype != "" {
			activity += "/" + s.Subtype
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"), activity, s.Minutes, amount, s.TileID, s.Note)
	}
	return tw.Flush()
}

// parseSince accepts a date, an RFC 3339 timestamp, or an age relative to
// now such as "7d" or "36h".
func parseSince(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err == nil && n >= 0 {
			return now.AddDate(0, 0, -n), nil
		}
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q", raw)
}
