package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"realmlog/internal/game"
	"realmlog/internal/realm"
)

func logCmd() *cobra.Command {
	var in game.LogInput
	var custom bool
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "log <activity> [minutes]",
		Short: "Log a session and collect its reward",
		Example: `  realmlog log work 50 --note "release prep"
  realmlog log study 30 --tile r3c4
  realmlog log income --amount 120`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Activity = args[0]
			if len(args) == 2 {
				minutes, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid minutes %q", args[1])
				}
				in.Minutes = minutes
			}
			if err := checkActivity(in.Activity, custom); err != nil {
				return err
			}
			return runLog(cmd, in, asJSON)
		},
	}
	cmd.Flags().IntVar(&in.Amount, "amount", 0, "Income amount (gold)")
	cmd.Flags().StringVar(&in.Note, "note", "", "Free-form note")
	cmd.Flags().StringVar(&in.Subtype, "subtype", "", "Free-form subtype")
	cmd.Flags().StringVar(&in.TileID, "tile", "", "Invest the minutes into this tile")
	cmd.Flags().BoolVar(&custom, "custom", false, "Allow an activity name that grants no reward")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// checkActivity refuses names that would silently earn nothing unless the
// user asked for a custom activity.
func checkActivity(raw string, custom bool) error {
	if custom || realm.NormalizeActivity(raw).Known() {
		return nil
	}
	msg := fmt.Sprintf("unknown activity %q", raw)
	if suggestions := realm.SuggestActivities(raw); len(suggestions) > 0 {
		msg += fmt.Sprintf("; did you mean %s?", strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("%s (use --custom to log it anyway)", msg)
}

func runLog(cmd *cobra.Command, in game.LogInput, asJSON bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	res, err := a.game.LogSession(ctx, in)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, res)
	}
	printLogResult(out, res)
	return nil
}

func printLogResult(w io.Writer, res game.LogResult) {
	s := res.Session
	switch {
	case s.Amount != nil:
		fmt.Fprintf(w, "Logged %s: %d.\n", s.Activity, *s.Amount)
	default:
		fmt.Fprintf(w, "Logged %d minutes of %s.\n", s.Minutes, s.Activity)
	}
	if res.Invested != nil {
		t := *res.Invested
		fmt.Fprintf(w, "Invested into %s (%s): level %d, %d minutes to next level.\n",
			t.ID, regionName(t.Region), t.Level, realm.MinutesToNextLevel(t))
	} else if res.Reward.Resource != "" && res.Reward.Amount > 0 {
		fmt.Fprintf(w, "+%d %s\n", res.Reward.Amount, res.Reward.Resource)
	}
	if res.Reward.XP > 0 {
		fmt.Fprintf(w, "+%d XP\n", res.Reward.XP)
	}
	if res.NewlyConquered {
		fmt.Fprintln(w, "Tile conquered!")
	}
	if len(res.UnlockedTiles) > 0 {
		fmt.Fprintf(w, "The gate broke the seal on %d tiles.\n", len(res.UnlockedTiles))
	}
}
