package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"realmlog/internal/realm"
	"realmlog/internal/timer"
)

func timerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Run a countup or countdown timer that logs a session on commit",
	}
	cmd.AddCommand(timerStartCmd())
	cmd.AddCommand(timerActionCmd("stop", "Pause the running timer", func(ctx context.Context, a *app) (realm.TimerSession, error) {
		return a.timers.Stop(ctx)
	}))
	cmd.AddCommand(timerActionCmd("resume", "Resume a stopped timer", func(ctx context.Context, a *app) (realm.TimerSession, error) {
		return a.timers.Resume(ctx)
	}))
	cmd.AddCommand(timerCommitCmd())
	cmd.AddCommand(timerDiscardCmd())
	cmd.AddCommand(timerStatusCmd())
	return cmd
}

func timerStartCmd() *cobra.Command {
	var in timer.StartInput
	var countdown time.Duration
	var custom bool
	cmd := &cobra.Command{
		Use:     "start <activity>",
		Short:   "Start a timer",
		Example: "  realmlog timer start study --countdown 25m --note flashcards",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Activity = args[0]
			if err := checkActivity(in.Activity, custom); err != nil {
				return err
			}
			in.Mode = realm.TimerCountup
			if countdown != 0 {
				in.Mode = realm.TimerCountdown
				in.Duration = countdown
			}
			return withTimers(cmd, func(ctx context.Context, a *app) error {
				started, err := a.timers.Start(ctx, in)
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), started, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&countdown, "countdown", 0, "Count down from this duration instead of counting up")
	cmd.Flags().StringVar(&in.Note, "note", "", "Note for the logged session")
	cmd.Flags().StringVar(&in.Subtype, "subtype", "", "Subtype for the logged session")
	cmd.Flags().BoolVar(&custom, "custom", false, "Allow an activity name that grants no reward")
	return cmd
}

func timerActionCmd(use, short string, action func(ctx context.Context, a *app) (realm.TimerSession, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTimers(cmd, func(ctx context.Context, a *app) error {
				t, err := action(ctx, a)
				if err != nil {
					return err
				}
				printTimer(cmd.OutOrStdout(), t, time.Now())
				return nil
			})
		},
	}
}

func timerCommitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Stop the timer and log its minutes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTimers(cmd, func(ctx context.Context, a *app) error {
				res, err := a.timers.Commit(ctx)
				if err != nil {
					return err
				}
				printLogResult(cmd.OutOrStdout(), res.Logged)
				return nil
			})
		},
	}
}

func timerDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Throw the open timer away without logging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTimers(cmd, func(ctx context.Context, a *app) error {
				if err := a.timers.Discard(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Timer discarded.")
				return nil
			})
		},
	}
}

func timerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the open timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTimers(cmd, func(ctx context.Context, a *app) error {
				t, err := a.timers.Current(ctx)
				if err != nil {
					return err
				}
				if t == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No timer running.")
					return nil
				}
				printTimer(cmd.OutOrStdout(), *t, time.Now())
				return nil
			})
		},
	}
}

func withTimers(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)
	return fn(ctx, a)
}

func printTimer(w io.Writer, t realm.TimerSession, now time.Time) {
	fmt.Fprintf(w, "%s timer for %s is %s, elapsed %s", t.Mode, t.Activity, t.Status, timer.Elapsed(t, now).Round(time.Second))
	if t.Mode == realm.TimerCountdown {
		if timer.Finished(t, now) {
			fmt.Fprint(w, ", countdown finished")
		} else {
			fmt.Fprintf(w, ", %s left", timer.Remaining(t, now).Round(time.Second))
		}
	}
	fmt.Fprintln(w)
}
