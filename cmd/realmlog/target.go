package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func targetCmd() *cobra.Command {
	var clearPin bool
	cmd := &cobra.Command{
		Use:   "target [tile]",
		Short: "Pin the tile session minutes prefer, or show the current pin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tileID := ""
			if len(args) == 1 {
				tileID = args[0]
			}
			if tileID != "" && clearPin {
				return fmt.Errorf("pass a tile or --clear, not both")
			}
			return runTarget(cmd, tileID, clearPin)
		},
	}
	cmd.Flags().BoolVar(&clearPin, "clear", false, "Clear the pinned target")
	return cmd
}

func runTarget(cmd *cobra.Command, tileID string, clearPin bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	out := cmd.OutOrStdout()
	if tileID != "" || clearPin {
		if err := a.game.SetTargetTile(ctx, tileID); err != nil {
			return err
		}
	}

	state := a.game.State()
	t, ok := state.Tile(state.Player.TargetTileID)
	if !ok {
		fmt.Fprintln(out, "No target pinned.")
		return nil
	}
	fmt.Fprintf(out, "Target %s (%s), %s\n", t.ID, regionName(t.Region), state.Index().Reason(t))
	return nil
}
