package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"realmlog/internal/realm"
)

func tilesCmd() *cobra.Command {
	var reachability string
	var region string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List tiles with level, progress and reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTiles(cmd, reachability, region, asJSON)
		},
	}
	cmd.Flags().StringVar(&reachability, "reachability", "", "Filter: conquered, frontier, unreachable or hard_locked")
	cmd.Flags().StringVar(&region, "region", "", "Region id to filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func runTiles(cmd *cobra.Command, reachability, region string, asJSON bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	state := a.game.State()
	idx := state.Index()
	var tiles []realm.Tile
	for _, t := range state.Tiles {
		if region != "" && string(t.Region) != region {
			continue
		}
		if reachability != "" && string(idx.Reachability(t)) != reachability {
			continue
		}
		tiles = append(tiles, t)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, tiles)
	}
	if len(tiles) == 0 {
		fmt.Fprintln(out, "No tiles found.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREGION\tFEATURE\tLEVEL\tPROGRESS\tNEXT\tSTATE")
	for _, t := range tiles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			t.ID, t.Region, t.Feature, t.Level, t.Progress, realm.MinutesToNextLevel(t), idx.Reachability(t))
	}
	return tw.Flush()
}
