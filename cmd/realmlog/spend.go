package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"realmlog/internal/realm"
)

func spendCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "spend <tile> <resource> <minutes>",
		Short:   "Invest pooled minutes into a tile",
		Example: "  realmlog spend r3c4 craft 45",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid minutes %q", args[2])
			}
			return runSpend(cmd, args[0], args[1], minutes, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func runSpend(cmd *cobra.Command, tileID, resource string, minutes int, asJSON bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	res, err := a.game.SpendResourceOnTile(ctx, tileID, resource, minutes)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, res)
	}
	t := res.Tile
	fmt.Fprintf(out, "Spent %d %s on %s (%s): level %d, %d minutes to next level.\n",
		minutes, resource, t.ID, regionName(t.Region), t.Level, realm.MinutesToNextLevel(t))
	if res.NewlyConquered {
		fmt.Fprintln(out, "Tile conquered!")
	}
	if len(res.UnlockedTiles) > 0 {
		fmt.Fprintf(out, "The gate broke the seal on %d tiles.\n", len(res.UnlockedTiles))
	}
	return nil
}
