package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"realmlog/internal/game"
	"realmlog/internal/realm"
)

type statusOutput struct {
	Player     realm.Player `json:"player"`
	InvestMode string       `json:"invest_mode"`
	Tiles      int          `json:"tiles"`
	Conquered  int          `json:"conquered"`
	Frontier   int          `json:"frontier"`
	GateOpen   bool         `json:"gate_open"`
	Target     *realm.Tile  `json:"target,omitempty"`
}

func statusCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show resource pools and realm progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, asJSON bool) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	status := buildStatus(a.game.State(), a.game.InvestMode())
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, status)
	}

	p := status.Player
	fmt.Fprintf(out, "XP %d\n", p.XP)
	fmt.Fprintf(out, "craft %d  lore %d  vigor %d  clarity %d  gold %d\n", p.Craft, p.Lore, p.Vigor, p.Clarity, p.Gold)
	fmt.Fprintf(out, "Conquered %d of %d tiles, %d on the frontier (%s mode)\n", status.Conquered, status.Tiles, status.Frontier, status.InvestMode)
	if status.GateOpen {
		fmt.Fprintln(out, "The Great Depths are open.")
	}
	if status.Target != nil {
		t := *status.Target
		fmt.Fprintf(out, "Target %s: %s level %d, %d minutes to next level\n", t.ID, regionName(t.Region), t.Level, realm.MinutesToNextLevel(t))
	}
	return nil
}

func buildStatus(state game.State, mode game.InvestMode) statusOutput {
	idx := state.Index()
	status := statusOutput{
		Player:     state.Player,
		InvestMode: string(mode),
		Tiles:      len(state.Tiles),
		Frontier:   len(idx.Frontier(state.Tiles)),
		GateOpen:   realm.GateOpen(state.Tiles),
	}
	for _, t := range state.Tiles {
		if realm.IsConquered(t) {
			status.Conquered++
		}
	}
	if t, ok := state.Tile(state.Player.TargetTileID); ok {
		status.Target = &t
	}
	return status
}

func regionName(id realm.RegionID) string {
	if r, ok := realm.LookupRegion(id); ok {
		return r.Name
	}
	return string(id)
}
