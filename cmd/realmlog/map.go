package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"realmlog/internal/game"
	"realmlog/internal/realm"
)

func mapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Print the realm as a character grid",
		Args:  cobra.NoArgs,
		RunE:  runMap,
	}
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	renderMap(cmd.OutOrStdout(), a.game.State())
	return nil
}

// renderMap draws one character per cell: the region glyph in upper case for
// conquered tiles, '*' for the frontier, '#' for sealed tiles and the lower
// case glyph for everything else.
func renderMap(w io.Writer, state game.State) {
	rows, cols := 0, 0
	for _, t := range state.Tiles {
		rows = max(rows, t.Row+1)
		cols = max(cols, t.Col+1)
	}
	idx := state.Index()
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
	}
	for _, t := range state.Tiles {
		grid[t.Row][t.Col] = cellGlyph(idx, t, state.Player.TargetTileID)
	}
	for _, line := range grid {
		fmt.Fprintln(w, strings.TrimRight(string(line), " "))
	}
	fmt.Fprintln(w, "legend: UPPER conquered, * frontier, @ target, # sealed")
}

func cellGlyph(idx *realm.Index, t realm.Tile, targetID string) rune {
	glyph := '?'
	if r, ok := realm.LookupRegion(t.Region); ok {
		glyph = r.Glyph
	}
	switch idx.Reachability(t) {
	case realm.HardLocked:
		return '#'
	case realm.Conquered:
		return unicode.ToUpper(glyph)
	}
	if t.ID == targetID {
		return '@'
	}
	if idx.IsFrontier(t) {
		return '*'
	}
	return glyph
}
