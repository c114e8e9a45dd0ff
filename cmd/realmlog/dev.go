package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"realmlog/internal/backup"
)

func devCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Developer tools: export, import, reset and raw SQL",
	}
	cmd.AddCommand(devExportCmd())
	cmd.AddCommand(devImportCmd())
	cmd.AddCommand(devResetCmd())
	cmd.AddCommand(devSQLCmd())
	return cmd
}

func devExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write every table to a JSON snapshot (zstd when the path ends in .zst)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			snap, err := backup.Export(ctx, a.db, time.Now())
			if err != nil {
				return err
			}
			if err := backup.WriteFile(args[0], snap); err != nil {
				return err
			}
			rows := 0
			for _, t := range snap.Tables {
				rows += len(t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s.\n", rows, args[0])
			return nil
		},
	}
}

func devImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace tables with the contents of a snapshot, then repair the realm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := backup.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			a, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := backup.Import(ctx, a.db, snap); err != nil {
				return err
			}
			report, err := a.initGame(ctx)
			if err != nil {
				return err
			}
			a.log.Info("snapshot imported",
				slog.String("path", args[0]),
				slog.Time("exported_at", snap.Meta.ExportedAt),
				slog.Int("tiles_inserted", report.Inserted),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s.\n", args[0])
			return nil
		},
	}
}

func devResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "reset <sessions|tiles|player|all>",
		Short:     "Wipe sessions, zero tile progress or zero the player",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"sessions", "tiles", "player", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			what := args[0]
			steps := map[string]func(context.Context) error{
				"sessions": a.db.ResetSessions,
				"tiles":    a.db.ResetTiles,
				"player":   a.db.ResetPlayer,
			}
			var order []string
			switch what {
			case "all":
				order = []string{"sessions", "tiles", "player"}
			case "sessions", "tiles", "player":
				order = []string{what}
			default:
				return fmt.Errorf("unknown reset %q (want sessions, tiles, player or all)", what)
			}
			for _, name := range order {
				if err := steps[name](ctx); err != nil {
					return err
				}
			}
			if _, err := a.initGame(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s.\n", strings.Join(order, ", "))
			return nil
		},
	}
}

func devSQLCmd() *cobra.Command {
	var paramPairs []string
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Execute a raw SQL query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			params, err := parseParamPairs(paramPairs)
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			rows, err := a.db.RunSQL(ctx, query, params)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringArrayVar(&paramPairs, "param", nil, "Positional parameter as index=value, e.g. 1=work (repeatable)")
	return cmd
}

func parseParamPairs(pairs []string) (map[string]any, error) {
	params := make(map[string]any)
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid param %q: expected key=value", pair)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("invalid param %q: empty key", pair)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

func dsnScheme(dsn string) string {
	scheme, _, ok := strings.Cut(dsn, "://")
	if !ok {
		return ""
	}
	return scheme
}
