package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var projectName string
	var format string
	var dsn string
	var investMode string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and create or repair the realm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(cmd, projectName, format, dsn, investMode)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&format, "format", "yaml", "Config format: yaml or toml")
	cmd.Flags().StringVar(&dsn, "dsn", "sqlite://realmlog.db", "Database DSN")
	cmd.Flags().StringVar(&investMode, "invest-mode", "pool", "Where session minutes go: pool or direct")
	return cmd
}

func runInit(cmd *cobra.Command, projectName, format, dsn, investMode string) error {
	path := configPath
	if path == "" {
		switch format {
		case "yaml":
			path = "realmlog.yaml"
		case "toml":
			path = "realmlog.toml"
		default:
			return fmt.Errorf("unknown format %q (want yaml or toml)", format)
		}
		configPath = path
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	var contents string
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		contents = fmt.Sprintf("project = %q\nversion = 1\n\n[database]\ndsn = %q\n\n[game]\ninvest_mode = %q\n\n[log]\nlevel = \"info\"\nformat = \"text\"\n", projectName, dsn, investMode)
	} else {
		contents = fmt.Sprintf("project: %s\nversion: 1\n\ndatabase:\n  dsn: %s\n\ngame:\n  invest_mode: %s\n\nlog:\n  level: info\n  format: text\n", projectName, dsn, investMode)
	}
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	ctx := context.Background()
	a, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	report, err := a.initGame(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s.\n", path)
	fmt.Fprintf(out, "Realm has %d tiles", len(a.game.State().Tiles))
	if report.Seeded != "" {
		fmt.Fprintf(out, "; start tile %s conquered", report.Seeded)
	}
	fmt.Fprintln(out, ".")
	return nil
}
