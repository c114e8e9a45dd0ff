package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "realmlog",
		Short:        "Turn logged activity minutes into a conquered realm",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: realmlog.yaml, realmlog.yml or realmlog.toml in the working directory)")
	root.AddCommand(initCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(mapCmd())
	root.AddCommand(tilesCmd())
	root.AddCommand(logCmd())
	root.AddCommand(spendCmd())
	root.AddCommand(targetCmd())
	root.AddCommand(sessionsCmd())
	root.AddCommand(timerCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(devCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	return root
}
