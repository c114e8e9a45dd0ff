package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"realmlog/internal/check"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run consistency checks against stored realm state",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	report, err := check.Run(ctx, a.db)
	if err != nil {
		return err
	}

	var errorIssues []check.Issue
	var warnIssues []check.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case check.SeverityError:
			errorIssues = append(errorIssues, issue)
		case check.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	out := cmd.OutOrStdout()
	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("check found errors; run `realmlog init` to repair what can be repaired")
	}
	return nil
}

func printIssues(out io.Writer, issues []check.Issue) {
	for _, issue := range issues {
		location := "realm"
		if issue.TileID != "" {
			location = issue.TileID
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
