package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print sqlsentinel version and supported database versions",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "sqlsentinel %s (commit: %s, built: %s)\n\n", Version, CommitSHA, BuildDate)
		fmt.Fprintln(out, "Supported drivers:")
		fmt.Fprintln(out, "  • MySQL 8.0 / 8.4 LTS (including Percona Server, Percona XtraDB Cluster, Group Replication)")
		fmt.Fprintln(out, "  • PostgreSQL 13+")
		fmt.Fprintln(out, "  • SQLite (permissive mode, for local testing)")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "MySQL 5.7 is not supported (EOL October 2023).")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
