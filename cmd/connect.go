package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:          "connect",
	Short:        "Test connection and show environment info",
	SilenceUsage: true,
	Long:         `Connect to a database, probe its environment (buffer pool sizing, InnoDB tunables, cache warmth) and list its tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		connCfg := connectionConfigFromFlags()
		if connCfg.Database == "" && connCfg.Driver != "sqlite" {
			return fmt.Errorf("database not specified: use -d flag")
		}
		if connCfg.Password == "" && connCfg.Driver != "sqlite" {
			connCfg.Password = PromptPassword()
		}

		db, err := Connect(connCfg)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer db.Close()

		_, introspector, probe := wireDriverPorts(connCfg.Driver, db, connCfg.Database)

		ctx := context.Background()
		envCtx, err := probe.Collect(ctx, connCfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: environment probe failed: %v\n", err)
		} else {
			fmt.Printf("Driver:                %s\n", connCfg.Driver)
			fmt.Printf("Database:              %s\n", envCtx.DatabaseName)
			if envCtx.MySQLVersion != "" {
				fmt.Printf("Server version:        %s\n", envCtx.MySQLVersion)
			}
			fmt.Printf("Buffer pool size:      %d bytes\n", envCtx.BufferPoolSizeBytes)
			fmt.Printf("Buffer pool used:      %.1f%%\n", envCtx.BufferPoolUtilization*100)
			if envCtx.IsColdCache() {
				fmt.Printf("Cache state:           cold\n")
			} else {
				fmt.Printf("Cache state:           warm\n")
			}
		}

		tables, err := introspector.ListTables(ctx)
		if err != nil {
			return fmt.Errorf("listing tables failed: %w", err)
		}
		fmt.Printf("\n%d table(s):\n", len(tables))
		for _, t := range tables {
			fmt.Printf("  - %s\n", t)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
