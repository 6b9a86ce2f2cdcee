package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sqlsentinel configuration",
}

var configInitCmd = &cobra.Command{
	Use:          "init",
	Short:        "Create config file interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		configDir := filepath.Join(home, ".sqlsentinel")
		configPath := filepath.Join(configDir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Config file already exists at %s\n", configPath)
			fmt.Print("Overwrite? [y/N]: ")
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := os.MkdirAll(configDir, 0700); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		reader := bufio.NewReader(os.Stdin)

		fmt.Println("sqlsentinel configuration setup")
		fmt.Println("────────────────────────────────")
		fmt.Println()

		fmt.Print("Driver (mysql/postgres/sqlite) [mysql]: ")
		driver, _ := reader.ReadString('\n')
		driver = strings.TrimSpace(driver)
		if driver == "" {
			driver = "mysql"
		}

		fmt.Print("Host [127.0.0.1]: ")
		host, _ := reader.ReadString('\n')
		host = strings.TrimSpace(host)
		if host == "" {
			host = "127.0.0.1"
		}

		defaultPort := "3306"
		if driver == "postgres" {
			defaultPort = "5432"
		}
		fmt.Printf("Port [%s]: ", defaultPort)
		port, _ := reader.ReadString('\n')
		port = strings.TrimSpace(port)
		if port == "" {
			port = defaultPort
		}

		fmt.Print("User [sqlsentinel]: ")
		user, _ := reader.ReadString('\n')
		user = strings.TrimSpace(user)
		if user == "" {
			user = "sqlsentinel"
		}

		fmt.Print("Default database (optional): ")
		database, _ := reader.ReadString('\n')
		database = strings.TrimSpace(database)

		fmt.Print("Deployment environment [production]: ")
		environment, _ := reader.ReadString('\n')
		environment = strings.TrimSpace(environment)
		if environment == "" {
			environment = "production"
		}

		fmt.Print("Default output format [text]: ")
		format, _ := reader.ReadString('\n')
		format = strings.TrimSpace(format)
		if format == "" {
			format = "text"
		}

		var config strings.Builder
		config.WriteString("# sqlsentinel configuration\n")
		config.WriteString("# https://github.com/nethalo/sqlsentinel\n\n")

		config.WriteString("driver: " + driver + "\n\n")

		config.WriteString("connections:\n")
		config.WriteString("  default:\n")
		config.WriteString(fmt.Sprintf("    host: %s\n", host))
		config.WriteString(fmt.Sprintf("    port: %s\n", port))
		config.WriteString(fmt.Sprintf("    user: %s\n", user))
		config.WriteString("    # password: omitted for security, will prompt\n")
		if database != "" {
			config.WriteString(fmt.Sprintf("    database: %s\n", database))
		}

		config.WriteString("\ndefaults:\n")
		config.WriteString(fmt.Sprintf("  format: %s\n", format))
		config.WriteString(fmt.Sprintf("  environment: %s\n", environment))

		config.WriteString("\n# Diagnostic engine thresholds. Any key omitted here keeps its\n")
		config.WriteString("# built-in default (see internal/config.Default).\n")
		config.WriteString("engine:\n")
		config.WriteString("  scoring_weights:\n")
		config.WriteString("    execution_efficiency: 0.35\n")
		config.WriteString("    index_utilization: 0.25\n")
		config.WriteString("    scalability: 0.20\n")
		config.WriteString("    resource_footprint: 0.10\n")
		config.WriteString("    plan_stability: 0.10\n")
		config.WriteString("  hypothetical_index:\n")
		config.WriteString("    enabled: false\n")
		config.WriteString("    allowed_environments: [dev, staging]\n")

		if err := os.WriteFile(configPath, []byte(config.String()), 0600); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("\n✅ Config written to %s\n", configPath)

		if user != "root" {
			fmt.Println("\nRecommended: create a read-only user for sqlsentinel:")
			fmt.Println()
			switch driver {
			case "postgres":
				fmt.Printf("  CREATE ROLE %s WITH LOGIN PASSWORD '<password>';\n", user)
				fmt.Printf("  GRANT pg_read_all_data TO %s;\n", user)
			default:
				fmt.Printf("  CREATE USER '%s'@'%%' IDENTIFIED BY '<password>';\n", user)
				fmt.Printf("  GRANT SELECT ON *.* TO '%s'@'%%';\n", user)
				fmt.Printf("  GRANT PROCESS ON *.* TO '%s'@'%%';\n", user)
			}
			fmt.Println()
		}

		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		configFile := viper.ConfigFileUsed()
		if configFile == "" {
			fmt.Fprintln(out, "No config file found.")
			fmt.Fprintln(out, "Run 'sqlsentinel config init' to create one.")
			return nil
		}

		fmt.Fprintf(out, "Config file: %s\n\n", configFile)

		data, err := os.ReadFile(configFile)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		fmt.Fprintln(out, string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
