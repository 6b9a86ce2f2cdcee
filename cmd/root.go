package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sqlsentinel",
	Short: "Pre-execution query diagnostics for MySQL, PostgreSQL, and SQLite",
	Long: `sqlsentinel runs EXPLAIN and EXPLAIN ANALYZE against a SELECT statement
before it ever touches production traffic.

It scores the query, classifies its access path, estimates how it scales
as tables grow, and flags missing indexes, join fanout, and cardinality
drift — with a regression baseline so you know when a query that used to
be fine has started to drift.

Know exactly how your query will perform before you ship it. No guesses.`,
}

// Execute is called by main.main(). It adds all child commands to the root
// command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sqlsentinel/config.yaml)")
	rootCmd.PersistentFlags().StringP("host", "H", "127.0.0.1", "Database host")
	rootCmd.PersistentFlags().IntP("port", "P", 3306, "Database port")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Database user")
	rootCmd.PersistentFlags().StringP("password", "p", "", "Database password (will prompt if flag present without value)")
	rootCmd.PersistentFlags().Lookup("password").NoOptDefVal = "" // Allow -p without value to trigger prompt
	rootCmd.PersistentFlags().StringP("database", "d", "", "Target database")
	rootCmd.PersistentFlags().StringP("socket", "S", "", "Unix socket path (mysql only)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "Output format: text, plain, json, markdown")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show additional debug info")

	// Bind flags to viper
	viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("host"))
	viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port"))
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
	viper.BindPFlag("socket", rootCmd.PersistentFlags().Lookup("socket"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(home + "/.sqlsentinel")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SQLSENTINEL")
	viper.AutomaticEnv()

	// Silently ignore missing config file â€” it's optional
	if err := viper.ReadInConfig(); err == nil {
		// Map nested config structure to flat keys that flags expect
		// Only set these if the flags haven't been explicitly set by the user
		if !rootCmd.PersistentFlags().Changed("host") && viper.IsSet("connections.default.host") {
			viper.Set("host", viper.GetString("connections.default.host"))
		}
		if !rootCmd.PersistentFlags().Changed("port") && viper.IsSet("connections.default.port") {
			viper.Set("port", viper.GetInt("connections.default.port"))
		}
		if !rootCmd.PersistentFlags().Changed("user") && viper.IsSet("connections.default.user") {
			viper.Set("user", viper.GetString("connections.default.user"))
		}
		if !rootCmd.PersistentFlags().Changed("database") && viper.IsSet("connections.default.database") {
			viper.Set("database", viper.GetString("connections.default.database"))
		}
		if !rootCmd.PersistentFlags().Changed("format") && viper.IsSet("defaults.format") {
			viper.Set("format", viper.GetString("defaults.format"))
		}
	}
}
