package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nethalo/sqlsentinel/internal/baseline"
	"github.com/nethalo/sqlsentinel/internal/clock"
	"github.com/nethalo/sqlsentinel/internal/config"
	"github.com/nethalo/sqlsentinel/internal/dbdriver"
	"github.com/nethalo/sqlsentinel/internal/engine"
	"github.com/nethalo/sqlsentinel/internal/envprobe"
	"github.com/nethalo/sqlsentinel/internal/report"
	"github.com/nethalo/sqlsentinel/internal/schemaintrospect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var diagnoseCmd = &cobra.Command{
	Use:          "diagnose [SQL statement]",
	Short:        "Run the full diagnostic pipeline against a SELECT statement",
	SilenceUsage: true,
	Long: `Runs EXPLAIN and EXPLAIN ANALYZE against a SELECT statement and reports:
  - Composite score and letter grade
  - Cardinality drift, plan stability, and regression-safety
  - Index cardinality, join fanout, and missing-index findings
  - Scalability projections at larger table sizes
  - Recommended indexes and optional hypothetical-index simulation`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlText, err := getSQLInput(cmd, args)
		if err != nil {
			return err
		}

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

		driver, introspector, probe := wireDriverPorts(connCfg.Driver, db, connCfg.Database)
		permissive := connCfg.Driver == "sqlite"

		engineCfg, err := config.Load(viper.GetViper())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		var store baseline.Store
		if home, err := os.UserHomeDir(); err == nil {
			fileStore, err := baseline.NewFileStore(filepath.Join(home, ".sqlsentinel", "baseline"))
			if err == nil {
				store = fileStore
			} else {
				fmt.Fprintf(os.Stderr, "Warning: baseline history disabled: %v\n", err)
			}
		}

		environment := viper.GetString("environment")
		if environment == "" {
			environment = "production"
		}

		pipeline := engine.New(driver, introspector, probe, store, clock.System{}, engineCfg, connCfg.Database, environment, permissive)

		quick, _ := cmd.Flags().GetBool("quick")
		format := viper.GetString("format")
		renderer := report.NewRenderer(format, os.Stdout)

		if quick {
			result, err := pipeline.Analyze(context.Background(), sqlText)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			renderer.Render(result)
			return nil
		}

		result, err := pipeline.Diagnose(context.Background(), sqlText)
		if err != nil {
			return fmt.Errorf("diagnose: %w", err)
		}
		renderer.Render(result)
		return nil
	},
}

// wireDriverPorts builds the matched Driver/Introspector/Probe trio for
// a driver name, all sharing the same *sql.DB.
func wireDriverPorts(driverName string, db *sql.DB, database string) (dbdriver.Driver, schemaintrospect.Introspector, envprobe.Probe) {
	switch driverName {
	case "postgres":
		return dbdriver.NewPostgresDriver(db), schemaintrospect.NewPostgres(db, ""), envprobe.NewPostgres(db)
	case "sqlite":
		return dbdriver.NewSQLiteDriver(db), schemaintrospect.NewPermissive(), envprobe.Static{}
	default:
		return dbdriver.NewMySQLDriver(db), schemaintrospect.NewMySQL(db, database), envprobe.NewMySQL(db)
	}
}

func init() {
	rootCmd.AddCommand(diagnoseCmd)
	diagnoseCmd.Flags().String("file", "", "Read SQL from file instead of argument")
	diagnoseCmd.Flags().Bool("quick", false, "Run only the scoring phases, skipping the deep analyzers")
	diagnoseCmd.Flags().String("driver", "mysql", "Database driver: mysql, postgres, sqlite")
	diagnoseCmd.Flags().String("sqlite-path", "", "SQLite database file (driver=sqlite only, default :memory:)")
	diagnoseCmd.Flags().String("environment", "production", "Deployment environment name, gates the hypothetical-index analyzer")
	diagnoseCmd.Flags().String("tls", "", "TLS mode: disabled, preferred, required, skip-verify, custom")
	diagnoseCmd.Flags().String("tls-ca", "", "CA certificate path (tls=custom only)")

	viper.BindPFlag("driver", diagnoseCmd.Flags().Lookup("driver"))
	viper.BindPFlag("environment", diagnoseCmd.Flags().Lookup("environment"))
	viper.BindPFlag("sqlite-path", diagnoseCmd.Flags().Lookup("sqlite-path"))
	viper.BindPFlag("tls", diagnoseCmd.Flags().Lookup("tls"))
	viper.BindPFlag("tls_ca", diagnoseCmd.Flags().Lookup("tls-ca"))
}

func connectionConfigFromFlags() ConnectionConfig {
	return ConnectionConfig{
		Driver:   viper.GetString("driver"),
		Host:     viper.GetString("host"),
		Port:     viper.GetInt("port"),
		User:     viper.GetString("user"),
		Password: viper.GetString("password"),
		Database: viper.GetString("database"),
		Socket:   viper.GetString("socket"),
		Path:     viper.GetString("sqlite-path"),
		TLSMode:  viper.GetString("tls"),
		TLSCA:    viper.GetString("tls_ca"),
	}
}

func getSQLInput(cmd *cobra.Command, args []string) (string, error) {
	filePath, _ := cmd.Flags().GetString("file")

	if filePath != "" {
		if err := validateSQLFilePath(filePath); err != nil {
			return "", fmt.Errorf("file validation failed: %w", err)
		}
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("could not read file %s: %w", filePath, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	return "", fmt.Errorf("provide a SQL statement as argument or use --file flag")
}

// validateSQLFilePath checks if the file path is safe to read, guarding
// against path traversal and accidentally reading huge non-SQL files.
func validateSQLFilePath(filePath string) error {
	cleanPath := filepath.Clean(filePath)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	fileInfo, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", absPath)
	}

	const maxFileSize = 10 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("file too large (>10MB): %s - this may not be a SQL file", absPath)
	}

	sensitivePaths := []string{"/etc/", "/sys/", "/proc/", "/dev/"}
	for _, sensitive := range sensitivePaths {
		if strings.HasPrefix(absPath, sensitive) {
			fmt.Fprintf(os.Stderr, "⚠️  Warning: Reading from system path %s\n", absPath)
			break
		}
	}

	return nil
}
