package cmd

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"fmt"
	"os"
	"syscall"

	mysqldriver "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
	"golang.org/x/term"
)

// ConnectionConfig holds the connection parameters shared by every
// driver sqlsentinel supports. Not every field applies to every driver:
// TLSMode/TLSCA are MySQL/Postgres-only, Socket is MySQL-only, Path is
// SQLite-only.
type ConnectionConfig struct {
	Driver   string // "mysql" (default), "postgres", "sqlite"
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Socket   string
	Path     string // SQLite file path, or ":memory:"
	TLSMode  string // "", "disabled", "preferred", "required", "skip-verify", "custom"
	TLSCA    string // path to CA certificate file (required when TLSMode == "custom")
}

// Connect opens and pings a *sql.DB for cfg.Driver. The connection's
// lifetime is owned by the caller; Driver/Introspector/Probe
// implementations never open or close it themselves.
func Connect(cfg ConnectionConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "", "mysql":
		return connectMySQL(cfg)
	case "postgres":
		return connectPostgres(cfg)
	case "sqlite":
		return connectSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q: valid values are mysql, postgres, sqlite", cfg.Driver)
	}
}

func connectMySQL(cfg ConnectionConfig) (*sql.DB, error) {
	if cfg.TLSMode == "custom" {
		if cfg.TLSCA == "" {
			return nil, fmt.Errorf("--tls-ca is required when --tls=custom")
		}
		if err := registerCustomMySQLTLS(cfg.TLSCA); err != nil {
			return nil, fmt.Errorf("TLS setup failed: %w", err)
		}
	}

	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	return pingAndTune(db)
}

func registerCustomMySQLTLS(caPath string) error {
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return fmt.Errorf("reading CA certificate %q: %w", caPath, err)
	}
	rootCAs := x509.NewCertPool()
	if !rootCAs.AppendCertsFromPEM(pem) {
		return fmt.Errorf("no valid certificates found in %q", caPath)
	}
	return mysqldriver.RegisterTLSConfig("sqlsentinel-custom", &tls.Config{RootCAs: rootCAs})
}

func buildMySQLDSN(cfg ConnectionConfig) (string, error) {
	switch cfg.TLSMode {
	case "", "disabled", "preferred", "required", "skip-verify", "custom":
	default:
		return "", fmt.Errorf("invalid TLS mode %q: valid values are disabled, preferred, required, skip-verify, custom", cfg.TLSMode)
	}

	var addr string
	if cfg.Socket != "" {
		addr = fmt.Sprintf("unix(%s)", cfg.Socket)
	} else {
		addr = fmt.Sprintf("tcp(%s:%d)", cfg.Host, cfg.Port)
	}

	db := cfg.Database
	if db == "" {
		db = "information_schema"
	}

	dsn := fmt.Sprintf("%s:%s@%s/%s?parseTime=true&interpolateParams=true", cfg.User, cfg.Password, addr, db)

	switch cfg.TLSMode {
	case "preferred":
		dsn += "&tls=preferred"
	case "required":
		dsn += "&tls=true"
	case "skip-verify":
		dsn += "&tls=skip-verify"
	case "custom":
		dsn += "&tls=sqlsentinel-custom"
	}

	return dsn, nil
}

func connectPostgres(cfg ConnectionConfig) (*sql.DB, error) {
	sslmode := "prefer"
	switch cfg.TLSMode {
	case "disabled":
		sslmode = "disable"
	case "required":
		sslmode = "require"
	case "skip-verify":
		sslmode = "allow"
	}

	dbname := cfg.Database
	if dbname == "" {
		dbname = "postgres"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, dbname, sslmode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	return pingAndTune(db)
}

func connectSQLite(cfg ConnectionConfig) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}
	return pingAndTune(db)
}

func pingAndTune(db *sql.DB) (*sql.DB, error) {
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping: %w", err)
	}
	// Conservative connection pool for a CLI tool.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	return db, nil
}

// PromptPassword reads a password from the terminal without echoing.
func PromptPassword() string {
	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return ""
	}
	return string(password)
}
