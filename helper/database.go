package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the postgres connection settings.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration reads the configuration from the
// CATALOG_DB_* environment variables.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:     os.Getenv("CATALOG_DB_HOST"),
		Port:     os.Getenv("CATALOG_DB_PORT"),
		Database: os.Getenv("CATALOG_DB_DATABASE"),
		Username: os.Getenv("CATALOG_DB_USERNAME"),
		Password: os.Getenv("CATALOG_DB_PASSWORD"),
		Schema:   os.Getenv("CATALOG_DB_SCHEMA"),
		SSLMode:  os.Getenv("CATALOG_DB_SSLMODE"),
	}

	if len(strings.TrimSpace(config.Host)) == 0 ||
		len(strings.TrimSpace(config.Port)) == 0 ||
		len(strings.TrimSpace(config.Database)) == 0 ||
		len(strings.TrimSpace(config.Username)) == 0 ||
		len(strings.TrimSpace(config.Password)) == 0 {
		return nil, fmt.Errorf("CATALOG_DB_HOST, CATALOG_DB_PORT, CATALOG_DB_DATABASE, CATALOG_DB_USERNAME and CATALOG_DB_PASSWORD must be set")
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "require"
	}

	return config, nil
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfiguration) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	q.Set("search_path", c.Schema)
	u.RawQuery = q.Encode()
	return u.String()
}

// Database wraps the sql connection pool with a name and logger.
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabase connects to postgres and panics if the database stays unreachable.
func NewDatabase(name string, dbConfig *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}

	db := &Database{
		Name:   name,
		Logger: logger,
	}

	err := db.ConnectToDatabase(dbConfig)
	if err != nil {
		logger.Error("Error connecting to database", slog.String("name", name), slog.Any("error", err))
		panic(err)
	}

	return db
}

// NewTestDatabase creates a Database for tests with a pretty debug logger.
func NewTestDatabase(dbConfig *DatabaseConfiguration) *Database {
	logger := slog.New(NewPrettyHandler(os.Stdout, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
	}))
	return NewDatabase("test_db", dbConfig, logger)
}

// ConnectToDatabase opens the pool and pings until the server answers.
func (d *Database) ConnectToDatabase(dbConfig *DatabaseConfiguration) error {
	if dbConfig == nil {
		return NewError("database configuration validation", fmt.Errorf("database configuration is nil"))
	}

	instance, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return NewError("open", err)
	}

	instance.SetMaxOpenConns(25)
	instance.SetMaxIdleConns(25)
	instance.SetConnMaxLifetime(5 * time.Minute)

	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pingErr = instance.PingContext(ctx)
		cancel()
		if pingErr == nil {
			break
		}
		d.logger().Warn("Database not ready", slog.Int("attempt", attempt), slog.Any("error", pingErr))
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if pingErr != nil {
		_ = instance.Close()
		return NewError("ping", pingErr)
	}

	d.Instance = instance
	d.logger().Info("Connected to database", slog.String("name", d.Name), slog.String("host", dbConfig.Host))

	return nil
}

// Health returns the status of the connection pool.
func (d *Database) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	if d.Instance == nil {
		stats["status"] = "down"
		return stats
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	// Ping errors stay in the log.
	err := d.Instance.PingContext(ctx)
	if err != nil {
		d.logger().Error("Database health check failed", slog.String("name", d.Name), slog.Any("error", err))
		stats["status"] = "down"
		return stats
	}

	dbStats := d.Instance.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprintf("%d", dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprintf("%d", dbStats.InUse)
	stats["idle"] = fmt.Sprintf("%d", dbStats.Idle)

	return stats
}

func (d *Database) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	d.logger().Info("Disconnected from database", slog.String("name", d.Name))
	return d.Instance.Close()
}
