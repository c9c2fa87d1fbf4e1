package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"valentinelink/internal/config"
	"valentinelink/internal/game"
	"valentinelink/internal/metrics"
	"valentinelink/internal/repository"
	"valentinelink/internal/repository/postgres"
	"valentinelink/internal/repository/sqlite"
	"valentinelink/internal/service"
	"valentinelink/internal/shortener"
	"valentinelink/internal/transport/client"
	httpTransport "valentinelink/internal/transport/http"
)

var rootCmd = &cobra.Command{
	Use:   "valentinelink",
	Short: "A valentine page short-link service written in Go",
	Long:  "A short-link store for valentine page configurations with a server-authoritative arcade mini-game, backed by SQLite or Postgres",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the valentine link server",
	RunE:  runServer,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all expired short links and exit",
	RunE:  runPurge,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the server",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a valentine short link",
	RunE:  runCreateLink,
}

var getCmd = &cobra.Command{
	Use:   "get [ID]",
	Short: "Get the stored configuration for a short link",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetConfig,
}

func init() {
	// A .env file, when present, seeds flag defaults
	_ = godotenv.Load()

	// Server command flags
	serverCmd.Flags().StringP("port", "p", envOr("VALENTINE_PORT", "8080"), "Server port")
	serverCmd.Flags().String("server-url", envOr("VALENTINE_SERVER_URL", "http://localhost:8080"), "Server URL (for client communication)")
	serverCmd.Flags().String("db-driver", envOr("VALENTINE_DB_DRIVER", config.DriverSQLite), "Database driver (sqlite or postgres)")
	serverCmd.Flags().String("db-path", envOr("VALENTINE_DB_PATH", "valentine.db"), "SQLite database file path")
	serverCmd.Flags().String("db-dsn", envOr("VALENTINE_DB_DSN", ""), "Postgres connection string")
	serverCmd.Flags().String("game-settings", envOr("VALENTINE_GAME_SETTINGS", ""), "Game tuning YAML file (defaults used when empty)")
	serverCmd.Flags().Duration("purge-interval", time.Hour, "Interval between expired link sweeps (0 disables)")

	// Shortener configuration flags
	serverCmd.Flags().Int("id-length", 6, "Number of characters in generated short ids")

	// Logging configuration flags
	serverCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging (HTTP requests/responses and error details)")

	// Purge command flags
	purgeCmd.Flags().String("db-driver", envOr("VALENTINE_DB_DRIVER", config.DriverSQLite), "Database driver (sqlite or postgres)")
	purgeCmd.Flags().String("db-path", envOr("VALENTINE_DB_PATH", "valentine.db"), "SQLite database file path")
	purgeCmd.Flags().String("db-dsn", envOr("VALENTINE_DB_DSN", ""), "Postgres connection string")

	// Client command flags
	clientCmd.PersistentFlags().StringP("server-url", "u", envOr("VALENTINE_SERVER_URL", "http://localhost:8080"), "Server URL")
	createCmd.Flags().String("config", "", "Path to a configuration JSON file (stock config used when empty)")
	createCmd.Flags().String("lang", "en", "Language for the stock configuration (en or zh)")

	// Add subcommands
	clientCmd.AddCommand(createCmd, getCmd)
	rootCmd.AddCommand(serverCmd, purgeCmd, clientCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func openRepository(driver, path, dsn string) (repository.LinkRepository, error) {
	switch driver {
	case config.DriverSQLite:
		return sqlite.New(path)
	case config.DriverPostgres:
		return postgres.New(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	// Get configuration from CLI flags
	port, _ := cmd.Flags().GetString("port")
	serverURL, _ := cmd.Flags().GetString("server-url")
	dbDriver, _ := cmd.Flags().GetString("db-driver")
	dbPath, _ := cmd.Flags().GetString("db-path")
	dbDSN, _ := cmd.Flags().GetString("db-dsn")
	settingsPath, _ := cmd.Flags().GetString("game-settings")
	purgeInterval, _ := cmd.Flags().GetDuration("purge-interval")
	idLength, _ := cmd.Flags().GetInt("id-length")
	verbose, _ := cmd.Flags().GetBool("verbose")

	shortenerConfig := shortener.Config{
		Length: idLength,
	}

	// Create configuration
	cfg, err := config.New(port, serverURL, dbDriver, dbPath, dbDSN, settingsPath, verbose, shortenerConfig)
	if err != nil {
		return fmt.Errorf("failed to create configuration: %w", err)
	}

	log.Printf("Starting valentine link server with config: port=%s driver=%s", cfg.Server.Port, cfg.Database.Driver)

	// Load game tuning
	settings := game.DefaultSettings()
	if cfg.Game.SettingsPath != "" {
		settings, err = game.LoadSettings(cfg.Game.SettingsPath)
		if err != nil {
			return fmt.Errorf("failed to load game settings: %w", err)
		}
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid game settings: %w", err)
	}

	// Initialize database
	repo, err := openRepository(cfg.Database.Driver, cfg.Database.Path, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize id generator and service
	generator, err := shortener.NewRandomGenerator(cfg.Shortener)
	if err != nil {
		return fmt.Errorf("failed to create id generator: %w", err)
	}
	log.Printf("Using %s id generator", generator.Type())

	links := service.NewLinkService(repo, generator)
	defer func() {
		if err := links.Close(); err != nil {
			log.Printf("Error closing link service: %v", err)
		}
	}()

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Start periodic expired link sweeps
	purgeCtx, purgeCancel := context.WithCancel(context.Background())
	defer purgeCancel()
	if purgeInterval > 0 {
		go runPurgeLoop(purgeCtx, links, m, purgeInterval)
	}

	// Create and start HTTP server
	server := httpTransport.NewServer(links, settings, m, registry, cfg.Server.Port, cfg.Logging.Verbose)

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down gracefully...", sig)

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during server shutdown: %v", err)
		}
	}

	log.Println("Server stopped")
	return nil
}

// runPurgeLoop sweeps expired links on a fixed interval until ctx is done.
func runPurgeLoop(ctx context.Context, links service.LinkService, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := links.PurgeExpired(ctx)
			if err != nil {
				log.Printf("Error purging expired links: %v", err)
				continue
			}
			if purged > 0 {
				m.LinksPurged.Add(float64(purged))
				log.Printf("Purged %d expired links", purged)
			}
		}
	}
}

func runPurge(cmd *cobra.Command, args []string) error {
	dbDriver, _ := cmd.Flags().GetString("db-driver")
	dbPath, _ := cmd.Flags().GetString("db-path")
	dbDSN, _ := cmd.Flags().GetString("db-dsn")

	repo, err := openRepository(dbDriver, dbPath, dbDSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("Error closing repository: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	purged, err := repo.PurgeExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to purge expired links: %w", err)
	}

	fmt.Printf("Purged %d expired links\n", purged)
	return nil
}

func runCreateLink(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server-url")
	configPath, _ := cmd.Flags().GetString("config")
	lang, _ := cmd.Flags().GetString("lang")

	c := client.NewClient(serverURL)
	commands := client.NewCommands(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Create(ctx, configPath, lang)
}

func runGetConfig(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server-url")
	c := client.NewClient(serverURL)
	commands := client.NewCommands(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return commands.Get(ctx, args[0])
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
