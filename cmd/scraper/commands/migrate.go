package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/riskibarqy/fantasy-league-scraper/internal/app"
	"github.com/spf13/cobra"
)

var migrateDir string

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrateDir, "dir", "", "migrations directory (default MIGRATIONS_DIR or ./db/migrations)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd, migrateGotoCmd)
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applies the scraped tables schema to DB_URL.",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Applies every pending migration.",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
		if err := ignoreNoChange(cmd, m.Up()); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	}),
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rolls back the last steps migrations (default 1).",
	Args:  cobra.MaximumNArgs(1),
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
		steps, err := parseSteps(args)
		if err != nil {
			return err
		}
		if err := ignoreNoChange(cmd, m.Steps(-steps)); err != nil {
			return err
		}
		cmd.Printf("rolled back %d migration(s)\n", steps)
		return nil
	}),
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the applied version and dirty flag.",
	Args:  cobra.NoArgs,
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, _ []string) error {
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			cmd.Println("version: none")
			cmd.Println("dirty: false")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		cmd.Printf("version: %d\n", version)
		cmd.Printf("dirty: %t\n", dirty)
		return nil
	}),
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Sets the version without running migrations.",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
		version, err := parseVersion(args[0])
		if err != nil {
			return err
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		cmd.Printf("forced version to %d\n", version)
		return nil
	}),
}

var migrateGotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrates up or down to the target version.",
	Args:  cobra.ExactArgs(1),
	RunE: withMigrator(func(cmd *cobra.Command, m *migrate.Migrate, args []string) error {
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		if err := ignoreNoChange(cmd, m.Migrate(target)); err != nil {
			return err
		}
		cmd.Printf("migrated to version %d\n", target)
		return nil
	}),
}

func withMigrator(fn func(cmd *cobra.Command, m *migrate.Migrate, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
		if dbURL == "" {
			return fmt.Errorf("DB_URL is required")
		}
		dbURL = app.NormalizeDBURL(dbURL, envBool("DB_DISABLE_PREPARED_BINARY_RESULT", true))

		dir, err := resolveMigrationsDir(migrateDir)
		if err != nil {
			return fmt.Errorf("resolve migrations dir: %w", err)
		}
		m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			srcErr, dbErr := m.Close()
			if srcErr != nil {
				cmd.PrintErrf("close migration source: %v\n", srcErr)
			}
			if dbErr != nil {
				cmd.PrintErrf("close migration db: %v\n", dbErr)
			}
		}()
		return fn(cmd, m, args)
	}
}

func ignoreNoChange(cmd *cobra.Command, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		cmd.Println("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}

	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}

	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func resolveMigrationsDir(flagDir string) (string, error) {
	candidates := []string{
		strings.TrimSpace(flagDir),
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked --dir, MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}

func envBool(key string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
