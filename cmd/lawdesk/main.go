package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/smithpartners/lawdesk/internal/ai"
	"github.com/smithpartners/lawdesk/internal/config"
	"github.com/smithpartners/lawdesk/internal/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "lawdesk",
	Short:         "Smith & Partners law firm dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err = newLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer closeDB(gdb)
		if err := db.Migrate(gdb, cfg.Database, logger); err != nil {
			return err
		}
		logger.Info("migrations completed")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the administrator account from ADMIN_EMAIL and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer closeDB(gdb)
		created, err := db.Seed(cmd.Context(), gdb, cfg.App.AdminEmail, cfg.App.AdminPassword)
		if err != nil {
			return err
		}
		logger.Info("seed completed", zap.Bool("created", created))
		return nil
	},
}

var (
	newUserEmail string
	newUserName  string
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user allowed to sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if newUserEmail == "" {
			return errors.New("--email is required")
		}
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		gdb, err := db.Open(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer closeDB(gdb)
		u, err := db.CreateUser(cmd.Context(), gdb, newUserEmail, newUserName, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	createUserCmd.Flags().StringVar(&newUserEmail, "email", "", "email address used to sign in")
	createUserCmd.Flags().StringVar(&newUserName, "name", "", "display name")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createUserCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the production zap config at the configured level, or
// debug in dev mode and with --verbose.
func newLogger(c *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level := zapcore.InfoLevel
	if c.Log.Level != "" {
		if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
		}
	}
	if verbose || c.App.Dev {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func serve(ctx context.Context) error {
	gdb, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeDB(gdb)

	if err := db.Migrate(gdb, cfg.Database, logger); err != nil {
		return err
	}
	if created, err := db.Seed(ctx, gdb, cfg.App.AdminEmail, cfg.App.AdminPassword); err != nil {
		return err
	} else if created {
		logger.Info("administrator created", zap.String("email", cfg.App.AdminEmail))
	}
	if cfg.AI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set; AI features will fail")
	}

	gen := ai.NewClient(ai.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: &cfg.AI.Temperature,
	}, logger.Named("ai"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(cfg, gdb, gen, logger),
		ReadTimeout:  config.Timeout(cfg.Server.ReadTimeout),
		WriteTimeout: config.Timeout(cfg.Server.WriteTimeout),
		IdleTimeout:  config.Timeout(cfg.Server.IdleTimeout),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

// readPassword prompts twice on a terminal; otherwise one line is read from stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	out := cmd.ErrOrStderr()
	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(first), nil
}

func closeDB(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
