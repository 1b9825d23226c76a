package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tj/go-naturaldate"

	"github.com/nwirth/vertime/internal/config"
	"github.com/nwirth/vertime/internal/timeular"
	"github.com/nwirth/vertime/internal/vertec"
	"github.com/nwirth/vertime/internal/web"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "vertime",
	Short: "Dashboard reconciling Timeular entries with Vertec projects",
	Long:  "vertime fetches your Timeular time entries and Vertec project list and serves a single page prefilling a time-entry edit form.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server",
	RunE:  runServe,
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List active Vertec projects",
	RunE:  runProjects,
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List Timeular entries for a day",
	RunE:  runEntries,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	entriesCmd.Flags().String("day", "", "day to list: ISO date or natural language, default today")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(entriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newTimeularClient(cfg *config.Config, logger *slog.Logger) *timeular.Client {
	return timeular.NewClient(cfg.Timeular.APIURL, cfg.Timeular.APIKey, cfg.Timeular.APISecret, cfg.HTTPTimeout(), logger)
}

func newVertecClient(cfg *config.Config, logger *slog.Logger) *vertec.Client {
	return vertec.NewClient(cfg.Vertec.APIURL, cfg.Vertec.Token, cfg.Vertec.EmployeeID, cfg.HTTPTimeout(), logger)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	addr := cfg.Server.Addr
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	server := web.NewServer(newTimeularClient(cfg, logger), newVertecClient(cfg, logger), logger)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func runProjects(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout())
	defer cancel()

	projects, err := newVertecClient(cfg, newLogger()).FetchProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Printf("%-10s %s\n", p.ObjID, p.Code)
	}
	return nil
}

func runEntries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	day := time.Now()
	if raw, _ := cmd.Flags().GetString("day"); raw != "" {
		if d, err := time.ParseInLocation("2006-01-02", raw, day.Location()); err == nil {
			day = d
		} else if d, err := naturaldate.Parse(raw, day, naturaldate.WithDirection(naturaldate.Past)); err == nil {
			day = d
		} else {
			return fmt.Errorf("unrecognized day %q", raw)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout())
	defer cancel()

	entries, err := newTimeularClient(cfg, newLogger()).FetchEntries(ctx, day)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%-8s %s — %s  %s\n", e.ID, e.Duration.StartedAt, e.Duration.StoppedAt, e.Note.Text)
	}
	return nil
}
