package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/joshdurbin/imagefeed/internal/config"
	"github.com/joshdurbin/imagefeed/internal/transport/client"
)

var rootCmd = &cobra.Command{
	Use:   "imagefeed",
	Short: "A photo feed client for Unsplash",
	Long:  "Browse the Unsplash feed, like photos and page through favorites through a local gateway backed by SQLite or Redis token storage",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local gateway",
	RunE:  runServe,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Client commands for interacting with the gateway",
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Load feed pages and list the feed",
	RunE:  runFeed,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the feed",
	RunE:  runReset,
}

var likeCmd = &cobra.Command{
	Use:   "like [PHOTO_ID]",
	Short: "Like a photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runLike,
}

var unlikeCmd = &cobra.Command{
	Use:   "unlike [PHOTO_ID]",
	Short: "Unlike a photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnlike,
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites [USERNAME]",
	Short: "List the photos a user has liked",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavorites,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the signed-in profile",
	RunE:  runProfile,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Print the sign-in page",
	RunE:  runLogin,
}

var authorizeCmd = &cobra.Command{
	Use:   "authorize [CODE]",
	Short: "Exchange an authorization code",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthorize,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored token",
	RunE:  runLogout,
}

func init() {
	// Server command flags
	serveCmd.Flags().StringP("config", "c", "", "Path to a YAML config file (environment only when empty)")
	serveCmd.Flags().BoolP("verbose", "v", false, "Log every gateway request")
	serveCmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")

	// Client command flags
	clientCmd.PersistentFlags().StringP("server-url", "u", "http://localhost:8080", "Gateway URL")
	clientCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout")
	feedCmd.Flags().IntP("pages", "n", 1, "Pages to load before listing")
	favoritesCmd.Flags().IntP("pages", "n", 1, "Pages to load before listing")
	favoritesCmd.Flags().Bool("refresh", false, "Start again from the first page")
	likeCmd.Flags().Bool("favorites", false, "Apply the change to the favorites list")
	unlikeCmd.Flags().Bool("favorites", false, "Apply the change to the favorites list")

	// Add subcommands
	clientCmd.AddCommand(feedCmd, resetCmd, likeCmd, unlikeCmd, favoritesCmd, profileCmd, loginCmd, authorizeCmd, logoutCmd)
	rootCmd.AddCommand(serveCmd, clientCmd)
}

// setupLogger configures the global zerolog logger
func setupLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	return log.Logger
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Log.Level)
	logger.Info().Str("addr", cfg.Server.Addr()).Str("api", cfg.API.BaseURL).Msg("starting imagefeed gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := newApp(ctx, cfg, verbose, logger)
	cancel()
	if err != nil {
		return err
	}

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.server.Start()
	}()

	select {
	case err := <-errChan:
		a.shutdown(shutdownTimeout)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("shutting down gracefully")
		a.shutdown(shutdownTimeout)
	}

	logger.Info().Msg("gateway stopped")
	return nil
}

// withCommands runs fn against the gateway named by the client flags
func withCommands(cmd *cobra.Command, fn func(ctx context.Context, c *client.Commands) error) error {
	serverURL, _ := cmd.Flags().GetString("server-url")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return fn(ctx, client.NewCommands(client.NewClient(serverURL), cmd.OutOrStdout()))
}

func runFeed(cmd *cobra.Command, args []string) error {
	pages, _ := cmd.Flags().GetInt("pages")
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Feed(ctx, pages)
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.ResetFeed(ctx)
	})
}

func runLike(cmd *cobra.Command, args []string) error {
	fromFavorites, _ := cmd.Flags().GetBool("favorites")
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Like(ctx, args[0], true, fromFavorites)
	})
}

func runUnlike(cmd *cobra.Command, args []string) error {
	fromFavorites, _ := cmd.Flags().GetBool("favorites")
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Like(ctx, args[0], false, fromFavorites)
	})
}

func runFavorites(cmd *cobra.Command, args []string) error {
	pages, _ := cmd.Flags().GetInt("pages")
	refresh, _ := cmd.Flags().GetBool("refresh")
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Favorites(ctx, args[0], pages, refresh)
	})
}

func runProfile(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Profile(ctx)
	})
}

func runLogin(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Login(ctx)
	})
}

func runAuthorize(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Authorize(ctx, args[0])
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	return withCommands(cmd, func(ctx context.Context, c *client.Commands) error {
		return c.Logout(ctx)
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
