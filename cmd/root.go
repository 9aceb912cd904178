package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/umzug/config"
	"github.com/s0up4200/umzug/filter"
	"github.com/s0up4200/umzug/keychain"
	"github.com/s0up4200/umzug/session"
	"github.com/s0up4200/umzug/umzug"
)

var (
	cfgFile    string
	jsonOutput bool
	cfg        *config.Config
	logger     zerolog.Logger
	filters    *filter.Compiler

	// Command flags
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "umzug",
	Short: "Keep track of what is packed in which box during a move",
	Long: `umzug is a command-line client for the Umzug moving-inventory API.

Items are organized into boxes through packings. Use the boxes, items and
packings commands to manage the inventory, and watch to follow changes made
by other people while you pack.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.umzug/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// initializeApp loads the configuration and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)
	filters = newFilterCompiler(cfg)
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// configuredServer returns the server from the loaded configuration
func configuredServer() (umzug.Server, error) {
	if cfg.Server.Host == "" {
		return umzug.Server{}, errors.New("no server configured, run 'umzug login' first")
	}
	return umzug.Server{
		Scheme: umzug.Scheme(cfg.Server.Scheme),
		Host:   cfg.Server.Host,
		Port:   uint16(cfg.Server.Port),
	}, nil
}

func credentialStore() *keychain.Keyring {
	return keychain.NewKeyring(cfg.Keychain.Service)
}

// openSession signs in with the credentials stored for the configured server
func openSession() (*session.Session, error) {
	server, err := configuredServer()
	if err != nil {
		return nil, err
	}

	s, err := session.Reauthenticate(server, credentialStore(), cfg.Server.Username, logger,
		umzug.WithTimeout(cfg.API.Timeout))
	switch {
	case errors.Is(err, keychain.ErrNotFound), errors.Is(err, session.ErrIncompleteCredentials):
		return nil, fmt.Errorf("not logged in to %s, run 'umzug login' first", server)
	case err != nil:
		return nil, err
	}
	return s, nil
}

// withSession runs fn with an open session and adds a login hint when the
// session was invalidated along the way
func withSession(fn func(s *session.Session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	err = fn(s)
	if invalidated := s.Invalidated(); invalidated != nil {
		logger.Debug().Err(invalidated).Msg("Session invalidated")
		if err == nil {
			err = invalidated
		}
		return fmt.Errorf("%w\nthe session is no longer valid, run 'umzug login' to sign in again", err)
	}

	var apiErr *umzug.APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
		return fmt.Errorf("%w\nthe server rejected the stored credentials, run 'umzug login' to sign in again", err)
	}
	return err
}
