package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/s0up4200/umzug/config"
	"github.com/s0up4200/umzug/session"
	"github.com/s0up4200/umzug/umzug"
)

var (
	loginHost     string
	loginPort     int
	loginScheme   string
	loginUsername string
	loginNoStore  bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to an Umzug server",
	Long: `Sign in to an Umzug server and remember the server in the config file.

The password is read from UMZUG_PASSWORD or prompted for, and stored in the
operating system keychain so later commands sign in automatically.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credentials of the configured server",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection status and inventory summary",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)

	loginCmd.Flags().StringVar(&loginHost, "host", "", "server host (default from config)")
	loginCmd.Flags().IntVar(&loginPort, "port", 0, "server port (default from config)")
	loginCmd.Flags().StringVar(&loginScheme, "scheme", "", "http or https (default from config)")
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (default from config)")
	loginCmd.Flags().BoolVar(&loginNoStore, "no-store", false, "do not store the credentials in the keychain")
}

func runLogin(cmd *cobra.Command, args []string) error {
	serverCfg := cfg.Server
	if loginHost != "" {
		serverCfg.Host = loginHost
	}
	if loginPort != 0 {
		serverCfg.Port = loginPort
	}
	if loginScheme != "" {
		serverCfg.Scheme = loginScheme
	}
	if loginUsername != "" {
		serverCfg.Username = loginUsername
	}

	reader := bufio.NewReader(os.Stdin)
	if serverCfg.Host == "" {
		host, err := prompt(reader, "Server: ")
		if err != nil {
			return err
		}
		serverCfg.Host = host
	}
	if serverCfg.Username == "" {
		username, err := prompt(reader, "Username: ")
		if err != nil {
			return err
		}
		serverCfg.Username = username
	}
	password, err := readPassword(reader)
	if err != nil {
		return err
	}

	if serverCfg.Port < 1 || serverCfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", serverCfg.Port)
	}
	server := umzug.Server{
		Scheme: umzug.Scheme(serverCfg.Scheme),
		Host:   serverCfg.Host,
		Port:   uint16(serverCfg.Port),
	}
	auth := umzug.Authentication{Username: serverCfg.Username, Password: password}

	s := session.Login(server, auth, logger, umzug.WithTimeout(cfg.API.Timeout))
	defer s.Close()

	fmt.Printf("Signing in to %s as %s...\n", server, auth.Username)
	boxes, err := loadBoxes(cmd.Context(), s.Client)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if !loginNoStore {
		if err := s.Remember(credentialStore()); err != nil {
			return err
		}
	}

	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(path, serverCfg); err != nil {
		return err
	}

	fmt.Printf("✓ Signed in, %d boxes on the server\n", len(boxes))
	logger.Debug().Str("config", path).Msg("Saved server to config")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	server, err := configuredServer()
	if err != nil {
		return err
	}
	if err := credentialStore().Delete(server.String()); err != nil {
		return err
	}
	fmt.Printf("Signed out of %s\n", server)
	return nil
}

// inventorySummary is the result of the status command
type inventorySummary struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Boxes    int    `json:"boxes"`
	Items    int    `json:"items"`
	Packings int    `json:"packings"`
	Unpacked int    `json:"unpacked"`
	Urgent   int    `json:"urgent"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session.Session) error {
		summary, err := summarize(cmd.Context(), s.Client)
		if err != nil {
			return err
		}
		summary.Server = s.Client.Server().String()
		summary.Username = s.Client.Username()

		if jsonOutput {
			return printJSON(summary)
		}

		fmt.Printf("✓ Connected to %s as %s\n\n", summary.Server, summary.Username)
		fmt.Printf("- Boxes: %d\n", summary.Boxes)
		fmt.Printf("- Items: %d (%d not packed yet)\n", summary.Items, summary.Unpacked)
		fmt.Printf("- Packings: %d\n", summary.Packings)
		fmt.Printf("- Items needed immediately: %d\n", summary.Urgent)
		return nil
	})
}

// summarize loads boxes, items and packings concurrently
func summarize(ctx context.Context, api umzug.API) (inventorySummary, error) {
	var (
		summary  inventorySummary
		boxes    []umzug.Box
		items    []umzug.Item
		packings []umzug.Packing
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		boxes, err = loadBoxes(ctx, api)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = loadItems(ctx, api)
		return err
	})
	g.Go(func() error {
		result, err := api.FetchPackings(nil, nil).Get(ctx)
		if err != nil {
			return err
		}
		packings, err = result.Get()
		if err != nil {
			return fmt.Errorf("failed to list packings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return summary, err
	}

	packed := make(map[uuid.UUID]bool, len(packings))
	for _, p := range packings {
		packed[p.Item.ID] = true
	}

	summary.Boxes = len(boxes)
	summary.Items = len(items)
	summary.Packings = len(packings)
	for _, item := range items {
		if !packed[item.ID] {
			summary.Unpacked++
		}
		if item.Priority != nil && *item.Priority == umzug.PriorityImmediate {
			summary.Urgent++
		}
	}
	return summary, nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads the password from UMZUG_PASSWORD, the terminal without
// echo, or a plain line of stdin
func readPassword(reader *bufio.Reader) (string, error) {
	if password := os.Getenv("UMZUG_PASSWORD"); password != "" {
		return password, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := prompt(reader, "")
		if err == nil && password == "" {
			err = errors.New("empty password")
		}
		return password, err
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", errors.New("empty password")
	}
	return string(password), nil
}
