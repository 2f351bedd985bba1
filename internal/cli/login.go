package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecinar/route-tracker/internal/client"
)

func newLoginCmd() *cobra.Command {
	var (
		server   string
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store a token",
		Long:  "Authenticates against the server and saves the bearer token for later commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, server, email, password)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server URL (default: from config or http://localhost:8080)")
	cmd.Flags().StringVar(&email, "email", "", "login email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted if omitted)")

	return cmd
}

func runLogin(cmd *cobra.Command, serverFlag, email, password string) error {
	serverURL := serverFlag
	if serverURL == "" {
		serverURL = getServerURL()
	}
	serverURL = strings.TrimRight(serverURL, "/")

	reader := bufio.NewReader(os.Stdin)
	var err error
	if email == "" {
		if email, err = prompt(reader, "Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(reader, "Password: "); err != nil {
			return err
		}
	}

	token, u, err := client.New(serverURL, "").Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	// Load existing config to preserve other fields
	cfg, err := loadConfig()
	if err != nil {
		cfg = CLIConfig{}
	}
	cfg.Token = token
	if serverFlag != "" {
		cfg.ServerURL = serverURL
	}
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("✓ Logged in as %s\n", u.Name)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
