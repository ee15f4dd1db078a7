package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/netcanis/feat-network/internal/config"
	"github.com/netcanis/feat-network/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Configure and manage the base URL and bearer token stored securely in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		url     string
		token   string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save credentials to the OS keychain",
		Long: strings.TrimSpace(`
Save the API base URL and bearer token securely to your OS keychain.

You'll need:
- Base URL: Your API server URL (e.g. https://api.example.com)
- Token: A bearer token issued by the server
`),
		Example: strings.TrimSpace(`
  # Login with flags
  featnet auth login --url https://api.example.com --token YOUR_TOKEN

  # Load credentials from a .env file
  featnet auth login --env-file .env
`),
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				envVars, err := loadAuthEnvFile(envFile)
				if err != nil {
					return err
				}
				applyAuthEnvFileRuntimeVars(envVars)

				if url == "" {
					url = strings.TrimSpace(envVars["FEATNET_BASE_URL"])
				}
				if token == "" {
					token = strings.TrimSpace(envVars["FEATNET_TOKEN"])
				}
			}

			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			url = strings.TrimSuffix(url, "/")

			// Validate before persisting so a bad URL never sticks.
			if err := validation.ValidateBaseURL(url); err != nil {
				return fmt.Errorf("invalid URL: %w", err)
			}

			creds := config.Credentials{
				BaseURL: url,
				Token:   token,
			}
			if err := config.SaveCredentials(creds); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"status":   "saved",
					"base_url": url,
				})
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials saved successfully!")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Base URL: %s\n", url)
			return nil
		}),
	}

	cmd.Flags().StringVar(&url, "url", "", "API base URL (e.g. https://api.example.com)")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load FEATNET_* values from a .env file")

	return cmd
}

func loadAuthEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("--env-file requires a file path")
	}

	envVars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read --env-file %q: %w", path, err)
	}

	return envVars, nil
}

// applyAuthEnvFileRuntimeVars copies keyring/runtime settings from --env-file
// into the process environment when they are not already exported.
func applyAuthEnvFileRuntimeVars(envVars map[string]string) {
	keys := []string{
		"FEATNET_KEYRING_BACKEND",
		"FEATNET_KEYRING_PASSWORD",
		"FEATNET_CREDENTIALS_DIR",
	}

	for _, key := range keys {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		value := strings.TrimSpace(envVars[key])
		if value == "" {
			continue
		}
		_ = os.Setenv(key, value)
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current authentication status",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"configured": true,
					"base_url":   creds.BaseURL,
					"token":      maskToken(creds.Token),
				})
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Authenticated.")
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Base URL: %s\n", creds.BaseURL)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Token: %s\n", maskToken(creds.Token))
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := config.ClearCredentials(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"status": "logged_out"})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Credentials removed.")
			return nil
		}),
	}
}

// maskToken shows only the last 4 characters of a token.
func maskToken(token string) string {
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}
