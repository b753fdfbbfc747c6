package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/webbrowser/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a session profile to the current directory",
	Long: `Write a session profile built from the connection flags.

This creates:
  - .webbrowser.yaml - Host, port, TLS and credential settings
  - .env.example     - Template for the password referenced by the profile

Passwords are never written to the profile; it refers to
${WEBBROWSER_PASSWORD} instead, which --env-file or the environment fills in.

Examples:
  webbrowser init --host 192.168.1.1 --ssl -k -u admin
  webbrowser init --host api.example.com --bearer '${API_TOKEN}' --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".webbrowser.yaml")
	envFile := filepath.Join(cwd, ".env.example")

	if !forceInit {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return withCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Host = hostFlag
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	cfg.Port = portFlag
	cfg.UseSSL = config.BoolPtr(sslFlag)
	cfg.VerifyCert = config.BoolPtr(!insecureFlag)
	cfg.Token = bearerFlag
	cfg.CookieJar = cookieJarFlag
	if user, _, _ := strings.Cut(userFlag, ":"); user != "" {
		cfg.Username = user
		cfg.Password = "${WEBBROWSER_PASSWORD}"
	}

	if err := cfg.SaveConfig(configFile); err != nil {
		return withCode(ExitConfigError, fmt.Errorf("failed to create config file: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	envContent := `# Copy to .env and pass with --env-file .env
WEBBROWSER_PASSWORD=
`
	if err := os.WriteFile(envFile, []byte(envContent), 0644); err != nil {
		return withCode(ExitConfigError, fmt.Errorf("failed to create env template: %w", err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nRun 'webbrowser get / --env-file .env' to use the profile.\n")
	return nil
}
