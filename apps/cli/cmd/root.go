package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "webbrowser",
	Short: "Scripted HTTP sessions. Cookies, forms and auth included.",
	Long: `webbrowser drives a single HTTP or HTTPS session against one host.
The connection is opened before the first request, cookies set by the
server are replayed on every following request, and redirects are
reported instead of followed.

Examples:
  webbrowser get / --host example.com
  webbrowser get /login /account --host 192.168.1.1 --ssl -k -u admin:admin
  webbrowser post /api/items --host localhost --port 8080 -d '{"name":"x"}' --content-type application/json
  webbrowser inputs /setup.html --host 192.168.1.1`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Persistent flags shared by every request command
var (
	hostFlag       string
	portFlag       int
	sslFlag        bool
	insecureFlag   bool
	userFlag       string
	bearerFlag     string
	digestFlag     bool
	headerFlags    []string
	cookieFlags    []string
	cookieJarFlag  string
	configFlag     string
	envFileFlag    string
	varFlags       []string
	debugFlag      bool
	rateFlag       float64
	timeoutFlag    string
	outputFlag     string
	outputFileFlag string
	noColorFlag    bool
	verboseFlag    bool
	selectFlags    []string
	expectFlags    []string
	schemaFlag     string
)

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || !exitErr.Reported {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

func init() {
	pf := rootCmd.PersistentFlags()

	// Connection flags
	pf.StringVar(&hostFlag, "host", getEnvString("WEBBROWSER_HOST", ""), "Host to connect to (env: WEBBROWSER_HOST)")
	pf.IntVarP(&portFlag, "port", "p", getEnvInt("WEBBROWSER_PORT", 0), "Port (default 80, or 443 with --ssl) (env: WEBBROWSER_PORT)")
	pf.BoolVar(&sslFlag, "ssl", getEnvBool("WEBBROWSER_SSL", false), "Use HTTPS (env: WEBBROWSER_SSL)")
	pf.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("WEBBROWSER_INSECURE", false), "Disable certificate verification (env: WEBBROWSER_INSECURE)")
	pf.Float64Var(&rateFlag, "rate", getEnvFloat("WEBBROWSER_RATE", 0), "Maximum requests per second, 0 for unlimited (env: WEBBROWSER_RATE)")
	pf.StringVar(&timeoutFlag, "timeout", getEnvString("WEBBROWSER_TIMEOUT", ""), "Per-request timeout (e.g., 10s, 500ms) (env: WEBBROWSER_TIMEOUT)")

	// Credential and state flags
	pf.StringVarP(&userFlag, "user", "u", getEnvString("WEBBROWSER_USER", ""), "Basic auth credentials as user:password (env: WEBBROWSER_USER)")
	pf.StringVar(&bearerFlag, "bearer", getEnvString("WEBBROWSER_TOKEN", ""), "Bearer token (env: WEBBROWSER_TOKEN)")
	pf.BoolVar(&digestFlag, "digest", getEnvBool("WEBBROWSER_DIGEST", false), "Answer Digest challenges with --user credentials (env: WEBBROWSER_DIGEST)")
	pf.StringArrayVarP(&headerFlags, "header", "H", nil, "Extra header as 'Name: value', repeatable")
	pf.StringArrayVarP(&cookieFlags, "cookie", "b", nil, "Seed cookie as name=value, repeatable")
	pf.StringVar(&cookieJarFlag, "cookie-jar", getEnvString("WEBBROWSER_COOKIE_JAR", ""), "Load cookies from and save them to this file (env: WEBBROWSER_COOKIE_JAR)")

	// Configuration flags
	pf.StringVar(&configFlag, "config", getEnvString("WEBBROWSER_CONFIG", ""), "Path to config file (env: WEBBROWSER_CONFIG)")
	pf.StringVar(&envFileFlag, "env-file", getEnvString("WEBBROWSER_ENV_FILE", ""), "Path to .env file for variable interpolation (env: WEBBROWSER_ENV_FILE)")
	pf.StringArrayVar(&varFlags, "var", nil, "Variable as name=value for {{name}} interpolation, repeatable")

	// Output flags
	pf.BoolVar(&debugFlag, "debug", getEnvBool("WEBBROWSER_DEBUG", false), "Trace requests and responses on stderr (env: WEBBROWSER_DEBUG)")
	pf.StringVarP(&outputFlag, "output", "o", getEnvString("WEBBROWSER_OUTPUT", ""), "Output format: console, json, body (env: WEBBROWSER_OUTPUT)")
	pf.StringVar(&outputFileFlag, "output-file", getEnvString("WEBBROWSER_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: WEBBROWSER_OUTPUT_FILE)")
	pf.BoolVar(&noColorFlag, "no-color", getEnvBool("WEBBROWSER_NO_COLOR", false), "Disable colored output (env: WEBBROWSER_NO_COLOR)")
	pf.BoolVarP(&verboseFlag, "verbose", "v", false, "Show response headers, cookies and full bodies")
	pf.StringArrayVarP(&selectFlags, "select", "s", nil, "Capture a value as name=source:path (source: body, header, cookie, html, status, duration), repeatable")
	pf.StringArrayVarP(&expectFlags, "expect", "e", nil, "Check the response, e.g. 'status == 200' or 'body.items length 3', repeatable")
	pf.StringVar(&schemaFlag, "schema", "", "Validate JSON response bodies against this JSON Schema file")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(inputsCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}
