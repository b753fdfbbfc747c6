package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/webbrowser/packages/capture"
	"github.com/abdul-hamid-achik/webbrowser/packages/cookiejar"
	"github.com/abdul-hamid-achik/webbrowser/packages/core/config"
	"github.com/abdul-hamid-achik/webbrowser/packages/core/env"
	"github.com/abdul-hamid-achik/webbrowser/packages/expect"
	whttp "github.com/abdul-hamid-achik/webbrowser/packages/http"
	"github.com/abdul-hamid-achik/webbrowser/packages/output"
	"github.com/spf13/cobra"
)

// runner carries one invocation: the resolved config, the open session and
// where results go
type runner struct {
	cfg           *config.Config
	session       *whttp.Session
	resolver      *env.Resolver
	formatter     output.Formatter
	captures      []*capture.Capture
	expectations  []*expect.Expectation
	schemaPath    string
	authorization string
	digest        bool
}

// newResolver loads --env-file and --var values for interpolation
func newResolver() (*env.Resolver, error) {
	resolver := env.NewResolver()
	if envFileFlag != "" {
		vars, err := env.LoadAndExportDotEnv(envFileFlag)
		if err != nil {
			return nil, err
		}
		resolver.SetVariables(vars)
	}

	vars, err := parsePairs(varFlags, "=")
	if err != nil {
		return nil, err
	}
	resolver.SetVariables(vars)
	return resolver, nil
}

// buildConfig layers flags over the config file, then expands variables
func buildConfig(resolver *env.Resolver) (*config.Config, error) {
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flagConfig := &config.Config{
		Host:      hostFlag,
		Port:      portFlag,
		RateLimit: rateFlag,
		Token:     bearerFlag,
		CookieJar: cookieJarFlag,
		Output:    outputFlag,
	}
	if sslFlag {
		flagConfig.UseSSL = config.BoolPtr(true)
	}
	if insecureFlag {
		flagConfig.VerifyCert = config.BoolPtr(false)
	}
	if debugFlag {
		flagConfig.Debug = config.BoolPtr(true)
	}
	if noColorFlag {
		flagConfig.NoColor = config.BoolPtr(true)
	}
	if userFlag != "" {
		flagConfig.Username, flagConfig.Password, _ = strings.Cut(userFlag, ":")
	}
	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		flagConfig.Timeout = int(timeout.Milliseconds())
	}

	if flagConfig.Headers, err = parsePairs(headerFlags, ":"); err != nil {
		return nil, err
	}
	if flagConfig.Cookies, err = parsePairs(cookieFlags, "="); err != nil {
		return nil, err
	}

	cfg := fileConfig.Merge(flagConfig).Expand(resolver.Resolve)
	if cfg.Host == "" {
		return nil, fmt.Errorf("no host given (use --host, WEBBROWSER_HOST or a config file)")
	}
	return cfg, nil
}

// sessionOptions translates cfg into Session options
func sessionOptions(cfg *config.Config, cookies map[string]string, trace io.Writer) []whttp.Option {
	opts := []whttp.Option{
		whttp.WithTLS(cfg.GetUseSSL()),
		whttp.WithVerifyCert(cfg.GetVerifyCert()),
		whttp.WithDebug(cfg.GetDebug()),
		whttp.WithTraceWriter(trace),
		whttp.WithCookies(cookies),
	}
	if cfg.Port > 0 {
		opts = append(opts, whttp.WithPort(cfg.Port))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, whttp.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, whttp.WithRateLimit(cfg.RateLimit))
	}
	return opts
}

// authorization picks the static Authorization value. Digest is negotiated
// per request instead.
func authorization(cfg *config.Config, digest bool) string {
	switch {
	case cfg.Token != "":
		return whttp.BearerAuthorization(cfg.Token)
	case cfg.Username != "" && !digest:
		return whttp.BasicAuthorization(cfg.Username, cfg.Password)
	default:
		return ""
	}
}

func newFormatter(cfg *config.Config, w io.Writer) output.Formatter {
	switch strings.ToLower(cfg.Output) {
	case config.OutputJSON:
		return output.NewJSONFormatter(output.JSONWithWriter(w))
	case config.OutputBody:
		return output.NewBodyFormatter(output.BodyWithWriter(w))
	default:
		return output.NewConsoleFormatter(
			output.WithWriter(w),
			output.WithVerbose(verboseFlag),
			output.WithNoColor(cfg.GetNoColor()),
		)
	}
}

// withSession resolves configuration, opens the session, runs fn inside it
// and persists the cookie jar afterwards. Errors from fn have already been
// shown by the formatter.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, r *runner) error) error {
	resolver, err := newResolver()
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	cfg, err := buildConfig(resolver)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	// only request-time misses are reported
	resolver.SetWarnFunc(func(format string, args ...any) {
		log.Printf("warning: "+format, args...)
	})

	captures := make([]*capture.Capture, 0, len(selectFlags))
	for _, spec := range selectFlags {
		c, err := capture.ParseCapture(spec)
		if err != nil {
			return withCode(ExitUsageError, err)
		}
		captures = append(captures, c)
	}

	expectations := make([]*expect.Expectation, 0, len(expectFlags))
	for _, expr := range expectFlags {
		e, err := expect.Parse(expr)
		if err != nil {
			return withCode(ExitUsageError, err)
		}
		expectations = append(expectations, e)
	}

	cookies, err := cookiejar.Load(cfg.CookieJar)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	for name, value := range cfg.Cookies {
		cookies[name] = value
	}

	out := cmd.OutOrStdout()
	if outputFileFlag != "" {
		file, err := os.Create(outputFileFlag)
		if err != nil {
			return withCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer file.Close()
		out = file
	}

	r := &runner{
		cfg:           cfg,
		resolver:      resolver,
		formatter:     newFormatter(cfg, out),
		captures:      captures,
		expectations:  expectations,
		schemaPath:    schemaFlag,
		authorization: authorization(cfg, digestFlag),
		digest:        digestFlag && cfg.Username != "",
	}
	r.session = whttp.New(cfg.Host, sessionOptions(cfg, cookies, cmd.ErrOrStderr())...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entered := false
	runErr := r.session.Do(ctx, func(*whttp.Session) error {
		entered = true
		return fn(ctx, r)
	})
	if runErr != nil && !entered {
		r.formatter.FormatError(runErr)
	}

	if cfg.CookieJar != "" {
		if err := cookiejar.Save(cfg.CookieJar, r.session.Cookies()); err != nil {
			r.formatter.FormatError(fmt.Errorf("save cookie jar: %w", err))
		}
	}

	if err := r.formatter.Flush(); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	if runErr != nil {
		return &ExitError{Code: exitCode(runErr), Err: runErr, Reported: true}
	}
	return nil
}
