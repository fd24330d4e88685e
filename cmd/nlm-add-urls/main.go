package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jmagar/axon/internal/api"
	"github.com/jmagar/axon/internal/config"
	"github.com/jmagar/axon/internal/ingest"
	"github.com/jmagar/axon/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, apiOpener)
	stop()
	os.Exit(code)
}

// openerFunc builds the session source for one run.
type openerFunc func(cfg *config.Config, log *zap.Logger) ingest.Opener

// app carries the process streams for one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	opener openerFunc
	exit   int
}

// execute runs the command with args and returns the process exit code.
// Whatever happens, stdout receives at most one report.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, opener openerFunc) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, opener: opener}
	cmd := a.command()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "nlm-add-urls: %v\n", err)
		return a.fail(err)
	}
	return a.exit
}

func (a *app) command() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:   "nlm-add-urls",
		Short: "Add a batch of URLs to a NotebookLM notebook",
		Long: `Reads {"notebook": "<id-or-title>", "urls": [...]} from stdin, adds every URL
as a source of the notebook (creating the notebook when no id or title
matches), waits for processing and writes a JSON report to stdout.

Credentials come from NLM_AUTH_TOKEN and NLM_COOKIES, or from the env file
written by 'nlm auth'.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.exit = a.run(cmd.Context(), v)
			return nil
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stderr)
	cmd.SetErr(a.stderr)

	f := cmd.Flags()
	f.Duration("timeout", config.DefaultWaitTimeout, "how long to wait for sources to finish processing")
	f.Bool("debug", false, "enable debug logging")
	f.String("env-file", config.DefaultEnvFile, "credentials file")
	f.Float64("rate-limit", config.DefaultRateLimit, "requests per second (0 for unlimited)")
	f.String("log-format", config.DefaultLogFormat, "log format (console|json)")

	for key, flag := range map[string]string{
		"wait_timeout": "timeout",
		"debug":        "debug",
		"env_file":     "env-file",
		"rate_limit":   "rate-limit",
		"log_format":   "log-format",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func (a *app) run(ctx context.Context, v *viper.Viper) int {
	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(a.stderr, "nlm-add-urls: %v\n", err)
		return a.fail(err)
	}

	log, err := logging.New(a.stderr, logging.Options{Format: cfg.LogFormat, Debug: cfg.Debug})
	if err != nil {
		return a.fail(err)
	}
	defer log.Sync() //nolint:errcheck
	log = log.With(zap.String("run_id", uuid.NewString()))

	req, err := ingest.DecodeRequest(a.stdin)
	if err != nil {
		log.Error("invalid input", zap.Error(err))
		return a.fail(err)
	}
	log.Debug("request", zap.String("notebook", req.Notebook), zap.Int("urls", len(req.URLs)))

	o := &ingest.Orchestrator{
		Opener:      a.opener(cfg, log),
		WaitTimeout: cfg.WaitTimeout,
		Log:         log,
	}
	report, err := o.Run(ctx, req)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			fields = append(fields, zap.Strings("hints", hints))
		}
		log.Error("run failed", fields...)
		return a.fail(err)
	}

	if err := report.Encode(a.stdout); err != nil {
		log.Error("write report", zap.Error(err))
		return 1
	}
	return 0
}

// fail writes the degenerate report for err and returns the fatal exit code.
func (a *app) fail(err error) int {
	if werr := ingest.Degenerate(err).Encode(a.stdout); werr != nil {
		fmt.Fprintf(a.stderr, "nlm-add-urls: write report: %v\n", werr)
	}
	return 1
}

// apiOpener opens sessions against NotebookLM with the loaded settings.
func apiOpener(cfg *config.Config, log *zap.Logger) ingest.Opener {
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = -1
	}
	opts := []api.Option{api.WithLogger(log)}
	if cfg.RateLimit > 0 {
		opts = append(opts, api.WithRateLimit(cfg.RateLimit))
	}
	return ingest.APIOpener{
		Config: api.Config{
			AuthToken:  cfg.AuthToken,
			Cookies:    cfg.Cookies,
			Host:       cfg.Host,
			UseHTTP:    cfg.UseHTTP,
			MaxRetries: retries,
		},
		Options: opts,
	}
}
