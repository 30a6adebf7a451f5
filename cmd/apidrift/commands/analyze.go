// Package commands implements the apidrift CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/text/language"

	"github.com/apidrift/apidrift/internal/config"
	"github.com/apidrift/apidrift/internal/observability"
	"github.com/apidrift/apidrift/internal/reporters"
	"github.com/apidrift/apidrift/pkg/api"
	"github.com/apidrift/apidrift/pkg/archive"
	"github.com/apidrift/apidrift/pkg/builtin"
	"github.com/apidrift/apidrift/pkg/engine"
)

// shutdownTimeout bounds the diagnostics server shutdown at exit.
const shutdownTimeout = 5 * time.Second

type analyzeOptions struct {
	configPath       string
	extensionConfig  string
	oldSupplementary []string
	newSupplementary []string
	reporterNames    []string
	settings         []string
	diagnosticsAddr  string
}

// NewAnalyzeCommand creates the analyze subcommand: it diffs two archives
// and reports the findings. The exit code is zero on a successful
// analysis regardless of findings; reporters decide how findings are
// surfaced.
func NewAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <oldArchive> <newArchive>",
		Short: "Diff two archive versions and report API differences",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&opts.extensionConfig, "extension-config", "", "YAML file with extension settings")
	cmd.Flags().StringSliceVar(&opts.oldSupplementary, "old-supplementary", nil, "supplementary archives for the old side")
	cmd.Flags().StringSliceVar(&opts.newSupplementary, "new-supplementary", nil, "supplementary archives for the new side")
	cmd.Flags().StringSliceVarP(&opts.reporterNames, "reporter", "r", nil, "reporters to run (text, json, html)")
	cmd.Flags().StringArrayVar(&opts.settings, "set", nil, "extension setting override, key=value")
	cmd.Flags().StringVar(&opts.diagnosticsAddr, "diagnostics-addr", "", "serve /healthz and /metrics at this address")

	return cmd
}

func runAnalyze(ctx context.Context, opts *analyzeOptions, oldURL, newURL string) (err error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	if opts.diagnosticsAddr != "" {
		cfg.DiagnosticsAddr = opts.diagnosticsAddr
	}

	if len(opts.reporterNames) > 0 {
		cfg.Reporters = opts.reporterNames

		if err = cfg.Validate(); err != nil {
			return err
		}
	}

	settings, err := collectSettings(cfg, opts)
	if err != nil {
		return err
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		return fmt.Errorf("parse locale %q: %w", cfg.Locale, err)
	}

	builder := engine.NewBuilder().
		WithAnalyzers(archive.NewAnalyzer()).
		WithFilters(builtin.NewFilter()).
		WithTransforms(builtin.NewIgnore(), builtin.NewReclassify())

	for _, name := range cfg.Reporters {
		switch name {
		case config.ReporterText:
			builder.WithReporters(reporters.NewText(os.Stdout))
		case config.ReporterJSON:
			builder.WithReporters(reporters.NewJSON(os.Stdout))
		case config.ReporterHTML:
			builder.WithReporters(reporters.NewHTML())
		}
	}

	if cfg.DiagnosticsAddr != "" {
		server, serverErr := observability.NewDiagnosticsServer(cfg.DiagnosticsAddr)
		if serverErr != nil {
			return serverErr
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			err = multierr.Append(err, server.Shutdown(shutdownCtx))
		}()

		metrics, metricsErr := observability.NewAnalysisMetrics(server.Meter())
		if metricsErr != nil {
			return metricsErr
		}

		builder.WithObserver(metrics)
	}

	eng, err := builder.Build(engine.NewAnalysisContext(locale, settings))
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(eng))

	oldAPI := api.NewAPI(archives(oldURL), archives(opts.oldSupplementary...))
	newAPI := api.NewAPI(archives(newURL), archives(opts.newSupplementary...))

	return eng.Analyze(ctx, oldAPI, newAPI)
}

func collectSettings(cfg *config.Config, opts *analyzeOptions) (map[string]string, error) {
	settings := cfg.ExtensionConfig()

	if opts.extensionConfig != "" {
		fromFile, err := config.LoadExtensionFile(opts.extensionConfig)
		if err != nil {
			return nil, err
		}

		for k, v := range fromFile {
			settings[k] = v
		}
	}

	for _, setting := range opts.settings {
		key, value, ok := strings.Cut(setting, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --set %q, want key=value", setting)
		}

		settings[key] = value
	}

	return settings, nil
}

func archives(urls ...string) []api.Archive {
	out := make([]api.Archive, 0, len(urls))
	for _, u := range urls {
		out = append(out, archive.NewFileArchive(u))
	}

	return out
}
