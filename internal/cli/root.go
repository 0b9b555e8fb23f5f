// Package cli implements the supportdesk command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/supportmesh"
	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
)

const version = "0.1.0"

// Options injects I/O and an optional model into the command.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Model replaces the provider adapter built from the configuration.
	Model model.Model
}

type flags struct {
	cfgFile         string
	provider        string
	model           string
	logLevel        string
	logFormat       string
	verbose         bool
	guardrailPolicy string
	failFast        bool
	stream          bool
}

// NewRootCommand builds the supportdesk root command.
func NewRootCommand(optFns ...func(o *Options)) *cobra.Command {
	opts := Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "supportdesk",
		Short: "Supportdesk - multi-agent customer support console",
		Long: `Supportdesk routes each query through a triage agent to a billing,
technical or general agent. Tools are gated on the session context and an
output guardrail rejects apologetic answers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDesk(cmd, f, opts)
		},
	}

	rootCmd.SetIn(opts.Stdin)
	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.cfgFile, "config", "", "config file (yaml, json, toml or .env)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format (console, json)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	fl := rootCmd.Flags()
	fl.StringVar(&f.provider, "provider", "", "model provider (openai, gemini, anthropic)")
	fl.StringVar(&f.model, "model", "", "model name")
	fl.StringVar(&f.guardrailPolicy, "guardrail-policy", "", "guardrail enforcement (block, warn, retry)")
	fl.BoolVar(&f.failFast, "fail-fast", false, "exit on the first agent error")
	fl.BoolVar(&f.stream, "stream", false, "request streamed model responses")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

func runDesk(cmd *cobra.Command, f *flags, opts Options) error {
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return err
	}

	applyFlags(cmd, f, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    opts.Stderr,
		Component: "supportdesk",
	})

	mesh, err := supportmesh.New(func(o *supportmesh.Options) {
		o.Config = cfg
		o.Model = opts.Model
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	session, err := mesh.NewSession(opts.Stdin, opts.Stdout)
	if err != nil {
		return err
	}

	if err := session.Run(cmd.Context()); err != nil {
		if errors.Is(err, context.Canceled) {
			_, _ = fmt.Fprintln(opts.Stdout)
			return nil
		}
		return err
	}

	return nil
}

// applyFlags overrides cfg with explicitly set flags.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	changed := func(name string) bool { return cmd.Flags().Changed(name) }

	if changed("provider") {
		cfg.Provider = f.provider
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
	if changed("guardrail-policy") {
		cfg.Guardrail.Policy = f.guardrailPolicy
	}
	if changed("fail-fast") {
		cfg.FailFast = f.failFast
	}
	if changed("stream") {
		cfg.Stream = f.stream
	}
}
