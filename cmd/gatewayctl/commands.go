package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-org/gen-gateway/internal/app"
	"github.com/your-org/gen-gateway/internal/audit"
	"github.com/your-org/gen-gateway/internal/config"
	"github.com/your-org/gen-gateway/internal/version"
	"github.com/your-org/gen-gateway/pkg/logger"
)

type generateFlags struct {
	tier        string
	maxTokens   int
	temperature float64
	jsonMode    bool
	model       string
	summary     bool
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Operate the multi-provider generation gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log provider attempts to stderr")

	root.AddCommand(
		newGenerateCmd(&verbose),
		newProvidersCmd(),
		newValidateCmd(),
		newTraceCmd(),
		newAuditExportCmd(),
		newVersionCmd(),
	)
	return root
}

func newGenerateCmd(verbose *bool) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Send one prompt through the provider fallback chain",
		Long: `Sends the prompt to the first configured provider and falls back in
priority order on failure. Reads the prompt from stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if *verbose {
				cfg.Log.Level = "debug"
			}
			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := app.NewRuntime(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close(context.Background()) }()

			in := app.Request{Prompt: prompt, Tier: f.tier, MaxTokens: f.maxTokens, Model: f.model}
			if cmd.Flags().Changed("temperature") {
				in.Temperature = &f.temperature
			}
			if cmd.Flags().Changed("json") {
				in.JSONMode = &f.jsonMode
			}
			if err := app.RunGenerate(ctx, rt, in, cmd.OutOrStdout()); err != nil {
				log.Debug("generate failed", zap.Error(err))
				return err
			}
			if f.summary {
				app.WriteSummary(rt, cmd.ErrOrStderr())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.tier, "tier", "", "policy tier (free, pro, premium)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "override the tier's token budget")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0, "sampling temperature in [0, 2]")
	cmd.Flags().BoolVar(&f.jsonMode, "json", false, "request and repair JSON output")
	cmd.Flags().StringVar(&f.model, "model", "", "model override passed to every provider")
	cmd.Flags().BoolVar(&f.summary, "summary", false, "print attempt counters to stderr")
	return cmd
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers in fallback order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, name := range cfg.ProviderOrder {
				p := cfg.Providers[name]
				state := "-"
				if p.Configured() {
					state = "configured"
				}
				model := p.Model
				if model == "" {
					model = "(default)"
				}
				_, _ = fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i+1, name, state, model)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate environment and GATEWAY_CONFIG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := app.ValidateConfig(cmd.OutOrStdout())
			return err
		},
	}
}

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <file>",
		Short: "Print a call trace saved under TRACE_OUTPUT (<request_id>.json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ShowTrace(args[0], cmd.OutOrStdout())
		},
	}
}

func newAuditExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit-export <audit.jsonl> [out.csv]",
		Short: "Convert the JSONL audit log to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := "audit.csv"
			if len(args) > 1 {
				outputPath = args[1]
			}
			if err := audit.ExportJSONLToCSV(args[0], outputPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "audit export complete: %s -> %s\n", args[0], outputPath)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func readPrompt(args []string, in io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	prompt := strings.TrimSpace(string(b))
	if prompt == "" {
		return "", fmt.Errorf("prompt is required")
	}
	return prompt, nil
}
