package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"autoform/internal/config"
	"autoform/internal/llm"
)

var (
	genOutput       string
	genLanguage     string
	genContext      string
	genCollectEmail bool
	genRequired     []string
	genMaxFields    int
	genRaw          bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [prompt]",
	Short: "Draft a form schema from a description",
	Long: `Asks the configured language model for a form schema and cleans the
reply.

Without a prompt argument, prompts are read from stdin one per line and each
schema is printed as a YAML document. The config file is watched meanwhile,
so switching llm.provider takes effect on the next prompt.

Example:
  autoform generate "Registration for a college hackathon" -o hackathon.yaml`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (.yaml or .json, default stdout)")
	generateCmd.Flags().StringVar(&genLanguage, "language", "en", "Form language (en, hi, gu, mr, ta, te, kn, ml, bn, pa)")
	generateCmd.Flags().StringVar(&genContext, "context", "", "Additional context for the model")
	generateCmd.Flags().BoolVar(&genCollectEmail, "collect-email", false, "Ask the model to collect respondent email")
	generateCmd.Flags().StringSliceVar(&genRequired, "required", nil, "Fields the form must require")
	generateCmd.Flags().IntVar(&genMaxFields, "max-fields", 0, "Upper bound on generated fields")
	generateCmd.Flags().BoolVar(&genRaw, "raw", false, "Print the model reply without cleaning")
}

func generateOptions(cmd *cobra.Command) llm.Options {
	opts := llm.Options{
		Language: genLanguage,
		Context:  genContext,
		Preferences: llm.Preferences{
			RequiredFields: genRequired,
			MaxFields:      genMaxFields,
		},
	}
	if cmd.Flags().Changed("collect-email") {
		v := genCollectEmail
		opts.Preferences.CollectEmail = &v
	}
	return opts
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	store := config.NewProviderStore(cfg.ProviderConfig())
	gen := llm.NewGenerator(store, llm.DefaultFactory(nil))
	defer gen.Close()
	opts := generateOptions(cmd)

	if len(args) > 0 {
		return generateOne(ctx, cmd, gen, strings.Join(args, " "), opts, genOutput)
	}

	g, gctx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gctx)
	g.Go(func() error {
		err := config.Watch(watchCtx, configPath, store, func(err error) {
			logger.Warn("config reload failed", zap.Error(err))
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
		return nil
	})
	lines, readErr := readLines(gctx, cmd.InOrStdin())
	g.Go(func() error {
		defer stopWatch()
		first := true
		for {
			var prompt string
			select {
			case <-gctx.Done():
				return gctx.Err()
			case line, ok := <-lines:
				if !ok {
					return <-readErr
				}
				prompt = strings.TrimSpace(line)
			}
			if prompt == "" {
				continue
			}
			if !first {
				fmt.Fprintln(cmd.OutOrStdout(), "---")
			}
			first = false
			if err := generateOne(gctx, cmd, gen, prompt, opts, ""); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(err.Error()))
			}
		}
	})
	return g.Wait()
}

// readLines scans r in its own goroutine. A read blocked on an open stdin
// cannot be interrupted, so callers select on the channel instead of
// waiting for EOF. readErr receives the scan error once lines is closed.
func readLines(ctx context.Context, r io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()
	return lines, readErr
}

func generateOne(ctx context.Context, cmd *cobra.Command, gen *llm.Generator, prompt string, opts llm.Options, output string) error {
	if genRaw {
		reply, err := gen.Raw(ctx, prompt, opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	}
	s, err := gen.Generate(ctx, prompt, opts)
	if err != nil {
		return err
	}
	if err := writeSchema(cmd.OutOrStdout(), output, s); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d fields)\n", output, len(s.Fields))
	}
	return nil
}
