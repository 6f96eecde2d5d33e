package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"autoform/internal/forms"
	"autoform/internal/schema"
)

var (
	submitParallel int
	submitJSON     bool
)

var submitCmd = &cobra.Command{
	Use:   "submit [file...]",
	Short: "Create Google Forms from schema files",
	Long: `Signs in once, then creates one form per schema file. Files are
submitted independently; a failure in one does not stop the others. A form
that was created before a batch failed is reported with its id.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().IntVar(&submitParallel, "parallel", 2, "Forms submitted at the same time")
	submitCmd.Flags().BoolVar(&submitJSON, "json", false, "Print results as JSON")
}

type submitResult struct {
	File  string             `json:"file"`
	Form  *forms.CreatedForm `json:"form,omitempty"`
	Error string             `json:"error,omitempty"`
	err   error
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// Bad files fail before anyone is asked to sign in.
	schemas := make([]*schema.FormSchema, len(args))
	for i, path := range args {
		s, err := readSchema(path)
		if err != nil {
			return err
		}
		schemas[i] = s
	}

	sess, err := newFormsSession(cfg)
	if err != nil {
		return err
	}
	if err := sess.Authenticate(ctx); err != nil {
		return err
	}

	history, err := openHistory()
	if err != nil {
		logger.Warn("form history unavailable", zap.Error(err))
	} else {
		defer history.Close()
	}

	opts := forms.OptionsFromConfig(cfg)
	client := forms.NewClient(opts, sess, nil)
	submitter := forms.NewSubmitter(client, sess, opts)

	results := make([]submitResult, len(args))
	var g errgroup.Group
	g.SetLimit(max(submitParallel, 1))
	for i := range args {
		g.Go(func() error {
			created, err := submitter.SubmitForm(ctx, schemas[i])
			r := submitResult{File: args[i], Form: created, err: err}
			if err != nil {
				r.Error = err.Error()
				logger.Warn("submission failed", zap.String("file", args[i]), zap.Error(err))
			} else {
				recordCreated(history, schemas[i], created)
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
		}
	}
	out := cmd.OutOrStdout()
	if submitJSON {
		if err := printJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.err != nil {
				renderSubmitError(out, r.File, r.err)
			} else {
				renderCreated(out, r.File, r.Form)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", failed, len(results))
	}
	return nil
}

func asSubmissionError(err error) (*forms.SubmissionError, bool) {
	var se *forms.SubmissionError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
