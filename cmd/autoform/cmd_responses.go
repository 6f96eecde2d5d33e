package main

import (
	"context"

	"github.com/spf13/cobra"

	"autoform/internal/forms"
)

var responsesCmd = &cobra.Command{
	Use:   "responses [form-id]",
	Short: "Print the responses of a form as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runResponses,
}

func runResponses(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	sess, err := newFormsSession(cfg)
	if err != nil {
		return err
	}
	if err := sess.Authenticate(ctx); err != nil {
		return err
	}
	client := forms.NewClient(forms.OptionsFromConfig(cfg), sess, nil)
	responses, err := client.Responses(ctx, args[0])
	if err != nil {
		return err
	}
	if responses == nil {
		responses = []forms.Response{}
	}
	return printJSON(cmd.OutOrStdout(), responses)
}
