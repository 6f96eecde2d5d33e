package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"autoform/internal/forms"
	"autoform/internal/schema"
)

var (
	cleanOutput  string
	validateText bool
	includeTitle bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Clean a schema file into its canonical form",
	Long: `Reads a YAML or JSON schema, repairs it the same way model output is
repaired (truncation, id normalization, option and validation limits) and
writes the result.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Report Google Forms compatibility problems in a schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Print the batchUpdate requests a schema translates to",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranslate,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "Output file (.yaml or .json, default stdout)")
	validateCmd.Flags().BoolVar(&validateText, "text", false, "Print the plain text report")
	translateCmd.Flags().BoolVar(&includeTitle, "include-title", false, "Include the title in the updateFormInfo request")
}

func runClean(cmd *cobra.Command, args []string) error {
	s, err := readSchema(args[0])
	if err != nil {
		return err
	}
	return writeSchema(cmd.OutOrStdout(), cleanOutput, s)
}

// errInvalid makes validate exit non-zero without repeating the report.
var errInvalid = errors.New("schema has compatibility errors")

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := readSchema(args[0])
	if err != nil {
		return err
	}
	r := schema.ValidateSchema(s)
	if validateText {
		fmt.Fprint(cmd.OutOrStdout(), r.Text())
	} else {
		renderReport(cmd.OutOrStdout(), args[0], r)
	}
	if !r.Valid {
		return errInvalid
	}
	return nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	s, err := readSchema(args[0])
	if err != nil {
		return err
	}
	tr := forms.Translate(s, includeTitle)
	renderSkipped(cmd.ErrOrStderr(), tr.Skipped)
	return printJSON(cmd.OutOrStdout(), map[string]any{"requests": tr.Requests})
}
