package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"autoform/internal/forms"
	"autoform/internal/schema"
)

var (
	previewStyle string
	previewWidth int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show a schema the way respondents will see it",
	Long: `Renders the cleaned schema as a form in the terminal: each question with
its Google Forms kind, options and hints. Fields Google Forms cannot show are
marked as skipped.

--style takes auto, dark, light, notty, or markdown for the raw source.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewStyle, "style", "auto", "Render style")
	previewCmd.Flags().IntVar(&previewWidth, "width", 80, "Word wrap width")
}

func runPreview(cmd *cobra.Command, args []string) error {
	s, err := readSchema(args[0])
	if err != nil {
		return err
	}
	md := previewMarkdown(s)
	if previewStyle == "markdown" {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(previewWidth)}
	if previewStyle == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStylePath(previewStyle))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("failed to set up renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// previewMarkdown lays a schema out as a markdown document.
func previewMarkdown(s *schema.FormSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Title)
	if s.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Description)
	}
	if s.Settings.CollectEmail {
		b.WriteString("_Respondent email is collected._\n\n")
	}

	skipped := map[int]bool{}
	for _, sk := range forms.Translate(s, false).Skipped {
		skipped[sk.Index] = true
	}

	for i, f := range s.Fields {
		req := ""
		if f.Required {
			req = " \\*"
		}
		fmt.Fprintf(&b, "## %d. %s%s\n\n", i+1, f.Label, req)
		if skipped[i] {
			fmt.Fprintf(&b, "> Skipped: Google Forms has no question for type `%s`.\n\n", f.Type)
			continue
		}
		if kind, ok := schema.MapType(f.Type); ok {
			fmt.Fprintf(&b, "`%s` as %s\n\n", f.Type, kind)
		}
		if f.Description != nil && *f.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", *f.Description)
		}
		if f.Placeholder != nil && *f.Placeholder != "" {
			fmt.Fprintf(&b, "_%s_\n\n", *f.Placeholder)
		}
		for _, opt := range f.Options {
			fmt.Fprintf(&b, "- %s %s\n", optionMarker(f.Type), opt)
		}
		if len(f.Options) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func optionMarker(t schema.FieldType) string {
	switch t {
	case schema.FieldCheckbox:
		return "[ ]"
	case schema.FieldRadio:
		return "( )"
	default:
		return "-"
	}
}
