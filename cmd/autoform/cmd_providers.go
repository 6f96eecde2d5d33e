package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"autoform/internal/llm"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the supported language model providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		current := cfg.ProviderConfig()
		for _, p := range llm.Presets() {
			name := p.Name
			if p.Name == current.Provider {
				name += " (active)"
			}
			fmt.Fprintln(out, titleStyle.Render(name)+" "+p.DisplayName)
			pairs := []string{"Default model", p.DefaultModel, "Models", strings.Join(p.Models, ", "), "Limit", p.FreeLimit}
			if p.Endpoint != "" {
				pairs = append(pairs, "Endpoint", p.Endpoint)
			}
			renderKV(out, pairs...)
		}
		if p, ok := llm.PresetFor(current.Provider); ok && current.Model == "" {
			current.Model = p.DefaultModel
		}
		if !current.IsConfigured() {
			fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("Provider %s is missing an API key or model.", current.Provider)))
		}
		return nil
	},
}
