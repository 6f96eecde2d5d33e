package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"autoform/internal/forms"
	"autoform/internal/schema"
)

var (
	brand   = lipgloss.Color("#7C5CFF")
	danger  = lipgloss.Color("#e53935")
	caution = lipgloss.Color("#FFC107")
	success = lipgloss.Color("#8BC34A")
	muted   = lipgloss.Color("#8a8f98")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(brand)
	errorStyle   = lipgloss.NewStyle().Foreground(danger)
	warnStyle    = lipgloss.NewStyle().Foreground(caution)
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(success)
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(danger)
	labelStyle   = lipgloss.NewStyle().Foreground(muted).Width(16)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// renderReport prints a compatibility report for a terminal.
func renderReport(w io.Writer, name string, r schema.Report) {
	fmt.Fprintln(w, titleStyle.Render("Validation report: "+name))
	if r.Valid {
		fmt.Fprintln(w, okStyle.Render("VALID"))
	} else {
		fmt.Fprintln(w, failStyle.Render("INVALID"))
	}
	fmt.Fprintln(w, labelStyle.Render("Total fields")+fmt.Sprint(r.Summary.TotalFields))
	fmt.Fprintln(w, labelStyle.Render("Supported")+fmt.Sprint(r.Summary.SupportedFields))
	fmt.Fprintln(w, labelStyle.Render("Unsupported")+fmt.Sprint(r.Summary.UnsupportedFields))
	fmt.Fprintln(w, labelStyle.Render("With issues")+fmt.Sprint(r.Summary.FieldsWithIssues))

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Errors"))
		for _, e := range r.Errors {
			fmt.Fprintln(w, errorStyle.Render("  x "+e))
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Warnings"))
		for _, e := range r.Warnings {
			fmt.Fprintln(w, warnStyle.Render("  ! "+e))
		}
	}
}

func renderCreated(w io.Writer, name string, f *forms.CreatedForm) {
	fmt.Fprintln(w, okStyle.Render("Created: ")+name)
	fmt.Fprintln(w, labelStyle.Render("Form id")+f.FormID)
	fmt.Fprintln(w, labelStyle.Render("Responder URL")+f.ResponderURI)
	fmt.Fprintln(w, labelStyle.Render("Edit URL")+f.EditURL)
	fmt.Fprintln(w, labelStyle.Render("Batches")+fmt.Sprint(f.Batches))
	renderSkipped(w, f.Skipped)
}

func renderSubmitError(w io.Writer, name string, err error) {
	fmt.Fprintln(w, failStyle.Render("Failed: ")+name)
	fmt.Fprintln(w, errorStyle.Render("  "+err.Error()))
	if se, ok := asSubmissionError(err); ok {
		if se.Partial() {
			fmt.Fprintln(w, labelStyle.Render("Partial form")+forms.EditURL(se.FormID))
		}
		renderSkipped(w, se.Skipped)
	}
}

func renderSkipped(w io.Writer, skipped []forms.FieldIncompatibility) {
	for _, s := range skipped {
		fmt.Fprintln(w, warnStyle.Render("  ! skipped "+s.String()))
	}
}

func renderKV(w io.Writer, pairs ...string) {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(labelStyle.Render(pairs[i]) + pairs[i+1] + "\n")
	}
	fmt.Fprint(w, b.String())
}
