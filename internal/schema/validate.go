package schema

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Report is the result of a compatibility check against the remote forms
// service. Errors block submission; warnings do not.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Summary  Summary  `json:"summary"`
}

// Summary counts fields by outcome.
type Summary struct {
	TotalFields       int `json:"total_fields"`
	SupportedFields   int `json:"supported_fields"`
	UnsupportedFields int `json:"unsupported_fields"`
	FieldsWithIssues  int `json:"fields_with_issues"`
}

// ValidateSchema checks s without modifying it. A schema straight out of
// Clean always passes; the check exists for schemas edited or built by hand.
func ValidateSchema(s *FormSchema) Report {
	r := Report{Errors: []string{}, Warnings: []string{}}
	if s == nil {
		r.Errors = append(r.Errors, "Schema must be a valid object")
		return r
	}

	switch title := strings.TrimSpace(s.Title); {
	case title == "":
		r.Errors = append(r.Errors, "Form title cannot be empty")
	case utf8.RuneCountInString(s.Title) > MaxTitleLen:
		r.Errors = append(r.Errors, fmt.Sprintf("Form title exceeds maximum length of %d characters", MaxTitleLen))
	}
	if utf8.RuneCountInString(s.Description) > MaxDescriptionLen {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Form description exceeds recommended length of %d characters", MaxDescriptionLen))
	}

	r.Summary.TotalFields = len(s.Fields)
	if len(s.Fields) > MaxFields {
		r.Errors = append(r.Errors, fmt.Sprintf("Form exceeds maximum of %d fields", MaxFields))
	}
	if len(s.Fields) == 0 {
		r.Warnings = append(r.Warnings, "Form has no fields")
	}

	seen := make(map[string]bool, len(s.Fields))
	duplicateIDs := false
	for i := range s.Fields {
		f := &s.Fields[i]
		errs, warns, supported := checkField(f, i)
		if supported {
			r.Summary.SupportedFields++
		} else {
			r.Summary.UnsupportedFields++
		}
		if len(errs) > 0 || len(warns) > 0 {
			r.Summary.FieldsWithIssues++
		}
		r.Errors = append(r.Errors, errs...)
		r.Warnings = append(r.Warnings, warns...)

		if f.ID != "" {
			if seen[f.ID] {
				duplicateIDs = true
			}
			seen[f.ID] = true
		}
	}

	if duplicateIDs {
		r.Errors = append(r.Errors, "Form contains duplicate field IDs")
	}
	if r.Summary.TotalFields > 0 && r.Summary.SupportedFields == 0 {
		r.Errors = append(r.Errors, "Form contains no fields supported by Google Forms")
	}

	r.Valid = len(r.Errors) == 0
	return r
}

func checkField(f *Field, index int) (errs, warns []string, supported bool) {
	name := f.Label
	if name == "" {
		name = f.ID
	}
	if name == "" {
		name = "unnamed"
	}
	prefix := fmt.Sprintf("Field %d (%s)", index+1, name)
	errf := func(format string, args ...any) {
		errs = append(errs, prefix+": "+fmt.Sprintf(format, args...))
	}
	warnf := func(format string, args ...any) {
		warns = append(warns, prefix+": "+fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(f.ID) == "" {
		errf("Field must have a valid id")
	}
	if strings.TrimSpace(f.Label) == "" {
		errf("Field must have a valid label")
	}
	switch {
	case f.Type == "":
		errf("Field must have a valid type")
	case IsSupported(f.Type):
		supported = true
	default:
		errf("Field type '%s' is not supported by Google Forms", f.Type)
	}
	if utf8.RuneCountInString(f.Label) > MaxLabelLen {
		errf("Label exceeds maximum length of %d characters", MaxLabelLen)
	}
	if f.Description != nil && utf8.RuneCountInString(*f.Description) > MaxFieldDescLen {
		warnf("Description exceeds recommended length of %d characters", MaxFieldDescLen)
	}

	switch {
	case f.Type.IsChoice():
		if len(f.Options) == 0 {
			errf("Choice field must have at least one option")
		}
		if len(f.Options) > MaxOptions {
			errf("Choice field exceeds maximum of %d options", MaxOptions)
		}
		unique := make(map[string]bool, len(f.Options))
		for j, opt := range f.Options {
			switch {
			case strings.TrimSpace(opt) == "":
				errf("Option %d cannot be empty", j+1)
			case utf8.RuneCountInString(opt) > MaxOptionLen:
				warnf("Option %d exceeds recommended length of %d characters", j+1, MaxOptionLen)
			}
			unique[opt] = true
		}
		if len(unique) != len(f.Options) {
			warnf("Contains duplicate options")
		}
	case f.Type == FieldEmail:
		if v := f.Validation; v != nil && v.Pattern != nil && *v.Pattern != *defaultValidation(FieldEmail).Pattern {
			warnf("Custom email validation patterns may not work in Google Forms")
		}
	case f.Type == FieldFile:
		warnf("File upload requires Google Drive permissions and may have limitations")
	}

	if v := f.Validation; v != nil && v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		warnf("Validation min %g is greater than max %g", *v.Min, *v.Max)
	}
	return errs, warns, supported
}

// Text renders the report for terminals and logs.
func (r Report) Text() string {
	var b strings.Builder
	b.WriteString("=== Google Forms Validation Report ===\n\n")
	status := "INVALID"
	if r.Valid {
		status = "VALID"
	}
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Total Fields: %d\n", r.Summary.TotalFields)
	fmt.Fprintf(&b, "Supported Fields: %d\n", r.Summary.SupportedFields)
	fmt.Fprintf(&b, "Unsupported Fields: %d\n", r.Summary.UnsupportedFields)
	fmt.Fprintf(&b, "Fields with Issues: %d\n\n", r.Summary.FieldsWithIssues)

	if len(r.Errors) > 0 {
		b.WriteString("ERRORS:\n")
		for i, e := range r.Errors {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, e)
		}
		b.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		b.WriteString("WARNINGS:\n")
		for i, w := range r.Warnings {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, w)
		}
		b.WriteString("\n")
	}

	if r.Valid {
		b.WriteString("Form is compatible with Google Forms!")
	} else {
		b.WriteString("Form has compatibility issues that must be resolved.")
	}
	return b.String()
}
