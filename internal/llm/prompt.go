package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt describes the schema the model must return and the limits of
// the remote forms service.
const SystemPrompt = `You are an expert Google Forms schema generator. Create form schemas that comply with the Google Forms API structure and limitations.

CRITICAL: Respond ONLY with valid JSON. No explanations, markdown, or additional text.

Field types and how they map:
- text/email/phone/url -> SHORT_ANSWER (with validation)
- textarea -> PARAGRAPH
- number -> SHORT_ANSWER (with number validation)
- select -> DROP_DOWN
- radio -> MULTIPLE_CHOICE
- checkbox -> CHECKBOX
- date -> DATE
- time -> TIME
- file -> FILE_UPLOAD

Limitations:
- NO payment fields
- NO datetime-local fields (use separate date and time fields)
- Maximum 300 fields per form
- Maximum 100 options per choice field, 200 characters per option

Required JSON schema:
{
  "title": "string (required, max 300 chars)",
  "description": "string (max 4096 chars)",
  "language": "en|hi|gu|mr|ta|te|kn|ml|bn|pa",
  "fields": [
    {
      "id": "string (snake_case, unique)",
      "label": "string (required, max 300 chars)",
      "type": "text|email|phone|number|select|checkbox|radio|date|textarea|url|time|file",
      "required": true|false,
      "placeholder": "string|null (max 300 chars)",
      "options": ["string"] | null (select/radio/checkbox only),
      "description": "string|null (max 300 chars)",
      "validation": {
        "pattern": "regex|null",
        "min": number|null,
        "max": number|null,
        "message": "string|null"
      } | null
    }
  ],
  "settings": {
    "collect_email": true|false,
    "allow_multiple_submissions": true|false,
    "confirmation_message": "string|null (max 1024 chars)",
    "show_progress_bar": true|false,
    "redirect_url": "string|null",
    "notifications": {"enabled": true|false, "email": "string|null", "subject": "string|null (max 200 chars)"}
  }
}

Use clear labels, snake_case unique ids, radio for single choice, checkbox for multiple choice and select for long option lists.`

// Preferences are optional hints for the generated form.
type Preferences struct {
	CollectEmail   *bool
	RequiredFields []string
	MaxFields      int
}

// Options shape one generation request.
type Options struct {
	Language    string
	Context     string
	Preferences Preferences
}

// UserPrompt wraps a free-text request with the generation requirements.
func UserPrompt(prompt string, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a Google Forms compatible schema for: %q\n\n", prompt)
	b.WriteString("Requirements:\n")
	b.WriteString("- Must be compatible with Google Forms API\n")
	b.WriteString("- No payment fields\n")
	b.WriteString("- Use appropriate Google Forms field types\n")
	b.WriteString("- Include proper validation rules\n")
	b.WriteString("- Set meaningful field labels and descriptions")

	if opts.Language != "" && opts.Language != "en" {
		fmt.Fprintf(&b, "\n- Generate form in language: %s", opts.Language)
	}
	if opts.Context != "" {
		fmt.Fprintf(&b, "\n- Additional context: %s", opts.Context)
	}
	p := opts.Preferences
	if p.CollectEmail != nil {
		fmt.Fprintf(&b, "\n- Collect respondent email: %t", *p.CollectEmail)
	}
	if len(p.RequiredFields) > 0 {
		fmt.Fprintf(&b, "\n- Required fields: %s", strings.Join(p.RequiredFields, ", "))
	}
	if p.MaxFields > 0 {
		fmt.Fprintf(&b, "\n- Maximum %d fields", p.MaxFields)
	}
	b.WriteString("\n\nRespond with valid JSON only, following the exact schema format specified.")
	return b.String()
}
