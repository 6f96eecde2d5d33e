// Package schema holds the canonical form model, the cleaner that turns
// untrusted LLM output into it, and the compatibility report.
//
// Only Clean and CleanJSON accept untyped input. Everything past them works
// on FormSchema and may rely on the limits below without checking again.
package schema

// Size limits enforced by Clean.
const (
	MaxTitleLen          = 300
	MaxDescriptionLen    = 4096
	MaxFields            = 300
	MaxLabelLen          = 300
	MaxPlaceholderLen    = 300
	MaxFieldDescLen      = 300
	MaxOptions           = 100
	MaxOptionLen         = 200
	MaxValidationMsgLen  = 300
	MaxConfirmationLen   = 1024
	MaxNotifySubjectLen  = 200
	MinValidationBound   = 0
	MaxValidationBound   = 10000
	DefaultFieldLabel    = "Untitled Field"
	datetimeMigrationTip = " (Use separate time field if time is needed)"
)

// FieldType is the abstract input type of a field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldDate     FieldType = "date"
	FieldTime     FieldType = "time"
	FieldFile     FieldType = "file"
	FieldTextarea FieldType = "textarea"
	FieldURL      FieldType = "url"

	// Not part of the remote taxonomy. Clean migrates datetime to date and
	// anything else unknown to text.
	FieldDateTime FieldType = "datetime"
	FieldPayment  FieldType = "payment"
)

// IsChoice reports whether fields of this type carry options.
func (t FieldType) IsChoice() bool {
	return t == FieldSelect || t == FieldRadio || t == FieldCheckbox
}

// Language is a supported form language code.
type Language string

const (
	LangEnglish   Language = "en"
	LangHindi     Language = "hi"
	LangGujarati  Language = "gu"
	LangMarathi   Language = "mr"
	LangTamil     Language = "ta"
	LangTelugu    Language = "te"
	LangKannada   Language = "kn"
	LangMalayalam Language = "ml"
	LangBengali   Language = "bn"
	LangPunjabi   Language = "pa"
)

// Languages lists every supported language, base language first.
var Languages = []Language{
	LangEnglish, LangHindi, LangGujarati, LangMarathi, LangTamil,
	LangTelugu, LangKannada, LangMalayalam, LangBengali, LangPunjabi,
}

// IsValid reports whether l is a supported language.
func (l Language) IsValid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// FormSchema is the canonical description of a form.
type FormSchema struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Language    Language `json:"language" yaml:"language"`
	// Fields are in display order; position i becomes remote item index i.
	Fields   []Field  `json:"fields" yaml:"fields"`
	Settings Settings `json:"settings" yaml:"settings"`
	Theme    Theme    `json:"theme" yaml:"theme"`
	// Extra keeps top-level keys Clean did not recognise.
	Extra map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Field is one question of a form.
type Field struct {
	ID          string      `json:"id" yaml:"id"`
	Label       string      `json:"label" yaml:"label"`
	Type        FieldType   `json:"type" yaml:"type"`
	Required    bool        `json:"required" yaml:"required"`
	Placeholder *string     `json:"placeholder" yaml:"placeholder"`
	Options     []string    `json:"options" yaml:"options"`
	Description *string     `json:"description" yaml:"description"`
	Validation  *Validation `json:"validation" yaml:"validation"`
}

// Validation holds optional answer constraints. Min and Max are values for
// numbers and lengths for text.
type Validation struct {
	Pattern *string  `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min     *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Message *string  `json:"message,omitempty" yaml:"message,omitempty"`
}

// Settings configures form behaviour.
type Settings struct {
	CollectEmail             bool          `json:"collect_email" yaml:"collect_email"`
	AllowMultipleSubmissions bool          `json:"allow_multiple_submissions" yaml:"allow_multiple_submissions"`
	ConfirmationMessage      *string       `json:"confirmation_message" yaml:"confirmation_message"`
	Payment                  Payment       `json:"payment" yaml:"payment"`
	ShowProgressBar          bool          `json:"show_progress_bar" yaml:"show_progress_bar"`
	RandomizeFields          bool          `json:"randomize_fields" yaml:"randomize_fields"`
	RedirectURL              *string       `json:"redirect_url" yaml:"redirect_url"`
	Notifications            Notifications `json:"notifications" yaml:"notifications"`
}

// Payment is kept only so inbound payment blocks have somewhere to land.
// Clean always resets it to the zero value with Enabled false.
type Payment struct {
	Enabled       bool     `json:"enabled" yaml:"enabled"`
	Provider      *string  `json:"provider" yaml:"provider"`
	AmountFieldID *string  `json:"amount_field_id" yaml:"amount_field_id"`
	FixedAmount   *float64 `json:"fixed_amount" yaml:"fixed_amount"`
	Currency      *string  `json:"currency" yaml:"currency"`
	Description   *string  `json:"description" yaml:"description"`
}

// Notifications configures owner e-mail alerts.
type Notifications struct {
	Enabled bool    `json:"enabled" yaml:"enabled"`
	Email   *string `json:"email" yaml:"email"`
	Subject *string `json:"subject" yaml:"subject"`
}

// Theme carries presentation hints; the remote API ignores them.
type Theme struct {
	PrimaryColor    string `json:"primary_color" yaml:"primary_color"`
	BackgroundColor string `json:"background_color" yaml:"background_color"`
	FontFamily      string `json:"font_family" yaml:"font_family"`
}

// DefaultSettings returns the settings template missing keys fall back to.
func DefaultSettings() Settings {
	return Settings{
		AllowMultipleSubmissions: true,
	}
}

// DefaultTheme returns the theme template.
func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:    "#7C5CFF",
		BackgroundColor: "#070910",
		FontFamily:      "Inter",
	}
}

// Field returns the field with id, if any.
func (s *FormSchema) Field(id string) (*Field, bool) {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy.
func (s *FormSchema) Clone() *FormSchema {
	out := *s
	out.Fields = make([]Field, len(s.Fields))
	for i, f := range s.Fields {
		out.Fields[i] = f.clone()
	}
	out.Settings.ConfirmationMessage = cloneString(s.Settings.ConfirmationMessage)
	out.Settings.RedirectURL = cloneString(s.Settings.RedirectURL)
	out.Settings.Notifications.Email = cloneString(s.Settings.Notifications.Email)
	out.Settings.Notifications.Subject = cloneString(s.Settings.Notifications.Subject)
	if s.Extra != nil {
		out.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

func (f Field) clone() Field {
	out := f
	out.Placeholder = cloneString(f.Placeholder)
	out.Description = cloneString(f.Description)
	if f.Options != nil {
		out.Options = append([]string(nil), f.Options...)
	}
	if f.Validation != nil {
		v := *f.Validation
		v.Pattern = cloneString(v.Pattern)
		v.Message = cloneString(v.Message)
		v.Min = cloneFloat(v.Min)
		v.Max = cloneFloat(v.Max)
		out.Validation = &v
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
