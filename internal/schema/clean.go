package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"autoform/internal/logging"
)

var placeholderOptions = []string{"Option 1", "Option 2", "Option 3"}

// Top-level keys Clean understands. Everything else lands in Extra.
var knownKeys = map[string]bool{
	"title": true, "description": true, "language": true, "fields": true,
	"settings": true, "theme": true, "extra": true,
}

// CleanJSON decodes data and cleans the result.
func CleanJSON(data []byte) (*FormSchema, error) {
	var candidate any
	if err := json.Unmarshal(data, &candidate); err != nil {
		return nil, &SchemaError{Kind: ErrInvalidJSON, Detail: "candidate is not valid JSON", Err: err}
	}
	return Clean(candidate)
}

// Clean turns an untrusted candidate into a FormSchema that satisfies every
// size and type limit of this package. Candidates are usually the generic
// map produced by decoding JSON or YAML into an any; a FormSchema is also
// accepted, which makes Clean safe to re-run after local edits.
//
// Recoverable problems are repaired silently. Only a non-object candidate, a
// blank title, or a missing or empty field list fail, with a *SchemaError.
// Clean is idempotent.
func Clean(candidate any) (*FormSchema, error) {
	log := logging.Get(logging.CategorySchema)

	obj, err := asObject(candidate)
	if err != nil {
		return nil, err
	}

	title, _ := obj["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, structureError(ErrMissingTitle, "title", "form title is required")
	}

	rawFields, ok := obj["fields"].([]any)
	if !ok {
		return nil, structureError(ErrFieldsNotList, "fields", "form must have at least one field")
	}

	entries := make([]map[string]any, 0, len(rawFields))
	for i, rf := range rawFields {
		m, ok := rf.(map[string]any)
		if !ok {
			log.Warn("dropping non-object field entry", zap.Int("index", i))
			continue
		}
		entries = append(entries, m)
	}
	if len(entries) == 0 {
		return nil, structureError(ErrNoFields, "fields", "form must have at least one field")
	}
	if len(entries) > MaxFields {
		log.Warn("field list truncated", zap.Int("received", len(entries)), zap.Int("kept", MaxFields))
		entries = entries[:MaxFields]
	}

	out := &FormSchema{
		Title:       strings.TrimSpace(truncate(title, MaxTitleLen)),
		Language:    LangEnglish,
		Fields:      make([]Field, 0, len(entries)),
		Settings:    cleanSettings(obj["settings"]),
		Theme:       cleanTheme(obj["theme"]),
		Description: "",
	}
	if desc, ok := obj["description"].(string); ok {
		out.Description = truncate(desc, MaxDescriptionLen)
	}
	if lang, ok := obj["language"].(string); ok {
		if l := Language(strings.ToLower(strings.TrimSpace(lang))); l.IsValid() {
			out.Language = l
		}
	}

	for i, m := range entries {
		out.Fields = append(out.Fields, cleanField(m, i))
	}
	dedupeIDs(out.Fields)

	out.Extra = collectExtra(obj)
	if len(out.Extra) > 0 {
		keys := make([]string, 0, len(out.Extra))
		for k := range out.Extra {
			keys = append(keys, k)
		}
		log.Debug("unrecognised top-level keys kept in extra", zap.Strings("keys", keys))
	}

	log.Debug("schema cleaned",
		zap.String("title", out.Title),
		zap.Int("fields", len(out.Fields)),
		zap.Int("dropped_entries", len(rawFields)-len(entries)))
	return out, nil
}

func asObject(candidate any) (map[string]any, error) {
	switch c := candidate.(type) {
	case map[string]any:
		return c, nil
	case *FormSchema:
		if c == nil {
			break
		}
		return roundTrip(c)
	case FormSchema:
		return roundTrip(&c)
	}
	return nil, structureError(ErrNotObject, "", "form schema must be an object")
}

func roundTrip(s *FormSchema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, &SchemaError{Kind: ErrInvalidJSON, Detail: "schema could not be encoded", Err: err}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &SchemaError{Kind: ErrInvalidJSON, Detail: "schema could not be decoded", Err: err}
	}
	return m, nil
}

func collectExtra(obj map[string]any) map[string]any {
	var extra map[string]any
	put := func(k string, v any) {
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	if nested, ok := obj["extra"].(map[string]any); ok {
		for k, v := range nested {
			put(k, v)
		}
	} else if v, ok := obj["extra"]; ok && v != nil {
		put("extra", v)
	}
	for k, v := range obj {
		if !knownKeys[k] {
			put(k, v)
		}
	}
	return extra
}

func cleanField(m map[string]any, index int) Field {
	rawLabel, _ := m["label"].(string)
	rawLabel = strings.TrimSpace(rawLabel)

	f := Field{Label: DefaultFieldLabel}
	if rawLabel != "" {
		f.Label = strings.TrimSpace(truncate(rawLabel, MaxLabelLen))
	}

	rawID, _ := m["id"].(string)
	f.ID = ToSnakeCase(rawID)
	if f.ID == "" {
		f.ID = ToSnakeCase(rawLabel)
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("field_%d", index)
	}

	rawType, _ := m["type"].(string)
	f.Type = FieldType(strings.ToLower(strings.TrimSpace(rawType)))
	migrated := false
	switch {
	case f.Type == FieldDateTime || f.Type == "datetime-local":
		f.Type = FieldDate
		migrated = true
	case !IsSupported(f.Type):
		f.Type = FieldText
	}

	f.Required = asBool(m["required"])

	if p, ok := m["placeholder"].(string); ok && strings.TrimSpace(p) != "" {
		p = truncate(p, MaxPlaceholderLen)
		f.Placeholder = &p
	}

	desc, _ := m["description"].(string)
	if migrated {
		desc = strings.TrimSpace(desc + datetimeMigrationTip)
	}
	if strings.TrimSpace(desc) != "" {
		desc = truncate(desc, MaxFieldDescLen)
		f.Description = &desc
	}

	if f.Type.IsChoice() {
		f.Options = cleanOptions(m["options"])
	}
	f.Validation = cleanValidation(f.Type, m["validation"])
	return f
}

func cleanOptions(v any) []string {
	var list []any
	switch x := v.(type) {
	case []any:
		list = x
	case []string:
		for _, s := range x {
			list = append(list, s)
		}
	}

	out := make([]string, 0, min(len(list), MaxOptions))
	for _, item := range list {
		s := truncate(stringify(item), MaxOptionLen)
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
		if len(out) == MaxOptions {
			break
		}
	}
	if len(out) == 0 {
		return append([]string(nil), placeholderOptions...)
	}
	return out
}

// acceptsValidation reports whether answer constraints make sense for t.
func acceptsValidation(t FieldType) bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldNumber, FieldURL:
		return true
	}
	return false
}

func defaultValidation(t FieldType) *Validation {
	var pattern, message string
	switch t {
	case FieldEmail:
		pattern, message = `^[^\s@]+@[^\s@]+\.[^\s@]+$`, "Please enter a valid email address"
	case FieldPhone:
		pattern, message = `^[\+]?[1-9][\d]{0,15}$`, "Please enter a valid phone number"
	case FieldURL:
		pattern, message = `^https?:\/\/[\w\-]+(\.[\w\-]+)+[/#?]?.*$`, "Please enter a valid URL"
	default:
		return nil
	}
	return &Validation{Pattern: &pattern, Message: &message}
}

func cleanValidation(t FieldType, v any) *Validation {
	if !acceptsValidation(t) {
		return nil
	}
	var out Validation
	if m, ok := v.(map[string]any); ok {
		if p, ok := m["pattern"].(string); ok && p != "" {
			out.Pattern = &p
		}
		if lo, ok := asFloat(m["min"]); ok {
			lo = math.Max(lo, MinValidationBound)
			out.Min = &lo
		}
		if hi, ok := asFloat(m["max"]); ok {
			hi = math.Min(hi, MaxValidationBound)
			out.Max = &hi
		}
		if msg, ok := m["message"].(string); ok && strings.TrimSpace(msg) != "" {
			msg = truncate(msg, MaxValidationMsgLen)
			out.Message = &msg
		}
	}
	if out == (Validation{}) {
		return defaultValidation(t)
	}
	return &out
}

func cleanSettings(v any) Settings {
	s := DefaultSettings()
	m, ok := v.(map[string]any)
	if !ok {
		return s
	}
	if b, ok := m["collect_email"]; ok {
		s.CollectEmail = asBool(b)
	}
	if b, ok := m["allow_multiple_submissions"]; ok {
		s.AllowMultipleSubmissions = asBool(b)
	}
	if b, ok := m["show_progress_bar"]; ok {
		s.ShowProgressBar = asBool(b)
	}
	if b, ok := m["randomize_fields"]; ok {
		s.RandomizeFields = asBool(b)
	}
	s.ConfirmationMessage = optionalString(m["confirmation_message"], MaxConfirmationLen)
	s.RedirectURL = optionalString(m["redirect_url"], 0)

	if n, ok := m["notifications"].(map[string]any); ok {
		s.Notifications.Enabled = asBool(n["enabled"])
		s.Notifications.Email = optionalString(n["email"], 0)
		s.Notifications.Subject = optionalString(n["subject"], MaxNotifySubjectLen)
	}
	// Payments are out of scope; whatever came in is discarded.
	s.Payment = Payment{}
	return s
}

func cleanTheme(v any) Theme {
	t := DefaultTheme()
	m, ok := v.(map[string]any)
	if !ok {
		return t
	}
	if s, ok := m["primary_color"].(string); ok && strings.TrimSpace(s) != "" {
		t.PrimaryColor = strings.TrimSpace(s)
	}
	if s, ok := m["background_color"].(string); ok && strings.TrimSpace(s) != "" {
		t.BackgroundColor = strings.TrimSpace(s)
	}
	if s, ok := m["font_family"].(string); ok && strings.TrimSpace(s) != "" {
		t.FontFamily = strings.TrimSpace(s)
	}
	return t
}

// optionalString returns nil for non-strings and blanks. limit <= 0 means
// no truncation.
func optionalString(v any, limit int) *string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	if limit > 0 {
		s = truncate(s, limit)
	}
	return &s
}

func dedupeIDs(fields []Field) {
	seen := make(map[string]struct{}, len(fields))
	taken := func(id string) bool {
		_, ok := seen[id]
		return ok
	}
	for i := range fields {
		fields[i].ID = uniqueID(fields[i].ID, taken)
		seen[fields[i].ID] = struct{}{}
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func asBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1", "required":
			return true
		}
		return false
	}
	if f, ok := asFloat(v); ok {
		return f != 0
	}
	return false
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		// LLMs sometimes emit {label, value} pairs instead of plain strings.
		for _, k := range []string{"label", "value", "text"} {
			if s, ok := x[k].(string); ok {
				return s
			}
		}
	}
	if f, ok := asFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
