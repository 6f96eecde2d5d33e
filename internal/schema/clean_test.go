package schema

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(label, typ string) map[string]any {
	return map[string]any{"label": label, "type": typ}
}

func form(title string, fields ...any) map[string]any {
	return map[string]any{"title": title, "fields": fields}
}

func TestClean_EventSignup(t *testing.T) {
	out, err := Clean(form("Event Signup",
		map[string]any{"label": "Name"},
		field("Email", "email"),
	))
	require.NoError(t, err)

	assert.Equal(t, "Event Signup", out.Title)
	assert.Equal(t, LangEnglish, out.Language)
	require.Len(t, out.Fields, 2)

	assert.Equal(t, "name", out.Fields[0].ID)
	assert.Equal(t, FieldText, out.Fields[0].Type)
	assert.False(t, out.Fields[0].Required)
	assert.Nil(t, out.Fields[0].Validation)

	email := out.Fields[1]
	assert.Equal(t, "email", email.ID)
	assert.False(t, email.Required)
	require.NotNil(t, email.Validation)
	assert.Equal(t, `^[^\s@]+@[^\s@]+\.[^\s@]+$`, *email.Validation.Pattern)
	assert.Equal(t, "Please enter a valid email address", *email.Validation.Message)

	assert.Equal(t, DefaultSettings(), out.Settings)
	assert.Equal(t, DefaultTheme(), out.Theme)
}

func TestClean_CapsFieldCount(t *testing.T) {
	fields := make([]any, 305)
	for i := range fields {
		fields[i] = field(fmt.Sprintf("Question %d", i), "text")
	}
	out, err := Clean(form("Big", fields...))
	require.NoError(t, err)
	require.Len(t, out.Fields, MaxFields)
	assert.Equal(t, "Question 0", out.Fields[0].Label)
	assert.Equal(t, "Question 299", out.Fields[299].Label)
}

func TestClean_DeduplicatesIDs(t *testing.T) {
	out, err := Clean(form("Feedback",
		field("Comments", "textarea"),
		field("Comments", "textarea"),
		map[string]any{"id": "comments_1", "label": "More", "type": "text"},
	))
	require.NoError(t, err)
	ids := []string{out.Fields[0].ID, out.Fields[1].ID, out.Fields[2].ID}
	assert.Equal(t, []string{"comments", "comments_1", "comments_1_1"}, ids)
}

func TestClean_StructuralErrors(t *testing.T) {
	tests := []struct {
		name      string
		candidate any
		kind      ErrorKind
	}{
		{"nil", nil, ErrNotObject},
		{"string", "a form", ErrNotObject},
		{"array", []any{}, ErrNotObject},
		{"no title", map[string]any{"fields": []any{field("A", "text")}}, ErrMissingTitle},
		{"blank title", form("   ", field("A", "text")), ErrMissingTitle},
		{"numeric title", map[string]any{"title": 7, "fields": []any{field("A", "text")}}, ErrMissingTitle},
		{"missing fields", map[string]any{"title": "T"}, ErrFieldsNotList},
		{"fields not list", map[string]any{"title": "T", "fields": "name"}, ErrFieldsNotList},
		{"empty fields", form("T"), ErrNoFields},
		{"only junk fields", form("T", "name", 3, nil), ErrNoFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Clean(tt.candidate)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestCleanJSON(t *testing.T) {
	out, err := CleanJSON([]byte(`{"title":"Poll","fields":[{"label":"Pick","type":"radio","options":["a","b"]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Fields[0].Options)

	_, err = CleanJSON([]byte(`{"title":`))
	assert.True(t, IsKind(err, ErrInvalidJSON))
}

func TestClean_Truncation(t *testing.T) {
	long := func(n int) string { return strings.Repeat("x", n) }
	out, err := Clean(map[string]any{
		"title":       long(400),
		"description": long(5000),
		"fields": []any{map[string]any{
			"label":       long(350),
			"type":        "text",
			"placeholder": long(350),
			"description": long(350),
			"validation":  map[string]any{"message": long(400)},
		}},
		"settings": map[string]any{
			"confirmation_message": long(2000),
			"notifications":        map[string]any{"enabled": true, "subject": long(250)},
		},
	})
	require.NoError(t, err)

	assert.Len(t, out.Title, MaxTitleLen)
	assert.Len(t, out.Description, MaxDescriptionLen)
	f := out.Fields[0]
	assert.Len(t, f.Label, MaxLabelLen)
	assert.Len(t, *f.Placeholder, MaxPlaceholderLen)
	assert.Len(t, *f.Description, MaxFieldDescLen)
	assert.Len(t, *f.Validation.Message, MaxValidationMsgLen)
	assert.Len(t, *out.Settings.ConfirmationMessage, MaxConfirmationLen)
	assert.Len(t, *out.Settings.Notifications.Subject, MaxNotifySubjectLen)
	assert.True(t, out.Settings.Notifications.Enabled)
}

func TestClean_TruncatesRunesNotBytes(t *testing.T) {
	title := strings.Repeat("\u092b", 400)
	out, err := Clean(form(title, field("नाम", "text")))
	require.NoError(t, err)
	assert.Equal(t, MaxTitleLen, len([]rune(out.Title)))
	assert.Equal(t, "नाम", out.Fields[0].ID)
}

func TestClean_Options(t *testing.T) {
	many := make([]any, 150)
	for i := range many {
		many[i] = fmt.Sprintf("opt %d", i)
	}

	out, err := Clean(form("Options",
		field("No options", "select"),
		map[string]any{"label": "Many", "type": "checkbox", "options": many},
		map[string]any{"label": "Mixed", "type": "radio", "options": []any{" ", 42, true, strings.Repeat("y", 250), map[string]any{"label": "Other"}, nil}},
		map[string]any{"label": "Blank", "type": "radio", "options": []any{"", "  "}},
		map[string]any{"label": "Text", "type": "text", "options": []any{"a"}},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"Option 1", "Option 2", "Option 3"}, out.Fields[0].Options)
	assert.Len(t, out.Fields[1].Options, MaxOptions)
	assert.Equal(t, "opt 99", out.Fields[1].Options[99])
	assert.Equal(t, []string{"42", "true", strings.Repeat("y", MaxOptionLen), "Other"}, out.Fields[2].Options)
	assert.Equal(t, []string{"Option 1", "Option 2", "Option 3"}, out.Fields[3].Options)
	assert.Nil(t, out.Fields[4].Options)
}

func TestClean_FieldTypes(t *testing.T) {
	out, err := Clean(form("Types",
		field("When", "datetime"),
		map[string]any{"label": "Start", "type": "DateTime", "description": "Event start"},
		field("Pay", "payment"),
		field("Mystery", "hologram"),
		map[string]any{"label": "Untyped"},
		field("Site", "url"),
		field("Mobile", "phone"),
	))
	require.NoError(t, err)

	assert.Equal(t, FieldDate, out.Fields[0].Type)
	assert.Equal(t, "(Use separate time field if time is needed)", *out.Fields[0].Description)
	assert.Equal(t, FieldDate, out.Fields[1].Type)
	assert.Equal(t, "Event start (Use separate time field if time is needed)", *out.Fields[1].Description)
	assert.Equal(t, FieldText, out.Fields[2].Type)
	assert.Equal(t, FieldText, out.Fields[3].Type)
	assert.Equal(t, FieldText, out.Fields[4].Type)
	assert.Equal(t, FieldURL, out.Fields[5].Type)
	assert.Equal(t, "Please enter a valid URL", *out.Fields[5].Validation.Message)
	assert.Equal(t, `^[\+]?[1-9][\d]{0,15}$`, *out.Fields[6].Validation.Pattern)

	for _, f := range out.Fields {
		assert.True(t, IsSupported(f.Type), f.Type)
	}
}

func TestClean_DefaultsLabelAndID(t *testing.T) {
	out, err := Clean(form("Defaults",
		map[string]any{"type": "text"},
		map[string]any{"id": "CustomerID", "label": ""},
		map[string]any{"label": "!!!"},
	))
	require.NoError(t, err)

	assert.Equal(t, DefaultFieldLabel, out.Fields[0].Label)
	assert.Equal(t, "field_0", out.Fields[0].ID)
	assert.Equal(t, "customer_id", out.Fields[1].ID)
	assert.Equal(t, "!!!", out.Fields[2].Label)
	assert.Equal(t, "field_2", out.Fields[2].ID)
}

func TestClean_RequiredCoercion(t *testing.T) {
	values := map[any]bool{
		true: true, false: false, "true": true, "yes": true, "no": false,
		"": false, 1.0: true, 0.0: false, "false": false,
	}
	for in, want := range values {
		out, err := Clean(form("R", map[string]any{"label": "A", "required": in}))
		require.NoError(t, err)
		assert.Equal(t, want, out.Fields[0].Required, "required=%v", in)
	}
}

func TestClean_ValidationBounds(t *testing.T) {
	out, err := Clean(form("Bounds",
		map[string]any{"label": "Age", "type": "number", "validation": map[string]any{"min": -5, "max": 50000}},
		map[string]any{"label": "Pick", "type": "select", "validation": map[string]any{"min": 1}},
		map[string]any{"label": "Code", "type": "text", "validation": map[string]any{"pattern": "^[A-Z]{3}$"}},
		map[string]any{"label": "Contact", "type": "email", "validation": map[string]any{}},
	))
	require.NoError(t, err)

	v := out.Fields[0].Validation
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v.Min)
	assert.Equal(t, 10000.0, *v.Max)
	assert.Nil(t, out.Fields[1].Validation)
	assert.Equal(t, "^[A-Z]{3}$", *out.Fields[2].Validation.Pattern)
	assert.Nil(t, out.Fields[2].Validation.Message)
	assert.Equal(t, "Please enter a valid email address", *out.Fields[3].Validation.Message)
}

func TestClean_SettingsAndPayment(t *testing.T) {
	out, err := Clean(map[string]any{
		"title":    "Shop",
		"language": "HI",
		"fields":   []any{field("Item", "text")},
		"settings": map[string]any{
			"collect_email":              true,
			"allow_multiple_submissions": false,
			"redirect_url":               "https://example.com/thanks",
			"payment": map[string]any{
				"enabled": true, "provider": "razorpay", "fixed_amount": 499, "currency": "INR",
			},
		},
		"theme": map[string]any{"primary_color": "#000000"},
	})
	require.NoError(t, err)

	assert.Equal(t, LangHindi, out.Language)
	assert.True(t, out.Settings.CollectEmail)
	assert.False(t, out.Settings.AllowMultipleSubmissions)
	assert.Equal(t, "https://example.com/thanks", *out.Settings.RedirectURL)
	assert.Equal(t, Payment{}, out.Settings.Payment)
	assert.Equal(t, "#000000", out.Theme.PrimaryColor)
	assert.Equal(t, "Inter", out.Theme.FontFamily)
}

func TestClean_UnknownLanguageFallsBack(t *testing.T) {
	out, err := Clean(map[string]any{"title": "T", "language": "fr", "fields": []any{field("A", "text")}})
	require.NoError(t, err)
	assert.Equal(t, LangEnglish, out.Language)
}

func TestClean_KeepsUnknownKeysInExtra(t *testing.T) {
	in := form("Extra", field("A", "text"))
	in["category"] = "survey"
	in["estimated_minutes"] = 5.0

	out, err := Clean(in)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"category": "survey", "estimated_minutes": 5.0}, out.Extra)

	again, err := Clean(out)
	require.NoError(t, err)
	assert.Equal(t, out.Extra, again.Extra)
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []map[string]any{
		form("  Padded title  ", field("Comments", "textarea"), field("Comments", "textarea")),
		form("Mixed", field("When", "datetime"), map[string]any{"label": "Pick", "type": "radio", "options": []any{" ", 3}}),
		form(strings.Repeat("t ", 200), map[string]any{"label": strings.Repeat("label ", 80), "type": "email"}),
	}
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 25; i++ {
		inputs = append(inputs, randomCandidate(rng))
	}

	for i, in := range inputs {
		first, err := Clean(in)
		require.NoError(t, err, "input %d", i)
		second, err := Clean(first)
		require.NoError(t, err, "input %d", i)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("input %d: Clean not idempotent (-first +second):\n%s", i, diff)
		}
	}
}

func TestClean_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		out, err := Clean(randomCandidate(rng))
		require.NoError(t, err)

		assert.LessOrEqual(t, len(out.Fields), MaxFields)
		ids := make(map[string]bool)
		for _, f := range out.Fields {
			assert.False(t, ids[f.ID], "duplicate id %s", f.ID)
			ids[f.ID] = true
			assert.True(t, IsSupported(f.Type))
			if f.Type.IsChoice() {
				assert.NotEmpty(t, f.Options)
				assert.LessOrEqual(t, len(f.Options), MaxOptions)
			} else {
				assert.Nil(t, f.Options)
			}
		}
		assert.False(t, out.Settings.Payment.Enabled)
		assert.True(t, ValidateSchema(out).Valid)
	}
}

func randomCandidate(rng *rand.Rand) map[string]any {
	types := []string{"text", "email", "phone", "number", "select", "checkbox", "radio",
		"date", "time", "file", "textarea", "url", "datetime", "payment", "bogus", ""}
	labels := []string{"Name", "Name", "Email Address", "", "  ", "firstName", "Q", "comments"}

	n := 1 + rng.Intn(12)
	fields := make([]any, n)
	for i := range fields {
		f := map[string]any{
			"label":    labels[rng.Intn(len(labels))],
			"type":     types[rng.Intn(len(types))],
			"required": rng.Intn(3) == 0,
		}
		if rng.Intn(2) == 0 {
			opts := make([]any, rng.Intn(5))
			for j := range opts {
				opts[j] = []any{"a", "", 1.5, "b"}[rng.Intn(4)]
			}
			f["options"] = opts
		}
		if rng.Intn(3) == 0 {
			f["validation"] = map[string]any{"min": float64(rng.Intn(200) - 100), "max": float64(rng.Intn(20000))}
		}
		if rng.Intn(4) == 0 {
			f["id"] = labels[rng.Intn(len(labels))]
		}
		fields[i] = f
	}
	return form(fmt.Sprintf("Form %d", rng.Intn(1000)), fields...)
}
