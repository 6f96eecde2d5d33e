package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoform/internal/config"
	"autoform/internal/schema"
	"autoform/internal/store"
)

const signupYAML = `title: "  Event Signup "
fields:
  - label: Name
  - label: Email
    type: email
    required: "yes"
  - label: Track
    type: radio
    options: [Backend, Frontend]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// testConfig writes a config file and returns its path.
func testConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	c := config.DefaultConfig()
	c.Logging.Level = "error"
	c.Forms.HistoryPath = filepath.Join(t.TempDir(), "forms.db")
	if mutate != nil {
		mutate(c)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, c.Save(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestReadWriteSchema(t *testing.T) {
	dir := t.TempDir()
	s, err := readSchema(writeFile(t, dir, "signup.yaml", signupYAML))
	require.NoError(t, err)
	assert.Equal(t, "Event Signup", s.Title)
	assert.Equal(t, []string{"name", "email", "track"}, []string{s.Fields[0].ID, s.Fields[1].ID, s.Fields[2].ID})
	assert.True(t, s.Fields[1].Required)

	jsonPath := filepath.Join(dir, "out", "signup.json")
	require.NoError(t, writeSchema(nil, jsonPath, s))
	again, err := readSchema(jsonPath)
	require.NoError(t, err)
	if diff := cmp.Diff(s, again); diff != "" {
		t.Fatalf("schema changed through JSON (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	require.NoError(t, writeSchema(&buf, "", s))
	assert.Contains(t, buf.String(), "title: Event Signup")

	_, err = readSchema(writeFile(t, dir, "bad.json", `{"title":""}`))
	assert.ErrorContains(t, err, "bad.json")
}

func TestCleanCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", signupYAML)
	out, err := execute(t, "-c", testConfig(t, nil), "clean", in)
	require.NoError(t, err)
	assert.Contains(t, out, "id: email")
	assert.Contains(t, out, "allow_multiple_submissions: true")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", signupYAML)
	out, err := execute(t, "-c", testConfig(t, nil), "validate", "--text", in)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Google Forms Validation Report ===")
	assert.Contains(t, out, "VALID")
	assert.NotContains(t, out, "INVALID")
}

func TestTranslateCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.yaml", signupYAML)
	out, err := execute(t, "-c", testConfig(t, nil), "translate", in)
	require.NoError(t, err)

	var doc struct {
		Requests []map[string]json.RawMessage `json:"requests"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Requests, 3)
	for _, r := range doc.Requests {
		assert.Contains(t, r, "createItem")
	}
}

func TestProvidersCommand(t *testing.T) {
	out, err := execute(t, "-c", testConfig(t, nil), "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "mock (active)")
	assert.Contains(t, out, "llama3-8b-8192")
	assert.NotContains(t, out, "missing an API key")
}

func TestGenerateCommand_Mock(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "drafted.json")
	_, err := execute(t, "-c", testConfig(t, nil), "generate", "Book", "club", "signup", "-o", outPath)
	require.NoError(t, err)

	s, err := readSchema(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Book club signup", s.Title)
	assert.NotEmpty(t, s.Fields)
}

func TestGenerateCommand_StdinPrompts(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader("Book club\n\nHackathon signup\n"))
	rootCmd.SetArgs([]string{"-c", testConfig(t, nil), "generate"})
	require.NoError(t, rootCmd.Execute())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n---\n"))
	assert.Contains(t, out, "Book club")
	assert.Contains(t, out, "Hackathon signup")
}

func TestGenerateCommand_StdinStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(pr)
	rootCmd.SetArgs([]string{"-c", testConfig(t, nil), "generate"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t.Cleanup(func() { rootCmd.SetContext(context.Background()) })
	done := make(chan error, 1)
	go func() { done <- rootCmd.ExecuteContext(ctx) }()

	// The write returns once the command is reading stdin; the pipe then
	// stays open with nothing more to read.
	_, err := fmt.Fprintln(pw, "Book club")
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("generate kept waiting on stdin after cancel")
	}
}

func TestFieldCommands(t *testing.T) {
	cfgPath := testConfig(t, nil)
	path := writeFile(t, t.TempDir(), "signup.yaml", signupYAML)
	ids := func() []string {
		t.Helper()
		s, err := readSchema(path)
		require.NoError(t, err)
		out := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			out[i] = f.ID
		}
		return out
	}

	out, err := execute(t, "-c", cfgPath, "field", "add", path,
		"--label", "T-shirt size", "--type", "select", "--option", "S", "--option", "M, L", "--required")
	require.NoError(t, err)
	assert.Contains(t, out, "Added t_shirt_size at position 4")
	s, err := readSchema(path)
	require.NoError(t, err)
	added := s.Fields[3]
	assert.Equal(t, schema.FieldSelect, added.Type)
	assert.Equal(t, []string{"S", "M, L"}, added.Options)
	assert.True(t, added.Required)

	out, err = execute(t, "-c", cfgPath, "field", "mv", path, "4", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved t_shirt_size to position 1")
	assert.Equal(t, []string{"t_shirt_size", "name", "email", "track"}, ids())

	out, err = execute(t, "-c", cfgPath, "field", "set", path, "name", "--label", "Full name", "--required")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated name")
	s, err = readSchema(path)
	require.NoError(t, err)
	assert.Equal(t, "Full name", s.Fields[1].Label)
	assert.True(t, s.Fields[1].Required)
	assert.Equal(t, schema.FieldText, s.Fields[1].Type)

	_, err = execute(t, "-c", cfgPath, "field", "rm", path, "track")
	require.NoError(t, err)
	assert.Equal(t, []string{"t_shirt_size", "name", "email"}, ids())

	_, err = execute(t, "-c", cfgPath, "field", "rm", path, "missing")
	assert.ErrorIs(t, err, schema.ErrFieldNotFound)
	_, err = execute(t, "-c", cfgPath, "field", "mv", path, "0", "1")
	assert.ErrorIs(t, err, schema.ErrIndexOutOfRange)
	_, err = execute(t, "-c", cfgPath, "field", "mv", path, "one", "2")
	assert.Error(t, err)
	assert.Equal(t, []string{"t_shirt_size", "name", "email"}, ids())
}

type staticSession struct{ authCalls atomic.Int32 }

func (s *staticSession) Authenticate(context.Context) error {
	s.authCalls.Add(1)
	return nil
}

func (s *staticSession) AuthorizedHeaders() (http.Header, error) {
	h := http.Header{}
	h.Set("Authorization", "Bearer test")
	h.Set("Content-Type", "application/json")
	return h, nil
}

func TestSubmitCommand(t *testing.T) {
	var created atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/forms":
			fmt.Fprintf(w, `{"formId":"form-%d"}`, created.Add(1))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
			fmt.Fprint(w, `{}`)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/forms/"):
			id := strings.TrimPrefix(r.URL.Path, "/v1/forms/")
			fmt.Fprintf(w, `{"formId":%q,"responderUri":"https://docs.google.com/forms/d/e/%s/viewform"}`, id, id)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := &staticSession{}
	orig := newFormsSession
	newFormsSession = func(*config.Config) (formsSession, error) { return sess, nil }
	defer func() { newFormsSession = orig }()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.yaml", signupYAML)
	b := writeFile(t, dir, "b.json", `{"title":"Second","fields":[{"label":"Why?","type":"textarea"}]}`)
	cfgPath := testConfig(t, func(c *config.Config) {
		c.Forms.BaseURL = srv.URL + "/v1"
		c.Forms.BatchCooldown = "0s"
	})

	out, err := execute(t, "-c", cfgPath, "submit", "--json", a, b)
	require.NoError(t, err)

	var results []submitResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	ids := map[string]bool{}
	for i, r := range results {
		assert.Equal(t, []string{a, b}[i], r.File)
		require.NotNil(t, r.Form, r.Error)
		assert.Contains(t, r.Form.ResponderURI, r.Form.FormID)
		ids[r.Form.FormID] = true
	}
	assert.Len(t, ids, 2)
	assert.EqualValues(t, 2, created.Load())
	// Once up front, then once per submission, which is a no-op on a
	// signed-in session.
	assert.EqualValues(t, 3, sess.authCalls.Load())

	out, err = execute(t, "-c", cfgPath, "history", "--json", "--search", "")
	require.NoError(t, err)
	var recs []store.FormRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	titles := map[string]string{}
	for _, r := range recs {
		assert.True(t, ids[r.FormID], r.FormID)
		assert.Contains(t, r.EditURL, r.FormID)
		titles[r.Title] = r.FormID
	}
	assert.Contains(t, titles, "Event Signup")
	assert.Contains(t, titles, "Second")

	out, err = execute(t, "-c", cfgPath, "history", "forget", titles["Second"], "missing-id")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot "+titles["Second"])
	assert.Contains(t, out, "not in history: missing-id")

	out, err = execute(t, "-c", cfgPath, "history", "--json", "--search", "")
	require.NoError(t, err)
	recs = nil
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "Event Signup", recs[0].Title)

	_, err = execute(t, "-c", cfgPath, "history", "forget", "missing-id")
	assert.Error(t, err)
}

func TestSubmitCommand_BadFileStopsEarly(t *testing.T) {
	called := false
	orig := newFormsSession
	newFormsSession = func(*config.Config) (formsSession, error) {
		called = true
		return &staticSession{}, nil
	}
	defer func() { newFormsSession = orig }()

	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "title: x\nfields: []\n")
	_, err := execute(t, "-c", testConfig(t, nil), "submit", bad)
	require.Error(t, err)
	assert.False(t, called)
}

func TestPreviewMarkdown(t *testing.T) {
	s, err := schema.Clean(map[string]any{
		"title":       "Event Signup",
		"description": "Tell us about you",
		"settings":    map[string]any{"collect_email": true},
		"fields": []any{
			map[string]any{"label": "Name", "required": true, "placeholder": "Jane Doe"},
			map[string]any{"label": "Track", "type": "radio", "options": []any{"Backend", "Frontend"}},
			map[string]any{"label": "Extras", "type": "checkbox", "options": []any{"Lunch"}},
		},
	})
	require.NoError(t, err)
	s.Fields[2].Type = schema.FieldPayment

	md := previewMarkdown(s)
	assert.True(t, strings.HasPrefix(md, "# Event Signup\n\nTell us about you\n\n"))
	assert.Contains(t, md, "_Respondent email is collected._")
	assert.Contains(t, md, "## 1. Name \\*\n\n`text` as SHORT_ANSWER\n\n_Jane Doe_\n")
	assert.Contains(t, md, "## 2. Track\n\n`radio` as MULTIPLE_CHOICE\n\n- ( ) Backend\n- ( ) Frontend\n")
	assert.Contains(t, md, "## 3. Extras\n\n> Skipped: Google Forms has no question for type `payment`.")
	assert.NotContains(t, md, "Lunch")
}

func TestPreviewCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "signup.yaml", signupYAML)
	cfgPath := testConfig(t, nil)

	raw, err := execute(t, "-c", cfgPath, "preview", "--style", "markdown", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "# Event Signup"))

	rendered, err := execute(t, "-c", cfgPath, "preview", "--style", "notty", path)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Event Signup")
	assert.Contains(t, rendered, "Backend")
}
