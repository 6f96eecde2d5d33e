package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FormStore {
	t.Helper()
	s, err := NewFormStore(filepath.Join(t.TempDir(), "nested", "forms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id, title string, at time.Time) FormRecord {
	return FormRecord{
		FormID:       id,
		Title:        title,
		ResponderURI: "https://docs.google.com/forms/d/e/" + id + "/viewform",
		EditURL:      "https://docs.google.com/forms/d/" + id + "/edit",
		Fields:       3,
		CreatedAt:    at,
	}
}

func TestFormStore_RecordAndGet(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := record("f1", "Hackathon signup", at)
	rec.Description = "Team registration"
	rec.SubmissionID = "sub-1"
	rec.Skipped = 1
	require.NoError(t, s.Record(rec))

	got, err := s.Get("f1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec, *got)

	missing, err := s.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFormStore_RecordReplaces(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(record("f1", "Old", at)))
	require.NoError(t, s.Record(record("f1", "New", at)))

	all, err := s.List("", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New", all[0].Title)
}

func TestFormStore_RecordRequiresID(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Record(FormRecord{Title: "x"}))
}

func TestFormStore_ListNewestFirstWithSearch(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(record("a", "Book club", base)))
	require.NoError(t, s.Record(record("b", "Hackathon signup", base.Add(time.Hour))))
	c := record("c", "Feedback", base.Add(2*time.Hour))
	c.Description = "After the HACKATHON"
	require.NoError(t, s.Record(c))
	require.NoError(t, s.Record(record("d", "100% off_sale", base.Add(3*time.Hour))))

	all, err := s.List("", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids(all))

	hits, err := s.List("hackathon", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, ids(hits))

	limited, err := s.List("", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids(limited))

	// LIKE wildcards in the query match literally.
	pct, err := s.List("0%", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids(pct))
	under, err := s.List("b_c", 0)
	require.NoError(t, err)
	assert.Empty(t, under)
}

func TestFormStore_Forget(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Record(record("f1", "T", time.Now())))

	ok, err := s.Forget("f1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Forget("f1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFormStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.db")
	s, err := NewFormStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(record("f1", "Persisted", time.Now())))
	require.NoError(t, s.Close())

	s, err = NewFormStore(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, path, s.Path())
	got, err := s.Get("f1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Persisted", got.Title)
}

func ids(recs []FormRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.FormID
	}
	return out
}
