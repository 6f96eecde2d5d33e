package forms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"autoform/internal/config"
	"autoform/internal/logging"
	"autoform/internal/schema"
)

// Authenticator is the session the submitter makes sure is authenticated
// before the first remote call.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// CreatedForm describes a fully populated remote form.
type CreatedForm struct {
	FormID       string                 `json:"form_id"`
	ResponderURI string                 `json:"responder_uri"`
	EditURL      string                 `json:"edit_url"`
	CreatedAt    time.Time              `json:"created_at"`
	SubmissionID string                 `json:"submission_id"`
	Batches      int                    `json:"batches"`
	Skipped      []FieldIncompatibility `json:"skipped,omitempty"`
}

// EditURL returns the owner edit link of a form.
func EditURL(formID string) string {
	return fmt.Sprintf("https://docs.google.com/forms/d/%s/edit", formID)
}

// Submitter creates remote forms from cleaned schemas. Batches of one
// submission run strictly in order; separate submissions share nothing but
// the client and session and may run concurrently.
type Submitter struct {
	client    *Client
	auth      Authenticator
	batchSize int
	cooldown  time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
	log       *zap.Logger
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithSleep replaces the cooldown wait. Tests use it to skip real sleeps.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) SubmitterOption {
	return func(s *Submitter) { s.sleep = fn }
}

// WithClock replaces time.Now for CreatedAt.
func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) { s.now = now }
}

// NewSubmitter creates a submitter. Batch size is clamped to
// [1, config.MaxBatchSize].
func NewSubmitter(client *Client, auth Authenticator, opts Options, options ...SubmitterOption) *Submitter {
	size := opts.BatchSize
	if size <= 0 || size > config.MaxBatchSize {
		size = config.MaxBatchSize
	}
	s := &Submitter{
		client:    client,
		auth:      auth,
		batchSize: size,
		cooldown:  opts.Cooldown,
		sleep:     sleepContext,
		now:       time.Now,
		log:       logging.Get(logging.CategoryForms),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// SubmitForm creates a form for sch: authenticate, create the shell with the
// title, apply the remaining requests in batches, then read back the
// responder URI. Any failure returns a *SubmissionError. A form created
// before the failure is left in place and its id reported.
func (s *Submitter) SubmitForm(ctx context.Context, sch *schema.FormSchema) (*CreatedForm, error) {
	id := uuid.NewString()
	log := s.log.With(zap.String("submission_id", id))
	audit := logging.AuditWithSubmission(id)
	start := s.now()
	fail := func(se *SubmissionError) (*CreatedForm, error) {
		audit.SubmissionFailed(string(se.Stage), se.FormID, se.Err, s.now().Sub(start))
		return nil, se
	}

	if err := checkSubmittable(sch); err != nil {
		return fail(&SubmissionError{Stage: StageValidate, Err: err})
	}

	// Translation is pure, so every batch is checked before anything is
	// created remotely.
	tr := Translate(sch, false)
	for _, sk := range tr.Skipped {
		log.Warn("skipping unsupported field", zap.String("field_id", sk.FieldID), zap.String("type", string(sk.Type)))
	}
	if tr.ItemCount() == 0 {
		return fail(&SubmissionError{
			Stage:   StageValidate,
			Skipped: tr.Skipped,
			Err:     fmt.Errorf("%w: no field has a supported type", ErrInvalidSchema),
		})
	}
	batches := Chunk(tr.Requests, s.batchSize)
	offset := 0
	for _, b := range batches {
		if err := Preflight(b, offset); err != nil {
			return fail(&SubmissionError{Stage: StagePreflight, TotalBatches: len(batches), Skipped: tr.Skipped, Err: err})
		}
		offset += len(b)
	}

	audit.SubmissionStart(sch.Title, len(tr.Requests), len(batches))

	if err := s.auth.Authenticate(ctx); err != nil {
		return fail(&SubmissionError{Stage: StageAuth, Skipped: tr.Skipped, Err: err})
	}

	shell, err := s.client.CreateForm(ctx, sch.Title)
	if err != nil {
		return fail(&SubmissionError{Stage: StageCreate, TotalBatches: len(batches), Skipped: tr.Skipped, Err: err})
	}
	log = log.With(zap.String("form_id", shell.FormID))
	log.Debug("form shell created", zap.Int("requests", len(tr.Requests)), zap.Int("batches", len(batches)))

	for i, batch := range batches {
		if i > 0 && s.cooldown > 0 {
			if err := s.sleep(ctx, s.cooldown); err != nil {
				return fail(s.batchError(shell.FormID, i, len(batches), tr.Skipped, err))
			}
		}
		if err := s.client.BatchUpdate(ctx, shell.FormID, batch); err != nil {
			log.Warn("batch failed", zap.Int("batch", i+1), zap.Int("of", len(batches)), zap.Error(err))
			return fail(s.batchError(shell.FormID, i, len(batches), tr.Skipped, err))
		}
		audit.BatchApplied(shell.FormID, i+1, len(batches), len(batch))
		log.Debug("batch applied", zap.Int("batch", i+1), zap.Int("of", len(batches)), zap.Int("requests", len(batch)))
	}

	form, err := s.client.GetForm(ctx, shell.FormID)
	if err != nil {
		return fail(&SubmissionError{
			Stage:            StageFetch,
			FormID:           shell.FormID,
			BatchesSucceeded: len(batches),
			TotalBatches:     len(batches),
			Skipped:          tr.Skipped,
			Err:              err,
		})
	}

	created := &CreatedForm{
		FormID:       shell.FormID,
		ResponderURI: form.ResponderURI,
		EditURL:      EditURL(shell.FormID),
		CreatedAt:    s.now().UTC(),
		SubmissionID: id,
		Batches:      len(batches),
		Skipped:      tr.Skipped,
	}
	audit.FormCreated(created.FormID, created.ResponderURI, s.now().Sub(start))
	log.Info("form created", zap.String("responder_uri", created.ResponderURI), zap.Int("skipped", len(tr.Skipped)))
	return created, nil
}

func (s *Submitter) batchError(formID string, index, total int, skipped []FieldIncompatibility, err error) *SubmissionError {
	return &SubmissionError{
		Stage:            StageBatch,
		FormID:           formID,
		BatchesSucceeded: index,
		FailedBatch:      index + 1,
		TotalBatches:     total,
		Skipped:          skipped,
		Err:              err,
	}
}

// checkSubmittable repeats the structural part of cleaning so a hand-built
// schema cannot reach the network.
func checkSubmittable(sch *schema.FormSchema) error {
	switch {
	case sch == nil:
		return fmt.Errorf("%w: schema is nil", ErrInvalidSchema)
	case strings.TrimSpace(sch.Title) == "":
		return fmt.Errorf("%w: title is empty", ErrInvalidSchema)
	case len(sch.Fields) == 0:
		return fmt.Errorf("%w: form must have at least one field", ErrInvalidSchema)
	case len(sch.Fields) > schema.MaxFields:
		return fmt.Errorf("%w: %d fields exceeds the limit of %d", ErrInvalidSchema, len(sch.Fields), schema.MaxFields)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
