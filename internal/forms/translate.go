package forms

import (
	"fmt"
	"strings"

	"autoform/internal/schema"
)

// FieldIncompatibility reports a field left out of a translation because
// its type has no remote question kind. It is a warning, not an error.
type FieldIncompatibility struct {
	FieldID string           `json:"field_id"`
	Type    schema.FieldType `json:"type"`
	// Index is the field's position in the schema.
	Index int `json:"index"`
}

func (f FieldIncompatibility) String() string {
	return fmt.Sprintf("field %q (#%d) has unsupported type %q", f.FieldID, f.Index+1, f.Type)
}

// Translation is the ordered request list for one schema.
type Translation struct {
	Requests []Request
	Skipped  []FieldIncompatibility
}

// ItemCount returns the number of createItem requests.
func (t Translation) ItemCount() int {
	n := 0
	for _, r := range t.Requests {
		if r.CreateItem != nil {
			n++
		}
	}
	return n
}

// Translate builds the batchUpdate requests for s. An updateFormInfo request
// comes first when there is a title (includeTitle) or description to set,
// followed by one createItem per supported field in schema order. Item
// indices are contiguous from zero over the emitted items, so a skipped
// field leaves no gap.
//
// Translate has no side effects and returns equal output for equal input.
func Translate(s *schema.FormSchema, includeTitle bool) Translation {
	var t Translation
	if s == nil {
		return t
	}

	var info Info
	var mask []string
	if includeTitle && s.Title != "" {
		info.Title = s.Title
		mask = append(mask, "title")
	}
	if s.Description != "" {
		info.Description = s.Description
		mask = append(mask, "description")
	}
	if len(mask) > 0 {
		t.Requests = append(t.Requests, Request{UpdateFormInfo: &UpdateFormInfoRequest{
			Info:       info,
			UpdateMask: strings.Join(mask, ","),
		}})
	}

	index := 0
	for i, f := range s.Fields {
		q, ok := question(f)
		if !ok {
			t.Skipped = append(t.Skipped, FieldIncompatibility{FieldID: f.ID, Type: f.Type, Index: i})
			continue
		}
		desc := ""
		if f.Description != nil {
			desc = *f.Description
		}
		t.Requests = append(t.Requests, Request{CreateItem: &CreateItemRequest{
			Item: Item{
				Title:        f.Label,
				Description:  desc,
				QuestionItem: &QuestionItem{Question: q},
			},
			Location: Location{Index: index},
		}})
		index++
	}
	return t
}

func question(f schema.Field) (Question, bool) {
	kind, ok := schema.MapType(f.Type)
	if !ok {
		return Question{}, false
	}
	q := Question{Required: f.Required}
	switch kind {
	case schema.KindShortAnswer:
		q.TextQuestion = &TextQuestion{Paragraph: false}
	case schema.KindParagraph:
		q.TextQuestion = &TextQuestion{Paragraph: true}
	case schema.KindDropDown:
		q.ChoiceQuestion = choice(ChoiceDropDown, f.Options)
	case schema.KindMultipleChoice:
		q.ChoiceQuestion = choice(ChoiceRadio, f.Options)
	case schema.KindCheckbox:
		q.ChoiceQuestion = choice(ChoiceCheckbox, f.Options)
	case schema.KindDate:
		q.DateQuestion = &DateQuestion{IncludeTime: false, IncludeYear: true}
	case schema.KindTime:
		q.TimeQuestion = &TimeQuestion{Duration: false}
	case schema.KindFileUpload:
		q.FileUploadQuestion = &FileUploadQuestion{
			MaxFiles:    DefaultMaxFiles,
			MaxFileSize: DefaultMaxFileSize,
			Types:       []string{"ANY"},
		}
	default:
		return Question{}, false
	}
	return q, true
}

func choice(tag string, options []string) *ChoiceQuestion {
	opts := make([]Option, len(options))
	for i, o := range options {
		opts[i] = Option{Value: o}
	}
	return &ChoiceQuestion{Type: tag, Options: opts}
}

// Chunk splits requests into consecutive batches of at most size.
func Chunk(requests []Request, size int) [][]Request {
	if size <= 0 {
		size = 1
	}
	var batches [][]Request
	for start := 0; start < len(requests); start += size {
		end := min(start+size, len(requests))
		batches = append(batches, requests[start:end])
	}
	return batches
}
