// Package forms turns a cleaned schema into Google Forms batchUpdate
// requests and submits them.
package forms

// Request is one batchUpdate operation. Exactly one member is set.
type Request struct {
	CreateItem     *CreateItemRequest     `json:"createItem,omitempty"`
	UpdateFormInfo *UpdateFormInfoRequest `json:"updateFormInfo,omitempty"`
}

// Kind names the populated member for logs and error messages.
func (r Request) Kind() string {
	switch {
	case r.CreateItem != nil && r.UpdateFormInfo != nil:
		return "ambiguous"
	case r.CreateItem != nil:
		return "createItem"
	case r.UpdateFormInfo != nil:
		return "updateFormInfo"
	}
	return "empty"
}

// CreateItemRequest inserts one question at Location.
type CreateItemRequest struct {
	Item     Item     `json:"item"`
	Location Location `json:"location"`
}

// Location is the zero-based display position of a new item.
type Location struct {
	Index int `json:"index"`
}

type Item struct {
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	QuestionItem *QuestionItem `json:"questionItem,omitempty"`
}

type QuestionItem struct {
	Question Question `json:"question"`
}

// Question carries exactly one of the typed question payloads.
type Question struct {
	Required           bool                `json:"required"`
	TextQuestion       *TextQuestion       `json:"textQuestion,omitempty"`
	ChoiceQuestion     *ChoiceQuestion     `json:"choiceQuestion,omitempty"`
	DateQuestion       *DateQuestion       `json:"dateQuestion,omitempty"`
	TimeQuestion       *TimeQuestion       `json:"timeQuestion,omitempty"`
	FileUploadQuestion *FileUploadQuestion `json:"fileUploadQuestion,omitempty"`
}

func (q Question) payloads() int {
	n := 0
	if q.TextQuestion != nil {
		n++
	}
	if q.ChoiceQuestion != nil {
		n++
	}
	if q.DateQuestion != nil {
		n++
	}
	if q.TimeQuestion != nil {
		n++
	}
	if q.FileUploadQuestion != nil {
		n++
	}
	return n
}

type TextQuestion struct {
	Paragraph bool `json:"paragraph"`
}

// Choice question tags accepted by the API.
const (
	ChoiceRadio    = "RADIO"
	ChoiceCheckbox = "CHECKBOX"
	ChoiceDropDown = "DROP_DOWN"
)

type ChoiceQuestion struct {
	Type    string   `json:"type"`
	Options []Option `json:"options"`
}

type Option struct {
	Value string `json:"value"`
}

type DateQuestion struct {
	IncludeTime bool `json:"includeTime"`
	IncludeYear bool `json:"includeYear"`
}

type TimeQuestion struct {
	Duration bool `json:"duration"`
}

// Defaults applied to every file upload question.
const (
	DefaultMaxFiles    = 10
	DefaultMaxFileSize = 10 << 20
)

type FileUploadQuestion struct {
	FolderID    string   `json:"folderId"`
	MaxFiles    int      `json:"maxFiles"`
	MaxFileSize int64    `json:"maxFileSize"`
	Types       []string `json:"types"`
}

// UpdateFormInfoRequest sets title and/or description. UpdateMask lists the
// populated Info members, comma separated.
type UpdateFormInfoRequest struct {
	Info       Info   `json:"info"`
	UpdateMask string `json:"updateMask"`
}

type Info struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type batchUpdateBody struct {
	Requests              []Request `json:"requests"`
	IncludeFormInResponse bool      `json:"includeFormInResponse"`
}
